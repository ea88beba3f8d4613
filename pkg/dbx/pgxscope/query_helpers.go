package pgxscope

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/marcodd23/go-data-core/pkg/dbx"
	"github.com/pkg/errors"
)

// QueryAndScan executes a query on the connection and maps each row in the
// result set to a struct of type T using the provided scanFunc. When the
// connection is inside a transaction scope the query joins that transaction.
func QueryAndScan[T any](conn dbx.Connection, ctx context.Context, scanFunc func(rows pgx.Rows) (T, error), query string, args ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer rows.(pgx.Rows).Close()

	var results []T
	for rows.(pgx.Rows).Next() {
		result, err := scanFunc(rows.(pgx.Rows))
		if err != nil {
			return nil, errors.Wrap(err, "QueryAndScan error scanFunc")
		}
		results = append(results, result)
	}

	if err := rows.(pgx.Rows).Err(); err != nil {
		return nil, errors.Wrap(err, "QueryAndScan error mapping rows with scanFunc")
	}

	return results, nil
}

// QueryAndMap uses pgx's struct scanning to map rows directly to a slice of
// structs, without a custom scan function. The struct fields are matched by
// the db tag, as in pgx.RowToStructByName.
func QueryAndMap[T any](conn dbx.Connection, ctx context.Context, query string, args ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer rows.(pgx.Rows).Close()

	results, err := pgx.CollectRows(rows.(pgx.Rows), pgx.RowToStructByName[T])
	if err != nil {
		return nil, errors.Wrap(err, "QueryAndMap error mapping and collecting rows to struct slice")
	}

	return results, nil
}
