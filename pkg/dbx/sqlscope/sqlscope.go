package sqlscope

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marcodd23/go-data-core/pkg/dbx"
	"github.com/marcodd23/go-data-core/pkg/errorx"
	"github.com/marcodd23/go-data-core/pkg/logx"
	"github.com/pkg/errors"
)

//###################################
//#       database/sql Pool         #
//###################################

// SqlPool - dbx.Pool implementation over a standard library *sql.DB, whose
// built-in pool hands out the underlying connections. Works with any
// database/sql driver (MySQL, SQLite, Postgres via stdlib adapter).
type SqlPool struct {
	db *sql.DB
}

// NewPool - wrap an already opened *sql.DB.
//
// Panics if db is nil (programming error: caller must provide an open handle).
func NewPool(db *sql.DB) *SqlPool {
	if db == nil {
		panic("sqlscope.NewPool: db must not be nil")
	}

	return &SqlPool{db: db}
}

// Acquire - borrow one dedicated connection from the database handle. The
// connection is in autocommit mode and owned by the caller until Release.
func (p *SqlPool) Acquire(ctx context.Context) (dbx.Connection, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "Error acquiring connection from pool", err)
		return nil, errors.Wrap(err, "Error acquiring connection from pool")
	}

	return &sqlConn{conn: conn}, nil
}

// Close - close the underlying database handle and its pooled connections.
func (p *SqlPool) Close() {
	if err := p.db.Close(); err != nil {
		logx.GetLogger().LogError(context.TODO(), "error closing database handle", err)
	}
}

//###################################
//#     database/sql Connection     #
//###################################

// sqlConn - dbx.Connection over a dedicated *sql.Conn. Leaving autocommit
// opens a *sql.Tx on the same connection; Exec and Query route through it
// while it is open.
type sqlConn struct {
	conn *sql.Conn
	tx   *sql.Tx
}

func (c *sqlConn) SetAutoCommit(ctx context.Context, autoCommit bool) error {
	if !autoCommit {
		if c.tx != nil {
			return errorx.NewDatabaseError("connection already holds an open transaction")
		}

		tx, err := c.conn.BeginTx(ctx, nil)
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "error starting transaction")
		}

		c.tx = tx

		return nil
	}

	// Re-entering autocommit with a transaction still open commits it first.
	if c.tx != nil {
		return c.Commit(ctx)
	}

	return nil
}

func (c *sqlConn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return errorx.NewDatabaseError("no open transaction to commit")
	}

	err := c.tx.Commit()
	c.tx = nil

	if err != nil {
		logx.GetLogger().LogError(ctx, "error during transaction commit", err)
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction commit")
	}

	return nil
}

func (c *sqlConn) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return errorx.NewDatabaseError("no open transaction to roll back")
	}

	err := c.tx.Rollback()
	c.tx = nil

	if err != nil {
		logx.GetLogger().LogError(ctx, "error during transaction rollback", err)
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction rollback")
	}

	return nil
}

func (c *sqlConn) Exec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	var (
		result sql.Result
		err    error
	)

	if c.tx != nil {
		result, err = c.tx.ExecContext(ctx, execQuery, args...)
	} else {
		result, err = c.conn.ExecContext(ctx, execQuery, args...)
	}

	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error reading rows affected for query '%s'", execQuery)
	}

	return rowsAffected, nil
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) (any, error) {
	if c.tx != nil {
		return c.tx.QueryContext(ctx, query, args...)
	}

	return c.conn.QueryContext(ctx, query, args...)
}

func (c *sqlConn) Release() {
	if err := c.conn.Close(); err != nil {
		logx.GetLogger().LogError(context.TODO(), fmt.Sprintf("error releasing connection: %v", err))
	}
}
