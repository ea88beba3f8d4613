package pgxscope

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes worth retrying a whole transaction for.
const (
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
)

// IsSerializationFailure reports whether the error is a Postgres serialization
// failure or deadlock, i.e. a transient conflict that a fresh run of the same
// transaction may resolve. Intended as the IsRetryable predicate of dbx.Retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == serializationFailureCode || pgErr.Code == deadlockDetectedCode
}
