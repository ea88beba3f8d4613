package sqlscope

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error codes worth retrying a whole transaction for.
const (
	mysqlDeadlockCode        = 1213
	mysqlLockWaitTimeoutCode = 1205
)

// IsMySQLDeadlock reports whether the error is a MySQL deadlock or lock wait
// timeout, i.e. a transient conflict that a fresh run of the same transaction
// may resolve. Intended as the IsRetryable predicate of dbx.Retry.
func IsMySQLDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}

	return mysqlErr.Number == mysqlDeadlockCode || mysqlErr.Number == mysqlLockWaitTimeoutCode
}
