package dbx

import (
	"context"
	"time"

	"github.com/marcodd23/go-data-core/pkg/errorx"
	"github.com/marcodd23/go-data-core/pkg/logx"
)

// Retry configures transparent re-execution of a transactional unit of work
// when it fails with a transient, retryable error such as a deadlock or a
// serialization failure.
//
// Detection is driver specific (databases use different error codes), so the
// predicate is supplied by the caller; see pgxscope.IsSerializationFailure and
// sqlscope.IsMySQLDeadlock.
type Retry struct {
	// MaxRetries - how many times to re-run the transaction after the first
	// failed attempt.
	MaxRetries uint

	// MinInterval - the wait before the first retry. Subsequent retries wait
	// MinInterval * attempt.
	MinInterval time.Duration

	// IsRetryable reports whether an error is worth retrying. A nil predicate
	// disables retries.
	IsRetryable func(error) bool
}

// InTransactionWithRetry behaves like InTransaction but re-runs the unit of
// work when it fails with a retryable error. The unit of work must therefore
// be safe to execute more than once. Every attempt is a fresh borrow from the
// pool with the full commit/rollback/release bracketing.
func InTransactionWithRetry[T any](ctx context.Context, pool Pool, retry Retry, work UnitOfWork[T]) (T, error) {
	var zero T

	var attempts uint

	for {
		value, err := InTransaction(ctx, pool, work)
		if err == nil {
			return value, nil
		}

		if retry.IsRetryable == nil || !retry.IsRetryable(err) {
			return zero, err
		}

		if attempts == retry.MaxRetries {
			return zero, errorx.NewGeneralErrorWrapper(err, "transaction retry limit (%d) exceeded", retry.MaxRetries)
		}

		attempts++
		logx.GetLogger().LogWarning(ctx, "retryable transaction failure, scheduling retry", err)

		select {
		case <-ctx.Done():
			return zero, errorx.NewGeneralErrorWrapper(ctx.Err(), "transaction retry #%d (originally caused by: %v) cancelled by context", attempts, err)
		case <-time.After(retry.MinInterval * time.Duration(attempts)):
		}
	}
}
