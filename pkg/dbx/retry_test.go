package dbx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcodd23/go-data-core/pkg/dbx"
	"github.com/stretchr/testify/require"
)

var errDeadlock = errors.New("deadlock detected")

func deadlockDetector(err error) bool {
	return errors.Is(err, errDeadlock)
}

// TestInTransactionWithRetrySucceedsAfterRetries verifies that a unit of work
// failing with a retryable error is re-run, each attempt with its own full
// borrow/commit/release bracketing, until it succeeds.
func TestInTransactionWithRetrySucceedsAfterRetries(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()

	attempts := 0
	retry := dbx.Retry{MaxRetries: 3, MinInterval: time.Millisecond, IsRetryable: deadlockDetector}

	value, err := dbx.InTransactionWithRetry(ctx, pool, retry, func(ctx context.Context, conn dbx.Connection) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errDeadlock
		}
		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, 42, value)
	require.Equal(t, 3, attempts)
	require.Equal(t, 3, pool.rec.count("acquire"))
	require.Equal(t, 3, pool.rec.count("release"))
	require.Equal(t, 2, pool.rec.count("rollback"))
	require.Equal(t, 1, pool.rec.count("commit"))
}

// TestInTransactionWithRetryExceedsLimit verifies that the retry loop gives up
// after MaxRetries re-runs and surfaces the last failure wrapped in a limit
// exceeded error.
func TestInTransactionWithRetryExceedsLimit(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()

	attempts := 0
	retry := dbx.Retry{MaxRetries: 2, MinInterval: time.Millisecond, IsRetryable: deadlockDetector}

	_, err := dbx.InTransactionWithRetry(ctx, pool, retry, func(ctx context.Context, conn dbx.Connection) (int, error) {
		attempts++
		return 0, errDeadlock
	})

	require.Error(t, err)
	require.ErrorIs(t, err, errDeadlock)
	require.Contains(t, err.Error(), "retry limit")
	require.Equal(t, 3, attempts) // first run plus two retries
	require.Equal(t, 3, pool.rec.count("release"))
}

// TestInTransactionWithRetryNonRetryable verifies that a non-retryable failure
// is surfaced immediately, unchanged, without re-running the unit of work.
func TestInTransactionWithRetryNonRetryable(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	boom := errors.New("boom")

	attempts := 0
	retry := dbx.Retry{MaxRetries: 5, MinInterval: time.Millisecond, IsRetryable: deadlockDetector}

	_, err := dbx.InTransactionWithRetry(ctx, pool, retry, func(ctx context.Context, conn dbx.Connection) (int, error) {
		attempts++
		return 0, boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, attempts)
	require.Equal(t, 1, pool.rec.count("release"))
}

// TestInTransactionWithRetryCancelledDuringWait verifies that a context
// cancellation while waiting for the next attempt aborts the retry loop.
func TestInTransactionWithRetryCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := newFakePool()

	retry := dbx.Retry{MaxRetries: 5, MinInterval: time.Hour, IsRetryable: deadlockDetector}

	done := make(chan error, 1)

	go func() {
		_, err := dbx.InTransactionWithRetry(ctx, pool, retry, func(ctx context.Context, conn dbx.Connection) (int, error) {
			return 0, errDeadlock
		})
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("retry loop did not honor context cancellation")
	}
}
