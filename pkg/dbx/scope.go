package dbx

import (
	"context"
	"runtime"

	"github.com/marcodd23/go-data-core/pkg/errorx"
	"github.com/marcodd23/go-data-core/pkg/logx"
)

// =====================================
// Connection Scope
// =====================================

// WithConnection borrows one connection from the pool, runs the unit of work
// against it and guarantees the connection is released back to the pool exactly
// once, whatever the outcome.
//
// If acquisition fails the unit of work never runs and the call fails with a
// *errorx.AcquireError. A panicking unit of work is recovered, the connection
// is released, and the panic is surfaced as a *errorx.UnitOfWorkError; panics
// carrying a runtime.Error (nil dereference, out of memory and friends) are
// considered unrecoverable and propagate. On every other path the unit of
// work's own value and error are returned unchanged, after release.
func WithConnection[T any](ctx context.Context, pool Pool, work UnitOfWork[T]) (T, error) {
	var zero T

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return zero, errorx.NewAcquireErrorWrapper(err, "error acquiring connection from pool")
	}

	defer conn.Release()

	return runUnitOfWork(ctx, conn, work)
}

// runUnitOfWork invokes the unit of work, converting a panic into an ordinary
// failure so that the surrounding scope still runs its release and rollback
// bracketing. Panics carrying a runtime.Error are re-raised untouched.
func runUnitOfWork[T any](ctx context.Context, conn Connection, work UnitOfWork[T]) (value T, err error) {
	defer func() {
		if p := recover(); p != nil {
			if _, fatal := p.(runtime.Error); fatal {
				panic(p)
			}

			err = errorx.NewUnitOfWorkError("unit of work panicked: %v", p)
		}
	}()

	return work(ctx, conn)
}

// =====================================
// Transaction Scope
// =====================================

// WithTransaction wraps a unit of work that already holds a connection with
// begin/commit/rollback bracketing. The connection is expected to be in
// autocommit mode when the scope starts and is put back in autocommit mode
// before the scope returns, on every path that left it.
//
// Leaving autocommit fails -> the call fails with a *errorx.BeginError, the
// unit of work never runs and no rollback is attempted. On unit of work success
// the transaction is committed; a failed commit discards the value and surfaces
// as a *errorx.CommitError. On unit of work failure (including a recovered
// panic) the transaction is rolled back and the original unit of work error is
// returned; a rollback failure is logged but never masks the root cause.
func WithTransaction[T any](ctx context.Context, conn Connection, work UnitOfWork[T]) (T, error) {
	var zero T

	if err := conn.SetAutoCommit(ctx, false); err != nil {
		return zero, errorx.NewBeginErrorWrapper(err, "error beginning transaction")
	}

	value, workErr := runUnitOfWork(ctx, conn, work)
	if workErr != nil {
		if rbErr := conn.Rollback(ctx); rbErr != nil {
			// Secondary failure: recorded, never promoted over workErr.
			logx.GetLogger().LogError(ctx, "error rolling back transaction",
				errorx.NewRollbackErrorWrapper(rbErr, "transaction rollback failed"))
		}

		restoreAutoCommit(ctx, conn)

		return zero, workErr
	}

	if err := conn.Commit(ctx); err != nil {
		restoreAutoCommit(ctx, conn)

		return zero, errorx.NewCommitErrorWrapper(err, "error committing transaction")
	}

	restoreAutoCommit(ctx, conn)

	return value, nil
}

// restoreAutoCommit is best effort: a failure here must not override the
// primary outcome already determined by commit or rollback, so it is only
// logged.
func restoreAutoCommit(ctx context.Context, conn Connection) {
	if err := conn.SetAutoCommit(ctx, true); err != nil {
		logx.GetLogger().LogWarning(ctx, "error restoring autocommit mode on connection", err)
	}
}

// =====================================
// Composition Helpers
// =====================================

// InTransaction acquires a connection from the pool, runs the unit of work
// inside a transaction on it and releases the connection afterwards. It is the
// plain composition of WithConnection and WithTransaction: the transaction
// scope runs inside the connection scope, so commit or rollback always happens
// before the connection goes back to the pool.
func InTransaction[T any](ctx context.Context, pool Pool, work UnitOfWork[T]) (T, error) {
	return WithConnection(ctx, pool, func(ctx context.Context, conn Connection) (T, error) {
		return WithTransaction(ctx, conn, work)
	})
}

// InTransactionOptional is InTransaction for units of work that may produce no
// value. A nil pointer means empty.
func InTransactionOptional[T any](ctx context.Context, pool Pool, work UnitOfWork[*T]) (*T, error) {
	return InTransaction[*T](ctx, pool, work)
}

// InTransactionUnit is InTransaction for units of work that produce no value
// at all.
func InTransactionUnit(ctx context.Context, pool Pool, work func(ctx context.Context, conn Connection) error) error {
	_, err := InTransaction(ctx, pool, func(ctx context.Context, conn Connection) (struct{}, error) {
		return struct{}{}, work(ctx, conn)
	})

	return err
}
