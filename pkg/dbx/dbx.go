package dbx

import (
	"context"
)

// =====================================
// Pool Interface
// =====================================

// Pool - a managed collection of reusable database connections handed out on
// demand and returned after use. Implementations (see pgxscope, sqlscope) must
// support concurrent Acquire calls and must never hand the same connection to
// two concurrent borrowers.
type Pool interface {
	// Acquire borrows one connection from the pool, blocking until a
	// connection becomes available, the context is cancelled, or the pool
	// fails to hand one out.
	Acquire(ctx context.Context) (Connection, error)
	// Close shuts the pool down and closes its remaining connections.
	Close()
}

// =====================================
// Connection Interface
// =====================================

// Connection - one exclusive, stateful link to a database session, owned by the
// code path that acquired it until Release is called. A Connection must not be
// used after release, and must not be shared between concurrent units of work.
//
// A freshly acquired connection is in autocommit mode: every statement commits
// on its own. SetAutoCommit(ctx, false) opens an explicit transaction; Commit
// and Rollback close it; SetAutoCommit(ctx, true) puts the connection back in
// autocommit mode. Exec and Query route through the open transaction when one
// is active.
type Connection interface {
	// SetAutoCommit switches the connection in or out of autocommit mode.
	// Leaving autocommit begins a transaction. Re-entering autocommit while a
	// transaction is still open commits it first.
	SetAutoCommit(ctx context.Context, autoCommit bool) error
	// Commit commits the open transaction.
	Commit(ctx context.Context) error
	// Rollback aborts the open transaction, discarding its changes.
	Rollback(ctx context.Context) error
	// Exec executes a command query and returns the number of rows affected.
	Exec(ctx context.Context, execQuery string, args ...any) (int64, error)
	// Query executes a query returning rows. The concrete row type depends on
	// the implementation (pgx.Rows for pgxscope, *sql.Rows for sqlscope).
	Query(ctx context.Context, query string, args ...any) (any, error)
	// Release returns the connection to its pool. It must be called exactly
	// once per borrow; the scope helpers in this package take care of that.
	Release()
}

// =====================================
// UnitOfWork Definition
// =====================================

// UnitOfWork - caller-supplied logic that performs one or more database
// operations using a single borrowed connection. The scope helpers invoke it
// exactly once per scope instance and never inspect the produced value.
type UnitOfWork[T any] func(ctx context.Context, conn Connection) (T, error)
