package sqlscope_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/marcodd23/go-data-core/pkg/dbx"
	"github.com/marcodd23/go-data-core/pkg/dbx/sqlscope"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

// setupSqlitePool opens a shared in-memory SQLite database with an accounts
// table and wraps it in a scope pool. Each test gets its own database.
func setupSqlitePool(t *testing.T) *SqlitePoolFixture {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)

	// A shared-cache in-memory database disappears when the last connection
	// closes, so keep one pinned for the duration of the test.
	keeper, err := db.Conn(context.Background())
	require.NoError(t, err)

	_, err = db.Exec("CREATE TABLE accounts (id INTEGER PRIMARY KEY, owner TEXT NOT NULL, balance INTEGER NOT NULL)")
	require.NoError(t, err)

	pool := sqlscope.NewPool(db)

	t.Cleanup(func() {
		keeper.Close()
		pool.Close()
	})

	return &SqlitePoolFixture{Pool: pool, db: db}
}

type SqlitePoolFixture struct {
	Pool *sqlscope.SqlPool
	db   *sql.DB
}

func (f *SqlitePoolFixture) countAccounts(t *testing.T) int {
	var count int

	err := f.db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count)
	require.NoError(t, err)

	return count
}

// TestNewPoolPanicsOnNilHandle verifies the constructor rejects a nil database
// handle.
func TestNewPoolPanicsOnNilHandle(t *testing.T) {
	require.Panics(t, func() {
		sqlscope.NewPool(nil)
	})
}

// TestInTransactionCommitPersists verifies that rows written by a successful
// unit of work are visible after the transaction scope commits.
func TestInTransactionCommitPersists(t *testing.T) {
	ctx := context.Background()
	fixture := setupSqlitePool(t)

	rowsAffected, err := dbx.InTransaction(ctx, fixture.Pool, func(ctx context.Context, conn dbx.Connection) (int64, error) {
		return conn.Exec(ctx, "INSERT INTO accounts (owner, balance) VALUES (?, ?)", "alice", 100)
	})

	require.NoError(t, err)
	require.Equal(t, int64(1), rowsAffected)
	require.Equal(t, 1, fixture.countAccounts(t))
}

// TestInTransactionRollbackDiscards verifies that rows written by a failing
// unit of work are rolled back and never become visible.
func TestInTransactionRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	fixture := setupSqlitePool(t)
	boom := errors.New("boom")

	_, err := dbx.InTransaction(ctx, fixture.Pool, func(ctx context.Context, conn dbx.Connection) (int64, error) {
		if _, execErr := conn.Exec(ctx, "INSERT INTO accounts (owner, balance) VALUES (?, ?)", "bob", 50); execErr != nil {
			return 0, execErr
		}

		return 0, boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, fixture.countAccounts(t))
}

// TestInTransactionPanicRollsBack verifies that a panicking unit of work is
// rolled back and surfaced as a failure, with the connection returned to the
// pool so later scopes still work.
func TestInTransactionPanicRollsBack(t *testing.T) {
	ctx := context.Background()
	fixture := setupSqlitePool(t)

	_, err := dbx.InTransaction(ctx, fixture.Pool, func(ctx context.Context, conn dbx.Connection) (int64, error) {
		if _, execErr := conn.Exec(ctx, "INSERT INTO accounts (owner, balance) VALUES (?, ?)", "carol", 10); execErr != nil {
			return 0, execErr
		}

		panic("kaboom")
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "kaboom")
	require.Equal(t, 0, fixture.countAccounts(t))

	// The pool must still be usable after the failed scope.
	err = dbx.InTransactionUnit(ctx, fixture.Pool, func(ctx context.Context, conn dbx.Connection) error {
		_, execErr := conn.Exec(ctx, "INSERT INTO accounts (owner, balance) VALUES (?, ?)", "dave", 1)
		return execErr
	})

	require.NoError(t, err)
	require.Equal(t, 1, fixture.countAccounts(t))
}

// TestWithConnectionAutocommit verifies that statements run through a bare
// connection scope commit on their own, without any transaction bracketing.
func TestWithConnectionAutocommit(t *testing.T) {
	ctx := context.Background()
	fixture := setupSqlitePool(t)

	_, err := dbx.WithConnection(ctx, fixture.Pool, func(ctx context.Context, conn dbx.Connection) (int64, error) {
		return conn.Exec(ctx, "INSERT INTO accounts (owner, balance) VALUES (?, ?)", "erin", 5)
	})

	require.NoError(t, err)
	require.Equal(t, 1, fixture.countAccounts(t))
}

// TestQueryInsideTransactionSeesOwnWrites verifies that a query issued by the
// unit of work routes through the open transaction and observes its own
// uncommitted writes.
func TestQueryInsideTransactionSeesOwnWrites(t *testing.T) {
	ctx := context.Background()
	fixture := setupSqlitePool(t)

	count, err := dbx.InTransaction(ctx, fixture.Pool, func(ctx context.Context, conn dbx.Connection) (int, error) {
		if _, execErr := conn.Exec(ctx, "INSERT INTO accounts (owner, balance) VALUES (?, ?)", "frank", 20); execErr != nil {
			return 0, execErr
		}

		rows, queryErr := conn.Query(ctx, "SELECT COUNT(*) FROM accounts")
		if queryErr != nil {
			return 0, queryErr
		}

		sqlRows := rows.(*sql.Rows)
		defer sqlRows.Close()

		var n int
		require.True(t, sqlRows.Next())
		require.NoError(t, sqlRows.Scan(&n))

		return n, sqlRows.Err()
	})

	require.NoError(t, err)
	require.Equal(t, 1, count)
}

// TestIsMySQLDeadlock verifies that the retry predicate recognizes MySQL
// deadlock and lock wait timeout codes, including wrapped ones, and rejects
// everything else.
func TestIsMySQLDeadlock(t *testing.T) {
	require.True(t, sqlscope.IsMySQLDeadlock(&mysql.MySQLError{Number: 1213}))
	require.True(t, sqlscope.IsMySQLDeadlock(&mysql.MySQLError{Number: 1205}))
	require.True(t, sqlscope.IsMySQLDeadlock(errors.Wrap(&mysql.MySQLError{Number: 1213}, "query failed")))
	require.False(t, sqlscope.IsMySQLDeadlock(&mysql.MySQLError{Number: 1062}))
	require.False(t, sqlscope.IsMySQLDeadlock(errors.New("not a mysql error")))
	require.False(t, sqlscope.IsMySQLDeadlock(nil))
}
