package pgxscope

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcodd23/go-data-core/pkg/dbx"
	"github.com/marcodd23/go-data-core/pkg/errorx"
	"github.com/marcodd23/go-data-core/pkg/logx"
	"github.com/marcodd23/go-data-core/pkg/validator"
	"github.com/pkg/errors"
)

//###################################
//#       Postgres Pool             #
//###################################

// PostgresPool - dbx.Pool implementation backed by a pgxpool.Pool.
type PostgresPool struct {
	pool   *pgxpool.Pool
	dbConf dbx.ConnConfig
}

// SetupPool - create a Postgres connection pool from the given configuration.
// The configuration is validated before the pool is created; optional prepared
// statements are registered on every new pooled connection.
func SetupPool(ctx context.Context, dbConf dbx.ConnConfig, preparedStatements ...dbx.PreparedStatement) (dbx.Pool, error) {
	if valErrors := validator.NewValidator().ValidateStruct(dbConf); len(valErrors) > 0 {
		return nil, validator.NewValidationError(valErrors)
	}

	poolConfig, err := createConnectionConfiguration(dbConf)
	if err != nil {
		return nil, err
	}

	// Setup prepared statements
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return setupPreparedStatements(ctx, conn, preparedStatements...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating New Connection Pool")
	}

	logx.
		GetLogger().
		LogInfo(ctx, fmt.Sprintf("Created new Postgres Connection Pool: DB=%s, HOST=%s, PORT=%d",
			pool.Config().ConnConfig.Database,
			pool.Config().ConnConfig.Host,
			pool.Config().ConnConfig.Port))

	return &PostgresPool{pool: pool, dbConf: dbConf}, nil
}

func createConnectionConfiguration(dbConf dbx.ConnConfig) (*pgxpool.Config, error) {
	poolConfig, _ := pgxpool.ParseConfig("")

	poolConfig.ConnConfig.Database = dbConf.DBName
	poolConfig.ConnConfig.User = dbConf.User
	poolConfig.ConnConfig.Password = dbConf.Password
	poolConfig.ConnConfig.Host = dbConf.Host
	poolConfig.ConnConfig.Port = uint16(dbConf.Port)
	poolConfig.MaxConns = int32(runtime.NumCPU()) * dbConf.MaxConn

	return poolConfig, nil
}

func setupPreparedStatements(ctx context.Context, conn *pgx.Conn, preparedStatements ...dbx.PreparedStatement) error {
	for _, stmt := range preparedStatements {
		_, err := conn.Prepare(ctx, stmt.GetName(), stmt.GetQuery())
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "Failed to prepare statement '%s'", stmt.GetName())
		}
	}

	return nil
}

// Acquire - borrow one connection from the pool. The returned connection is in
// autocommit mode and is owned by the caller until Release.
func (p *PostgresPool) Acquire(ctx context.Context) (dbx.Connection, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "Error acquiring connection from pool", err)
		return nil, errors.Wrap(err, "Error acquiring connection from pool")
	}

	scopeId := uuid.NewString()
	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Acquired connection from pool, scope: %s", scopeId))

	return &postgresConn{conn: conn, scopeId: scopeId}, nil
}

// Close - close the connection pool.
func (p *PostgresPool) Close() {
	if p.pool != nil {
		p.pool.Close()
		logx.GetLogger().LogInfo(context.TODO(), "DB Connection Pool Successfully Closed!")
	}
}

// GetConnectionConfig - get Db Connection config.
func (p *PostgresPool) GetConnectionConfig() dbx.ConnConfig {
	return p.dbConf
}

//###################################
//#       Postgres Connection       #
//###################################

// postgresConn - dbx.Connection implementation over a single pooled pgx
// connection. Leaving autocommit mode opens a pgx.Tx; Commit/Rollback close it
// again. Exec and Query route through the open transaction when one is active.
type postgresConn struct {
	conn    *pgxpool.Conn
	tx      pgx.Tx
	scopeId string
}

func (c *postgresConn) SetAutoCommit(ctx context.Context, autoCommit bool) error {
	if !autoCommit {
		if c.tx != nil {
			return errorx.NewDatabaseError("connection already holds an open transaction, scope: %s", c.scopeId)
		}

		tx, err := c.conn.Begin(ctx)
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

func (c *postgresConn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return errorx.NewDatabaseError("no open transaction to commit, scope: %s", c.scopeId)
	}

	err := c.tx.Commit(ctx)
	c.tx = nil

	if err != nil {
		logx.GetLogger().LogError(ctx, "error during transaction commit", err)
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction commit")
	}

	return nil
}

func (c *postgresConn) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return errorx.NewDatabaseError("no open transaction to roll back, scope: %s", c.scopeId)
	}

	err := c.tx.Rollback(ctx)
	c.tx = nil

	if err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("error Rolling Back transaction, scope: %s", c.scopeId), err)
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction rollback")
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Rolled back transaction, scope: %s", c.scopeId))

	return nil
}

func (c *postgresConn) Exec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	if c.tx != nil {
		result, err := c.tx.Exec(ctx, execQuery, args...)
		if err != nil {
			return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
		}

		return result.RowsAffected(), nil
	}

	result, err := c.conn.Exec(ctx, execQuery, args...)
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	return result.RowsAffected(), nil
}

func (c *postgresConn) Query(ctx context.Context, query string, args ...any) (any, error) {
	if c.tx != nil {
		rows, err := c.tx.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}

		return rows, nil
	}

	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (c *postgresConn) Release() {
	logx.GetLogger().LogDebug(context.TODO(), fmt.Sprintf("Releasing connection to pool, scope: %s", c.scopeId))
	c.conn.Release()
}
