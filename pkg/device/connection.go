package device

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Connection is one native connection owned by a session or by a start-up
// step.
type Connection interface {
	Open(ctx context.Context, query string, args ...any) (*core.Rows, error)
	Execute(ctx context.Context, query string, args ...any) error
	Begin(ctx context.Context, opts *sql.TxOptions) (Transaction, error)
	Close() error
}

// Transaction is a native transaction on a Connection.
type Transaction interface {
	Execute(ctx context.Context, query string, args ...any) error
	Commit() error
	Rollback() error
}

// Connector opens a native connection from a driver name and connection string.
type Connector func(ctx context.Context, driverName, connString string) (Connection, error)

// SQLConnector is the default Connector. It opens a database/sql handle and
// pins a single connection from it.
func SQLConnector(ctx context.Context, driverName, connString string) (Connection, error) {
	db, err := sql.Open(driverName, connString)
	if err != nil {
		return nil, &core.ConnectionFailureError{Op: "connect", Cause: err}
	}
	conn, err := NewSQLConnection(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return conn, nil
}

// NewSQLConnection pins one connection of db. Closing the result closes db.
func NewSQLConnection(ctx context.Context, db *sql.DB) (Connection, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, &core.ConnectionFailureError{Op: "connect", Cause: err}
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, &core.ConnectionFailureError{Op: "connect", Cause: err}
	}
	return &sqlConnection{db: db, conn: conn}, nil
}

type sqlConnection struct {
	db   *sql.DB
	conn *sql.Conn
}

func (c *sqlConnection) Open(ctx context.Context, query string, args ...any) (*core.Rows, error) {
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &core.ConnectionFailureError{Op: "open", Cause: err}
	}
	return &core.Rows{Rows: rows}, nil
}

func (c *sqlConnection) Execute(ctx context.Context, query string, args ...any) error {
	if _, err := c.conn.ExecContext(ctx, query, args...); err != nil {
		return &core.ConnectionFailureError{Op: "execute", Cause: err}
	}
	return nil
}

func (c *sqlConnection) Begin(ctx context.Context, opts *sql.TxOptions) (Transaction, error) {
	tx, err := c.conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, &core.ConnectionFailureError{Op: "begin", Cause: err}
	}
	return sqlTransaction{tx: tx}, nil
}

func (c *sqlConnection) Close() error {
	return errors.Join(c.conn.Close(), c.db.Close())
}

type sqlTransaction struct {
	tx *sql.Tx
}

func (t sqlTransaction) Execute(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t sqlTransaction) Commit() error   { return t.tx.Commit() }
func (t sqlTransaction) Rollback() error { return t.tx.Rollback() }
