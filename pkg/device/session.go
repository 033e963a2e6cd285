package device

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
)

var errSessionClosed = errors.New("session is closed")

// Session owns at most one native connection. It must not be used from more
// than one goroutine at a time.
type Session struct {
	id     uuid.UUID
	device *Device
	conn   Connection
}

func newSession(d *Device, conn Connection) *Session {
	return &Session{id: uuid.New(), device: d, conn: conn}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Connected reports whether the session still owns its connection.
func (s *Session) Connected() bool { return s.conn != nil }

func (s *Session) connection() (Connection, error) {
	if s.conn == nil {
		return nil, &core.ConnectionFailureError{Op: "session", Cause: errSessionClosed}
	}
	return s.conn, nil
}

// Execute translates a plan and executes it.
func (s *Session) Execute(ctx context.Context, plan *core.PlanNode) error {
	text, err := s.device.Emit(plan)
	if err != nil {
		return err
	}
	return s.ExecuteText(ctx, text)
}

// Open translates a plan and opens a cursor over its result.
func (s *Session) Open(ctx context.Context, plan *core.PlanNode) (*core.Rows, error) {
	text, err := s.device.Emit(plan)
	if err != nil {
		return nil, err
	}
	return s.OpenText(ctx, text)
}

// ExecuteText executes SQL text on the session connection.
func (s *Session) ExecuteText(ctx context.Context, text string, args ...any) error {
	conn, err := s.connection()
	if err != nil {
		return err
	}
	s.device.logger.Debug("execute", slog.String("session", s.id.String()), slog.String("sql", text))
	return conn.Execute(ctx, text, args...)
}

// OpenText opens a cursor over SQL text on the session connection.
func (s *Session) OpenText(ctx context.Context, text string, args ...any) (*core.Rows, error) {
	conn, err := s.connection()
	if err != nil {
		return nil, err
	}
	s.device.logger.Debug("open", slog.String("session", s.id.String()), slog.String("sql", text))
	return conn.Open(ctx, text, args...)
}

// Harvest reads the catalog rows for the tables matching f. The filter is
// normalized with the dialect's identifier rules first.
func (s *Session) Harvest(ctx context.Context, f reconcile.Filter) (*reconcile.Catalog, error) {
	conn, err := s.connection()
	if err != nil {
		return nil, err
	}
	s.device.mu.Lock()
	queries := s.device.queries
	s.device.mu.Unlock()
	return reconcile.Harvest(ctx, conn, queries, f.Normalize(s.device.dialect.Identifiers()))
}

// Reconcile harvests the catalog and imports it into a reference model
// using the device type bridge.
func (s *Session) Reconcile(ctx context.Context, f reconcile.Filter) (*reconcile.Model, error) {
	types, err := s.device.Types()
	if err != nil {
		return nil, err
	}
	c, err := s.Harvest(ctx, f)
	if err != nil {
		return nil, err
	}
	return reconcile.Import(c, types, s.device.logger)
}

// Close releases the connection. Closing a closed session is a no-op.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	s.device.logger.Debug("session closed", slog.String("session", s.id.String()))
	if err := conn.Close(); err != nil {
		return &core.ConnectionFailureError{Op: "close", Cause: err}
	}
	return nil
}
