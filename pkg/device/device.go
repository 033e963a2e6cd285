package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
	"github.com/leapstack-labs/sqldevice/pkg/translate"
)

// State is the start-up state of a Device.
type State int

// Device states.
const (
	Uninitialized State = iota
	Starting
	Started
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Starting:
		return "starting"
	case Started:
		return "started"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Device is a started dialect: frozen type and operator registries plus the
// configuration sessions connect with. Once started it is safe for
// concurrent use by many sessions.
type Device struct {
	dialect   Dialect
	cfg       Config
	legend    Legend
	logger    *slog.Logger
	connector Connector

	mu      sync.Mutex
	state   State
	major   int
	types   *bridge.Registry
	ops     *translate.Registry
	queries reconcile.Queries
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the device logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Device) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithConnector replaces the native connection factory.
func WithConnector(c Connector) Option {
	return func(d *Device) {
		if c != nil {
			d.connector = c
		}
	}
}

// New creates a Device for the dialect named in cfg.
func New(cfg Config, opts ...Option) (*Device, error) {
	if cfg.Dialect == "" {
		return nil, fmt.Errorf("device dialect not specified")
	}
	d, ok := Get(cfg.Dialect)
	if !ok {
		return nil, &UnknownDialectError{Name: cfg.Dialect, Available: List()}
	}
	return NewWithDialect(d, cfg, opts...)
}

// NewWithDialect creates a Device for an explicit dialect.
func NewWithDialect(dialect Dialect, cfg Config, opts ...Option) (*Device, error) {
	class := cfg.ConnectionClass
	if class == "" {
		class = dialect.DefaultLegend()
	}
	legend, ok := dialect.Legends()[class]
	if !ok {
		return nil, &UnknownLegendError{Dialect: dialect.Name(), Name: class}
	}

	d := &Device{
		dialect:   dialect,
		cfg:       cfg,
		legend:    legend,
		logger:    slog.New(slog.DiscardHandler),
		connector: SQLConnector,
		major:     cfg.MajorVersion,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(slog.String("dialect", dialect.Name()))
	return d, nil
}

// Start runs the enabled start-up steps in order: version probe,
// database-ensure, registry build and support-operator install. A failure
// returns the device to Uninitialized. Starting a started device is a no-op.
func (d *Device) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case Started:
		return nil
	case Starting:
		return fmt.Errorf("device is already starting")
	}
	d.state = Starting

	if err := d.start(ctx); err != nil {
		d.state = Uninitialized
		d.major = d.cfg.MajorVersion
		d.types, d.ops, d.queries = nil, nil, nil
		return err
	}
	d.state = Started
	d.logger.Info("device started", slog.Int("major_version", d.major))
	return nil
}

func (d *Device) start(ctx context.Context) error {
	if d.cfg.ProbeVersion {
		major, err := d.probeVersion(ctx)
		if err != nil {
			return fmt.Errorf("version probe: %w", err)
		}
		d.major = major
	}

	if d.cfg.EnsureDatabase {
		err := d.withConnection(ctx, d.dialect.AdminDatabase(), func(conn Connection) error {
			return d.dialect.EnsureDatabase(ctx, conn, d.cfg.DatabaseName)
		})
		if err != nil {
			return fmt.Errorf("ensure database %s: %w", d.cfg.DatabaseName, err)
		}
		d.logger.Debug("database ensured", slog.String("database", d.cfg.DatabaseName))
	}

	env := d.Environment()
	types, err := d.dialect.BuildTypes(env)
	if err != nil {
		return fmt.Errorf("build types: %w", err)
	}
	ops, err := d.dialect.BuildOperators(env, types)
	if err != nil {
		return fmt.Errorf("build operators: %w", err)
	}
	d.types, d.ops, d.queries = types, ops, d.dialect.CatalogQueries(env)

	if d.cfg.InstallOperators {
		if err := d.installOperators(ctx); err != nil {
			return fmt.Errorf("install support operators: %w", err)
		}
	}
	return nil
}

func (d *Device) probeVersion(ctx context.Context) (int, error) {
	var version string
	err := d.withConnection(ctx, d.dialect.AdminDatabase(), func(conn Connection) error {
		rows, err := conn.Open(ctx, d.dialect.VersionQuery())
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return fmt.Errorf("version query returned no rows")
		}
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan version: %w", err)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, err
	}
	major, err := d.dialect.ParseVersion(version)
	if err != nil {
		return 0, err
	}
	d.logger.Debug("server version probed", slog.String("version", version), slog.Int("major", major))
	return major, nil
}

func (d *Device) installOperators(ctx context.Context) error {
	script, delimiter := d.dialect.SupportScript()
	batches := SplitBatches(script, delimiter)
	if len(batches) == 0 {
		return nil
	}

	return d.withConnection(ctx, d.cfg.DatabaseName, func(conn Connection) error {
		tx, err := conn.Begin(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return err
		}
		for i, batch := range batches {
			if err := tx.Execute(ctx, batch); err != nil {
				return &core.TransactionFailureError{Batch: i + 1, Cause: errors.Join(err, tx.Rollback())}
			}
		}
		if err := tx.Commit(); err != nil {
			return &core.TransactionFailureError{Batch: len(batches), Cause: err}
		}
		d.logger.Debug("support operators installed", slog.Int("batches", len(batches)))
		return nil
	})
}

// withConnection runs fn on a fresh connection to database and always
// closes it.
func (d *Device) withConnection(ctx context.Context, database string, fn func(Connection) error) (err error) {
	conn, err := d.connect(ctx, database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = &core.ConnectionFailureError{Op: "close", Cause: cerr}
		}
	}()
	return fn(conn)
}

func (d *Device) connect(ctx context.Context, database string) (Connection, error) {
	d.logger.Debug("connecting", slog.String("server", d.cfg.ServerName), slog.String("database", database))
	conn, err := d.connector(ctx, d.dialect.DriverName(), d.legend.Build(d.cfg.Tags(database)))
	if err != nil {
		var cf *core.ConnectionFailureError
		if !errors.As(err, &cf) {
			err = &core.ConnectionFailureError{Op: "connect", Cause: err}
		}
		return nil, err
	}
	return conn, nil
}

// Environment returns what the dialect sees when building registries.
func (d *Device) Environment() Environment {
	return Environment{MajorVersion: d.major, Params: d.cfg.Params, Logger: d.logger}
}

// ConnectionString returns the connection string for the configured
// database with the password masked.
func (d *Device) ConnectionString() string {
	return d.legend.Mask(d.cfg.Tags(d.cfg.DatabaseName))
}

// Dialect returns the device dialect.
func (d *Device) Dialect() Dialect { return d.dialect }

// State returns the current start-up state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// MajorVersion returns the probed or configured server major version.
func (d *Device) MajorVersion() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.major
}

// started returns the frozen registries, or ErrDeviceNotStarted.
func (d *Device) started() (*bridge.Registry, *translate.Registry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Started {
		return nil, nil, core.ErrDeviceNotStarted
	}
	return d.types, d.ops, nil
}

// Types returns the scalar type bridge of a started device.
func (d *Device) Types() (*bridge.Registry, error) {
	types, _, err := d.started()
	return types, err
}

// Operators returns the operator registry of a started device.
func (d *Device) Operators() (*translate.Registry, error) {
	_, ops, err := d.started()
	return ops, err
}

// FindScalarType resolves a native domain name requested directly.
func (d *Device) FindScalarType(nativeName string, length int, md core.MetaData) (core.ScalarType, core.MetaData, error) {
	types, _, err := d.started()
	if err != nil {
		return "", md, err
	}
	return types.FindScalarType(nativeName, length, md)
}

// Translate translates a plan into a dialect tree. Errors are local to the
// plan and leave the device untouched.
func (d *Device) Translate(plan *core.PlanNode) (sqlast.Node, error) {
	_, ops, err := d.started()
	if err != nil {
		return nil, err
	}
	return ops.Translate(plan)
}

// Emit translates a plan and renders it as SQL text.
func (d *Device) Emit(plan *core.PlanNode) (string, error) {
	n, err := d.Translate(plan)
	if err != nil {
		return "", err
	}
	return sqlast.Emit(n, d.dialect.Identifiers()), nil
}

// Connect opens a session owning one native connection to the configured
// database.
func (d *Device) Connect(ctx context.Context) (*Session, error) {
	if _, _, err := d.started(); err != nil {
		return nil, err
	}
	conn, err := d.connect(ctx, d.cfg.DatabaseName)
	if err != nil {
		return nil, err
	}
	s := newSession(d, conn)
	d.logger.Debug("session connected", slog.String("session", s.ID().String()))
	return s, nil
}

// WithSession runs fn on a new session and always closes it.
func (d *Device) WithSession(ctx context.Context, fn func(*Session) error) (err error) {
	s, err := d.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return fn(s)
}
