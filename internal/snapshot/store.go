// Package snapshot records catalog harvests in a local SQLite database so
// that two harvests of the same table can be compared.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/sqldevice/pkg/reconcile"

	// sqlite driver for the snapshot database.
	_ "modernc.org/sqlite"
)

// DefaultFile is the snapshot database used when none is configured.
const DefaultFile = ".sqldevice/snapshots.db"

var errNotOpened = errors.New("snapshot database not opened")

// Snapshot is one recorded harvest.
type Snapshot struct {
	ID          string             `json:"id" yaml:"id"`
	Device      string             `json:"device" yaml:"device"`
	Filter      string             `json:"filter" yaml:"filter"`
	Digest      string             `json:"digest" yaml:"digest"`
	Catalog     *reconcile.Catalog `json:"catalog" yaml:"catalog"`
	HarvestedAt time.Time          `json:"harvested_at" yaml:"harvested_at"`
}

// Rows returns the number of descriptor rows in the snapshot.
func (s *Snapshot) Rows() int {
	if s.Catalog == nil {
		return 0
	}
	c := s.Catalog
	return len(c.Tables) + len(c.Columns) + len(c.Indexes) + len(c.ForeignKeys)
}

// Store is the snapshot database.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a store. A nil logger discards output.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Open opens the database at path. Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open snapshot database: %w", err)
	}
	// one connection, so an in-memory database is shared by every query
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping snapshot database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("snapshot database opened", slog.String("path", path))
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save records a harvest of filter f on the named device.
func (s *Store) Save(ctx context.Context, device string, f reconcile.Filter, c *reconcile.Catalog) (*Snapshot, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}

	snap := &Snapshot{
		ID:          uuid.New().String(),
		Device:      device,
		Filter:      f.String(),
		Digest:      c.Digest(),
		Catalog:     c,
		HarvestedAt: s.now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO harvests (id, device, filter, digest, catalog, row_count, harvested_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Device, snap.Filter, snap.Digest, string(body), snap.Rows(), snap.HarvestedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved",
		slog.String("id", snap.ID),
		slog.String("filter", snap.Filter),
		slog.Int("rows", snap.Rows()))
	return snap, nil
}

// Latest returns the most recent snapshot for device and filter, or nil
// when there is none.
func (s *Store) Latest(ctx context.Context, device string, f reconcile.Filter) (*Snapshot, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	snap := &Snapshot{}
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, device, filter, digest, catalog, harvested_at FROM harvests
		WHERE device = ? AND filter = ?
		ORDER BY harvested_at DESC, rowid DESC
		LIMIT 1
	`, device, f.String()).Scan(&snap.ID, &snap.Device, &snap.Filter, &snap.Digest, &body, &snap.HarvestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	snap.Catalog = &reconcile.Catalog{}
	if err := json.Unmarshal([]byte(body), snap.Catalog); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}

// Record saves c and reports whether it is identical to the previous
// harvest of the same filter. The first harvest of a filter is never
// identical.
func (s *Store) Record(ctx context.Context, device string, f reconcile.Filter, c *reconcile.Catalog) (*Snapshot, bool, error) {
	prev, err := s.Latest(ctx, device, f)
	if err != nil {
		return nil, false, err
	}
	snap, err := s.Save(ctx, device, f, c)
	if err != nil {
		return nil, false, err
	}
	return snap, prev != nil && prev.Digest == snap.Digest, nil
}
