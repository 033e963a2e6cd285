package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/leapstack-labs/sqldevice/internal/testutil"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())

	// deterministic, strictly increasing timestamps
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func ordersCatalog(columns ...string) *reconcile.Catalog {
	c := &reconcile.Catalog{Tables: []core.TableDescriptor{{TableSchema: "dbo", TableName: "Orders"}}}
	for i, name := range columns {
		c.Columns = append(c.Columns, core.ColumnDescriptor{
			TableSchema: "dbo", TableName: "Orders", ColumnName: name,
			OrdinalPosition: i + 1, NativeDomainName: "int", Length: 4,
		})
	}
	return c
}

func TestStore_NotOpened(t *testing.T) {
	store := NewStore(nil)
	_, err := store.Latest(context.Background(), "mssql", reconcile.Filter{})
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.Migrate(), errNotOpened)
	assert.NoError(t, store.Close())
}

func TestStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// rerunning is a no-op
	require.NoError(t, store.Migrate())
}

func TestStore_SaveAndLatest(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	f := reconcile.Filter{Schema: "dbo", Table: "Orders"}

	latest, err := store.Latest(ctx, "mssql", f)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := store.Save(ctx, "mssql", f, ordersCatalog("ID"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "mssql", f, ordersCatalog("ID", "CustomerID"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Rows())

	latest, err = store.Latest(ctx, "mssql", f)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "dbo.Orders", latest.Filter)
	assert.Equal(t, ordersCatalog("ID", "CustomerID"), latest.Catalog)
	assert.Equal(t, second.Digest, latest.Catalog.Digest())

	other, err := store.Latest(ctx, "postgres", f)
	require.NoError(t, err)
	assert.Nil(t, other, "snapshots are kept per device")
}

func TestStore_Record(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	f := reconcile.Filter{Table: "Orders"}

	tests := []struct {
		name      string
		catalog   *reconcile.Catalog
		identical bool
	}{
		{"first harvest", ordersCatalog("ID"), false},
		{"unchanged", ordersCatalog("ID"), true},
		{"column added", ordersCatalog("ID", "Placed"), false},
		{"unchanged again", ordersCatalog("ID", "Placed"), true},
	}
	for _, tt := range tests {
		_, identical, err := store.Record(ctx, "mssql", f, tt.catalog)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.identical, identical, tt.name)
	}
}
