package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/sqldevice/internal/testutil"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDatabaseStatement(t *testing.T) {
	assert.Equal(t, `create database "OrdersDB"`, EnsureDatabaseStatement("OrdersDB"))
	assert.Equal(t, `create database "a""b"`, EnsureDatabaseStatement(`a"b`))
}

func TestDialect_Registered(t *testing.T) {
	d, ok := device.Get(Name)
	require.True(t, ok)
	assert.Equal(t, "pgx", d.DriverName())
	script, _ := d.SupportScript()
	assert.Empty(t, script)
}

func TestDialect_ParseVersion(t *testing.T) {
	major, err := New().ParseVersion("16.2 (Debian 16.2-1.pgdg120+2)")
	require.NoError(t, err)
	assert.Equal(t, 16, major)
}

func TestLegend(t *testing.T) {
	l := New().Legends()["postgres"]
	assert.Equal(t, `host=db1 dbname=orders user=app password='it\'s secret' application_name=Dataphor`,
		l.Build(map[string]string{
			device.TagServerName:      "db1",
			device.TagDatabaseName:    "orders",
			device.TagUserName:        "app",
			device.TagPassword:        "it's secret",
			device.TagApplicationName: "Dataphor",
		}))
	assert.Equal(t, "host=db1 dbname=orders gssencmode=prefer",
		l.Build(map[string]string{
			device.TagServerName:         "db1",
			device.TagDatabaseName:       "orders",
			device.TagUserName:           "app",
			device.TagIntegratedSecurity: "true",
		}))
}

func TestDialect_EnsureDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when absent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectQuery(regexp.QuoteMeta("select 1 from pg_database where datname = $1")).
			WithArgs("OrdersDB").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
		mock.ExpectExec(regexp.QuoteMeta(`create database "OrdersDB"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectClose()

		conn, err := device.NewSQLConnection(ctx, db)
		require.NoError(t, err)
		require.NoError(t, New().EnsureDatabase(ctx, conn, "OrdersDB"))
		require.NoError(t, conn.Close())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips when present", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectQuery(regexp.QuoteMeta("select 1 from pg_database")).
			WithArgs("OrdersDB").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(int64(1)))
		mock.ExpectClose()

		conn, err := device.NewSQLConnection(ctx, db)
		require.NoError(t, err)
		require.NoError(t, New().EnsureDatabase(ctx, conn, "OrdersDB"))
		require.NoError(t, conn.Close())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestDevice_Start checks that the pipeline skips the operator install when
// the dialect has no support script.
func TestDevice_Start(t *testing.T) {
	var (
		dsns  []string
		dbs   []*sql.DB
		mocks []sqlmock.Sqlmock
	)
	for range 2 {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		dbs = append(dbs, db)
		mocks = append(mocks, mock)
	}
	connector := func(ctx context.Context, driver, dsn string) (device.Connection, error) {
		assert.Equal(t, "pgx", driver)
		db := dbs[len(dsns)]
		dsns = append(dsns, dsn)
		return device.NewSQLConnection(ctx, db)
	}

	mocks[0].ExpectQuery(regexp.QuoteMeta("select current_setting('server_version')")).
		WillReturnRows(sqlmock.NewRows([]string{"current_setting"}).AddRow("15.4"))
	mocks[0].ExpectClose()
	mocks[1].ExpectQuery(regexp.QuoteMeta("select 1 from pg_database")).
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(int64(1)))
	mocks[1].ExpectClose()

	d, err := device.New(device.Config{
		Dialect:          Name,
		ServerName:       "db1",
		DatabaseName:     "orders",
		UserName:         "app",
		ProbeVersion:     true,
		EnsureDatabase:   true,
		InstallOperators: true,
	}, device.WithConnector(connector), device.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))

	assert.Equal(t, 15, d.MajorVersion())
	assert.Equal(t, []string{"host=db1 dbname=postgres user=app", "host=db1 dbname=postgres user=app"}, dsns)
	for i, mock := range mocks {
		assert.NoError(t, mock.ExpectationsWereMet(), "connection %d", i+1)
	}

	_, err = d.Translate(core.NewCall("DateTime.Ticks", core.TypeLong, core.NewColumn("orders", "placed", core.TypeDateTime)))
	assert.NoError(t, err)
}
