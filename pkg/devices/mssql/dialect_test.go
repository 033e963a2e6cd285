package mssql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/sqldevice/internal/testutil"
	"github.com/leapstack-labs/sqldevice/pkg/device"
	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDatabaseStatement(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"OrdersDB", "if not exists (select * from sysdatabases where name = 'OrdersDB') create database OrdersDB"},
		{"Orders DB", "if not exists (select * from sysdatabases where name = 'Orders DB') create database [Orders DB]"},
		{"a]b'c", "if not exists (select * from sysdatabases where name = 'a]b''c') create database [a]]b'c]"},
		{"1st", "if not exists (select * from sysdatabases where name = '1st') create database [1st]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnsureDatabaseStatement(tt.name))
		})
	}
}

func TestDialect_Registered(t *testing.T) {
	assert.True(t, device.IsRegistered(Name))
	d, ok := device.Get(Name)
	require.True(t, ok)
	assert.Equal(t, "sqlserver", d.DriverName())
}

func TestDialect_ParseVersion(t *testing.T) {
	major, err := New().ParseVersion("9.00.1399.06")
	require.NoError(t, err)
	assert.Equal(t, 9, major)
}

func TestDialect_SupportScript(t *testing.T) {
	script, delimiter := New().SupportScript()
	batches := device.SplitBatches(script, delimiter)
	require.Len(t, batches, 4)
	assert.True(t, strings.HasPrefix(batches[1], "create function dbo.DAE_ToTicks"))
	assert.True(t, strings.HasPrefix(batches[3], "create function dbo.DAE_FromTicks"))
}

func TestLegends(t *testing.T) {
	tags := map[string]string{
		device.TagServerName:      "db1",
		device.TagDatabaseName:    "OrdersDB",
		device.TagUserName:        "sa",
		device.TagPassword:        "p;w",
		device.TagApplicationName: "Dataphor",
	}
	integrated := map[string]string{
		device.TagServerName:         "db1",
		device.TagDatabaseName:       "OrdersDB",
		device.TagUserName:           "sa",
		device.TagPassword:           "secret",
		device.TagIntegratedSecurity: "true",
	}

	tests := []struct {
		legend     string
		want       string
		integrated string
	}{
		{
			legend:     "mssql",
			want:       `server=db1;database=OrdersDB;user id=sa;password="p;w";app name=Dataphor`,
			integrated: "server=db1;database=OrdersDB;trusted_connection=yes",
		},
		{
			legend:     "ado",
			want:       `Data source=db1;Initial catalog=OrdersDB;User id=sa;Password="p;w";Application name=Dataphor`,
			integrated: "Data source=db1;Initial catalog=OrdersDB;Integrated security=SSPI",
		},
		{
			legend:     "odbc",
			want:       "odbc:DSN=db1;Database=OrdersDB;UID=sa;PWD={p;w};APP=Dataphor",
			integrated: "odbc:DSN=db1;Database=OrdersDB;Trusted_Connection=Yes",
		},
	}
	legends := New().Legends()
	for _, tt := range tests {
		t.Run(tt.legend, func(t *testing.T) {
			l, ok := legends[tt.legend]
			require.True(t, ok)
			assert.Equal(t, tt.want, l.Build(tags))
			assert.Equal(t, tt.integrated, l.Build(integrated))
		})
	}
}

// TestDevice_StartAndHarvest runs the full start-up pipeline and a harvest
// against mocked native connections.
func TestDevice_StartAndHarvest(t *testing.T) {
	var (
		dsns  []string
		mocks []sqlmock.Sqlmock
		dbs   []*sql.DB
	)
	for range 4 {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		dbs = append(dbs, db)
		mocks = append(mocks, mock)
	}
	connector := func(ctx context.Context, driver, dsn string) (device.Connection, error) {
		assert.Equal(t, "sqlserver", driver)
		db := dbs[len(dsns)]
		dsns = append(dsns, dsn)
		return device.NewSQLConnection(ctx, db)
	}

	mocks[0].ExpectQuery(regexp.QuoteMeta("select serverproperty('ProductVersion')")).
		WillReturnRows(sqlmock.NewRows([]string{""}).AddRow("9.00.1399.06"))
	mocks[0].ExpectClose()

	mocks[1].ExpectExec(regexp.QuoteMeta(EnsureDatabaseStatement("OrdersDB"))).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mocks[1].ExpectClose()

	mocks[2].ExpectBegin()
	for range 4 {
		mocks[2].ExpectExec(".+").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mocks[2].ExpectCommit()
	mocks[2].ExpectClose()

	q := Queries{MajorVersion: 9}
	f := reconcile.Filter{Schema: "dbo", Table: "Orders"}
	expect := func(sqlText func(reconcile.Filter) (string, []any, error), cols []string, rows ...[]any) {
		text, _, err := sqlText(f)
		require.NoError(t, err)
		r := sqlmock.NewRows(cols)
		for _, row := range rows {
			vals := make([]driver.Value, len(row))
			for i, v := range row {
				vals[i] = v
			}
			r.AddRow(vals...)
		}
		mocks[3].ExpectQuery(regexp.QuoteMeta(text)).WithArgs("Orders", "dbo").WillReturnRows(r)
	}
	expect(q.Tables, []string{"TableSchema", "TableName"}, []any{"dbo", "Orders"})
	expect(q.Columns,
		[]string{"TableSchema", "TableName", "ColumnName", "OrdinalPosition", "NativeDomainName", "Length", "IsNullable", "IsDeferred"},
		[]any{"dbo", "Orders", "ID", int64(1), "int", int64(4), false, int64(0)},
		[]any{"dbo", "Orders", "Notes", int64(2), "xml", int64(-1), true, int64(1)},
		[]any{"dbo", "Orders", "Placed", int64(3), "datetime", int64(8), false, int64(0)},
	)
	expect(q.Indexes,
		[]string{"TableSchema", "TableName", "IndexName", "ColumnName", "OrdinalPosition", "IsUnique", "IsDescending"},
		[]any{"dbo", "Orders", "PK_Orders", "ID", int64(1), true, false},
	)
	expect(q.ForeignKeys,
		[]string{"ConstraintSchema", "ConstraintName", "SourceTableSchema", "SourceTableName", "SourceColumnName", "TargetTableSchema", "TargetTableName", "TargetColumnName", "OrdinalPosition"},
	)
	mocks[3].ExpectClose()

	d, err := device.New(device.Config{
		Dialect:          Name,
		ServerName:       "db1",
		DatabaseName:     "OrdersDB",
		UserName:         "sa",
		Password:         "secret",
		ProbeVersion:     true,
		EnsureDatabase:   true,
		InstallOperators: true,
	}, device.WithConnector(connector), device.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	assert.Equal(t, 9, d.MajorVersion())

	var model *reconcile.Model
	err = d.WithSession(context.Background(), func(s *device.Session) error {
		var err error
		model, err = s.Reconcile(context.Background(), f)
		return err
	})
	require.NoError(t, err)

	require.Len(t, model.Tables, 1)
	orders := model.Tables[0]
	require.Len(t, orders.Columns, 2, "xml is excluded")
	assert.Equal(t, "Placed", orders.Columns[1].Name)
	assert.Equal(t, []reconcile.Key{{Name: "PK_Orders", Columns: []string{"ID"}}}, orders.Keys)
	assert.Empty(t, model.Skipped)

	assert.Equal(t, "server=db1;database=master;user id=sa;password=secret", dsns[0])
	assert.Equal(t, "server=db1;database=OrdersDB;user id=sa;password=secret", dsns[2])
	for i, mock := range mocks {
		assert.NoError(t, mock.ExpectationsWereMet(), "connection %d", i+1)
	}
}
