package mssql

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
)

// Queries builds the catalog harvest queries. Servers from 2005 (major 9)
// on are read through the sys.* catalog views; older servers through the
// sysobjects family of system tables.
type Queries struct {
	MajorVersion int
}

func (q Queries) legacy() bool { return q.MajorVersion < 9 }

func selectAtP(columns ...string) sq.SelectBuilder {
	return reconcile.Select(sq.AtP, columns...)
}

// Tables lists user tables.
func (q Queries) Tables(f reconcile.Filter) (string, []any, error) {
	if q.legacy() {
		b := selectAtP("user_name(o.uid) as TableSchema", "o.name as TableName").
			From("sysobjects o").
			Where("o.xtype = 'U'").
			OrderBy("user_name(o.uid)", "o.name")
		return reconcile.FilterTable(b, "user_name(o.uid)", "o.name", f).ToSql()
	}
	b := selectAtP("s.name as TableSchema", "t.name as TableName").
		From("sys.tables t").
		Join("sys.schemas s on s.schema_id = t.schema_id").
		Where("t.is_ms_shipped = 0").
		OrderBy("s.name", "t.name")
	return reconcile.FilterTable(b, "s.name", "t.name", f).ToSql()
}

// Columns lists the columns of user tables. Length is in characters for
// national character types. Large object columns are deferred.
func (q Queries) Columns(f reconcile.Filter) (string, []any, error) {
	if q.legacy() {
		b := selectAtP(
			"user_name(o.uid) as TableSchema",
			"o.name as TableName",
			"c.name as ColumnName",
			"c.colid as OrdinalPosition",
			"ty.name as NativeDomainName",
			"case when ty.name in ('nchar', 'nvarchar') then c.length / 2 else c.length end as Length",
			"c.isnullable as IsNullable",
			"case when ty.name in ('text', 'ntext', 'image') then 1 else 0 end as IsDeferred",
		).
			From("syscolumns c").
			Join("sysobjects o on o.id = c.id").
			Join("systypes ty on ty.xusertype = c.xusertype").
			Where("o.xtype = 'U'").
			OrderBy("user_name(o.uid)", "o.name", "c.colid")
		return reconcile.FilterTable(b, "user_name(o.uid)", "o.name", f).ToSql()
	}
	b := selectAtP(
		"s.name as TableSchema",
		"t.name as TableName",
		"c.name as ColumnName",
		"c.column_id as OrdinalPosition",
		"ty.name as NativeDomainName",
		"case when ty.name in ('nchar', 'nvarchar') and c.max_length > 0 then c.max_length / 2 else c.max_length end as Length",
		"c.is_nullable as IsNullable",
		"case when c.max_length = -1 or ty.name in ('text', 'ntext', 'image', 'xml') then 1 else 0 end as IsDeferred",
	).
		From("sys.columns c").
		Join("sys.tables t on t.object_id = c.object_id").
		Join("sys.schemas s on s.schema_id = t.schema_id").
		Join("sys.types ty on ty.user_type_id = c.user_type_id").
		Where("t.is_ms_shipped = 0").
		OrderBy("s.name", "t.name", "c.column_id")
	return reconcile.FilterTable(b, "s.name", "t.name", f).ToSql()
}

// Indexes lists index key columns, statistics and heaps excluded.
func (q Queries) Indexes(f reconcile.Filter) (string, []any, error) {
	if q.legacy() {
		b := selectAtP(
			"user_name(o.uid) as TableSchema",
			"o.name as TableName",
			"i.name as IndexName",
			"c.name as ColumnName",
			"k.keyno as OrdinalPosition",
			"case when i.status & 2 = 2 then 1 else 0 end as IsUnique",
			"isnull(indexkey_property(i.id, i.indid, k.keyno, 'IsDescending'), 0) as IsDescending",
		).
			From("sysindexes i").
			Join("sysobjects o on o.id = i.id").
			Join("sysindexkeys k on k.id = i.id and k.indid = i.indid").
			Join("syscolumns c on c.id = k.id and c.colid = k.colid").
			Where("o.xtype = 'U'").
			Where("i.indid between 1 and 254").
			Where("indexproperty(i.id, i.name, 'IsStatistics') = 0").
			OrderBy("user_name(o.uid)", "o.name", "i.name", "k.keyno")
		return reconcile.FilterTable(b, "user_name(o.uid)", "o.name", f).ToSql()
	}
	b := selectAtP(
		"s.name as TableSchema",
		"t.name as TableName",
		"i.name as IndexName",
		"c.name as ColumnName",
		"ic.key_ordinal as OrdinalPosition",
		"i.is_unique as IsUnique",
		"ic.is_descending_key as IsDescending",
	).
		From("sys.indexes i").
		Join("sys.tables t on t.object_id = i.object_id").
		Join("sys.schemas s on s.schema_id = t.schema_id").
		Join("sys.index_columns ic on ic.object_id = i.object_id and ic.index_id = i.index_id").
		Join("sys.columns c on c.object_id = ic.object_id and c.column_id = ic.column_id").
		Where("t.is_ms_shipped = 0").
		Where("i.type > 0").
		Where("ic.key_ordinal > 0").
		OrderBy("s.name", "t.name", "i.name", "ic.key_ordinal")
	return reconcile.FilterTable(b, "s.name", "t.name", f).ToSql()
}

// ForeignKeys lists foreign key column pairs, filtered on the source table.
func (q Queries) ForeignKeys(f reconcile.Filter) (string, []any, error) {
	if q.legacy() {
		b := selectAtP(
			"user_name(co.uid) as ConstraintSchema",
			"co.name as ConstraintName",
			"user_name(so.uid) as SourceTableSchema",
			"so.name as SourceTableName",
			"sc.name as SourceColumnName",
			"user_name(ro.uid) as TargetTableSchema",
			"ro.name as TargetTableName",
			"rc.name as TargetColumnName",
			"fk.keyno as OrdinalPosition",
		).
			From("sysforeignkeys fk").
			Join("sysobjects co on co.id = fk.constid").
			Join("sysobjects so on so.id = fk.fkeyid").
			Join("syscolumns sc on sc.id = fk.fkeyid and sc.colid = fk.fkey").
			Join("sysobjects ro on ro.id = fk.rkeyid").
			Join("syscolumns rc on rc.id = fk.rkeyid and rc.colid = fk.rkey").
			OrderBy("user_name(so.uid)", "so.name", "co.name", "fk.keyno")
		return reconcile.FilterTable(b, "user_name(so.uid)", "so.name", f).ToSql()
	}
	b := selectAtP(
		"s.name as ConstraintSchema",
		"fk.name as ConstraintName",
		"ss.name as SourceTableSchema",
		"st.name as SourceTableName",
		"sc.name as SourceColumnName",
		"ts.name as TargetTableSchema",
		"tt.name as TargetTableName",
		"tc.name as TargetColumnName",
		"fkc.constraint_column_id as OrdinalPosition",
	).
		From("sys.foreign_keys fk").
		Join("sys.schemas s on s.schema_id = fk.schema_id").
		Join("sys.foreign_key_columns fkc on fkc.constraint_object_id = fk.object_id").
		Join("sys.tables st on st.object_id = fkc.parent_object_id").
		Join("sys.schemas ss on ss.schema_id = st.schema_id").
		Join("sys.columns sc on sc.object_id = fkc.parent_object_id and sc.column_id = fkc.parent_column_id").
		Join("sys.tables tt on tt.object_id = fkc.referenced_object_id").
		Join("sys.schemas ts on ts.schema_id = tt.schema_id").
		Join("sys.columns tc on tc.object_id = fkc.referenced_object_id and tc.column_id = fkc.referenced_column_id").
		OrderBy("ss.name", "st.name", "fk.name", "fkc.constraint_column_id")
	return reconcile.FilterTable(b, "ss.name", "st.name", f).ToSql()
}
