package postgres

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
)

// Queries builds the catalog harvest queries from information_schema and,
// for index key order, pg_catalog. Aliases are quoted so the column names
// keep their case.
type Queries struct{}

var systemSchemas = sq.NotEq{"table_schema": []string{"pg_catalog", "information_schema"}}

func selectDollar(columns ...string) sq.SelectBuilder {
	return reconcile.Select(sq.Dollar, columns...)
}

// Tables lists base tables outside the system schemas.
func (Queries) Tables(f reconcile.Filter) (string, []any, error) {
	b := selectDollar(`table_schema as "TableSchema"`, `table_name as "TableName"`).
		From("information_schema.tables").
		Where("table_type = 'BASE TABLE'").
		Where(systemSchemas).
		OrderBy("table_schema", "table_name")
	return reconcile.FilterTable(b, "table_schema", "table_name", f).ToSql()
}

// Columns lists the columns of base tables. bytea and text columns are
// deferred.
func (Queries) Columns(f reconcile.Filter) (string, []any, error) {
	b := selectDollar(
		`c.table_schema as "TableSchema"`,
		`c.table_name as "TableName"`,
		`c.column_name as "ColumnName"`,
		`c.ordinal_position as "OrdinalPosition"`,
		`c.data_type as "NativeDomainName"`,
		`coalesce(c.character_maximum_length, 0) as "Length"`,
		`c.is_nullable = 'YES' as "IsNullable"`,
		`c.data_type in ('bytea', 'text') as "IsDeferred"`,
	).
		From("information_schema.columns c").
		Join("information_schema.tables t on t.table_schema = c.table_schema and t.table_name = c.table_name").
		Where("t.table_type = 'BASE TABLE'").
		Where(sq.NotEq{"c.table_schema": []string{"pg_catalog", "information_schema"}}).
		OrderBy("c.table_schema", "c.table_name", "c.ordinal_position")
	return reconcile.FilterTable(b, "c.table_schema", "c.table_name", f).ToSql()
}

// Indexes lists index key columns. Expression keys (attnum 0) are skipped.
func (Queries) Indexes(f reconcile.Filter) (string, []any, error) {
	b := selectDollar(
		`n.nspname as "TableSchema"`,
		`t.relname as "TableName"`,
		`i.relname as "IndexName"`,
		`a.attname as "ColumnName"`,
		`k.ord as "OrdinalPosition"`,
		`ix.indisunique as "IsUnique"`,
		`(ix.indoption[k.ord - 1] & 1) = 1 as "IsDescending"`,
	).
		From("pg_index ix").
		Join("pg_class t on t.oid = ix.indrelid").
		Join("pg_class i on i.oid = ix.indexrelid").
		Join("pg_namespace n on n.oid = t.relnamespace").
		JoinClause("cross join lateral unnest(ix.indkey) with ordinality as k(attnum, ord)").
		Join("pg_attribute a on a.attrelid = t.oid and a.attnum = k.attnum").
		Where("t.relkind = 'r'").
		Where(sq.NotEq{"n.nspname": []string{"pg_catalog", "information_schema", "pg_toast"}}).
		OrderBy("n.nspname", "t.relname", "i.relname", "k.ord")
	return reconcile.FilterTable(b, "n.nspname", "t.relname", f).ToSql()
}

// ForeignKeys lists foreign key column pairs, filtered on the source table.
func (Queries) ForeignKeys(f reconcile.Filter) (string, []any, error) {
	b := selectDollar(
		`rc.constraint_schema as "ConstraintSchema"`,
		`rc.constraint_name as "ConstraintName"`,
		`src.table_schema as "SourceTableSchema"`,
		`src.table_name as "SourceTableName"`,
		`src.column_name as "SourceColumnName"`,
		`tgt.table_schema as "TargetTableSchema"`,
		`tgt.table_name as "TargetTableName"`,
		`tgt.column_name as "TargetColumnName"`,
		`src.ordinal_position as "OrdinalPosition"`,
	).
		From("information_schema.referential_constraints rc").
		Join("information_schema.key_column_usage src on src.constraint_schema = rc.constraint_schema and src.constraint_name = rc.constraint_name").
		Join("information_schema.key_column_usage tgt on tgt.constraint_schema = rc.unique_constraint_schema and tgt.constraint_name = rc.unique_constraint_name and tgt.ordinal_position = src.position_in_unique_constraint").
		OrderBy("src.table_schema", "src.table_name", "rc.constraint_name", "src.ordinal_position")
	return reconcile.FilterTable(b, "src.table_schema", "src.table_name", f).ToSql()
}
