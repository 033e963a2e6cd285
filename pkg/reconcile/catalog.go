// Package reconcile harvests a live database's catalog into normalized
// descriptor rows and imports them into a reference catalog model.
package reconcile

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Filter limits a harvest to one table. The zero value harvests every table.
type Filter struct {
	Schema string
	Table  string
}

// IsZero reports whether f selects every table.
func (f Filter) IsZero() bool { return f.Table == "" }

// String returns schema.table, table, or "*".
func (f Filter) String() string {
	switch {
	case f.Table == "":
		return "*"
	case f.Schema == "":
		return f.Table
	default:
		return f.Schema + "." + f.Table
	}
}

// Normalize returns f with each part converted to its catalog name under
// ids: quoted parts are taken literally, unquoted parts are folded.
func (f Filter) Normalize(ids core.IdentifierConfig) Filter {
	if f.Schema != "" {
		f.Schema = ids.CatalogName(f.Schema)
	}
	if f.Table != "" {
		f.Table = ids.CatalogName(f.Table)
	}
	return f
}

// ParseFilter splits an optionally schema-qualified table name.
func ParseFilter(table string) Filter {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return Filter{Schema: schema, Table: name}
	}
	return Filter{Table: table}
}

// Queries builds a dialect's catalog queries. Each query returns the
// column names its reader expects and orders by table, then ordinal.
type Queries interface {
	Tables(f Filter) (string, []any, error)
	Columns(f Filter) (string, []any, error)
	Indexes(f Filter) (string, []any, error)
	ForeignKeys(f Filter) (string, []any, error)
}

// Querier runs a catalog query on a native connection.
type Querier interface {
	Open(ctx context.Context, query string, args ...any) (*core.Rows, error)
}

// Catalog holds one harvest, sorted deterministically.
type Catalog struct {
	Tables      []core.TableDescriptor      `json:"tables" yaml:"tables"`
	Columns     []core.ColumnDescriptor     `json:"columns" yaml:"columns"`
	Indexes     []core.IndexDescriptor      `json:"indexes" yaml:"indexes"`
	ForeignKeys []core.ForeignKeyDescriptor `json:"foreign_keys" yaml:"foreign_keys"`
}

// Harvest runs the four catalog queries and returns the sorted result.
// It only reads.
func Harvest(ctx context.Context, q Querier, queries Queries, f Filter) (*Catalog, error) {
	c := &Catalog{}
	var err error

	if c.Tables, err = harvest(ctx, q, "tables", f, queries.Tables, readTable); err != nil {
		return nil, err
	}
	if c.Columns, err = harvest(ctx, q, "columns", f, queries.Columns, readColumn); err != nil {
		return nil, err
	}
	if c.Indexes, err = harvest(ctx, q, "indexes", f, queries.Indexes, readIndex); err != nil {
		return nil, err
	}
	if c.ForeignKeys, err = harvest(ctx, q, "foreign keys", f, queries.ForeignKeys, readForeignKey); err != nil {
		return nil, err
	}

	c.Sort()
	return c, nil
}

func harvest[T any](
	ctx context.Context,
	q Querier,
	what string,
	f Filter,
	build func(Filter) (string, []any, error),
	read func(record) (T, error),
) ([]T, error) {
	query, args, err := build(f)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}

	rows, err := q.Open(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	idx, err := rows.ColumnIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s columns: %w", what, err)
	}

	var out []T
	for rows.Next() {
		vals := make([]any, len(idx))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		item, err := read(record{idx: idx, vals: vals})
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", what, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return out, nil
}

// Sort orders every row set by (schema, table, [index or constraint], ordinal).
// Rows equal on all keys keep their relative order.
func (c *Catalog) Sort() {
	slices.SortStableFunc(c.Tables, func(a, b core.TableDescriptor) int {
		return cmp.Or(
			cmp.Compare(a.TableSchema, b.TableSchema),
			cmp.Compare(a.TableName, b.TableName),
		)
	})
	slices.SortStableFunc(c.Columns, func(a, b core.ColumnDescriptor) int {
		return cmp.Or(
			cmp.Compare(a.TableSchema, b.TableSchema),
			cmp.Compare(a.TableName, b.TableName),
			cmp.Compare(a.OrdinalPosition, b.OrdinalPosition),
		)
	})
	slices.SortStableFunc(c.Indexes, func(a, b core.IndexDescriptor) int {
		return cmp.Or(
			cmp.Compare(a.TableSchema, b.TableSchema),
			cmp.Compare(a.TableName, b.TableName),
			cmp.Compare(a.IndexName, b.IndexName),
			cmp.Compare(a.OrdinalPosition, b.OrdinalPosition),
		)
	})
	slices.SortStableFunc(c.ForeignKeys, func(a, b core.ForeignKeyDescriptor) int {
		return cmp.Or(
			cmp.Compare(a.SourceTableSchema, b.SourceTableSchema),
			cmp.Compare(a.SourceTableName, b.SourceTableName),
			cmp.Compare(a.ConstraintSchema, b.ConstraintSchema),
			cmp.Compare(a.ConstraintName, b.ConstraintName),
			cmp.Compare(a.OrdinalPosition, b.OrdinalPosition),
		)
	})
}

// Normalized renders the catalog as one tab-separated line per row, in
// sorted order. Two harvests of an unchanged backend render identically.
func (c *Catalog) Normalized() string {
	var b strings.Builder
	line := func(fields ...string) {
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}
	for _, t := range c.Tables {
		line("table", t.TableSchema, t.TableName)
	}
	for _, col := range c.Columns {
		line("column", col.TableSchema, col.TableName, col.ColumnName,
			strconv.Itoa(col.OrdinalPosition), col.NativeDomainName, strconv.Itoa(col.Length),
			strconv.FormatBool(col.IsNullable), strconv.FormatBool(col.IsDeferred))
	}
	for _, ix := range c.Indexes {
		line("index", ix.TableSchema, ix.TableName, ix.IndexName, ix.ColumnName,
			strconv.Itoa(ix.OrdinalPosition), strconv.FormatBool(ix.IsUnique), strconv.FormatBool(ix.IsDescending))
	}
	for _, fk := range c.ForeignKeys {
		line("foreign_key", fk.ConstraintSchema, fk.ConstraintName,
			fk.SourceTableSchema, fk.SourceTableName, fk.SourceColumnName,
			fk.TargetTableSchema, fk.TargetTableName, fk.TargetColumnName,
			strconv.Itoa(fk.OrdinalPosition))
	}
	return b.String()
}

// Digest returns the hex SHA-256 of Normalized.
func (c *Catalog) Digest() string {
	sum := sha256.Sum256([]byte(c.Normalized()))
	return hex.EncodeToString(sum[:])
}
