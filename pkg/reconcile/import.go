package reconcile

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Resolver decides which harvested columns are kept and what scalar type
// they map to. A device's type bridge satisfies it.
type Resolver interface {
	ShouldIncludeColumn(nativeName string) bool
	ResolveDomain(nativeName string, length int, md core.MetaData) (core.ScalarType, core.MetaData, error)
}

// Model is the reference catalog built from one harvest.
type Model struct {
	Tables  []*Table
	Skipped []SkippedColumn
}

// Table is an imported base table.
type Table struct {
	Schema     string
	Name       string
	MetaData   core.MetaData
	Columns    []Column
	Keys       []Key
	Orders     []Order
	References []Reference
}

// Column is an imported column with its resolved scalar type.
type Column struct {
	Name             string
	Type             core.ScalarType
	NativeDomainName string
	MetaData         core.MetaData
	Nullable         bool
	Deferred         bool
}

// Key is a unique index.
type Key struct {
	Name    string
	Columns []string
}

// Order is a non-unique index.
type Order struct {
	Name    string
	Columns []OrderColumn
}

// OrderColumn is one column of an Order.
type OrderColumn struct {
	Name       string
	Descending bool
}

// Reference is a foreign key from this table to a target table.
type Reference struct {
	Name          string
	SourceColumns []string
	TargetSchema  string
	TargetTable   string
	TargetColumns []string
}

// SkippedColumn records a column left out because its domain did not resolve.
type SkippedColumn struct {
	Schema           string
	Table            string
	Column           string
	NativeDomainName string
	Err              error
}

// Import builds the reference model from a sorted catalog. Columns whose
// native domain fails the inclusion policy are dropped silently; columns
// whose domain does not resolve are recorded in Skipped. Keys, orders and
// references over a dropped column are dropped with it.
func Import(c *Catalog, resolver Resolver, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Model{}
	tables := make(map[tableKey]*Table, len(c.Tables))
	for _, td := range c.Tables {
		t := &Table{
			Schema:   td.TableSchema,
			Name:     td.TableName,
			MetaData: core.NewMetaData(core.Tag{Name: core.TagStorageSchema, Value: td.TableSchema}),
		}
		tables[tableKey{td.TableSchema, td.TableName}] = t
		m.Tables = append(m.Tables, t)
	}

	for _, cd := range c.Columns {
		t, ok := tables[tableKey{cd.TableSchema, cd.TableName}]
		if !ok {
			logger.Debug("column of unharvested table ignored",
				slog.String("table", cd.TableSchema+"."+cd.TableName),
				slog.String("column", cd.ColumnName))
			continue
		}

		if !resolver.ShouldIncludeColumn(cd.NativeDomainName) {
			logger.Debug("column excluded by domain policy",
				slog.String("table", t.Schema+"."+t.Name),
				slog.String("column", cd.ColumnName),
				slog.String("domain", cd.NativeDomainName))
			continue
		}

		st, md, err := resolver.ResolveDomain(cd.NativeDomainName, cd.Length, core.MetaData{})
		if err != nil {
			if !errors.Is(err, core.ErrUnsupportedDomain) {
				return nil, fmt.Errorf("column %s.%s.%s: %w", t.Schema, t.Name, cd.ColumnName, err)
			}
			logger.Debug("column skipped",
				slog.String("table", t.Schema+"."+t.Name),
				slog.String("column", cd.ColumnName),
				slog.String("error", err.Error()))
			m.Skipped = append(m.Skipped, SkippedColumn{
				Schema:           t.Schema,
				Table:            t.Name,
				Column:           cd.ColumnName,
				NativeDomainName: cd.NativeDomainName,
				Err:              err,
			})
			continue
		}

		t.Columns = append(t.Columns, Column{
			Name:             cd.ColumnName,
			Type:             st,
			NativeDomainName: cd.NativeDomainName,
			MetaData:         md,
			Nullable:         cd.IsNullable,
			Deferred:         cd.IsDeferred,
		})
	}

	importIndexes(c.Indexes, tables, logger)
	importForeignKeys(c.ForeignKeys, tables, logger)
	return m, nil
}

type tableKey struct {
	schema, name string
}

func (t *Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// importIndexes groups index rows, which arrive sorted by index and ordinal.
func importIndexes(rows []core.IndexDescriptor, tables map[tableKey]*Table, logger *slog.Logger) {
	for i := 0; i < len(rows); {
		j := i
		for j < len(rows) && sameIndex(rows[i], rows[j]) {
			j++
		}
		group := rows[i:j]
		i = j

		t, ok := tables[tableKey{group[0].TableSchema, group[0].TableName}]
		if !ok || !indexColumnsPresent(t, group) {
			logger.Debug("index dropped", slog.String("index", group[0].IndexName))
			continue
		}

		if group[0].IsUnique {
			key := Key{Name: group[0].IndexName}
			for _, row := range group {
				key.Columns = append(key.Columns, row.ColumnName)
			}
			t.Keys = append(t.Keys, key)
			continue
		}
		order := Order{Name: group[0].IndexName}
		for _, row := range group {
			order.Columns = append(order.Columns, OrderColumn{Name: row.ColumnName, Descending: row.IsDescending})
		}
		t.Orders = append(t.Orders, order)
	}
}

func sameIndex(a, b core.IndexDescriptor) bool {
	return a.TableSchema == b.TableSchema && a.TableName == b.TableName && a.IndexName == b.IndexName
}

func indexColumnsPresent(t *Table, group []core.IndexDescriptor) bool {
	for _, row := range group {
		if !t.hasColumn(row.ColumnName) {
			return false
		}
	}
	return true
}

// importForeignKeys groups constraint rows, which arrive sorted by
// constraint and ordinal.
func importForeignKeys(rows []core.ForeignKeyDescriptor, tables map[tableKey]*Table, logger *slog.Logger) {
	for i := 0; i < len(rows); {
		j := i
		for j < len(rows) && sameConstraint(rows[i], rows[j]) {
			j++
		}
		group := rows[i:j]
		i = j

		first := group[0]
		source, ok := tables[tableKey{first.SourceTableSchema, first.SourceTableName}]
		if !ok {
			logger.Debug("reference dropped", slog.String("constraint", first.ConstraintName))
			continue
		}
		target := tables[tableKey{first.TargetTableSchema, first.TargetTableName}]

		ref := Reference{
			Name:         first.ConstraintName,
			TargetSchema: first.TargetTableSchema,
			TargetTable:  first.TargetTableName,
		}
		complete := true
		for _, row := range group {
			if !source.hasColumn(row.SourceColumnName) || (target != nil && !target.hasColumn(row.TargetColumnName)) {
				complete = false
				break
			}
			ref.SourceColumns = append(ref.SourceColumns, row.SourceColumnName)
			ref.TargetColumns = append(ref.TargetColumns, row.TargetColumnName)
		}
		if !complete {
			logger.Debug("reference dropped", slog.String("constraint", first.ConstraintName))
			continue
		}
		source.References = append(source.References, ref)
	}
}

func sameConstraint(a, b core.ForeignKeyDescriptor) bool {
	return a.SourceTableSchema == b.SourceTableSchema && a.SourceTableName == b.SourceTableName &&
		a.ConstraintSchema == b.ConstraintSchema && a.ConstraintName == b.ConstraintName
}
