package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// record is one scanned catalog row addressed by column name. Extra columns
// are ignored; a missing expected column is an error.
type record struct {
	idx  map[string]int
	vals []any
}

func (r record) value(name string) (any, error) {
	i, ok := r.idx[name]
	if !ok {
		return nil, fmt.Errorf("missing column %q", name)
	}
	return r.vals[i], nil
}

func (r record) str(name string) (string, error) {
	v, err := r.value(name)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return fmt.Sprint(s), nil
	}
}

func (r record) int(name string) (int, error) {
	v, err := r.value(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case []byte:
		return strconv.Atoi(strings.TrimSpace(string(n)))
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("column %q: cannot read %T as integer", name, v)
	}
}

func (r record) bool(name string) (bool, error) {
	v, err := r.value(name)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	case []byte:
		return parseBool(name, string(b))
	case string:
		return parseBool(name, b)
	default:
		return false, fmt.Errorf("column %q: cannot read %T as boolean", name, v)
	}
}

func parseBool(name, s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "t":
		return true, nil
	case "0", "false", "no", "n", "f", "":
		return false, nil
	}
	return false, fmt.Errorf("column %q: cannot read %q as boolean", name, s)
}

// reader accumulates the first error so field reads stay linear.
type reader struct {
	rec record
	err error
}

func (r *reader) str(name string) string {
	if r.err != nil {
		return ""
	}
	var s string
	s, r.err = r.rec.str(name)
	return s
}

func (r *reader) int(name string) int {
	if r.err != nil {
		return 0
	}
	var n int
	n, r.err = r.rec.int(name)
	return n
}

func (r *reader) bool(name string) bool {
	if r.err != nil {
		return false
	}
	var b bool
	b, r.err = r.rec.bool(name)
	return b
}

func readTable(rec record) (core.TableDescriptor, error) {
	r := &reader{rec: rec}
	t := core.TableDescriptor{
		TableSchema: r.str("TableSchema"),
		TableName:   r.str("TableName"),
	}
	return t, r.err
}

func readColumn(rec record) (core.ColumnDescriptor, error) {
	r := &reader{rec: rec}
	c := core.ColumnDescriptor{
		TableSchema:      r.str("TableSchema"),
		TableName:        r.str("TableName"),
		ColumnName:       r.str("ColumnName"),
		OrdinalPosition:  r.int("OrdinalPosition"),
		NativeDomainName: r.str("NativeDomainName"),
		Length:           r.int("Length"),
		IsNullable:       r.bool("IsNullable"),
		IsDeferred:       r.bool("IsDeferred"),
	}
	return c, r.err
}

func readIndex(rec record) (core.IndexDescriptor, error) {
	r := &reader{rec: rec}
	ix := core.IndexDescriptor{
		TableSchema:     r.str("TableSchema"),
		TableName:       r.str("TableName"),
		IndexName:       r.str("IndexName"),
		ColumnName:      r.str("ColumnName"),
		OrdinalPosition: r.int("OrdinalPosition"),
		IsUnique:        r.bool("IsUnique"),
		IsDescending:    r.bool("IsDescending"),
	}
	return ix, r.err
}

func readForeignKey(rec record) (core.ForeignKeyDescriptor, error) {
	r := &reader{rec: rec}
	fk := core.ForeignKeyDescriptor{
		ConstraintSchema:  r.str("ConstraintSchema"),
		ConstraintName:    r.str("ConstraintName"),
		SourceTableSchema: r.str("SourceTableSchema"),
		SourceTableName:   r.str("SourceTableName"),
		SourceColumnName:  r.str("SourceColumnName"),
		TargetTableSchema: r.str("TargetTableSchema"),
		TargetTableName:   r.str("TargetTableName"),
		TargetColumnName:  r.str("TargetColumnName"),
		OrdinalPosition:   r.int("OrdinalPosition"),
	}
	return fk, r.err
}
