package translate

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
)

// Relational translations cover base table access, restriction and
// projection. Each produces a SelectStatement.

// Get translates a base table access. hints supplies optimizer hints at
// translation time; it may be nil.
func Get(hints func() []string) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		stmt := &sqlast.SelectStatement{From: tableRef(node.Table())}
		items, err := selectItems(node.Children(), child)
		if err != nil {
			return nil, err
		}
		stmt.Columns = items
		if hints != nil {
			stmt.Hints = hints()
		}
		return stmt, nil
	}
}

// Restrict translates Restrict(source, predicate), conjoining the predicate
// with any existing where clause.
func Restrict(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
	if err := arity(node, 2); err != nil {
		return nil, err
	}
	stmt, err := source(node, child)
	if err != nil {
		return nil, err
	}
	pred, err := Expr(child, node.Child(1))
	if err != nil {
		return nil, err
	}
	stmt.Where = sqlast.And(stmt.Where, pred)
	return stmt, nil
}

// Project translates Project(source, columns...), replacing the select list.
func Project(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
	if node.NumChildren() < 2 {
		return nil, fmt.Errorf("operator %q: expected a source and at least one column", node.Operator())
	}
	stmt, err := source(node, child)
	if err != nil {
		return nil, err
	}
	items, err := selectItems(node.Children()[1:], child)
	if err != nil {
		return nil, err
	}
	stmt.Columns = items
	return stmt, nil
}

// Relational returns the Get, Restrict and Project translations.
func Relational(hints func() []string) map[string]Translation {
	return map[string]Translation{
		core.OpGet:      Get(hints),
		core.OpRestrict: Restrict,
		core.OpProject:  Project,
	}
}

// source translates the relational operand of node and copies the statement
// so the caller may modify it.
func source(node *core.PlanNode, child ChildFunc) (*sqlast.SelectStatement, error) {
	n, err := child(node.Child(0))
	if err != nil {
		return nil, err
	}
	stmt, ok := n.(*sqlast.SelectStatement)
	if !ok {
		return nil, fmt.Errorf("operator %q: expected a relational operand, got %T", node.Operator(), n)
	}
	out := *stmt
	return &out, nil
}

func selectItems(columns []*core.PlanNode, child ChildFunc) ([]sqlast.SelectItem, error) {
	items := make([]sqlast.SelectItem, 0, len(columns))
	for _, col := range columns {
		e, err := Expr(child, col)
		if err != nil {
			return nil, err
		}
		items = append(items, sqlast.SelectItem{Expr: e})
	}
	return items, nil
}

// tableRef splits an optionally schema-qualified table name.
func tableRef(name string) *sqlast.TableRef {
	if schema, table, ok := strings.Cut(name, "."); ok {
		return &sqlast.TableRef{Schema: schema, Name: table}
	}
	return &sqlast.TableRef{Name: name}
}
