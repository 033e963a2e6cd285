// Package translate maps plan nodes to dialect trees through a strategy
// table keyed by operator identity.
//
// Dialects compose a table from the toolbox in this package (standard.go,
// unsigned.go, math.go, datetime.go, relational.go) and add entries of
// their own. The table is frozen by Build and safe for concurrent use.
package translate

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
)

// ChildFunc translates an operand by re-entering the registry. Each call
// produces a fresh tree, so an operand used twice is translated twice.
type ChildFunc func(node *core.PlanNode) (sqlast.Node, error)

// Translation turns one plan node into a dialect tree.
type Translation func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error)

// Builder accumulates translations before they are frozen.
type Builder struct {
	dialect      string
	translations map[string]Translation
}

// NewBuilder creates an empty Builder for the named dialect.
func NewBuilder(dialect string) *Builder {
	return &Builder{
		dialect:      dialect,
		translations: make(map[string]Translation),
	}
}

// Register adds or replaces the translation for op.
func (b *Builder) Register(op string, fn Translation) *Builder {
	b.translations[op] = fn
	return b
}

// RegisterAll adds every entry of set.
func (b *Builder) RegisterAll(set map[string]Translation) *Builder {
	for op, fn := range set {
		b.Register(op, fn)
	}
	return b
}

// Build returns a frozen Registry. Later changes to the builder do not
// affect registries already built.
func (b *Builder) Build() *Registry {
	r := &Registry{
		dialect:      b.dialect,
		translations: make(map[string]Translation, len(b.translations)),
	}
	for op, fn := range b.translations {
		r.translations[op] = fn
	}
	return r
}

// Registry is an immutable translation table.
type Registry struct {
	dialect      string
	translations map[string]Translation
}

// Translate translates node and its operands. An operator with no entry
// fails with UnsupportedOperatorError; the registry is unaffected.
func (r *Registry) Translate(node *core.PlanNode) (sqlast.Node, error) {
	if node == nil {
		return nil, fmt.Errorf("translate: nil plan node")
	}
	fn, ok := r.translations[node.Operator()]
	if !ok {
		return nil, &core.UnsupportedOperatorError{Operator: node.Operator(), Dialect: r.dialect}
	}
	return fn(node, r.Translate)
}

// TranslateExpr translates a scalar node.
func (r *Registry) TranslateExpr(node *core.PlanNode) (sqlast.Expr, error) {
	return Expr(r.Translate, node)
}

// Has reports whether op has a translation.
func (r *Registry) Has(op string) bool {
	_, ok := r.translations[op]
	return ok
}

// Operators returns the registered operator identities, sorted.
func (r *Registry) Operators() []string {
	ops := make([]string, 0, len(r.translations))
	for op := range r.translations {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Dialect returns the dialect name the registry was built for.
func (r *Registry) Dialect() string { return r.dialect }

// Expr translates node through child and requires a scalar result.
func Expr(child ChildFunc, node *core.PlanNode) (sqlast.Expr, error) {
	n, err := child(node)
	if err != nil {
		return nil, err
	}
	e, ok := n.(sqlast.Expr)
	if !ok {
		return nil, fmt.Errorf("operator %q: expected a scalar expression, got %T", node.Operator(), n)
	}
	return e, nil
}

// operands translates every child of node in order.
func operands(node *core.PlanNode, child ChildFunc) ([]sqlast.Expr, error) {
	args := make([]sqlast.Expr, node.NumChildren())
	for i := range args {
		e, err := Expr(child, node.Child(i))
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	return args, nil
}

// arity fails unless node has exactly n operands.
func arity(node *core.PlanNode, n int) error {
	if node.NumChildren() != n {
		return fmt.Errorf("operator %q: expected %d operands, got %d", node.Operator(), n, node.NumChildren())
	}
	return nil
}
