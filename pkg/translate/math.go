package translate

import (
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
)

// Truncator truncates x toward zero in the dialect.
type Truncator func(x sqlast.Expr) sqlast.Expr

// RoundTruncator truncates with a rounding call whose third argument
// selects truncation: round(x, 0, 1).
func RoundTruncator(x sqlast.Expr) sqlast.Expr {
	return sqlast.Call("round", x, sqlast.Lit("0"), sqlast.Lit("1"))
}

// TruncTruncator truncates with trunc(x).
func TruncTruncator(x sqlast.Expr) sqlast.Expr {
	return sqlast.Call("trunc", x)
}

// Truncate translates the integral part of x.
func Truncate(trunc Truncator) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		return trunc(x), nil
	}
}

// Frac translates the fractional part of x as x - truncate(x).
// The operand is translated twice.
func Frac(trunc Truncator) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		inner, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		return sqlast.Binary(x, sqlast.OpMinus, trunc(inner)), nil
	}
}

// LogQuotient synthesizes LogB(x, b) as ln(x) / ln(b) from the dialect's
// natural logarithm function.
func LogQuotient(ln string) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 2); err != nil {
			return nil, err
		}
		args, err := operands(node, child)
		if err != nil {
			return nil, err
		}
		return sqlast.Binary(sqlast.Call(ln, args[0]), sqlast.OpDiv, sqlast.Call(ln, args[1])), nil
	}
}

// LogNative translates LogB(x, b) to a two-argument log call. baseFirst
// selects log(b, x) over log(x, b).
func LogNative(name string, baseFirst bool) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 2); err != nil {
			return nil, err
		}
		args, err := operands(node, child)
		if err != nil {
			return nil, err
		}
		if baseFirst {
			return sqlast.Call(name, args[1], args[0]), nil
		}
		return sqlast.Call(name, args[0], args[1]), nil
	}
}
