package translate

import (
	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
)

// --- Standard Translations ---
// Pre-built translations that dialects compose into their tables.

// Value renders a literal node through the type bridge.
func Value(types *bridge.Registry) Translation {
	return func(node *core.PlanNode, _ ChildFunc) (sqlast.Node, error) {
		text, err := types.ToLiteral(node.DataType(), node.Value(), core.MetaData{})
		if err != nil {
			return nil, err
		}
		return sqlast.Lit(text), nil
	}
}

// Column references a column of a base table or range variable.
func Column(node *core.PlanNode, _ ChildFunc) (sqlast.Node, error) {
	return &sqlast.ColumnExpr{Table: node.Table(), Column: node.Column()}, nil
}

// Infix translates a two-operand instruction to a binary operator.
func Infix(op string) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 2); err != nil {
			return nil, err
		}
		args, err := operands(node, child)
		if err != nil {
			return nil, err
		}
		return sqlast.Binary(args[0], op, args[1]), nil
	}
}

// Prefix translates a one-operand instruction to a prefix operator.
func Prefix(op string) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		return &sqlast.UnaryExpr{Op: op, Expr: x}, nil
	}
}

// Postfix translates a one-operand predicate such as is null.
func Postfix(op string) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		return &sqlast.PostfixExpr{Expr: x, Op: op}, nil
	}
}

// Direct wraps the operands in a call to name, one to one.
func Direct(name string) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		args, err := operands(node, child)
		if err != nil {
			return nil, err
		}
		return sqlast.Call(name, args...), nil
	}
}

// Addition adds numbers and concatenates strings with concatOp.
func Addition(concatOp string) Translation {
	add := Infix(sqlast.OpPlus)
	concat := Infix(concatOp)
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if node.DataType() == core.TypeString {
			return concat(node, child)
		}
		return add(node, child)
	}
}

// Standard returns the comparison, logical, arithmetic and bitwise
// translations every dialect shares.
func Standard(types *bridge.Registry) map[string]Translation {
	return map[string]Translation{
		core.OpValue:  Value(types),
		core.OpColumn: Column,

		"iEqual":            Infix(sqlast.OpEq),
		"iNotEqual":         Infix(sqlast.OpNotEq),
		"iLess":             Infix(sqlast.OpLt),
		"iInclusiveLess":    Infix(sqlast.OpLtEq),
		"iGreater":          Infix(sqlast.OpGt),
		"iInclusiveGreater": Infix(sqlast.OpGtEq),

		"iAnd":      Infix(sqlast.OpAnd),
		"iOr":       Infix(sqlast.OpOr),
		"iNot":      Prefix(sqlast.OpNot),
		"IsNull":    Postfix(sqlast.OpIsNull),
		"IsNotNull": Postfix(sqlast.OpIsNotNull),

		"iAddition":       Addition(sqlast.OpConcat),
		"iSubtraction":    Infix(sqlast.OpMinus),
		"iMultiplication": Infix(sqlast.OpMul),
		"iDivision":       Infix(sqlast.OpDiv),
		"iMod":            Infix(sqlast.OpMod),
		"iNegate":         Prefix(sqlast.OpMinus),

		"iBitwiseAnd": Infix(sqlast.OpBitAnd),
		"iBitwiseOr":  Infix(sqlast.OpBitOr),
		"iBitwiseXor": Infix(sqlast.OpBitXor),
		"iBitwiseNot": Prefix(sqlast.OpBitNot),
	}
}

// DirectCalls maps instruction identities to dialect function names.
func DirectCalls(names map[string]string) map[string]Translation {
	out := make(map[string]Translation, len(names))
	for op, name := range names {
		out[op] = Direct(name)
	}
	return out
}
