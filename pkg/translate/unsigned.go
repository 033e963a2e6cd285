package translate

import (
	"fmt"
	"math/big"

	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
)

// Unsigned emulation on dialects whose integers are all signed.
//
// An unsigned N-bit value widened into a larger signed container is the
// mask x & (2^N-1). Reinterpreting the low N bits as a signed N-bit value
// is exactly
//
//	((x & (2^N-1)) & ~2^(N-1)) - (2^(N-1) & x)
//
// with that grouping; round-trip tests across the sign boundary depend on it.

func mask(bits uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), bits)
	return m.Sub(m, big.NewInt(1))
}

func signBit(bits uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), bits-1)
}

// Literal renders an integer constant in the dialect. Dialects whose
// untyped constants narrow to a non-integral type above some bound cast
// large constants explicitly.
type Literal func(v *big.Int) sqlast.Expr

// PlainLiteral renders v as decimal digits.
func PlainLiteral(v *big.Int) sqlast.Expr {
	return sqlast.Lit(v.String())
}

func checkWidth(bits uint) {
	if bits == 0 || bits > 64 {
		panic(fmt.Sprintf("translate: unsupported integer width %d", bits))
	}
}

// Mask translates to x & (2^bits-1).
func Mask(bits uint, lit Literal) Translation {
	checkWidth(bits)
	m := lit(mask(bits))
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		return sqlast.Binary(x, sqlast.OpBitAnd, m), nil
	}
}

// Reinterpret translates to the signed reinterpretation of the low bits of x.
// The operand is translated twice.
func Reinterpret(bits uint, lit Literal) Translation {
	checkWidth(bits)
	m := mask(bits)
	sign := signBit(bits)
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		low, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		high, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		magnitude := sqlast.Binary(
			sqlast.Binary(low, sqlast.OpBitAnd, lit(m)),
			sqlast.OpBitAnd,
			&sqlast.UnaryExpr{Op: sqlast.OpBitNot, Expr: lit(sign)},
		)
		return sqlast.Binary(magnitude, sqlast.OpMinus, sqlast.Binary(lit(sign), sqlast.OpBitAnd, high)), nil
	}
}

// Without a native unsigned 64-bit type the 64-bit mask and sign literals do
// not fit any integer type the bitwise operators accept. ULong values live in
// an exact numeric domain instead, and the two 64-bit conversions are done
// arithmetically with the same results as Mask(64) and Reinterpret(64).

// WidenLong translates a signed 64-bit value to its unsigned 64-bit value in
// the exact numeric domain ulongDomain. The operand is translated twice.
func WidenLong(ulongDomain string) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		test, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		x = &sqlast.CastExpr{Expr: x, TypeName: ulongDomain}
		return &sqlast.CaseExpr{
			Whens: []sqlast.WhenClause{{
				Condition: sqlast.Binary(test, sqlast.OpLt, sqlast.Lit("0")),
				Result:    sqlast.Binary(x, sqlast.OpPlus, sqlast.Lit(new(big.Int).Lsh(big.NewInt(1), 64).String())),
			}},
			Else: x,
		}, nil
	}
}

// NarrowULong reinterprets an unsigned 64-bit value held in an exact numeric
// domain as a signed 64-bit value of longDomain. The operand is translated
// three times.
func NarrowULong(longDomain string) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		var xs [3]sqlast.Expr
		for i := range xs {
			x, err := Expr(child, node.Child(0))
			if err != nil {
				return nil, err
			}
			xs[i] = x
		}
		wrapped := sqlast.Binary(xs[1], sqlast.OpMinus, sqlast.Lit(new(big.Int).Lsh(big.NewInt(1), 64).String()))
		return &sqlast.CastExpr{
			Expr: &sqlast.CaseExpr{
				Whens: []sqlast.WhenClause{{
					Condition: sqlast.Binary(xs[0], sqlast.OpGtEq, sqlast.Lit(signBit(64).String())),
					Result:    wrapped,
				}},
				Else: xs[2],
			},
			TypeName: longDomain,
		}, nil
	}
}

// UnsignedConversions returns the width conversions for a dialect with
// signed integers only.
func UnsignedConversions(lit Literal, longDomain, ulongDomain string) map[string]Translation {
	return map[string]Translation{
		"ToByte":     Mask(8, lit),
		"ToSByte":    Reinterpret(8, lit),
		"ToUShort":   Mask(16, lit),
		"ToShort":    Reinterpret(16, lit),
		"ToUInteger": Mask(32, lit),
		"ToInteger":  Reinterpret(32, lit),
		"ToULong":    WidenLong(ulongDomain),
		"ToLong":     NarrowULong(longDomain),
	}
}
