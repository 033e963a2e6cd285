package translate

import (
	"fmt"
	"math/big"

	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
)

// evalInt is a reference model of dialect integer arithmetic on unbounded
// two's complement integers. Columns are looked up in env.
func evalInt(e sqlast.Expr, env map[string]*big.Int) (*big.Int, error) {
	switch x := e.(type) {
	case *sqlast.LiteralExpr:
		v, ok := new(big.Int).SetString(x.Text, 10)
		if !ok {
			return nil, fmt.Errorf("not an integer literal: %q", x.Text)
		}
		return v, nil
	case *sqlast.ColumnExpr:
		v, ok := env[x.Column]
		if !ok {
			return nil, fmt.Errorf("unbound column %q", x.Column)
		}
		return new(big.Int).Set(v), nil
	case *sqlast.CastExpr:
		return evalInt(x.Expr, env)
	case *sqlast.UnaryExpr:
		v, err := evalInt(x.Expr, env)
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case sqlast.OpBitNot:
			return v.Not(v), nil
		case sqlast.OpMinus:
			return v.Neg(v), nil
		}
		return nil, fmt.Errorf("unknown unary operator %q", x.Op)
	case *sqlast.BinaryExpr:
		l, err := evalInt(x.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := evalInt(x.Right, env)
		if err != nil {
			return nil, err
		}
		out := new(big.Int)
		switch x.Op {
		case sqlast.OpBitAnd:
			return out.And(l, r), nil
		case sqlast.OpBitOr:
			return out.Or(l, r), nil
		case sqlast.OpBitXor:
			return out.Xor(l, r), nil
		case sqlast.OpPlus:
			return out.Add(l, r), nil
		case sqlast.OpMinus:
			return out.Sub(l, r), nil
		case sqlast.OpMul:
			return out.Mul(l, r), nil
		case sqlast.OpDiv:
			return out.Quo(l, r), nil
		case sqlast.OpMod:
			return out.Rem(l, r), nil
		case sqlast.OpLt:
			return boolInt(l.Cmp(r) < 0), nil
		case sqlast.OpGtEq:
			return boolInt(l.Cmp(r) >= 0), nil
		}
		return nil, fmt.Errorf("unknown binary operator %q", x.Op)
	case *sqlast.CaseExpr:
		for _, w := range x.Whens {
			c, err := evalInt(w.Condition, env)
			if err != nil {
				return nil, err
			}
			if c.Sign() != 0 {
				return evalInt(w.Result, env)
			}
		}
		return evalInt(x.Else, env)
	}
	return nil, fmt.Errorf("cannot evaluate %T", e)
}

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}
