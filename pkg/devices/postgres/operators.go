package postgres

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
	"github.com/leapstack-labs/sqldevice/pkg/translate"
)

const ticksPerDay = 86400 * bridge.TicksPerSecond

var (
	epochDate      = &sqlast.CastExpr{Expr: sqlast.Lit("'0001-01-01'"), TypeName: "date"}
	epochTimestamp = &sqlast.CastExpr{Expr: sqlast.Lit("'0001-01-01'"), TypeName: "timestamp"}
)

func integer(x sqlast.Expr) sqlast.Expr {
	return &sqlast.CastExpr{Expr: sqlast.Call("floor", x), TypeName: "integer"}
}

var calendar = translate.Calendar{
	Read: func(part string, x sqlast.Expr) sqlast.Expr {
		v := integer(sqlast.Call("date_part", sqlast.Lit("'"+part+"'"), x))
		if part == "milliseconds" {
			// milliseconds includes the whole seconds
			return sqlast.Binary(v, sqlast.OpMod, sqlast.Lit("1000"))
		}
		return v
	},
	Add: func(part string, delta, x sqlast.Expr) sqlast.Expr {
		return sqlast.Binary(x, sqlast.OpPlus, sqlast.Binary(delta, sqlast.OpMul, sqlast.Lit("interval '1 "+part+"'")))
	},
	Parts: map[string]string{
		"Year":        "year",
		"Month":       "month",
		"Day":         "day",
		"Hour":        "hour",
		"Minute":      "minute",
		"Second":      "second",
		"Millisecond": "milliseconds",
	},
	// date + interval yields a timestamp
	AsDate: func(x sqlast.Expr) sqlast.Expr {
		return &sqlast.CastExpr{Expr: x, TypeName: "date"}
	},
}

var directCalls = map[string]string{
	"Abs":       "abs",
	"Ceiling":   "ceil",
	"Floor":     "floor",
	"Round":     "round",
	"Sign":      "sign",
	"Sqrt":      "sqrt",
	"Power":     "power",
	"Exp":       "exp",
	"Ln":        "ln",
	"Log10":     "log",
	"Upper":     "upper",
	"Lower":     "lower",
	"Length":    "length",
	"TrimLeft":  "ltrim",
	"TrimRight": "rtrim",
	"Replace":   "replace",
	"Now":       "now",
	"NewGuid":   "gen_random_uuid",
}

// toTicks counts 100ns ticks since 0001-01-01: whole days from the date
// part, the remainder from the time of day.
func toTicks(node *core.PlanNode, child translate.ChildFunc) (sqlast.Node, error) {
	if node.NumChildren() != 1 {
		return nil, fmt.Errorf("operator %q: expected 1 operand, got %d", node.Operator(), node.NumChildren())
	}
	x, err := translate.Expr(child, node.Child(0))
	if err != nil {
		return nil, err
	}
	days := sqlast.Binary(&sqlast.CastExpr{Expr: x, TypeName: "date"}, sqlast.OpMinus, epochDate)
	x, err = translate.Expr(child, node.Child(0))
	if err != nil {
		return nil, err
	}
	seconds := sqlast.Call("date_part", sqlast.Lit("'epoch'"), &sqlast.CastExpr{Expr: x, TypeName: "time"})
	fraction := &sqlast.CastExpr{
		Expr:     sqlast.Binary(seconds, sqlast.OpMul, sqlast.Lit(strconv.FormatInt(bridge.TicksPerSecond, 10))),
		TypeName: "bigint",
	}
	return sqlast.Binary(
		sqlast.Binary(days, sqlast.OpMul, sqlast.Lit(strconv.FormatInt(ticksPerDay, 10))),
		sqlast.OpPlus,
		fraction,
	), nil
}

// fromTicks adds the tick count, at microsecond precision, to 0001-01-01.
func fromTicks(node *core.PlanNode, child translate.ChildFunc) (sqlast.Node, error) {
	if node.NumChildren() != 1 {
		return nil, fmt.Errorf("operator %q: expected 1 operand, got %d", node.Operator(), node.NumChildren())
	}
	x, err := translate.Expr(child, node.Child(0))
	if err != nil {
		return nil, err
	}
	micros := sqlast.Binary(x, sqlast.OpDiv, sqlast.Lit("10"))
	return sqlast.Binary(epochTimestamp, sqlast.OpPlus, sqlast.Binary(micros, sqlast.OpMul, sqlast.Lit("interval '1 microsecond'"))), nil
}

// Operators builds the PostgreSQL operator registry.
func Operators(types *bridge.Registry) *translate.Registry {
	return translate.NewBuilder(Name).
		RegisterAll(translate.Standard(types)).
		Register("iAddition", translate.Addition(sqlast.OpPGConcat)).
		Register("iBitwiseXor", translate.Infix(sqlast.OpPGBitXor)).
		RegisterAll(translate.UnsignedConversions(translate.PlainLiteral, "bigint", "numeric(20,0)")).
		RegisterAll(translate.Relational(nil)).
		RegisterAll(translate.DatePartTranslations(calendar)).
		RegisterAll(translate.DirectCalls(directCalls)).
		Register("DateTime.Ticks", toTicks).
		Register("DateTime.FromTicks", fromTicks).
		Register("Truncate", translate.Truncate(translate.TruncTruncator)).
		Register("Frac", translate.Frac(translate.TruncTruncator)).
		Register("LogB", translate.LogNative("log", true)).
		Build()
}
