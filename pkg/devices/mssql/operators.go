package mssql

import (
	"log/slog"
	"math"
	"math/big"

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/device"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
	"github.com/leapstack-labs/sqldevice/pkg/translate"
)

// castLiteral keeps bit-mask constants above the int range in bigint
// arithmetic.
func castLiteral(v *big.Int) sqlast.Expr {
	if v.IsInt64() && v.Int64() >= math.MinInt32 && v.Int64() <= math.MaxInt32 {
		return translate.PlainLiteral(v)
	}
	return &sqlast.CastExpr{Expr: translate.PlainLiteral(v), TypeName: "bigint"}
}

var calendar = translate.Calendar{
	Read: func(part string, x sqlast.Expr) sqlast.Expr {
		return sqlast.Call("datepart", sqlast.Lit(part), x)
	},
	Add: func(part string, delta, x sqlast.Expr) sqlast.Expr {
		return sqlast.Call("dateadd", sqlast.Lit(part), delta, x)
	},
	Parts: map[string]string{
		"Year":        "year",
		"Month":       "month",
		"Day":         "day",
		"Hour":        "hour",
		"Minute":      "minute",
		"Second":      "second",
		"Millisecond": "millisecond",
	},
}

var directCalls = map[string]string{
	"Abs":       "abs",
	"Ceiling":   "ceiling",
	"Floor":     "floor",
	"Round":     "round",
	"Sign":      "sign",
	"Sqrt":      "sqrt",
	"Power":     "power",
	"Exp":       "exp",
	"Ln":        "log",
	"Log10":     "log10",
	"Upper":     "upper",
	"Lower":     "lower",
	"Length":    "len",
	"TrimLeft":  "ltrim",
	"TrimRight": "rtrim",
	"Replace":   "replace",
	"Now":       "getdate",
	"NewGuid":   "newid",

	// support operators installed from operators.sql
	"DateTime.Ticks":     "dbo.DAE_ToTicks",
	"DateTime.FromTicks": "dbo.DAE_FromTicks",
}

// Operators builds the SQL Server operator registry.
func Operators(env device.Environment, p Params, types *bridge.Registry) *translate.Registry {
	logger := env.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	hints := func() []string {
		if !p.UseOptimizerHints {
			return nil
		}
		if env.MajorVersion < 9 {
			logger.Debug("optimizer hint dropped", slog.String("hint", "recompile"), slog.Int("major_version", env.MajorVersion))
			return nil
		}
		return []string{"recompile"}
	}

	b := translate.NewBuilder(Name).
		RegisterAll(translate.Standard(types)).
		RegisterAll(translate.UnsignedConversions(castLiteral, "bigint", "decimal(20,0)")).
		RegisterAll(translate.Relational(hints)).
		RegisterAll(translate.DatePartTranslations(calendar)).
		RegisterAll(translate.DirectCalls(directCalls)).
		Register("Truncate", translate.Truncate(translate.RoundTruncator)).
		Register("Frac", translate.Frac(translate.RoundTruncator))

	if env.MajorVersion >= 11 {
		b.Register("LogB", translate.LogNative("log", false))
	} else {
		b.Register("LogB", translate.LogQuotient("log"))
	}
	return b.Build()
}
