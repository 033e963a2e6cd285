package mssql

import (
	"testing"

	"github.com/leapstack-labs/sqldevice/internal/testutil"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/device"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emit(t *testing.T, major int, p Params, node *core.PlanNode) string {
	t.Helper()
	env := device.Environment{MajorVersion: major, Logger: testutil.NewTestLogger(t)}
	ops := Operators(env, p, Types(major))
	n, err := ops.Translate(node)
	require.NoError(t, err)
	return sqlast.Emit(n, New().Identifiers())
}

func col(name string, st core.ScalarType) *core.PlanNode {
	return core.NewColumn("Orders", name, st)
}

func TestOperators_Unsigned(t *testing.T) {
	tests := []struct {
		name string
		node *core.PlanNode
		want string
	}{
		{
			name: "ToSByte of 200",
			node: core.NewCall("ToSByte", core.TypeSByte, core.NewValue(core.TypeInteger, int32(200))),
			want: "(((200 & 255) & ~128) - (128 & 200))",
		},
		{
			name: "ToByte",
			node: core.NewCall("ToByte", core.TypeByte, col("Qty", core.TypeInteger)),
			want: "([Orders].[Qty] & 255)",
		},
		{
			name: "ToInteger keeps constants in bigint",
			node: core.NewCall("ToInteger", core.TypeInteger, col("Total", core.TypeLong)),
			want: "((([Orders].[Total] & cast(4294967295 as bigint)) & ~cast(2147483648 as bigint)) - (cast(2147483648 as bigint) & [Orders].[Total]))",
		},
		{
			name: "ToUShort",
			node: core.NewCall("ToUShort", core.TypeUShort, col("Qty", core.TypeInteger)),
			want: "([Orders].[Qty] & 65535)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, emit(t, 10, Params{}, tt.node))
		})
	}
}

func TestOperators_LogB(t *testing.T) {
	node := core.NewCall("LogB", core.TypeDecimal, col("Amount", core.TypeDecimal), core.NewValue(core.TypeInteger, int32(2)))

	assert.Equal(t, "log([Orders].[Amount], 2)", emit(t, 11, Params{}, node))
	assert.Equal(t, "(log([Orders].[Amount]) / log(2))", emit(t, 10, Params{}, node))
}

func TestOperators_Truncation(t *testing.T) {
	x := col("Amount", core.TypeDecimal)
	assert.Equal(t, "round([Orders].[Amount], 0, 1)", emit(t, 10, Params{}, core.NewCall("Truncate", core.TypeDecimal, x)))
	assert.Equal(t, "([Orders].[Amount] - round([Orders].[Amount], 0, 1))", emit(t, 10, Params{}, core.NewCall("Frac", core.TypeDecimal, x)))
	assert.Equal(t, "([Orders].[Qty] % 7)", emit(t, 10, Params{},
		core.NewCall("iMod", core.TypeInteger, col("Qty", core.TypeInteger), core.NewValue(core.TypeInteger, int32(7)))))
}

func TestOperators_DateParts(t *testing.T) {
	placed := col("Placed", core.TypeDateTime)

	assert.Equal(t, "datepart(year, [Orders].[Placed])",
		emit(t, 10, Params{}, core.NewCall("DateTime.ReadYear", core.TypeInteger, placed)))

	// the source column is read once for the current part and once as the
	// value being shifted
	got := emit(t, 10, Params{}, core.NewCall("DateTime.WriteMonth", core.TypeDateTime, placed, core.NewValue(core.TypeInteger, int32(7))))
	assert.Equal(t, "dateadd(month, (7 - datepart(month, [Orders].[Placed])), [Orders].[Placed])", got)

	assert.Equal(t, "dbo.DAE_ToTicks([Orders].[Placed])",
		emit(t, 10, Params{}, core.NewCall("DateTime.Ticks", core.TypeLong, placed)))
	assert.Equal(t, "dbo.DAE_FromTicks([Orders].[Ticks])",
		emit(t, 10, Params{}, core.NewCall("DateTime.FromTicks", core.TypeDateTime, col("Ticks", core.TypeLong))))
}

func TestOperators_OptimizerHints(t *testing.T) {
	get := core.NewGet("dbo.Orders", col("ID", core.TypeInteger))

	assert.Equal(t, "select [Orders].[ID] from [dbo].[Orders] option (recompile)",
		emit(t, 9, Params{UseOptimizerHints: true}, get))
	assert.Equal(t, "select [Orders].[ID] from [dbo].[Orders]",
		emit(t, 8, Params{UseOptimizerHints: true}, get), "hint dropped before 2005")
	assert.Equal(t, "select [Orders].[ID] from [dbo].[Orders]",
		emit(t, 12, Params{}, get))
}

func TestOperators_OptimizerHintDropLogged(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger(t)
	ops := Operators(device.Environment{MajorVersion: 8, Logger: logger}, Params{UseOptimizerHints: true}, Types(8))

	_, err := ops.Translate(core.NewGet("dbo.Orders", col("ID", core.TypeInteger)))
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "optimizer hint dropped")
	assert.Contains(t, logs.String(), "major_version=8")
}

func TestOperators_Literals(t *testing.T) {
	eq := core.NewCall("iEqual", core.TypeBoolean, col("Name", core.TypeString), core.NewValue(core.TypeString, "O'Brien"))
	assert.Equal(t, "([Orders].[Name] = N'O''Brien')", emit(t, 10, Params{}, eq))

	concat := core.NewCall("iAddition", core.TypeString, col("Name", core.TypeString), core.NewValue(core.TypeString, "!"))
	assert.Equal(t, "([Orders].[Name] + N'!')", emit(t, 10, Params{}, concat))
}

func TestDialect_BuildOperatorsDecodesParams(t *testing.T) {
	d := New()
	env := device.Environment{MajorVersion: 10, Params: map[string]any{"use_optimizer_hints": "true"}}
	types, err := d.BuildTypes(env)
	require.NoError(t, err)

	_, err = d.BuildOperators(env, types)
	require.NoError(t, err)

	env.Params = map[string]any{"use_optimizer_hints": map[string]any{"on": true}}
	_, err = d.BuildOperators(env, types)
	assert.Error(t, err)
}
