package translate

import (
	"testing"

	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelational(t *testing.T) {
	id := core.NewColumn("Orders", "ID", core.TypeInteger)
	name := core.NewColumn("Orders", "Name", core.TypeString)
	get := core.NewGet("dbo.Orders", id, name)

	hinted := NewBuilder("test").
		RegisterAll(Standard(testTypes())).
		RegisterAll(Relational(func() []string { return []string{"recompile"} })).
		Build()

	tests := []struct {
		name     string
		registry *Registry
		node     *core.PlanNode
		expected string
	}{
		{
			name:     "get",
			registry: testRegistry(),
			node:     get,
			expected: "select [Orders].[ID], [Orders].[Name] from [dbo].[Orders]",
		},
		{
			name:     "get with hints",
			registry: hinted,
			node:     core.NewGet("Orders", id),
			expected: "select [Orders].[ID] from [Orders] option (recompile)",
		},
		{
			name:     "restrict twice conjoins",
			registry: testRegistry(),
			node: core.NewCall(core.OpRestrict, "",
				core.NewCall(core.OpRestrict, "", get,
					core.NewCall("iGreater", core.TypeBoolean, id, core.NewValue(core.TypeInteger, int32(10)))),
				core.NewCall("IsNotNull", core.TypeBoolean, name)),
			expected: "select [Orders].[ID], [Orders].[Name] from [dbo].[Orders] where (([Orders].[ID] > 10) and [Orders].[Name] is not null)",
		},
		{
			name:     "project",
			registry: testRegistry(),
			node:     core.NewCall(core.OpProject, "", get, name),
			expected: "select [Orders].[Name] from [dbo].[Orders]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, emit(t, tt.registry, tt.node))
		})
	}
}

func TestRestrict_ScalarSource(t *testing.T) {
	r := testRegistry()
	node := core.NewCall(core.OpRestrict, "",
		core.NewColumn("T", "A", core.TypeBoolean),
		core.NewValue(core.TypeBoolean, true))

	_, err := r.Translate(node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a relational operand")
}

func TestTranslateExpr_RelationalNode(t *testing.T) {
	r := testRegistry()
	_, err := r.TranslateExpr(core.NewGet("T"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a scalar expression")
}
