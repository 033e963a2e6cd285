package sqlast

import (
	"testing"

	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/stretchr/testify/assert"
)

var brackets = core.IdentifierConfig{Quote: "[", QuoteEnd: "]", Escape: "]]", Normalization: core.NormCaseInsensitive}

func TestEmit_Expressions(t *testing.T) {
	col := &ColumnExpr{Table: "T", Column: "C"}

	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{
			name:     "column",
			node:     col,
			expected: "[T].[C]",
		},
		{
			name:     "nested binary is fully parenthesized",
			node:     Binary(Binary(col, OpBitAnd, Lit("255")), OpMinus, Binary(Lit("128"), OpBitAnd, col)),
			expected: "(([T].[C] & 255) - (128 & [T].[C]))",
		},
		{
			name:     "complement of literal",
			node:     &UnaryExpr{Op: OpBitNot, Expr: Lit("128")},
			expected: "~128",
		},
		{
			name:     "negate negative literal",
			node:     &UnaryExpr{Op: OpMinus, Expr: Lit("-5")},
			expected: "-(-5)",
		},
		{
			name:     "not over binary",
			node:     &UnaryExpr{Op: OpNot, Expr: Binary(col, OpEq, Lit("1"))},
			expected: "not ([T].[C] = 1)",
		},
		{
			name:     "is null",
			node:     &PostfixExpr{Expr: col, Op: OpIsNull},
			expected: "[T].[C] is null",
		},
		{
			name:     "call",
			node:     Call("round", col, Lit("0"), Lit("1")),
			expected: "round([T].[C], 0, 1)",
		},
		{
			name: "searched case",
			node: &CaseExpr{
				Whens: []WhenClause{{Condition: Binary(col, OpLt, Lit("0")), Result: Lit("1")}},
				Else:  Lit("0"),
			},
			expected: "case when ([T].[C] < 0) then 1 else 0 end",
		},
		{
			name:     "cast",
			node:     &CastExpr{Expr: col, TypeName: "bigint"},
			expected: "cast([T].[C] as bigint)",
		},
		{
			name:     "nil renders null",
			node:     Call("coalesce", nil, Lit("1")),
			expected: "coalesce(null, 1)",
		},
		{
			name:     "quote escaping",
			node:     &ColumnExpr{Column: "odd]name"},
			expected: "[odd]]name]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Emit(tt.node, brackets))
		})
	}
}

func TestEmit_Select(t *testing.T) {
	stmt := &SelectStatement{
		Columns: []SelectItem{
			{Expr: &ColumnExpr{Table: "T", Column: "ID"}},
			{Expr: &ColumnExpr{Table: "T", Column: "Name"}, Alias: "N"},
		},
		From:    &TableRef{Schema: "dbo", Name: "Orders", Alias: "T"},
		Where:   And(Binary(&ColumnExpr{Table: "T", Column: "ID"}, OpGt, Lit("10")), nil),
		OrderBy: []OrderItem{{Expr: &ColumnExpr{Table: "T", Column: "ID"}, Desc: true}},
		Hints:   []string{"recompile"},
	}

	assert.Equal(t,
		"select [T].[ID], [T].[Name] as [N] from [dbo].[Orders] [T] where ([T].[ID] > 10) order by [T].[ID] desc option (recompile)",
		Emit(stmt, brackets))

	pg := core.IdentifierConfig{Quote: `"`, QuoteEnd: `"`, Escape: `""`}
	assert.Equal(t, `select * from "orders"`, Emit(&SelectStatement{From: &TableRef{Name: "orders"}}, pg))
}

func TestAnd(t *testing.T) {
	a := Lit("1")
	b := Lit("2")

	assert.Nil(t, And(nil, nil))
	assert.Same(t, a, And(nil, a))
	assert.Same(t, a, And(a, nil))
	assert.Equal(t, Binary(a, OpAnd, b), And(a, b))
}
