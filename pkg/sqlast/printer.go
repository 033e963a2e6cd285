package sqlast

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Printer renders a dialect tree as single-line SQL text.
// Keywords are lowercase and every binary expression is parenthesized, so the
// output never depends on backend operator precedence.
type Printer struct {
	ident  core.IdentifierConfig
	output *bytes.Buffer
}

func newPrinter(ident core.IdentifierConfig) *Printer {
	return &Printer{
		ident:  ident,
		output: &bytes.Buffer{},
	}
}

// Emit renders n using the given identifier quoting rules.
func Emit(n Node, ident core.IdentifierConfig) string {
	p := newPrinter(ident)
	p.formatNode(n)
	return p.String()
}

// String returns the rendered output.
func (p *Printer) String() string {
	return p.output.String()
}

func (p *Printer) write(s string) {
	p.output.WriteString(s)
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

func (p *Printer) identifier(name string) {
	p.write(p.ident.QuoteIdentifier(name))
}

// formatList prints count items separated by sep.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}

func (p *Printer) formatNode(n Node) {
	switch node := n.(type) {
	case *SelectStatement:
		p.formatSelect(node)
	case Expr:
		p.formatExpr(node)
	}
}

func (p *Printer) formatExpr(e Expr) {
	if e == nil {
		p.write(Null.Text)
		return
	}

	switch expr := e.(type) {
	case *LiteralExpr:
		p.write(expr.Text)
	case *ColumnExpr:
		p.formatColumn(expr)
	case *UnaryExpr:
		p.formatUnary(expr)
	case *PostfixExpr:
		p.formatOperand(expr.Expr)
		p.space()
		p.write(expr.Op)
	case *BinaryExpr:
		p.write("(")
		p.formatExpr(expr.Left)
		p.space()
		p.write(expr.Op)
		p.space()
		p.formatExpr(expr.Right)
		p.write(")")
	case *CallExpr:
		p.write(expr.Name)
		p.write("(")
		p.formatList(len(expr.Args), func(i int) { p.formatExpr(expr.Args[i]) }, ", ")
		p.write(")")
	case *CaseExpr:
		p.formatCase(expr)
	case *CastExpr:
		p.write("cast(")
		p.formatExpr(expr.Expr)
		p.write(" as ")
		p.write(expr.TypeName)
		p.write(")")
	}
}

func (p *Printer) formatColumn(col *ColumnExpr) {
	if col.Table != "" {
		p.identifier(col.Table)
		p.write(".")
	}
	p.identifier(col.Column)
}

// formatUnary keeps a sign or complement from fusing with the operand text
// (two minus signs would open a line comment).
func (p *Printer) formatUnary(expr *UnaryExpr) {
	p.write(expr.Op)
	if isWordOperator(expr.Op) {
		p.space()
	}
	p.formatOperand(expr.Expr)
}

// formatOperand parenthesizes an operand unless its text is self-delimiting.
func (p *Printer) formatOperand(e Expr) {
	if selfDelimiting(e) {
		p.formatExpr(e)
		return
	}
	p.write("(")
	p.formatExpr(e)
	p.write(")")
}

func (p *Printer) formatCase(expr *CaseExpr) {
	p.write("case")
	if expr.Operand != nil {
		p.space()
		p.formatExpr(expr.Operand)
	}
	for _, w := range expr.Whens {
		p.write(" when ")
		p.formatExpr(w.Condition)
		p.write(" then ")
		p.formatExpr(w.Result)
	}
	if expr.Else != nil {
		p.write(" else ")
		p.formatExpr(expr.Else)
	}
	p.write(" end")
}

func (p *Printer) formatSelect(stmt *SelectStatement) {
	p.write("select ")
	if len(stmt.Columns) == 0 {
		p.write("*")
	}
	p.formatList(len(stmt.Columns), func(i int) {
		item := stmt.Columns[i]
		p.formatExpr(item.Expr)
		if item.Alias != "" {
			p.write(" as ")
			p.identifier(item.Alias)
		}
	}, ", ")

	if stmt.From != nil {
		p.write(" from ")
		if stmt.From.Schema != "" {
			p.identifier(stmt.From.Schema)
			p.write(".")
		}
		p.identifier(stmt.From.Name)
		if stmt.From.Alias != "" {
			p.space()
			p.identifier(stmt.From.Alias)
		}
	}

	if stmt.Where != nil {
		p.write(" where ")
		p.formatExpr(stmt.Where)
	}

	if len(stmt.OrderBy) > 0 {
		p.write(" order by ")
		p.formatList(len(stmt.OrderBy), func(i int) {
			p.formatExpr(stmt.OrderBy[i].Expr)
			if stmt.OrderBy[i].Desc {
				p.write(" desc")
			}
		}, ", ")
	}

	if len(stmt.Hints) > 0 {
		p.write(" option (")
		p.write(strings.Join(stmt.Hints, ", "))
		p.write(")")
	}
}

func isWordOperator(op string) bool {
	return op != "" && op[0] >= 'a' && op[0] <= 'z'
}

func selfDelimiting(e Expr) bool {
	switch expr := e.(type) {
	case *ColumnExpr, *BinaryExpr, *CallExpr, *CastExpr:
		return true
	case *LiteralExpr:
		return !strings.HasPrefix(expr.Text, "-") && !strings.Contains(expr.Text, "::")
	default:
		return false
	}
}
