// Package sqlast holds the dialect expression and statement tree produced by
// operator translations, and the emitter that turns it into SQL text.
package sqlast

// Node is any element of a dialect tree.
type Node interface {
	node()
}

// Expr is a scalar expression node.
type Expr interface {
	Node
	expr()
}

// Statement is a top-level statement node.
type Statement interface {
	Node
	stmt()
}

// Operators shared by the dialects. Dialect translations may use any other
// operator text the backend accepts.
const (
	OpEq        = "="
	OpNotEq     = "<>"
	OpLt        = "<"
	OpLtEq      = "<="
	OpGt        = ">"
	OpGtEq      = ">="
	OpAnd       = "and"
	OpOr        = "or"
	OpNot       = "not"
	OpPlus      = "+"
	OpMinus     = "-"
	OpMul       = "*"
	OpDiv       = "/"
	OpMod       = "%"
	OpBitAnd    = "&"
	OpBitOr     = "|"
	OpBitXor    = "^"
	OpBitNot    = "~"
	OpConcat    = "+"
	OpPGBitXor  = "#"
	OpPGConcat  = "||"
	OpIsNull    = "is null"
	OpIsNotNull = "is not null"
)

// ColumnExpr references a column, optionally qualified by a table or range variable.
type ColumnExpr struct {
	Table  string
	Column string
}

// LiteralExpr is literal text already rendered by the type bridge.
type LiteralExpr struct {
	Text string
}

// Null is the untyped null literal.
var Null = &LiteralExpr{Text: "null"}

// UnaryExpr is a prefix operator applied to one operand.
type UnaryExpr struct {
	Op   string
	Expr Expr
}

// PostfixExpr is a suffix predicate such as "is null".
type PostfixExpr struct {
	Expr Expr
	Op   string
}

// BinaryExpr is an infix operator. It is always emitted parenthesized.
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

// CallExpr is a function call.
type CallExpr struct {
	Name string
	Args []Expr
}

// WhenClause is one branch of a CaseExpr.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// CaseExpr is a searched case when Operand is nil, a simple case otherwise.
type CaseExpr struct {
	Operand Expr
	Whens   []WhenClause
	Else    Expr
}

// CastExpr converts an expression to a native type name.
type CastExpr struct {
	Expr     Expr
	TypeName string
}

// TableRef names a base table in a from clause.
type TableRef struct {
	Schema string
	Name   string
	Alias  string
}

// SelectItem is one projected column.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// OrderItem is one order by key.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// SelectStatement is the single-table select produced by the relational subset.
type SelectStatement struct {
	Columns []SelectItem
	From    *TableRef
	Where   Expr
	OrderBy []OrderItem
	Hints   []string // emitted as option (...)
}

func (*ColumnExpr) node()      {}
func (*LiteralExpr) node()     {}
func (*UnaryExpr) node()       {}
func (*PostfixExpr) node()     {}
func (*BinaryExpr) node()      {}
func (*CallExpr) node()        {}
func (*CaseExpr) node()        {}
func (*CastExpr) node()        {}
func (*SelectStatement) node() {}

func (*ColumnExpr) expr()  {}
func (*LiteralExpr) expr() {}
func (*UnaryExpr) expr()   {}
func (*PostfixExpr) expr() {}
func (*BinaryExpr) expr()  {}
func (*CallExpr) expr()    {}
func (*CaseExpr) expr()    {}
func (*CastExpr) expr()    {}

func (*SelectStatement) stmt() {}

// Binary builds a BinaryExpr.
func Binary(left Expr, op string, right Expr) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

// Call builds a CallExpr.
func Call(name string, args ...Expr) *CallExpr {
	return &CallExpr{Name: name, Args: args}
}

// Lit builds a LiteralExpr from rendered text.
func Lit(text string) *LiteralExpr {
	return &LiteralExpr{Text: text}
}

// And conjoins two predicates, treating nil as true.
func And(left, right Expr) Expr {
	switch {
	case left == nil:
		return right
	case right == nil:
		return left
	default:
		return Binary(left, OpAnd, right)
	}
}
