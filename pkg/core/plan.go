package core

// Reserved operator identities for leaf and relational plan nodes.
// Every other identity names an instruction (e.g. "iAddition", "DateTime.WriteMonth").
const (
	OpValue    = "Value"
	OpColumn   = "Column"
	OpGet      = "Get"
	OpRestrict = "Restrict"
	OpProject  = "Project"
)

// PlanNode is an immutable node of the backend-agnostic expression tree.
// It is produced by the planner; devices only read it.
type PlanNode struct {
	operator string
	dataType ScalarType
	table    string
	column   string
	value    any
	children []*PlanNode
}

// NewCall creates an instruction node with the given result type and operands.
func NewCall(operator string, dataType ScalarType, children ...*PlanNode) *PlanNode {
	return &PlanNode{
		operator: operator,
		dataType: dataType,
		children: append([]*PlanNode(nil), children...),
	}
}

// NewValue creates a literal node. A nil value is the typed null.
func NewValue(dataType ScalarType, value any) *PlanNode {
	return &PlanNode{operator: OpValue, dataType: dataType, value: value}
}

// NewColumn creates a reference to a column of a base table or range variable.
func NewColumn(table, column string, dataType ScalarType) *PlanNode {
	return &PlanNode{operator: OpColumn, dataType: dataType, table: table, column: column}
}

// NewGet creates a base table access projecting the given column nodes.
func NewGet(table string, columns ...*PlanNode) *PlanNode {
	return &PlanNode{
		operator: OpGet,
		table:    table,
		children: append([]*PlanNode(nil), columns...),
	}
}

// Operator returns the operator identity used to select a translation.
func (n *PlanNode) Operator() string { return n.operator }

// DataType returns the internal scalar type of the node's result.
// Relational nodes have no scalar type.
func (n *PlanNode) DataType() ScalarType { return n.dataType }

// Table returns the table qualifier of a Column or Get node.
func (n *PlanNode) Table() string { return n.table }

// Column returns the column name of a Column node.
func (n *PlanNode) Column() string { return n.column }

// Value returns the literal value of a Value node.
func (n *PlanNode) Value() any { return n.value }

// NumChildren returns the number of operands.
func (n *PlanNode) NumChildren() int { return len(n.children) }

// Child returns the i-th operand.
func (n *PlanNode) Child(i int) *PlanNode { return n.children[i] }

// Children returns a copy of the operand list.
func (n *PlanNode) Children() []*PlanNode {
	return append([]*PlanNode(nil), n.children...)
}
