package qscript

import (
	"github.com/quarrydb/quarry/sql"
)

// LeftShift flattens a nested structure: for each row, Struct selects
// the map or array to shift, every element of which produces one output
// row. Repair rebuilds the output row from the original row (left side)
// and the shifted element (right side).
type LeftShift struct {
	Src    sql.Node
	Struct sql.Expression
	Repair sql.Expression
}

var _ Sourced = (*LeftShift)(nil)

// NewLeftShift creates a new LeftShift node.
func NewLeftShift(src sql.Node, structExpr, repair sql.Expression) *LeftShift {
	return &LeftShift{Src: src, Struct: structExpr, Repair: repair}
}

// Source implements the Sourced interface.
func (l *LeftShift) Source() sql.Node { return l.Src }

// WithSource implements the Sourced interface.
func (l *LeftShift) WithSource(src sql.Node) sql.Node {
	return NewLeftShift(src, l.Struct, l.Repair)
}

// Children implements the Node interface.
func (l *LeftShift) Children() []sql.Node { return []sql.Node{l.Src} }

// WithChildren implements the Node interface.
func (l *LeftShift) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLeftShift(children[0], l.Struct, l.Repair), nil
}

// Equal implements the Node interface.
func (l *LeftShift) Equal(other sql.Node) bool {
	o, ok := other.(*LeftShift)
	return ok && l.Struct.Equal(o.Struct) && l.Repair.Equal(o.Repair) && l.Src.Equal(o.Src)
}

func (l *LeftShift) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("LeftShift(struct: %s, repair: %s)", l.Struct, l.Repair)
	_ = pr.WriteChildren(l.Src.String())
	return pr.String()
}
