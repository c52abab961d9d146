package qscript

import (
	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
)

// Map applies a per-row expression to every row of its source.
type Map struct {
	Src sql.Node
	FN  sql.Expression
}

var _ Sourced = (*Map)(nil)

// NewMap creates a new Map node.
func NewMap(src sql.Node, fn sql.Expression) *Map {
	return &Map{Src: src, FN: fn}
}

// MapOn builds a Map over src, coalescing on the fly: mapping the
// identity returns src unchanged, and mapping over another Map composes
// the two expressions instead of stacking nodes.
func MapOn(src sql.Node, fn sql.Expression) sql.Node {
	if expression.IsIdentity(fn) {
		return src
	}
	if m, ok := src.(*Map); ok {
		return NewMap(m.Src, expression.Substitute(fn, m.FN))
	}
	return NewMap(src, fn)
}

// Source implements the Sourced interface.
func (m *Map) Source() sql.Node { return m.Src }

// WithSource implements the Sourced interface.
func (m *Map) WithSource(src sql.Node) sql.Node { return NewMap(src, m.FN) }

// Children implements the Node interface.
func (m *Map) Children() []sql.Node { return []sql.Node{m.Src} }

// WithChildren implements the Node interface.
func (m *Map) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMap(children[0], m.FN), nil
}

// Equal implements the Node interface.
func (m *Map) Equal(other sql.Node) bool {
	o, ok := other.(*Map)
	return ok && m.FN.Equal(o.FN) && m.Src.Equal(o.Src)
}

func (m *Map) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Map(%s)", m.FN)
	_ = pr.WriteChildren(m.Src.String())
	return pr.String()
}

// Filter keeps only the rows of its source for which the condition
// expression holds.
type Filter struct {
	Src sql.Node
	FN  sql.Expression
}

var _ Sourced = (*Filter)(nil)

// NewFilter creates a new Filter node.
func NewFilter(src sql.Node, fn sql.Expression) *Filter {
	return &Filter{Src: src, FN: fn}
}

// Source implements the Sourced interface.
func (f *Filter) Source() sql.Node { return f.Src }

// WithSource implements the Sourced interface.
func (f *Filter) WithSource(src sql.Node) sql.Node { return NewFilter(src, f.FN) }

// Children implements the Node interface.
func (f *Filter) Children() []sql.Node { return []sql.Node{f.Src} }

// WithChildren implements the Node interface.
func (f *Filter) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 1)
	}
	return NewFilter(children[0], f.FN), nil
}

// Equal implements the Node interface.
func (f *Filter) Equal(other sql.Node) bool {
	o, ok := other.(*Filter)
	return ok && f.FN.Equal(o.FN) && f.Src.Equal(o.Src)
}

func (f *Filter) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Filter(%s)", f.FN)
	_ = pr.WriteChildren(f.Src.String())
	return pr.String()
}
