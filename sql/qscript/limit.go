package qscript

import (
	"github.com/quarrydb/quarry/sql"
)

// Take keeps the first N rows of the From branch, where N is produced by
// the Count branch. Both branches are rooted at the shared source.
type Take struct {
	Src   sql.Node
	From  sql.Node
	Count sql.Node
}

var _ Sourced = (*Take)(nil)

// NewTake creates a new Take node.
func NewTake(src, from, count sql.Node) *Take {
	return &Take{Src: src, From: from, Count: count}
}

// Source implements the Sourced interface.
func (t *Take) Source() sql.Node { return t.Src }

// WithSource implements the Sourced interface.
func (t *Take) WithSource(src sql.Node) sql.Node {
	return NewTake(src, t.From, t.Count)
}

// Children implements the Node interface.
func (t *Take) Children() []sql.Node { return []sql.Node{t.Src, t.From, t.Count} }

// WithChildren implements the Node interface.
func (t *Take) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 3)
	}
	return NewTake(children[0], children[1], children[2]), nil
}

// Equal implements the Node interface.
func (t *Take) Equal(other sql.Node) bool {
	o, ok := other.(*Take)
	return ok && t.From.Equal(o.From) && t.Count.Equal(o.Count) && t.Src.Equal(o.Src)
}

func (t *Take) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Take")
	_ = pr.WriteChildren(t.Src.String(), t.From.String(), t.Count.String())
	return pr.String()
}

// Drop discards the first N rows of the From branch, where N is produced
// by the Count branch.
type Drop struct {
	Src   sql.Node
	From  sql.Node
	Count sql.Node
}

var _ Sourced = (*Drop)(nil)

// NewDrop creates a new Drop node.
func NewDrop(src, from, count sql.Node) *Drop {
	return &Drop{Src: src, From: from, Count: count}
}

// Source implements the Sourced interface.
func (d *Drop) Source() sql.Node { return d.Src }

// WithSource implements the Sourced interface.
func (d *Drop) WithSource(src sql.Node) sql.Node {
	return NewDrop(src, d.From, d.Count)
}

// Children implements the Node interface.
func (d *Drop) Children() []sql.Node { return []sql.Node{d.Src, d.From, d.Count} }

// WithChildren implements the Node interface.
func (d *Drop) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildrenNumber.New(d, len(children), 3)
	}
	return NewDrop(children[0], children[1], children[2]), nil
}

// Equal implements the Node interface.
func (d *Drop) Equal(other sql.Node) bool {
	o, ok := other.(*Drop)
	return ok && d.From.Equal(o.From) && d.Count.Equal(o.Count) && d.Src.Equal(o.Src)
}

func (d *Drop) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Drop")
	_ = pr.WriteChildren(d.Src.String(), d.From.String(), d.Count.String())
	return pr.String()
}
