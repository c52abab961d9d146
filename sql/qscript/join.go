package qscript

import (
	"github.com/quarrydb/quarry/sql"
)

// Union concatenates the rows of its two branches. The branches only
// need a shared ancestor, not a shared row shape.
type Union struct {
	Src   sql.Node
	Left  sql.Node
	Right sql.Node
}

var _ Sourced = (*Union)(nil)

// NewUnion creates a new Union node.
func NewUnion(src, left, right sql.Node) *Union {
	return &Union{Src: src, Left: left, Right: right}
}

// Source implements the Sourced interface.
func (u *Union) Source() sql.Node { return u.Src }

// WithSource implements the Sourced interface.
func (u *Union) WithSource(src sql.Node) sql.Node {
	return NewUnion(src, u.Left, u.Right)
}

// Children implements the Node interface.
func (u *Union) Children() []sql.Node { return []sql.Node{u.Src, u.Left, u.Right} }

// WithChildren implements the Node interface.
func (u *Union) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 3)
	}
	return NewUnion(children[0], children[1], children[2]), nil
}

// Equal implements the Node interface.
func (u *Union) Equal(other sql.Node) bool {
	o, ok := other.(*Union)
	return ok && u.Left.Equal(o.Left) && u.Right.Equal(o.Right) && u.Src.Equal(o.Src)
}

func (u *Union) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Union")
	_ = pr.WriteChildren(u.Src.String(), u.Left.String(), u.Right.String())
	return pr.String()
}

// ThetaJoin joins the rows of its two branches under an arbitrary
// condition. On and Combine are two-input expressions over the left and
// right branch outputs; in any node whose branches actually diverge, On
// mentions both sides at least once.
type ThetaJoin struct {
	Src     sql.Node
	Left    sql.Node
	Right   sql.Node
	On      sql.Expression
	Kind    sql.JoinType
	Combine sql.Expression
}

var _ Sourced = (*ThetaJoin)(nil)

// NewThetaJoin creates a new ThetaJoin node.
func NewThetaJoin(src, left, right sql.Node, on sql.Expression, kind sql.JoinType, combine sql.Expression) *ThetaJoin {
	return &ThetaJoin{Src: src, Left: left, Right: right, On: on, Kind: kind, Combine: combine}
}

// Source implements the Sourced interface.
func (j *ThetaJoin) Source() sql.Node { return j.Src }

// WithSource implements the Sourced interface.
func (j *ThetaJoin) WithSource(src sql.Node) sql.Node {
	return NewThetaJoin(src, j.Left, j.Right, j.On, j.Kind, j.Combine)
}

// Children implements the Node interface.
func (j *ThetaJoin) Children() []sql.Node { return []sql.Node{j.Src, j.Left, j.Right} }

// WithChildren implements the Node interface.
func (j *ThetaJoin) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 3)
	}
	return NewThetaJoin(children[0], children[1], children[2], j.On, j.Kind, j.Combine), nil
}

// Equal implements the Node interface.
func (j *ThetaJoin) Equal(other sql.Node) bool {
	o, ok := other.(*ThetaJoin)
	return ok &&
		j.Kind == o.Kind &&
		j.On.Equal(o.On) &&
		j.Combine.Equal(o.Combine) &&
		j.Left.Equal(o.Left) &&
		j.Right.Equal(o.Right) &&
		j.Src.Equal(o.Src)
}

func (j *ThetaJoin) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("ThetaJoin(%s, on: %s, combine: %s)", j.Kind, j.On, j.Combine)
	_ = pr.WriteChildren(j.Src.String(), j.Left.String(), j.Right.String())
	return pr.String()
}
