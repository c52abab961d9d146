// Package qscript defines the normalized, backend-agnostic intermediate
// representation the compiler lowers logical plans into. The node
// catalog is closed: a backend that restricts it further (for example to
// equi-joins only) does so with a validating pass of its own, not by
// extending this package.
package qscript

import (
	"fmt"

	"github.com/quarrydb/quarry/sql"
)

// Sourced is implemented by every node that consumes the output of a
// single upstream node. Root, Read and Unreferenced are the only
// non-Sourced nodes; linearization walks the Source spine.
type Sourced interface {
	sql.Node
	// Source returns the upstream node.
	Source() sql.Node
	// WithSource returns a copy of the node with the upstream replaced.
	WithSource(src sql.Node) sql.Node
}

// Root is the marker for the root of the data source namespace. Every
// fully lowered tree bottoms out in Root.
type Root struct{}

// NewRoot creates the Root marker.
func NewRoot() *Root { return &Root{} }

// Children implements the Node interface.
func (*Root) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (r *Root) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}

// Equal implements the Node interface.
func (*Root) Equal(other sql.Node) bool {
	_, ok := other.(*Root)
	return ok
}

func (*Root) String() string { return "Root" }

// Unreferenced is the implicit source hole at the base of a branch: a
// subtree used inside a join, union or limit node is rooted at
// Unreferenced, which stands for the enclosing node's shared source.
// Every branch references it exactly once.
type Unreferenced struct{}

// NewUnreferenced creates the branch source hole.
func NewUnreferenced() *Unreferenced { return &Unreferenced{} }

// Children implements the Node interface.
func (*Unreferenced) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (u *Unreferenced) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 0)
	}
	return u, nil
}

// Equal implements the Node interface.
func (*Unreferenced) Equal(other sql.Node) bool {
	_, ok := other.(*Unreferenced)
	return ok
}

func (*Unreferenced) String() string { return "•" }

// Read loads the collection at the given path.
type Read struct {
	Path string
}

// NewRead creates a new Read node.
func NewRead(path string) *Read { return &Read{Path: path} }

// Children implements the Node interface.
func (*Read) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (r *Read) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}

// Equal implements the Node interface.
func (r *Read) Equal(other sql.Node) bool {
	o, ok := other.(*Read)
	return ok && r.Path == o.Path
}

func (r *Read) String() string { return fmt.Sprintf("Read(%s)", r.Path) }

// ReduceOp identifies one aggregation operator.
type ReduceOp byte

const (
	ReduceCount ReduceOp = iota
	ReduceSum
	ReduceMin
	ReduceMax
	ReduceAvg
	ReduceFirst
	// ReduceArbitrary picks any one value of the group. It is what the
	// lowering stage uses to carry a stripped grouping key through a
	// Reduce node.
	ReduceArbitrary
)

func (op ReduceOp) String() string {
	switch op {
	case ReduceCount:
		return "count"
	case ReduceSum:
		return "sum"
	case ReduceMin:
		return "min"
	case ReduceMax:
		return "max"
	case ReduceAvg:
		return "avg"
	case ReduceFirst:
		return "first"
	default:
		return "arbitrary"
	}
}

// ReduceFunc is one reducer of a Reduce node: an aggregation operator
// applied to a per-row argument expression.
type ReduceFunc struct {
	Op  ReduceOp
	Arg sql.Expression
}

// NewReduceFunc creates a new reducer.
func NewReduceFunc(op ReduceOp, arg sql.Expression) ReduceFunc {
	return ReduceFunc{Op: op, Arg: arg}
}

// Equal reports structural equality of two reducers.
func (r ReduceFunc) Equal(other ReduceFunc) bool {
	return r.Op == other.Op && r.Arg.Equal(other.Arg)
}

func (r ReduceFunc) String() string {
	return fmt.Sprintf("%s(%s)", r.Op, r.Arg)
}

// ReduceFuncsEqual compares two reducer slices element-wise.
func ReduceFuncsEqual(a, b []ReduceFunc) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
