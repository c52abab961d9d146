package sql

import "fmt"

// Expression is a scalar expression tree evaluated against an implicit
// input value. Expressions are immutable; WithChildren returns a new
// expression rather than mutating the receiver.
type Expression interface {
	fmt.Stringer
	// Children returns the immediate children of this expression.
	Children() []Expression
	// WithChildren returns a copy of this expression with the given
	// children replaced. The number of children must match.
	WithChildren(children ...Expression) (Expression, error)
	// Equal reports structural equality with another expression.
	Equal(other Expression) bool
}

// Node is an operator in a plan tree. Both logical-plan operators and
// lowered IR operators implement Node, so a single traversal library
// serves every tree in the compiler.
type Node interface {
	fmt.Stringer
	// Children returns the immediate children of this node.
	Children() []Node
	// WithChildren returns a copy of this node with the given children
	// replaced. The number of children must match.
	WithChildren(children ...Node) (Node, error)
	// Equal reports structural equality with another node.
	Equal(other Node) bool
}

// JoinSide identifies one input of a two-input expression scope, such as
// a join condition or a shift repair.
type JoinSide byte

const (
	LeftSide JoinSide = iota
	RightSide
)

func (s JoinSide) String() string {
	if s == LeftSide {
		return "left"
	}
	return "right"
}

// JoinType is the kind of a theta join.
type JoinType byte

const (
	JoinInner JoinType = iota
	JoinLeftOuter
	JoinRightOuter
	JoinFullOuter
)

func (t JoinType) String() string {
	switch t {
	case JoinInner:
		return "Inner"
	case JoinLeftOuter:
		return "LeftOuter"
	case JoinRightOuter:
		return "RightOuter"
	default:
		return "FullOuter"
	}
}

// SortOrder is the direction of one sort key.
type SortOrder byte

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Ascending {
		return "ASC"
	}
	return "DESC"
}

// SortField is one sort key with its direction.
type SortField struct {
	Column Expression
	Order  SortOrder
}

func (sf SortField) String() string {
	return fmt.Sprintf("%s %s", sf.Column, sf.Order)
}

// ExpressionsEqual compares two expression slices element-wise.
func ExpressionsEqual(a, b []Expression) bool {
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

// NodesEqual compares two node slices element-wise.
func NodesEqual(a, b []Node) bool {
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
