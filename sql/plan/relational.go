package plan

import (
	"github.com/quarrydb/quarry/sql"
)

// Filter keeps the rows of its left child for which the condition
// computed by its right child holds. The condition tree is evaluated in
// the scope of the filtered relation.
type Filter struct {
	BinaryNode
}

// NewFilter creates a new Filter node.
func NewFilter(src, cond sql.Node) *Filter {
	return &Filter{BinaryNode{Left: src, Right: cond}}
}

// WithChildren implements the Node interface.
func (f *Filter) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 2)
	}
	return NewFilter(children[0], children[1]), nil
}

// Equal implements the Node interface.
func (f *Filter) Equal(other sql.Node) bool {
	o, ok := other.(*Filter)
	return ok && f.Left.Equal(o.Left) && f.Right.Equal(o.Right)
}

func (f *Filter) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Filter")
	_ = pr.WriteChildren(f.Left.String(), f.Right.String())
	return pr.String()
}

// Take keeps only the first N rows of its left child, where N is
// computed by its right child.
type Take struct {
	BinaryNode
}

// NewTake creates a new Take node.
func NewTake(src, count sql.Node) *Take {
	return &Take{BinaryNode{Left: src, Right: count}}
}

// WithChildren implements the Node interface.
func (t *Take) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 2)
	}
	return NewTake(children[0], children[1]), nil
}

// Equal implements the Node interface.
func (t *Take) Equal(other sql.Node) bool {
	o, ok := other.(*Take)
	return ok && t.Left.Equal(o.Left) && t.Right.Equal(o.Right)
}

func (t *Take) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Take")
	_ = pr.WriteChildren(t.Left.String(), t.Right.String())
	return pr.String()
}

// Drop discards the first N rows of its left child, where N is computed
// by its right child.
type Drop struct {
	BinaryNode
}

// NewDrop creates a new Drop node.
func NewDrop(src, count sql.Node) *Drop {
	return &Drop{BinaryNode{Left: src, Right: count}}
}

// WithChildren implements the Node interface.
func (d *Drop) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(d, len(children), 2)
	}
	return NewDrop(children[0], children[1]), nil
}

// Equal implements the Node interface.
func (d *Drop) Equal(other sql.Node) bool {
	o, ok := other.(*Drop)
	return ok && d.Left.Equal(o.Left) && d.Right.Equal(o.Right)
}

func (d *Drop) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Drop")
	_ = pr.WriteChildren(d.Left.String(), d.Right.String())
	return pr.String()
}

// Sort orders the rows of its child by one key computed by a sibling
// tree sharing the child's scope.
type Sort struct {
	BinaryNode
	Order sql.SortOrder
}

// NewSort creates a new Sort node.
func NewSort(src, key sql.Node, order sql.SortOrder) *Sort {
	return &Sort{BinaryNode{Left: src, Right: key}, order}
}

// WithChildren implements the Node interface.
func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 2)
	}
	return NewSort(children[0], children[1], s.Order), nil
}

// Equal implements the Node interface.
func (s *Sort) Equal(other sql.Node) bool {
	o, ok := other.(*Sort)
	return ok && s.Order == o.Order && s.Left.Equal(o.Left) && s.Right.Equal(o.Right)
}

func (s *Sort) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Sort(%s)", s.Order)
	_ = pr.WriteChildren(s.Left.String(), s.Right.String())
	return pr.String()
}

// Union concatenates the rows of its children.
type Union struct {
	BinaryNode
}

// NewUnion creates a new Union node.
func NewUnion(left, right sql.Node) *Union {
	return &Union{BinaryNode{Left: left, Right: right}}
}

// WithChildren implements the Node interface.
func (u *Union) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 2)
	}
	return NewUnion(children[0], children[1]), nil
}

// Equal implements the Node interface.
func (u *Union) Equal(other sql.Node) bool {
	o, ok := other.(*Union)
	return ok && u.Left.Equal(o.Left) && u.Right.Equal(o.Right)
}

func (u *Union) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Union")
	_ = pr.WriteChildren(u.Left.String(), u.Right.String())
	return pr.String()
}

// Join joins its two relations under a condition. The condition tree
// refers to the relations through JoinSideRef leaves.
type Join struct {
	BinaryNode
	On   sql.Node
	Kind sql.JoinType
}

// NewJoin creates a new Join node.
func NewJoin(left, right, on sql.Node, kind sql.JoinType) *Join {
	return &Join{BinaryNode{Left: left, Right: right}, on, kind}
}

// Children implements the Node interface.
func (j *Join) Children() []sql.Node { return []sql.Node{j.Left, j.Right, j.On} }

// WithChildren implements the Node interface.
func (j *Join) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 3)
	}
	return NewJoin(children[0], children[1], children[2], j.Kind), nil
}

// Equal implements the Node interface.
func (j *Join) Equal(other sql.Node) bool {
	o, ok := other.(*Join)
	return ok && j.Kind == o.Kind && j.Left.Equal(o.Left) &&
		j.Right.Equal(o.Right) && j.On.Equal(o.On)
}

func (j *Join) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Join(%s)", j.Kind)
	_ = pr.WriteChildren(j.Left.String(), j.Right.String(), j.On.String())
	return pr.String()
}

// ObjectProject selects the named field of every row of its child.
type ObjectProject struct {
	UnaryNode
	Field string
}

// NewObjectProject creates a new ObjectProject node.
func NewObjectProject(src sql.Node, field string) *ObjectProject {
	return &ObjectProject{UnaryNode{Child: src}, field}
}

// WithChildren implements the Node interface.
func (p *ObjectProject) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}
	return NewObjectProject(children[0], p.Field), nil
}

// Equal implements the Node interface.
func (p *ObjectProject) Equal(other sql.Node) bool {
	o, ok := other.(*ObjectProject)
	return ok && p.Field == o.Field && p.Child.Equal(o.Child)
}

func (p *ObjectProject) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("ObjectProject(%s)", p.Field)
	_ = pr.WriteChildren(p.Child.String())
	return pr.String()
}

// ArrayProject selects the element at a fixed index of every row of its
// child.
type ArrayProject struct {
	UnaryNode
	Index int
}

// NewArrayProject creates a new ArrayProject node.
func NewArrayProject(src sql.Node, idx int) *ArrayProject {
	return &ArrayProject{UnaryNode{Child: src}, idx}
}

// WithChildren implements the Node interface.
func (p *ArrayProject) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}
	return NewArrayProject(children[0], p.Index), nil
}

// Equal implements the Node interface.
func (p *ArrayProject) Equal(other sql.Node) bool {
	o, ok := other.(*ArrayProject)
	return ok && p.Index == o.Index && p.Child.Equal(o.Child)
}

func (p *ArrayProject) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("ArrayProject(%d)", p.Index)
	_ = pr.WriteChildren(p.Child.String())
	return pr.String()
}
