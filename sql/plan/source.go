package plan

import (
	"fmt"

	"github.com/quarrydb/quarry/sql"
)

// Read loads the collection at an absolute path.
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

// Constant is a literal value.
type Constant struct {
	Value interface{}
}

// NewConstant creates a new Constant node.
func NewConstant(value interface{}) *Constant { return &Constant{Value: value} }

// Children implements the Node interface.
func (*Constant) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (c *Constant) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 0)
	}
	return c, nil
}

// Equal implements the Node interface.
func (c *Constant) Equal(other sql.Node) bool {
	o, ok := other.(*Constant)
	return ok && c.Value == o.Value
}

func (c *Constant) String() string { return fmt.Sprintf("Constant(%v)", c.Value) }

// Free is an unresolved variable reference. Reaching the lowering stage
// with one of these is a user error, not a bug.
type Free struct {
	Name string
}

// NewFree creates a new Free node.
func NewFree(name string) *Free { return &Free{Name: name} }

// Children implements the Node interface.
func (*Free) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (f *Free) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 0)
	}
	return f, nil
}

// Equal implements the Node interface.
func (f *Free) Equal(other sql.Node) bool {
	o, ok := other.(*Free)
	return ok && f.Name == o.Name
}

func (f *Free) String() string { return fmt.Sprintf("Free(%s)", f.Name) }

// Let binds Form to Name inside Body. Lets are inlined by a pre-pass;
// one reaching the lowering stage signals a bug upstream.
type Let struct {
	Name string
	Form sql.Node
	Body sql.Node
}

// NewLet creates a new Let node.
func NewLet(name string, form, body sql.Node) *Let {
	return &Let{Name: name, Form: form, Body: body}
}

// Children implements the Node interface.
func (l *Let) Children() []sql.Node { return []sql.Node{l.Form, l.Body} }

// WithChildren implements the Node interface.
func (l *Let) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 2)
	}
	return NewLet(l.Name, children[0], children[1]), nil
}

// Equal implements the Node interface.
func (l *Let) Equal(other sql.Node) bool {
	o, ok := other.(*Let)
	return ok && l.Name == o.Name && l.Form.Equal(o.Form) && l.Body.Equal(o.Body)
}

func (l *Let) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Let(%s)", l.Name)
	_ = pr.WriteChildren(l.Form.String(), l.Body.String())
	return pr.String()
}

// JoinSideRef refers to one input relation of an enclosing join. It is
// only legal inside a join condition.
type JoinSideRef struct {
	Side sql.JoinSide
}

// NewJoinSideRef creates a reference to one side of an enclosing join.
func NewJoinSideRef(side sql.JoinSide) *JoinSideRef {
	return &JoinSideRef{Side: side}
}

// Children implements the Node interface.
func (*JoinSideRef) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (j *JoinSideRef) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 0)
	}
	return j, nil
}

// Equal implements the Node interface.
func (j *JoinSideRef) Equal(other sql.Node) bool {
	o, ok := other.(*JoinSideRef)
	return ok && j.Side == o.Side
}

func (j *JoinSideRef) String() string { return fmt.Sprintf("JoinSide(%s)", j.Side) }
