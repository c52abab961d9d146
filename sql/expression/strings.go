package expression

import (
	"fmt"

	"github.com/quarrydb/quarry/sql"
)

// Concat concatenates the strings produced by its children.
type Concat struct {
	BinaryExpression
}

// NewConcat creates a new Concat expression.
func NewConcat(left, right sql.Expression) *Concat {
	return &Concat{BinaryExpression{Left: left, Right: right}}
}

// WithChildren implements the Expression interface.
func (c *Concat) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	return NewConcat(children[0], children[1]), nil
}

// Equal implements the Expression interface.
func (c *Concat) Equal(other sql.Expression) bool {
	o, ok := other.(*Concat)
	return ok && c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
}

func (c *Concat) String() string {
	return fmt.Sprintf("concat(%s, %s)", c.Left, c.Right)
}

// Lower lowercases the string produced by its child.
type Lower struct {
	UnaryExpression
}

// NewLower creates a new Lower expression.
func NewLower(child sql.Expression) *Lower {
	return &Lower{UnaryExpression{Child: child}}
}

// WithChildren implements the Expression interface.
func (l *Lower) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLower(children[0]), nil
}

// Equal implements the Expression interface.
func (l *Lower) Equal(other sql.Expression) bool {
	o, ok := other.(*Lower)
	return ok && l.Child.Equal(o.Child)
}

func (l *Lower) String() string {
	return fmt.Sprintf("lower(%s)", l.Child)
}

// Upper uppercases the string produced by its child.
type Upper struct {
	UnaryExpression
}

// NewUpper creates a new Upper expression.
func NewUpper(child sql.Expression) *Upper {
	return &Upper{UnaryExpression{Child: child}}
}

// WithChildren implements the Expression interface.
func (u *Upper) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 1)
	}
	return NewUpper(children[0]), nil
}

// Equal implements the Expression interface.
func (u *Upper) Equal(other sql.Expression) bool {
	o, ok := other.(*Upper)
	return ok && u.Child.Equal(o.Child)
}

func (u *Upper) String() string {
	return fmt.Sprintf("upper(%s)", u.Child)
}
