package expression

import (
	"fmt"

	"github.com/quarrydb/quarry/sql"
)

// ProjectField selects the named field from the map produced by its child.
type ProjectField struct {
	UnaryExpression
	Field string
}

// NewProjectField creates a new ProjectField expression.
func NewProjectField(child sql.Expression, field string) *ProjectField {
	return &ProjectField{UnaryExpression{Child: child}, field}
}

// WithChildren implements the Expression interface.
func (p *ProjectField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}
	return NewProjectField(children[0], p.Field), nil
}

// Equal implements the Expression interface.
func (p *ProjectField) Equal(other sql.Expression) bool {
	o, ok := other.(*ProjectField)
	return ok && p.Field == o.Field && p.Child.Equal(o.Child)
}

func (p *ProjectField) String() string {
	return fmt.Sprintf("%s.%s", p.Child, p.Field)
}

// ProjectIndex selects the element at a fixed index from the array
// produced by its child.
type ProjectIndex struct {
	UnaryExpression
	Index int
}

// NewProjectIndex creates a new ProjectIndex expression.
func NewProjectIndex(child sql.Expression, idx int) *ProjectIndex {
	return &ProjectIndex{UnaryExpression{Child: child}, idx}
}

// WithChildren implements the Expression interface.
func (p *ProjectIndex) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}
	return NewProjectIndex(children[0], p.Index), nil
}

// Equal implements the Expression interface.
func (p *ProjectIndex) Equal(other sql.Expression) bool {
	o, ok := other.(*ProjectIndex)
	return ok && p.Index == o.Index && p.Child.Equal(o.Child)
}

func (p *ProjectIndex) String() string {
	return fmt.Sprintf("%s[%d]", p.Child, p.Index)
}
