package expression

import (
	"fmt"

	"github.com/quarrydb/quarry/sql"
)

// Hole is the placeholder leaf standing for the single input value of a
// per-row expression. Substitution replaces it structurally; it is never
// evaluated.
type Hole struct{}

// NewHole creates the input placeholder.
func NewHole() *Hole { return &Hole{} }

// Children implements the Expression interface.
func (*Hole) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (h *Hole) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(h, len(children), 0)
	}
	return h, nil
}

// Equal implements the Expression interface.
func (*Hole) Equal(other sql.Expression) bool {
	_, ok := other.(*Hole)
	return ok
}

func (*Hole) String() string { return "∘" }

// Side is the placeholder leaf standing for one input of a two-input
// expression, such as a join condition or a shift repair.
type Side struct {
	Side sql.JoinSide
}

// NewSide creates a placeholder for the given input.
func NewSide(side sql.JoinSide) *Side { return &Side{Side: side} }

// NewLeftSide creates a placeholder for the left input.
func NewLeftSide() *Side { return &Side{Side: sql.LeftSide} }

// NewRightSide creates a placeholder for the right input.
func NewRightSide() *Side { return &Side{Side: sql.RightSide} }

// Children implements the Expression interface.
func (*Side) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (s *Side) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

// Equal implements the Expression interface.
func (s *Side) Equal(other sql.Expression) bool {
	o, ok := other.(*Side)
	return ok && s.Side == o.Side
}

func (s *Side) String() string { return s.Side.String() }

// ReducerRef is the placeholder leaf standing for the result of the
// reducer at the given index inside a Reduce repair expression.
type ReducerRef struct {
	Index int
}

// NewReducerRef creates a reference to the reducer result at idx.
func NewReducerRef(idx int) *ReducerRef { return &ReducerRef{Index: idx} }

// Children implements the Expression interface.
func (*ReducerRef) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (r *ReducerRef) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}

// Equal implements the Expression interface.
func (r *ReducerRef) Equal(other sql.Expression) bool {
	o, ok := other.(*ReducerRef)
	return ok && r.Index == o.Index
}

func (r *ReducerRef) String() string { return fmt.Sprintf("reducer(%d)", r.Index) }

// Literal is a constant value.
type Literal struct {
	Value interface{}
}

// NewLiteral creates a new Literal expression.
func NewLiteral(value interface{}) *Literal {
	return &Literal{Value: value}
}

// NewNull creates the null literal.
func NewNull() *Literal { return &Literal{} }

// Children implements the Expression interface.
func (*Literal) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (l *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 0)
	}
	return l, nil
}

// Equal implements the Expression interface.
func (l *Literal) Equal(other sql.Expression) bool {
	o, ok := other.(*Literal)
	return ok && l.Value == o.Value
}

func (l *Literal) String() string {
	if l.Value == nil {
		return "null"
	}
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.Value)
}
