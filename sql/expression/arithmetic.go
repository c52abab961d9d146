package expression

import (
	"fmt"

	"github.com/quarrydb/quarry/sql"
)

const (
	PlusStr  = "+"
	MinusStr = "-"
	MultStr  = "*"
	DivStr   = "/"
	ModStr   = "%"
)

// Arithmetic expressions (+, -, *, /, %).
type Arithmetic struct {
	BinaryExpression
	Op string
}

// NewArithmetic creates a new Arithmetic sql.Expression.
func NewArithmetic(left, right sql.Expression, op string) *Arithmetic {
	return &Arithmetic{BinaryExpression{Left: left, Right: right}, op}
}

// NewPlus creates a new Arithmetic + sql.Expression.
func NewPlus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, PlusStr)
}

// NewMinus creates a new Arithmetic - sql.Expression.
func NewMinus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, MinusStr)
}

// NewMult creates a new Arithmetic * sql.Expression.
func NewMult(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, MultStr)
}

// NewDiv creates a new Arithmetic / sql.Expression.
func NewDiv(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, DivStr)
}

// NewMod creates a new Arithmetic % sql.Expression.
func NewMod(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, ModStr)
}

// WithChildren implements the Expression interface.
func (a *Arithmetic) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewArithmetic(children[0], children[1], a.Op), nil
}

// Equal implements the Expression interface.
func (a *Arithmetic) Equal(other sql.Expression) bool {
	o, ok := other.(*Arithmetic)
	return ok && a.Op == o.Op && a.Left.Equal(o.Left) && a.Right.Equal(o.Right)
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right)
}

const (
	EqStr  = "="
	NeqStr = "<>"
	LtStr  = "<"
	LteStr = "<="
	GtStr  = ">"
	GteStr = ">="
)

// Comparison expressions (=, <>, <, <=, >, >=).
type Comparison struct {
	BinaryExpression
	Op string
}

// NewComparison creates a new Comparison sql.Expression.
func NewComparison(left, right sql.Expression, op string) *Comparison {
	return &Comparison{BinaryExpression{Left: left, Right: right}, op}
}

// NewEquals creates a new Comparison = sql.Expression.
func NewEquals(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, EqStr)
}

// NewNotEquals creates a new Comparison <> sql.Expression.
func NewNotEquals(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, NeqStr)
}

// NewLessThan creates a new Comparison < sql.Expression.
func NewLessThan(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, LtStr)
}

// NewLessThanOrEqual creates a new Comparison <= sql.Expression.
func NewLessThanOrEqual(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, LteStr)
}

// NewGreaterThan creates a new Comparison > sql.Expression.
func NewGreaterThan(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, GtStr)
}

// NewGreaterThanOrEqual creates a new Comparison >= sql.Expression.
func NewGreaterThanOrEqual(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, GteStr)
}

// WithChildren implements the Expression interface.
func (c *Comparison) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	return NewComparison(children[0], children[1], c.Op), nil
}

// Equal implements the Expression interface.
func (c *Comparison) Equal(other sql.Expression) bool {
	o, ok := other.(*Comparison)
	return ok && c.Op == o.Op && c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
}

func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

// And is logical conjunction.
type And struct {
	BinaryExpression
}

// NewAnd creates a new And expression.
func NewAnd(left, right sql.Expression) *And {
	return &And{BinaryExpression{Left: left, Right: right}}
}

// JoinAnd folds a list of expressions into a right-nested And chain.
// Returns the true literal for an empty list.
func JoinAnd(exprs ...sql.Expression) sql.Expression {
	switch len(exprs) {
	case 0:
		return NewLiteral(true)
	case 1:
		return exprs[0]
	default:
		return NewAnd(exprs[0], JoinAnd(exprs[1:]...))
	}
}

// WithChildren implements the Expression interface.
func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewAnd(children[0], children[1]), nil
}

// Equal implements the Expression interface.
func (a *And) Equal(other sql.Expression) bool {
	o, ok := other.(*And)
	return ok && a.Left.Equal(o.Left) && a.Right.Equal(o.Right)
}

func (a *And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

// Not is logical negation.
type Not struct {
	UnaryExpression
}

// NewNot creates a new Not expression.
func NewNot(child sql.Expression) *Not {
	return &Not{UnaryExpression{Child: child}}
}

// WithChildren implements the Expression interface.
func (n *Not) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 1)
	}
	return NewNot(children[0]), nil
}

// Equal implements the Expression interface.
func (n *Not) Equal(other sql.Expression) bool {
	o, ok := other.(*Not)
	return ok && n.Child.Equal(o.Child)
}

func (n *Not) String() string {
	return fmt.Sprintf("NOT(%s)", n.Child)
}
