package expression

import (
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/sql"
)

// MakeMap builds a single-entry map from a key and a value expression.
// Larger objects are built by concatenating single entries with
// ConcatMaps.
type MakeMap struct {
	BinaryExpression
}

// NewMakeMap creates a new MakeMap expression.
func NewMakeMap(key, value sql.Expression) *MakeMap {
	return &MakeMap{BinaryExpression{Left: key, Right: value}}
}

// Key returns the key expression of the entry.
func (m *MakeMap) Key() sql.Expression { return m.Left }

// Value returns the value expression of the entry.
func (m *MakeMap) Value() sql.Expression { return m.Right }

// WithChildren implements the Expression interface.
func (m *MakeMap) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 2)
	}
	return NewMakeMap(children[0], children[1]), nil
}

// Equal implements the Expression interface.
func (m *MakeMap) Equal(other sql.Expression) bool {
	o, ok := other.(*MakeMap)
	return ok && m.Left.Equal(o.Left) && m.Right.Equal(o.Right)
}

func (m *MakeMap) String() string {
	return fmt.Sprintf("{%s: %s}", m.Left, m.Right)
}

// MakeArray builds an array from its element expressions.
type MakeArray struct {
	Elems []sql.Expression
}

// NewMakeArray creates a new MakeArray expression.
func NewMakeArray(elems ...sql.Expression) *MakeArray {
	return &MakeArray{Elems: elems}
}

// Children implements the Expression interface.
func (m *MakeArray) Children() []sql.Expression { return m.Elems }

// WithChildren implements the Expression interface.
func (m *MakeArray) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(m.Elems) {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), len(m.Elems))
	}
	return NewMakeArray(children...), nil
}

// Equal implements the Expression interface.
func (m *MakeArray) Equal(other sql.Expression) bool {
	o, ok := other.(*MakeArray)
	return ok && sql.ExpressionsEqual(m.Elems, o.Elems)
}

func (m *MakeArray) String() string {
	parts := make([]string, len(m.Elems))
	for i, e := range m.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ConcatMaps merges the maps produced by its children, right entries
// winning on key collision.
type ConcatMaps struct {
	BinaryExpression
}

// NewConcatMaps creates a new ConcatMaps expression.
func NewConcatMaps(left, right sql.Expression) *ConcatMaps {
	return &ConcatMaps{BinaryExpression{Left: left, Right: right}}
}

// WithChildren implements the Expression interface.
func (c *ConcatMaps) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	return NewConcatMaps(children[0], children[1]), nil
}

// Equal implements the Expression interface.
func (c *ConcatMaps) Equal(other sql.Expression) bool {
	o, ok := other.(*ConcatMaps)
	return ok && c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
}

func (c *ConcatMaps) String() string {
	return fmt.Sprintf("concatMaps(%s, %s)", c.Left, c.Right)
}

// ConcatArrays appends the array produced by the right child to the one
// produced by the left.
type ConcatArrays struct {
	BinaryExpression
}

// NewConcatArrays creates a new ConcatArrays expression.
func NewConcatArrays(left, right sql.Expression) *ConcatArrays {
	return &ConcatArrays{BinaryExpression{Left: left, Right: right}}
}

// WithChildren implements the Expression interface.
func (c *ConcatArrays) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	return NewConcatArrays(children[0], children[1]), nil
}

// Equal implements the Expression interface.
func (c *ConcatArrays) Equal(other sql.Expression) bool {
	o, ok := other.(*ConcatArrays)
	return ok && c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
}

func (c *ConcatArrays) String() string {
	return fmt.Sprintf("concatArrays(%s, %s)", c.Left, c.Right)
}

// DupMapKeys rewrites every entry k → v of the map produced by its child
// into k → [k, v], so that a later shift can recover both the key and the
// value of each entry.
type DupMapKeys struct {
	UnaryExpression
}

// NewDupMapKeys creates a new DupMapKeys expression.
func NewDupMapKeys(child sql.Expression) *DupMapKeys {
	return &DupMapKeys{UnaryExpression{Child: child}}
}

// WithChildren implements the Expression interface.
func (d *DupMapKeys) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(d, len(children), 1)
	}
	return NewDupMapKeys(children[0]), nil
}

// Equal implements the Expression interface.
func (d *DupMapKeys) Equal(other sql.Expression) bool {
	o, ok := other.(*DupMapKeys)
	return ok && d.Child.Equal(o.Child)
}

func (d *DupMapKeys) String() string {
	return fmt.Sprintf("dupMapKeys(%s)", d.Child)
}

// DupArrayIndices rewrites every element v at index i of the array
// produced by its child into [i, v].
type DupArrayIndices struct {
	UnaryExpression
}

// NewDupArrayIndices creates a new DupArrayIndices expression.
func NewDupArrayIndices(child sql.Expression) *DupArrayIndices {
	return &DupArrayIndices{UnaryExpression{Child: child}}
}

// WithChildren implements the Expression interface.
func (d *DupArrayIndices) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(d, len(children), 1)
	}
	return NewDupArrayIndices(children[0]), nil
}

// Equal implements the Expression interface.
func (d *DupArrayIndices) Equal(other sql.Expression) bool {
	o, ok := other.(*DupArrayIndices)
	return ok && d.Child.Equal(o.Child)
}

func (d *DupArrayIndices) String() string {
	return fmt.Sprintf("dupArrayIndices(%s)", d.Child)
}

// Range produces the array of integers [from, to).
type Range struct {
	BinaryExpression
}

// NewRange creates a new Range expression.
func NewRange(from, to sql.Expression) *Range {
	return &Range{BinaryExpression{Left: from, Right: to}}
}

// WithChildren implements the Expression interface.
func (r *Range) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 2)
	}
	return NewRange(children[0], children[1]), nil
}

// Equal implements the Expression interface.
func (r *Range) Equal(other sql.Expression) bool {
	o, ok := other.(*Range)
	return ok && r.Left.Equal(o.Left) && r.Right.Equal(o.Right)
}

func (r *Range) String() string {
	return fmt.Sprintf("range(%s, %s)", r.Left, r.Right)
}
