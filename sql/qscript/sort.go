package qscript

import (
	"strings"

	"github.com/quarrydb/quarry/sql"
)

// Sort orders the rows of its source by the given keys within each
// bucket.
type Sort struct {
	Src     sql.Node
	Bucket  sql.Expression
	OrderBy []sql.SortField
}

var _ Sourced = (*Sort)(nil)

// NewSort creates a new Sort node.
func NewSort(src sql.Node, bucket sql.Expression, orderBy []sql.SortField) *Sort {
	return &Sort{Src: src, Bucket: bucket, OrderBy: orderBy}
}

// Source implements the Sourced interface.
func (s *Sort) Source() sql.Node { return s.Src }

// WithSource implements the Sourced interface.
func (s *Sort) WithSource(src sql.Node) sql.Node {
	return NewSort(src, s.Bucket, s.OrderBy)
}

// Children implements the Node interface.
func (s *Sort) Children() []sql.Node { return []sql.Node{s.Src} }

// WithChildren implements the Node interface.
func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSort(children[0], s.Bucket, s.OrderBy), nil
}

// Equal implements the Node interface.
func (s *Sort) Equal(other sql.Node) bool {
	o, ok := other.(*Sort)
	if !ok || !s.Bucket.Equal(o.Bucket) || len(s.OrderBy) != len(o.OrderBy) {
		return false
	}
	for i := range s.OrderBy {
		if s.OrderBy[i].Order != o.OrderBy[i].Order ||
			!s.OrderBy[i].Column.Equal(o.OrderBy[i].Column) {
			return false
		}
	}
	return s.Src.Equal(o.Src)
}

func (s *Sort) String() string {
	keys := make([]string, len(s.OrderBy))
	for i, sf := range s.OrderBy {
		keys[i] = sf.String()
	}
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Sort(%s)", strings.Join(keys, ", "))
	_ = pr.WriteChildren(s.Src.String())
	return pr.String()
}
