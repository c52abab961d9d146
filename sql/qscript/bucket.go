package qscript

import (
	"fmt"

	"github.com/quarrydb/quarry/sql"
)

// BucketField projects the named field out of the value computed by
// Value. It is kept distinct from Map during lowering because the
// projection doubles as a provenance tag; the optimizer rewrites it into
// a plain Map once provenance tracking has completed.
type BucketField struct {
	Src   sql.Node
	Value sql.Expression
	Field string
}

var _ Sourced = (*BucketField)(nil)

// NewBucketField creates a new BucketField node.
func NewBucketField(src sql.Node, value sql.Expression, field string) *BucketField {
	return &BucketField{Src: src, Value: value, Field: field}
}

// Source implements the Sourced interface.
func (b *BucketField) Source() sql.Node { return b.Src }

// WithSource implements the Sourced interface.
func (b *BucketField) WithSource(src sql.Node) sql.Node {
	return NewBucketField(src, b.Value, b.Field)
}

// Children implements the Node interface.
func (b *BucketField) Children() []sql.Node { return []sql.Node{b.Src} }

// WithChildren implements the Node interface.
func (b *BucketField) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(b, len(children), 1)
	}
	return NewBucketField(children[0], b.Value, b.Field), nil
}

// Equal implements the Node interface.
func (b *BucketField) Equal(other sql.Node) bool {
	o, ok := other.(*BucketField)
	return ok && b.Field == o.Field && b.Value.Equal(o.Value) && b.Src.Equal(o.Src)
}

func (b *BucketField) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("BucketField(%s, %q)", b.Value, b.Field)
	_ = pr.WriteChildren(b.Src.String())
	return pr.String()
}

// BucketIndex projects the element at a fixed index out of the value
// computed by Value, with the same provenance-marker role as
// BucketField.
type BucketIndex struct {
	Src   sql.Node
	Value sql.Expression
	Index int
}

var _ Sourced = (*BucketIndex)(nil)

// NewBucketIndex creates a new BucketIndex node.
func NewBucketIndex(src sql.Node, value sql.Expression, idx int) *BucketIndex {
	return &BucketIndex{Src: src, Value: value, Index: idx}
}

// Source implements the Sourced interface.
func (b *BucketIndex) Source() sql.Node { return b.Src }

// WithSource implements the Sourced interface.
func (b *BucketIndex) WithSource(src sql.Node) sql.Node {
	return NewBucketIndex(src, b.Value, b.Index)
}

// Children implements the Node interface.
func (b *BucketIndex) Children() []sql.Node { return []sql.Node{b.Src} }

// WithChildren implements the Node interface.
func (b *BucketIndex) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(b, len(children), 1)
	}
	return NewBucketIndex(children[0], b.Value, b.Index), nil
}

// Equal implements the Node interface.
func (b *BucketIndex) Equal(other sql.Node) bool {
	o, ok := other.(*BucketIndex)
	return ok && b.Index == o.Index && b.Value.Equal(o.Value) && b.Src.Equal(o.Src)
}

func (b *BucketIndex) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode(fmt.Sprintf("BucketIndex(%s, %d)", b.Value, b.Index))
	_ = pr.WriteChildren(b.Src.String())
	return pr.String()
}
