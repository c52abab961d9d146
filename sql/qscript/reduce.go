package qscript

import (
	"strings"

	"github.com/quarrydb/quarry/sql"
)

// Reduce groups the rows of its source by the bucket expression and
// aggregates each group with the reducers. Repair rebuilds the output
// row from the reducer results; it is the only place ReducerRef holes
// are legal.
type Reduce struct {
	Src      sql.Node
	Bucket   sql.Expression
	Reducers []ReduceFunc
	Repair   sql.Expression
}

var _ Sourced = (*Reduce)(nil)

// NewReduce creates a new Reduce node.
func NewReduce(src sql.Node, bucket sql.Expression, reducers []ReduceFunc, repair sql.Expression) *Reduce {
	return &Reduce{Src: src, Bucket: bucket, Reducers: reducers, Repair: repair}
}

// Source implements the Sourced interface.
func (r *Reduce) Source() sql.Node { return r.Src }

// WithSource implements the Sourced interface.
func (r *Reduce) WithSource(src sql.Node) sql.Node {
	return NewReduce(src, r.Bucket, r.Reducers, r.Repair)
}

// Children implements the Node interface.
func (r *Reduce) Children() []sql.Node { return []sql.Node{r.Src} }

// WithChildren implements the Node interface.
func (r *Reduce) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 1)
	}
	return NewReduce(children[0], r.Bucket, r.Reducers, r.Repair), nil
}

// Equal implements the Node interface.
func (r *Reduce) Equal(other sql.Node) bool {
	o, ok := other.(*Reduce)
	return ok &&
		r.Bucket.Equal(o.Bucket) &&
		ReduceFuncsEqual(r.Reducers, o.Reducers) &&
		r.Repair.Equal(o.Repair) &&
		r.Src.Equal(o.Src)
}

func (r *Reduce) String() string {
	reducers := make([]string, len(r.Reducers))
	for i, rf := range r.Reducers {
		reducers[i] = rf.String()
	}
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Reduce(bucket: %s, reducers: [%s], repair: %s)",
		r.Bucket, strings.Join(reducers, ", "), r.Repair)
	_ = pr.WriteChildren(r.Src.String())
	return pr.String()
}
