package expression

import (
	"github.com/spf13/cast"

	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/transform"
)

// Simplify folds statically-decidable projections: selecting a fixed
// index out of a literal array construction, or a field out of a literal
// single-entry map. Substitution composes expressions freely, so these
// shapes show up whenever a recovery expression is plugged into a merged
// array; folding them keeps the canonical IR small.
func Simplify(e sql.Expression) sql.Expression {
	out, _, _ := transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch e := e.(type) {
		case *ProjectIndex:
			if arr, ok := e.Child.(*MakeArray); ok {
				if e.Index >= 0 && e.Index < len(arr.Elems) {
					return arr.Elems[e.Index], transform.NewTree, nil
				}
			}
		case *ProjectField:
			if m, ok := e.Child.(*MakeMap); ok {
				if key, ok := m.Key().(*Literal); ok {
					if name, err := cast.ToStringE(key.Value); err == nil && name == e.Field {
						return m.Value(), transform.NewTree, nil
					}
				}
			}
		}
		return e, transform.SameTree, nil
	})
	return out
}
