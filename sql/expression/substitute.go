package expression

import (
	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/transform"
)

// Substitute replaces every input hole of e with repl. Substitution is
// structural, not evaluation: the result is the composition e ∘ repl.
func Substitute(e, repl sql.Expression) sql.Expression {
	if IsIdentity(e) {
		return repl
	}
	out, _, _ := transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if _, ok := e.(*Hole); ok {
			return repl, transform.NewTree, nil
		}
		return e, transform.SameTree, nil
	})
	return out
}

// SubstituteSides replaces every left-side hole of e with left and every
// right-side hole with right. Used to evaluate a two-input expression
// against concrete per-side values.
func SubstituteSides(e, left, right sql.Expression) sql.Expression {
	out, _, _ := transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if s, ok := e.(*Side); ok {
			if s.Side == sql.LeftSide {
				return left, transform.NewTree, nil
			}
			return right, transform.NewTree, nil
		}
		return e, transform.SameTree, nil
	})
	return out
}

// SubstituteReducers renumbers or replaces reducer references in a repair
// expression. References absent from the mapping are left untouched.
func SubstituteReducers(e sql.Expression, refs map[int]sql.Expression) sql.Expression {
	out, _, _ := transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if r, ok := e.(*ReducerRef); ok {
			if repl, ok := refs[r.Index]; ok {
				return repl, transform.NewTree, nil
			}
		}
		return e, transform.SameTree, nil
	})
	return out
}

// ReferencesSide reports whether e mentions the given side hole anywhere.
func ReferencesSide(e sql.Expression, side sql.JoinSide) bool {
	return transform.InspectExpr(e, func(e sql.Expression) bool {
		s, ok := e.(*Side)
		return ok && s.Side == side
	})
}

// ReferencesHole reports whether e mentions the input hole anywhere.
func ReferencesHole(e sql.Expression) bool {
	return transform.InspectExpr(e, func(e sql.Expression) bool {
		_, ok := e.(*Hole)
		return ok
	})
}

// ReducerRefs returns the set of reducer indices referenced by a repair
// expression.
func ReducerRefs(e sql.Expression) map[int]struct{} {
	refs := make(map[int]struct{})
	transform.InspectExpr(e, func(e sql.Expression) bool {
		if r, ok := e.(*ReducerRef); ok {
			refs[r.Index] = struct{}{}
		}
		return false
	})
	return refs
}
