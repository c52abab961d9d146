package analyzer

import (
	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
	"github.com/quarrydb/quarry/sql/qscript"
	"github.com/quarrydb/quarry/sql/transform"
)

// OnceBeforeDefault contains the rules to run once before the default
// batch.
var OnceBeforeDefault = []Rule{
	{"resolve_buckets", resolveBuckets},
}

// DefaultRules are the rules executed to a fixed point on every tree.
var DefaultRules = []Rule{
	{"elide_nop_map", elideNopMap},
	{"coalesce_maps", coalesceMaps},
	{"coalesce_map_join", coalesceMapJoin},
	{"coalesce_map_reduce", coalesceMapReduce},
	{"coalesce_map_shift", coalesceMapShift},
	{"push_map_down", pushMapDown},
	{"compact_reduction", compactReduction},
	{"compact_left_shift", compactLeftShift},
	{"elide_nop_join", elideNopJoin},
	{"simplify_expressions", simplifyExpressions},
}

// resolveBuckets rewrites the bucket projection markers left behind by
// lowering into plain maps. They only exist to carry provenance while
// lowering runs, which is over by the time the optimizer sees the tree.
func resolveBuckets(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch v := n.(type) {
		case *qscript.BucketField:
			return qscript.MapOn(v.Src, expression.NewProjectField(v.Value, v.Field)),
				transform.NewTree, nil
		case *qscript.BucketIndex:
			return qscript.MapOn(v.Src, expression.NewProjectIndex(v.Value, v.Index)),
				transform.NewTree, nil
		default:
			return n, transform.SameTree, nil
		}
	})
	return n, err
}

// elideNopMap removes maps applying the identity.
func elideNopMap(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		if m, ok := n.(*qscript.Map); ok && expression.IsIdentity(m.FN) {
			return m.Src, transform.NewTree, nil
		}
		return n, transform.SameTree, nil
	})
	return n, err
}

// coalesceMaps composes adjacent maps into one.
func coalesceMaps(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		outer, ok := n.(*qscript.Map)
		if !ok {
			return n, transform.SameTree, nil
		}
		inner, ok := outer.Src.(*qscript.Map)
		if !ok {
			return n, transform.SameTree, nil
		}
		return qscript.NewMap(inner.Src, expression.Substitute(outer.FN, inner.FN)),
			transform.NewTree, nil
	})
	return n, err
}

// coalesceMapJoin folds a map over a join into the join's combine
// expression.
func coalesceMapJoin(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		m, ok := n.(*qscript.Map)
		if !ok {
			return n, transform.SameTree, nil
		}
		j, ok := m.Src.(*qscript.ThetaJoin)
		if !ok {
			return n, transform.SameTree, nil
		}
		combine := expression.Substitute(m.FN, j.Combine)
		return qscript.NewThetaJoin(j.Src, j.Left, j.Right, j.On, j.Kind, combine),
			transform.NewTree, nil
	})
	return n, err
}

// coalesceMapReduce folds a map over a reduction into the reduction's
// repair expression.
func coalesceMapReduce(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		m, ok := n.(*qscript.Map)
		if !ok {
			return n, transform.SameTree, nil
		}
		r, ok := m.Src.(*qscript.Reduce)
		if !ok {
			return n, transform.SameTree, nil
		}
		repair := expression.Substitute(m.FN, r.Repair)
		return qscript.NewReduce(r.Src, r.Bucket, r.Reducers, repair),
			transform.NewTree, nil
	})
	return n, err
}

// coalesceMapShift folds a map over a shift into the shift's repair
// expression.
func coalesceMapShift(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		m, ok := n.(*qscript.Map)
		if !ok {
			return n, transform.SameTree, nil
		}
		ls, ok := m.Src.(*qscript.LeftShift)
		if !ok {
			return n, transform.SameTree, nil
		}
		repair := expression.Substitute(m.FN, ls.Repair)
		return qscript.NewLeftShift(ls.Src, ls.Struct, repair),
			transform.NewTree, nil
	})
	return n, err
}

// pushMapDown moves a map over a limit or union into the branches the
// rows actually come from, so it can keep coalescing there.
func pushMapDown(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		m, ok := n.(*qscript.Map)
		if !ok {
			return n, transform.SameTree, nil
		}
		switch v := m.Src.(type) {
		case *qscript.Take:
			return qscript.NewTake(v.Src, qscript.MapOn(v.From, m.FN), v.Count),
				transform.NewTree, nil
		case *qscript.Drop:
			return qscript.NewDrop(v.Src, qscript.MapOn(v.From, m.FN), v.Count),
				transform.NewTree, nil
		case *qscript.Union:
			return qscript.NewUnion(v.Src,
					qscript.MapOn(v.Left, m.FN),
					qscript.MapOn(v.Right, m.FN)),
				transform.NewTree, nil
		default:
			return n, transform.SameTree, nil
		}
	})
	return n, err
}

// compactReduction drops reducers whose result the repair expression
// never references and renumbers the remaining references.
func compactReduction(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		r, ok := n.(*qscript.Reduce)
		if !ok {
			return n, transform.SameTree, nil
		}
		refs := expression.ReducerRefs(r.Repair)
		if len(refs) >= len(r.Reducers) {
			return n, transform.SameTree, nil
		}

		var kept []qscript.ReduceFunc
		renumber := make(map[int]sql.Expression, len(refs))
		for i, rf := range r.Reducers {
			if _, ok := refs[i]; !ok {
				continue
			}
			renumber[i] = expression.NewReducerRef(len(kept))
			kept = append(kept, rf)
		}
		repair := expression.SubstituteReducers(r.Repair, renumber)
		return qscript.NewReduce(r.Src, r.Bucket, kept, repair),
			transform.NewTree, nil
	})
	return n, err
}

// compactLeftShift undoes key duplication a shift turned out not to
// need: when the repair only ever looks at the value half of the
// duplicated [key, element] pairs, the shift can run on the plain
// structure.
func compactLeftShift(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		ls, ok := n.(*qscript.LeftShift)
		if !ok {
			return n, transform.SameTree, nil
		}
		var inner sql.Expression
		switch d := ls.Struct.(type) {
		case *expression.DupMapKeys:
			inner = d.Child
		case *expression.DupArrayIndices:
			inner = d.Child
		default:
			return n, transform.SameTree, nil
		}
		if !elementValueOnly(ls.Repair) {
			return n, transform.SameTree, nil
		}

		repair, _, err := transform.Expr(ls.Repair, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
			if isElementValue(e) {
				return expression.NewRightSide(), transform.NewTree, nil
			}
			return e, transform.SameTree, nil
		})
		if err != nil {
			return nil, transform.SameTree, err
		}
		return qscript.NewLeftShift(ls.Src, inner, repair), transform.NewTree, nil
	})
	return n, err
}

// elementValueOnly reports whether every reference to the shifted
// element selects the value half of a duplicated pair.
func elementValueOnly(repair sql.Expression) bool {
	leaves, wrapped := 0, 0
	transform.InspectExpr(repair, func(e sql.Expression) bool {
		if s, ok := e.(*expression.Side); ok && s.Side == sql.RightSide {
			leaves++
		}
		if isElementValue(e) {
			wrapped++
		}
		return false
	})
	return leaves > 0 && leaves == wrapped
}

func isElementValue(e sql.Expression) bool {
	pi, ok := e.(*expression.ProjectIndex)
	if !ok || pi.Index != 1 {
		return false
	}
	s, ok := pi.Child.(*expression.Side)
	return ok && s.Side == sql.RightSide
}

// elideNopJoin removes a self-join on whole-row equality: both branches
// are the shared source itself, so each row pairs exactly with itself
// and the join degenerates into a map.
func elideNopJoin(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		j, ok := n.(*qscript.ThetaJoin)
		if !ok || j.Kind != sql.JoinInner {
			return n, transform.SameTree, nil
		}
		if _, ok := j.Left.(*qscript.Unreferenced); !ok {
			return n, transform.SameTree, nil
		}
		if _, ok := j.Right.(*qscript.Unreferenced); !ok {
			return n, transform.SameTree, nil
		}
		if !isSelfEquality(j.On) {
			return n, transform.SameTree, nil
		}
		hole := expression.NewHole()
		fn := expression.SubstituteSides(j.Combine, hole, hole)
		return qscript.MapOn(j.Src, fn), transform.NewTree, nil
	})
	return n, err
}

func isSelfEquality(on sql.Expression) bool {
	cmp, ok := on.(*expression.Comparison)
	if !ok || cmp.Op != expression.EqStr {
		return false
	}
	l, ok := cmp.Left.(*expression.Side)
	if !ok || l.Side != sql.LeftSide {
		return false
	}
	r, ok := cmp.Right.(*expression.Side)
	return ok && r.Side == sql.RightSide
}

// simplifyExpressions folds constant projections inside every
// expression the tree carries.
func simplifyExpressions(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	n, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch v := n.(type) {
		case *qscript.Map:
			fn := expression.Simplify(v.FN)
			if fn.Equal(v.FN) {
				return n, transform.SameTree, nil
			}
			return qscript.NewMap(v.Src, fn), transform.NewTree, nil

		case *qscript.Filter:
			fn := expression.Simplify(v.FN)
			if fn.Equal(v.FN) {
				return n, transform.SameTree, nil
			}
			return qscript.NewFilter(v.Src, fn), transform.NewTree, nil

		case *qscript.Reduce:
			same := true
			bucket := expression.Simplify(v.Bucket)
			same = same && bucket.Equal(v.Bucket)
			reducers := make([]qscript.ReduceFunc, len(v.Reducers))
			for i, rf := range v.Reducers {
				arg := expression.Simplify(rf.Arg)
				same = same && arg.Equal(rf.Arg)
				reducers[i] = qscript.NewReduceFunc(rf.Op, arg)
			}
			repair := expression.Simplify(v.Repair)
			same = same && repair.Equal(v.Repair)
			if same {
				return n, transform.SameTree, nil
			}
			return qscript.NewReduce(v.Src, bucket, reducers, repair), transform.NewTree, nil

		case *qscript.Sort:
			same := true
			bucket := expression.Simplify(v.Bucket)
			same = same && bucket.Equal(v.Bucket)
			orderBy := make([]sql.SortField, len(v.OrderBy))
			for i, sf := range v.OrderBy {
				col := expression.Simplify(sf.Column)
				same = same && col.Equal(sf.Column)
				orderBy[i] = sql.SortField{Column: col, Order: sf.Order}
			}
			if same {
				return n, transform.SameTree, nil
			}
			return qscript.NewSort(v.Src, bucket, orderBy), transform.NewTree, nil

		case *qscript.LeftShift:
			structExpr := expression.Simplify(v.Struct)
			repair := expression.Simplify(v.Repair)
			if structExpr.Equal(v.Struct) && repair.Equal(v.Repair) {
				return n, transform.SameTree, nil
			}
			return qscript.NewLeftShift(v.Src, structExpr, repair), transform.NewTree, nil

		case *qscript.ThetaJoin:
			on := expression.Simplify(v.On)
			combine := expression.Simplify(v.Combine)
			if on.Equal(v.On) && combine.Equal(v.Combine) {
				return n, transform.SameTree, nil
			}
			return qscript.NewThetaJoin(v.Src, v.Left, v.Right, on, v.Kind, combine),
				transform.NewTree, nil

		default:
			return n, transform.SameTree, nil
		}
	})
	return n, err
}
