package planbuilder

import (
	"github.com/sirupsen/logrus"

	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
	"github.com/quarrydb/quarry/sql/provenance"
	"github.com/quarrydb/quarry/sql/qscript"
)

// The merge engine. Two independently lowered trees that descend from
// the same logical subtree share a prefix of their work; rather than
// joining them outright, the engine walks both source spines in
// lock-step from the source end and merges node pairs for as long as
// each pair's mergeability rule holds. Everything merged becomes the
// shared tree; everything beyond becomes a private tail branch per
// side. This is what keeps `a.x + a.y` from compiling into a self-join.

// mergeResult is the outcome of merging two trees: the shared tree and
// one branch per side (rooted at Unreferenced, standing for the shared
// tree) that reproduces that side's rows.
type mergeResult struct {
	common sql.Node
	left   sql.Node
	right  sql.Node
}

// linearize walks the source spine of a tree, returning its base leaf
// and the spine nodes in source-first order.
func linearize(n sql.Node) (sql.Node, []qscript.Sourced) {
	var spine []qscript.Sourced
	for {
		s, ok := n.(qscript.Sourced)
		if !ok {
			break
		}
		spine = append(spine, s)
		n = s.Source()
	}
	for i, j := 0, len(spine)-1; i < j; i, j = i+1, j-1 {
		spine[i], spine[j] = spine[j], spine[i]
	}
	return n, spine
}

// mergeLeaves unifies the base leaves of two spines. Unreferenced is a
// hole and unifies with anything.
func mergeLeaves(a, b sql.Node) (sql.Node, bool) {
	if a.Equal(b) {
		return a, true
	}
	if _, ok := a.(*qscript.Unreferenced); ok {
		return b, true
	}
	if _, ok := b.(*qscript.Unreferenced); ok {
		return a, true
	}
	return nil, false
}

func mergeTrees(l, r sql.Node) mergeResult {
	if l.Equal(r) {
		return mergeResult{common: l, left: qscript.HoleBranch(), right: qscript.HoleBranch()}
	}

	lleaf, lspine := linearize(l)
	rleaf, rspine := linearize(r)

	common, ok := mergeLeaves(lleaf, rleaf)
	if !ok {
		// No shared node at all. Transform never hands the engine two
		// unrelated trees, so this path is defensive: the sides become
		// opaque branches of an assumed common ancestor.
		return mergeResult{common: qscript.NewRoot(), left: l, right: r}
	}

	lv := sql.Expression(expression.NewHole())
	rv := sql.Expression(expression.NewHole())

	i := 0
	for i < len(lspine) && i < len(rspine) {
		next, nlv, nrv, ok := mergeStep(common, lspine[i], rspine[i], lv, rv)
		if !ok {
			break
		}
		common, lv, rv = next, nlv, nrv
		i++
	}

	return mergeResult{
		common: common,
		left:   rebuildTail(lspine[i:], lv),
		right:  rebuildTail(rspine[i:], rv),
	}
}

// rebuildTail re-roots the unmerged nodes of one side at the implicit
// hole standing for the just-computed shared tree, with the side's
// pending value expression applied first.
func rebuildTail(spine []qscript.Sourced, pending sql.Expression) sql.Node {
	branch := qscript.ExprBranch(pending)
	for _, n := range spine {
		branch = n.WithSource(branch)
	}
	return branch
}

// mergeStep merges one pair of spine nodes over the shared tree built
// so far, given each side's pending value expression. It returns the
// extended shared tree and the new pending values, or ok=false if the
// pair's mergeability rule fails, which ends the common prefix.
func mergeStep(src sql.Node, ln, rn qscript.Sourced, lv, rv sql.Expression) (sql.Node, sql.Expression, sql.Expression, bool) {
	switch l := ln.(type) {
	case *qscript.Map:
		// Two maps over the same source always merge: both expressions
		// are carried forward symbolically.
		r, ok := rn.(*qscript.Map)
		if !ok {
			return nil, nil, nil, false
		}
		return src, expression.Substitute(l.FN, lv), expression.Substitute(r.FN, rv), true

	case *qscript.Reduce:
		r, ok := rn.(*qscript.Reduce)
		if !ok {
			return nil, nil, nil, false
		}
		lb := expression.Substitute(l.Bucket, lv)
		rb := expression.Substitute(r.Bucket, rv)
		if !lb.Equal(rb) {
			return nil, nil, nil, false
		}
		lred := substituteReducerArgs(l.Reducers, lv)
		rred := substituteReducerArgs(r.Reducers, rv)
		if qscript.ReduceFuncsEqual(lred, rred) && l.Repair.Equal(r.Repair) {
			return qscript.NewReduce(src, lb, lred, l.Repair),
				expression.NewHole(), expression.NewHole(), true
		}
		// Same grouping, different aggregates: concatenate the reducer
		// lists, renumber the right repair's references and merge the
		// repairs.
		combined := make([]qscript.ReduceFunc, 0, len(lred)+len(rred))
		combined = append(combined, lred...)
		combined = append(combined, rred...)
		shift := make(map[int]sql.Expression, len(rred))
		for idx := range rred {
			shift[idx] = expression.NewReducerRef(idx + len(lred))
		}
		m := expression.Merge(l.Repair, expression.SubstituteReducers(r.Repair, shift))
		return qscript.NewReduce(src, lb, combined, m.Expr),
			m.RecoverA, m.RecoverB, true

	case *qscript.Filter:
		r, ok := rn.(*qscript.Filter)
		if !ok {
			return nil, nil, nil, false
		}
		lf := expression.Substitute(l.FN, lv)
		rf := expression.Substitute(r.FN, rv)
		if !lf.Equal(rf) {
			return nil, nil, nil, false
		}
		// Filtering passes rows through, so the pending values survive.
		return qscript.NewFilter(src, lf), lv, rv, true

	case *qscript.Sort:
		r, ok := rn.(*qscript.Sort)
		if !ok || len(l.OrderBy) != len(r.OrderBy) {
			return nil, nil, nil, false
		}
		lb := expression.Substitute(l.Bucket, lv)
		rb := expression.Substitute(r.Bucket, rv)
		if !lb.Equal(rb) {
			return nil, nil, nil, false
		}
		orderBy := make([]sql.SortField, len(l.OrderBy))
		for i := range l.OrderBy {
			if l.OrderBy[i].Order != r.OrderBy[i].Order {
				return nil, nil, nil, false
			}
			lk := expression.Substitute(l.OrderBy[i].Column, lv)
			rk := expression.Substitute(r.OrderBy[i].Column, rv)
			if !lk.Equal(rk) {
				return nil, nil, nil, false
			}
			orderBy[i] = sql.SortField{Column: lk, Order: l.OrderBy[i].Order}
		}
		return qscript.NewSort(src, lb, orderBy), lv, rv, true

	case *qscript.LeftShift:
		r, ok := rn.(*qscript.LeftShift)
		if !ok {
			return nil, nil, nil, false
		}
		lstruct := expression.Substitute(l.Struct, lv)
		rstruct := expression.Substitute(r.Struct, rv)
		lrep := substituteShiftLeft(l.Repair, lv)
		rrep := substituteShiftLeft(r.Repair, rv)
		if !lstruct.Equal(rstruct) || !lrep.Equal(rrep) {
			return nil, nil, nil, false
		}
		return qscript.NewLeftShift(src, lstruct, lrep),
			expression.NewHole(), expression.NewHole(), true

	case *qscript.BucketField:
		r, ok := rn.(*qscript.BucketField)
		if !ok || l.Field != r.Field {
			return nil, nil, nil, false
		}
		lval := expression.Substitute(l.Value, lv)
		rval := expression.Substitute(r.Value, rv)
		if !lval.Equal(rval) {
			return nil, nil, nil, false
		}
		return qscript.NewBucketField(src, lval, l.Field),
			expression.NewHole(), expression.NewHole(), true

	case *qscript.BucketIndex:
		r, ok := rn.(*qscript.BucketIndex)
		if !ok || l.Index != r.Index {
			return nil, nil, nil, false
		}
		lval := expression.Substitute(l.Value, lv)
		rval := expression.Substitute(r.Value, rv)
		if !lval.Equal(rval) {
			return nil, nil, nil, false
		}
		return qscript.NewBucketIndex(src, lval, l.Index),
			expression.NewHole(), expression.NewHole(), true

	case *qscript.Take:
		r, ok := rn.(*qscript.Take)
		if !ok || !lv.Equal(rv) || !l.From.Equal(r.From) || !l.Count.Equal(r.Count) {
			return nil, nil, nil, false
		}
		from := graftPending(l.From, lv)
		count := graftPending(l.Count, lv)
		return qscript.NewTake(src, from, count),
			expression.NewHole(), expression.NewHole(), true

	case *qscript.Drop:
		r, ok := rn.(*qscript.Drop)
		if !ok || !lv.Equal(rv) || !l.From.Equal(r.From) || !l.Count.Equal(r.Count) {
			return nil, nil, nil, false
		}
		from := graftPending(l.From, lv)
		count := graftPending(l.Count, lv)
		return qscript.NewDrop(src, from, count),
			expression.NewHole(), expression.NewHole(), true

	case *qscript.Union:
		r, ok := rn.(*qscript.Union)
		if !ok || !lv.Equal(rv) || !l.Left.Equal(r.Left) || !l.Right.Equal(r.Right) {
			return nil, nil, nil, false
		}
		return qscript.NewUnion(src, graftPending(l.Left, lv), graftPending(l.Right, lv)),
			expression.NewHole(), expression.NewHole(), true

	case *qscript.ThetaJoin:
		r, ok := rn.(*qscript.ThetaJoin)
		if !ok || !lv.Equal(rv) || l.Kind != r.Kind ||
			!l.On.Equal(r.On) || !l.Combine.Equal(r.Combine) ||
			!l.Left.Equal(r.Left) || !l.Right.Equal(r.Right) {
			return nil, nil, nil, false
		}
		return qscript.NewThetaJoin(src,
				graftPending(l.Left, lv), graftPending(l.Right, lv),
				l.On, l.Kind, l.Combine),
			expression.NewHole(), expression.NewHole(), true

	default:
		return nil, nil, nil, false
	}
}

// graftPending rebases a branch onto a source whose rows carry a
// pending value expression.
func graftPending(branch sql.Node, pending sql.Expression) sql.Node {
	if expression.IsIdentity(pending) {
		return branch
	}
	return qscript.GraftBranch(branch, qscript.ExprBranch(pending))
}

func substituteReducerArgs(reducers []qscript.ReduceFunc, v sql.Expression) []qscript.ReduceFunc {
	if expression.IsIdentity(v) {
		return reducers
	}
	out := make([]qscript.ReduceFunc, len(reducers))
	for i, r := range reducers {
		out[i] = qscript.NewReduceFunc(r.Op, expression.Substitute(r.Arg, v))
	}
	return out
}

// substituteShiftLeft rebases the left (original row) side of a shift
// repair onto a pending value expression.
func substituteShiftLeft(repair, v sql.Expression) sql.Expression {
	if expression.IsIdentity(v) {
		return repair
	}
	left := expression.Substitute(v, expression.NewLeftSide())
	return expression.SubstituteSides(repair, left, expression.NewRightSide())
}

// joined is the result of unifying two targets at the value level: one
// node both values can be computed from, plus the recovery expression
// for each side.
type joined struct {
	node       sql.Node
	leftValue  sql.Expression
	rightValue sql.Expression
	buckets    []sql.Expression
	prov       *provenance.Provenance
}

// autojoin unifies two lowered targets. If the merged tails are both
// expressible as plain per-row expressions no join is needed; otherwise
// the structural remainder becomes a ThetaJoin whose condition is
// derived from the grouping buckets shared by the two sides.
func (b *Builder) autojoin(l, r Target) joined {
	m := mergeTrees(l.Node, r.Node)

	if le, ok := qscript.BranchExpr(m.left); ok {
		if re, ok := qscript.BranchExpr(m.right); ok {
			prov := l.Prov
			if !l.Prov.Equal(r.Prov) {
				prov = provenance.Both(l.Prov, r.Prov)
			}
			return joined{
				node:       m.common,
				leftValue:  expression.Substitute(l.Value, le),
				rightValue: expression.Substitute(r.Value, re),
				buckets:    substituteAll(l.Buckets, le),
				prov:       prov,
			}
		}
	}

	on := joinCondition(l, r)
	logrus.WithFields(logrus.Fields{
		"left":   l.Prov,
		"right":  r.Prov,
		"shared": provenance.JoinKeys(l.Prov, r.Prov),
	}).Debug("materializing implicit join")

	c := expression.Merge(expression.NewLeftSide(), expression.NewRightSide())
	node := qscript.NewThetaJoin(m.common,
		qscript.MapOn(m.left, l.Value),
		qscript.MapOn(m.right, r.Value),
		on, sql.JoinInner, c.Expr)

	return joined{
		node:       node,
		leftValue:  c.RecoverA,
		rightValue: c.RecoverB,
		buckets:    substituteAll(l.Buckets, c.RecoverA),
		prov:       provenance.Both(l.Prov, r.Prov),
	}
}

// joinCondition derives the equality condition of an implicit join from
// the grouping buckets the two sides share. The derivation is
// structural: when a reduction occurs on one branch the generated
// equality can fail to line up with the surface query. That imprecision
// is long-standing, documented behavior.
func joinCondition(l, r Target) sql.Expression {
	n := len(l.Buckets)
	if len(r.Buckets) < n {
		n = len(r.Buckets)
	}
	var eqs []sql.Expression
	for i := 0; i < n; i++ {
		eqs = append(eqs, expression.NewEquals(
			expression.Substitute(l.Buckets[i], expression.NewLeftSide()),
			expression.Substitute(r.Buckets[i], expression.NewRightSide()),
		))
	}
	return expression.JoinAnd(eqs...)
}

func substituteAll(exprs []sql.Expression, v sql.Expression) []sql.Expression {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]sql.Expression, len(exprs))
	for i, e := range exprs {
		out[i] = expression.Substitute(e, v)
	}
	return out
}
