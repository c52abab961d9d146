// Package planbuilder lowers logical plans into the normalized IR. Each
// plan node folds bottom-up into a Target; sibling results are unified
// by the merge engine so that subtrees reading the same data compile
// into shared work instead of self-joins.
package planbuilder

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
	"github.com/quarrydb/quarry/sql/plan"
	"github.com/quarrydb/quarry/sql/provenance"
	"github.com/quarrydb/quarry/sql/qscript"
	"github.com/quarrydb/quarry/sql/transform"
)

// PathLister reports the names available under one directory of the
// data source namespace. It is consulted while lowering Read nodes to
// split a path into the collection actually stored and the field
// projections inside its documents.
type PathLister func(dir string) (map[string]struct{}, error)

// Builder lowers logical plans.
type Builder struct {
	lister PathLister
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithPathLister sets the namespace lister used to resolve Read paths.
// Without one, every Read lowers as pure field projection from the
// root.
func WithPathLister(l PathLister) BuilderOption {
	return func(b *Builder) {
		b.lister = l
	}
}

// New creates a Builder.
func New(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Lower compiles a logical plan into IR. The returned tree is
// normalized but not yet optimized.
func (b *Builder) Lower(ctx *sql.Context, n sql.Node) (sql.Node, error) {
	span, _ := ctx.Span("lower")
	defer span.Finish()

	t, err := transform.Fold(n, b.lowerNode)
	if err != nil {
		return nil, err
	}

	out := qscript.MapOn(t.Node, t.Value)
	logrus.WithField("plan", n.String()).Debugf("lowered to:\n%s", out)
	return out, nil
}

func (b *Builder) lowerNode(n sql.Node, children []Target) (Target, error) {
	switch v := n.(type) {
	case *plan.Read:
		return b.lowerRead(v.Path)

	case *plan.Constant:
		return Target{
			Node:  qscript.NewRoot(),
			Value: expression.NewLiteral(v.Value),
			Prov:  provenance.Value(),
		}, nil

	case *plan.Free:
		return Target{}, sql.ErrUnboundVariable.New(v.Name)

	case *plan.Let:
		// Lets are inlined before lowering starts.
		return Target{}, sql.ErrInternal.New("let reached the lowering stage: " + v.Name)

	case *plan.JoinSideRef:
		// Lowering a side reference to the branch hole lets join
		// conditions flow through the same fold as everything else: the
		// hole merges with any sibling and the Side leaf survives in
		// the condition expression.
		return Target{
			Node:  qscript.NewUnreferenced(),
			Value: expression.NewSide(v.Side),
			Prov:  provenance.Empty(),
		}, nil

	case *plan.Invoke:
		switch v.Fn.Class {
		case plan.Mapping:
			return b.lowerMapping(v.Fn, children)
		case plan.Reduction:
			return b.lowerReduction(v.Fn, children[0])
		default:
			return lowerExpansion(v.Fn, children[0])
		}

	case *plan.GroupBy:
		j := b.autojoin(children[0], children[1])
		return Target{
			Node:    j.node,
			Value:   j.leftValue,
			Buckets: append(j.buckets, j.rightValue),
			Prov:    j.prov,
		}, nil

	case *plan.Filter:
		j := b.autojoin(children[0], children[1])
		return Target{
			Node:    qscript.NewFilter(j.node, j.rightValue),
			Value:   j.leftValue,
			Buckets: j.buckets,
			Prov:    children[0].Prov,
		}, nil

	case *plan.Sort:
		return b.lowerSort(v, children[0], children[1])

	case *plan.Take:
		src, count := children[0], children[1]
		m := mergeTrees(src.Node, count.Node)
		return Target{
			Node:    qscript.NewTake(m.common, m.left, qscript.MapOn(m.right, count.Value)),
			Value:   src.Value,
			Buckets: src.Buckets,
			Prov:    src.Prov,
		}, nil

	case *plan.Drop:
		src, count := children[0], children[1]
		m := mergeTrees(src.Node, count.Node)
		return Target{
			Node:    qscript.NewDrop(m.common, m.left, qscript.MapOn(m.right, count.Value)),
			Value:   src.Value,
			Buckets: src.Buckets,
			Prov:    src.Prov,
		}, nil

	case *plan.Union:
		l, r := children[0], children[1]
		m := mergeTrees(l.Node, r.Node)
		return Target{
			Node: qscript.NewUnion(m.common,
				qscript.MapOn(m.left, l.Value),
				qscript.MapOn(m.right, r.Value)),
			Value: expression.NewHole(),
			Prov:  provenance.Either(l.Prov, r.Prov),
		}, nil

	case *plan.Join:
		return lowerJoin(v, children[0], children[1], children[2])

	case *plan.ObjectProject:
		t := children[0]
		return Target{
			Node:    qscript.NewBucketField(t.Node, t.Value, v.Field),
			Value:   expression.NewHole(),
			Buckets: t.Buckets,
			Prov:    t.Prov,
		}, nil

	case *plan.ArrayProject:
		t := children[0]
		return Target{
			Node:    qscript.NewBucketIndex(t.Node, t.Value, v.Index),
			Value:   expression.NewHole(),
			Buckets: t.Buckets,
			Prov:    t.Prov,
		}, nil

	default:
		return Target{}, sql.ErrInternal.New("unknown plan node " + n.String())
	}
}

// lowerRead splits a path into the stored collection and the field
// projections inside its documents. Without a lister the whole path is
// projection from the namespace root.
func (b *Builder) lowerRead(path string) (Target, error) {
	segments := splitPath(path)

	var node sql.Node = qscript.NewRoot()
	rest := segments

	if b.lister != nil {
		prefix, err := b.resolvePrefix(segments)
		if err != nil {
			return Target{}, err
		}
		if prefix > 0 {
			node = qscript.NewRead("/" + strings.Join(segments[:prefix], "/"))
			rest = segments[prefix:]
		}
	}

	value := sql.Expression(expression.NewHole())
	for _, seg := range rest {
		value = expression.NewProjectField(value, seg)
	}

	return Target{
		Node:  node,
		Value: value,
		Prov:  provenance.Relation(path),
	}, nil
}

// resolvePrefix walks the namespace from the root, consuming path
// segments for as long as the lister knows them. The consumed prefix is
// the collection; the remainder is document structure.
func (b *Builder) resolvePrefix(segments []string) (int, error) {
	dir := "/"
	for i, seg := range segments {
		names, err := b.lister(dir)
		if err != nil {
			return 0, err
		}
		if _, ok := names[seg]; !ok {
			return i, nil
		}
		if dir == "/" {
			dir += seg
		} else {
			dir += "/" + seg
		}
	}
	return len(segments), nil
}

func splitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// lowerMapping unifies the argument targets pairwise, tracking how each
// original argument value is recovered from the unified rows, then
// builds the per-row expression.
func (b *Builder) lowerMapping(fn plan.Func, args []Target) (Target, error) {
	if len(args) == 0 {
		return Target{}, sql.ErrInternal.New("mapping " + fn.Name + " with no arguments")
	}

	cur := Target{
		Node:    args[0].Node,
		Value:   expression.NewHole(),
		Buckets: args[0].Buckets,
		Prov:    args[0].Prov,
	}
	recovered := []sql.Expression{args[0].Value}

	for _, next := range args[1:] {
		j := b.autojoin(cur, next)
		for i, v := range recovered {
			recovered[i] = expression.Substitute(v, j.leftValue)
		}
		recovered = append(recovered, j.rightValue)
		cur = Target{
			Node:    j.node,
			Value:   expression.NewHole(),
			Buckets: j.buckets,
			Prov:    j.prov,
		}
	}

	value, err := mapExpr(fn, recovered)
	if err != nil {
		return Target{}, err
	}
	cur.Value = value
	return cur, nil
}

// mapExpr builds the expression form of a mapping function.
func mapExpr(fn plan.Func, args []sql.Expression) (sql.Expression, error) {
	switch fn {
	case plan.FuncAdd:
		return expression.NewPlus(args[0], args[1]), nil
	case plan.FuncSubtract:
		return expression.NewMinus(args[0], args[1]), nil
	case plan.FuncMultiply:
		return expression.NewMult(args[0], args[1]), nil
	case plan.FuncDivide:
		return expression.NewDiv(args[0], args[1]), nil
	case plan.FuncModulo:
		return expression.NewMod(args[0], args[1]), nil
	case plan.FuncEq:
		return expression.NewEquals(args[0], args[1]), nil
	case plan.FuncNeq:
		return expression.NewNotEquals(args[0], args[1]), nil
	case plan.FuncLt:
		return expression.NewLessThan(args[0], args[1]), nil
	case plan.FuncLte:
		return expression.NewLessThanOrEqual(args[0], args[1]), nil
	case plan.FuncGt:
		return expression.NewGreaterThan(args[0], args[1]), nil
	case plan.FuncGte:
		return expression.NewGreaterThanOrEqual(args[0], args[1]), nil
	case plan.FuncNot:
		return expression.NewNot(args[0]), nil
	case plan.FuncConcat:
		return expression.NewConcat(args[0], args[1]), nil
	case plan.FuncLower:
		return expression.NewLower(args[0]), nil
	case plan.FuncUpper:
		return expression.NewUpper(args[0]), nil
	case plan.FuncRange:
		return expression.NewRange(args[0], args[1]), nil
	case plan.FuncMakeMap:
		return expression.NewMakeMap(args[0], args[1]), nil
	case plan.FuncConcatMap:
		return expression.NewConcatMaps(args[0], args[1]), nil
	default:
		return nil, sql.ErrInternal.New("unknown mapping function " + fn.Name)
	}
}

// lowerReduction aggregates the innermost grouping dimension. Without
// any bucket in force the whole input collapses into one group; with
// buckets, the outermost one is stripped and the remaining keys are
// carried through the Reduce by an arbitrary-pick reducer.
func (b *Builder) lowerReduction(fn plan.Func, t Target) (Target, error) {
	op, err := reduceOp(fn)
	if err != nil {
		return Target{}, err
	}

	if len(t.Buckets) == 0 {
		node := qscript.NewReduce(t.Node,
			expression.NewNull(),
			[]qscript.ReduceFunc{qscript.NewReduceFunc(op, t.Value)},
			expression.NewReducerRef(0))
		return Target{
			Node:  node,
			Value: expression.NewHole(),
			Prov:  t.Prov,
		}, nil
	}

	last := len(t.Buckets) - 1
	bucket := t.Buckets[last]
	rest := t.Buckets[:last]

	carried := expression.NewMakeArray(rest...)
	m := expression.Merge(expression.NewReducerRef(0), expression.NewReducerRef(1))
	node := qscript.NewReduce(t.Node, bucket,
		[]qscript.ReduceFunc{
			qscript.NewReduceFunc(qscript.ReduceArbitrary, carried),
			qscript.NewReduceFunc(op, t.Value),
		},
		m.Expr)

	buckets := make([]sql.Expression, len(rest))
	for i := range rest {
		buckets[i] = expression.NewProjectIndex(m.RecoverA, i)
	}

	return Target{
		Node:    node,
		Value:   m.RecoverB,
		Buckets: buckets,
		Prov:    t.Prov,
	}, nil
}

func reduceOp(fn plan.Func) (qscript.ReduceOp, error) {
	switch fn {
	case plan.FuncCount:
		return qscript.ReduceCount, nil
	case plan.FuncSum:
		return qscript.ReduceSum, nil
	case plan.FuncMin:
		return qscript.ReduceMin, nil
	case plan.FuncMax:
		return qscript.ReduceMax, nil
	case plan.FuncAvg:
		return qscript.ReduceAvg, nil
	case plan.FuncFirst:
		return qscript.ReduceFirst, nil
	case plan.FuncArbitrary:
		return qscript.ReduceArbitrary, nil
	default:
		return 0, sql.ErrInternal.New("unknown reduction " + fn.Name)
	}
}

func (b *Builder) lowerSort(s *plan.Sort, src, key Target) (Target, error) {
	j := b.autojoin(src, key)

	bucket := sql.Expression(expression.NewNull())
	if len(j.buckets) > 0 {
		bucket = j.buckets[len(j.buckets)-1]
	}

	node := qscript.NewSort(j.node, bucket, []sql.SortField{
		{Column: j.rightValue, Order: s.Order},
	})
	return Target{
		Node:    node,
		Value:   j.leftValue,
		Buckets: j.buckets,
		Prov:    src.Prov,
	}, nil
}

// lowerJoin handles the explicit join form. The condition subtree must
// lower to a pure two-input expression over JoinSideRef leaves; any
// condition that touches a relation of its own cannot be expressed.
func lowerJoin(j *plan.Join, l, r, cond Target) (Target, error) {
	switch cond.Node.(type) {
	case *qscript.Unreferenced, *qscript.Root:
	default:
		return Target{}, sql.ErrUnsupportedJoinCondition.New(cond.Node)
	}

	m := mergeTrees(l.Node, r.Node)
	c := expression.Merge(expression.NewLeftSide(), expression.NewRightSide())
	node := qscript.NewThetaJoin(m.common,
		qscript.MapOn(m.left, l.Value),
		qscript.MapOn(m.right, r.Value),
		cond.Value, j.Kind, c.Expr)

	return Target{
		Node:    node,
		Value:   expression.NewHole(),
		Buckets: substituteAll(l.Buckets, c.RecoverA),
		Prov:    provenance.Both(l.Prov, r.Prov),
	}, nil
}
