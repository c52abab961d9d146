package planbuilder

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
	"github.com/quarrydb/quarry/sql/provenance"
	"github.com/quarrydb/quarry/sql/qscript"
)

func field(name string) sql.Expression {
	return expression.NewProjectField(expression.NewHole(), name)
}

func TestLinearize(t *testing.T) {
	require := require.New(t)

	inner := qscript.NewMap(qscript.NewRead("/a"), field("x"))
	tree := qscript.NewFilter(inner, expression.NewLiteral(true))

	leaf, spine := linearize(tree)
	require.True(leaf.Equal(qscript.NewRead("/a")))
	require.Len(spine, 2)
	// Source-first order.
	require.IsType(&qscript.Map{}, spine[0])
	require.IsType(&qscript.Filter{}, spine[1])
}

func TestMergeTreesIdentical(t *testing.T) {
	require := require.New(t)

	tree := qscript.NewFilter(
		qscript.NewMap(qscript.NewRoot(), field("x")),
		expression.NewLiteral(true),
	)

	m := mergeTrees(tree, tree)
	require.True(m.common.Equal(tree))
	require.True(m.left.Equal(qscript.NewUnreferenced()))
	require.True(m.right.Equal(qscript.NewUnreferenced()))
}

func TestMergeTreesMapsAbsorb(t *testing.T) {
	require := require.New(t)

	l := qscript.NewMap(qscript.NewRoot(), field("x"))
	r := qscript.NewMap(qscript.NewRoot(), field("y"))

	m := mergeTrees(l, r)
	require.True(m.common.Equal(qscript.NewRoot()))
	require.True(m.left.Equal(qscript.NewMap(qscript.NewUnreferenced(), field("x"))))
	require.True(m.right.Equal(qscript.NewMap(qscript.NewUnreferenced(), field("y"))))
}

func TestMergeTreesUnreferencedLeaf(t *testing.T) {
	require := require.New(t)

	l := qscript.NewUnreferenced()
	r := qscript.NewMap(qscript.NewRoot(), field("x"))

	m := mergeTrees(l, r)
	require.True(m.common.Equal(qscript.NewRoot()))
	require.True(m.left.Equal(qscript.NewUnreferenced()))
	require.True(m.right.Equal(qscript.NewMap(qscript.NewUnreferenced(), field("x"))))
}

func TestMergeTreesSharedReduce(t *testing.T) {
	require := require.New(t)

	bucket := field("k")
	l := qscript.NewReduce(qscript.NewRoot(), bucket,
		[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("v")}},
		expression.NewReducerRef(0))
	r := qscript.NewReduce(qscript.NewRoot(), bucket,
		[]qscript.ReduceFunc{{Op: qscript.ReduceCount, Arg: field("v")}},
		expression.NewReducerRef(0))

	m := mergeTrees(l, r)

	// Same grouping, different aggregates: one Reduce computing both,
	// with each side recovering its result by index.
	want := qscript.NewReduce(qscript.NewRoot(), bucket,
		[]qscript.ReduceFunc{
			{Op: qscript.ReduceSum, Arg: field("v")},
			{Op: qscript.ReduceCount, Arg: field("v")},
		},
		expression.NewMakeArray(
			expression.NewReducerRef(0),
			expression.NewReducerRef(1)))
	require.True(m.common.Equal(want), "got %s, want %s", m.common, want)

	require.True(m.left.Equal(qscript.NewMap(qscript.NewUnreferenced(),
		expression.NewProjectIndex(expression.NewHole(), 0))))
	require.True(m.right.Equal(qscript.NewMap(qscript.NewUnreferenced(),
		expression.NewProjectIndex(expression.NewHole(), 1))))
}

func TestMergeTreesReduceBucketMismatch(t *testing.T) {
	require := require.New(t)

	l := qscript.NewReduce(qscript.NewRoot(), field("k1"),
		[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("v")}},
		expression.NewReducerRef(0))
	r := qscript.NewReduce(qscript.NewRoot(), field("k2"),
		[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("v")}},
		expression.NewReducerRef(0))

	m := mergeTrees(l, r)

	// Different grouping keys cannot share the Reduce: each side keeps
	// its own as a private tail.
	require.True(m.common.Equal(qscript.NewRoot()))
	require.True(m.left.Equal(l.WithSource(qscript.NewUnreferenced())))
	require.True(m.right.Equal(r.WithSource(qscript.NewUnreferenced())))
}

func TestMergeTreesFilterThroughMaps(t *testing.T) {
	require := require.New(t)

	// Both sides filter the same underlying predicate, expressed over
	// differently mapped rows. Once the maps are absorbed into the
	// pending values the substituted conditions coincide, so the filter
	// merges and the maps survive as tails.
	ax := expression.NewProjectField(field("a"), "x")
	l := qscript.NewFilter(
		qscript.NewMap(qscript.NewRoot(), field("a")),
		expression.NewGreaterThan(field("x"), expression.NewLiteral(1)))
	r := qscript.NewFilter(
		qscript.NewMap(qscript.NewRoot(), ax),
		expression.NewGreaterThan(expression.NewHole(), expression.NewLiteral(1)))

	m := mergeTrees(l, r)

	want := qscript.NewFilter(qscript.NewRoot(),
		expression.NewGreaterThan(ax, expression.NewLiteral(1)))
	require.True(m.common.Equal(want), "got %s, want %s", m.common, want)
	require.True(m.left.Equal(qscript.NewMap(qscript.NewUnreferenced(), field("a"))))
	require.True(m.right.Equal(qscript.NewMap(qscript.NewUnreferenced(), ax)))
}

func TestMergeTreesNoCommonLeaf(t *testing.T) {
	require := require.New(t)

	l := qscript.NewMap(qscript.NewRead("/a"), field("x"))
	r := qscript.NewMap(qscript.NewRead("/b"), field("y"))

	m := mergeTrees(l, r)
	require.True(m.common.Equal(qscript.NewRoot()))
	require.True(m.left.Equal(l))
	require.True(m.right.Equal(r))
}

func TestAutojoinExpressible(t *testing.T) {
	require := require.New(t)

	b := New()
	l := Target{Node: qscript.NewRoot(), Value: field("x"), Prov: provenance.Relation("/x")}
	r := Target{Node: qscript.NewRoot(), Value: field("y"), Prov: provenance.Relation("/y")}

	j := b.autojoin(l, r)
	require.True(j.node.Equal(qscript.NewRoot()))
	require.True(j.leftValue.Equal(field("x")))
	require.True(j.rightValue.Equal(field("y")))
	require.True(j.prov.Equal(provenance.Both(l.Prov, r.Prov)))
}

func TestAutojoinSameProvenance(t *testing.T) {
	require := require.New(t)

	b := New()
	p := provenance.Relation("/a")
	l := Target{Node: qscript.NewRoot(), Value: field("x"), Prov: p}
	r := Target{Node: qscript.NewRoot(), Value: field("y"), Prov: p}

	j := b.autojoin(l, r)
	require.True(j.prov.Equal(p))
}

func TestAutojoinMaterializesJoin(t *testing.T) {
	require := require.New(t)

	b := New()
	reduced := qscript.NewReduce(qscript.NewRoot(), field("k"),
		[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("v")}},
		expression.NewReducerRef(0))

	l := Target{Node: reduced, Value: expression.NewHole(), Prov: provenance.Relation("/a")}
	r := Target{Node: qscript.NewRoot(), Value: field("x"), Prov: provenance.Relation("/a")}

	j := b.autojoin(l, r)

	join, ok := j.node.(*qscript.ThetaJoin)
	require.True(ok, "expected a materialized join, got %s", j.node)
	require.True(join.Src.Equal(qscript.NewRoot()))
	require.True(join.Left.Equal(reduced.WithSource(qscript.NewUnreferenced())))
	require.True(join.Right.Equal(qscript.NewMap(qscript.NewUnreferenced(), field("x"))))
	require.Equal(sql.JoinInner, join.Kind)

	// No shared buckets: the condition degenerates to a cross product.
	require.True(join.On.Equal(expression.NewLiteral(true)))

	require.True(j.leftValue.Equal(expression.NewProjectIndex(expression.NewHole(), 0)))
	require.True(j.rightValue.Equal(expression.NewProjectIndex(expression.NewHole(), 1)))
}

func TestAutojoinLogsSharedRelations(t *testing.T) {
	require := require.New(t)

	hook := test.NewGlobal()
	defer hook.Reset()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(level)

	b := New()
	reduced := qscript.NewReduce(qscript.NewRoot(), field("k"),
		[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("v")}},
		expression.NewReducerRef(0))

	l := Target{
		Node:  reduced,
		Value: expression.NewHole(),
		Prov:  provenance.Both(provenance.Relation("/a"), provenance.Relation("/b")),
	}
	r := Target{Node: qscript.NewRoot(), Value: field("x"), Prov: provenance.Relation("/a")}

	b.autojoin(l, r)

	var entry *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "materializing implicit join" {
			entry = e
		}
	}
	require.NotNil(entry, "expected the implicit join to be logged")
	require.Equal([]string{"/a"}, entry.Data["shared"])
}

func TestJoinConditionFromBuckets(t *testing.T) {
	require := require.New(t)

	l := Target{Buckets: []sql.Expression{field("k")}}
	r := Target{Buckets: []sql.Expression{field("k")}}

	on := joinCondition(l, r)
	want := expression.NewEquals(
		expression.NewProjectField(expression.NewLeftSide(), "k"),
		expression.NewProjectField(expression.NewRightSide(), "k"),
	)
	require.True(on.Equal(want), "got %s, want %s", on, want)
}
