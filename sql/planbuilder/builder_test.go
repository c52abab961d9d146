package planbuilder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
	"github.com/quarrydb/quarry/sql/plan"
	"github.com/quarrydb/quarry/sql/qscript"
)

func TestLowerConstant(t *testing.T) {
	require := require.New(t)

	got, err := New().Lower(sql.NewEmptyContext(), plan.NewConstant(true))
	require.NoError(err)

	want := qscript.NewMap(qscript.NewRoot(), expression.NewLiteral(true))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerRead(t *testing.T) {
	require := require.New(t)

	got, err := New().Lower(sql.NewEmptyContext(), plan.NewRead("/foo"))
	require.NoError(err)

	want := qscript.NewMap(qscript.NewRoot(), field("foo"))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerDeepRead(t *testing.T) {
	require := require.New(t)

	got, err := New().Lower(sql.NewEmptyContext(), plan.NewRead("/some/foo/bar"))
	require.NoError(err)

	want := qscript.NewMap(qscript.NewRoot(),
		expression.NewProjectField(
			expression.NewProjectField(field("some"), "foo"), "bar"))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerSharedSource(t *testing.T) {
	require := require.New(t)

	// Two reads under the same root compile into one pass, not a join.
	p := plan.NewInvoke(plan.FuncAdd, plan.NewRead("/foo"), plan.NewRead("/bar"))
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	want := qscript.NewMap(qscript.NewRoot(),
		expression.NewPlus(field("foo"), field("bar")))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerFilter(t *testing.T) {
	require := require.New(t)

	p := plan.NewFilter(
		plan.NewRead("/a"),
		plan.NewInvoke(plan.FuncGt, plan.NewRead("/a/x"), plan.NewConstant(3)))
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	cond := expression.NewGreaterThan(
		expression.NewProjectField(field("a"), "x"),
		expression.NewLiteral(3))
	want := qscript.NewMap(
		qscript.NewFilter(qscript.NewRoot(), cond),
		field("a"))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerGroupedSum(t *testing.T) {
	require := require.New(t)

	p := plan.NewInvoke(plan.FuncSum,
		plan.NewGroupBy(plan.NewRead("/a"), plan.NewRead("/a/k")))
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	bucket := expression.NewProjectField(field("a"), "k")
	want := qscript.NewMap(
		qscript.NewReduce(qscript.NewRoot(), bucket,
			[]qscript.ReduceFunc{
				{Op: qscript.ReduceArbitrary, Arg: expression.NewMakeArray()},
				{Op: qscript.ReduceSum, Arg: field("a")},
			},
			expression.NewMakeArray(
				expression.NewReducerRef(0),
				expression.NewReducerRef(1))),
		expression.NewProjectIndex(expression.NewHole(), 1))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerUngroupedSum(t *testing.T) {
	require := require.New(t)

	p := plan.NewInvoke(plan.FuncSum, plan.NewRead("/a"))
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	// No bucket in force: the whole input is one group.
	want := qscript.NewReduce(qscript.NewRoot(), expression.NewNull(),
		[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("a")}},
		expression.NewReducerRef(0))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerFlattenArray(t *testing.T) {
	require := require.New(t)

	p := plan.NewInvoke(plan.FuncFlattenArray, plan.NewRead("/a"))
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	want := qscript.NewMap(
		qscript.NewLeftShift(qscript.NewRoot(), field("a"),
			expression.NewMakeArray(expression.NewLeftSide(), expression.NewRightSide())),
		expression.NewProjectIndex(expression.NewHole(), 1))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerShiftMap(t *testing.T) {
	require := require.New(t)

	p := plan.NewInvoke(plan.FuncShiftMap, plan.NewRead("/a"))
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	// Keys are duplicated into the shifted elements so the new grouping
	// dimension can be keyed by them; the value is the element's value
	// half.
	elem := expression.NewProjectIndex(expression.NewHole(), 1)
	want := qscript.NewMap(
		qscript.NewLeftShift(qscript.NewRoot(),
			expression.NewDupMapKeys(field("a")),
			expression.NewMakeArray(expression.NewLeftSide(), expression.NewRightSide())),
		expression.NewProjectIndex(elem, 1))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerTake(t *testing.T) {
	require := require.New(t)

	p := plan.NewTake(plan.NewRead("/a"), plan.NewConstant(10))
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	take, ok := got.(*qscript.Map)
	require.True(ok, "got %s", got)
	inner, ok := take.Src.(*qscript.Take)
	require.True(ok, "got %s", got)
	require.True(inner.Src.Equal(qscript.NewRoot()))
	require.True(inner.From.Equal(qscript.NewUnreferenced()))
	require.True(inner.Count.Equal(
		qscript.NewMap(qscript.NewUnreferenced(), expression.NewLiteral(10))))
	require.True(take.FN.Equal(field("a")))
}

func TestLowerUnion(t *testing.T) {
	require := require.New(t)

	p := plan.NewUnion(plan.NewRead("/a"), plan.NewRead("/b"))
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	want := qscript.NewUnion(qscript.NewRoot(),
		qscript.NewMap(qscript.NewUnreferenced(), field("a")),
		qscript.NewMap(qscript.NewUnreferenced(), field("b")))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerJoin(t *testing.T) {
	require := require.New(t)

	on := plan.NewInvoke(plan.FuncEq,
		plan.NewJoinSideRef(sql.LeftSide),
		plan.NewJoinSideRef(sql.RightSide))
	p := plan.NewJoin(plan.NewRead("/a"), plan.NewRead("/b"), on, sql.JoinInner)

	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	want := qscript.NewThetaJoin(qscript.NewRoot(),
		qscript.NewMap(qscript.NewUnreferenced(), field("a")),
		qscript.NewMap(qscript.NewUnreferenced(), field("b")),
		expression.NewEquals(expression.NewLeftSide(), expression.NewRightSide()),
		sql.JoinInner,
		expression.NewMakeArray(expression.NewLeftSide(), expression.NewRightSide()))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerJoinConditionWithReduction(t *testing.T) {
	require := require.New(t)

	// A condition that aggregates cannot be expressed as a two-input
	// per-row expression.
	on := plan.NewInvoke(plan.FuncSum, plan.NewJoinSideRef(sql.LeftSide))
	p := plan.NewJoin(plan.NewRead("/a"), plan.NewRead("/b"), on, sql.JoinInner)

	_, err := New().Lower(sql.NewEmptyContext(), p)
	require.Error(err)
	require.True(sql.ErrUnsupportedJoinCondition.Is(err))
}

func TestLowerSort(t *testing.T) {
	require := require.New(t)

	p := plan.NewSort(plan.NewRead("/a"), plan.NewRead("/a/k"), sql.Ascending)
	got, err := New().Lower(sql.NewEmptyContext(), p)
	require.NoError(err)

	key := expression.NewProjectField(field("a"), "k")
	want := qscript.NewMap(
		qscript.NewSort(qscript.NewRoot(), expression.NewNull(),
			[]sql.SortField{{Column: key, Order: sql.Ascending}}),
		field("a"))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerFreeVariable(t *testing.T) {
	require := require.New(t)

	_, err := New().Lower(sql.NewEmptyContext(), plan.NewFree("x"))
	require.Error(err)
	require.True(sql.ErrUnboundVariable.Is(err))
}

func TestLowerWithPathLister(t *testing.T) {
	require := require.New(t)

	namespace := map[string]map[string]struct{}{
		"/":   {"db": {}},
		"/db": {"users": {}},
	}
	lister := func(dir string) (map[string]struct{}, error) {
		return namespace[dir], nil
	}

	got, err := New(WithPathLister(lister)).Lower(
		sql.NewEmptyContext(), plan.NewRead("/db/users/name"))
	require.NoError(err)

	// The listed prefix is the stored collection; the rest projects
	// into its documents.
	want := qscript.NewMap(qscript.NewRead("/db/users"), field("name"))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestLowerPathListerError(t *testing.T) {
	require := require.New(t)

	lister := func(dir string) (map[string]struct{}, error) {
		return nil, fmt.Errorf("store unreachable")
	}

	_, err := New(WithPathLister(lister)).Lower(
		sql.NewEmptyContext(), plan.NewRead("/db/users"))
	require.Error(err)
	require.Contains(err.Error(), "store unreachable")
}
