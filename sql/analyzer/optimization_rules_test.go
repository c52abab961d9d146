package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
	"github.com/quarrydb/quarry/sql/qscript"
)

func field(name string) sql.Expression {
	return expression.NewProjectField(expression.NewHole(), name)
}

func TestElideNopMap(t *testing.T) {
	require := require.New(t)

	n := qscript.NewMap(qscript.NewRead("/a"), expression.NewHole())
	got, err := elideNopMap(sql.NewEmptyContext(), nil, n)
	require.NoError(err)
	require.True(got.Equal(qscript.NewRead("/a")))

	// Non-identity maps stay.
	n = qscript.NewMap(qscript.NewRead("/a"), field("x"))
	got, err = elideNopMap(sql.NewEmptyContext(), nil, n)
	require.NoError(err)
	require.True(got.Equal(n))
}

func TestCoalesceMaps(t *testing.T) {
	require := require.New(t)

	n := qscript.NewMap(
		qscript.NewMap(qscript.NewRoot(), field("a")),
		field("b"))
	got, err := coalesceMaps(sql.NewEmptyContext(), nil, n)
	require.NoError(err)

	want := qscript.NewMap(qscript.NewRoot(),
		expression.NewProjectField(field("a"), "b"))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestCoalesceMapReduce(t *testing.T) {
	require := require.New(t)

	n := qscript.NewMap(
		qscript.NewReduce(qscript.NewRoot(), field("k"),
			[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("v")}},
			expression.NewMakeArray(expression.NewReducerRef(0))),
		expression.NewProjectIndex(expression.NewHole(), 0))
	got, err := coalesceMapReduce(sql.NewEmptyContext(), nil, n)
	require.NoError(err)

	want := qscript.NewReduce(qscript.NewRoot(), field("k"),
		[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("v")}},
		expression.NewProjectIndex(
			expression.NewMakeArray(expression.NewReducerRef(0)), 0))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestPushMapDown(t *testing.T) {
	require := require.New(t)

	take := qscript.NewTake(qscript.NewRoot(),
		qscript.NewUnreferenced(),
		qscript.NewMap(qscript.NewUnreferenced(), expression.NewLiteral(10)))
	n := qscript.NewMap(take, field("x"))

	got, err := pushMapDown(sql.NewEmptyContext(), nil, n)
	require.NoError(err)

	want := qscript.NewTake(qscript.NewRoot(),
		qscript.NewMap(qscript.NewUnreferenced(), field("x")),
		qscript.NewMap(qscript.NewUnreferenced(), expression.NewLiteral(10)))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestCompactReduction(t *testing.T) {
	require := require.New(t)

	n := qscript.NewReduce(qscript.NewRoot(), field("k"),
		[]qscript.ReduceFunc{
			{Op: qscript.ReduceArbitrary, Arg: expression.NewMakeArray()},
			{Op: qscript.ReduceSum, Arg: field("v")},
		},
		expression.NewReducerRef(1))
	got, err := compactReduction(sql.NewEmptyContext(), nil, n)
	require.NoError(err)

	want := qscript.NewReduce(qscript.NewRoot(), field("k"),
		[]qscript.ReduceFunc{{Op: qscript.ReduceSum, Arg: field("v")}},
		expression.NewReducerRef(0))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestCompactLeftShift(t *testing.T) {
	require := require.New(t)

	// Repair only touches the value half of the duplicated pairs: the
	// duplication is unnecessary.
	elemValue := expression.NewProjectIndex(expression.NewRightSide(), 1)
	n := qscript.NewLeftShift(qscript.NewRoot(),
		expression.NewDupMapKeys(field("a")),
		expression.NewMakeArray(expression.NewLeftSide(), elemValue))
	got, err := compactLeftShift(sql.NewEmptyContext(), nil, n)
	require.NoError(err)

	want := qscript.NewLeftShift(qscript.NewRoot(), field("a"),
		expression.NewMakeArray(expression.NewLeftSide(), expression.NewRightSide()))
	require.True(got.Equal(want), "got %s, want %s", got, want)

	// A repair that reads the key half keeps the duplication.
	elemKey := expression.NewProjectIndex(expression.NewRightSide(), 0)
	n = qscript.NewLeftShift(qscript.NewRoot(),
		expression.NewDupMapKeys(field("a")),
		expression.NewMakeArray(elemKey, elemValue))
	got, err = compactLeftShift(sql.NewEmptyContext(), nil, n)
	require.NoError(err)
	require.True(got.Equal(n))
}

func TestElideNopJoin(t *testing.T) {
	require := require.New(t)

	combine := expression.NewMakeArray(
		expression.NewProjectField(expression.NewLeftSide(), "x"),
		expression.NewProjectField(expression.NewRightSide(), "y"))
	n := qscript.NewThetaJoin(qscript.NewRead("/a"),
		qscript.NewUnreferenced(), qscript.NewUnreferenced(),
		expression.NewEquals(expression.NewLeftSide(), expression.NewRightSide()),
		sql.JoinInner, combine)

	got, err := elideNopJoin(sql.NewEmptyContext(), nil, n)
	require.NoError(err)

	want := qscript.NewMap(qscript.NewRead("/a"),
		expression.NewMakeArray(field("x"), field("y")))
	require.True(got.Equal(want), "got %s, want %s", got, want)

	// A join with a real branch is untouched.
	n = qscript.NewThetaJoin(qscript.NewRead("/a"),
		qscript.NewMap(qscript.NewUnreferenced(), field("x")),
		qscript.NewUnreferenced(),
		expression.NewEquals(expression.NewLeftSide(), expression.NewRightSide()),
		sql.JoinInner, combine)
	got, err = elideNopJoin(sql.NewEmptyContext(), nil, n)
	require.NoError(err)
	require.True(got.Equal(n))
}

func TestResolveBuckets(t *testing.T) {
	require := require.New(t)

	n := qscript.NewBucketField(qscript.NewRoot(), field("a"), "k")
	got, err := resolveBuckets(sql.NewEmptyContext(), nil, n)
	require.NoError(err)

	want := qscript.NewMap(qscript.NewRoot(),
		expression.NewProjectField(field("a"), "k"))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestSimplifyExpressions(t *testing.T) {
	require := require.New(t)

	n := qscript.NewMap(qscript.NewRoot(),
		expression.NewProjectIndex(
			expression.NewMakeArray(field("a"), field("b")), 0))
	got, err := simplifyExpressions(sql.NewEmptyContext(), nil, n)
	require.NoError(err)

	want := qscript.NewMap(qscript.NewRoot(), field("a"))
	require.True(got.Equal(want), "got %s, want %s", got, want)
}
