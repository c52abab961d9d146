package transform_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
	"github.com/quarrydb/quarry/sql/qscript"
	"github.com/quarrydb/quarry/sql/transform"
)

func TestNodeBottomUp(t *testing.T) {
	require := require.New(t)

	fn := expression.NewProjectField(expression.NewHole(), "x")
	tree := qscript.NewFilter(
		qscript.NewMap(qscript.NewRead("/a"), fn),
		expression.NewLiteral(true),
	)

	// Replace every Read with Root.
	got, same, err := transform.Node(tree, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		if _, ok := n.(*qscript.Read); ok {
			return qscript.NewRoot(), transform.NewTree, nil
		}
		return n, transform.SameTree, nil
	})
	require.NoError(err)
	require.False(bool(same))

	want := qscript.NewFilter(
		qscript.NewMap(qscript.NewRoot(), fn),
		expression.NewLiteral(true),
	)
	if diff := cmp.Diff(want.String(), got.String()); diff != "" {
		t.Errorf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestNodeIdentity(t *testing.T) {
	require := require.New(t)

	tree := qscript.NewMap(qscript.NewRoot(),
		expression.NewProjectField(expression.NewHole(), "x"))

	got, same, err := transform.Node(tree, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		return n, transform.SameTree, nil
	})
	require.NoError(err)
	require.True(bool(same))
	require.Same(tree, got.(*qscript.Map))
}

func TestNodeErrorShortCircuits(t *testing.T) {
	require := require.New(t)

	boom := fmt.Errorf("boom")
	tree := qscript.NewMap(qscript.NewRead("/a"),
		expression.NewProjectField(expression.NewHole(), "x"))

	calls := 0
	_, _, err := transform.Node(tree, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		calls++
		return nil, transform.SameTree, boom
	})
	require.ErrorIs(err, boom)
	require.Equal(1, calls)
}

func TestExpr(t *testing.T) {
	require := require.New(t)

	e := expression.NewPlus(
		expression.NewProjectField(expression.NewHole(), "x"),
		expression.NewLiteral(1),
	)

	// Rewrite every literal to 2.
	got, same, err := transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if _, ok := e.(*expression.Literal); ok {
			return expression.NewLiteral(2), transform.NewTree, nil
		}
		return e, transform.SameTree, nil
	})
	require.NoError(err)
	require.False(bool(same))

	want := expression.NewPlus(
		expression.NewProjectField(expression.NewHole(), "x"),
		expression.NewLiteral(2),
	)
	require.True(got.Equal(want), "got %s, want %s", got, want)
}

func TestInspect(t *testing.T) {
	require := require.New(t)

	tree := qscript.NewFilter(
		qscript.NewMap(qscript.NewRead("/a"),
			expression.NewProjectField(expression.NewHole(), "x")),
		expression.NewLiteral(true),
	)

	var reads int
	stopped := transform.Inspect(tree, func(n sql.Node) bool {
		if _, ok := n.(*qscript.Read); ok {
			reads++
		}
		return false
	})
	require.False(stopped)
	require.Equal(1, reads)

	stopped = transform.Inspect(tree, func(n sql.Node) bool {
		_, ok := n.(*qscript.Read)
		return ok
	})
	require.True(stopped)
}

func TestFold(t *testing.T) {
	require := require.New(t)

	tree := qscript.NewFilter(
		qscript.NewMap(qscript.NewRead("/a"),
			expression.NewProjectField(expression.NewHole(), "x")),
		expression.NewLiteral(true),
	)

	// Count nodes.
	count, err := transform.Fold(tree, func(n sql.Node, children []int) (int, error) {
		total := 1
		for _, c := range children {
			total += c
		}
		return total, nil
	})
	require.NoError(err)
	require.Equal(3, count)
}

func TestFoldDeepTree(t *testing.T) {
	require := require.New(t)

	// A spine deep enough to blow the stack if Fold recursed.
	var tree sql.Node = qscript.NewRoot()
	const depth = 100000
	fn := expression.NewProjectField(expression.NewHole(), "x")
	for i := 0; i < depth; i++ {
		tree = qscript.NewMap(tree, fn)
	}

	count, err := transform.Fold(tree, func(n sql.Node, children []int) (int, error) {
		total := 1
		for _, c := range children {
			total += c
		}
		return total, nil
	})
	require.NoError(err)
	require.Equal(depth+1, count)
}

func TestUnfold(t *testing.T) {
	require := require.New(t)

	fn := expression.NewProjectField(expression.NewHole(), "x")

	// Build a Map spine of the given depth from a countdown seed.
	got, err := transform.Unfold(3, func(depth int) (sql.Node, []int, error) {
		if depth == 0 {
			return qscript.NewRoot(), nil, nil
		}
		return qscript.NewMap(qscript.NewRoot(), fn), []int{depth - 1}, nil
	})
	require.NoError(err)

	want := sql.Node(qscript.NewRoot())
	for i := 0; i < 3; i++ {
		want = qscript.NewMap(want, fn)
	}
	require.True(got.Equal(want), "got %s, want %s", got, want)
}
