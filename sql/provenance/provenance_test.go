package provenance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualUpToReassociation(t *testing.T) {
	require := require.New(t)

	x := Relation("/x")
	y := Relation("/y")
	z := Relation("/z")

	require.True(Both(x, Both(y, z)).Equal(Both(Both(x, y), z)))
	require.True(Both(x, Both(y, z)).Equal(Both(Both(z, y), x)))
	require.True(Either(x, Either(y, z)).Equal(Either(Either(x, y), z)))

	require.False(Both(x, y).Equal(Either(x, y)))
	require.False(Both(x, y).Equal(Both(x, z)))

	// Multiset, not set: a doubled operand is a different term.
	require.False(Both(x, y).Equal(Both(Both(x, x), y)))
}

func TestCombineCollapses(t *testing.T) {
	require := require.New(t)

	x := Relation("/x")

	require.True(Both(x, Empty()).Equal(x))
	require.True(Both(Empty(), x).Equal(x))
	require.True(Either(x, Empty()).Equal(x))
	require.True(Both(Empty(), Empty()).Equal(Empty()))
}

func TestCombineDoesNotAliasOperands(t *testing.T) {
	require := require.New(t)

	// A term wide enough that its operand array carries spare capacity.
	shared := Relation("/a")
	for _, id := range []string{"/b", "/c", "/d", "/e"} {
		shared = Both(shared, Relation(id))
	}

	first := Both(shared, Relation("/x"))
	second := Both(shared, Relation("/y"))

	// Combining the shared term again must not rewrite earlier results.
	require.True(first.Equal(Both(shared, Relation("/x"))))
	require.False(first.Equal(second))
	require.Contains(first.String(), "/x")
	require.NotContains(first.String(), "/y")
	require.Equal([]string{"/a", "/b", "/c", "/d", "/e"}, shared.Relations())
}

func TestRelations(t *testing.T) {
	require := require.New(t)

	p := Both(Relation("/b"), Either(Relation("/a"), Both(Relation("/b"), Value())))
	require.Equal([]string{"/a", "/b"}, p.Relations())
	require.Empty(Value().Relations())
}

func TestJoinKeys(t *testing.T) {
	require := require.New(t)

	a := Both(Relation("/x"), Relation("/y"))
	b := Either(Relation("/y"), Relation("/z"))
	require.Equal([]string{"/y"}, JoinKeys(a, b))
	require.Empty(JoinKeys(Relation("/x"), Relation("/z")))
}

func TestString(t *testing.T) {
	require := require.New(t)

	require.Equal("∅", Empty().String())
	require.Equal("(/x & /y)", Both(Relation("/x"), Relation("/y")).String())
	require.Equal("(/x | /y)", Either(Relation("/x"), Relation("/y")).String())
}
