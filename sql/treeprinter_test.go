package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const expectedTree = `Map(add)
 ├─ ThetaJoin
 │   ├─ BranchA
 │   └─ BranchB
 └─ ThetaJoin
     ├─ BranchC
     └─ BranchD
`

func TestTreePrinter(t *testing.T) {
	p := NewTreePrinter()
	require.NoError(t, p.WriteNode("Map(%s)", "add"))

	p2 := NewTreePrinter()
	require.NoError(t, p2.WriteNode("ThetaJoin"))
	require.NoError(t, p2.WriteChildren(
		"BranchA",
		"BranchB",
	))

	p3 := NewTreePrinter()
	require.NoError(t, p3.WriteNode("ThetaJoin"))
	require.NoError(t, p3.WriteChildren(
		"BranchC",
		"BranchD",
	))

	require.NoError(t, p.WriteChildren(
		p2.String(),
		p3.String(),
	))

	require.Equal(t, expectedTree, p.String())
}

func TestTreePrinterErrors(t *testing.T) {
	p := NewTreePrinter()
	require.True(t, ErrNodeNotWritten.Is(p.WriteChildren("child")))
	require.NoError(t, p.WriteNode("node"))
	require.True(t, ErrNodeAlreadyWritten.Is(p.WriteNode("node")))
	require.NoError(t, p.WriteChildren("child"))
	require.True(t, ErrChildrenAlreadyWritten.Is(p.WriteChildren("child")))
}
