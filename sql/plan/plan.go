// Package plan defines the logical-plan tree handed to the compiler by
// the SQL front end. The catalog is the compiler's input contract: read
// paths are absolute, let bindings are inlined by an earlier pass, and
// free variables only remain when a query genuinely references an
// unresolved name.
package plan

import (
	"github.com/quarrydb/quarry/sql"
)

// UnaryNode is a node with one child.
type UnaryNode struct {
	Child sql.Node
}

// Children implements the Node interface.
func (n *UnaryNode) Children() []sql.Node {
	return []sql.Node{n.Child}
}

// BinaryNode is a node with two children.
type BinaryNode struct {
	Left  sql.Node
	Right sql.Node
}

// Children implements the Node interface.
func (n *BinaryNode) Children() []sql.Node {
	return []sql.Node{n.Left, n.Right}
}
