package transform

import (
	"github.com/quarrydb/quarry/sql"
)

// TreeIdentity tracks modifications to node and expression trees.
// Only return SameTree when it is acceptable to return the original
// tree value.
type TreeIdentity bool

const (
	SameTree TreeIdentity = true
	NewTree  TreeIdentity = false
)

// NodeFunc is a function that given a node will return that node as is
// or transformed, a TreeIdentity to indicate whether the node was
// modified, and an error or nil.
type NodeFunc func(n sql.Node) (sql.Node, TreeIdentity, error)

// ExprFunc is a function that given an expression will return that
// expression as is or transformed, a TreeIdentity, and an error or nil.
type ExprFunc func(e sql.Expression) (sql.Expression, TreeIdentity, error)
