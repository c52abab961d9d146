package qscript

import (
	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
)

// Branches are IR subtrees used inside join, union and limit nodes.
// A branch is rooted at Unreferenced, the implicit hole standing for the
// enclosing node's shared source, and references it exactly once.

// HoleBranch returns the trivial branch: the source itself.
func HoleBranch() sql.Node { return NewUnreferenced() }

// ExprBranch builds the branch that applies a single per-row expression
// to the enclosing source. The identity expression yields the trivial
// branch.
func ExprBranch(fn sql.Expression) sql.Node {
	if expression.IsIdentity(fn) {
		return NewUnreferenced()
	}
	return NewMap(NewUnreferenced(), fn)
}

// BranchExpr attempts to view a branch as a plain per-row expression
// over the enclosing source. Only chains of Map nodes (and the trivial
// branch) are expressible; any structural node makes the branch opaque.
func BranchExpr(branch sql.Node) (sql.Expression, bool) {
	switch b := branch.(type) {
	case *Unreferenced:
		return expression.NewHole(), true
	case *Map:
		inner, ok := BranchExpr(b.Src)
		if !ok {
			return nil, false
		}
		return expression.Substitute(b.FN, inner), true
	default:
		return nil, false
	}
}

// GraftBranch replaces the Unreferenced hole at the base of a branch
// with a concrete source tree, turning the branch back into a
// free-standing tree.
func GraftBranch(branch, src sql.Node) sql.Node {
	if _, ok := branch.(*Unreferenced); ok {
		return src
	}
	s, ok := branch.(Sourced)
	if !ok {
		// Root or Read at the base of a branch does not consume the
		// source at all.
		return branch
	}
	return s.WithSource(GraftBranch(s.Source(), src))
}
