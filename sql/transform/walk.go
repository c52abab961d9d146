package transform

import (
	"github.com/quarrydb/quarry/sql"
)

// Visitor visits nodes in the plan.
type Visitor interface {
	// Visit method is invoked for each node encountered by Walk.
	// If the result Visitor is not nil, Walk visits each of the children
	// of the node with that visitor, followed by a call of Visit(nil)
	// to the returned visitor.
	Visit(node sql.Node) Visitor
}

// Walk traverses the plan tree in depth-first order. It starts by
// calling v.Visit(node); node must not be nil. If the visitor returned
// by v.Visit(node) is not nil, Walk is invoked recursively with the
// returned visitor for each child of the node, followed by a call of
// v.Visit(nil) to the returned visitor.
func Walk(v Visitor, node sql.Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	for _, child := range node.Children() {
		Walk(v, child)
	}

	v.Visit(nil)
}

// ExprVisitor visits expressions in an expression tree.
type ExprVisitor interface {
	// Visit method is invoked for each expression encountered by
	// WalkExpr. If the result Visitor is not nil, WalkExpr is invoked
	// recursively with the returned visitor for each children of the
	// expression, followed by a call of Visit(nil) to the returned
	// visitor.
	Visit(expression sql.Expression) ExprVisitor
}

// WalkExpr traverses the expression tree in depth-first order.
func WalkExpr(v ExprVisitor, expr sql.Expression) {
	if v = v.Visit(expr); v == nil {
		return
	}

	for _, child := range expr.Children() {
		WalkExpr(v, child)
	}

	v.Visit(nil)
}
