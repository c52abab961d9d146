package planbuilder

import (
	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/expression"
	"github.com/quarrydb/quarry/sql/plan"
	"github.com/quarrydb/quarry/sql/qscript"
)

// Every expansion lowers to the same LeftShift skeleton: the repair
// keeps the original row on the left and the shifted element on the
// right, so downstream buckets stay recoverable. The variants differ in
// what they shift (the plain structure, or one with keys/indices
// duplicated into each element) and in which part of the element they
// expose as the value. Shift variants additionally open a new grouping
// dimension keyed by the element's key or index.
func lowerExpansion(fn plan.Func, t Target) (Target, error) {
	var (
		structExpr sql.Expression
		value      sql.Expression
		shift      bool
	)

	// With keys duplicated, a shifted element is the pair
	// [key, originalElement].
	elem := expression.NewProjectIndex(expression.NewHole(), 1)
	elemKey := expression.NewProjectIndex(elem, 0)
	elemValue := expression.NewProjectIndex(elem, 1)

	switch fn {
	case plan.FuncFlattenMap, plan.FuncFlattenArray:
		structExpr = t.Value
		value = elem
	case plan.FuncFlattenMapKeys, plan.FuncFlattenArrayIndices:
		structExpr = dupKeys(fn, t.Value)
		value = elemKey
	case plan.FuncShiftMap, plan.FuncShiftArray:
		structExpr = dupKeys(fn, t.Value)
		value = elemValue
		shift = true
	case plan.FuncShiftMapKeys, plan.FuncShiftArrayIndices:
		structExpr = dupKeys(fn, t.Value)
		value = elemKey
		shift = true
	default:
		return Target{}, sql.ErrInternal.New("unknown expansion " + fn.Name)
	}

	node := qscript.NewLeftShift(t.Node, structExpr,
		expression.NewMakeArray(expression.NewLeftSide(), expression.NewRightSide()))

	// The original row moved to index 0 of the repaired pair.
	origRow := expression.NewProjectIndex(expression.NewHole(), 0)
	buckets := substituteAll(t.Buckets, origRow)
	if shift {
		buckets = append(buckets, elemKey)
	}

	return Target{
		Node:    node,
		Value:   value,
		Buckets: buckets,
		Prov:    t.Prov,
	}, nil
}

func dupKeys(fn plan.Func, structExpr sql.Expression) sql.Expression {
	switch fn {
	case plan.FuncFlattenMapKeys, plan.FuncShiftMap, plan.FuncShiftMapKeys:
		return expression.NewDupMapKeys(structExpr)
	default:
		return expression.NewDupArrayIndices(structExpr)
	}
}
