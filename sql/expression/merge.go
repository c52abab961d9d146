package expression

import (
	"github.com/quarrydb/quarry/sql"
)

// Merged is the result of merging two expressions over the same input:
// one expression computing both results from a single pass over the
// input, plus a recovery expression per side that projects the original
// result back out of the merged output.
type Merged struct {
	Expr     sql.Expression
	RecoverA sql.Expression
	RecoverB sql.Expression
}

// Merge combines two expressions that read the same input into one. It
// is the building block the autojoin engine and bucket concatenation use
// to avoid evaluating a shared source twice.
//
// Identical expressions collapse to a single copy with identity
// recoveries. Otherwise the merged expression produces a two-element
// array and the recoveries are index projections into it.
func Merge(a, b sql.Expression) Merged {
	expr, recoveries := MergeAll(a, b)
	return Merged{
		Expr:     expr,
		RecoverA: recoveries[0],
		RecoverB: recoveries[1],
	}
}

// MergeAll merges any number of expressions over the same input,
// returning the merged expression and one recovery per input expression.
func MergeAll(exprs ...sql.Expression) (sql.Expression, []sql.Expression) {
	switch len(exprs) {
	case 0:
		return NewHole(), nil
	case 1:
		return exprs[0], []sql.Expression{NewHole()}
	}

	allEqual := true
	for _, e := range exprs[1:] {
		if !e.Equal(exprs[0]) {
			allEqual = false
			break
		}
	}
	if allEqual {
		recoveries := make([]sql.Expression, len(exprs))
		for i := range recoveries {
			recoveries[i] = NewHole()
		}
		return exprs[0], recoveries
	}

	recoveries := make([]sql.Expression, len(exprs))
	for i := range recoveries {
		recoveries[i] = NewProjectIndex(NewHole(), i)
	}
	return NewMakeArray(exprs...), recoveries
}
