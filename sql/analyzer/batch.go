package analyzer

import (
	"github.com/quarrydb/quarry/sql"
)

// Batch executes a set of rules a specific number of times.
// When this number of times is reached, the actual node
// and ErrMaxAnalysisIters is returned.
type Batch struct {
	Desc       string
	Iterations int
	Rules      []Rule
}

// Eval executes the rules of the batch until the tree stops changing or
// the iteration bound is hit. If the bound is hit, this method returns
// the last processed node and ErrMaxAnalysisIters.
func (b *Batch) Eval(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	if b.Iterations == 0 {
		return n, nil
	}

	prev := n
	cur, err := b.evalOnce(ctx, a, n)
	if err != nil {
		return nil, err
	}

	if b.Iterations == 1 {
		return cur, nil
	}

	for i := 1; !prev.Equal(cur); {
		prev = cur
		cur, err = b.evalOnce(ctx, a, cur)
		if err != nil {
			return nil, err
		}

		i++
		if i >= b.Iterations {
			return cur, ErrMaxAnalysisIters.New(b.Iterations)
		}
	}

	return cur, nil
}

func (b *Batch) evalOnce(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	result := n
	for _, rule := range b.Rules {
		var err error
		a.Log("evaluating rule %s", rule.Name)
		result, err = rule.Apply(ctx, a, result)
		if err != nil {
			return nil, err
		}
		a.LogNode(result)
	}

	return result, nil
}
