package transform

import (
	"github.com/quarrydb/quarry/sql"
)

// FoldFunc computes a result for a node given the already-computed
// results of its children, in child order.
type FoldFunc[T any] func(n sql.Node, children []T) (T, error)

// Fold computes a single result for a whole tree, children before
// parents. The callback only ever sees folded child results, never child
// nodes. It short-circuits on the first error.
//
// The traversal keeps an explicit work stack instead of recursing, so it
// is safe for trees several thousand nodes deep.
func Fold[T any](n sql.Node, f FoldFunc[T]) (T, error) {
	type frame struct {
		node     sql.Node
		children []sql.Node
		results  []T
		next     int
	}

	var zero T
	stack := []*frame{{node: n, children: n.Children()}}
	var result T

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.children) {
			child := top.children[top.next]
			top.next++
			stack = append(stack, &frame{node: child, children: child.Children()})
			continue
		}

		r, err := f(top.node, top.results)
		if err != nil {
			return zero, err
		}

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			result = r
		} else {
			parent := stack[len(stack)-1]
			parent.results = append(parent.results, r)
		}
	}

	return result, nil
}

// UnfoldFunc expands a seed into a node shape: a prototype node and the
// seeds its children will be built from. The prototype's own children
// are placeholders and are replaced once the child seeds are built.
type UnfoldFunc[S any] func(seed S) (sql.Node, []S, error)

// Unfold builds a tree top-down from a seed, the dual of Fold. It
// short-circuits on the first error and uses an explicit work stack for
// the same depth-safety reasons as Fold.
func Unfold[S any](seed S, f UnfoldFunc[S]) (sql.Node, error) {
	type frame struct {
		node  sql.Node
		seeds []S
		built []sql.Node
		next  int
	}

	node, seeds, err := f(seed)
	if err != nil {
		return nil, err
	}
	stack := []*frame{{node: node, seeds: seeds}}
	var result sql.Node

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.seeds) {
			s := top.seeds[top.next]
			top.next++
			child, childSeeds, err := f(s)
			if err != nil {
				return nil, err
			}
			stack = append(stack, &frame{node: child, seeds: childSeeds})
			continue
		}

		n := top.node
		if len(top.built) > 0 {
			n, err = n.WithChildren(top.built...)
			if err != nil {
				return nil, err
			}
		}

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			result = n
		} else {
			parent := stack[len(stack)-1]
			parent.built = append(parent.built, n)
		}
	}

	return result, nil
}
