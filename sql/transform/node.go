package transform

import (
	"errors"

	"github.com/quarrydb/quarry/sql"
)

// Node applies a transformation function to the given tree from the
// bottom up. Each callback [f] returns a TreeIdentity that is aggregated
// into a final output indicating whether the tree was changed.
func Node(n sql.Node, f NodeFunc) (sql.Node, TreeIdentity, error) {
	children := n.Children()
	if len(children) == 0 {
		return f(n)
	}

	var (
		newChildren []sql.Node
		err         error
	)

	for i := 0; i < len(children); i++ {
		c := children[i]
		c, same, err := Node(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newChildren == nil {
				newChildren = make([]sql.Node, len(children))
				copy(newChildren, children)
			}
			newChildren[i] = c
		}
	}

	sameC := SameTree
	if len(newChildren) > 0 {
		sameC = NewTree
		n, err = n.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	n, sameN, err := f(n)
	if err != nil {
		return nil, SameTree, err
	}
	return n, sameC && sameN, nil
}

// NodeOnce applies f to every node bottom-up exactly once, without the
// change-tracking short-circuit. Used by rules that must visit even
// unchanged nodes.
func NodeOnce(n sql.Node, f func(sql.Node) (sql.Node, error)) (sql.Node, error) {
	out, _, err := Node(n, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		nn, err := f(n)
		if err != nil {
			return nil, SameTree, err
		}
		if nn == n {
			return n, SameTree, nil
		}
		return nn, NewTree, nil
	})
	return out, err
}

// Inspect traverses the given node tree from the bottom up, breaking if
// stop = true. Returns a bool indicating whether traversal was
// interrupted.
func Inspect(node sql.Node, f func(sql.Node) bool) bool {
	stop := errors.New("stop")
	_, _, err := Node(node, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		if f(n) {
			return nil, SameTree, stop
		}
		return n, SameTree, nil
	})
	return errors.Is(err, stop)
}

// Clone duplicates an existing sql.Node, returning new nodes with the
// same structure and internal values.
func Clone(n sql.Node) (sql.Node, error) {
	n, _, err := Node(n, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		return n, NewTree, nil
	})
	return n, err
}
