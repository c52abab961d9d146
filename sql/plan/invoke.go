package plan

import (
	"github.com/quarrydb/quarry/sql"
)

// FuncClass determines how an invocation lowers: mapping functions
// become per-row expressions, reductions become aggregation nodes, and
// expansions become structural flattening nodes.
type FuncClass byte

const (
	Mapping FuncClass = iota
	Reduction
	Expansion
)

func (c FuncClass) String() string {
	switch c {
	case Mapping:
		return "mapping"
	case Reduction:
		return "reduction"
	default:
		return "expansion"
	}
}

// Func is one entry of the closed function table.
type Func struct {
	Name  string
	Class FuncClass
	Arity int
}

// Mapping functions.
var (
	FuncAdd       = Func{"add", Mapping, 2}
	FuncSubtract  = Func{"subtract", Mapping, 2}
	FuncMultiply  = Func{"multiply", Mapping, 2}
	FuncDivide    = Func{"divide", Mapping, 2}
	FuncModulo    = Func{"modulo", Mapping, 2}
	FuncEq        = Func{"eq", Mapping, 2}
	FuncNeq       = Func{"neq", Mapping, 2}
	FuncLt        = Func{"lt", Mapping, 2}
	FuncLte       = Func{"lte", Mapping, 2}
	FuncGt        = Func{"gt", Mapping, 2}
	FuncGte       = Func{"gte", Mapping, 2}
	FuncNot       = Func{"not", Mapping, 1}
	FuncConcat    = Func{"concat", Mapping, 2}
	FuncLower     = Func{"lower", Mapping, 1}
	FuncUpper     = Func{"upper", Mapping, 1}
	FuncRange     = Func{"range", Mapping, 2}
	FuncMakeMap   = Func{"makeMap", Mapping, 2}
	FuncConcatMap = Func{"concatMap", Mapping, 2}
)

// Reductions.
var (
	FuncCount     = Func{"count", Reduction, 1}
	FuncSum       = Func{"sum", Reduction, 1}
	FuncMin       = Func{"min", Reduction, 1}
	FuncMax       = Func{"max", Reduction, 1}
	FuncAvg       = Func{"avg", Reduction, 1}
	FuncFirst     = Func{"first", Reduction, 1}
	FuncArbitrary = Func{"arbitrary", Reduction, 1}
)

// Expansions. Flatten variants stay in the current grouping dimension;
// shift variants open a new one. The keys/indices variants expose the
// map key or array index of each element instead of its value.
var (
	FuncFlattenMap          = Func{"flattenMap", Expansion, 1}
	FuncFlattenArray        = Func{"flattenArray", Expansion, 1}
	FuncFlattenMapKeys      = Func{"flattenMapKeys", Expansion, 1}
	FuncFlattenArrayIndices = Func{"flattenArrayIndices", Expansion, 1}
	FuncShiftMap            = Func{"shiftMap", Expansion, 1}
	FuncShiftArray          = Func{"shiftArray", Expansion, 1}
	FuncShiftMapKeys        = Func{"shiftMapKeys", Expansion, 1}
	FuncShiftArrayIndices   = Func{"shiftArrayIndices", Expansion, 1}
)

// Invoke applies a function from the closed table to its arguments.
type Invoke struct {
	Fn   Func
	Args []sql.Node
}

// NewInvoke creates a new Invoke node.
func NewInvoke(fn Func, args ...sql.Node) *Invoke {
	return &Invoke{Fn: fn, Args: args}
}

// Children implements the Node interface.
func (i *Invoke) Children() []sql.Node { return i.Args }

// WithChildren implements the Node interface.
func (i *Invoke) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != len(i.Args) {
		return nil, sql.ErrInvalidChildrenNumber.New(i, len(children), len(i.Args))
	}
	return NewInvoke(i.Fn, children...), nil
}

// Equal implements the Node interface.
func (i *Invoke) Equal(other sql.Node) bool {
	o, ok := other.(*Invoke)
	return ok && i.Fn == o.Fn && sql.NodesEqual(i.Args, o.Args)
}

func (i *Invoke) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Invoke(%s)", i.Fn.Name)
	children := make([]string, len(i.Args))
	for j, a := range i.Args {
		children[j] = a.String()
	}
	_ = pr.WriteChildren(children...)
	return pr.String()
}

// GroupBy partitions the rows of its left child by the key computed by
// its right child, pushing one grouping bucket for downstream
// reductions to strip.
type GroupBy struct {
	BinaryNode
}

// NewGroupBy creates a new GroupBy node.
func NewGroupBy(src, key sql.Node) *GroupBy {
	return &GroupBy{BinaryNode{Left: src, Right: key}}
}

// WithChildren implements the Node interface.
func (g *GroupBy) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 2)
	}
	return NewGroupBy(children[0], children[1]), nil
}

// Equal implements the Node interface.
func (g *GroupBy) Equal(other sql.Node) bool {
	o, ok := other.(*GroupBy)
	return ok && g.Left.Equal(o.Left) && g.Right.Equal(o.Right)
}

func (g *GroupBy) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("GroupBy")
	_ = pr.WriteChildren(g.Left.String(), g.Right.String())
	return pr.String()
}
