package sql

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrNodeAlreadyWritten is returned when the WriteNode method is called
	// twice on the same printer.
	ErrNodeAlreadyWritten = errors.NewKind("treeprinter: node already written")

	// ErrNodeNotWritten is returned when the WriteChildren method is called
	// before WriteNode.
	ErrNodeNotWritten = errors.NewKind("treeprinter: children must be written after the node")

	// ErrChildrenAlreadyWritten is returned when the WriteChildren method
	// is called twice on the same printer.
	ErrChildrenAlreadyWritten = errors.NewKind("treeprinter: children already written")
)

// TreePrinter is a printer for tree nodes.
type TreePrinter struct {
	buf          strings.Builder
	nodeWritten  bool
	childWritten bool
}

// NewTreePrinter creates a new tree printer.
func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

// WriteNode writes the header of the node.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) error {
	if p.nodeWritten {
		return ErrNodeAlreadyWritten.New()
	}
	p.nodeWritten = true
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteRune('\n')
	return nil
}

// WriteChildren writes the children of the node. Each child is indented
// under the node header, nested trees included.
func (p *TreePrinter) WriteChildren(children ...string) error {
	if !p.nodeWritten {
		return ErrNodeNotWritten.New()
	}
	if p.childWritten {
		return ErrChildrenAlreadyWritten.New()
	}
	p.childWritten = true

	for i, child := range children {
		last := i == len(children)-1
		lines := strings.Split(strings.TrimRight(child, "\n"), "\n")
		for j, line := range lines {
			if j == 0 {
				if last {
					p.buf.WriteString(" └─ ")
				} else {
					p.buf.WriteString(" ├─ ")
				}
			} else {
				if last {
					p.buf.WriteString("     ")
				} else {
					p.buf.WriteString(" │   ")
				}
			}
			p.buf.WriteString(line)
			p.buf.WriteRune('\n')
		}
	}
	return nil
}

// String returns the printed tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}
