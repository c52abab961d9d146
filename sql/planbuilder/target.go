package planbuilder

import (
	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/provenance"
)

// Target is the annotated result of lowering one logical-plan subtree:
// the IR built so far, plus the annotations the enclosing node needs to
// keep composing without knowing the internal shape of what it wraps.
type Target struct {
	// Node is the lowered IR tree.
	Node sql.Node
	// Value recovers this subtree's logical value from Node's output
	// rows. Keeping it symbolic instead of materializing a Map per
	// operation is what lets the merge engine recognize shared work.
	Value sql.Expression
	// Buckets are the grouping keys in force, outermost last, each
	// relative to Node's output rows.
	Buckets []sql.Expression
	// Prov tracks which relations and grouping dimensions rows derive
	// from. Discarded once lowering completes.
	Prov *provenance.Provenance
}
