// Package provenance tracks, for every node built during lowering,
// which original relations and grouping dimensions its rows derive
// from. The algebra is only consulted while lowering runs (deriving
// join conditions and union provenance); it does not survive into the
// optimizer.
package provenance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure"
)

// Kind discriminates the provenance variants.
type Kind byte

const (
	// KindEmpty is the provenance of nothing at all.
	KindEmpty Kind = iota
	// KindValue is the provenance of a computed value with no relation
	// of its own, e.g. a constant.
	KindValue
	// KindRelation is the provenance of rows read from one relation.
	KindRelation
	// KindEither marks rows that derive from one operand or the other,
	// e.g. the two sides of a union.
	KindEither
	// KindBoth marks rows that derive from both operands at once, e.g.
	// the two sides of a join.
	KindBoth
)

// Provenance is an immutable provenance term. Either and Both are
// associative: equality is computed up to arbitrary re-association by
// flattening nested same-kind terms into a multiset.
type Provenance struct {
	kind     Kind
	relation string
	operands []*Provenance
}

var (
	empty = &Provenance{kind: KindEmpty}
	value = &Provenance{kind: KindValue}
)

// Empty returns the empty provenance.
func Empty() *Provenance { return empty }

// Value returns the provenance of a computed value.
func Value() *Provenance { return value }

// Relation returns the provenance of one named relation.
func Relation(id string) *Provenance {
	return &Provenance{kind: KindRelation, relation: id}
}

// Either combines the provenances of alternative origins. Empty
// operands vanish and nested Either terms are flattened.
func Either(a, b *Provenance) *Provenance {
	return combine(KindEither, a, b)
}

// Both combines the provenances of joint origins. Empty operands vanish
// and nested Both terms are flattened.
func Both(a, b *Provenance) *Provenance {
	return combine(KindBoth, a, b)
}

func combine(kind Kind, a, b *Provenance) *Provenance {
	// flatten aliases the operand slice of a same-kind term; appending
	// in place would write through into the shared backing array.
	operands := append([]*Provenance(nil), flatten(kind, a)...)
	operands = append(operands, flatten(kind, b)...)
	switch len(operands) {
	case 0:
		return empty
	case 1:
		return operands[0]
	}
	return &Provenance{kind: kind, operands: operands}
}

func flatten(kind Kind, p *Provenance) []*Provenance {
	if p == nil || p.kind == KindEmpty {
		return nil
	}
	if p.kind == kind {
		return p.operands
	}
	return []*Provenance{p}
}

// Kind returns the variant of this term.
func (p *Provenance) Kind() Kind { return p.kind }

// Relations returns the set of relation identifiers this term derives
// from, in no particular order.
func (p *Provenance) Relations() []string {
	seen := map[string]struct{}{}
	p.relations(seen)
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (p *Provenance) relations(seen map[string]struct{}) {
	if p == nil {
		return
	}
	if p.kind == KindRelation {
		seen[p.relation] = struct{}{}
	}
	for _, op := range p.operands {
		op.relations(seen)
	}
}

// Equal reports equality up to re-association of Either and Both: the
// operand multisets of flattened same-kind terms are compared by
// canonical digest, so Both(x, Both(y, z)) equals Both(Both(x, y), z).
func (p *Provenance) Equal(other *Provenance) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.digest() == other.digest()
}

func (p *Provenance) digest() uint64 {
	ops := make([]uint64, len(p.operands))
	for i, op := range p.operands {
		ops[i] = op.digest()
	}
	// Multiset semantics: operand order is irrelevant.
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })

	h, err := hashstructure.Hash(struct {
		Kind     Kind
		Relation string
		Operands []uint64
	}{p.kind, p.relation, ops}, nil)
	if err != nil {
		// hashstructure cannot fail on this shape.
		panic(err)
	}
	return h
}

// JoinKeys returns the relation identifiers shared by two provenances,
// the basis for the equality condition of an implicit join.
func JoinKeys(a, b *Provenance) []string {
	left := map[string]struct{}{}
	a.relations(left)
	var shared []string
	for _, id := range b.Relations() {
		if _, ok := left[id]; ok {
			shared = append(shared, id)
		}
	}
	return shared
}

func (p *Provenance) String() string {
	switch p.kind {
	case KindEmpty:
		return "∅"
	case KindValue:
		return "value"
	case KindRelation:
		return p.relation
	case KindEither:
		return "(" + joinOperands(p.operands, " | ") + ")"
	default:
		return "(" + joinOperands(p.operands, " & ") + ")"
	}
}

func joinOperands(ops []*Provenance, sep string) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, sep)
}

var _ fmt.Stringer = (*Provenance)(nil)
