// Package eval interprets RAM programs over in-memory relations. It
// exists to give the translated programs observable semantics: tests
// and the command line run it to check what a lowered program actually
// computes. It makes no attempt at indexed data structures; searches
// match patterns against full scans.
package eval

import (
	"encoding/binary"

	"github.com/wbrown/janus-ram/ram"
)

// Relation holds the extension of one RAM relation: deduplicated
// tuples in insertion order.
type Relation struct {
	schema *ram.Relation
	tuples [][]ram.Domain
	seen   map[string]struct{}
}

func NewRelation(schema *ram.Relation) *Relation {
	return &Relation{schema: schema, seen: make(map[string]struct{})}
}

// Schema returns the schema the relation was created from.
func (r *Relation) Schema() *ram.Relation { return r.schema }

// Size returns the number of tuples.
func (r *Relation) Size() int { return len(r.tuples) }

// Empty reports whether the relation holds no tuples.
func (r *Relation) Empty() bool { return len(r.tuples) == 0 }

// Insert adds a tuple unless already present, reporting whether it was
// new. The tuple is copied.
func (r *Relation) Insert(tuple []ram.Domain) bool {
	key := tupleKey(tuple)
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	r.tuples = append(r.tuples, append([]ram.Domain(nil), tuple...))
	return true
}

// Contains reports whether the exact tuple is present.
func (r *Relation) Contains(tuple []ram.Domain) bool {
	_, ok := r.seen[tupleKey(tuple)]
	return ok
}

// Tuples returns the stored tuples in insertion order. Callers must
// not mutate them.
func (r *Relation) Tuples() [][]ram.Domain { return r.tuples }

// Clear removes every tuple while keeping the schema.
func (r *Relation) Clear() {
	r.tuples = nil
	r.seen = make(map[string]struct{})
}

// MergeFrom inserts every tuple of the source relation.
func (r *Relation) MergeFrom(src *Relation) {
	for _, t := range src.tuples {
		r.Insert(t)
	}
}

// swapContents exchanges the extensions of two relations.
func swapContents(a, b *Relation) {
	a.tuples, b.tuples = b.tuples, a.tuples
	a.seen, b.seen = b.seen, a.seen
}

// tupleKey encodes a tuple for set membership.
func tupleKey(tuple []ram.Domain) string {
	buf := make([]byte, 8*len(tuple))
	for i, v := range tuple {
		binary.BigEndian.PutUint64(buf[8*i:], uint64(v))
	}
	return string(buf)
}

// matches reports whether a tuple satisfies a partially evaluated
// pattern; nil entries match anything.
func matches(tuple, pattern []ram.Domain, bound []bool) bool {
	for i, b := range bound {
		if b && tuple[i] != pattern[i] {
			return false
		}
	}
	return true
}
