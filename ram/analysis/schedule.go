package analysis

import (
	"github.com/wbrown/janus-ram/ram/ast"
)

// RelationSchedule records, for each position of the topological
// order, which relations are read for the last time at that position
// and whose storage may therefore be reclaimed. Output relations
// never expire; their content outlives evaluation.
type RelationSchedule struct {
	expired [][]*ast.Relation // by topological position
}

// NewRelationSchedule computes the expiry schedule for a topological
// order over the SCC graph.
func NewRelationSchedule(sccs *SCCGraph, order []int) *RelationSchedule {
	position := make(map[int]int, len(order))
	for pos, scc := range order {
		position[scc] = pos
	}

	sched := &RelationSchedule{expired: make([][]*ast.Relation, len(order))}
	for pos, scc := range order {
		for _, rel := range sccs.Relations(scc) {
			if rel.Output {
				continue
			}
			last := pos
			for _, succ := range sccs.graph.Successors(rel) {
				if p, ok := position[sccs.Of(succ)]; ok && p > last {
					last = p
				}
			}
			sched.expired[last] = append(sched.expired[last], rel)
		}
	}
	return sched
}

// ExpiredAt returns the relations expiring at the given topological
// position, sorted by name.
func (s *RelationSchedule) ExpiredAt(pos int) []*ast.Relation {
	if pos < 0 || pos >= len(s.expired) {
		return nil
	}
	set := make(map[*ast.Relation]bool, len(s.expired[pos]))
	for _, r := range s.expired[pos] {
		set[r] = true
	}
	return sortedRelations(set)
}
