package analysis

import (
	"sort"

	"github.com/wbrown/janus-ram/ram/ast"
)

// SCCGraph groups the relations of a program into strongly connected
// components of the precedence graph. Component ids are assigned
// deterministically from the program's declaration order.
type SCCGraph struct {
	graph   *PrecedenceGraph
	members [][]*ast.Relation // by component id, sorted by name
	sccOf   map[*ast.Relation]int
}

// NewSCCGraph runs Tarjan's algorithm over the precedence graph.
func NewSCCGraph(g *PrecedenceGraph) *SCCGraph {
	s := &SCCGraph{
		graph: g,
		sccOf: make(map[*ast.Relation]int),
	}

	index := make(map[*ast.Relation]int)
	lowlink := make(map[*ast.Relation]int)
	onStack := make(map[*ast.Relation]bool)
	var stack []*ast.Relation
	next := 0

	var strongConnect func(v *ast.Relation)
	strongConnect = func(v *ast.Relation) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Predecessors(v) {
			if _, seen := index[w]; !seen {
				strongConnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && index[w] < lowlink[v] {
				lowlink[v] = index[w]
			}
		}

		if lowlink[v] == index[v] {
			id := len(s.members)
			var comp []*ast.Relation
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				s.sccOf[w] = id
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Slice(comp, func(i, j int) bool { return comp[i].Name < comp[j].Name })
			s.members = append(s.members, comp)
		}
	}

	for _, rel := range g.program.Relations {
		if _, seen := index[rel]; !seen {
			strongConnect(rel)
		}
	}
	return s
}

// Count returns the number of components.
func (s *SCCGraph) Count() int { return len(s.members) }

// Relations returns the members of a component, sorted by name.
func (s *SCCGraph) Relations(scc int) []*ast.Relation { return s.members[scc] }

// Of returns the component id of a relation.
func (s *SCCGraph) Of(r *ast.Relation) int { return s.sccOf[r] }

// IsRecursive reports whether a component is recursive: it has more
// than one member, or its single member depends on itself.
func (s *SCCGraph) IsRecursive(scc int) bool {
	if len(s.members[scc]) > 1 {
		return true
	}
	only := s.members[scc][0]
	return s.graph.DependsOn(only, only)
}

// PredecessorSCCs returns the distinct component ids that members of
// scc depend on, excluding scc itself, in ascending order.
func (s *SCCGraph) PredecessorSCCs(scc int) []int {
	set := make(map[int]bool)
	for _, r := range s.members[scc] {
		for _, p := range s.graph.Predecessors(r) {
			if other := s.sccOf[p]; other != scc {
				set[other] = true
			}
		}
	}
	return sortedInts(set)
}

// SuccessorSCCs returns the distinct component ids that depend on
// members of scc, excluding scc itself, in ascending order.
func (s *SCCGraph) SuccessorSCCs(scc int) []int {
	set := make(map[int]bool)
	for _, r := range s.members[scc] {
		for _, succ := range s.graph.Successors(r) {
			if other := s.sccOf[succ]; other != scc {
				set[other] = true
			}
		}
	}
	return sortedInts(set)
}

// ExternalPredecessors returns the relations outside scc that members
// of scc read, sorted by name.
func (s *SCCGraph) ExternalPredecessors(scc int) []*ast.Relation {
	set := make(map[*ast.Relation]bool)
	for _, r := range s.members[scc] {
		for _, p := range s.graph.Predecessors(r) {
			if s.sccOf[p] != scc {
				set[p] = true
			}
		}
	}
	return sortedRelations(set)
}

// HasExternalSuccessor reports whether any relation outside scc reads r.
func (s *SCCGraph) HasExternalSuccessor(r *ast.Relation) bool {
	scc := s.sccOf[r]
	for _, succ := range s.graph.Successors(r) {
		if s.sccOf[succ] != scc {
			return true
		}
	}
	return false
}

func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
