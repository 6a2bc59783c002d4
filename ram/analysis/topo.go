package analysis

import "sort"

// TopologicalOrder returns the component ids of the SCC graph in an
// order where every component follows all of its predecessors. Ties
// are broken by ascending component id, so the order is deterministic
// for a given program.
func TopologicalOrder(s *SCCGraph) []int {
	n := s.Count()
	indegree := make([]int, n)
	for scc := 0; scc < n; scc++ {
		indegree[scc] = len(s.PredecessorSCCs(scc))
	}

	var ready []int
	for scc := 0; scc < n; scc++ {
		if indegree[scc] == 0 {
			ready = append(ready, scc)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		sort.Ints(ready)
		scc := ready[0]
		ready = ready[1:]
		order = append(order, scc)
		for _, succ := range s.SuccessorSCCs(scc) {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}
	return order
}
