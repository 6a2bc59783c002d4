package analysis

import "github.com/wbrown/janus-ram/ram/ast"

// RecursiveClauses is the set of clauses whose body reads a relation
// mutually recursive with the clause's head.
type RecursiveClauses struct {
	set map[*ast.Clause]bool
}

// NewRecursiveClauses computes the recursive-clause set of a program.
func NewRecursiveClauses(prog *ast.Program, sccs *SCCGraph) *RecursiveClauses {
	rc := &RecursiveClauses{set: make(map[*ast.Clause]bool)}
	for _, rel := range prog.Relations {
		scc := sccs.Of(rel)
		for _, clause := range rel.Clauses {
			for _, atom := range clause.Atoms() {
				body, ok := prog.Relation(atom.Name)
				if ok && sccs.Of(body) == scc {
					rc.set[clause] = true
					break
				}
			}
		}
	}
	return rc
}

// IsRecursive reports whether the clause is recursive.
func (rc *RecursiveClauses) IsRecursive(c *ast.Clause) bool {
	return rc.set[c]
}
