// Package analysis computes the whole-program facts translation
// depends on: the relation precedence graph, its strongly connected
// components, a topological order over them, the set of recursive
// clauses, the relation expiry schedule and the type environment.
// Translation itself never re-derives any of this; it consumes a
// Result (or hand-built Strata) as given.
package analysis

import (
	"sort"

	"github.com/wbrown/janus-ram/ram/ast"
)

// PrecedenceGraph records which relations each relation's clauses
// read. An edge from P to R means some clause of R mentions P in its
// body (positively, negated, or inside an aggregate).
type PrecedenceGraph struct {
	program      *ast.Program
	predecessors map[*ast.Relation]map[*ast.Relation]bool
	successors   map[*ast.Relation]map[*ast.Relation]bool
}

// NewPrecedenceGraph builds the precedence graph of a program.
func NewPrecedenceGraph(prog *ast.Program) *PrecedenceGraph {
	g := &PrecedenceGraph{
		program:      prog,
		predecessors: make(map[*ast.Relation]map[*ast.Relation]bool),
		successors:   make(map[*ast.Relation]map[*ast.Relation]bool),
	}
	for _, rel := range prog.Relations {
		g.predecessors[rel] = make(map[*ast.Relation]bool)
		g.successors[rel] = make(map[*ast.Relation]bool)
	}
	for _, rel := range prog.Relations {
		for _, clause := range rel.Clauses {
			for _, name := range bodyRelationNames(clause) {
				if pred, ok := prog.Relation(name); ok {
					g.predecessors[rel][pred] = true
					g.successors[pred][rel] = true
				}
			}
		}
	}
	return g
}

// Predecessors returns the relations read by clauses of r, sorted by
// name.
func (g *PrecedenceGraph) Predecessors(r *ast.Relation) []*ast.Relation {
	return sortedRelations(g.predecessors[r])
}

// Successors returns the relations whose clauses read r, sorted by
// name.
func (g *PrecedenceGraph) Successors(r *ast.Relation) []*ast.Relation {
	return sortedRelations(g.successors[r])
}

// DependsOn reports whether a clause of r reads p.
func (g *PrecedenceGraph) DependsOn(r, p *ast.Relation) bool {
	return g.predecessors[r][p]
}

// bodyRelationNames lists every relation name a clause body mentions,
// including negated atoms and aggregate bodies.
func bodyRelationNames(clause *ast.Clause) []string {
	var names []string
	for _, lit := range clause.Body {
		switch lit := lit.(type) {
		case *ast.Atom:
			names = append(names, lit.Name)
			names = append(names, argumentRelationNames(lit.Args)...)
		case *ast.NegatedAtom:
			names = append(names, lit.Atom.Name)
		case *ast.Constraint:
			names = append(names, argumentRelationNames([]ast.Argument{lit.LHS, lit.RHS})...)
		}
	}
	names = append(names, argumentRelationNames(clause.Head.Args)...)
	return names
}

// argumentRelationNames digs aggregate bodies out of argument
// expressions.
func argumentRelationNames(args []ast.Argument) []string {
	var names []string
	for _, arg := range args {
		switch arg := arg.(type) {
		case *ast.Aggregator:
			names = append(names, arg.Atom.Name)
		case *ast.RecordInit:
			names = append(names, argumentRelationNames(arg.Args)...)
		case *ast.Functor:
			names = append(names, argumentRelationNames(arg.Args)...)
		}
	}
	return names
}

func sortedRelations(set map[*ast.Relation]bool) []*ast.Relation {
	out := make([]*ast.Relation, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
