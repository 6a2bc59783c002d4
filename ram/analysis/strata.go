package analysis

import "github.com/wbrown/janus-ram/ram/ast"

// Stratum is the translation-facing digest of one SCC at its position
// in the topological order: the relation sets the program translator
// sequences create/load/compute/store/drop statements from. A Stratum
// can also be built by hand, which is how tests drive the translator
// without a full program.
type Stratum struct {
	// Relations are the internal relations of the SCC, sorted by name.
	Relations []*ast.Relation
	// Recursive marks a stratum needing delta/new shadow relations and
	// a fixpoint loop.
	Recursive bool
	// Inputs are the internal relations flagged as source inputs.
	Inputs []*ast.Relation
	// Outputs are the internal relations flagged as designated outputs.
	Outputs []*ast.Relation
	// ExternalOutputPreds and ExternalNonOutputPreds are predecessor
	// relations of earlier strata, split by their output flag; they are
	// reloaded under an external-engine configuration.
	ExternalOutputPreds    []*ast.Relation
	ExternalNonOutputPreds []*ast.Relation
	// InternalNonOutputsWithExternalSuccs are non-output members read
	// by later strata; they are stored under an external-engine
	// configuration.
	InternalNonOutputsWithExternalSuccs []*ast.Relation
	// Expired are the relations whose storage the expiry schedule
	// reclaims at this stratum.
	Expired []*ast.Relation
}

// Result bundles every analysis translation consumes.
type Result struct {
	Types     *TypeEnvironment
	Recursive *RecursiveClauses
	SCCs      *SCCGraph
	Order     []int
	Schedule  *RelationSchedule
	Strata    []Stratum
}

// Run computes all analyses of a program.
func Run(prog *ast.Program) *Result {
	graph := NewPrecedenceGraph(prog)
	sccs := NewSCCGraph(graph)
	order := TopologicalOrder(sccs)
	schedule := NewRelationSchedule(sccs, order)

	res := &Result{
		Types:     NewTypeEnvironment(prog),
		Recursive: NewRecursiveClauses(prog, sccs),
		SCCs:      sccs,
		Order:     order,
		Schedule:  schedule,
	}

	for pos, scc := range order {
		stratum := Stratum{
			Relations: sccs.Relations(scc),
			Recursive: sccs.IsRecursive(scc),
			Expired:   schedule.ExpiredAt(pos),
		}
		for _, rel := range stratum.Relations {
			if rel.Input {
				stratum.Inputs = append(stratum.Inputs, rel)
			}
			if rel.Output {
				stratum.Outputs = append(stratum.Outputs, rel)
			}
			if !rel.Output && sccs.HasExternalSuccessor(rel) {
				stratum.InternalNonOutputsWithExternalSuccs =
					append(stratum.InternalNonOutputsWithExternalSuccs, rel)
			}
		}
		for _, pred := range sccs.ExternalPredecessors(scc) {
			if pred.Output {
				stratum.ExternalOutputPreds = append(stratum.ExternalOutputPreds, pred)
			} else {
				stratum.ExternalNonOutputPreds = append(stratum.ExternalNonOutputPreds, pred)
			}
		}
		res.Strata = append(res.Strata, stratum)
	}
	return res
}
