package translate

import (
	"strings"

	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/ast"
)

// infoPrefix marks relations synthesized to describe rules to an
// external proof explorer; they carry no tuples worth proving.
const infoPrefix = "@info"

// addSubproofSubroutines registers one subroutine per provable clause.
// The subroutine of clause num of relation R is named R_num_subproof;
// it takes the head values as parameters and returns the flattened
// body tuples witnessing the derivation. Facts and info relations get
// no subroutine, having nothing to prove.
func (t *Translator) addSubproofSubroutines(prog *ast.Program, out *ram.Program) error {
	for _, rel := range prog.Relations {
		if strings.HasPrefix(rel.Name, infoPrefix) {
			continue
		}
		for _, clause := range rel.Clauses {
			if clause.IsFact() {
				continue
			}
			op, err := t.translateClause(clause, clauseVersion{delta: -1, subroutine: true})
			if err != nil {
				return err
			}
			out.AddSubroutine(subproofName(rel.Name, clause.Num), op)
		}
	}
	return nil
}
