package translate

import (
	"fmt"

	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/analysis"
	"github.com/wbrown/janus-ram/ram/ast"
)

// Translator lowers an analyzed source program to RAM. A Translator is
// single-use: Translate may be called once.
type Translator struct {
	cfg       Config
	program   *ast.Program
	types     *analysis.TypeEnvironment
	recursive *analysis.RecursiveClauses
	relations map[string]*ram.Relation
}

func NewTranslator(cfg Config) *Translator {
	return &Translator{cfg: cfg, relations: make(map[string]*ram.Relation)}
}

// Translate lowers the whole program: one stratum statement per SCC in
// topological order, each sequencing create, load, compute, print-size,
// store and drop. Provenance mode additionally generates one subproof
// subroutine per non-trivial clause.
func (t *Translator) Translate(prog *ast.Program, res *analysis.Result) (*ram.Program, error) {
	t.program = prog
	t.types = res.Types
	t.recursive = res.Recursive

	main := &ram.Sequence{}
	for pos, stratum := range res.Strata {
		stmt, err := t.translateStratum(pos, stratum)
		if err != nil {
			return nil, err
		}
		main.Add(stmt)
	}

	var top ram.Statement = main
	if t.cfg.Profile {
		top = &ram.LogTimer{Label: "@runtime", Body: main}
	}
	out := ram.NewProgram(top)

	if t.cfg.Provenance {
		if err := t.addSubproofSubroutines(prog, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// TranslateClause lowers a single clause against a program's
// declarations, outside any stratum. Intended for tools and tests that
// inspect a clause's operation tree in isolation.
func TranslateClause(prog *ast.Program, clause *ast.Clause) (ram.Operation, error) {
	t := NewTranslator(Config{})
	t.program = prog
	if prog != nil {
		t.types = analysis.NewTypeEnvironment(prog)
	}
	return t.translateClause(clause, clauseVersion{delta: -1})
}

// factDirectives and csvDirectives locate the two external formats:
// tab-separated ".facts" inputs and comma-separated ".csv" outputs.
func (t *Translator) factDirectives(dir string) ram.IODirectives {
	return ram.IODirectives{Directory: dir, Extension: ".facts"}
}

func (t *Translator) csvDirectives() ram.IODirectives {
	return ram.IODirectives{Directory: t.cfg.OutputDir, Extension: ".csv"}
}

func (t *Translator) translateStratum(pos int, stratum analysis.Stratum) (ram.Statement, error) {
	seq := &ram.Sequence{}

	for _, rel := range stratum.Relations {
		target := t.astRelation(rel)
		seq.Add(&ram.Create{Relation: target})
		if stratum.Recursive {
			seq.Add(&ram.Create{Relation: t.deltaRelation(target)})
			seq.Add(&ram.Create{Relation: t.newRelation(target)})
		}
	}

	for _, rel := range stratum.Inputs {
		seq.Add(&ram.Load{
			Relation:   t.astRelation(rel),
			Directives: t.factDirectives(t.cfg.FactDir),
		})
	}

	// Under an external engine earlier strata may have run in another
	// process, so their results are reloaded from the output
	// directory before use.
	if t.cfg.EngineEnabled() {
		for _, rel := range stratum.ExternalOutputPreds {
			seq.Add(&ram.Load{
				Relation:   t.astRelation(rel),
				Directives: t.csvDirectives(),
			})
		}
		for _, rel := range stratum.ExternalNonOutputPreds {
			seq.Add(&ram.Load{
				Relation:   t.astRelation(rel),
				Directives: t.factDirectives(t.cfg.OutputDir),
			})
		}
	}

	var compute *ram.Sequence
	var err error
	if stratum.Recursive {
		compute, err = t.translateRecursive(stratum)
	} else {
		compute = &ram.Sequence{}
		for _, rel := range stratum.Relations {
			var sub *ram.Sequence
			sub, err = t.translateNonRecursive(rel)
			if err != nil {
				break
			}
			compute.Add(sub.Statements...)
		}
	}
	if err != nil {
		return nil, err
	}
	seq.Add(compute.Statements...)

	for _, rel := range stratum.Relations {
		if rel.PrintSize {
			seq.Add(&ram.PrintSize{Relation: t.astRelation(rel)})
		}
	}

	if t.cfg.EngineEnabled() {
		for _, rel := range stratum.InternalNonOutputsWithExternalSuccs {
			seq.Add(&ram.Store{
				Relation:   t.astRelation(rel),
				Directives: t.factDirectives(t.cfg.OutputDir),
			})
		}
	}

	for _, rel := range stratum.Outputs {
		seq.Add(&ram.Store{
			Relation:   t.astRelation(rel),
			Directives: t.csvDirectives(),
		})
	}

	t.addDrops(seq, stratum)

	return &ram.Stratum{Body: seq, Index: pos}, nil
}

// addDrops appends the storage reclamation statements of a stratum.
// Provenance keeps everything alive for subproof queries. An external
// engine persists results to files between strata, so it drops every
// member relation and every reloaded predecessor once the stratum is
// done. Otherwise the expiry schedule decides.
func (t *Translator) addDrops(seq *ram.Sequence, stratum analysis.Stratum) {
	if t.cfg.Provenance {
		return
	}
	if stratum.Recursive {
		for _, rel := range stratum.Relations {
			target := t.astRelation(rel)
			seq.Add(&ram.Drop{Relation: t.deltaRelation(target)})
			seq.Add(&ram.Drop{Relation: t.newRelation(target)})
		}
	}
	if t.cfg.EngineEnabled() {
		for _, rel := range stratum.Relations {
			seq.Add(&ram.Drop{Relation: t.astRelation(rel)})
		}
		for _, rel := range stratum.ExternalOutputPreds {
			seq.Add(&ram.Drop{Relation: t.astRelation(rel)})
		}
		for _, rel := range stratum.ExternalNonOutputPreds {
			seq.Add(&ram.Drop{Relation: t.astRelation(rel)})
		}
		return
	}
	for _, rel := range stratum.Expired {
		seq.Add(&ram.Drop{Relation: t.astRelation(rel)})
	}
}

// subproofName labels the subroutine proving one clause of a relation.
func subproofName(rel string, num int) string {
	return fmt.Sprintf("%s_%d_subproof", rel, num)
}
