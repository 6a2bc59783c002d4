package translate

import (
	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/analysis"
	"github.com/wbrown/janus-ram/ram/ast"
)

// deltaPrefix and newPrefix name the shadow relations of a recursive
// stratum: delta holds the tuples derived in the previous iteration,
// new collects the tuples of the current one.
const (
	deltaPrefix = "delta_"
	newPrefix   = "new_"
)

// ramRelation returns the shared schema for the named relation,
// creating and caching it on first use. Declared relations contribute
// their attribute names, types and representation flags; an undeclared
// name yields a positional schema of the given arity.
func (t *Translator) ramRelation(name string, arity int) *ram.Relation {
	if rel, ok := t.relations[name]; ok {
		return rel
	}
	rel := ram.NewRelation(name, arity)
	if t.program != nil {
		if decl, ok := t.program.Relation(name); ok {
			rel.Arity = decl.Arity()
			rel.Hashset = decl.Hashset
		}
	}
	if t.types != nil {
		if names := t.types.AttributeNames(name); len(names) == rel.Arity {
			rel.Attributes = names
		}
		if types := t.types.AttributeTypes(name); len(types) == rel.Arity {
			rel.Types = types
		}
	}
	t.relations[name] = rel
	return rel
}

// shadow returns the prefixed shadow of a schema, caching like
// ramRelation so a stratum's statements share one reference.
func (t *Translator) shadow(prefix string, rel *ram.Relation) *ram.Relation {
	name := prefix + rel.Name
	if s, ok := t.relations[name]; ok {
		return s
	}
	s := &ram.Relation{
		Name:       name,
		Arity:      rel.Arity,
		Attributes: rel.Attributes,
		Types:      rel.Types,
		Temp:       true,
		Hashset:    rel.Hashset,
	}
	t.relations[name] = s
	return s
}

func (t *Translator) deltaRelation(rel *ram.Relation) *ram.Relation {
	return t.shadow(deltaPrefix, rel)
}

func (t *Translator) newRelation(rel *ram.Relation) *ram.Relation {
	return t.shadow(newPrefix, rel)
}

// astRelation returns the cached schema of a declared relation.
func (t *Translator) astRelation(rel *ast.Relation) *ram.Relation {
	return t.ramRelation(rel.Name, rel.Arity())
}

// inSCC reports whether an atom names a relation of the given stratum.
func inSCC(atom *ast.Atom, members map[string]bool) bool {
	return members[atom.Name]
}

// translateNonRecursive emits one query per clause of the relation, in
// clause order. Ground facts become direct insertions.
func (t *Translator) translateNonRecursive(rel *ast.Relation) (*ram.Sequence, error) {
	seq := &ram.Sequence{}
	target := t.astRelation(rel)
	for _, clause := range rel.Clauses {
		if clause.IsFact() {
			fact, err := t.translateFact(target, clause)
			if err != nil {
				return nil, err
			}
			seq.Add(fact)
			continue
		}
		op, err := t.translateClause(clause, clauseVersion{delta: -1})
		if err != nil {
			return nil, err
		}
		seq.Add(&ram.Query{Op: op})
	}
	return seq, nil
}

// translateFact lowers a ground clause to a Fact statement. Arguments
// must be constant.
func (t *Translator) translateFact(target *ram.Relation, clause *ast.Clause) (ram.Statement, error) {
	values := make([]ram.Expression, clause.Head.Arity())
	for pos, arg := range clause.Head.Args {
		expr, err := TranslateValue(arg, NewValueIndex())
		if err != nil {
			return nil, err
		}
		if expr == nil || !ram.IsConstant(expr) {
			return nil, internalf("fact %s has non-constant argument %d", clause.Head.Name, pos)
		}
		values[pos] = expr
	}
	return &ram.Fact{Relation: target, Values: values}, nil
}

// translateRecursive emits the semi-naive fixpoint computation of one
// recursive stratum:
//
//	non-recursive clauses into R
//	MERGE R INTO delta_R
//	LOOP
//	  one query per recursive clause and delta position, into new_R,
//	    guarded by "tuple not yet in R"
//	  EXIT when every new_R is empty
//	  MERGE new_R INTO R; SWAP delta_R, new_R; CLEAR new_R
//	END LOOP
func (t *Translator) translateRecursive(stratum analysis.Stratum) (*ram.Sequence, error) {
	members := make(map[string]bool, len(stratum.Relations))
	for _, rel := range stratum.Relations {
		members[rel.Name] = true
	}

	seq := &ram.Sequence{}

	// Preamble: non-recursive clauses seed the full relations, then
	// every member's contents prime its delta.
	for _, rel := range stratum.Relations {
		target := t.astRelation(rel)
		for _, clause := range rel.Clauses {
			if t.isRecursiveClause(clause, members) {
				continue
			}
			if clause.IsFact() {
				fact, err := t.translateFact(target, clause)
				if err != nil {
					return nil, err
				}
				seq.Add(fact)
				continue
			}
			op, err := t.translateClause(clause, clauseVersion{delta: -1})
			if err != nil {
				return nil, err
			}
			seq.Add(&ram.Query{Op: op})
		}
	}
	for _, rel := range stratum.Relations {
		target := t.astRelation(rel)
		seq.Add(&ram.Merge{Target: t.deltaRelation(target), Source: target})
	}

	body := &ram.Sequence{}
	for _, rel := range stratum.Relations {
		target := t.astRelation(rel)
		for _, clause := range rel.Clauses {
			if !t.isRecursiveClause(clause, members) {
				continue
			}
			for i, atom := range clause.Atoms() {
				if !inSCC(atom, members) {
					continue
				}
				op, err := t.translateClause(clause, clauseVersion{
					delta:  i,
					target: t.newRelation(target),
					guard:  target,
				})
				if err != nil {
					return nil, err
				}
				body.Add(&ram.Query{Op: op})
			}
		}
	}

	// Exit when the iteration derived nothing new.
	var exit ram.Condition
	for _, rel := range stratum.Relations {
		check := &ram.EmptinessCheck{Relation: t.newRelation(t.astRelation(rel))}
		exit = ram.Conjoin(exit, check)
	}
	body.Add(&ram.Exit{Cond: exit})

	for _, rel := range stratum.Relations {
		target := t.astRelation(rel)
		body.Add(&ram.Merge{Target: target, Source: t.newRelation(target)})
		body.Add(&ram.Swap{First: t.deltaRelation(target), Second: t.newRelation(target)})
		body.Add(&ram.Clear{Relation: t.newRelation(target)})
	}

	seq.Add(&ram.Loop{Body: body})
	return seq, nil
}

// isRecursiveClause reports whether a clause depends on its own
// stratum, using the recursion analysis when available and the member
// set otherwise.
func (t *Translator) isRecursiveClause(clause *ast.Clause, members map[string]bool) bool {
	if t.recursive != nil {
		return t.recursive.IsRecursive(clause)
	}
	for _, atom := range clause.Atoms() {
		if inSCC(atom, members) {
			return true
		}
	}
	return false
}
