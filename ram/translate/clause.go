package translate

import (
	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/ast"
)

// clauseVersion selects which rendition of a clause to produce. A
// non-recursive clause uses the zero version. Each recursive clause is
// emitted once per positive body atom of its own stratum, reading that
// atom from the delta relation and projecting into the new relation,
// guarded against tuples already derived.
type clauseVersion struct {
	delta      int           // positive atom index read from the delta relation, -1 for none
	target     *ram.Relation // overrides the head relation as projection target
	guard      *ram.Relation // head tuple must not already be present here
	subroutine bool          // equate head values to subroutine arguments and return the witness
}

// unpackSite is a record argument scheduled for unpacking: the packed
// reference lives at (refLevel, refElement) and its elements are bound
// at tuple identifier id.
type unpackSite struct {
	record     *ast.RecordInit
	id         int
	refLevel   int
	refElement int
}

// aggSite is an aggregator whose result is bound at (id, 0).
type aggSite struct {
	agg *ast.Aggregator
	id  int
}

// placedCond is a condition together with the tuple identifier it
// becomes checkable at, -1 for conditions over constants only.
type placedCond struct {
	cond  ram.Condition
	level int
}

// clauseContext holds per-clause translation state: the value index,
// the binder schedule and the identifier allocator.
type clauseContext struct {
	t      *Translator
	clause *ast.Clause
	atoms  []*ast.Atom
	index  *ValueIndex
	nextID int

	unpacks map[int][]*unpackSite // defining tuple identifier -> sites
	aggs    []*aggSite
	aliased map[*ast.Constraint]bool // equality constraints consumed as variable definitions

	order []int       // tuple identifiers in binder order
	pos   map[int]int // tuple identifier -> position in order
}

func (t *Translator) newClauseContext(clause *ast.Clause) *clauseContext {
	atoms := clause.Atoms()
	return &clauseContext{
		t:       t,
		clause:  clause,
		atoms:   atoms,
		index:   NewValueIndex(),
		nextID:  len(atoms),
		unpacks: make(map[int][]*unpackSite),
		aliased: make(map[*ast.Constraint]bool),
		pos:     make(map[int]int),
	}
}

func (ctx *clauseContext) newID() int {
	id := ctx.nextID
	ctx.nextID++
	return id
}

// translateClause lowers one clause body to its operation tree: a
// binder per positive atom in body order, record unpacks behind their
// defining binders, aggregates innermost, filters attached at the
// shallowest level where their condition is checkable, and a Project
// (or Return) terminal.
func (t *Translator) translateClause(clause *ast.Clause, version clauseVersion) (ram.Operation, error) {
	ctx := t.newClauseContext(clause)
	ctx.buildIndex()
	ctx.scheduleBinders()

	conds, err := ctx.collectConditions(version)
	if err != nil {
		return nil, err
	}

	headValues, err := ctx.headValues()
	if err != nil {
		return nil, err
	}
	if version.subroutine {
		for n, v := range headValues {
			conds = append(conds, placedCond{
				cond:  &ram.Constraint{Op: ram.CmpEQ, LHS: v, RHS: &ram.Argument{Number: n}},
				level: ram.ExpressionLevel(v),
			})
		}
	}

	condsAt, err := ctx.placeConditions(conds)
	if err != nil {
		return nil, err
	}

	var op ram.Operation
	if version.subroutine {
		op = &ram.Return{Values: ctx.witnessValues()}
	} else {
		target := version.target
		if target == nil {
			target = t.ramRelation(clause.Head.Name, clause.Head.Arity())
		}
		op = &ram.Project{Relation: target, Values: headValues}
	}

	for p := len(ctx.order) - 1; p >= 0; p-- {
		if cs := condsAt[p]; len(cs) > 0 {
			op = &ram.Filter{Cond: ram.Conjoin(cs...), Nested: op}
		}
		op, err = ctx.wrapBinder(ctx.order[p], version, op)
		if err != nil {
			return nil, err
		}
	}
	if cs := condsAt[-1]; len(cs) > 0 {
		op = &ram.Filter{Cond: ram.Conjoin(cs...), Nested: op}
	}
	return op, nil
}

// buildIndex records every variable occurrence and assigns unpack
// levels to every record argument of the positive body atoms. Atom i
// binds tuple identifier i; records get fresh identifiers past the
// atom range.
func (ctx *clauseContext) buildIndex() {
	for i, atom := range ctx.atoms {
		rel := ctx.t.ramRelation(atom.Name, atom.Arity())
		for pos, arg := range atom.Args {
			ctx.indexArgument(arg, Location{Level: i, Element: pos, Name: rel.Attribute(pos)})
		}
	}
	ctx.collectAggregators(ctx.clause)
	ctx.collectAliases()
}

// collectAliases turns equality constraints over otherwise undefined
// variables into definitions, so "m = min c : cost(_, c)" grounds m.
// The consumed constraints are not emitted as filters. Chained
// definitions resolve by repeating until a pass registers nothing.
func (ctx *clauseContext) collectAliases() {
	cons := ctx.clause.Constraints()
	for progress := true; progress; {
		progress = false
		for _, c := range cons {
			if c.Op != "=" || ctx.aliased[c] {
				continue
			}
			if ctx.registerAlias(c.LHS, c.RHS) || ctx.registerAlias(c.RHS, c.LHS) {
				ctx.aliased[c] = true
				progress = true
			}
		}
	}
}

func (ctx *clauseContext) registerAlias(side, other ast.Argument) bool {
	v, ok := side.(*ast.Variable)
	if !ok {
		return false
	}
	if _, ok := ctx.index.Definition(v.Name); ok {
		return false
	}
	if _, ok := ctx.index.Alias(v.Name); ok {
		return false
	}
	if mentionsVariable(other, v.Name) {
		return false
	}
	ctx.index.SetAlias(v.Name, other)
	return true
}

func mentionsVariable(arg ast.Argument, name string) bool {
	switch a := arg.(type) {
	case *ast.Variable:
		return a.Name == name
	case *ast.Functor:
		for _, sub := range a.Args {
			if mentionsVariable(sub, name) {
				return true
			}
		}
	case *ast.RecordInit:
		for _, sub := range a.Args {
			if mentionsVariable(sub, name) {
				return true
			}
		}
	case *ast.Aggregator:
		if a.Target != nil && mentionsVariable(a.Target, name) {
			return true
		}
		if a.Atom != nil {
			for _, sub := range a.Atom.Args {
				if mentionsVariable(sub, name) {
					return true
				}
			}
		}
		for _, c := range a.Constraints {
			if mentionsVariable(c.LHS, name) || mentionsVariable(c.RHS, name) {
				return true
			}
		}
	}
	return false
}

func (ctx *clauseContext) indexArgument(arg ast.Argument, loc Location) {
	switch a := arg.(type) {
	case *ast.Variable:
		ctx.index.AddVariable(a.Name, loc)
	case *ast.RecordInit:
		id := ctx.newID()
		ctx.index.SetRecord(a.ID, loc, id)
		site := &unpackSite{record: a, id: id, refLevel: loc.Level, refElement: loc.Element}
		ctx.unpacks[loc.Level] = append(ctx.unpacks[loc.Level], site)
		for pos, sub := range a.Args {
			ctx.indexArgument(sub, Location{Level: id, Element: pos})
		}
	}
}

// collectAggregators assigns a result level to every aggregator of the
// head and the body constraints, in source order.
func (ctx *clauseContext) collectAggregators(clause *ast.Clause) {
	var visit func(arg ast.Argument)
	visit = func(arg ast.Argument) {
		switch a := arg.(type) {
		case *ast.Aggregator:
			id := ctx.newID()
			ctx.index.SetAggregator(a.ID, Location{Level: id})
			ctx.aggs = append(ctx.aggs, &aggSite{agg: a, id: id})
		case *ast.Functor:
			for _, sub := range a.Args {
				visit(sub)
			}
		case *ast.RecordInit:
			for _, sub := range a.Args {
				visit(sub)
			}
		}
	}
	for _, arg := range clause.Head.Args {
		visit(arg)
	}
	for _, c := range clause.Constraints() {
		visit(c.LHS)
		visit(c.RHS)
	}
}

// scheduleBinders fixes the outer-to-inner binder order: atoms in body
// order, each immediately followed by the unpacks it feeds (and their
// nested unpacks), aggregates last.
func (ctx *clauseContext) scheduleBinders() {
	var add func(id int)
	add = func(id int) {
		ctx.pos[id] = len(ctx.order)
		ctx.order = append(ctx.order, id)
		for _, site := range ctx.unpacks[id] {
			add(site.id)
		}
	}
	for i := range ctx.atoms {
		add(i)
	}
	for _, site := range ctx.aggs {
		ctx.pos[site.id] = len(ctx.order)
		ctx.order = append(ctx.order, site.id)
	}
}

// wrapBinder builds the binder operation for the given tuple
// identifier around the nested operation.
func (ctx *clauseContext) wrapBinder(id int, version clauseVersion, nested ram.Operation) (ram.Operation, error) {
	if id < len(ctx.atoms) {
		atom := ctx.atoms[id]
		rel := ctx.t.ramRelation(atom.Name, atom.Arity())
		if id == version.delta {
			rel = ctx.t.deltaRelation(rel)
		}
		return &ram.Scan{Relation: rel, ID: id, Nested: nested}, nil
	}
	for _, sites := range ctx.unpacks {
		for _, site := range sites {
			if site.id == id {
				return &ram.UnpackRecord{
					ID:         site.id,
					RefLevel:   site.refLevel,
					RefElement: site.refElement,
					Arity:      len(site.record.Args),
					Nested:     nested,
				}, nil
			}
		}
	}
	for _, site := range ctx.aggs {
		if site.id == id {
			return ctx.buildAggregate(site, nested)
		}
	}
	return nil, internalf("tuple identifier t%d has no binder", id)
}

// buildAggregate lowers one aggregator. Variables bound by the
// enclosing body appear in the pattern; variables local to the
// aggregate body stay free and are indexed only in a scoped copy of
// the value index.
func (ctx *clauseContext) buildAggregate(site *aggSite, nested ram.Operation) (ram.Operation, error) {
	agg := site.agg
	rel := ctx.t.ramRelation(agg.Atom.Name, agg.Atom.Arity())
	local := ctx.index.Copy()

	pattern := make([]ram.Expression, agg.Atom.Arity())
	var dupEqs []ram.Condition
	for pos, arg := range agg.Atom.Args {
		switch a := arg.(type) {
		case *ast.Unnamed:
		case *ast.Variable:
			if def, ok := ctx.index.Definition(a.Name); ok {
				pattern[pos] = def.Access()
				break
			}
			if def, ok := local.Definition(a.Name); ok {
				// Repeated local variable.
				dupEqs = append(dupEqs, &ram.Constraint{
					Op:  ram.CmpEQ,
					LHS: (Location{Level: site.id, Element: pos}).Access(),
					RHS: def.Access(),
				})
				break
			}
			local.AddVariable(a.Name, Location{Level: site.id, Element: pos, Name: rel.Attribute(pos)})
		default:
			expr, err := TranslateValue(arg, ctx.index)
			if err != nil {
				return nil, err
			}
			pattern[pos] = expr
		}
	}

	var target ram.Expression
	if agg.Fun != ast.AggCount {
		if agg.Target == nil {
			return nil, internalf("aggregate %s has no target expression", agg.Fun)
		}
		var err error
		target, err = TranslateValue(agg.Target, local)
		if err != nil {
			return nil, err
		}
	}

	conds := dupEqs
	for _, c := range agg.Constraints {
		op, ok := cmpOp(c.Op)
		if !ok {
			return nil, internalf("constraint operator %q is not supported", c.Op)
		}
		lhs, err := TranslateValue(c.LHS, local)
		if err != nil {
			return nil, err
		}
		rhs, err := TranslateValue(c.RHS, local)
		if err != nil {
			return nil, err
		}
		conds = append(conds, &ram.Constraint{Op: op, LHS: lhs, RHS: rhs})
	}

	return &ram.Aggregate{
		Fun:      aggFun(agg.Fun),
		Target:   target,
		Relation: rel,
		Pattern:  pattern,
		Cond:     ram.Conjoin(conds...),
		ID:       site.id,
		Nested:   nested,
	}, nil
}

func aggFun(k ast.AggKind) ram.AggFun {
	switch k {
	case ast.AggMin:
		return ram.AggMin
	case ast.AggMax:
		return ram.AggMax
	case ast.AggSum:
		return ram.AggSum
	default:
		return ram.AggCount
	}
}

// collectConditions gathers every filter the body implies: equalities
// between repeated variable occurrences, equalities pinning constant
// and computed atom arguments, the body constraints, the negated
// atoms, and the guard of a recursive version.
func (ctx *clauseContext) collectConditions(version clauseVersion) ([]placedCond, error) {
	var conds []placedCond

	for _, name := range ctx.index.Variables() {
		occ := ctx.index.Occurrences(name)
		def := occ[0]
		for _, loc := range occ[1:] {
			conds = append(conds, placedCond{
				cond:  &ram.Constraint{Op: ram.CmpEQ, LHS: loc.Access(), RHS: def.Access()},
				level: loc.Level,
			})
		}
	}

	for i, atom := range ctx.atoms {
		cs, err := ctx.pinnedArguments(atom.Args, i)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cs...)
	}
	for _, sites := range ctx.unpacks {
		for _, site := range sites {
			cs, err := ctx.pinnedArguments(site.record.Args, site.id)
			if err != nil {
				return nil, err
			}
			conds = append(conds, cs...)
		}
	}

	for _, c := range ctx.clause.Constraints() {
		if ctx.aliased[c] {
			continue
		}
		op, ok := cmpOp(c.Op)
		if !ok {
			return nil, internalf("constraint operator %q is not supported", c.Op)
		}
		lhs, err := TranslateValue(c.LHS, ctx.index)
		if err != nil {
			return nil, err
		}
		rhs, err := TranslateValue(c.RHS, ctx.index)
		if err != nil {
			return nil, err
		}
		cond := &ram.Constraint{Op: op, LHS: lhs, RHS: rhs}
		conds = append(conds, placedCond{cond: cond, level: ram.ConditionLevel(cond)})
	}

	for _, neg := range ctx.clause.Negations() {
		values := make([]ram.Expression, neg.Atom.Arity())
		for pos, arg := range neg.Atom.Args {
			if _, ok := arg.(*ast.Unnamed); ok {
				continue
			}
			expr, err := TranslateValue(arg, ctx.index)
			if err != nil {
				return nil, err
			}
			values[pos] = expr
		}
		check := &ram.ExistenceCheck{
			Relation: ctx.t.ramRelation(neg.Atom.Name, neg.Atom.Arity()),
			Values:   values,
		}
		cond := &ram.Negation{Cond: check}
		conds = append(conds, placedCond{cond: cond, level: ram.ConditionLevel(cond)})
	}

	if version.guard != nil {
		values, err := ctx.headValues()
		if err != nil {
			return nil, err
		}
		cond := &ram.Negation{Cond: &ram.ExistenceCheck{Relation: version.guard, Values: values}}
		conds = append(conds, placedCond{cond: cond, level: ram.ConditionLevel(cond)})
	}
	return conds, nil
}

// pinnedArguments yields the equalities forcing non-variable argument
// slots of a bound tuple to their source expressions.
func (ctx *clauseContext) pinnedArguments(args []ast.Argument, level int) ([]placedCond, error) {
	var conds []placedCond
	for pos, arg := range args {
		switch arg.(type) {
		case *ast.Variable, *ast.Unnamed, *ast.RecordInit:
			continue
		}
		expr, err := TranslateValue(arg, ctx.index)
		if err != nil {
			return nil, err
		}
		access := (Location{Level: level, Element: pos}).Access()
		cond := &ram.Constraint{Op: ram.CmpEQ, LHS: access, RHS: expr}
		at := level
		if l := ram.ExpressionLevel(expr); l > at {
			at = l
		}
		conds = append(conds, placedCond{cond: cond, level: at})
	}
	return conds, nil
}

// placeConditions maps each condition's evaluation level to its binder
// position. A condition naming a level no binder produces is an
// internal error.
func (ctx *clauseContext) placeConditions(conds []placedCond) (map[int][]ram.Condition, error) {
	out := make(map[int][]ram.Condition)
	for _, pc := range conds {
		if pc.level < 0 {
			out[-1] = append(out[-1], pc.cond)
			continue
		}
		p, ok := ctx.pos[pc.level]
		if !ok {
			return nil, internalf("condition %s references unbound tuple identifier t%d", pc.cond, pc.level)
		}
		out[p] = append(out[p], pc.cond)
	}
	return out, nil
}

// headValues translates the head argument list. Every head variable
// must be grounded by a positive body literal.
func (ctx *clauseContext) headValues() ([]ram.Expression, error) {
	values := make([]ram.Expression, ctx.clause.Head.Arity())
	for pos, arg := range ctx.clause.Head.Args {
		expr, err := TranslateValue(arg, ctx.index)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, internalf("head argument %d of %s is unnamed", pos, ctx.clause.Head.Name)
		}
		values[pos] = expr
	}
	return values, nil
}

// witnessValues flattens the tuples of every positive body atom, the
// result a subproof subroutine returns.
func (ctx *clauseContext) witnessValues() []ram.Expression {
	var values []ram.Expression
	for i, atom := range ctx.atoms {
		for pos := 0; pos < atom.Arity(); pos++ {
			values = append(values, (Location{Level: i, Element: pos}).Access())
		}
	}
	return values
}
