package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/parser"
)

func TestTranslateJoinClause(t *testing.T) {
	prog, err := parser.Parse(`
.decl edge(x: number, y: number)
.decl path(x: number, y: number)
path(x, y) :- edge(x, y).
path(x, z) :- path(x, y), edge(y, z).
`)
	require.NoError(t, err)

	path, _ := prog.Relation("path")
	op, err := TranslateClause(prog, path.Clauses[1])
	require.NoError(t, err)

	// FOR t0 IN path
	//   FOR t1 IN edge
	//     IF t1.x = t0.y
	//       PROJECT (t0.x, t1.y) INTO path
	scan0, ok := op.(*ram.Scan)
	require.True(t, ok, "outermost is a scan, got %T", op)
	assert.Equal(t, "path", scan0.Relation.Name)
	assert.Equal(t, 0, scan0.ID)

	scan1, ok := scan0.Nested.(*ram.Scan)
	require.True(t, ok, "second binder is a scan, got %T", scan0.Nested)
	assert.Equal(t, "edge", scan1.Relation.Name)
	assert.Equal(t, 1, scan1.ID)

	filter, ok := scan1.Nested.(*ram.Filter)
	require.True(t, ok, "join condition sits inside the second scan, got %T", scan1.Nested)
	cons, ok := filter.Cond.(*ram.Constraint)
	require.True(t, ok)
	assert.Equal(t, ram.CmpEQ, cons.Op)
	lhs := cons.LHS.(*ram.ElementAccess)
	rhs := cons.RHS.(*ram.ElementAccess)
	assert.Equal(t, 1, lhs.Level)
	assert.Equal(t, 0, lhs.Element)
	assert.Equal(t, 0, rhs.Level)
	assert.Equal(t, 1, rhs.Element)

	project, ok := filter.Nested.(*ram.Project)
	require.True(t, ok)
	assert.Equal(t, "path", project.Relation.Name)
	require.Len(t, project.Values, 2)
	x := project.Values[0].(*ram.ElementAccess)
	z := project.Values[1].(*ram.ElementAccess)
	assert.Equal(t, 0, x.Level)
	assert.Equal(t, 0, x.Element)
	assert.Equal(t, 1, z.Level)
	assert.Equal(t, 1, z.Element)
}

func TestTranslateConstantArgumentBecomesFilter(t *testing.T) {
	prog, err := parser.Parse(`
.decl edge(x: number, y: number)
.decl from_one(y: number)
from_one(y) :- edge(1, y).
`)
	require.NoError(t, err)

	rel, _ := prog.Relation("from_one")
	op, err := TranslateClause(prog, rel.Clauses[0])
	require.NoError(t, err)

	scan := op.(*ram.Scan)
	filter, ok := scan.Nested.(*ram.Filter)
	require.True(t, ok)
	cons := filter.Cond.(*ram.Constraint)
	assert.Equal(t, ram.CmpEQ, cons.Op)
	assert.Equal(t, ram.Domain(1), cons.RHS.(*ram.Number).Value)
}

func TestTranslateUngroundedVariableIsInternalError(t *testing.T) {
	prog, err := parser.Parse(`
.decl q(x: number)
.decl p(x: number)
p(x) :- q(y).
`)
	require.NoError(t, err)

	rel, _ := prog.Relation("p")
	_, err = TranslateClause(prog, rel.Clauses[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInternal), "ungrounded head variable reports the internal error class, got %v", err)
}

func TestTranslateNegationOnlyVariableIsInternalError(t *testing.T) {
	prog, err := parser.Parse(`
.decl q(x: number)
.decl r(x: number)
.decl p(x: number)
p(x) :- q(x), !r(y).
`)
	require.NoError(t, err)

	rel, _ := prog.Relation("p")
	_, err = TranslateClause(prog, rel.Clauses[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestTranslateNegationBecomesGuard(t *testing.T) {
	prog, err := parser.Parse(`
.decl node(x: number)
.decl blocked(x: number)
.decl ok(x: number)
ok(x) :- node(x), !blocked(x).
`)
	require.NoError(t, err)

	rel, _ := prog.Relation("ok")
	op, err := TranslateClause(prog, rel.Clauses[0])
	require.NoError(t, err)

	scan := op.(*ram.Scan)
	filter := scan.Nested.(*ram.Filter)
	neg, ok := filter.Cond.(*ram.Negation)
	require.True(t, ok)
	check, ok := neg.Cond.(*ram.ExistenceCheck)
	require.True(t, ok)
	assert.Equal(t, "blocked", check.Relation.Name)
	require.Len(t, check.Values, 1)
}

func TestTranslateHeadRecordPacks(t *testing.T) {
	prog, err := parser.Parse(`
.decl raw(x: number, y: number, z: number)
.decl pair(x: number, p: number)
pair(x, [y, z]) :- raw(x, y, z).
`)
	require.NoError(t, err)

	rel, _ := prog.Relation("pair")
	op, err := TranslateClause(prog, rel.Clauses[0])
	require.NoError(t, err)

	scan := op.(*ram.Scan)
	project := scan.Nested.(*ram.Project)
	pack, ok := project.Values[1].(*ram.Pack)
	require.True(t, ok)
	require.Len(t, pack.Args, 2)
	assert.Equal(t, 1, pack.Args[0].(*ram.ElementAccess).Element)
	assert.Equal(t, 2, pack.Args[1].(*ram.ElementAccess).Element)
}

func TestTranslateBodyRecordUnpacks(t *testing.T) {
	prog, err := parser.Parse(`
.decl stored(x: number, p: number)
.decl flat(x: number, y: number)
flat(x, y) :- stored(x, [y, z]).
`)
	require.NoError(t, err)

	rel, _ := prog.Relation("flat")
	op, err := TranslateClause(prog, rel.Clauses[0])
	require.NoError(t, err)

	scan := op.(*ram.Scan)
	unpack, ok := scan.Nested.(*ram.UnpackRecord)
	require.True(t, ok, "record argument unpacks inside its scan, got %T", scan.Nested)
	assert.Equal(t, 0, unpack.RefLevel)
	assert.Equal(t, 1, unpack.RefElement)
	assert.Equal(t, 2, unpack.Arity)
	assert.Equal(t, 1, unpack.ID)

	project := unpack.Nested.(*ram.Project)
	y := project.Values[1].(*ram.ElementAccess)
	assert.Equal(t, 1, y.Level)
	assert.Equal(t, 0, y.Element)
}

func TestTranslateAggregate(t *testing.T) {
	prog, err := parser.Parse(`
.decl cost(item: number, c: number)
.decl cheapest(c: number)
cheapest(m) :- cost(_, _), m = min c : cost(_, c).
`)
	require.NoError(t, err)

	rel, _ := prog.Relation("cheapest")
	op, err := TranslateClause(prog, rel.Clauses[0])
	require.NoError(t, err)

	scan := op.(*ram.Scan)
	agg, ok := scan.Nested.(*ram.Aggregate)
	require.True(t, ok, "aggregate binder nests inside the body scans, got %T", scan.Nested)
	assert.Equal(t, ram.AggMin, agg.Fun)
	assert.Equal(t, "cost", agg.Relation.Name)
	require.NotNil(t, agg.Target)

	target := agg.Target.(*ram.ElementAccess)
	assert.Equal(t, agg.ID, target.Level)
	assert.Equal(t, 1, target.Element)

	project := agg.Nested.(*ram.Project)
	m := project.Values[0].(*ram.ElementAccess)
	assert.Equal(t, agg.ID, m.Level)
	assert.Equal(t, 0, m.Element)
}

func TestTranslateFunctorValues(t *testing.T) {
	prog, err := parser.Parse(`
.decl v(x: number)
.decl r(x: number)
r(x + 1) :- v(x).
`)
	require.NoError(t, err)

	rel, _ := prog.Relation("r")
	op, err := TranslateClause(prog, rel.Clauses[0])
	require.NoError(t, err)

	project := op.(*ram.Scan).Nested.(*ram.Project)
	in, ok := project.Values[0].(*ram.Intrinsic)
	require.True(t, ok)
	assert.Equal(t, ram.OpAdd, in.Operation)
	require.Len(t, in.Args, 2)
	assert.Equal(t, ram.Domain(1), in.Args[1].(*ram.Number).Value)
}
