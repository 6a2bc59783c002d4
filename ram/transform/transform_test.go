package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-ram/ram"
)

func access(level, element int) *ram.ElementAccess {
	return &ram.ElementAccess{Level: level, Element: element}
}

func num(v ram.Domain) *ram.Number {
	return &ram.Number{Value: v}
}

func eq(lhs, rhs ram.Expression) *ram.Constraint {
	return &ram.Constraint{Op: ram.CmpEQ, LHS: lhs, RHS: rhs}
}

func queryProgram(op ram.Operation) *ram.Program {
	seq := &ram.Sequence{}
	seq.Add(&ram.Query{Op: op})
	return ram.NewProgram(seq)
}

func queryOp(prog *ram.Program) ram.Operation {
	return prog.Main.(*ram.Sequence).Statements[0].(*ram.Query).Op
}

func TestHoistConditionsMovesFilterToItsBinder(t *testing.T) {
	edge := ram.NewRelation("edge", 2)
	path := ram.NewRelation("path", 2)

	// The condition reads only tuple 0 but sits under tuple 1's scan.
	prog := queryProgram(&ram.Scan{
		Relation: path, ID: 0,
		Nested: &ram.Scan{
			Relation: edge, ID: 1,
			Nested: &ram.Filter{
				Cond: &ram.Constraint{Op: ram.CmpLT, LHS: access(0, 0), RHS: num(10)},
				Nested: &ram.Project{
					Relation: path,
					Values:   []ram.Expression{access(0, 0), access(1, 1)},
				},
			},
		},
	})

	assert.True(t, HoistConditions{}.Transform(prog))

	scan0 := queryOp(prog).(*ram.Scan)
	filter, ok := scan0.Nested.(*ram.Filter)
	require.True(t, ok, "condition floats up to the scan binding tuple 0, got %T", scan0.Nested)
	assert.Equal(t, ram.CmpLT, filter.Cond.(*ram.Constraint).Op)

	scan1, ok := filter.Nested.(*ram.Scan)
	require.True(t, ok)
	assert.Equal(t, 1, scan1.ID)
	_, ok = scan1.Nested.(*ram.Project)
	assert.True(t, ok)
}

func TestHoistConditionsFloatsConstantsAboveLoops(t *testing.T) {
	edge := ram.NewRelation("edge", 2)

	prog := queryProgram(&ram.Scan{
		Relation: edge, ID: 0,
		Nested: &ram.Filter{
			Cond:   eq(num(1), num(1)),
			Nested: &ram.Project{Relation: edge, Values: []ram.Expression{access(0, 0), access(0, 1)}},
		},
	})

	assert.True(t, HoistConditions{}.Transform(prog))

	filter, ok := queryOp(prog).(*ram.Filter)
	require.True(t, ok, "constant condition moves above the scan, got %T", queryOp(prog))
	_, ok = filter.Nested.(*ram.Scan)
	assert.True(t, ok)
}

func TestHoistConditionsIsIdempotent(t *testing.T) {
	edge := ram.NewRelation("edge", 2)

	prog := queryProgram(&ram.Scan{
		Relation: edge, ID: 0,
		Nested: &ram.Scan{
			Relation: edge, ID: 1,
			Nested: &ram.Filter{
				Cond:   eq(access(1, 0), access(0, 1)),
				Nested: &ram.Project{Relation: edge, Values: []ram.Expression{access(0, 0), access(1, 1)}},
			},
		},
	})

	HoistConditions{}.Transform(prog)
	assert.False(t, HoistConditions{}.Transform(prog), "a second hoist changes nothing")
}

func TestMakeIndexAbsorbsEqualities(t *testing.T) {
	edge := ram.NewRelation("edge", 2)
	out := ram.NewRelation("out", 1)

	// t0.0 = 5 keys the scan; t0.1 < 7 stays behind as a filter.
	prog := queryProgram(&ram.Scan{
		Relation: edge, ID: 0,
		Nested: &ram.Filter{
			Cond: ram.Conjoin(
				eq(access(0, 0), num(5)),
				&ram.Constraint{Op: ram.CmpLT, LHS: access(0, 1), RHS: num(7)},
			),
			Nested: &ram.Project{Relation: out, Values: []ram.Expression{access(0, 1)}},
		},
	})

	assert.True(t, MakeIndex{}.Transform(prog))

	scan, ok := queryOp(prog).(*ram.IndexScan)
	require.True(t, ok, "keyed scan becomes an index scan, got %T", queryOp(prog))
	assert.Equal(t, "edge", scan.Relation.Name)
	require.Len(t, scan.Pattern, 2)
	assert.Equal(t, ram.Domain(5), scan.Pattern[0].(*ram.Number).Value)
	assert.Nil(t, scan.Pattern[1])
	assert.Equal(t, ram.SearchColumns(0b01), scan.KeyColumns())

	filter, ok := scan.Nested.(*ram.Filter)
	require.True(t, ok, "non-equality conjunct survives as a filter, got %T", scan.Nested)
	assert.Equal(t, ram.CmpLT, filter.Cond.(*ram.Constraint).Op)
}

func TestMakeIndexKeysJoinOnOuterTuple(t *testing.T) {
	path := ram.NewRelation("path", 2)
	edge := ram.NewRelation("edge", 2)

	prog := queryProgram(&ram.Scan{
		Relation: path, ID: 0,
		Nested: &ram.Scan{
			Relation: edge, ID: 1,
			Nested: &ram.Filter{
				Cond:   eq(access(1, 0), access(0, 1)),
				Nested: &ram.Project{Relation: path, Values: []ram.Expression{access(0, 0), access(1, 1)}},
			},
		},
	})

	assert.True(t, MakeIndex{}.Transform(prog))

	scan0 := queryOp(prog).(*ram.Scan)
	scan1, ok := scan0.Nested.(*ram.IndexScan)
	require.True(t, ok)
	key, ok := scan1.Pattern[0].(*ram.ElementAccess)
	require.True(t, ok)
	assert.Equal(t, 0, key.Level)
	assert.Equal(t, 1, key.Element)
	assert.Nil(t, scan1.Pattern[1])

	// The join equality was fully absorbed.
	_, ok = scan1.Nested.(*ram.Project)
	assert.True(t, ok, "no filter remains under the index scan, got %T", scan1.Nested)
}

func TestMakeIndexSkipsLaterLevelKeys(t *testing.T) {
	edge := ram.NewRelation("edge", 2)

	// The equality reads tuple 1, bound inside the scan of tuple 0, so
	// it cannot key tuple 0's scan.
	prog := queryProgram(&ram.Scan{
		Relation: edge, ID: 0,
		Nested: &ram.Filter{
			Cond: eq(access(0, 0), access(1, 0)),
			Nested: &ram.Scan{
				Relation: edge, ID: 1,
				Nested: &ram.Project{Relation: edge, Values: []ram.Expression{access(1, 0), access(1, 1)}},
			},
		},
	})

	assert.False(t, MakeIndex{}.Transform(prog))
}

func TestConvertExistenceChecks(t *testing.T) {
	node := ram.NewRelation("node", 1)
	guard := ram.NewRelation("guard", 1)
	out := ram.NewRelation("out", 1)

	// Nothing reads tuple 1; iterating guard only answers emptiness.
	prog := queryProgram(&ram.Scan{
		Relation: node, ID: 0,
		Nested: &ram.Scan{
			Relation: guard, ID: 1,
			Nested:   &ram.Project{Relation: out, Values: []ram.Expression{access(0, 0)}},
		},
	})

	assert.True(t, ConvertExistenceChecks{}.Transform(prog))

	scan := queryOp(prog).(*ram.Scan)
	filter, ok := scan.Nested.(*ram.Filter)
	require.True(t, ok, "unused scan becomes a filter, got %T", scan.Nested)
	neg, ok := filter.Cond.(*ram.Negation)
	require.True(t, ok)
	check, ok := neg.Cond.(*ram.EmptinessCheck)
	require.True(t, ok)
	assert.Equal(t, "guard", check.Relation.Name)
}

func TestConvertExistenceChecksOnIndexScan(t *testing.T) {
	node := ram.NewRelation("node", 1)
	seen := ram.NewRelation("seen", 1)
	out := ram.NewRelation("out", 1)

	prog := queryProgram(&ram.Scan{
		Relation: node, ID: 0,
		Nested: &ram.IndexScan{
			Relation: seen, ID: 1,
			Pattern:  []ram.Expression{access(0, 0)},
			Nested:   &ram.Project{Relation: out, Values: []ram.Expression{access(0, 0)}},
		},
	})

	assert.True(t, ConvertExistenceChecks{}.Transform(prog))

	scan := queryOp(prog).(*ram.Scan)
	filter := scan.Nested.(*ram.Filter)
	check, ok := filter.Cond.(*ram.ExistenceCheck)
	require.True(t, ok, "unused index scan becomes a membership test, got %T", filter.Cond)
	assert.Equal(t, "seen", check.Relation.Name)
	require.Len(t, check.Values, 1)
}

func TestConvertChoices(t *testing.T) {
	node := ram.NewRelation("node", 1)
	edge := ram.NewRelation("edge", 2)
	out := ram.NewRelation("out", 1)

	// The filter reads tuple 1 but the continuation does not: any one
	// matching edge suffices.
	prog := queryProgram(&ram.Scan{
		Relation: node, ID: 0,
		Nested: &ram.Scan{
			Relation: edge, ID: 1,
			Nested: &ram.Filter{
				Cond:   eq(access(1, 0), access(0, 0)),
				Nested: &ram.Project{Relation: out, Values: []ram.Expression{access(0, 0)}},
			},
		},
	})

	assert.True(t, ConvertChoices{}.Transform(prog))

	scan := queryOp(prog).(*ram.Scan)
	choice, ok := scan.Nested.(*ram.Choice)
	require.True(t, ok, "filtered unused scan becomes a choice, got %T", scan.Nested)
	assert.Equal(t, "edge", choice.Relation.Name)
	assert.Equal(t, 1, choice.ID)
	_, ok = choice.Nested.(*ram.Project)
	assert.True(t, ok)
}

func TestStandardPipelineReachesFixpoint(t *testing.T) {
	path := ram.NewRelation("path", 2)
	edge := ram.NewRelation("edge", 2)

	build := func() *ram.Program {
		return queryProgram(&ram.Scan{
			Relation: path, ID: 0,
			Nested: &ram.Scan{
				Relation: edge, ID: 1,
				Nested: &ram.Filter{
					Cond:   eq(access(1, 0), access(0, 1)),
					Nested: &ram.Project{Relation: path, Values: []ram.Expression{access(0, 0), access(1, 1)}},
				},
			},
		})
	}

	prog := build()
	assert.True(t, Standard().Transform(prog))

	// The join rewrites to a scan feeding an index scan.
	scan := queryOp(prog).(*ram.Scan)
	assert.Equal(t, "path", scan.Relation.Name)
	idx, ok := scan.Nested.(*ram.IndexScan)
	require.True(t, ok)
	assert.Equal(t, ram.SearchColumns(0b01), idx.KeyColumns())
	_, ok = idx.Nested.(*ram.Project)
	assert.True(t, ok)

	assert.False(t, Standard().Transform(prog), "optimization reached a fixpoint")
}

func TestStandardPipelineGuardedSemiNaiveQuery(t *testing.T) {
	delta := ram.NewRelation("delta_path", 2)
	edge := ram.NewRelation("edge", 2)
	path := ram.NewRelation("path", 2)
	newPath := ram.NewRelation("new_path", 2)

	// The shape the translator emits for the recursive transitive
	// closure clause: join plus a rederivation guard.
	prog := queryProgram(&ram.Scan{
		Relation: delta, ID: 0,
		Nested: &ram.Scan{
			Relation: edge, ID: 1,
			Nested: &ram.Filter{
				Cond: ram.Conjoin(
					eq(access(1, 0), access(0, 1)),
					&ram.Negation{Cond: &ram.ExistenceCheck{
						Relation: path,
						Values:   []ram.Expression{access(0, 0), access(1, 1)},
					}},
				),
				Nested: &ram.Project{Relation: newPath, Values: []ram.Expression{access(0, 0), access(1, 1)}},
			},
		},
	})

	assert.True(t, Standard().Transform(prog))

	scan := queryOp(prog).(*ram.Scan)
	idx, ok := scan.Nested.(*ram.IndexScan)
	require.True(t, ok, "join equality keys the inner scan, got %T", scan.Nested)

	// The guard reads both tuples, so it stays inside as a filter.
	filter, ok := idx.Nested.(*ram.Filter)
	require.True(t, ok)
	_, ok = filter.Cond.(*ram.Negation)
	assert.True(t, ok)
	_, ok = filter.Nested.(*ram.Project)
	assert.True(t, ok)
}
