package ram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScan() *Scan {
	edge := NewRelation("edge", 2)
	path := NewRelation("path", 2)
	return &Scan{
		Relation: edge,
		ID:       0,
		Nested: &Filter{
			Cond: &Constraint{
				Op:  CmpLT,
				LHS: &ElementAccess{Level: 0, Element: 0},
				RHS: &Number{Value: 10},
			},
			Nested: &Project{
				Relation: path,
				Values: []Expression{
					&ElementAccess{Level: 0, Element: 0},
					&ElementAccess{Level: 0, Element: 1},
				},
			},
		},
	}
}

func TestCloneIsDeepAndEqual(t *testing.T) {
	original := sampleScan()
	clone := original.Clone().(*Scan)

	require.True(t, original.Equal(clone))
	require.True(t, clone.Equal(original))

	// Mutating the clone must not affect the original.
	clone.Nested.(*Filter).Cond.(*Constraint).Op = CmpGT
	assert.False(t, original.Equal(clone))
	assert.Equal(t, CmpLT, original.Nested.(*Filter).Cond.(*Constraint).Op)
}

func TestEqualDistinguishesStructure(t *testing.T) {
	a := sampleScan()
	b := sampleScan()
	require.True(t, a.Equal(b))

	b.ID = 1
	assert.False(t, a.Equal(b))

	c := sampleScan()
	c.Relation = NewRelation("edge", 3)
	assert.False(t, a.Equal(c))
}

func TestRewriteReplacesChildren(t *testing.T) {
	op := sampleScan()
	var m Mapper
	m = func(n Node) Node {
		if num, ok := n.(*Number); ok {
			return &Number{Value: num.Value + 1}
		}
		n.Rewrite(m)
		return n
	}
	op.Rewrite(m)

	cond := op.Nested.(*Filter).Cond.(*Constraint)
	assert.Equal(t, Domain(11), cond.RHS.(*Number).Value)
}

func TestConjoinSkipsNilAndFlattens(t *testing.T) {
	a := &Constraint{Op: CmpEQ, LHS: &Number{Value: 1}, RHS: &Number{Value: 1}}
	b := &EmptinessCheck{Relation: NewRelation("r", 1)}
	c := &Negation{Cond: b.Clone().(Condition)}

	assert.Nil(t, Conjoin())
	assert.Equal(t, Condition(a), Conjoin(nil, a, nil))

	joined := Conjoin(a, b, c)
	parts := Conjuncts(joined)
	require.Len(t, parts, 3)
	assert.True(t, parts[0].Equal(a))
	assert.True(t, parts[1].Equal(b))
	assert.True(t, parts[2].Equal(c))
}

func TestWalkVisitsParentFirst(t *testing.T) {
	var kinds []string
	Walk(sampleScan(), func(n Node) {
		switch n.(type) {
		case *Scan:
			kinds = append(kinds, "scan")
		case *Filter:
			kinds = append(kinds, "filter")
		case *Project:
			kinds = append(kinds, "project")
		}
	})
	assert.Equal(t, []string{"scan", "filter", "project"}, kinds)
}

func TestExpressionLevels(t *testing.T) {
	assert.Equal(t, -1, ExpressionLevel(&Number{Value: 3}))
	assert.Equal(t, 2, ExpressionLevel(&Intrinsic{
		Operation: OpAdd,
		Args: []Expression{
			&ElementAccess{Level: 2, Element: 0},
			&ElementAccess{Level: 1, Element: 1},
		},
	}))

	cond := &Constraint{
		Op:  CmpEQ,
		LHS: &ElementAccess{Level: 0, Element: 0},
		RHS: &ElementAccess{Level: 3, Element: 1},
	}
	assert.Equal(t, 3, ConditionLevel(cond))
}

func TestIsConstant(t *testing.T) {
	assert.True(t, IsConstant(&Number{Value: 1}))
	assert.True(t, IsConstant(&Intrinsic{Operation: OpAdd, Args: []Expression{&Number{Value: 1}, &Number{Value: 2}}}))
	assert.True(t, IsConstant(&Pack{Args: []Expression{&Number{Value: 1}, nil}}))
	assert.False(t, IsConstant(&ElementAccess{Level: 0, Element: 0}))
	assert.False(t, IsConstant(&Intrinsic{Operation: OpAdd, Args: []Expression{&Number{Value: 1}, &ElementAccess{}}}))
}
