package ram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeQueryColumns(t *testing.T) {
	access := func(e int) Expression { return &ElementAccess{Level: 0, Element: e} }

	tests := []struct {
		name    string
		pattern []Expression
		want    SearchColumns
	}{
		{
			name:    "positions 1 3 4 of five",
			pattern: []Expression{nil, access(0), nil, access(1), &Number{Value: 7}},
			want:    0b11010,
		},
		{
			name:    "positions 0 2 of four",
			pattern: []Expression{&Number{Value: 1}, nil, access(0), nil},
			want:    0b0101,
		},
		{
			name:    "empty pattern",
			pattern: nil,
			want:    0,
		},
		{
			name:    "all wildcards",
			pattern: []Expression{nil, nil, nil},
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangeQueryColumns(tt.pattern))
		})
	}
}

func TestSearchColumnsHasAndCount(t *testing.T) {
	sc := SearchColumns(0b11010)
	assert.False(t, sc.Has(0))
	assert.True(t, sc.Has(1))
	assert.False(t, sc.Has(2))
	assert.True(t, sc.Has(3))
	assert.True(t, sc.Has(4))
	assert.Equal(t, 3, sc.Count())
}

func TestIndexScanKeyColumns(t *testing.T) {
	scan := &IndexScan{
		Relation: NewRelation("r", 5),
		ID:       1,
		Pattern:  []Expression{nil, &Number{Value: 2}, nil, &Number{Value: 4}, &Number{Value: 5}},
		Nested:   &Return{},
	}
	assert.Equal(t, SearchColumns(26), scan.KeyColumns())
}
