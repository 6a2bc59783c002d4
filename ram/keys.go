package ram

// SearchColumns is a bitmask over the columns of a relation: bit i is
// set iff column i is bound by a range pattern.
type SearchColumns uint64

// Has reports whether column i is bound.
func (sc SearchColumns) Has(i int) bool {
	return sc&(1<<uint(i)) != 0
}

// Count returns the number of bound columns.
func (sc SearchColumns) Count() int {
	n := 0
	for ; sc != 0; sc &= sc - 1 {
		n++
	}
	return n
}

// RangeQueryColumns extracts the key bitmask of a range pattern: bit i
// set iff position i carries a value.
func RangeQueryColumns(pattern []Expression) SearchColumns {
	var keys SearchColumns
	for i, v := range pattern {
		if v != nil {
			keys |= 1 << uint(i)
		}
	}
	return keys
}

// KeyColumns returns the columns probed by the index scan.
func (s *IndexScan) KeyColumns() SearchColumns {
	return RangeQueryColumns(s.Pattern)
}

// KeyColumns returns the columns probed by the index choice.
func (c *IndexChoice) KeyColumns() SearchColumns {
	return RangeQueryColumns(c.Pattern)
}
