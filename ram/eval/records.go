package eval

import "github.com/wbrown/janus-ram/ram"

// RecordTable interns packed records, mapping each distinct element
// sequence to a stable reference. Reference 0 is reserved as nil so
// that packed values never collide with it.
type RecordTable struct {
	records [][]ram.Domain
	index   map[string]ram.Domain
}

func NewRecordTable() *RecordTable {
	return &RecordTable{index: make(map[string]ram.Domain)}
}

// Pack interns the elements and returns their reference.
func (t *RecordTable) Pack(elements []ram.Domain) ram.Domain {
	key := tupleKey(elements)
	if ref, ok := t.index[key]; ok {
		return ref
	}
	t.records = append(t.records, append([]ram.Domain(nil), elements...))
	ref := ram.Domain(len(t.records))
	t.index[key] = ref
	return ref
}

// Unpack resolves a reference back to its elements.
func (t *RecordTable) Unpack(ref ram.Domain) ([]ram.Domain, bool) {
	if ref < 1 || ref > ram.Domain(len(t.records)) {
		return nil, false
	}
	return t.records[ref-1], true
}

// Size returns the number of distinct records packed so far.
func (t *RecordTable) Size() int { return len(t.records) }
