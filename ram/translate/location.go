package translate

import (
	"sort"

	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/ast"
)

// Location addresses one slot of one tuple inside a clause's loop
// nest: the tuple bound at the given level, at the given element
// position. Name carries the attribute name when the slot comes from
// a declared relation, for readable output only.
type Location struct {
	Level   int
	Element int
	Name    string
}

func (l Location) before(o Location) bool {
	if l.Level != o.Level {
		return l.Level < o.Level
	}
	return l.Element < o.Element
}

// Access builds the RAM expression reading this location.
func (l Location) Access() *ram.ElementAccess {
	return &ram.ElementAccess{Level: l.Level, Element: l.Element, Name: l.Name}
}

// ValueIndex records, for a single clause, where every named value can
// be read from: every occurrence of every variable, the unpack level
// assigned to every record argument, and the result slot of every
// aggregator. Records and aggregators are keyed by the stable integer
// identifiers the parser assigns, so two structurally identical
// arguments in one clause never collide.
type ValueIndex struct {
	variables map[string][]Location
	records   map[int]Location
	unpacks   map[int]int
	aggs      map[int]Location
	aliases   map[string]ast.Argument
}

func NewValueIndex() *ValueIndex {
	return &ValueIndex{
		variables: make(map[string][]Location),
		records:   make(map[int]Location),
		unpacks:   make(map[int]int),
		aggs:      make(map[int]Location),
		aliases:   make(map[string]ast.Argument),
	}
}

// AddVariable records one occurrence of a variable.
func (vi *ValueIndex) AddVariable(name string, loc Location) {
	vi.variables[name] = append(vi.variables[name], loc)
}

// Definition returns the canonical location a variable is read from,
// which is its earliest occurrence in loop-nest order.
func (vi *ValueIndex) Definition(name string) (Location, bool) {
	locs, ok := vi.variables[name]
	if !ok || len(locs) == 0 {
		return Location{}, false
	}
	def := locs[0]
	for _, loc := range locs[1:] {
		if loc.before(def) {
			def = loc
		}
	}
	return def, true
}

// Occurrences returns every location a variable appears at, sorted in
// loop-nest order.
func (vi *ValueIndex) Occurrences(name string) []Location {
	locs := append([]Location(nil), vi.variables[name]...)
	sort.Slice(locs, func(i, j int) bool { return locs[i].before(locs[j]) })
	return locs
}

// Variables returns the names of all indexed variables, sorted.
func (vi *ValueIndex) Variables() []string {
	names := make([]string, 0, len(vi.variables))
	for name := range vi.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetRecord registers the slot a record argument occupies and the
// tuple identifier its unpacked elements are bound at.
func (vi *ValueIndex) SetRecord(id int, loc Location, unpackLevel int) {
	vi.records[id] = loc
	vi.unpacks[id] = unpackLevel
}

// Record returns the slot holding the packed reference of a record
// argument.
func (vi *ValueIndex) Record(id int) (Location, bool) {
	loc, ok := vi.records[id]
	return loc, ok
}

// UnpackLevel returns the tuple identifier a record argument's
// elements are unpacked into.
func (vi *ValueIndex) UnpackLevel(id int) (int, bool) {
	lvl, ok := vi.unpacks[id]
	return lvl, ok
}

// SetAggregator registers the slot an aggregator's result is read
// from.
func (vi *ValueIndex) SetAggregator(id int, loc Location) {
	vi.aggs[id] = loc
}

// Aggregator returns the slot holding an aggregator's result.
func (vi *ValueIndex) Aggregator(id int) (Location, bool) {
	loc, ok := vi.aggs[id]
	return loc, ok
}

// SetAlias binds a variable to an argument expression. A variable with
// no tuple occurrence may still be defined by an equality constraint,
// most commonly "v = <aggregate>".
func (vi *ValueIndex) SetAlias(name string, arg ast.Argument) {
	vi.aliases[name] = arg
}

// Alias returns the expression a location-free variable stands for.
func (vi *ValueIndex) Alias(name string) (ast.Argument, bool) {
	arg, ok := vi.aliases[name]
	return arg, ok
}

// Copy returns an independent index. The clause translator extends a
// copy with aggregate-local variables so they never leak into the
// enclosing scope.
func (vi *ValueIndex) Copy() *ValueIndex {
	out := NewValueIndex()
	for name, locs := range vi.variables {
		out.variables[name] = append([]Location(nil), locs...)
	}
	for id, loc := range vi.records {
		out.records[id] = loc
	}
	for id, lvl := range vi.unpacks {
		out.unpacks[id] = lvl
	}
	for id, loc := range vi.aggs {
		out.aggs[id] = loc
	}
	for name, arg := range vi.aliases {
		out.aliases[name] = arg
	}
	return out
}
