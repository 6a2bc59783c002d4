package ram

import (
	"fmt"
	"strings"
)

// Relation describes the schema of a relation referenced by RAM
// operations and statements. Schemas are immutable once built and are
// shared by reference between a node and its clones; two references
// denote the same relation iff name and arity agree.
type Relation struct {
	Name       string
	Arity      int
	Attributes []string // display names, one per column; may be empty
	Types      []string // domain type per column; may be empty
	Temp       bool     // delta_/new_ shadow relation of a recursive stratum
	Hashset    bool     // hashset-backed representation requested
}

// NewRelation builds a schema with synthesized attribute metadata left
// empty.
func NewRelation(name string, arity int) *Relation {
	return &Relation{Name: name, Arity: arity}
}

// Attribute returns the display name of column i, synthesizing one
// when the schema carries no attribute names.
func (r *Relation) Attribute(i int) string {
	if i < len(r.Attributes) && r.Attributes[i] != "" {
		return r.Attributes[i]
	}
	return fmt.Sprintf("x%d", i)
}

// EqualSchema reports whether two references denote the same relation.
func (r *Relation) EqualSchema(other *Relation) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Name == other.Name && r.Arity == other.Arity
}

// Signature renders the schema as name(attr:type, ...).
func (r *Relation) Signature() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('(')
	for i := 0; i < r.Arity; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.Attribute(i))
		if i < len(r.Types) && r.Types[i] != "" {
			b.WriteByte(':')
			b.WriteString(r.Types[i])
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (r *Relation) String() string {
	return r.Name
}

// IODirectives locates the external file a Load or Store statement
// reads or writes. The translation core only records the coordinates;
// all actual I/O belongs to collaborators.
type IODirectives struct {
	Directory string
	Extension string
}

// Path returns the file path for the named relation.
func (d IODirectives) Path(name string) string {
	dir := d.Directory
	if dir == "" {
		dir = "."
	}
	return dir + "/" + name + d.Extension
}
