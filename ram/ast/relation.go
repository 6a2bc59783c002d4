package ast

import "strings"

// Attribute is one column of a relation declaration.
type Attribute struct {
	Name string
	Type string // "number" or "symbol"
}

// Relation is a declared relation together with its clauses and I/O
// facets.
type Relation struct {
	Name       string
	Attributes []Attribute
	Input      bool
	Output     bool
	PrintSize  bool
	Hashset    bool
	Clauses    []*Clause
}

// Arity returns the number of attributes.
func (r *Relation) Arity() int { return len(r.Attributes) }

// AddClause appends a clause, numbering it.
func (r *Relation) AddClause(c *Clause) {
	c.Num = len(r.Clauses)
	r.Clauses = append(r.Clauses, c)
}

func (r *Relation) String() string {
	parts := make([]string, len(r.Attributes))
	for i, a := range r.Attributes {
		parts[i] = a.Name + ":" + a.Type
	}
	return r.Name + "(" + strings.Join(parts, ", ") + ")"
}
