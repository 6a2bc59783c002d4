package ast

// Program is a complete source program: its relations (with their
// clauses) and the symbol table its constants were interned into.
type Program struct {
	Relations []*Relation
	Symbols   *SymbolTable

	byName map[string]*Relation
	nextID int
}

// NewProgram creates an empty program with a fresh symbol table.
func NewProgram() *Program {
	return &Program{
		Symbols: NewSymbolTable(),
		byName:  make(map[string]*Relation),
	}
}

// AddRelation registers a relation declaration.
func (p *Program) AddRelation(r *Relation) {
	p.Relations = append(p.Relations, r)
	p.byName[r.Name] = r
}

// Relation looks up a relation by name.
func (p *Program) Relation(name string) (*Relation, bool) {
	r, ok := p.byName[name]
	return r, ok
}

// NextID issues the next stable identifier for record-init and
// aggregator nodes.
func (p *Program) NextID() int {
	id := p.nextID
	p.nextID++
	return id
}

// Clauses iterates all clauses of all relations in declaration order.
func (p *Program) Clauses() []*Clause {
	var out []*Clause
	for _, r := range p.Relations {
		out = append(out, r.Clauses...)
	}
	return out
}
