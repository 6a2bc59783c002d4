package ram

// Create brings a relation into existence with its schema.
type Create struct {
	Relation *Relation
}

func (c *Create) isStatement() {}

func (c *Create) Children() []Node { return nil }

func (c *Create) Rewrite(m Mapper) {}

func (c *Create) Equal(other Node) bool {
	o, ok := other.(*Create)
	return ok && c.Relation.EqualSchema(o.Relation)
}

func (c *Create) Clone() Node {
	return &Create{Relation: c.Relation}
}

func (c *Create) print(p *printer) {
	p.line("CREATE %s", c.Relation.Signature())
}

func (c *Create) String() string { return statementString(c) }

// Load reads a relation's initial facts from the location described
// by the directives. The actual file I/O belongs to the evaluator.
type Load struct {
	Relation   *Relation
	Directives IODirectives
}

func (l *Load) isStatement() {}

func (l *Load) Children() []Node { return nil }

func (l *Load) Rewrite(m Mapper) {}

func (l *Load) Equal(other Node) bool {
	o, ok := other.(*Load)
	return ok && l.Relation.EqualSchema(o.Relation) && l.Directives == o.Directives
}

func (l *Load) Clone() Node {
	return &Load{Relation: l.Relation, Directives: l.Directives}
}

func (l *Load) print(p *printer) {
	p.line("LOAD %s FROM %s", l.Relation.Name, l.Directives.Path(l.Relation.Name))
}

func (l *Load) String() string { return statementString(l) }

// Store writes a relation's content to the location described by the
// directives.
type Store struct {
	Relation   *Relation
	Directives IODirectives
}

func (s *Store) isStatement() {}

func (s *Store) Children() []Node { return nil }

func (s *Store) Rewrite(m Mapper) {}

func (s *Store) Equal(other Node) bool {
	o, ok := other.(*Store)
	return ok && s.Relation.EqualSchema(o.Relation) && s.Directives == o.Directives
}

func (s *Store) Clone() Node {
	return &Store{Relation: s.Relation, Directives: s.Directives}
}

func (s *Store) print(p *printer) {
	p.line("STORE %s INTO %s", s.Relation.Name, s.Directives.Path(s.Relation.Name))
}

func (s *Store) String() string { return statementString(s) }

// Drop reclaims a relation's storage.
type Drop struct {
	Relation *Relation
}

func (d *Drop) isStatement() {}

func (d *Drop) Children() []Node { return nil }

func (d *Drop) Rewrite(m Mapper) {}

func (d *Drop) Equal(other Node) bool {
	o, ok := other.(*Drop)
	return ok && d.Relation.EqualSchema(o.Relation)
}

func (d *Drop) Clone() Node {
	return &Drop{Relation: d.Relation}
}

func (d *Drop) print(p *printer) {
	p.line("DROP %s", d.Relation.Name)
}

func (d *Drop) String() string { return statementString(d) }

// PrintSize reports the number of tuples in a relation.
type PrintSize struct {
	Relation *Relation
}

func (ps *PrintSize) isStatement() {}

func (ps *PrintSize) Children() []Node { return nil }

func (ps *PrintSize) Rewrite(m Mapper) {}

func (ps *PrintSize) Equal(other Node) bool {
	o, ok := other.(*PrintSize)
	return ok && ps.Relation.EqualSchema(o.Relation)
}

func (ps *PrintSize) Clone() Node {
	return &PrintSize{Relation: ps.Relation}
}

func (ps *PrintSize) print(p *printer) {
	p.line("PRINTSIZE %s", ps.Relation.Name)
}

func (ps *PrintSize) String() string { return statementString(ps) }

// Clear removes all tuples from a relation while keeping it alive.
type Clear struct {
	Relation *Relation
}

func (c *Clear) isStatement() {}

func (c *Clear) Children() []Node { return nil }

func (c *Clear) Rewrite(m Mapper) {}

func (c *Clear) Equal(other Node) bool {
	o, ok := other.(*Clear)
	return ok && c.Relation.EqualSchema(o.Relation)
}

func (c *Clear) Clone() Node {
	return &Clear{Relation: c.Relation}
}

func (c *Clear) print(p *printer) {
	p.line("CLEAR %s", c.Relation.Name)
}

func (c *Clear) String() string { return statementString(c) }

// Merge inserts every tuple of Source into Target.
type Merge struct {
	Target *Relation
	Source *Relation
}

func (mg *Merge) isStatement() {}

func (mg *Merge) Children() []Node { return nil }

func (mg *Merge) Rewrite(m Mapper) {}

func (mg *Merge) Equal(other Node) bool {
	o, ok := other.(*Merge)
	return ok && mg.Target.EqualSchema(o.Target) && mg.Source.EqualSchema(o.Source)
}

func (mg *Merge) Clone() Node {
	return &Merge{Target: mg.Target, Source: mg.Source}
}

func (mg *Merge) print(p *printer) {
	p.line("MERGE %s INTO %s", mg.Source.Name, mg.Target.Name)
}

func (mg *Merge) String() string { return statementString(mg) }

// Swap exchanges the contents of two relations of identical arity.
type Swap struct {
	First  *Relation
	Second *Relation
}

func (sw *Swap) isStatement() {}

func (sw *Swap) Children() []Node { return nil }

func (sw *Swap) Rewrite(m Mapper) {}

func (sw *Swap) Equal(other Node) bool {
	o, ok := other.(*Swap)
	return ok && sw.First.EqualSchema(o.First) && sw.Second.EqualSchema(o.Second)
}

func (sw *Swap) Clone() Node {
	return &Swap{First: sw.First, Second: sw.Second}
}

func (sw *Swap) print(p *printer) {
	p.line("SWAP (%s, %s)", sw.First.Name, sw.Second.Name)
}

func (sw *Swap) String() string { return statementString(sw) }

// Fact inserts a single ground tuple into a relation.
type Fact struct {
	Relation *Relation
	Values   []Expression
}

func (f *Fact) isStatement() {}

func (f *Fact) Children() []Node {
	return appendExpressions(nil, f.Values)
}

func (f *Fact) Rewrite(m Mapper) {
	rewriteExpressions(f.Values, m)
}

func (f *Fact) Equal(other Node) bool {
	o, ok := other.(*Fact)
	return ok && f.Relation.EqualSchema(o.Relation) && expressionsEqual(f.Values, o.Values)
}

func (f *Fact) Clone() Node {
	return &Fact{Relation: f.Relation, Values: cloneExpressions(f.Values)}
}

func (f *Fact) print(p *printer) {
	p.line("FACT (%s) INTO %s", patternString(f.Values), f.Relation.Name)
}

func (f *Fact) String() string { return statementString(f) }

// Query executes one operation tree, the compiled form of a single
// clause.
type Query struct {
	Op Operation
}

func (q *Query) isStatement() {}

func (q *Query) Children() []Node {
	return []Node{q.Op}
}

func (q *Query) Rewrite(m Mapper) {
	q.Op = m(q.Op).(Operation)
}

func (q *Query) Equal(other Node) bool {
	o, ok := other.(*Query)
	return ok && q.Op.Equal(o.Op)
}

func (q *Query) Clone() Node {
	return &Query{Op: cloneOperation(q.Op)}
}

func (q *Query) print(p *printer) {
	p.line("QUERY")
	p.nested(func() { q.Op.print(p) })
}

func (q *Query) String() string { return statementString(q) }

// Exit leaves the innermost enclosing loop when the condition holds.
type Exit struct {
	Cond Condition
}

func (e *Exit) isStatement() {}

func (e *Exit) Children() []Node {
	return []Node{e.Cond}
}

func (e *Exit) Rewrite(m Mapper) {
	e.Cond = m(e.Cond).(Condition)
}

func (e *Exit) Equal(other Node) bool {
	o, ok := other.(*Exit)
	return ok && e.Cond.Equal(o.Cond)
}

func (e *Exit) Clone() Node {
	return &Exit{Cond: cloneCondition(e.Cond)}
}

func (e *Exit) print(p *printer) {
	p.line("EXIT %s", e.Cond)
}

func (e *Exit) String() string { return statementString(e) }

// Loop repeats its body until an Exit statement inside it fires.
type Loop struct {
	Body Statement
}

func (l *Loop) isStatement() {}

func (l *Loop) Children() []Node {
	return []Node{l.Body}
}

func (l *Loop) Rewrite(m Mapper) {
	l.Body = m(l.Body).(Statement)
}

func (l *Loop) Equal(other Node) bool {
	o, ok := other.(*Loop)
	return ok && l.Body.Equal(o.Body)
}

func (l *Loop) Clone() Node {
	return &Loop{Body: cloneStatement(l.Body)}
}

func (l *Loop) print(p *printer) {
	p.line("LOOP")
	p.nested(func() { l.Body.print(p) })
	p.line("END LOOP")
}

func (l *Loop) String() string { return statementString(l) }

// Sequence executes its statements in order.
type Sequence struct {
	Statements []Statement
}

// Add appends a statement, ignoring nil.
func (sq *Sequence) Add(stmts ...Statement) {
	for _, s := range stmts {
		if s != nil {
			sq.Statements = append(sq.Statements, s)
		}
	}
}

func (sq *Sequence) isStatement() {}

func (sq *Sequence) Children() []Node {
	children := make([]Node, len(sq.Statements))
	for i, s := range sq.Statements {
		children[i] = s
	}
	return children
}

func (sq *Sequence) Rewrite(m Mapper) {
	for i, s := range sq.Statements {
		sq.Statements[i] = m(s).(Statement)
	}
}

func (sq *Sequence) Equal(other Node) bool {
	o, ok := other.(*Sequence)
	if !ok || len(sq.Statements) != len(o.Statements) {
		return false
	}
	for i := range sq.Statements {
		if !sq.Statements[i].Equal(o.Statements[i]) {
			return false
		}
	}
	return true
}

func (sq *Sequence) Clone() Node {
	out := &Sequence{}
	for _, s := range sq.Statements {
		out.Add(cloneStatement(s))
	}
	return out
}

func (sq *Sequence) print(p *printer) {
	for _, s := range sq.Statements {
		s.print(p)
	}
}

func (sq *Sequence) String() string { return statementString(sq) }

// Stratum wraps the statements of one SCC of the relation dependency
// graph, evaluated as a unit at position Index of the topological
// order.
type Stratum struct {
	Body  Statement
	Index int
}

func (st *Stratum) isStatement() {}

func (st *Stratum) Children() []Node {
	return []Node{st.Body}
}

func (st *Stratum) Rewrite(m Mapper) {
	st.Body = m(st.Body).(Statement)
}

func (st *Stratum) Equal(other Node) bool {
	o, ok := other.(*Stratum)
	return ok && st.Index == o.Index && st.Body.Equal(o.Body)
}

func (st *Stratum) Clone() Node {
	return &Stratum{Body: cloneStatement(st.Body), Index: st.Index}
}

func (st *Stratum) print(p *printer) {
	p.line("BEGIN STRATUM %d", st.Index)
	p.nested(func() { st.Body.print(p) })
	p.line("END STRATUM %d", st.Index)
}

func (st *Stratum) String() string { return statementString(st) }

// LogTimer measures the wall time of its body under a label.
type LogTimer struct {
	Label string
	Body  Statement
}

func (lt *LogTimer) isStatement() {}

func (lt *LogTimer) Children() []Node {
	return []Node{lt.Body}
}

func (lt *LogTimer) Rewrite(m Mapper) {
	lt.Body = m(lt.Body).(Statement)
}

func (lt *LogTimer) Equal(other Node) bool {
	o, ok := other.(*LogTimer)
	return ok && lt.Label == o.Label && lt.Body.Equal(o.Body)
}

func (lt *LogTimer) Clone() Node {
	return &LogTimer{Label: lt.Label, Body: cloneStatement(lt.Body)}
}

func (lt *LogTimer) print(p *printer) {
	p.line("START_TIMER %q", lt.Label)
	p.nested(func() { lt.Body.print(p) })
	p.line("END_TIMER")
}

func (lt *LogTimer) String() string { return statementString(lt) }
