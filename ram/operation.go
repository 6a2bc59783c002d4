package ram

import (
	"fmt"
	"strings"
)

// Scan iterates every tuple of a relation, binding each at tuple
// identifier ID before executing the nested operation.
type Scan struct {
	Relation *Relation
	ID       int
	Nested   Operation
}

func (s *Scan) isOperation() {}

func (s *Scan) Children() []Node {
	return []Node{s.Nested}
}

func (s *Scan) Rewrite(m Mapper) {
	s.Nested = m(s.Nested).(Operation)
}

func (s *Scan) Equal(other Node) bool {
	o, ok := other.(*Scan)
	return ok && s.Relation.EqualSchema(o.Relation) && s.ID == o.ID && s.Nested.Equal(o.Nested)
}

func (s *Scan) Clone() Node {
	return &Scan{Relation: s.Relation, ID: s.ID, Nested: cloneOperation(s.Nested)}
}

func (s *Scan) print(p *printer) {
	p.line("FOR t%d IN %s", s.ID, s.Relation.Name)
	p.nested(func() { s.Nested.print(p) })
}

func (s *Scan) String() string { return operationString(s) }

// Choice binds the first tuple of a relation satisfying a condition,
// if any, then executes the nested operation once.
type Choice struct {
	Relation *Relation
	ID       int
	Cond     Condition
	Nested   Operation
}

func (c *Choice) isOperation() {}

func (c *Choice) Children() []Node {
	return []Node{c.Cond, c.Nested}
}

func (c *Choice) Rewrite(m Mapper) {
	c.Cond = m(c.Cond).(Condition)
	c.Nested = m(c.Nested).(Operation)
}

func (c *Choice) Equal(other Node) bool {
	o, ok := other.(*Choice)
	return ok && c.Relation.EqualSchema(o.Relation) && c.ID == o.ID &&
		c.Cond.Equal(o.Cond) && c.Nested.Equal(o.Nested)
}

func (c *Choice) Clone() Node {
	return &Choice{Relation: c.Relation, ID: c.ID, Cond: cloneCondition(c.Cond), Nested: cloneOperation(c.Nested)}
}

func (c *Choice) print(p *printer) {
	p.line("CHOICE t%d IN %s WHERE %s", c.ID, c.Relation.Name, c.Cond)
	p.nested(func() { c.Nested.print(p) })
}

func (c *Choice) String() string { return operationString(c) }

// IndexScan iterates the tuples of a relation matching a partial key.
// Pattern has one entry per column; nil entries are unconstrained.
type IndexScan struct {
	Relation *Relation
	ID       int
	Pattern  []Expression
	Nested   Operation
}

func (s *IndexScan) isOperation() {}

func (s *IndexScan) Children() []Node {
	children := []Node{s.Nested}
	return appendExpressions(children, s.Pattern)
}

func (s *IndexScan) Rewrite(m Mapper) {
	s.Nested = m(s.Nested).(Operation)
	rewriteExpressions(s.Pattern, m)
}

func (s *IndexScan) Equal(other Node) bool {
	o, ok := other.(*IndexScan)
	return ok && s.Relation.EqualSchema(o.Relation) && s.ID == o.ID &&
		expressionsEqual(s.Pattern, o.Pattern) && s.Nested.Equal(o.Nested)
}

func (s *IndexScan) Clone() Node {
	return &IndexScan{
		Relation: s.Relation,
		ID:       s.ID,
		Pattern:  cloneExpressions(s.Pattern),
		Nested:   cloneOperation(s.Nested),
	}
}

func (s *IndexScan) print(p *printer) {
	p.line("SEARCH %s AS t%d ON INDEX %s", s.Relation.Name, s.ID, indexString(s.Relation, s.ID, s.Pattern))
	p.nested(func() { s.Nested.print(p) })
}

func (s *IndexScan) String() string { return operationString(s) }

// IndexChoice binds the first tuple matching a partial key that also
// satisfies a condition.
type IndexChoice struct {
	Relation *Relation
	ID       int
	Pattern  []Expression
	Cond     Condition
	Nested   Operation
}

func (c *IndexChoice) isOperation() {}

func (c *IndexChoice) Children() []Node {
	children := []Node{c.Cond, c.Nested}
	return appendExpressions(children, c.Pattern)
}

func (c *IndexChoice) Rewrite(m Mapper) {
	c.Cond = m(c.Cond).(Condition)
	c.Nested = m(c.Nested).(Operation)
	rewriteExpressions(c.Pattern, m)
}

func (c *IndexChoice) Equal(other Node) bool {
	o, ok := other.(*IndexChoice)
	return ok && c.Relation.EqualSchema(o.Relation) && c.ID == o.ID &&
		expressionsEqual(c.Pattern, o.Pattern) && c.Cond.Equal(o.Cond) && c.Nested.Equal(o.Nested)
}

func (c *IndexChoice) Clone() Node {
	return &IndexChoice{
		Relation: c.Relation,
		ID:       c.ID,
		Pattern:  cloneExpressions(c.Pattern),
		Cond:     cloneCondition(c.Cond),
		Nested:   cloneOperation(c.Nested),
	}
}

func (c *IndexChoice) print(p *printer) {
	p.line("CHOICE %s AS t%d ON INDEX %s WHERE %s",
		c.Relation.Name, c.ID, indexString(c.Relation, c.ID, c.Pattern), c.Cond)
	p.nested(func() { c.Nested.print(p) })
}

func (c *IndexChoice) String() string { return operationString(c) }

// UnpackRecord unpacks the record referenced at (RefLevel, RefElement)
// into Arity fresh elements bound at tuple identifier ID.
type UnpackRecord struct {
	ID         int
	RefLevel   int
	RefElement int
	Arity      int
	Nested     Operation
}

func (u *UnpackRecord) isOperation() {}

func (u *UnpackRecord) Children() []Node {
	return []Node{u.Nested}
}

func (u *UnpackRecord) Rewrite(m Mapper) {
	u.Nested = m(u.Nested).(Operation)
}

func (u *UnpackRecord) Equal(other Node) bool {
	o, ok := other.(*UnpackRecord)
	return ok && u.ID == o.ID && u.RefLevel == o.RefLevel &&
		u.RefElement == o.RefElement && u.Arity == o.Arity && u.Nested.Equal(o.Nested)
}

func (u *UnpackRecord) Clone() Node {
	return &UnpackRecord{
		ID:         u.ID,
		RefLevel:   u.RefLevel,
		RefElement: u.RefElement,
		Arity:      u.Arity,
		Nested:     cloneOperation(u.Nested),
	}
}

func (u *UnpackRecord) print(p *printer) {
	p.line("UNPACK env(t%d, i%d) INTO t%d", u.RefLevel, u.RefElement, u.ID)
	p.nested(func() { u.Nested.print(p) })
}

func (u *UnpackRecord) String() string { return operationString(u) }

// Aggregate computes an aggregation function over the tuples of a
// relation matching Pattern and satisfying Cond, binds the result at
// (ID, 0), then executes the nested operation. Target is the
// aggregated expression; nil for COUNT.
type Aggregate struct {
	Fun      AggFun
	Target   Expression
	Relation *Relation
	Pattern  []Expression
	Cond     Condition
	ID       int
	Nested   Operation
}

func (a *Aggregate) isOperation() {}

func (a *Aggregate) Children() []Node {
	children := []Node{a.Nested}
	if a.Target != nil {
		children = append(children, a.Target)
	}
	if a.Cond != nil {
		children = append(children, a.Cond)
	}
	return appendExpressions(children, a.Pattern)
}

func (a *Aggregate) Rewrite(m Mapper) {
	a.Nested = m(a.Nested).(Operation)
	if a.Target != nil {
		a.Target = m(a.Target).(Expression)
	}
	if a.Cond != nil {
		a.Cond = m(a.Cond).(Condition)
	}
	rewriteExpressions(a.Pattern, m)
}

func (a *Aggregate) Equal(other Node) bool {
	o, ok := other.(*Aggregate)
	return ok && a.Fun == o.Fun && expressionEqual(a.Target, o.Target) &&
		a.Relation.EqualSchema(o.Relation) && expressionsEqual(a.Pattern, o.Pattern) &&
		conditionEqual(a.Cond, o.Cond) && a.ID == o.ID && a.Nested.Equal(o.Nested)
}

func (a *Aggregate) Clone() Node {
	return &Aggregate{
		Fun:      a.Fun,
		Target:   cloneExpression(a.Target),
		Relation: a.Relation,
		Pattern:  cloneExpressions(a.Pattern),
		Cond:     cloneCondition(a.Cond),
		ID:       a.ID,
		Nested:   cloneOperation(a.Nested),
	}
}

func (a *Aggregate) print(p *printer) {
	var b strings.Builder
	b.WriteString(a.Fun.String())
	b.WriteByte(' ')
	if a.Fun != AggCount && a.Target != nil {
		b.WriteString(a.Target.String())
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "AS t%d.0 IN t%d ∈ %s(%s)", a.ID, a.ID, a.Relation.Name, patternString(a.Pattern))
	if a.Cond != nil {
		fmt.Fprintf(&b, " WHERE %s", a.Cond)
	}
	p.line("%s", b.String())
	p.nested(func() { a.Nested.print(p) })
}

func (a *Aggregate) String() string { return operationString(a) }

// Filter executes the nested operation only when the condition holds.
type Filter struct {
	Cond   Condition
	Nested Operation
}

func (f *Filter) isOperation() {}

func (f *Filter) Children() []Node {
	return []Node{f.Cond, f.Nested}
}

func (f *Filter) Rewrite(m Mapper) {
	f.Cond = m(f.Cond).(Condition)
	f.Nested = m(f.Nested).(Operation)
}

func (f *Filter) Equal(other Node) bool {
	o, ok := other.(*Filter)
	return ok && f.Cond.Equal(o.Cond) && f.Nested.Equal(o.Nested)
}

func (f *Filter) Clone() Node {
	return &Filter{Cond: cloneCondition(f.Cond), Nested: cloneOperation(f.Nested)}
}

func (f *Filter) print(p *printer) {
	p.line("IF %s", f.Cond)
	p.nested(func() { f.Nested.print(p) })
}

func (f *Filter) String() string { return operationString(f) }

// Project inserts a tuple built from Values into the relation.
// Terminal: a project has no nested operation.
type Project struct {
	Relation *Relation
	Values   []Expression
}

func (pr *Project) isOperation() {}

func (pr *Project) Children() []Node {
	return appendExpressions(nil, pr.Values)
}

func (pr *Project) Rewrite(m Mapper) {
	rewriteExpressions(pr.Values, m)
}

func (pr *Project) Equal(other Node) bool {
	o, ok := other.(*Project)
	return ok && pr.Relation.EqualSchema(o.Relation) && expressionsEqual(pr.Values, o.Values)
}

func (pr *Project) Clone() Node {
	return &Project{Relation: pr.Relation, Values: cloneExpressions(pr.Values)}
}

func (pr *Project) print(p *printer) {
	p.line("PROJECT (%s) INTO %s", patternString(pr.Values), pr.Relation.Name)
}

func (pr *Project) String() string { return operationString(pr) }

// Return yields a result tuple from the enclosing subroutine.
// Terminal like Project.
type Return struct {
	Values []Expression
}

func (r *Return) isOperation() {}

func (r *Return) Children() []Node {
	return appendExpressions(nil, r.Values)
}

func (r *Return) Rewrite(m Mapper) {
	rewriteExpressions(r.Values, m)
}

func (r *Return) Equal(other Node) bool {
	o, ok := other.(*Return)
	return ok && expressionsEqual(r.Values, o.Values)
}

func (r *Return) Clone() Node {
	return &Return{Values: cloneExpressions(r.Values)}
}

func (r *Return) print(p *printer) {
	p.line("RETURN (%s)", patternString(r.Values))
}

func (r *Return) String() string { return operationString(r) }
