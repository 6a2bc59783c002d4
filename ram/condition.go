package ram

import (
	"fmt"
	"strings"
)

// Conjunction is the logical conjunction of two conditions.
type Conjunction struct {
	LHS Condition
	RHS Condition
}

func (c *Conjunction) isCondition() {}

func (c *Conjunction) Children() []Node {
	return []Node{c.LHS, c.RHS}
}

func (c *Conjunction) Rewrite(m Mapper) {
	c.LHS = m(c.LHS).(Condition)
	c.RHS = m(c.RHS).(Condition)
}

func (c *Conjunction) Equal(other Node) bool {
	o, ok := other.(*Conjunction)
	return ok && c.LHS.Equal(o.LHS) && c.RHS.Equal(o.RHS)
}

func (c *Conjunction) Clone() Node {
	return &Conjunction{LHS: cloneCondition(c.LHS), RHS: cloneCondition(c.RHS)}
}

func (c *Conjunction) String() string {
	return fmt.Sprintf("%s and %s", c.LHS, c.RHS)
}

// Conjoin combines conditions into a left-leaning conjunction,
// ignoring nil entries. Returns nil when no condition remains.
func Conjoin(conds ...Condition) Condition {
	var out Condition
	for _, c := range conds {
		if c == nil {
			continue
		}
		if out == nil {
			out = c
		} else {
			out = &Conjunction{LHS: out, RHS: c}
		}
	}
	return out
}

// Conjuncts flattens a conjunction tree into its leaf conditions in
// left-to-right order.
func Conjuncts(c Condition) []Condition {
	if c == nil {
		return nil
	}
	if conj, ok := c.(*Conjunction); ok {
		return append(Conjuncts(conj.LHS), Conjuncts(conj.RHS)...)
	}
	return []Condition{c}
}

// Negation inverts a condition.
type Negation struct {
	Cond Condition
}

func (n *Negation) isCondition() {}

func (n *Negation) Children() []Node {
	return []Node{n.Cond}
}

func (n *Negation) Rewrite(m Mapper) {
	n.Cond = m(n.Cond).(Condition)
}

func (n *Negation) Equal(other Node) bool {
	o, ok := other.(*Negation)
	return ok && n.Cond.Equal(o.Cond)
}

func (n *Negation) Clone() Node {
	return &Negation{Cond: cloneCondition(n.Cond)}
}

func (n *Negation) String() string {
	return fmt.Sprintf("not %s", n.Cond)
}

// Constraint compares two expressions with a binary constraint
// operator.
type Constraint struct {
	Op  CmpOp
	LHS Expression
	RHS Expression
}

func (c *Constraint) isCondition() {}

func (c *Constraint) Children() []Node {
	return []Node{c.LHS, c.RHS}
}

func (c *Constraint) Rewrite(m Mapper) {
	c.LHS = m(c.LHS).(Expression)
	c.RHS = m(c.RHS).(Expression)
}

func (c *Constraint) Equal(other Node) bool {
	o, ok := other.(*Constraint)
	return ok && c.Op == o.Op && c.LHS.Equal(o.LHS) && c.RHS.Equal(o.RHS)
}

func (c *Constraint) Clone() Node {
	return &Constraint{Op: c.Op, LHS: cloneExpression(c.LHS), RHS: cloneExpression(c.RHS)}
}

func (c *Constraint) String() string {
	return fmt.Sprintf("%s %s %s", c.LHS, c.Op.Symbol(), c.RHS)
}

// EmptinessCheck holds iff the relation currently contains no tuples.
type EmptinessCheck struct {
	Relation *Relation
}

func (e *EmptinessCheck) isCondition() {}

func (e *EmptinessCheck) Children() []Node { return nil }

func (e *EmptinessCheck) Rewrite(m Mapper) {}

func (e *EmptinessCheck) Equal(other Node) bool {
	o, ok := other.(*EmptinessCheck)
	return ok && e.Relation.EqualSchema(o.Relation)
}

func (e *EmptinessCheck) Clone() Node {
	return &EmptinessCheck{Relation: e.Relation}
}

func (e *EmptinessCheck) String() string {
	return fmt.Sprintf("(%s = ∅)", e.Relation.Name)
}

// ExistenceCheck holds iff the relation contains a tuple matching the
// value pattern; nil entries match any element.
type ExistenceCheck struct {
	Relation *Relation
	Values   []Expression
}

func (e *ExistenceCheck) isCondition() {}

func (e *ExistenceCheck) Children() []Node {
	return appendExpressions(nil, e.Values)
}

func (e *ExistenceCheck) Rewrite(m Mapper) {
	rewriteExpressions(e.Values, m)
}

func (e *ExistenceCheck) Equal(other Node) bool {
	o, ok := other.(*ExistenceCheck)
	return ok && e.Relation.EqualSchema(o.Relation) && expressionsEqual(e.Values, o.Values)
}

func (e *ExistenceCheck) Clone() Node {
	return &ExistenceCheck{Relation: e.Relation, Values: cloneExpressions(e.Values)}
}

func (e *ExistenceCheck) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		if v == nil {
			parts[i] = "_"
		} else {
			parts[i] = v.String()
		}
	}
	return fmt.Sprintf("(%s) ∈ %s", strings.Join(parts, ","), e.Relation.Name)
}
