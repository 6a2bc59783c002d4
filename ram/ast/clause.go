package ast

import (
	"fmt"
	"strings"
)

// Literal is one element of a clause body.
type Literal interface {
	fmt.Stringer
	isLiteral()
}

// Atom is a positive occurrence of a relation with its argument list.
type Atom struct {
	Name string
	Args []Argument
}

func (a *Atom) isLiteral() {}

// Arity returns the number of arguments.
func (a *Atom) Arity() int { return len(a.Args) }

func (a *Atom) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return a.Name + "(" + strings.Join(parts, ", ") + ")"
}

// NegatedAtom is a negated occurrence of a relation. All its
// variables must be bound by positive literals of the same body.
type NegatedAtom struct {
	Atom *Atom
}

func (n *NegatedAtom) isLiteral() {}

func (n *NegatedAtom) String() string { return "!" + n.Atom.String() }

// Constraint compares two argument expressions. Op is the surface
// symbol of the comparison.
type Constraint struct {
	Op  string
	LHS Argument
	RHS Argument
}

func (c *Constraint) isLiteral() {}

func (c *Constraint) String() string {
	return c.LHS.String() + " " + c.Op + " " + c.RHS.String()
}

// Clause is a single rule or fact. Num is the position of the clause
// among its relation's clauses, used to label generated subroutines.
type Clause struct {
	Head *Atom
	Body []Literal
	Num  int
}

// IsFact reports whether the clause has an empty body.
func (c *Clause) IsFact() bool { return len(c.Body) == 0 }

// Atoms returns the positive body atoms in declaration order, paired
// with their body indices.
func (c *Clause) Atoms() []*Atom {
	var atoms []*Atom
	for _, lit := range c.Body {
		if a, ok := lit.(*Atom); ok {
			atoms = append(atoms, a)
		}
	}
	return atoms
}

// Negations returns the negated body atoms in declaration order.
func (c *Clause) Negations() []*NegatedAtom {
	var negs []*NegatedAtom
	for _, lit := range c.Body {
		if n, ok := lit.(*NegatedAtom); ok {
			negs = append(negs, n)
		}
	}
	return negs
}

// Constraints returns the body constraints in declaration order.
func (c *Clause) Constraints() []*Constraint {
	var cons []*Constraint
	for _, lit := range c.Body {
		if cn, ok := lit.(*Constraint); ok {
			cons = append(cons, cn)
		}
	}
	return cons
}

func (c *Clause) String() string {
	if c.IsFact() {
		return c.Head.String() + "."
	}
	parts := make([]string, len(c.Body))
	for i, lit := range c.Body {
		parts[i] = lit.String()
	}
	return c.Head.String() + " :- " + strings.Join(parts, ", ") + "."
}
