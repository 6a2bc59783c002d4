package ast

import (
	"fmt"
	"strings"
)

// Argument is an expression appearing in an atom, a constraint or a
// clause head.
type Argument interface {
	fmt.Stringer
	isArgument()
}

// Variable is a named logic variable.
type Variable struct {
	Name string
}

func (v *Variable) isArgument() {}

func (v *Variable) String() string { return v.Name }

// Unnamed is the wildcard placeholder "_".
type Unnamed struct{}

func (u *Unnamed) isArgument() {}

func (u *Unnamed) String() string { return "_" }

// Constant is a literal domain value: a number, or the interned index
// of a string. Text preserves the source lexeme for display.
type Constant struct {
	Value int64
	Text  string
}

func (c *Constant) isArgument() {}

func (c *Constant) String() string {
	if c.Text != "" {
		return c.Text
	}
	return fmt.Sprintf("%d", c.Value)
}

// RecordInit constructs a record from its arguments. ID is a stable
// small integer assigned at parse time, used to key translation-time
// side tables without relying on node addresses.
type RecordInit struct {
	ID   int
	Args []Argument
}

func (r *RecordInit) isArgument() {}

func (r *RecordInit) String() string {
	parts := make([]string, len(r.Args))
	for i, a := range r.Args {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AggKind identifies an aggregation function at the source level.
type AggKind int

const (
	AggMin AggKind = iota
	AggMax
	AggCount
	AggSum
)

// String returns the surface keyword of the aggregation function.
func (k AggKind) String() string {
	switch k {
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	}
	return "?"
}

// Aggregator is an aggregate expression: a function applied to a
// target expression over the matches of a body atom, optionally
// restricted by constraints. ID is assigned at parse time like
// RecordInit.ID. Target is nil for count.
type Aggregator struct {
	ID          int
	Fun         AggKind
	Target      Argument
	Atom        *Atom
	Constraints []*Constraint
}

func (a *Aggregator) isArgument() {}

func (a *Aggregator) String() string {
	var b strings.Builder
	b.WriteString(a.Fun.String())
	if a.Target != nil {
		b.WriteByte(' ')
		b.WriteString(a.Target.String())
	}
	b.WriteString(" : ")
	if len(a.Constraints) == 0 {
		b.WriteString(a.Atom.String())
	} else {
		b.WriteString("{ " + a.Atom.String())
		for _, c := range a.Constraints {
			b.WriteString(", " + c.String())
		}
		b.WriteString(" }")
	}
	return b.String()
}

// SubroutineArgument references the n-th parameter of a generated
// subroutine, numbered from zero.
type SubroutineArgument struct {
	Number int
}

func (s *SubroutineArgument) isArgument() {}

func (s *SubroutineArgument) String() string { return fmt.Sprintf("arg(%d)", s.Number) }

// Counter is the "$" auto-increment expression.
type Counter struct{}

func (c *Counter) isArgument() {}

func (c *Counter) String() string { return "$" }

// Functor applies an intrinsic operator, identified by its surface
// symbol, to its operands.
type Functor struct {
	Op   string
	Args []Argument
}

func (f *Functor) isArgument() {}

func (f *Functor) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	switch f.Op {
	case "+", "-", "*", "/", "%", "^":
		if len(parts) == 2 {
			return "(" + parts[0] + " " + f.Op + " " + parts[1] + ")"
		}
		if len(parts) == 1 {
			return "(" + f.Op + parts[0] + ")"
		}
	}
	return f.Op + "(" + strings.Join(parts, ", ") + ")"
}
