package ram

import (
	"fmt"
	"strings"
)

// ElementAccess references one element of a tuple bound by an
// enclosing search operation. Level identifies the binder, Element the
// position within its tuple. Name is a display-only attribute label
// and does not participate in equality beyond exact match of the
// rendered form.
type ElementAccess struct {
	Level   int
	Element int
	Name    string
}

// NewElementAccess builds an element access without a display name.
func NewElementAccess(level, element int) *ElementAccess {
	return &ElementAccess{Level: level, Element: element}
}

func (e *ElementAccess) isExpression() {}

func (e *ElementAccess) Children() []Node { return nil }

func (e *ElementAccess) Rewrite(m Mapper) {}

func (e *ElementAccess) Equal(other Node) bool {
	o, ok := other.(*ElementAccess)
	if !ok {
		return false
	}
	return e.Level == o.Level && e.Element == o.Element && e.Name == o.Name
}

func (e *ElementAccess) Clone() Node {
	c := *e
	return &c
}

func (e *ElementAccess) String() string {
	if e.Name == "" {
		return fmt.Sprintf("env(t%d, i%d)", e.Level, e.Element)
	}
	return fmt.Sprintf("t%d.%s", e.Level, e.Name)
}

// Number is a literal domain value: the integer encoding of a number
// or the interned index of a string.
type Number struct {
	Value Domain
}

func (n *Number) isExpression() {}

func (n *Number) Children() []Node { return nil }

func (n *Number) Rewrite(m Mapper) {}

func (n *Number) Equal(other Node) bool {
	o, ok := other.(*Number)
	return ok && n.Value == o.Value
}

func (n *Number) Clone() Node {
	c := *n
	return &c
}

func (n *Number) String() string {
	return fmt.Sprintf("number(%d)", n.Value)
}

// Pack builds a record from its arguments. A nil argument is an
// unnamed slot ("don't care").
type Pack struct {
	Args []Expression
}

func (p *Pack) isExpression() {}

func (p *Pack) Children() []Node {
	return appendExpressions(nil, p.Args)
}

func (p *Pack) Rewrite(m Mapper) {
	rewriteExpressions(p.Args, m)
}

func (p *Pack) Equal(other Node) bool {
	o, ok := other.(*Pack)
	return ok && expressionsEqual(p.Args, o.Args)
}

func (p *Pack) Clone() Node {
	return &Pack{Args: cloneExpressions(p.Args)}
}

func (p *Pack) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, a := range p.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		if a == nil {
			b.WriteByte('_')
		} else {
			b.WriteString(a.String())
		}
	}
	b.WriteByte(']')
	return b.String()
}

// Intrinsic applies a built-in operator to its operands. Operands are
// always present; wildcards never reach an operator application.
type Intrinsic struct {
	Operation Op
	Args      []Expression
}

func (in *Intrinsic) isExpression() {}

func (in *Intrinsic) Children() []Node {
	return appendExpressions(nil, in.Args)
}

func (in *Intrinsic) Rewrite(m Mapper) {
	rewriteExpressions(in.Args, m)
}

func (in *Intrinsic) Equal(other Node) bool {
	o, ok := other.(*Intrinsic)
	return ok && in.Operation == o.Operation && expressionsEqual(in.Args, o.Args)
}

func (in *Intrinsic) Clone() Node {
	return &Intrinsic{Operation: in.Operation, Args: cloneExpressions(in.Args)}
}

func (in *Intrinsic) String() string {
	parts := make([]string, len(in.Args))
	for i, a := range in.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", in.Operation.Symbol(), strings.Join(parts, ","))
}

// Argument references the n-th parameter of the enclosing subroutine,
// numbered from zero.
type Argument struct {
	Number int
}

func (a *Argument) isExpression() {}

func (a *Argument) Children() []Node { return nil }

func (a *Argument) Rewrite(m Mapper) {}

func (a *Argument) Equal(other Node) bool {
	o, ok := other.(*Argument)
	return ok && a.Number == o.Number
}

func (a *Argument) Clone() Node {
	c := *a
	return &c
}

func (a *Argument) String() string {
	return fmt.Sprintf("arg(%d)", a.Number)
}

// AutoIncrement yields the current value of the machine's monotonic
// counter and advances it. Used for provenance numbering.
type AutoIncrement struct{}

func (a *AutoIncrement) isExpression() {}

func (a *AutoIncrement) Children() []Node { return nil }

func (a *AutoIncrement) Rewrite(m Mapper) {}

func (a *AutoIncrement) Equal(other Node) bool {
	_, ok := other.(*AutoIncrement)
	return ok
}

func (a *AutoIncrement) Clone() Node {
	return &AutoIncrement{}
}

func (a *AutoIncrement) String() string {
	return "autoinc()"
}
