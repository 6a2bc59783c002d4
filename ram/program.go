package ram

import (
	"sort"
	"strings"
)

// Program is a complete RAM program: a main statement plus named
// subroutines (provenance subproof procedures).
type Program struct {
	Main        Statement
	Subroutines map[string]Operation
}

// NewProgram wraps a main statement into a program.
func NewProgram(main Statement) *Program {
	return &Program{Main: main, Subroutines: make(map[string]Operation)}
}

// AddSubroutine registers a named subroutine.
func (p *Program) AddSubroutine(name string, op Operation) {
	p.Subroutines[name] = op
}

// Subroutine looks up a subroutine by name.
func (p *Program) Subroutine(name string) (Operation, bool) {
	op, ok := p.Subroutines[name]
	return op, ok
}

// SubroutineNames returns subroutine names in sorted order.
func (p *Program) SubroutineNames() []string {
	names := make([]string, 0, len(p.Subroutines))
	for name := range p.Subroutines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Program) Children() []Node {
	children := []Node{p.Main}
	for _, name := range p.SubroutineNames() {
		children = append(children, p.Subroutines[name])
	}
	return children
}

func (p *Program) Rewrite(m Mapper) {
	p.Main = m(p.Main).(Statement)
	for _, name := range p.SubroutineNames() {
		p.Subroutines[name] = m(p.Subroutines[name]).(Operation)
	}
}

func (p *Program) Equal(other Node) bool {
	o, ok := other.(*Program)
	if !ok || !p.Main.Equal(o.Main) || len(p.Subroutines) != len(o.Subroutines) {
		return false
	}
	for name, op := range p.Subroutines {
		theirs, ok := o.Subroutines[name]
		if !ok || !op.Equal(theirs) {
			return false
		}
	}
	return true
}

func (p *Program) Clone() Node {
	out := NewProgram(cloneStatement(p.Main))
	for name, op := range p.Subroutines {
		out.Subroutines[name] = cloneOperation(op)
	}
	return out
}

func (p *Program) String() string {
	var b strings.Builder
	b.WriteString("PROGRAM\n")
	b.WriteString(indent(p.Main.String(), 1))
	for _, name := range p.SubroutineNames() {
		b.WriteString("SUBROUTINE " + name + "\n")
		b.WriteString(indent(p.Subroutines[name].String(), 1))
	}
	b.WriteString("END PROGRAM\n")
	return b.String()
}

func indent(s string, tabs int) string {
	pad := strings.Repeat(" ", tabs)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
