package ram

import (
	"fmt"
	"strings"
)

// printer accumulates an indented textual rendering of operation and
// statement trees.
type printer struct {
	b   strings.Builder
	tab int
}

func (p *printer) line(format string, args ...interface{}) {
	p.b.WriteString(strings.Repeat(" ", p.tab))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *printer) nested(fn func()) {
	p.tab++
	fn()
	p.tab--
}

func operationString(op Operation) string {
	p := &printer{}
	op.print(p)
	return p.b.String()
}

func statementString(s Statement) string {
	p := &printer{}
	s.print(p)
	return p.b.String()
}

// patternString renders a range or value pattern with wildcards for
// unset entries.
func patternString(values []Expression) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			parts[i] = "_"
		} else {
			parts[i] = v.String()
		}
	}
	return strings.Join(parts, ",")
}

// indexString renders the bound columns of a range pattern as equality
// terms, the way an index search reports the key it probes.
func indexString(rel *Relation, id int, pattern []Expression) string {
	var parts []string
	for i, v := range pattern {
		if v == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("t%d.%s = %s", id, rel.Attribute(i), v))
	}
	return strings.Join(parts, " and ")
}
