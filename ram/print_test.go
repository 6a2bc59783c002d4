package ram

import (
	"strings"
	"testing"
)

func TestOperationRendering(t *testing.T) {
	op := sampleScan()
	text := op.String()

	for _, want := range []string{
		"FOR t0 IN edge",
		"IF env(t0, i0) < number(10)",
		"PROJECT (env(t0, i0), env(t0, i1)) INTO path",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendering missing %q:\n%s", want, text)
		}
	}

	// Nesting is one indentation step per level.
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), text)
	}
	if !strings.HasPrefix(lines[1], " ") || !strings.HasPrefix(lines[2], "  ") {
		t.Errorf("nested lines not indented:\n%s", text)
	}
}

func TestStatementRendering(t *testing.T) {
	edge := &Relation{Name: "edge", Arity: 2, Attributes: []string{"from", "to"}, Types: []string{"number", "number"}}
	seq := &Sequence{}
	seq.Add(
		&Create{Relation: edge},
		&Load{Relation: edge, Directives: IODirectives{Directory: "facts", Extension: ".facts"}},
		&Merge{Target: NewRelation("delta_edge", 2), Source: edge},
	)

	text := seq.String()
	for _, want := range []string{
		"CREATE edge(from:number, to:number)",
		"LOAD edge FROM facts/edge.facts",
		"MERGE edge INTO delta_edge",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendering missing %q:\n%s", want, text)
		}
	}
}

func TestProgramSubroutineOrder(t *testing.T) {
	prog := NewProgram(&Sequence{})
	prog.AddSubroutine("b_0_subproof", &Return{})
	prog.AddSubroutine("a_0_subproof", &Return{})

	names := prog.SubroutineNames()
	if len(names) != 2 || names[0] != "a_0_subproof" || names[1] != "b_0_subproof" {
		t.Errorf("subroutine names not sorted: %v", names)
	}
}
