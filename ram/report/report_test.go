package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/analysis"
	"github.com/wbrown/janus-ram/ram/ast"
	"github.com/wbrown/janus-ram/ram/eval"
)

func TestReportSections(t *testing.T) {
	r := New()
	r.AddSection("first", "alpha\n")
	r.AddSection("second", "beta")

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)

	assert.Equal(t, "--- first ---\nalpha\n\n--- second ---\nbeta\n", buf.String())
}

func TestReportAddProgram(t *testing.T) {
	edge := ram.NewRelation("edge", 2)
	prog := ram.NewProgram(&ram.Create{Relation: edge})

	r := New()
	r.AddProgram("translated", prog)

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "--- translated ---")
	assert.Contains(t, buf.String(), "CREATE edge")
}

func TestReportRenderFile(t *testing.T) {
	r := New()
	r.AddSection("only", "body\n")

	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, r.RenderFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "--- only ---\nbody\n", string(data))

	err = r.RenderFile(filepath.Join(t.TempDir(), "missing", "report.txt"))
	assert.Error(t, err)
}

func TestRenderRelation(t *testing.T) {
	symbols := ast.NewSymbolTable()
	alice := symbols.Lookup("alice")

	schema := &ram.Relation{
		Name:       "person",
		Arity:      2,
		Attributes: []string{"id", "name"},
		Types:      []string{analysis.TypeNumber, analysis.TypeSymbol},
	}
	rel := eval.NewRelation(schema)
	rel.Insert([]ram.Domain{7, alice})

	var buf bytes.Buffer
	require.NoError(t, RenderRelation(&buf, rel, symbols))

	out := buf.String()
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "1 tuples")
}

func TestBannerContainsStage(t *testing.T) {
	assert.Contains(t, Banner("evaluating"), "evaluating")
}
