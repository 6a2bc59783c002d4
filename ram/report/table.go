package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/janus-ram/ram/analysis"
	"github.com/wbrown/janus-ram/ram/ast"
	"github.com/wbrown/janus-ram/ram/eval"
)

// RenderRelation writes a relation's tuples as a markdown table with
// one column per attribute, resolving symbol-typed values back to
// their text.
func RenderRelation(w io.Writer, rel *eval.Relation, symbols *ast.SymbolTable) error {
	schema := rel.Schema()

	alignment := make([]tw.Align, schema.Arity)
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	headers := make([]string, schema.Arity)
	for i := range headers {
		headers[i] = schema.Attribute(i)
	}
	table.Header(headers)

	for _, tuple := range rel.Tuples() {
		row := make([]string, len(tuple))
		for i, v := range tuple {
			row[i] = formatValue(schema.Types, i, v, symbols)
		}
		table.Append(row)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("report: render %s: %w", schema.Name, err)
	}
	_, err := fmt.Fprintf(w, "\n%d tuples\n", rel.Size())
	return err
}

func formatValue(types []string, i int, v int64, symbols *ast.SymbolTable) string {
	if i < len(types) && types[i] == analysis.TypeSymbol && symbols != nil {
		if s, ok := symbols.Resolve(v); ok {
			return s
		}
	}
	return strconv.FormatInt(v, 10)
}
