package eval

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/analysis"
)

// separatorFor picks the column separator from the file extension:
// comma for ".csv", tab otherwise.
func separatorFor(d ram.IODirectives) string {
	if d.Extension == ".csv" {
		return ","
	}
	return "\t"
}

// loadRelation reads tuples from the file the directives locate,
// interning symbol-typed columns.
func (m *Machine) loadRelation(r *Relation, d ram.IODirectives) error {
	path := d.Path(r.schema.Name)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("eval: load %s: %w", r.schema.Name, err)
	}
	defer file.Close()

	sep := separatorFor(d)
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, sep)
		if len(fields) != r.schema.Arity {
			return fmt.Errorf("eval: %s:%d: expected %d fields, got %d",
				path, line, r.schema.Arity, len(fields))
		}
		tuple := make([]ram.Domain, len(fields))
		for i, field := range fields {
			val, err := m.parseField(r.schema, i, field)
			if err != nil {
				return fmt.Errorf("eval: %s:%d: %w", path, line, err)
			}
			tuple[i] = val
		}
		r.Insert(tuple)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("eval: load %s: %w", r.schema.Name, err)
	}
	return nil
}

func (m *Machine) parseField(schema *ram.Relation, i int, field string) (ram.Domain, error) {
	if columnType(schema, i) == analysis.TypeSymbol {
		if m.opts.Symbols == nil {
			return 0, fmt.Errorf("symbol column %d without a symbol table", i)
		}
		return m.opts.Symbols.Lookup(field), nil
	}
	n, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q in column %d", field, i)
	}
	return ram.Domain(n), nil
}

// storeRelation writes the relation's tuples to the file the
// directives locate, resolving symbol-typed columns back to text.
func (m *Machine) storeRelation(r *Relation, d ram.IODirectives) error {
	path := d.Path(r.schema.Name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("eval: store %s: %w", r.schema.Name, err)
	}
	defer file.Close()

	sep := separatorFor(d)
	w := bufio.NewWriter(file)
	for _, tuple := range r.Tuples() {
		for i, v := range tuple {
			if i > 0 {
				w.WriteString(sep)
			}
			w.WriteString(m.formatField(r.schema, i, v))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("eval: store %s: %w", r.schema.Name, err)
	}
	return nil
}

func (m *Machine) formatField(schema *ram.Relation, i int, v ram.Domain) string {
	if columnType(schema, i) == analysis.TypeSymbol && m.opts.Symbols != nil {
		if s, ok := m.opts.Symbols.Resolve(v); ok {
			return s
		}
	}
	return strconv.FormatInt(v, 10)
}

func columnType(schema *ram.Relation, i int) string {
	if i < len(schema.Types) {
		return schema.Types[i]
	}
	return analysis.TypeNumber
}
