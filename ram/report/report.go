// Package report renders translated programs and evaluated relations
// for humans: the debug report written after translation and the
// tables the command line prints for output relations.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/wbrown/janus-ram/ram"
)

// Report accumulates titled sections of program text and writes them
// out as one document.
type Report struct {
	sections []section
}

type section struct {
	title string
	body  string
}

func New() *Report {
	return &Report{}
}

// AddSection records one titled body.
func (r *Report) AddSection(title, body string) {
	r.sections = append(r.sections, section{title: title, body: body})
}

// AddProgram records a program rendering, subroutines included.
func (r *Report) AddProgram(title string, prog *ram.Program) {
	r.AddSection(title, prog.String())
}

// WriteTo renders the report.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, s := range r.sections {
		if i > 0 {
			n, err := fmt.Fprintln(w)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err := fmt.Fprintf(w, "--- %s ---\n%s", s.title, s.body)
		total += int64(n)
		if err != nil {
			return total, err
		}
		if !strings.HasSuffix(s.body, "\n") {
			m, err := fmt.Fprintln(w)
			total += int64(m)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// RenderFile writes the report to the named file. I/O failures are
// surfaced, not swallowed; a missing report is a real failure for
// whoever asked for one.
func (r *Report) RenderFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if _, err := r.WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", path, err)
	}
	return nil
}

// Banner formats a colored stage heading for terminal output.
func Banner(stage string) string {
	return color.BlueString("==> ") + color.CyanString(stage)
}
