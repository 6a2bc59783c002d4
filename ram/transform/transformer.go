// Package transform rewrites RAM programs in place: hoisting filter
// conditions to the shallowest loop level where they are checkable,
// turning filtered scans into indexed searches, and replacing scans
// whose tuples go unused by existence tests or choices. Every pass is
// idempotent, so a pipeline runs its passes to a fixpoint.
//
// File organization:
//   - transformer.go: the Transformer interface and pass pipeline
//   - hoist.go: condition hoisting
//   - index.go: index creation from equality filters
//   - exists.go: existence-check conversion of unused scans
//   - choice.go: scan-to-choice conversion
package transform

import "github.com/wbrown/janus-ram/ram"

// Transformer is a single rewriting pass over a whole program.
// Transform reports whether it changed anything.
type Transformer interface {
	Name() string
	Transform(prog *ram.Program) bool
}

// Pipeline runs a pass sequence repeatedly until a full round changes
// nothing.
type Pipeline struct {
	passes []Transformer
}

func NewPipeline(passes ...Transformer) *Pipeline {
	return &Pipeline{passes: passes}
}

func (p *Pipeline) Name() string { return "pipeline" }

func (p *Pipeline) Transform(prog *ram.Program) bool {
	changed := false
	for round := true; round; {
		round = false
		for _, pass := range p.passes {
			if pass.Transform(prog) {
				round = true
				changed = true
			}
		}
	}
	return changed
}

// Standard returns the default pass order: hoist first so equality
// conditions sit directly under the scans they constrain, then index
// creation, then the scan eliminations.
func Standard() *Pipeline {
	return NewPipeline(
		HoistConditions{},
		MakeIndex{},
		ConvertExistenceChecks{},
		ConvertChoices{},
	)
}

// rewriteQueries applies fn to the operation tree of every query
// statement and every subroutine of the program.
func rewriteQueries(prog *ram.Program, fn func(ram.Operation) ram.Operation) {
	var m ram.Mapper
	m = func(n ram.Node) ram.Node {
		switch v := n.(type) {
		case *ram.Query:
			v.Op = fn(v.Op)
			return v
		case ram.Statement:
			v.Rewrite(m)
			return v
		}
		return n
	}
	prog.Main = m(prog.Main).(ram.Statement)
	for name, op := range prog.Subroutines {
		prog.Subroutines[name] = fn(op)
	}
}

// binderID returns the tuple identifier an operation binds, or false
// for non-binding operations.
func binderID(op ram.Operation) (int, bool) {
	switch o := op.(type) {
	case *ram.Scan:
		return o.ID, true
	case *ram.IndexScan:
		return o.ID, true
	case *ram.Choice:
		return o.ID, true
	case *ram.IndexChoice:
		return o.ID, true
	case *ram.UnpackRecord:
		return o.ID, true
	case *ram.Aggregate:
		return o.ID, true
	}
	return 0, false
}

// nested returns the operation nested inside op, or nil for terminals.
func nested(op ram.Operation) ram.Operation {
	switch o := op.(type) {
	case *ram.Scan:
		return o.Nested
	case *ram.IndexScan:
		return o.Nested
	case *ram.Choice:
		return o.Nested
	case *ram.IndexChoice:
		return o.Nested
	case *ram.UnpackRecord:
		return o.Nested
	case *ram.Aggregate:
		return o.Nested
	case *ram.Filter:
		return o.Nested
	}
	return nil
}

// setNested replaces the nested operation of op. Calling it on a
// terminal is a bug in the pass.
func setNested(op, inner ram.Operation) {
	switch o := op.(type) {
	case *ram.Scan:
		o.Nested = inner
	case *ram.IndexScan:
		o.Nested = inner
	case *ram.Choice:
		o.Nested = inner
	case *ram.IndexChoice:
		o.Nested = inner
	case *ram.UnpackRecord:
		o.Nested = inner
	case *ram.Aggregate:
		o.Nested = inner
	case *ram.Filter:
		o.Nested = inner
	default:
		panic("transform: operation has no nested operation")
	}
}
