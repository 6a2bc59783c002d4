package eval

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/ast"
)

// Options configures a machine.
type Options struct {
	// Output receives PrintSize lines and timing messages. Defaults to
	// standard output.
	Output io.Writer
	// Symbols resolves interned string values for string operators,
	// I/O and rendering. Optional; string operations fail without it.
	Symbols *ast.SymbolTable
}

// Machine interprets a RAM program. The zero value is not usable;
// create machines with NewMachine.
type Machine struct {
	opts      Options
	relations map[string]*Relation
	records   *RecordTable
	counter   ram.Domain
}

func NewMachine(opts Options) *Machine {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Machine{
		opts:      opts,
		relations: make(map[string]*Relation),
		records:   NewRecordTable(),
	}
}

// Records exposes the record table, letting callers resolve packed
// references found in results.
func (m *Machine) Records() *RecordTable { return m.records }

// Relation returns the named relation's current extension.
func (m *Machine) Relation(name string) (*Relation, bool) {
	r, ok := m.relations[name]
	return r, ok
}

// errLoopExit unwinds statement execution to the innermost loop.
var errLoopExit = errors.New("loop exit")

// frame carries the per-query execution state: the tuple environment
// plus, for subroutine calls, the parameters and the result collector.
type frame struct {
	env     map[int][]ram.Domain
	args    []ram.Domain
	results *[][]ram.Domain
}

func newFrame() *frame {
	return &frame{env: make(map[int][]ram.Domain)}
}

// Execute runs the main statement of a program to completion.
func (m *Machine) Execute(prog *ram.Program) error {
	err := m.execStatement(prog.Main)
	if errors.Is(err, errLoopExit) {
		return fmt.Errorf("eval: exit statement outside any loop")
	}
	return err
}

// ExecuteSubroutine runs a named subroutine with the given parameters
// and returns the tuples it yielded.
func (m *Machine) ExecuteSubroutine(prog *ram.Program, name string, args []ram.Domain) ([][]ram.Domain, error) {
	op, ok := prog.Subroutine(name)
	if !ok {
		return nil, fmt.Errorf("eval: no subroutine %q", name)
	}
	var results [][]ram.Domain
	f := newFrame()
	f.args = args
	f.results = &results
	if err := m.execOperation(op, f); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *Machine) relation(schema *ram.Relation) (*Relation, error) {
	r, ok := m.relations[schema.Name]
	if !ok {
		return nil, fmt.Errorf("eval: relation %s does not exist", schema.Name)
	}
	return r, nil
}

func (m *Machine) execStatement(stmt ram.Statement) error {
	switch s := stmt.(type) {
	case *ram.Sequence:
		for _, sub := range s.Statements {
			if err := m.execStatement(sub); err != nil {
				return err
			}
		}
		return nil

	case *ram.Stratum:
		return m.execStatement(s.Body)

	case *ram.Create:
		if _, ok := m.relations[s.Relation.Name]; ok {
			return fmt.Errorf("eval: relation %s already exists", s.Relation.Name)
		}
		m.relations[s.Relation.Name] = NewRelation(s.Relation)
		return nil

	case *ram.Drop:
		delete(m.relations, s.Relation.Name)
		return nil

	case *ram.Clear:
		r, err := m.relation(s.Relation)
		if err != nil {
			return err
		}
		r.Clear()
		return nil

	case *ram.Merge:
		target, err := m.relation(s.Target)
		if err != nil {
			return err
		}
		source, err := m.relation(s.Source)
		if err != nil {
			return err
		}
		target.MergeFrom(source)
		return nil

	case *ram.Swap:
		first, err := m.relation(s.First)
		if err != nil {
			return err
		}
		second, err := m.relation(s.Second)
		if err != nil {
			return err
		}
		swapContents(first, second)
		return nil

	case *ram.Fact:
		r, err := m.relation(s.Relation)
		if err != nil {
			return err
		}
		f := newFrame()
		tuple := make([]ram.Domain, len(s.Values))
		for i, v := range s.Values {
			val, err := m.evalExpr(v, f)
			if err != nil {
				return err
			}
			tuple[i] = val
		}
		r.Insert(tuple)
		return nil

	case *ram.Query:
		return m.execOperation(s.Op, newFrame())

	case *ram.Loop:
		for {
			err := m.execStatement(s.Body)
			if errors.Is(err, errLoopExit) {
				return nil
			}
			if err != nil {
				return err
			}
		}

	case *ram.Exit:
		ok, err := m.evalCond(s.Cond, newFrame())
		if err != nil {
			return err
		}
		if ok {
			return errLoopExit
		}
		return nil

	case *ram.PrintSize:
		r, err := m.relation(s.Relation)
		if err != nil {
			return err
		}
		fmt.Fprintf(m.opts.Output, "%s\t%d\n", s.Relation.Name, r.Size())
		return nil

	case *ram.LogTimer:
		start := time.Now()
		err := m.execStatement(s.Body)
		fmt.Fprintf(m.opts.Output, "%s\t%s\n", s.Label, time.Since(start))
		return err

	case *ram.Load:
		r, err := m.relation(s.Relation)
		if err != nil {
			return err
		}
		return m.loadRelation(r, s.Directives)

	case *ram.Store:
		r, err := m.relation(s.Relation)
		if err != nil {
			return err
		}
		return m.storeRelation(r, s.Directives)
	}
	return fmt.Errorf("eval: unsupported statement %T", stmt)
}

func (m *Machine) execOperation(op ram.Operation, f *frame) error {
	switch o := op.(type) {
	case *ram.Scan:
		r, err := m.relation(o.Relation)
		if err != nil {
			return err
		}
		for _, tuple := range r.Tuples() {
			f.env[o.ID] = tuple
			if err := m.execOperation(o.Nested, f); err != nil {
				return err
			}
		}
		delete(f.env, o.ID)
		return nil

	case *ram.IndexScan:
		r, err := m.relation(o.Relation)
		if err != nil {
			return err
		}
		pattern, bound, err := m.evalPattern(o.Pattern, f)
		if err != nil {
			return err
		}
		for _, tuple := range r.Tuples() {
			if !matches(tuple, pattern, bound) {
				continue
			}
			f.env[o.ID] = tuple
			if err := m.execOperation(o.Nested, f); err != nil {
				return err
			}
		}
		delete(f.env, o.ID)
		return nil

	case *ram.Choice:
		r, err := m.relation(o.Relation)
		if err != nil {
			return err
		}
		for _, tuple := range r.Tuples() {
			f.env[o.ID] = tuple
			ok, err := m.evalCond(o.Cond, f)
			if err != nil {
				return err
			}
			if ok {
				err := m.execOperation(o.Nested, f)
				delete(f.env, o.ID)
				return err
			}
		}
		delete(f.env, o.ID)
		return nil

	case *ram.IndexChoice:
		r, err := m.relation(o.Relation)
		if err != nil {
			return err
		}
		pattern, bound, err := m.evalPattern(o.Pattern, f)
		if err != nil {
			return err
		}
		for _, tuple := range r.Tuples() {
			if !matches(tuple, pattern, bound) {
				continue
			}
			f.env[o.ID] = tuple
			ok, err := m.evalCond(o.Cond, f)
			if err != nil {
				return err
			}
			if ok {
				err := m.execOperation(o.Nested, f)
				delete(f.env, o.ID)
				return err
			}
		}
		delete(f.env, o.ID)
		return nil

	case *ram.UnpackRecord:
		ref, ok := f.env[o.RefLevel]
		if !ok || o.RefElement >= len(ref) {
			return fmt.Errorf("eval: unpack reads unbound tuple t%d", o.RefLevel)
		}
		elements, ok := m.records.Unpack(ref[o.RefElement])
		if !ok || len(elements) != o.Arity {
			// A nil or foreign reference matches nothing.
			return nil
		}
		f.env[o.ID] = elements
		err := m.execOperation(o.Nested, f)
		delete(f.env, o.ID)
		return err

	case *ram.Aggregate:
		return m.execAggregate(o, f)

	case *ram.Filter:
		ok, err := m.evalCond(o.Cond, f)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return m.execOperation(o.Nested, f)

	case *ram.Project:
		r, err := m.relation(o.Relation)
		if err != nil {
			return err
		}
		tuple := make([]ram.Domain, len(o.Values))
		for i, v := range o.Values {
			val, err := m.evalExpr(v, f)
			if err != nil {
				return err
			}
			tuple[i] = val
		}
		r.Insert(tuple)
		return nil

	case *ram.Return:
		if f.results == nil {
			return fmt.Errorf("eval: return outside a subroutine")
		}
		tuple := make([]ram.Domain, len(o.Values))
		for i, v := range o.Values {
			val, err := m.evalExpr(v, f)
			if err != nil {
				return err
			}
			tuple[i] = val
		}
		*f.results = append(*f.results, tuple)
		return nil
	}
	return fmt.Errorf("eval: unsupported operation %T", op)
}

func (m *Machine) execAggregate(o *ram.Aggregate, f *frame) error {
	r, err := m.relation(o.Relation)
	if err != nil {
		return err
	}
	pattern, bound, err := m.evalPattern(o.Pattern, f)
	if err != nil {
		return err
	}

	var acc ram.Domain
	count := 0
	for _, tuple := range r.Tuples() {
		if !matches(tuple, pattern, bound) {
			continue
		}
		f.env[o.ID] = tuple
		if o.Cond != nil {
			ok, err := m.evalCond(o.Cond, f)
			if err != nil {
				delete(f.env, o.ID)
				return err
			}
			if !ok {
				continue
			}
		}
		var val ram.Domain
		if o.Target != nil {
			val, err = m.evalExpr(o.Target, f)
			if err != nil {
				delete(f.env, o.ID)
				return err
			}
		}
		switch o.Fun {
		case ram.AggMin:
			if count == 0 || val < acc {
				acc = val
			}
		case ram.AggMax:
			if count == 0 || val > acc {
				acc = val
			}
		case ram.AggSum:
			acc += val
		}
		count++
	}
	delete(f.env, o.ID)

	switch o.Fun {
	case ram.AggCount:
		acc = ram.Domain(count)
	case ram.AggSum:
		// Zero over the empty set.
	default:
		if count == 0 {
			// MIN and MAX are undefined over nothing, so the match
			// produces no binding at all.
			return nil
		}
	}

	f.env[o.ID] = []ram.Domain{acc}
	err = m.execOperation(o.Nested, f)
	delete(f.env, o.ID)
	return err
}

// evalPattern evaluates the non-nil slots of a search pattern into a
// comparable tuple plus its bound mask.
func (m *Machine) evalPattern(exprs []ram.Expression, f *frame) ([]ram.Domain, []bool, error) {
	pattern := make([]ram.Domain, len(exprs))
	bound := make([]bool, len(exprs))
	for i, e := range exprs {
		if e == nil {
			continue
		}
		val, err := m.evalExpr(e, f)
		if err != nil {
			return nil, nil, err
		}
		pattern[i] = val
		bound[i] = true
	}
	return pattern, bound, nil
}
