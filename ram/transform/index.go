package transform

import "github.com/wbrown/janus-ram/ram"

// MakeIndex converts scans over equality filters into indexed
// searches. An equality pins column e of the scanned tuple to an
// expression computable before the scan binds; every such conjunct
// moves into the search pattern and the rest stay behind as a filter.
type MakeIndex struct{}

func (MakeIndex) Name() string { return "make-index" }

func (MakeIndex) Transform(prog *ram.Program) bool {
	changed := false
	rewriteQueries(prog, func(op ram.Operation) ram.Operation {
		return rewriteTree(op, func(op ram.Operation) ram.Operation {
			out := makeIndex(op)
			if out != nil {
				changed = true
				return out
			}
			return op
		})
	})
	return changed
}

// rewriteTree applies fn along the operation spine, outermost first.
func rewriteTree(op ram.Operation, fn func(ram.Operation) ram.Operation) ram.Operation {
	op = fn(op)
	if inner := nested(op); inner != nil {
		setNested(op, rewriteTree(inner, fn))
	}
	return op
}

// makeIndex returns the indexed replacement of op, or nil when nothing
// is absorbable.
func makeIndex(op ram.Operation) ram.Operation {
	switch o := op.(type) {
	case *ram.Scan:
		f, ok := o.Nested.(*ram.Filter)
		if !ok {
			return nil
		}
		pattern := make([]ram.Expression, o.Relation.Arity)
		rest, n := absorbEqualities(f.Cond, o.ID, pattern)
		if n == 0 {
			return nil
		}
		inner := f.Nested
		if rest != nil {
			inner = &ram.Filter{Cond: rest, Nested: inner}
		}
		return &ram.IndexScan{Relation: o.Relation, ID: o.ID, Pattern: pattern, Nested: inner}

	case *ram.IndexScan:
		f, ok := o.Nested.(*ram.Filter)
		if !ok {
			return nil
		}
		rest, n := absorbEqualities(f.Cond, o.ID, o.Pattern)
		if n == 0 {
			return nil
		}
		if rest != nil {
			o.Nested = &ram.Filter{Cond: rest, Nested: f.Nested}
		} else {
			o.Nested = f.Nested
		}
		return o

	case *ram.Choice:
		pattern := make([]ram.Expression, o.Relation.Arity)
		rest, n := absorbEqualities(o.Cond, o.ID, pattern)
		if n == 0 {
			return nil
		}
		if rest == nil {
			rest = trueCondition()
		}
		return &ram.IndexChoice{Relation: o.Relation, ID: o.ID, Pattern: pattern, Cond: rest, Nested: o.Nested}

	case *ram.IndexChoice:
		rest, n := absorbEqualities(o.Cond, o.ID, o.Pattern)
		if n == 0 {
			return nil
		}
		if rest == nil {
			rest = trueCondition()
		}
		o.Cond = rest
		return o
	}
	return nil
}

// trueCondition is the always-satisfied constraint 0 = 0, used when a
// choice's condition was fully absorbed into its pattern.
func trueCondition() ram.Condition {
	return &ram.Constraint{Op: ram.CmpEQ, LHS: &ram.Number{}, RHS: &ram.Number{}}
}

// absorbEqualities moves every absorbable equality of cond into the
// pattern and returns the remaining condition (nil when all conjuncts
// moved) and the number absorbed. An equality is absorbable when one
// side reads column e of the tuple bound at id, the other side is
// computable before id binds, and slot e is still free.
func absorbEqualities(cond ram.Condition, id int, pattern []ram.Expression) (ram.Condition, int) {
	var rest []ram.Condition
	absorbed := 0
	for _, c := range ram.Conjuncts(cond) {
		elem, expr, ok := keyEquality(c, id)
		if ok && elem < len(pattern) && pattern[elem] == nil {
			pattern[elem] = expr
			absorbed++
			continue
		}
		rest = append(rest, c)
	}
	return ram.Conjoin(rest...), absorbed
}

// keyEquality decomposes an equality constraint pinning one column of
// the tuple bound at id to an earlier-level expression.
func keyEquality(cond ram.Condition, id int) (int, ram.Expression, bool) {
	c, ok := cond.(*ram.Constraint)
	if !ok || c.Op != ram.CmpEQ {
		return 0, nil, false
	}
	if elem, expr, ok := keySides(c.LHS, c.RHS, id); ok {
		return elem, expr, true
	}
	return keySides(c.RHS, c.LHS, id)
}

func keySides(access, expr ram.Expression, id int) (int, ram.Expression, bool) {
	a, ok := access.(*ram.ElementAccess)
	if !ok || a.Level != id {
		return 0, nil, false
	}
	if ram.ExpressionLevel(expr) >= id {
		return 0, nil, false
	}
	return a.Element, expr, true
}
