package transform

import "github.com/wbrown/janus-ram/ram"

// HoistConditions dissolves every filter of a query and reattaches
// each conjunct at the shallowest level where all tuples it reads are
// bound. Conditions over constants float above the outermost loop.
// Hoisting runs before index creation so that every equality sits
// directly under the scan it can constrain.
type HoistConditions struct{}

func (HoistConditions) Name() string { return "hoist-conditions" }

func (HoistConditions) Transform(prog *ram.Program) bool {
	changed := false
	rewriteQueries(prog, func(op ram.Operation) ram.Operation {
		before := op.Clone().(ram.Operation)
		out, floating := hoist(op)
		if len(floating) > 0 {
			out = &ram.Filter{Cond: ram.Conjoin(floating...), Nested: out}
		}
		if !out.Equal(before) {
			changed = true
		}
		return out
	})
	return changed
}

// hoist rebuilds the operation tree bottom-up, returning the rewritten
// operation along with the conditions still free to float above it. A
// condition stops at the first binder, walking outward, whose tuple it
// references.
func hoist(op ram.Operation) (ram.Operation, []ram.Condition) {
	if f, ok := op.(*ram.Filter); ok {
		inner, floating := hoist(f.Nested)
		return inner, append(ram.Conjuncts(f.Cond), floating...)
	}

	inner := nested(op)
	if inner == nil {
		return op, nil
	}
	rebuilt, floating := hoist(inner)

	id, binds := binderID(op)
	if !binds {
		setNested(op, rebuilt)
		return op, floating
	}

	var keep, float []ram.Condition
	for _, c := range floating {
		if ram.ReferencesLevel(c, id) {
			keep = append(keep, c)
		} else {
			float = append(float, c)
		}
	}
	if len(keep) > 0 {
		rebuilt = &ram.Filter{Cond: ram.Conjoin(keep...), Nested: rebuilt}
	}
	setNested(op, rebuilt)
	return op, float
}
