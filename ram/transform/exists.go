package transform

import "github.com/wbrown/janus-ram/ram"

// ConvertExistenceChecks eliminates scans whose bound tuple nothing
// downstream reads. Iterating such a scan only asks "is there a
// match", so a full scan becomes a non-emptiness filter and an indexed
// search becomes a membership test on its pattern.
type ConvertExistenceChecks struct{}

func (ConvertExistenceChecks) Name() string { return "convert-existence-checks" }

func (ConvertExistenceChecks) Transform(prog *ram.Program) bool {
	changed := false
	rewriteQueries(prog, func(op ram.Operation) ram.Operation {
		return rewriteTree(op, func(op ram.Operation) ram.Operation {
			out := toExistenceCheck(op)
			if out != nil {
				changed = true
				return out
			}
			return op
		})
	})
	return changed
}

func toExistenceCheck(op ram.Operation) ram.Operation {
	switch o := op.(type) {
	case *ram.Scan:
		if ram.ReferencesLevel(o.Nested, o.ID) {
			return nil
		}
		cond := &ram.Negation{Cond: &ram.EmptinessCheck{Relation: o.Relation}}
		return &ram.Filter{Cond: cond, Nested: o.Nested}

	case *ram.IndexScan:
		if ram.ReferencesLevel(o.Nested, o.ID) {
			return nil
		}
		check := &ram.ExistenceCheck{Relation: o.Relation, Values: o.Pattern}
		return &ram.Filter{Cond: check, Nested: o.Nested}
	}
	return nil
}
