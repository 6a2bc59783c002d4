package transform

import "github.com/wbrown/janus-ram/ram"

// ConvertChoices replaces scans that only test a condition with
// choices. When the continuation under a scan's filter never reads the
// bound tuple, any one satisfying tuple is as good as all of them, so
// the iteration can stop at the first match.
type ConvertChoices struct{}

func (ConvertChoices) Name() string { return "convert-choices" }

func (ConvertChoices) Transform(prog *ram.Program) bool {
	changed := false
	rewriteQueries(prog, func(op ram.Operation) ram.Operation {
		return rewriteTree(op, func(op ram.Operation) ram.Operation {
			out := toChoice(op)
			if out != nil {
				changed = true
				return out
			}
			return op
		})
	})
	return changed
}

func toChoice(op ram.Operation) ram.Operation {
	switch o := op.(type) {
	case *ram.Scan:
		f, ok := o.Nested.(*ram.Filter)
		if !ok || !ram.ReferencesLevel(f.Cond, o.ID) || ram.ReferencesLevel(f.Nested, o.ID) {
			return nil
		}
		return &ram.Choice{Relation: o.Relation, ID: o.ID, Cond: f.Cond, Nested: f.Nested}

	case *ram.IndexScan:
		f, ok := o.Nested.(*ram.Filter)
		if !ok || !ram.ReferencesLevel(f.Cond, o.ID) || ram.ReferencesLevel(f.Nested, o.ID) {
			return nil
		}
		return &ram.IndexChoice{Relation: o.Relation, ID: o.ID, Pattern: o.Pattern, Cond: f.Cond, Nested: f.Nested}
	}
	return nil
}
