package ram

// ExpressionLevel returns the highest tuple identifier referenced by
// any element access within the expression, or -1 if the expression
// references no tuple at all. An expression is evaluable once the
// binder at that level is in scope.
func ExpressionLevel(e Expression) int {
	level := -1
	Walk(e, func(n Node) {
		if access, ok := n.(*ElementAccess); ok && access.Level > level {
			level = access.Level
		}
	})
	return level
}

// ConditionLevel returns the highest tuple identifier referenced by
// the condition, or -1 for a constant condition.
func ConditionLevel(c Condition) int {
	level := -1
	Walk(c, func(n Node) {
		if access, ok := n.(*ElementAccess); ok && access.Level > level {
			level = access.Level
		}
	})
	return level
}

// IsConstant reports whether the expression evaluates to the same
// value in every tuple environment.
func IsConstant(e Expression) bool {
	switch e := e.(type) {
	case *Number:
		return true
	case *Intrinsic:
		for _, a := range e.Args {
			if !IsConstant(a) {
				return false
			}
		}
		return true
	case *Pack:
		for _, a := range e.Args {
			if a != nil && !IsConstant(a) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ReferencesLevel reports whether any node of the subtree reads a
// tuple bound at the given level, either through an element access or
// through a record unpack of a reference at that level.
func ReferencesLevel(n Node, level int) bool {
	found := false
	Walk(n, func(c Node) {
		switch c := c.(type) {
		case *ElementAccess:
			if c.Level == level {
				found = true
			}
		case *UnpackRecord:
			if c.RefLevel == level {
				found = true
			}
		}
	})
	return found
}
