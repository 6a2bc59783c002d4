// Package ram defines the Relational Algebra Machine intermediate
// representation: an imperative program of nested relation searches,
// filters and projections that the translate package lowers Datalog
// clauses into.
//
// File organization:
//   - node.go: the Node interface shared by every RAM tree element
//   - expression.go: value expressions (element access, constants, packs, operators)
//   - condition.go: boolean conditions used by filters and aggregates
//   - operation.go: loop-nest operations (scan, index scan, aggregate, project)
//   - statement.go: sequencing statements (create, load, loop, stratum)
//   - program.go: the top-level Program container
//   - operators.go: intrinsic operator codes and their print symbols
//   - keys.go: range-pattern key extraction for index searches
//   - levels.go: level analyses over expressions and conditions
//   - visit.go: generic tree traversal
package ram

// Node is the common interface of every element of a RAM program tree.
// Equality is structural: two nodes are equal iff they are the same
// variant and their children are recursively equal. Clone produces a
// fully independent deep copy. Nodes never hold back-references to
// their parents; ownership runs strictly parent to child.
type Node interface {
	// Children returns the direct owned children of this node only,
	// not transitive descendants. Optional child slots that are unset
	// (wildcard pattern entries, absent conditions) are omitted.
	Children() []Node

	// Rewrite replaces every direct child c with m(c). The mapper must
	// return a node of a type valid for the child's slot; a violation
	// is a bug in the calling pass and panics. Unset optional slots
	// are not visited.
	Rewrite(m Mapper)

	// Equal reports structural equality with another node.
	Equal(other Node) bool

	// Clone returns an independent deep copy. Relation schemas are
	// shared between a node and its clone; they are immutable.
	Clone() Node

	String() string
}

// Mapper rewrites a subtree, returning either the node it was given or
// a replacement. Once a subtree has been handed to a mapper the caller
// must treat it as moved; the mapper owns it.
type Mapper func(Node) Node

// Expression is a RAM value expression.
type Expression interface {
	Node
	isExpression()
}

// Condition is a boolean condition evaluated against the current
// tuple environment.
type Condition interface {
	Node
	isCondition()
}

// Operation is one level of a loop nest. Every operation except the
// terminals (Project, Return) owns exactly one nested operation.
type Operation interface {
	Node
	isOperation()
	print(p *printer)
}

// Statement is a top-level sequencing construct.
type Statement interface {
	Node
	isStatement()
	print(p *printer)
}

// nil-safe helpers used by the variant implementations below. Optional
// slots (wildcards in packs and range patterns) hold nil expressions.

func cloneExpression(e Expression) Expression {
	if e == nil {
		return nil
	}
	return e.Clone().(Expression)
}

func cloneExpressions(exprs []Expression) []Expression {
	if exprs == nil {
		return nil
	}
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		out[i] = cloneExpression(e)
	}
	return out
}

func cloneCondition(c Condition) Condition {
	if c == nil {
		return nil
	}
	return c.Clone().(Condition)
}

func cloneOperation(op Operation) Operation {
	if op == nil {
		return nil
	}
	return op.Clone().(Operation)
}

func cloneStatement(s Statement) Statement {
	if s == nil {
		return nil
	}
	return s.Clone().(Statement)
}

func expressionEqual(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func expressionsEqual(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !expressionEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func conditionEqual(a, b Condition) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func appendExpressions(children []Node, exprs []Expression) []Node {
	for _, e := range exprs {
		if e != nil {
			children = append(children, e)
		}
	}
	return children
}

func rewriteExpressions(exprs []Expression, m Mapper) {
	for i, e := range exprs {
		if e != nil {
			exprs[i] = m(e).(Expression)
		}
	}
}
