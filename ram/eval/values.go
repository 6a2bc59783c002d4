package eval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wbrown/janus-ram/ram"
)

func (m *Machine) evalExpr(e ram.Expression, f *frame) (ram.Domain, error) {
	switch v := e.(type) {
	case *ram.Number:
		return v.Value, nil

	case *ram.ElementAccess:
		tuple, ok := f.env[v.Level]
		if !ok {
			return 0, fmt.Errorf("eval: access to unbound tuple t%d", v.Level)
		}
		if v.Element < 0 || v.Element >= len(tuple) {
			return 0, fmt.Errorf("eval: access to element %d of %d-ary tuple t%d",
				v.Element, len(tuple), v.Level)
		}
		return tuple[v.Element], nil

	case *ram.Pack:
		elements := make([]ram.Domain, len(v.Args))
		for i, a := range v.Args {
			if a == nil {
				continue
			}
			val, err := m.evalExpr(a, f)
			if err != nil {
				return 0, err
			}
			elements[i] = val
		}
		return m.records.Pack(elements), nil

	case *ram.Intrinsic:
		args := make([]ram.Domain, len(v.Args))
		for i, a := range v.Args {
			val, err := m.evalExpr(a, f)
			if err != nil {
				return 0, err
			}
			args[i] = val
		}
		return m.applyOp(v.Operation, args)

	case *ram.Argument:
		if v.Number < 0 || v.Number >= len(f.args) {
			return 0, fmt.Errorf("eval: subroutine argument %d of %d", v.Number, len(f.args))
		}
		return f.args[v.Number], nil

	case *ram.AutoIncrement:
		m.counter++
		return m.counter - 1, nil
	}
	return 0, fmt.Errorf("eval: unsupported expression %T", e)
}

func (m *Machine) applyOp(op ram.Op, args []ram.Domain) (ram.Domain, error) {
	if len(args) != op.Arity() {
		return 0, fmt.Errorf("eval: operator %s wants %d operands, got %d",
			op.Symbol(), op.Arity(), len(args))
	}
	switch op {
	case ram.OpOrd:
		return args[0], nil
	case ram.OpNeg:
		return -args[0], nil
	case ram.OpBnot:
		return ^args[0], nil
	case ram.OpLnot:
		return boolValue(args[0] == 0), nil
	case ram.OpAdd:
		return args[0] + args[1], nil
	case ram.OpSub:
		return args[0] - args[1], nil
	case ram.OpMul:
		return args[0] * args[1], nil
	case ram.OpDiv:
		if args[1] == 0 {
			return 0, fmt.Errorf("eval: division by zero")
		}
		return args[0] / args[1], nil
	case ram.OpMod:
		if args[1] == 0 {
			return 0, fmt.Errorf("eval: modulo by zero")
		}
		return args[0] % args[1], nil
	case ram.OpExp:
		return ipow(args[0], args[1]), nil
	case ram.OpBand:
		return args[0] & args[1], nil
	case ram.OpBor:
		return args[0] | args[1], nil
	case ram.OpBxor:
		return args[0] ^ args[1], nil
	case ram.OpLand:
		return boolValue(args[0] != 0 && args[1] != 0), nil
	case ram.OpLor:
		return boolValue(args[0] != 0 || args[1] != 0), nil
	case ram.OpMax:
		if args[0] > args[1] {
			return args[0], nil
		}
		return args[1], nil
	case ram.OpMin:
		if args[0] < args[1] {
			return args[0], nil
		}
		return args[1], nil

	case ram.OpStrlen:
		s, err := m.symbol(args[0])
		if err != nil {
			return 0, err
		}
		return ram.Domain(len(s)), nil
	case ram.OpCat:
		a, err := m.symbol(args[0])
		if err != nil {
			return 0, err
		}
		b, err := m.symbol(args[1])
		if err != nil {
			return 0, err
		}
		return m.opts.Symbols.Lookup(a + b), nil
	case ram.OpSubstr:
		s, err := m.symbol(args[0])
		if err != nil {
			return 0, err
		}
		start, length := int(args[1]), int(args[2])
		if start < 0 || start > len(s) {
			return 0, fmt.Errorf("eval: substr start %d out of range for %q", start, s)
		}
		end := start + length
		if length < 0 || end > len(s) {
			end = len(s)
		}
		return m.opts.Symbols.Lookup(s[start:end]), nil
	}
	return 0, fmt.Errorf("eval: unsupported operator %s", op.Symbol())
}

func (m *Machine) evalCond(c ram.Condition, f *frame) (bool, error) {
	switch v := c.(type) {
	case *ram.Conjunction:
		ok, err := m.evalCond(v.LHS, f)
		if err != nil || !ok {
			return false, err
		}
		return m.evalCond(v.RHS, f)

	case *ram.Negation:
		ok, err := m.evalCond(v.Cond, f)
		return !ok, err

	case *ram.Constraint:
		lhs, err := m.evalExpr(v.LHS, f)
		if err != nil {
			return false, err
		}
		rhs, err := m.evalExpr(v.RHS, f)
		if err != nil {
			return false, err
		}
		return m.compare(v.Op, lhs, rhs)

	case *ram.EmptinessCheck:
		r, err := m.relation(v.Relation)
		if err != nil {
			return false, err
		}
		return r.Empty(), nil

	case *ram.ExistenceCheck:
		r, err := m.relation(v.Relation)
		if err != nil {
			return false, err
		}
		pattern, bound, err := m.evalPattern(v.Values, f)
		if err != nil {
			return false, err
		}
		if allBound(bound) {
			return r.Contains(pattern), nil
		}
		for _, tuple := range r.Tuples() {
			if matches(tuple, pattern, bound) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("eval: unsupported condition %T", c)
}

func (m *Machine) compare(op ram.CmpOp, lhs, rhs ram.Domain) (bool, error) {
	switch op {
	case ram.CmpEQ:
		return lhs == rhs, nil
	case ram.CmpNE:
		return lhs != rhs, nil
	case ram.CmpLT:
		return lhs < rhs, nil
	case ram.CmpLE:
		return lhs <= rhs, nil
	case ram.CmpGT:
		return lhs > rhs, nil
	case ram.CmpGE:
		return lhs >= rhs, nil
	}

	// The remaining comparisons read both sides as strings.
	pattern, err := m.symbol(lhs)
	if err != nil {
		return false, err
	}
	text, err := m.symbol(rhs)
	if err != nil {
		return false, err
	}
	switch op {
	case ram.CmpMatch, ram.CmpNotMatch:
		matched, err := regexp.MatchString("^("+pattern+")$", text)
		if err != nil {
			return false, fmt.Errorf("eval: bad match pattern %q: %v", pattern, err)
		}
		return matched == (op == ram.CmpMatch), nil
	case ram.CmpContains:
		return strings.Contains(text, pattern), nil
	case ram.CmpNotContains:
		return !strings.Contains(text, pattern), nil
	}
	return false, fmt.Errorf("eval: unsupported comparison %s", op.Symbol())
}

func (m *Machine) symbol(v ram.Domain) (string, error) {
	if m.opts.Symbols == nil {
		return "", fmt.Errorf("eval: string operation without a symbol table")
	}
	s, ok := m.opts.Symbols.Resolve(v)
	if !ok {
		return "", fmt.Errorf("eval: value %d is no interned string", v)
	}
	return s, nil
}

func boolValue(b bool) ram.Domain {
	if b {
		return 1
	}
	return 0
}

func allBound(bound []bool) bool {
	for _, b := range bound {
		if !b {
			return false
		}
	}
	return true
}

func ipow(base, exp ram.Domain) ram.Domain {
	if exp < 0 {
		return 0
	}
	result := ram.Domain(1)
	for ; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
	}
	return result
}
