package translate

import (
	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/ast"
)

// functorOp resolves a surface operator symbol and argument count to
// the intrinsic operator code. The minus sign is the only symbol that
// is arity-overloaded.
func functorOp(symbol string, arity int) (ram.Op, bool) {
	switch symbol {
	case "ord":
		return ram.OpOrd, arity == 1
	case "strlen":
		return ram.OpStrlen, arity == 1
	case "-":
		if arity == 1 {
			return ram.OpNeg, true
		}
		return ram.OpSub, arity == 2
	case "bnot":
		return ram.OpBnot, arity == 1
	case "lnot":
		return ram.OpLnot, arity == 1
	case "+":
		return ram.OpAdd, arity == 2
	case "*":
		return ram.OpMul, arity == 2
	case "/":
		return ram.OpDiv, arity == 2
	case "^":
		return ram.OpExp, arity == 2
	case "%":
		return ram.OpMod, arity == 2
	case "band":
		return ram.OpBand, arity == 2
	case "bor":
		return ram.OpBor, arity == 2
	case "bxor":
		return ram.OpBxor, arity == 2
	case "land":
		return ram.OpLand, arity == 2
	case "lor":
		return ram.OpLor, arity == 2
	case "max":
		return ram.OpMax, arity == 2
	case "min":
		return ram.OpMin, arity == 2
	case "cat":
		return ram.OpCat, arity == 2
	case "substr":
		return ram.OpSubstr, arity == 3
	}
	return ram.OpUndefined, false
}

// TranslateValue lowers one source argument to a RAM expression,
// resolving variables, records and aggregators through the clause's
// value index. It is a pure function of its inputs. A variable with no
// indexed occurrence, a record or aggregator with no registered slot,
// or an unknown functor all report an error wrapping ErrInternal: each
// indicates a groundedness or indexing bug upstream, not bad input.
func TranslateValue(arg ast.Argument, index *ValueIndex) (ram.Expression, error) {
	switch a := arg.(type) {
	case *ast.Variable:
		if def, ok := index.Definition(a.Name); ok {
			return def.Access(), nil
		}
		if aliased, ok := index.Alias(a.Name); ok {
			return TranslateValue(aliased, index)
		}
		return nil, internalf("variable %s has no defining occurrence", a.Name)
	case *ast.Unnamed:
		return nil, nil
	case *ast.Constant:
		return &ram.Number{Value: ram.Domain(a.Value)}, nil
	case *ast.RecordInit:
		if loc, ok := index.Record(a.ID); ok {
			// Bound by an enclosing scan: read the packed
			// reference instead of re-packing.
			return loc.Access(), nil
		}
		pack := &ram.Pack{Args: make([]ram.Expression, len(a.Args))}
		for i, sub := range a.Args {
			expr, err := TranslateValue(sub, index)
			if err != nil {
				return nil, err
			}
			pack.Args[i] = expr
		}
		return pack, nil
	case *ast.Aggregator:
		loc, ok := index.Aggregator(a.ID)
		if !ok {
			return nil, internalf("aggregator #%d has no result slot", a.ID)
		}
		return loc.Access(), nil
	case *ast.SubroutineArgument:
		return &ram.Argument{Number: a.Number}, nil
	case *ast.Counter:
		return &ram.AutoIncrement{}, nil
	case *ast.Functor:
		op, ok := functorOp(a.Op, len(a.Args))
		if !ok {
			return nil, internalf("functor %s/%d is not supported", a.Op, len(a.Args))
		}
		in := &ram.Intrinsic{Operation: op, Args: make([]ram.Expression, len(a.Args))}
		for i, sub := range a.Args {
			expr, err := TranslateValue(sub, index)
			if err != nil {
				return nil, err
			}
			in.Args[i] = expr
		}
		return in, nil
	}
	return nil, internalf("argument %v (%T) cannot be translated", arg, arg)
}

// cmpOp resolves a surface constraint symbol.
func cmpOp(symbol string) (ram.CmpOp, bool) {
	switch symbol {
	case "=":
		return ram.CmpEQ, true
	case "!=":
		return ram.CmpNE, true
	case "<":
		return ram.CmpLT, true
	case "<=":
		return ram.CmpLE, true
	case ">":
		return ram.CmpGT, true
	case ">=":
		return ram.CmpGE, true
	case "match":
		return ram.CmpMatch, true
	case "not_match":
		return ram.CmpNotMatch, true
	case "contains":
		return ram.CmpContains, true
	case "not_contains":
		return ram.CmpNotContains, true
	}
	return 0, false
}
