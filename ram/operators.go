package ram

import "fmt"

// Domain is the value domain of the machine. Numbers are stored
// directly; strings are stored as indices into the symbol table that
// produced them.
type Domain = int64

// Op identifies an intrinsic operator applied by an Intrinsic
// expression.
type Op int

const (
	OpUndefined Op = iota

	// unary
	OpOrd    // ordinal number of a string
	OpStrlen // length of a string
	OpNeg    // numeric negation
	OpBnot   // bitwise negation
	OpLnot   // logical negation

	// binary
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpExp
	OpMod
	OpBand
	OpBor
	OpBxor
	OpLand
	OpLor
	OpMax
	OpMin
	OpCat // string concatenation

	// ternary
	OpSubstr
)

var opSymbols = map[Op]string{
	OpOrd:    "ord",
	OpStrlen: "strlen",
	OpNeg:    "-",
	OpBnot:   "bnot",
	OpLnot:   "lnot",
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpExp:    "^",
	OpMod:    "%",
	OpBand:   "band",
	OpBor:    "bor",
	OpBxor:   "bxor",
	OpLand:   "land",
	OpLor:    "lor",
	OpMax:    "max",
	OpMin:    "min",
	OpCat:    "cat",
	OpSubstr: "substr",
}

var opArities = map[Op]int{
	OpOrd:    1,
	OpStrlen: 1,
	OpNeg:    1,
	OpBnot:   1,
	OpLnot:   1,
	OpAdd:    2,
	OpSub:    2,
	OpMul:    2,
	OpDiv:    2,
	OpExp:    2,
	OpMod:    2,
	OpBand:   2,
	OpBor:    2,
	OpBxor:   2,
	OpLand:   2,
	OpLor:    2,
	OpMax:    2,
	OpMin:    2,
	OpCat:    2,
	OpSubstr: 3,
}

// Symbol returns the print symbol for the operator. An operator code
// that has no symbol indicates a broken invariant in an earlier
// compiler phase, so this panics rather than emitting a wrong program.
func (op Op) Symbol() string {
	if s, ok := opSymbols[op]; ok {
		return s
	}
	panic(fmt.Sprintf("ram: unsupported operator code %d", int(op)))
}

// Arity returns the number of operands the operator takes.
func (op Op) Arity() int {
	if n, ok := opArities[op]; ok {
		return n
	}
	panic(fmt.Sprintf("ram: unsupported operator code %d", int(op)))
}

// CmpOp identifies a binary constraint operator.
type CmpOp int

const (
	CmpEQ CmpOp = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
	CmpMatch       // regular expression match
	CmpNotMatch    // regular expression non-match
	CmpContains    // substring containment
	CmpNotContains // substring non-containment
)

var cmpSymbols = map[CmpOp]string{
	CmpEQ:          "=",
	CmpNE:          "!=",
	CmpLT:          "<",
	CmpLE:          "<=",
	CmpGT:          ">",
	CmpGE:          ">=",
	CmpMatch:       "match",
	CmpNotMatch:    "not_match",
	CmpContains:    "contains",
	CmpNotContains: "not_contains",
}

// Symbol returns the print symbol for the constraint operator.
func (op CmpOp) Symbol() string {
	if s, ok := cmpSymbols[op]; ok {
		return s
	}
	panic(fmt.Sprintf("ram: unsupported constraint operator code %d", int(op)))
}

// AggFun identifies an aggregation function.
type AggFun int

const (
	AggMax AggFun = iota
	AggMin
	AggCount
	AggSum
)

// String returns the print name of the aggregation function.
func (f AggFun) String() string {
	switch f {
	case AggMax:
		return "MAX"
	case AggMin:
		return "MIN"
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	}
	panic(fmt.Sprintf("ram: unsupported aggregate function code %d", int(f)))
}
