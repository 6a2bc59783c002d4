package parser

import (
	"fmt"
	"strconv"

	"github.com/wbrown/janus-ram/ram/ast"
)

// Parse reads a complete Datalog program. Every relation used by a
// clause must be declared, and head arities must match declarations;
// violations are reported as parse errors with line numbers.
func Parse(input string) (*ast.Program, error) {
	p := &parser{lex: newLexer(input), prog: ast.NewProgram()}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.tok.kind != tokEOF {
		if err := p.parseTopLevel(); err != nil {
			return nil, err
		}
	}
	if err := p.checkClauses(); err != nil {
		return nil, err
	}
	return p.prog, nil
}

type parser struct {
	lex *lexer
	tok token

	prog *ast.Program
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s", p.tok.line, fmt.Sprintf(format, args...))
}

func (p *parser) expectPunct(text string) error {
	if p.tok.kind != tokPunct || p.tok.text != text {
		return p.errorf("expected %q, got %s", text, p.tok)
	}
	return p.advance()
}

func (p *parser) isPunct(text string) bool {
	return p.tok.kind == tokPunct && p.tok.text == text
}

func (p *parser) expectIdent() (string, error) {
	if p.tok.kind != tokIdent {
		return "", p.errorf("expected identifier, got %s", p.tok)
	}
	name := p.tok.text
	return name, p.advance()
}

func (p *parser) parseTopLevel() error {
	if p.tok.kind == tokDirective {
		return p.parseDirective()
	}
	return p.parseClause()
}

func (p *parser) parseDirective() error {
	directive := p.tok.text
	if err := p.advance(); err != nil {
		return err
	}
	switch directive {
	case ".decl":
		return p.parseDecl()
	case ".input", ".output", ".printsize":
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		rel, ok := p.prog.Relation(name)
		if !ok {
			return p.errorf("relation %s is not declared", name)
		}
		switch directive {
		case ".input":
			rel.Input = true
		case ".output":
			rel.Output = true
		case ".printsize":
			rel.PrintSize = true
		}
		return nil
	}
	return p.errorf("unknown directive %s", directive)
}

func (p *parser) parseDecl() error {
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	if _, ok := p.prog.Relation(name); ok {
		return p.errorf("relation %s is declared twice", name)
	}
	if err := p.expectPunct("("); err != nil {
		return err
	}
	rel := &ast.Relation{Name: name}
	for {
		attr, err := p.parseAttribute()
		if err != nil {
			return err
		}
		rel.Attributes = append(rel.Attributes, attr)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return err
	}
	// Optional representation qualifier.
	if p.tok.kind == tokIdent && p.tok.text == "hashset" {
		rel.Hashset = true
		if err := p.advance(); err != nil {
			return err
		}
	}
	p.prog.AddRelation(rel)
	return nil
}

func (p *parser) parseAttribute() (ast.Attribute, error) {
	name, err := p.expectIdent()
	if err != nil {
		return ast.Attribute{}, err
	}
	if err := p.expectPunct(":"); err != nil {
		return ast.Attribute{}, err
	}
	typ, err := p.expectIdent()
	if err != nil {
		return ast.Attribute{}, err
	}
	if typ != "number" && typ != "symbol" {
		return ast.Attribute{}, p.errorf("unknown attribute type %s", typ)
	}
	return ast.Attribute{Name: name, Type: typ}, nil
}

func (p *parser) parseClause() error {
	head, err := p.parseAtom()
	if err != nil {
		return err
	}
	clause := &ast.Clause{Head: head}

	if p.isPunct(":-") {
		if err := p.advance(); err != nil {
			return err
		}
		for {
			lit, err := p.parseLiteral()
			if err != nil {
				return err
			}
			clause.Body = append(clause.Body, lit)
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return err
				}
				continue
			}
			break
		}
	}
	if err := p.expectPunct("."); err != nil {
		return err
	}

	rel, ok := p.prog.Relation(head.Name)
	if !ok {
		return p.errorf("relation %s is not declared", head.Name)
	}
	if rel.Arity() != head.Arity() {
		return p.errorf("relation %s has arity %d, clause head has %d arguments",
			head.Name, rel.Arity(), head.Arity())
	}
	rel.AddClause(clause)
	return nil
}

// parseLiteral reads one body element: a negated atom, a positive
// atom, or a constraint. Atoms and constraints both start with an
// expression, so a call expression followed by a comparison operator
// becomes a constraint operand and a bare one becomes an atom.
func (p *parser) parseLiteral() (ast.Literal, error) {
	if p.isPunct("!") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return &ast.NegatedAtom{Atom: atom}, nil
	}

	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if op, ok := p.comparisonOp(); ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Constraint{Op: op, LHS: lhs, RHS: rhs}, nil
	}

	call, ok := lhs.(*ast.Functor)
	if !ok {
		return nil, p.errorf("expected atom or constraint, got expression %s", lhs)
	}
	return &ast.Atom{Name: call.Op, Args: call.Args}, nil
}

func (p *parser) comparisonOp() (string, bool) {
	if p.tok.kind == tokPunct {
		switch p.tok.text {
		case "=", "!=", "<", "<=", ">", ">=":
			return p.tok.text, true
		}
	}
	if p.tok.kind == tokIdent {
		switch p.tok.text {
		case "match", "not_match", "contains", "not_contains":
			return p.tok.text, true
		}
	}
	return "", false
}

func (p *parser) parseAtom() (*ast.Atom, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	args, err := p.parseArgs(")")
	if err != nil {
		return nil, err
	}
	return &ast.Atom{Name: name, Args: args}, nil
}

// parseArgs reads a comma-separated expression list up to the closing
// delimiter, consuming it.
func (p *parser) parseArgs(close string) ([]ast.Argument, error) {
	var args []ast.Argument
	if p.isPunct(close) {
		return args, p.advance()
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, p.expectPunct(close)
}

// Expression grammar, loosest binding first:
//
//	expr   := term   { ("+" | "-") term }
//	term   := power  { ("*" | "/" | "%") power }
//	power  := unary  [ "^" power ]
//	unary  := "-" unary | primary
func (p *parser) parseExpr() (ast.Argument, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Functor{Op: op, Args: []ast.Argument{lhs, rhs}}
	}
	return lhs, nil
}

func (p *parser) parseTerm() (ast.Argument, error) {
	lhs, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") || p.isPunct("%") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Functor{Op: op, Args: []ast.Argument{lhs, rhs}}
	}
	return lhs, nil
}

func (p *parser) parsePower() (ast.Argument, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.isPunct("^") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return &ast.Functor{Op: "^", Args: []ast.Argument{lhs, rhs}}, nil
	}
	return lhs, nil
}

func (p *parser) parseUnary() (ast.Argument, error) {
	if p.isPunct("-") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// Fold negated number literals.
		if c, ok := arg.(*ast.Constant); ok {
			return &ast.Constant{Value: -c.Value, Text: "-" + c.Text}, nil
		}
		return &ast.Functor{Op: "-", Args: []ast.Argument{arg}}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Argument, error) {
	switch {
	case p.tok.kind == tokNumber:
		n, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf("bad number %s: %v", p.tok.text, err)
		}
		c := &ast.Constant{Value: n, Text: p.tok.text}
		return c, p.advance()

	case p.tok.kind == tokString:
		c := &ast.Constant{
			Value: p.prog.Symbols.Lookup(p.tok.text),
			Text:  strconv.Quote(p.tok.text),
		}
		return c, p.advance()

	case p.isPunct("_"):
		return &ast.Unnamed{}, p.advance()

	case p.isPunct("$"):
		return &ast.Counter{}, p.advance()

	case p.isPunct("["):
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseArgs("]")
		if err != nil {
			return nil, err
		}
		return &ast.RecordInit{ID: p.prog.NextID(), Args: args}, nil

	case p.isPunct("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return arg, p.expectPunct(")")

	case p.tok.kind == tokIdent:
		return p.parseIdentExpr()
	}
	return nil, p.errorf("expected expression, got %s", p.tok)
}

// parseIdentExpr resolves an identifier: an aggregate keyword not
// followed by an opening parenthesis, a call, or a plain variable.
func (p *parser) parseIdentExpr() (ast.Argument, error) {
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}

	if kind, ok := aggKind(name); ok && !p.isPunct("(") {
		return p.parseAggregate(kind)
	}

	if p.isPunct("(") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseArgs(")")
		if err != nil {
			return nil, err
		}
		return &ast.Functor{Op: name, Args: args}, nil
	}
	return &ast.Variable{Name: name}, nil
}

func aggKind(name string) (ast.AggKind, bool) {
	switch name {
	case "min":
		return ast.AggMin, true
	case "max":
		return ast.AggMax, true
	case "count":
		return ast.AggCount, true
	case "sum":
		return ast.AggSum, true
	}
	return 0, false
}

// parseAggregate reads the remainder of an aggregate after its
// keyword: an optional target expression, a colon, and a body that is
// either a single atom or a braced atom with constraints.
func (p *parser) parseAggregate(kind ast.AggKind) (ast.Argument, error) {
	agg := &ast.Aggregator{ID: p.prog.NextID(), Fun: kind}

	if kind != ast.AggCount {
		target, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		agg.Target = target
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}

	if p.isPunct("{") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		agg.Atom = atom
		for p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			cons, ok := lit.(*ast.Constraint)
			if !ok {
				return nil, p.errorf("aggregate bodies allow one atom plus constraints, got %s", lit)
			}
			agg.Constraints = append(agg.Constraints, cons)
		}
		return agg, p.expectPunct("}")
	}

	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	agg.Atom = atom
	return agg, nil
}

// checkClauses validates body atom references once the whole program
// is known, since a clause may use relations declared after it.
func (p *parser) checkClauses() error {
	for _, rel := range p.prog.Relations {
		for _, clause := range rel.Clauses {
			for _, atom := range clause.Atoms() {
				if err := p.checkAtomRef(atom); err != nil {
					return err
				}
			}
			for _, neg := range clause.Negations() {
				if err := p.checkAtomRef(neg.Atom); err != nil {
					return err
				}
			}
			if err := p.checkAggregates(clause); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) checkAggregates(clause *ast.Clause) error {
	var check func(arg ast.Argument) error
	check = func(arg ast.Argument) error {
		switch a := arg.(type) {
		case *ast.Aggregator:
			return p.checkAtomRef(a.Atom)
		case *ast.Functor:
			for _, sub := range a.Args {
				if err := check(sub); err != nil {
					return err
				}
			}
		case *ast.RecordInit:
			for _, sub := range a.Args {
				if err := check(sub); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, arg := range clause.Head.Args {
		if err := check(arg); err != nil {
			return err
		}
	}
	for _, c := range clause.Constraints() {
		if err := check(c.LHS); err != nil {
			return err
		}
		if err := check(c.RHS); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) checkAtomRef(atom *ast.Atom) error {
	decl, ok := p.prog.Relation(atom.Name)
	if !ok {
		return fmt.Errorf("relation %s is not declared", atom.Name)
	}
	if decl.Arity() != atom.Arity() {
		return fmt.Errorf("relation %s has arity %d, atom has %d arguments",
			atom.Name, decl.Arity(), atom.Arity())
	}
	return nil
}
