// Package parser reads Datalog source text into the ast package's
// program representation: relation declarations with I/O facets,
// facts, and rules with negation, constraints, records and
// aggregates.
package parser

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokDirective // ".decl", ".input", ...
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokDirective:
		return "directive"
	case tokPunct:
		return "punctuation"
	}
	return "?"
}

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

// multi-character punctuation, longest first
var punctuation = []string{":-", "!=", "<=", ">=",
	"(", ")", "[", "]", "{", "}", ",", ".", "!", "=", "<", ">",
	"+", "-", "*", "/", "%", "^", "$", "_", ":"}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '"':
		return l.lexString()
	case c >= '0' && c <= '9':
		return l.lexNumber()
	case isIdentStart(rune(c)):
		return l.lexIdent()
	case c == '.' && l.pos+1 < len(l.src) && isIdentStart(rune(l.src[l.pos+1])):
		return l.lexDirective()
	}

	for _, p := range punctuation {
		if strings.HasPrefix(l.src[l.pos:], p) {
			l.pos += len(p)
			return token{kind: tokPunct, text: p, line: l.line}, nil
		}
	}
	return token{}, fmt.Errorf("line %d: unexpected character %q", l.line, c)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.src)
				return
			}
			l.line += strings.Count(l.src[l.pos:l.pos+2+end+2], "\n")
			l.pos += 2 + end + 2
		default:
			return
		}
	}
}

func (l *lexer) lexString() (token, error) {
	start := l.line
	var b strings.Builder
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: b.String(), line: start}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, fmt.Errorf("line %d: unterminated string", start)
			}
			switch l.src[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return token{}, fmt.Errorf("line %d: unknown escape \\%c", l.line, l.src[l.pos])
			}
			l.pos++
		case '\n':
			return token{}, fmt.Errorf("line %d: unterminated string", start)
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return token{}, fmt.Errorf("line %d: unterminated string", start)
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	return token{kind: tokNumber, text: l.src[start:l.pos], line: l.line}, nil
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
		l.pos++
	}
	return token{kind: tokIdent, text: l.src[start:l.pos], line: l.line}, nil
}

var directives = map[string]bool{
	".decl":      true,
	".input":     true,
	".output":    true,
	".printsize": true,
}

// lexDirective reads a dot-prefixed word. A word that is no known
// directive yields just the dot, so a clause period butted against the
// next clause still terminates it.
func (l *lexer) lexDirective() (token, error) {
	start := l.pos
	l.pos++ // leading dot
	for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
		l.pos++
	}
	word := l.src[start:l.pos]
	if !directives[word] {
		l.pos = start + 1
		return token{kind: tokPunct, text: ".", line: l.line}, nil
	}
	return token{kind: tokDirective, text: word, line: l.line}, nil
}

func isIdentStart(r rune) bool {
	return r == '?' || r == '@' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '?' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
