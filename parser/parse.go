package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/errdefs"
)

// Parse parses an entire source file into its top-level forms, per §6.2: a
// sequence of Let/LetRec/TypeDef/expression forms separated by whitespace.
func Parse(filename, src string) ([]ast.Expr, error) {
	p, err := newParser(filename, src)
	if err != nil {
		return nil, err
	}
	var exprs []ast.Expr
	for {
		t, err := p.ts.peek()
		if err != nil {
			return nil, err
		}
		if t.kind == "EOF" {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// ParseExpr parses a single expression, for REPL evaluation of one line.
func ParseExpr(filename, src string) (ast.Expr, error) {
	p, err := newParser(filename, src)
	if err != nil {
		return nil, err
	}
	return p.parseExpr()
}

type parser struct {
	ts *tokenStream
}

func newParser(filename, src string) (*parser, error) {
	ts, err := newTokenStream(filename, src)
	if err != nil {
		return nil, err
	}
	return &parser{ts: ts}, nil
}

func (p *parser) errf(pos ast.Position, format string, args ...interface{}) error {
	return &errdefs.ParseError{Offset: pos.Offset, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind string) (tok, error) {
	t, err := p.ts.next()
	if err != nil {
		return tok{}, err
	}
	if t.kind != kind {
		return tok{}, p.errf(t.pos, "expected %s, got %s %q", kind, t.kind, t.text)
	}
	return t, nil
}

func (p *parser) expectPunct(text string) (tok, error) {
	t, err := p.ts.next()
	if err != nil {
		return tok{}, err
	}
	if t.kind != "Punct" || t.text != text {
		return tok{}, p.errf(t.pos, "expected %q, got %q", text, t.text)
	}
	return t, nil
}

// peekIsIdent reports whether the next token is an Ident equal to kw.
func (p *parser) peekIsIdent(kw string) bool {
	t, err := p.ts.peek()
	if err != nil {
		return false
	}
	return t.kind == "Ident" && t.text == kw
}

func (p *parser) peekIsPunct(text string) bool {
	t, err := p.ts.peek()
	if err != nil {
		return false
	}
	return t.kind == "Punct" && t.text == text
}

// parseExpr parses `atom | '(' form ')'`.
func (p *parser) parseExpr() (ast.Expr, error) {
	t, err := p.ts.peek()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case "Punct":
		if t.text == "(" {
			return p.parseParenForm()
		}
		return nil, p.errf(t.pos, "unexpected token %q", t.text)
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseAtom() (ast.Expr, error) {
	t, err := p.ts.next()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case "Int":
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, p.errf(t.pos, "bad int literal %q", t.text)
		}
		return ast.NewLiteralExpr(spanOf(t), ast.Literal{Kind: ast.IntLit, Int: n}), nil
	case "Float":
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errf(t.pos, "bad float literal %q", t.text)
		}
		return ast.NewLiteralExpr(spanOf(t), ast.Literal{Kind: ast.FloatLit, Float: f}), nil
	case "String":
		s, err := unquote(t.text)
		if err != nil {
			return nil, p.errf(t.pos, "bad string literal: %s", err)
		}
		return ast.NewLiteralExpr(spanOf(t), ast.Literal{Kind: ast.StringLit, String: s}), nil
	case "HashRef":
		return &ast.HashRefExpr{Base: ast.NewBase(spanOf(t)), Hash: strings.TrimPrefix(t.text, "#")}, nil
	case "Hole":
		name := strings.TrimPrefix(t.text, "@")
		return &ast.HoleExpr{Base: ast.NewBase(spanOf(t)), Name: name}, nil
	case "Ident":
		if t.text == "true" || t.text == "false" {
			return ast.NewLiteralExpr(spanOf(t), ast.Literal{Kind: ast.BoolLit, Bool: t.text == "true"}), nil
		}
		if isConstructorName(t.text) {
			return &ast.ConstructorExpr{Name: t.text, Base: ast.NewBase(spanOf(t))}, nil
		}
		return ast.NewIdentExpr(spanOf(t), t.text), nil
	default:
		return nil, p.errf(t.pos, "unexpected token %q", t.text)
	}
}

func spanOf(t tok) ast.Span { return ast.Span{Start: t.pos, End: t.pos} }

func unquote(raw string) (string, error) {
	s := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errUnterminatedEscape
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

var errUnterminatedEscape = &errdefs.ParseError{Message: "unterminated escape sequence"}
