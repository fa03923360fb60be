package parser

import (
	"strconv"

	"github.com/lumenlang/lumen/ast"
)

// parsePattern parses one match pattern per §3.5:
//
//	Pattern ::= '_' | Ident | Int | Float | String | 'true' | 'false'
//	          | '(' 'list' Pattern* ')' | '(' Ident Pattern* ')'
func (p *parser) parsePattern() (ast.Pattern, error) {
	if p.peekIsPunct("(") {
		return p.parseCompoundPattern()
	}
	t, err := p.ts.next()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case "Ident":
		if t.text == "_" {
			return ast.NewWildcardPattern(spanOf(t)), nil
		}
		if t.text == "true" || t.text == "false" {
			return ast.NewLiteralPattern(spanOf(t), ast.Literal{Kind: ast.BoolLit, Bool: t.text == "true"}), nil
		}
		if isConstructorName(t.text) {
			return ast.NewConstructorPattern(spanOf(t), t.text, nil), nil
		}
		return ast.NewVarPattern(spanOf(t), t.text), nil
	case "Int":
		n, perr := strconv.ParseInt(t.text, 10, 64)
		if perr != nil {
			return nil, p.errf(t.pos, "bad int literal %q", t.text)
		}
		return ast.NewLiteralPattern(spanOf(t), ast.Literal{Kind: ast.IntLit, Int: n}), nil
	case "Float":
		f, perr := strconv.ParseFloat(t.text, 64)
		if perr != nil {
			return nil, p.errf(t.pos, "bad float literal %q", t.text)
		}
		return ast.NewLiteralPattern(spanOf(t), ast.Literal{Kind: ast.FloatLit, Float: f}), nil
	case "String":
		s, perr := unquote(t.text)
		if perr != nil {
			return nil, p.errf(t.pos, "bad string literal: %s", perr)
		}
		return ast.NewLiteralPattern(spanOf(t), ast.Literal{Kind: ast.StringLit, String: s}), nil
	default:
		return nil, p.errf(t.pos, "unexpected token %q in pattern", t.text)
	}
}

func (p *parser) parseCompoundPattern() (ast.Pattern, error) {
	open, err := p.expectPunct("(")
	if err != nil {
		return nil, err
	}
	if p.peekIsIdent("list") {
		_, _ = p.ts.next()
		var elems []ast.Pattern
		for !p.peekIsPunct(")") {
			e, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		close, err := p.closeParen()
		if err != nil {
			return nil, err
		}
		return ast.NewListPattern(p.span(open, close), elems), nil
	}
	name, err := p.expect("Ident")
	if err != nil {
		return nil, err
	}
	var args []ast.Pattern
	for !p.peekIsPunct(")") {
		a, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return ast.NewConstructorPattern(p.span(open, close), name.text, args), nil
}
