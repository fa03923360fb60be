package parser

import "github.com/lumenlang/lumen/ast"

// parseType parses one type term per §3.3/§4.2:
//
//	Type    ::= Ident | '(' '->' Type Type EffectRow? ')' | '(' 'list' Type ')'
//	          | '(' 'record' ('(' Ident Type ')')* ')' | '(' Ident Type* ')'
//	EffectRow ::= '(' '!' Ident* ("'" Ident)? ')'
func (p *parser) parseType() (*ast.TypeExpr, error) {
	if p.peekIsPunct("(") {
		return p.parseCompoundType()
	}
	t, err := p.expect("Ident")
	if err != nil {
		return nil, err
	}
	return ast.NewTypeExpr(spanOf(t), t.text), nil
}

func (p *parser) parseCompoundType() (*ast.TypeExpr, error) {
	open, err := p.expectPunct("(")
	if err != nil {
		return nil, err
	}
	if p.peekIsArrow() {
		return p.finishFunType(open)
	}
	if p.peekIsIdent("list") {
		_, _ = p.ts.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		close, err := p.closeParen()
		if err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Base: ast.NewBase(p.span(open, close)), List: elem}, nil
	}
	if p.peekIsIdent("record") {
		_, _ = p.ts.next()
		var fields []ast.RecordFieldType
		for p.peekIsPunct("(") {
			if _, err := p.ts.next(); err != nil {
				return nil, err
			}
			name, err := p.expect("Ident")
			if err != nil {
				return nil, err
			}
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.closeParen(); err != nil {
				return nil, err
			}
			fields = append(fields, ast.RecordFieldType{Name: name.text, Type: ty})
		}
		close, err := p.closeParen()
		if err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Base: ast.NewBase(p.span(open, close)), Record: fields}, nil
	}
	// Applied user type: `(Name Type*)`.
	name, err := p.expect("Ident")
	if err != nil {
		return nil, err
	}
	var params []*ast.TypeExpr
	for !p.peekIsPunct(")") {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, ty)
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.TypeExpr{Base: ast.NewBase(p.span(open, close)), Name: name.text, Params: params}, nil
}

// peekIsArrow reports whether the next token is the `->` arrow, which the
// lexer emits as its own "Arrow" kind rather than as Punct.
func (p *parser) peekIsArrow() bool {
	t, err := p.ts.peek()
	if err != nil {
		return false
	}
	return t.kind == "Arrow"
}

func (p *parser) finishFunType(open tok) (*ast.TypeExpr, error) {
	if _, err := p.expectArrow(); err != nil {
		return nil, err
	}
	from, err := p.parseType()
	if err != nil {
		return nil, err
	}
	to, err := p.parseType()
	if err != nil {
		return nil, err
	}
	var row *ast.EffectRowExpr
	if p.peekIsPunct("(") {
		row, err = p.parseEffectRow()
		if err != nil {
			return nil, err
		}
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.TypeExpr{
		Base: ast.NewBase(p.span(open, close)),
		Fun:  &ast.FunTypeExpr{From: from, To: to, Row: row},
	}, nil
}

func (p *parser) expectArrow() (tok, error) {
	t, err := p.ts.next()
	if err != nil {
		return tok{}, err
	}
	if t.kind != "Arrow" {
		return tok{}, p.errf(t.pos, "expected '->', got %q", t.text)
	}
	return t, nil
}

// parseEffectRow parses `'(' '!' Ident* ("'" Ident)? ')'` per §3.7.
func (p *parser) parseEffectRow() (*ast.EffectRowExpr, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("!"); err != nil {
		return nil, err
	}
	row := &ast.EffectRowExpr{}
	for {
		t, err := p.ts.peek()
		if err != nil {
			return nil, err
		}
		if t.kind == "Ident" {
			_, _ = p.ts.next()
			row.Names = append(row.Names, t.text)
			continue
		}
		if t.kind == "Punct" && t.text == "'" {
			_, _ = p.ts.next()
			v, err := p.expect("Ident")
			if err != nil {
				return nil, err
			}
			row.Var = v.text
			continue
		}
		break
	}
	if _, err := p.closeParen(); err != nil {
		return nil, err
	}
	return row, nil
}
