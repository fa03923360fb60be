package parser

import (
	"github.com/lumenlang/lumen/ast"
)

// parseParenForm parses `'(' form ')'`, dispatching on the leading keyword
// when one is recognized, and otherwise treating the parenthesized sequence
// as application (left-associative, arity >= 1) per §4.2.
func (p *parser) parseParenForm() (ast.Expr, error) {
	open, err := p.expectPunct("(")
	if err != nil {
		return nil, err
	}

	if p.peekIsIdent("let") {
		return p.finishLet(open, false)
	}
	if p.peekIsIdent("let-rec") {
		return p.finishLet(open, true)
	}
	if p.peekIsIdent("rec") {
		return p.finishRec(open)
	}
	if p.peekIsIdent("fn") || p.peekIsIdent("lambda") {
		return p.finishLambda(open)
	}
	if p.peekIsIdent("if") {
		return p.finishIf(open)
	}
	if p.peekIsIdent("match") {
		return p.finishMatch(open)
	}
	if p.peekIsIdent("list") {
		return p.finishList(open)
	}
	if p.peekIsIdent("type") {
		return p.finishTypeDef(open)
	}
	if p.peekIsIdent("do") {
		return p.finishBlock(open)
	}
	if p.peekIsIdent("record") {
		return p.finishRecord(open)
	}
	if p.peekIsIdent("access") {
		return p.finishAccess(open)
	}
	if p.peekIsIdent("update") {
		return p.finishUpdate(open)
	}
	if p.peekIsIdent("perform") {
		return p.finishPerform(open)
	}
	if p.peekIsIdent("handle") {
		return p.finishHandle(open)
	}
	return p.finishApply(open)
}

func (p *parser) closeParen() (tok, error) {
	return p.expectPunct(")")
}

func (p *parser) span(open tok, close tok) ast.Span {
	return ast.Span{Start: open.pos, End: close.pos}
}

// optionalType parses `(':' type)?`.
func (p *parser) optionalType() (*ast.TypeExpr, error) {
	if !p.peekIsPunct(":") {
		return nil, nil
	}
	_, _ = p.ts.next()
	return p.parseType()
}

// optionalIn parses the trailing `in <expr>` that turns a top-level Let into
// a LetIn/LetRecIn, matching the expr AST's split between the two forms.
func (p *parser) optionalIn() (bool, error) {
	if p.peekIsIdent("in") {
		_, err := p.ts.next()
		return true, err
	}
	return false, nil
}

func (p *parser) finishLet(open tok, rec bool) (ast.Expr, error) {
	_, _ = p.ts.next() // 'let' or 'let-rec'
	name, err := p.expect("Ident")
	if err != nil {
		return nil, err
	}
	ty, err := p.optionalType()
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	hasIn, err := p.optionalIn()
	if err != nil {
		return nil, err
	}
	if hasIn {
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		close, err := p.closeParen()
		if err != nil {
			return nil, err
		}
		span := p.span(open, close)
		if rec {
			return &ast.LetRecInExpr{Name: name.text, Type: ty, Value: value, Body: body,
				Base: ast.NewBase(span)}, nil
		}
		return &ast.LetInExpr{Name: name.text, Type: ty, Value: value, Body: body,
			Base: ast.NewBase(span)}, nil
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	span := p.span(open, close)
	if rec {
		return &ast.LetRecExpr{Name: name.text, Type: ty, Value: value, Base: ast.NewBase(span)}, nil
	}
	return &ast.LetExpr{Name: name.text, Type: ty, Value: value, Base: ast.NewBase(span)}, nil
}

func (p *parser) finishRec(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'rec'
	name, err := p.expect("Ident")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	ret, err := p.optionalType()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.RecExpr{Name: name.text, Params: params, RetType: ret, Body: body,
		Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishLambda(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'fn'/'lambda'
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.LambdaExpr{Params: params, Body: body, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) parseParams() ([]ast.Param, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.peekIsPunct(")") {
		if p.peekIsPunct("(") {
			if _, err := p.ts.next(); err != nil {
				return nil, err
			}
			name, err := p.expect("Ident")
			if err != nil {
				return nil, err
			}
			ty, err := p.optionalType()
			if err != nil {
				return nil, err
			}
			if _, err := p.closeParen(); err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: name.text, Type: ty})
			continue
		}
		name, err := p.expect("Ident")
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: name.text})
	}
	if _, err := p.closeParen(); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) finishIf(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{Cond: cond, Then: then, Else: els, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishMatch(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'match'
	scrut, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var cases []ast.MatchCase
	for p.peekIsPunct("(") {
		if _, err := p.ts.next(); err != nil {
			return nil, err
		}
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.closeParen(); err != nil {
			return nil, err
		}
		cases = append(cases, ast.MatchCase{Pattern: pat, Body: rhs})
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.MatchExpr{Scrutinee: scrut, Cases: cases, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishList(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'list'
	var elems []ast.Expr
	for !p.peekIsPunct(")") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.ListExpr{Elems: elems, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishBlock(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'do'
	var exprs []ast.Expr
	for !p.peekIsPunct(")") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.BlockExpr{Exprs: exprs, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishRecord(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'record'
	fields, err := p.parseFieldExprs()
	if err != nil {
		return nil, err
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.RecordExpr{Fields: fields, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishAccess(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'access'
	rec, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	field, err := p.expect("Ident")
	if err != nil {
		return nil, err
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.AccessExpr{Record: rec, Field: field.text, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishUpdate(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'update'
	rec, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldExprs()
	if err != nil {
		return nil, err
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.UpdateExpr{Record: rec, Fields: fields, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) parseFieldExprs() ([]ast.RecordField, error) {
	var fields []ast.RecordField
	for p.peekIsPunct("(") {
		if _, err := p.ts.next(); err != nil {
			return nil, err
		}
		name, err := p.expect("Ident")
		if err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.closeParen(); err != nil {
			return nil, err
		}
		fields = append(fields, ast.RecordField{Name: name.text, Value: value})
	}
	return fields, nil
}

func (p *parser) finishPerform(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'perform'
	eff, err := p.expect("Ident")
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.peekIsPunct(")") {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.PerformExpr{Effect: eff.text, Args: args, Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishHandle(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'handle'
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var handlers []ast.HandlerCase
	var ret *ast.HandlerReturn
	for p.peekIsPunct("(") {
		if _, err := p.ts.next(); err != nil {
			return nil, err
		}
		head, err := p.expect("Ident")
		if err != nil {
			return nil, err
		}
		if head.text == "return" {
			binder, err := p.expect("Ident")
			if err != nil {
				return nil, err
			}
			retBody, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.closeParen(); err != nil {
				return nil, err
			}
			ret = &ast.HandlerReturn{Binder: binder.text, Body: retBody}
			continue
		}
		var binders []string
		for {
			t, err := p.ts.peek()
			if err != nil {
				return nil, err
			}
			if t.kind != "Ident" {
				break
			}
			// An ident followed by ')' is the handler body itself; any other
			// ident is a binder, the last binder being the continuation name,
			// and what follows the binders is the handler body expression.
			t2, err := p.ts.peekN(1)
			if err != nil {
				return nil, err
			}
			if t2.kind == "Punct" && t2.text == ")" {
				break
			}
			next, err := p.ts.next()
			if err != nil {
				return nil, err
			}
			binders = append(binders, next.text)
		}
		hbody, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.closeParen(); err != nil {
			return nil, err
		}
		handlers = append(handlers, ast.HandlerCase{Effect: head.text, Binders: binders, Body: hbody})
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.HandleExpr{Body: body, Handlers: handlers, Return: ret,
		Base: ast.NewBase(p.span(open, close))}, nil
}

func (p *parser) finishTypeDef(open tok) (ast.Expr, error) {
	_, _ = p.ts.next() // 'type'
	name, err := p.expect("Ident")
	if err != nil {
		return nil, err
	}
	var params []string
	for {
		t, err := p.ts.peek()
		if err != nil {
			return nil, err
		}
		if t.kind != "Ident" {
			break
		}
		_, _ = p.ts.next()
		params = append(params, t.text)
	}
	var ctors []ast.ConstructorDef
	for p.peekIsPunct("(") {
		if _, err := p.ts.next(); err != nil {
			return nil, err
		}
		cname, err := p.expect("Ident")
		if err != nil {
			return nil, err
		}
		var fields []*ast.TypeExpr
		for !p.peekIsPunct(")") {
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ty)
		}
		if _, err := p.closeParen(); err != nil {
			return nil, err
		}
		ctors = append(ctors, ast.ConstructorDef{Name: cname.text, Fields: fields})
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	return &ast.TypeDefExpr{Name: name.text, Params: params, Constructors: ctors,
		Base: ast.NewBase(p.span(open, close))}, nil
}

// finishApply parses the remaining general case: `expr expr+`, i.e. an
// already-consumed leading '(' followed by a function expression and one or
// more argument expressions, left-associative.
func (p *parser) finishApply(open tok) (ast.Expr, error) {
	fn, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.peekIsPunct(")") {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	close, err := p.closeParen()
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, p.errf(open.pos, "application requires at least one argument")
	}
	if id, ok := fn.(*ast.IdentExpr); ok && isConstructorName(id.Name) {
		return &ast.ConstructorExpr{Name: id.Name, Args: args, Base: ast.NewBase(p.span(open, close))}, nil
	}
	return &ast.ApplyExpr{Func: fn, Args: args, Base: ast.NewBase(p.span(open, close))}, nil
}

// isConstructorName reports whether name follows the capitalized-constructor
// convention of §3.4/§4.4.2, distinguishing `(Cons x xs)` from `(f x)`.
func isConstructorName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}
