package hash

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/types"
)

// decoder reads back the canonical byte stream §4.6 produces. Spans are not
// part of the encoding (they're dropped by normalization), so every decoded
// node carries a zero Span.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) byte() (byte, error) {
	if d.off >= len(d.buf) {
		return 0, fmt.Errorf("hash: unexpected end of stream")
	}
	b := d.buf[d.off]
	d.off++
	return b, nil
}

func (d *decoder) int64() (int64, error) {
	if d.off+8 > len(d.buf) {
		return 0, fmt.Errorf("hash: truncated int64")
	}
	v := int64(binary.LittleEndian.Uint64(d.buf[d.off:]))
	d.off += 8
	return v, nil
}

func (d *decoder) float64() (float64, error) {
	if d.off+8 > len(d.buf) {
		return 0, fmt.Errorf("hash: truncated float64")
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(d.buf[d.off:]))
	d.off += 8
	return v, nil
}

func (d *decoder) bool() (bool, error) {
	b, err := d.byte()
	return b != 0, err
}

func (d *decoder) length() (int, error) {
	if d.off+4 > len(d.buf) {
		return 0, fmt.Errorf("hash: truncated length")
	}
	n := int(binary.LittleEndian.Uint32(d.buf[d.off:]))
	d.off += 4
	return n, nil
}

func (d *decoder) string() (string, error) {
	n, err := d.length()
	if err != nil {
		return "", err
	}
	if d.off+n > len(d.buf) {
		return "", fmt.Errorf("hash: truncated string")
	}
	s := string(d.buf[d.off : d.off+n])
	d.off += n
	return s, nil
}

// DecodeExpr reconstructs an expression from its canonical serialization.
func DecodeExpr(buf []byte) (ast.Expr, error) {
	d := &decoder{buf: buf}
	e, err := d.expr()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DecodeExprPrefix reconstructs an expression from the start of buf,
// returning how many bytes it consumed, for payloads that concatenate an
// expression encoding with a following type encoding.
func DecodeExprPrefix(buf []byte) (ast.Expr, int, error) {
	d := &decoder{buf: buf}
	e, err := d.expr()
	if err != nil {
		return nil, 0, err
	}
	return e, d.off, nil
}

// DecodeType reconstructs a semantic type from its canonical serialization.
func DecodeType(buf []byte) (*types.Type, error) {
	d := &decoder{buf: buf}
	return d.typ()
}

func (d *decoder) expr() (ast.Expr, error) {
	tag, err := d.byte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagLiteralInt:
		v, err := d.int64()
		if err != nil {
			return nil, err
		}
		return &ast.LiteralExpr{Literal: ast.Literal{Kind: ast.IntLit, Int: v}}, nil
	case tagLiteralFloat:
		v, err := d.float64()
		if err != nil {
			return nil, err
		}
		return &ast.LiteralExpr{Literal: ast.Literal{Kind: ast.FloatLit, Float: v}}, nil
	case tagLiteralBool:
		v, err := d.bool()
		if err != nil {
			return nil, err
		}
		return &ast.LiteralExpr{Literal: ast.Literal{Kind: ast.BoolLit, Bool: v}}, nil
	case tagLiteralString:
		v, err := d.string()
		if err != nil {
			return nil, err
		}
		return &ast.LiteralExpr{Literal: ast.Literal{Kind: ast.StringLit, String: v}}, nil
	case tagIdent:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		return &ast.IdentExpr{Name: name}, nil
	case tagHole:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		return &ast.HoleExpr{Name: name}, nil
	case tagHashRef:
		h, err := d.string()
		if err != nil {
			return nil, err
		}
		return &ast.HashRefExpr{Hash: h}, nil
	case tagList:
		elems, err := d.exprs()
		if err != nil {
			return nil, err
		}
		return &ast.ListExpr{Elems: elems}, nil
	case tagLambda:
		params, err := d.params()
		if err != nil {
			return nil, err
		}
		body, err := d.expr()
		if err != nil {
			return nil, err
		}
		return &ast.LambdaExpr{Params: params, Body: body}, nil
	case tagApply:
		fn, err := d.expr()
		if err != nil {
			return nil, err
		}
		args, err := d.exprs()
		if err != nil {
			return nil, err
		}
		return &ast.ApplyExpr{Func: fn, Args: args}, nil
	case tagIf:
		cond, err := d.expr()
		if err != nil {
			return nil, err
		}
		then, err := d.expr()
		if err != nil {
			return nil, err
		}
		els, err := d.expr()
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Cond: cond, Then: then, Else: els}, nil
	case tagLet:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		v, err := d.expr()
		if err != nil {
			return nil, err
		}
		return &ast.LetExpr{Name: name, Value: v}, nil
	case tagLetIn:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		v, err := d.expr()
		if err != nil {
			return nil, err
		}
		body, err := d.expr()
		if err != nil {
			return nil, err
		}
		return &ast.LetInExpr{Name: name, Value: v, Body: body}, nil
	case tagLetRec:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		v, err := d.expr()
		if err != nil {
			return nil, err
		}
		return &ast.LetRecExpr{Name: name, Value: v}, nil
	case tagLetRecIn:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		v, err := d.expr()
		if err != nil {
			return nil, err
		}
		body, err := d.expr()
		if err != nil {
			return nil, err
		}
		return &ast.LetRecInExpr{Name: name, Value: v, Body: body}, nil
	case tagRec:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		params, err := d.params()
		if err != nil {
			return nil, err
		}
		body, err := d.expr()
		if err != nil {
			return nil, err
		}
		return &ast.RecExpr{Name: name, Params: params, Body: body}, nil
	case tagMatch:
		scrutinee, err := d.expr()
		if err != nil {
			return nil, err
		}
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		cases := make([]ast.MatchCase, n)
		for i := range cases {
			p, err := d.pattern()
			if err != nil {
				return nil, err
			}
			body, err := d.expr()
			if err != nil {
				return nil, err
			}
			cases[i] = ast.MatchCase{Pattern: p, Body: body}
		}
		return &ast.MatchExpr{Scrutinee: scrutinee, Cases: cases}, nil
	case tagConstructor:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		args, err := d.exprs()
		if err != nil {
			return nil, err
		}
		return &ast.ConstructorExpr{Name: name, Args: args}, nil
	case tagTypeDef:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		np, err := d.length()
		if err != nil {
			return nil, err
		}
		params := make([]string, np)
		for i := range params {
			params[i], err = d.string()
			if err != nil {
				return nil, err
			}
		}
		nc, err := d.length()
		if err != nil {
			return nil, err
		}
		ctors := make([]ast.ConstructorDef, nc)
		for i := range ctors {
			cname, err := d.string()
			if err != nil {
				return nil, err
			}
			nf, err := d.length()
			if err != nil {
				return nil, err
			}
			fields := make([]*ast.TypeExpr, nf)
			for j := range fields {
				fields[j], err = d.typeExpr()
				if err != nil {
					return nil, err
				}
			}
			ctors[i] = ast.ConstructorDef{Name: cname, Fields: fields}
		}
		return &ast.TypeDefExpr{Name: name, Params: params, Constructors: ctors}, nil
	case tagRecord:
		fields, err := d.recordFields()
		if err != nil {
			return nil, err
		}
		return &ast.RecordExpr{Fields: fields}, nil
	case tagAccess:
		rec, err := d.expr()
		if err != nil {
			return nil, err
		}
		field, err := d.string()
		if err != nil {
			return nil, err
		}
		return &ast.AccessExpr{Record: rec, Field: field}, nil
	case tagUpdate:
		rec, err := d.expr()
		if err != nil {
			return nil, err
		}
		fields, err := d.recordFields()
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpr{Record: rec, Fields: fields}, nil
	case tagBlock:
		exprs, err := d.exprs()
		if err != nil {
			return nil, err
		}
		return &ast.BlockExpr{Exprs: exprs}, nil
	case tagPerform:
		effect, err := d.string()
		if err != nil {
			return nil, err
		}
		args, err := d.exprs()
		if err != nil {
			return nil, err
		}
		return &ast.PerformExpr{Effect: effect, Args: args}, nil
	case tagHandle:
		body, err := d.expr()
		if err != nil {
			return nil, err
		}
		nh, err := d.length()
		if err != nil {
			return nil, err
		}
		handlers := make([]ast.HandlerCase, nh)
		for i := range handlers {
			effect, err := d.string()
			if err != nil {
				return nil, err
			}
			nb, err := d.length()
			if err != nil {
				return nil, err
			}
			binders := make([]string, nb)
			for j := range binders {
				binders[j], err = d.string()
				if err != nil {
					return nil, err
				}
			}
			hbody, err := d.expr()
			if err != nil {
				return nil, err
			}
			handlers[i] = ast.HandlerCase{Effect: effect, Binders: binders, Body: hbody}
		}
		hasReturn, err := d.bool()
		if err != nil {
			return nil, err
		}
		var ret *ast.HandlerReturn
		if hasReturn {
			binder, err := d.string()
			if err != nil {
				return nil, err
			}
			rbody, err := d.expr()
			if err != nil {
				return nil, err
			}
			ret = &ast.HandlerReturn{Binder: binder, Body: rbody}
		}
		return &ast.HandleExpr{Body: body, Handlers: handlers, Return: ret}, nil
	default:
		return nil, fmt.Errorf("hash: unknown expr tag %d", tag)
	}
}

func (d *decoder) exprs() ([]ast.Expr, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	out := make([]ast.Expr, n)
	for i := range out {
		out[i], err = d.expr()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *decoder) params() ([]ast.Param, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	out := make([]ast.Param, n)
	for i := range out {
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		hasType, err := d.bool()
		if err != nil {
			return nil, err
		}
		var ty *ast.TypeExpr
		if hasType {
			ty, err = d.typeExpr()
			if err != nil {
				return nil, err
			}
		}
		out[i] = ast.Param{Name: name, Type: ty}
	}
	return out, nil
}

func (d *decoder) recordFields() ([]ast.RecordField, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	out := make([]ast.RecordField, n)
	for i := range out {
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		v, err := d.expr()
		if err != nil {
			return nil, err
		}
		out[i] = ast.RecordField{Name: name, Value: v}
	}
	return out, nil
}

func (d *decoder) pattern() (ast.Pattern, error) {
	tag, err := d.byte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagPatternWildcard:
		return &ast.WildcardPattern{}, nil
	case tagPatternVar:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		return &ast.VarPattern{Name: name}, nil
	case tagPatternLiteral:
		lit, err := d.literal()
		if err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Literal: lit}, nil
	case tagPatternList:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		elems := make([]ast.Pattern, n)
		for i := range elems {
			elems[i], err = d.pattern()
			if err != nil {
				return nil, err
			}
		}
		return &ast.ListPattern{Elems: elems}, nil
	case tagPatternConstructor:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		args := make([]ast.Pattern, n)
		for i := range args {
			args[i], err = d.pattern()
			if err != nil {
				return nil, err
			}
		}
		return &ast.ConstructorPattern{Name: name, Args: args}, nil
	default:
		return nil, fmt.Errorf("hash: unknown pattern tag %d", tag)
	}
}

func (d *decoder) literal() (ast.Literal, error) {
	tag, err := d.byte()
	if err != nil {
		return ast.Literal{}, err
	}
	switch tag {
	case tagLiteralInt:
		v, err := d.int64()
		return ast.Literal{Kind: ast.IntLit, Int: v}, err
	case tagLiteralFloat:
		v, err := d.float64()
		return ast.Literal{Kind: ast.FloatLit, Float: v}, err
	case tagLiteralBool:
		v, err := d.bool()
		return ast.Literal{Kind: ast.BoolLit, Bool: v}, err
	case tagLiteralString:
		v, err := d.string()
		return ast.Literal{Kind: ast.StringLit, String: v}, err
	default:
		return ast.Literal{}, fmt.Errorf("hash: unknown literal tag %d", tag)
	}
}

func (d *decoder) typeExpr() (*ast.TypeExpr, error) {
	isNil, err := d.bool()
	if err != nil {
		return nil, err
	}
	if isNil {
		return nil, nil
	}
	name, err := d.string()
	if err != nil {
		return nil, err
	}
	np, err := d.length()
	if err != nil {
		return nil, err
	}
	params := make([]*ast.TypeExpr, np)
	for i := range params {
		params[i], err = d.typeExpr()
		if err != nil {
			return nil, err
		}
	}
	hasList, err := d.bool()
	if err != nil {
		return nil, err
	}
	var list *ast.TypeExpr
	if hasList {
		list, err = d.typeExpr()
		if err != nil {
			return nil, err
		}
	}
	nf, err := d.length()
	if err != nil {
		return nil, err
	}
	fields := make([]ast.RecordFieldType, nf)
	for i := range fields {
		fname, err := d.string()
		if err != nil {
			return nil, err
		}
		fty, err := d.typeExpr()
		if err != nil {
			return nil, err
		}
		fields[i] = ast.RecordFieldType{Name: fname, Type: fty}
	}
	hasFun, err := d.bool()
	if err != nil {
		return nil, err
	}
	var fun *ast.FunTypeExpr
	if hasFun {
		from, err := d.typeExpr()
		if err != nil {
			return nil, err
		}
		to, err := d.typeExpr()
		if err != nil {
			return nil, err
		}
		hasRow, err := d.bool()
		if err != nil {
			return nil, err
		}
		var row *ast.EffectRowExpr
		if hasRow {
			nn, err := d.length()
			if err != nil {
				return nil, err
			}
			names := make([]string, nn)
			for i := range names {
				names[i], err = d.string()
				if err != nil {
					return nil, err
				}
			}
			hasVar, err := d.bool()
			if err != nil {
				return nil, err
			}
			v, err := d.string()
			if err != nil {
				return nil, err
			}
			if !hasVar {
				v = ""
			}
			row = &ast.EffectRowExpr{Names: names, Var: v}
		}
		fun = &ast.FunTypeExpr{From: from, To: to, Row: row}
	}
	return &ast.TypeExpr{Name: name, Params: params, List: list, Record: fields, Fun: fun}, nil
}

func (d *decoder) typ() (*types.Type, error) {
	tag, err := d.byte()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	switch tag {
	case tagTypePrim:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		return types.Prim(name), nil
	case tagTypeVar:
		id, err := d.length()
		if err != nil {
			return nil, err
		}
		return types.NewVar(id), nil
	case tagTypeFun:
		from, err := d.typ()
		if err != nil {
			return nil, err
		}
		to, err := d.typ()
		if err != nil {
			return nil, err
		}
		hasRow, err := d.bool()
		if err != nil {
			return nil, err
		}
		var row *types.Row
		if hasRow {
			n, err := d.length()
			if err != nil {
				return nil, err
			}
			labels := make([]string, n)
			for i := range labels {
				labels[i], err = d.string()
				if err != nil {
					return nil, err
				}
			}
			hasVar, err := d.bool()
			if err != nil {
				return nil, err
			}
			row = &types.Row{Labels: labels}
			if hasVar {
				v, err := d.length()
				if err != nil {
					return nil, err
				}
				row.HasVar, row.Var = true, v
			}
		}
		return types.FunWithRow(from, to, row), nil
	case tagTypeList:
		elem, err := d.typ()
		if err != nil {
			return nil, err
		}
		return types.List(elem), nil
	case tagTypeUser:
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		params := make([]*types.Type, n)
		for i := range params {
			params[i], err = d.typ()
			if err != nil {
				return nil, err
			}
		}
		return types.User(name, params...), nil
	case tagTypeRecord:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		fields := make([]types.Field, n)
		for i := range fields {
			name, err := d.string()
			if err != nil {
				return nil, err
			}
			ty, err := d.typ()
			if err != nil {
				return nil, err
			}
			fields[i] = types.Field{Name: name, Type: ty}
		}
		return types.Record(fields...), nil
	default:
		return nil, fmt.Errorf("hash: unknown type tag %d", tag)
	}
}
