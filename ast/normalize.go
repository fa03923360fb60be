package ast

// Normalize returns a structurally canonical copy of e suitable for hashing
// (§4.3): record fields and record-update fields are sorted by name; spans
// are dropped. Normalization is idempotent and never renames user-visible
// identifiers — only the hasher's type-variable re-indexing (types.Normalize)
// touches names, and only those of type variables.
func Normalize(e Expr) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *LiteralExpr:
		return &LiteralExpr{Literal: n.Literal}
	case *IdentExpr:
		return &IdentExpr{Name: n.Name}
	case *HoleExpr:
		return &HoleExpr{Name: n.Name, TypeHint: n.TypeHint}
	case *HashRefExpr:
		return &HashRefExpr{Hash: n.Hash}
	case *ListExpr:
		return &ListExpr{Elems: normalizeAll(n.Elems)}
	case *LambdaExpr:
		return &LambdaExpr{Params: n.Params, Body: Normalize(n.Body)}
	case *ApplyExpr:
		return &ApplyExpr{Func: Normalize(n.Func), Args: normalizeAll(n.Args)}
	case *IfExpr:
		return &IfExpr{Cond: Normalize(n.Cond), Then: Normalize(n.Then), Else: Normalize(n.Else)}
	case *LetExpr:
		return &LetExpr{Name: n.Name, Type: n.Type, Value: Normalize(n.Value)}
	case *LetInExpr:
		return &LetInExpr{Name: n.Name, Type: n.Type, Value: Normalize(n.Value), Body: Normalize(n.Body)}
	case *LetRecExpr:
		return &LetRecExpr{Name: n.Name, Type: n.Type, Value: Normalize(n.Value)}
	case *LetRecInExpr:
		return &LetRecInExpr{Name: n.Name, Type: n.Type, Value: Normalize(n.Value), Body: Normalize(n.Body)}
	case *RecExpr:
		return &RecExpr{Name: n.Name, Params: n.Params, RetType: n.RetType, Body: Normalize(n.Body)}
	case *MatchExpr:
		cases := make([]MatchCase, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = MatchCase{Pattern: c.Pattern, Body: Normalize(c.Body)}
		}
		return &MatchExpr{Scrutinee: Normalize(n.Scrutinee), Cases: cases}
	case *ConstructorExpr:
		return &ConstructorExpr{Name: n.Name, Args: normalizeAll(n.Args)}
	case *TypeDefExpr:
		return n
	case *RecordExpr:
		return &RecordExpr{Fields: normalizeFields(n.Fields)}
	case *AccessExpr:
		return &AccessExpr{Record: Normalize(n.Record), Field: n.Field}
	case *UpdateExpr:
		return &UpdateExpr{Record: Normalize(n.Record), Fields: normalizeFields(n.Fields)}
	case *BlockExpr:
		return &BlockExpr{Exprs: normalizeAll(n.Exprs)}
	case *PerformExpr:
		return &PerformExpr{Effect: n.Effect, Args: normalizeAll(n.Args)}
	case *HandleExpr:
		handlers := make([]HandlerCase, len(n.Handlers))
		for i, h := range n.Handlers {
			handlers[i] = HandlerCase{Effect: h.Effect, Binders: h.Binders, Body: Normalize(h.Body)}
		}
		var ret *HandlerReturn
		if n.Return != nil {
			ret = &HandlerReturn{Binder: n.Return.Binder, Body: Normalize(n.Return.Body)}
		}
		return &HandleExpr{Body: Normalize(n.Body), Handlers: handlers, Return: ret}
	default:
		return e
	}
}

func normalizeAll(es []Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = Normalize(e)
	}
	return out
}

func normalizeFields(fields []RecordField) []RecordField {
	out := make([]RecordField, len(fields))
	for i, f := range fields {
		out[i] = RecordField{Name: f.Name, Value: Normalize(f.Value)}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Name > out[j].Name; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
