package types

// Normalize returns a copy of t with its type variables re-indexed in
// first-occurrence order (0, 1, 2, ...), per §4.3: two α-equivalent types
// produce identical normalized trees regardless of which fresh-variable ids
// inference happened to allocate.
func Normalize(t *Type) *Type {
	ids := map[int]int{}
	return normalize(t, ids)
}

func normalize(t *Type, ids map[int]int) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindPrim:
		return Prim(t.Name)
	case KindVar:
		id, ok := ids[t.Var]
		if !ok {
			id = len(ids)
			ids[t.Var] = id
		}
		return NewVar(id)
	case KindFun:
		from := normalize(t.From, ids)
		to := normalize(t.To, ids)
		var row *Row
		if t.Row != nil {
			row = normalizeRow(t.Row, ids)
		}
		return &Type{Kind: KindFun, From: from, To: to, Row: row}
	case KindList:
		return List(normalize(t.Elem, ids))
	case KindUser:
		params := make([]*Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = normalize(p, ids)
		}
		return &Type{Kind: KindUser, Name: t.Name, Params: params}
	case KindRecord:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: normalize(f.Type, ids)}
		}
		return Record(fields...)
	default:
		return t
	}
}

func normalizeRow(r *Row, ids map[int]int) *Row {
	out := &Row{Labels: append([]string(nil), r.labelsOrEmpty()...)}
	if r.HasVar {
		id, ok := ids[r.Var]
		if !ok {
			id = len(ids)
			ids[r.Var] = id
		}
		out.HasVar = true
		out.Var = id
	}
	return out
}
