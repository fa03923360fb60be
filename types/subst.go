package types

import "github.com/lumenlang/lumen/errdefs"

// Subst is a substitution mapping type-variable ids to types, built
// incrementally by Unify per §4.4.2's solver phase.
type Subst map[int]*Type

// Apply recursively replaces every variable in t that s binds.
func Apply(s Subst, t *Type) *Type {
	if t == nil || len(s) == 0 {
		return t
	}
	switch t.Kind {
	case KindVar:
		if bound, ok := s[t.Var]; ok {
			return Apply(s, bound)
		}
		return t
	case KindFun:
		return &Type{Kind: KindFun, From: Apply(s, t.From), To: Apply(s, t.To), Row: t.Row}
	case KindList:
		return &Type{Kind: KindList, Elem: Apply(s, t.Elem)}
	case KindUser:
		params := make([]*Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Apply(s, p)
		}
		return &Type{Kind: KindUser, Name: t.Name, Params: params}
	case KindRecord:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: Apply(s, f.Type)}
		}
		return &Type{Kind: KindRecord, Fields: fields}
	default:
		return t
	}
}

// ApplyScheme applies s to every free variable of a scheme, leaving the
// scheme's own quantified variables untouched.
func ApplyScheme(s Subst, sc *Scheme) *Scheme {
	bound := map[int]bool{}
	for _, v := range sc.Vars {
		bound[v] = true
	}
	filtered := Subst{}
	for k, v := range s {
		if !bound[k] {
			filtered[k] = v
		}
	}
	return &Scheme{Vars: sc.Vars, Type: Apply(filtered, sc.Type)}
}

// ApplyEnv applies s throughout every scope of e, returning a new Env.
func ApplyEnv(s Subst, e *Env) *Env {
	out := &Env{scopes: make([]map[string]*Scheme, len(e.scopes))}
	for i, scope := range e.scopes {
		ns := map[string]*Scheme{}
		for name, sc := range scope {
			ns[name] = ApplyScheme(s, sc)
		}
		out.scopes[i] = ns
	}
	return out
}

// Compose returns the substitution equivalent to applying s1 then s2: every
// binding of s1 has s2 applied to its type, then s2's own bindings are
// added (s1 takes precedence on overlapping keys, matching standard HM
// substitution composition).
func Compose(s1, s2 Subst) Subst {
	out := Subst{}
	for k, v := range s2 {
		out[k] = v
	}
	for k, v := range s1 {
		out[k] = Apply(s2, v)
	}
	return out
}

// occurs reports whether variable id occurs free in t, after applying s.
func occurs(id int, t *Type, s Subst) bool {
	t = Apply(s, t)
	switch t.Kind {
	case KindVar:
		return t.Var == id
	case KindFun:
		return occurs(id, t.From, s) || occurs(id, t.To, s)
	case KindList:
		return occurs(id, t.Elem, s)
	case KindUser:
		for _, p := range t.Params {
			if occurs(id, p, s) {
				return true
			}
		}
		return false
	case KindRecord:
		for _, f := range t.Fields {
			if occurs(id, f.Type, s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Unify solves τ₁ ≡ τ₂ against the existing substitution s, per §4.4.2's
// solver phase, returning the extended substitution or a typed error.
func Unify(s Subst, a, b *Type) (Subst, error) {
	a, b = Apply(s, a), Apply(s, b)

	if a.Kind == KindVar && b.Kind == KindVar && a.Var == b.Var {
		return s, nil
	}
	if a.Kind == KindVar {
		if occurs(a.Var, b, s) {
			return nil, &errdefs.InfiniteType{Var: varName(a.Var), Type: b.String()}
		}
		return Compose(Subst{a.Var: b}, s), nil
	}
	if b.Kind == KindVar {
		return Unify(s, b, a)
	}
	if a.Kind != b.Kind {
		return nil, &errdefs.TypeMismatch{Expected: a.String(), Found: b.String()}
	}
	switch a.Kind {
	case KindPrim:
		if a.Name != b.Name {
			return nil, &errdefs.TypeMismatch{Expected: a.String(), Found: b.String()}
		}
		return s, nil
	case KindFun:
		s1, err := Unify(s, a.From, b.From)
		if err != nil {
			return nil, err
		}
		return Unify(s1, a.To, b.To)
	case KindList:
		return Unify(s, a.Elem, b.Elem)
	case KindUser:
		if a.Name != b.Name || len(a.Params) != len(b.Params) {
			return nil, &errdefs.TypeMismatch{Expected: a.String(), Found: b.String()}
		}
		cur := s
		for i := range a.Params {
			var err error
			cur, err = Unify(cur, a.Params[i], b.Params[i])
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	case KindRecord:
		if len(a.Fields) != len(b.Fields) {
			return nil, &errdefs.TypeMismatch{Expected: a.String(), Found: b.String()}
		}
		cur := s
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name {
				return nil, &errdefs.TypeMismatch{Expected: a.String(), Found: b.String()}
			}
			var err error
			cur, err = Unify(cur, a.Fields[i].Type, b.Fields[i].Type)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	default:
		return nil, &errdefs.TypeMismatch{Expected: a.String(), Found: b.String()}
	}
}
