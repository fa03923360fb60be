package ast

import "strings"

// TypeExpr is the syntactic form of a type annotation as written in source,
// per §3.3 and the `type` grammar production in §4.2. It is translated into
// a semantic types.Type by the checker.
type TypeExpr struct {
	Base

	// Primitive or user/variable name, e.g. "Int", "a", "Option".
	Name string

	// Fun holds the domain/codomain when this is a `(-> from to)` form.
	Fun *FunTypeExpr

	// List holds the element type when this is a `(list T)` form.
	List *TypeExpr

	// Params holds type arguments for a user type, e.g. `(Option a)`.
	Params []*TypeExpr

	// Record holds field types when this is a `(record (name T) …)` form.
	Record []RecordFieldType
}

// FunTypeExpr is `(-> from to)`, optionally annotated with an effect row
// `(-> from to (! eff …))` per §3.7/§4.2.
type FunTypeExpr struct {
	From *TypeExpr
	To   *TypeExpr
	Row  *EffectRowExpr
}

// RecordFieldType is one `(name Type)` pair inside a record type.
type RecordFieldType struct {
	Name string
	Type *TypeExpr
}

func NewTypeExpr(span Span, name string) *TypeExpr {
	return &TypeExpr{Base: Base{Sp: span}, Name: name}
}

func (t *TypeExpr) String() string {
	if t == nil {
		return "_"
	}
	switch {
	case t.Fun != nil:
		s := "(-> " + t.Fun.From.String() + " " + t.Fun.To.String()
		if t.Fun.Row != nil {
			s += " (! " + t.Fun.Row.String() + ")"
		}
		return s + ")"
	case t.List != nil:
		return "(list " + t.List.String() + ")"
	case len(t.Record) > 0:
		var b strings.Builder
		b.WriteString("(record")
		for _, f := range t.Record {
			b.WriteString(" (")
			b.WriteString(f.Name)
			b.WriteString(" ")
			b.WriteString(f.Type.String())
			b.WriteString(")")
		}
		b.WriteString(")")
		return b.String()
	case len(t.Params) > 0:
		var b strings.Builder
		b.WriteString("(")
		b.WriteString(t.Name)
		for _, p := range t.Params {
			b.WriteString(" ")
			b.WriteString(p.String())
		}
		b.WriteString(")")
		return b.String()
	default:
		return t.Name
	}
}

// EffectRowExpr is the syntactic form of an effect row per §3.7.
type EffectRowExpr struct {
	// Empty row when both Names and Var are unset.
	Names []string
	// Var names a row variable, for row polymorphism (e.g. "e" in "(! IO 'e)").
	Var string
}

func (r *EffectRowExpr) String() string {
	if r == nil {
		return ""
	}
	parts := append([]string{}, r.Names...)
	if r.Var != "" {
		parts = append(parts, "'"+r.Var)
	}
	return strings.Join(parts, " ")
}
