// Package types implements the semantic type representation and
// Hindley-Milner unification engine described in §3.3/§4.4: primitive,
// variable, function, list, user, and record types, plus substitution-based
// unification with an occurs-check.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes the shapes a Type can take.
type Kind int

const (
	KindPrim Kind = iota
	KindVar
	KindFun
	KindList
	KindUser
	KindRecord
)

// Primitive names, per §3.3.
const (
	Int    = "Int"
	Float  = "Float"
	Bool   = "Bool"
	String = "String"
	Unit   = "Unit"
)

// Type is a semantic type term. Exactly one group of fields is meaningful
// per Kind; the zero value of the others is ignored.
type Type struct {
	Kind Kind

	// KindPrim / KindUser
	Name string

	// KindVar
	Var int

	// KindFun
	From *Type
	To   *Type
	Row  *Row // nil means an unconstrained/unannotated row.

	// KindList
	Elem *Type

	// KindUser
	Params []*Type

	// KindRecord
	Fields []Field
}

// Field is one (name, type) pair of a record type, per §3.3's requirement
// that record fields are stored in sorted order for canonicalization.
type Field struct {
	Name string
	Type *Type
}

func Prim(name string) *Type { return &Type{Kind: KindPrim, Name: name} }

func NewVar(id int) *Type { return &Type{Kind: KindVar, Var: id} }

func Fun(from, to *Type) *Type { return &Type{Kind: KindFun, From: from, To: to} }

func FunWithRow(from, to *Type, row *Row) *Type {
	return &Type{Kind: KindFun, From: from, To: to, Row: row}
}

func List(elem *Type) *Type { return &Type{Kind: KindList, Elem: elem} }

func User(name string, params ...*Type) *Type {
	return &Type{Kind: KindUser, Name: name, Params: params}
}

func Record(fields ...Field) *Type {
	sorted := append([]Field{}, fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Type{Kind: KindRecord, Fields: sorted}
}

// String renders a type in the same S-expression surface syntax ast.TypeExpr
// produces, so checker error messages read like the source the user wrote.
func (t *Type) String() string {
	if t == nil {
		return "_"
	}
	switch t.Kind {
	case KindPrim:
		return t.Name
	case KindVar:
		return varName(t.Var)
	case KindFun:
		s := fmt.Sprintf("(-> %s %s", t.From.String(), t.To.String())
		if t.Row != nil && !t.Row.IsEmpty() {
			s += fmt.Sprintf(" (! %s)", t.Row.String())
		}
		return s + ")"
	case KindList:
		return fmt.Sprintf("(list %s)", t.Elem.String())
	case KindUser:
		if len(t.Params) == 0 {
			return t.Name
		}
		var b strings.Builder
		fmt.Fprintf(&b, "(%s", t.Name)
		for _, p := range t.Params {
			fmt.Fprintf(&b, " %s", p.String())
		}
		b.WriteString(")")
		return b.String()
	case KindRecord:
		var b strings.Builder
		b.WriteString("(record")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, " (%s %s)", f.Name, f.Type.String())
		}
		b.WriteString(")")
		return b.String()
	default:
		return "?"
	}
}

// varName renders a type-variable id as a lowercase letter sequence (a, b,
// …, z, a1, b1, …), matching the teacher's convention for printing inferred
// generics in diagnostics.
func varName(id int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	if id < 26 {
		return string(letters[id])
	}
	return fmt.Sprintf("%c%d", letters[id%26], id/26)
}

// FreeVars returns the set of type-variable ids occurring free in t.
func FreeVars(t *Type) map[int]bool {
	out := map[int]bool{}
	collectFreeVars(t, out)
	return out
}

func collectFreeVars(t *Type, out map[int]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case KindVar:
		out[t.Var] = true
	case KindFun:
		collectFreeVars(t.From, out)
		collectFreeVars(t.To, out)
	case KindList:
		collectFreeVars(t.Elem, out)
	case KindUser:
		for _, p := range t.Params {
			collectFreeVars(p, out)
		}
	case KindRecord:
		for _, f := range t.Fields {
			collectFreeVars(f.Type, out)
		}
	}
}
