package ast

import (
	"fmt"
	"strings"
)

// Unparse renders an expression back to canonical S-expression source. It is
// the inverse of parser.Parse modulo spans, satisfying the parser round-trip
// property of §8.1: parse(Unparse(e)) == e modulo spans.
func Unparse(e Expr) string {
	var b strings.Builder
	unparse(&b, e)
	return b.String()
}

func unparseParams(b *strings.Builder, params []Param) {
	b.WriteString("(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(" ")
		}
		if p.Type != nil {
			fmt.Fprintf(b, "(%s : %s)", p.Name, p.Type.String())
		} else {
			b.WriteString(p.Name)
		}
	}
	b.WriteString(")")
}

func unparsePattern(b *strings.Builder, p Pattern) {
	switch v := p.(type) {
	case *WildcardPattern:
		b.WriteString("_")
	case *VarPattern:
		b.WriteString(v.Name)
	case *LiteralPattern:
		b.WriteString(v.Literal.Source())
	case *ListPattern:
		b.WriteString("(list")
		for _, e := range v.Elems {
			b.WriteString(" ")
			unparsePattern(b, e)
		}
		b.WriteString(")")
	case *ConstructorPattern:
		if len(v.Args) == 0 {
			fmt.Fprintf(b, "(%s)", v.Name)
			return
		}
		fmt.Fprintf(b, "(%s", v.Name)
		for _, a := range v.Args {
			b.WriteString(" ")
			unparsePattern(b, a)
		}
		b.WriteString(")")
	}
}

func unparse(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *LiteralExpr:
		b.WriteString(n.Literal.Source())
	case *IdentExpr:
		b.WriteString(n.Name)
	case *HoleExpr:
		if n.Name == "" {
			b.WriteString("@")
		} else {
			fmt.Fprintf(b, "@%s", n.Name)
		}
	case *HashRefExpr:
		fmt.Fprintf(b, "#%s", n.Hash)
	case *ListExpr:
		b.WriteString("(list")
		for _, el := range n.Elems {
			b.WriteString(" ")
			unparse(b, el)
		}
		b.WriteString(")")
	case *LambdaExpr:
		b.WriteString("(fn ")
		unparseParams(b, n.Params)
		b.WriteString(" ")
		unparse(b, n.Body)
		b.WriteString(")")
	case *ApplyExpr:
		b.WriteString("(")
		unparse(b, n.Func)
		for _, a := range n.Args {
			b.WriteString(" ")
			unparse(b, a)
		}
		b.WriteString(")")
	case *IfExpr:
		b.WriteString("(if ")
		unparse(b, n.Cond)
		b.WriteString(" ")
		unparse(b, n.Then)
		b.WriteString(" ")
		unparse(b, n.Else)
		b.WriteString(")")
	case *LetExpr:
		unparseLet(b, "let", n.Name, n.Type, n.Value)
	case *LetInExpr:
		unparseLetIn(b, "let", n.Name, n.Type, n.Value, n.Body)
	case *LetRecExpr:
		unparseLet(b, "let-rec", n.Name, n.Type, n.Value)
	case *LetRecInExpr:
		unparseLetIn(b, "let-rec", n.Name, n.Type, n.Value, n.Body)
	case *RecExpr:
		b.WriteString("(rec ")
		b.WriteString(n.Name)
		b.WriteString(" ")
		unparseParams(b, n.Params)
		if n.RetType != nil {
			fmt.Fprintf(b, " : %s", n.RetType.String())
		}
		b.WriteString(" ")
		unparse(b, n.Body)
		b.WriteString(")")
	case *MatchExpr:
		b.WriteString("(match ")
		unparse(b, n.Scrutinee)
		for _, c := range n.Cases {
			b.WriteString(" (")
			unparsePattern(b, c.Pattern)
			b.WriteString(" ")
			unparse(b, c.Body)
			b.WriteString(")")
		}
		b.WriteString(")")
	case *ConstructorExpr:
		if len(n.Args) == 0 {
			b.WriteString(n.Name)
			return
		}
		fmt.Fprintf(b, "(%s", n.Name)
		for _, a := range n.Args {
			b.WriteString(" ")
			unparse(b, a)
		}
		b.WriteString(")")
	case *TypeDefExpr:
		fmt.Fprintf(b, "(type %s", n.Name)
		for _, p := range n.Params {
			b.WriteString(" ")
			b.WriteString(p)
		}
		for _, c := range n.Constructors {
			fmt.Fprintf(b, " (%s", c.Name)
			for _, f := range c.Fields {
				b.WriteString(" ")
				b.WriteString(f.String())
			}
			b.WriteString(")")
		}
		b.WriteString(")")
	case *RecordExpr:
		b.WriteString("(record")
		for _, f := range sortedFields(n.Fields) {
			fmt.Fprintf(b, " (%s ", f.Name)
			unparse(b, f.Value)
			b.WriteString(")")
		}
		b.WriteString(")")
	case *AccessExpr:
		b.WriteString("(access ")
		unparse(b, n.Record)
		fmt.Fprintf(b, " %s)", n.Field)
	case *UpdateExpr:
		b.WriteString("(update ")
		unparse(b, n.Record)
		for _, f := range sortedFields(n.Fields) {
			fmt.Fprintf(b, " (%s ", f.Name)
			unparse(b, f.Value)
			b.WriteString(")")
		}
		b.WriteString(")")
	case *BlockExpr:
		b.WriteString("(do")
		for _, s := range n.Exprs {
			b.WriteString(" ")
			unparse(b, s)
		}
		b.WriteString(")")
	case *PerformExpr:
		fmt.Fprintf(b, "(perform %s", n.Effect)
		for _, a := range n.Args {
			b.WriteString(" ")
			unparse(b, a)
		}
		b.WriteString(")")
	case *HandleExpr:
		b.WriteString("(handle ")
		unparse(b, n.Body)
		for _, h := range n.Handlers {
			fmt.Fprintf(b, " (%s", h.Effect)
			for _, bd := range h.Binders {
				b.WriteString(" ")
				b.WriteString(bd)
			}
			b.WriteString(" ")
			unparse(b, h.Body)
			b.WriteString(")")
		}
		if n.Return != nil {
			fmt.Fprintf(b, " (return %s ", n.Return.Binder)
			unparse(b, n.Return.Body)
			b.WriteString(")")
		}
		b.WriteString(")")
	default:
		b.WriteString("<?>")
	}
}

func unparseLet(b *strings.Builder, kw, name string, ty *TypeExpr, value Expr) {
	fmt.Fprintf(b, "(%s %s", kw, name)
	if ty != nil {
		fmt.Fprintf(b, " : %s", ty.String())
	}
	b.WriteString(" ")
	unparse(b, value)
	b.WriteString(")")
}

func unparseLetIn(b *strings.Builder, kw, name string, ty *TypeExpr, value, body Expr) {
	fmt.Fprintf(b, "(%s %s", kw, name)
	if ty != nil {
		fmt.Fprintf(b, " : %s", ty.String())
	}
	b.WriteString(" ")
	unparse(b, value)
	b.WriteString(" in ")
	unparse(b, body)
	b.WriteString(")")
}

func sortedFields(fields []RecordField) []RecordField {
	out := append([]RecordField{}, fields...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Name > out[j].Name; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
