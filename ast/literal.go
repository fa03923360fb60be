package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// LiteralKind distinguishes the primitive literal shapes of §3.2.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	BoolLit
	StringLit
)

// Literal is one of Int(i64) | Float(f64) | Bool(bool) | String(utf-8).
type Literal struct {
	Kind   LiteralKind
	Int    int64
	Float  float64
	Bool   bool
	String string
}

// Source renders l as source text that the parser reads back as the same
// literal.
func (l Literal) Source() string {
	switch l.Kind {
	case IntLit:
		return fmt.Sprintf("%d", l.Int)
	case FloatLit:
		s := strconv.FormatFloat(l.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case BoolLit:
		return fmt.Sprintf("%t", l.Bool)
	case StringLit:
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`).Replace(l.String) + `"`
	default:
		return "<bad-literal>"
	}
}

// TypeName is the primitive type name this literal carries.
func (l Literal) TypeName() string {
	switch l.Kind {
	case IntLit:
		return "Int"
	case FloatLit:
		return "Float"
	case BoolLit:
		return "Bool"
	case StringLit:
		return "String"
	default:
		return "?"
	}
}
