// Package eval implements the tree-walking evaluator of §4.5: strict,
// call-by-value, left-to-right reduction over immutable persistent
// environments, with one-shot delimited continuations for Perform/Handle
// built on goroutines and channels.
package eval

import (
	"fmt"
	"strings"

	"github.com/lumenlang/lumen/ast"
)

// Value is a runtime value, disjoint from the AST per §3.6.
type Value interface {
	valueNode()
	String() string
}

type IntValue int64
type FloatValue float64
type BoolValue bool
type StringValue string

// UnitValue is the sole inhabitant of Unit.
type UnitValue struct{}

type ListValue struct {
	Elems []Value
}

// Closure pairs a parameter list and body with its captured environment.
type Closure struct {
	Params []ast.Param
	Body   ast.Expr
	Env    *Env
}

// RecClosure additionally rebinds its own name on invocation, per §3.6/§9.
type RecClosure struct {
	Name   string
	Params []ast.Param
	Body   ast.Expr
	Env    *Env
}

// ConstructorValue is a fully-applied data constructor.
type ConstructorValue struct {
	Name string
	Args []Value
}

// RecordFieldValue is one evaluated record field.
type RecordFieldValue struct {
	Name  string
	Value Value
}

// RecordValue is an evaluated record literal, per §3.2/§3.6.
type RecordValue struct {
	Fields []RecordFieldValue
}

// Field looks up a field by name.
func (r *RecordValue) Field(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Merge returns a copy of r with other's fields overwriting matching names
// and appending any new ones, per UpdateExpr's semantics.
func (r *RecordValue) Merge(other *RecordValue) *RecordValue {
	out := &RecordValue{Fields: append([]RecordFieldValue(nil), r.Fields...)}
	for _, of := range other.Fields {
		replaced := false
		for i, f := range out.Fields {
			if f.Name == of.Name {
				out.Fields[i].Value = of.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out.Fields = append(out.Fields, of)
		}
	}
	return out
}

// BuiltinFn dispatches to one of §6.3's predefined bindings by name.
type BuiltinFn struct {
	Name string
}

// ContinuationValue wraps the one-shot delimited continuation captured by a
// Handle at the point of a Perform, per §4.5.3.
type ContinuationValue struct {
	k *Continuation
}

func (IntValue) valueNode()         {}
func (FloatValue) valueNode()       {}
func (BoolValue) valueNode()        {}
func (StringValue) valueNode()      {}
func (UnitValue) valueNode()        {}
func (*ListValue) valueNode()       {}
func (*Closure) valueNode()         {}
func (*RecClosure) valueNode()      {}
func (*ConstructorValue) valueNode()  {}
func (*RecordValue) valueNode()       {}
func (*BuiltinFn) valueNode()         {}
func (*ContinuationValue) valueNode() {}

func (v IntValue) String() string    { return fmt.Sprintf("%d", int64(v)) }
func (v FloatValue) String() string  { return fmt.Sprintf("%g", float64(v)) }
func (v BoolValue) String() string   { return fmt.Sprintf("%t", bool(v)) }
func (v StringValue) String() string { return fmt.Sprintf("%q", string(v)) }
func (UnitValue) String() string     { return "()" }

func (v *ListValue) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (c *Closure) String() string    { return "<closure>" }
func (c *RecClosure) String() string { return fmt.Sprintf("<rec-closure %s>", c.Name) }

func (v *ConstructorValue) String() string {
	if len(v.Args) == 0 {
		return v.Name
	}
	parts := make([]string, len(v.Args))
	for i, a := range v.Args {
		parts[i] = a.String()
	}
	return "(" + v.Name + " " + strings.Join(parts, " ") + ")"
}

func (r *RecordValue) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.Name + " = " + f.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (b *BuiltinFn) String() string         { return "<builtin " + b.Name + ">" }
func (c *ContinuationValue) String() string { return "<continuation>" }

// TypeName names the runtime shape of v, for RuntimeError messages.
func TypeName(v Value) string {
	switch v.(type) {
	case IntValue:
		return "Int"
	case FloatValue:
		return "Float"
	case BoolValue:
		return "Bool"
	case StringValue:
		return "String"
	case UnitValue:
		return "Unit"
	case *ListValue:
		return "List"
	case *Closure, *RecClosure, *BuiltinFn:
		return "Function"
	case *ConstructorValue:
		return "Constructor"
	case *RecordValue:
		return "Record"
	case *ContinuationValue:
		return "Continuation"
	default:
		return "?"
	}
}
