package eval

import (
	"fmt"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/errdefs"
)

// builtinNames lists every predefined binding of §6.3; kept in sync with
// checker.builtinScope so the evaluator and the checker agree on what's in
// scope.
var builtinNames = []string{
	"+", "-", "*", "/", "%",
	"+.", "-.", "*.", "/.",
	"<", ">", "<=", ">=",
	"=", "!=",
	"++",
	"cons", "head", "tail", "length", "empty?",
	"print",
}

// BuiltinEnv returns an environment with every predefined name bound to its
// BuiltinFn value.
func BuiltinEnv() *Env {
	env := NewEnv()
	for _, name := range builtinNames {
		env = env.Extend(name, &BuiltinFn{Name: name})
	}
	return env
}

func builtinArity(name string) int {
	switch name {
	case "head", "tail", "length", "empty?", "print":
		return 1
	default:
		return 2
	}
}

func callBuiltin(name string, args []Value, at ast.Position) (Value, error) {
	switch name {
	case "+", "-", "*", "/", "%":
		return intArith(name, args[0], args[1], at)
	case "+.", "-.", "*.", "/.":
		return floatArith(name, args[0], args[1], at)
	case "<", ">", "<=", ">=":
		return intCompare(name, args[0], args[1], at)
	case "=":
		return BoolValue(valuesEqual(args[0], args[1])), nil
	case "!=":
		return BoolValue(!valuesEqual(args[0], args[1])), nil
	case "++":
		a, ok1 := args[0].(StringValue)
		b, ok2 := args[1].(StringValue)
		if !ok1 || !ok2 {
			return nil, &errdefs.RuntimeError{Pos: at, Message: "++ expects two Strings"}
		}
		return StringValue(string(a) + string(b)), nil
	case "cons":
		l, ok := args[1].(*ListValue)
		if !ok {
			return nil, &errdefs.RuntimeError{Pos: at, Message: "cons expects a List as its second argument"}
		}
		elems := make([]Value, 0, len(l.Elems)+1)
		elems = append(elems, args[0])
		elems = append(elems, l.Elems...)
		return &ListValue{Elems: elems}, nil
	case "head":
		l, ok := args[0].(*ListValue)
		if !ok || len(l.Elems) == 0 {
			return nil, &errdefs.RuntimeError{Pos: at, Message: "head of an empty or non-List value"}
		}
		return l.Elems[0], nil
	case "tail":
		l, ok := args[0].(*ListValue)
		if !ok || len(l.Elems) == 0 {
			return nil, &errdefs.RuntimeError{Pos: at, Message: "tail of an empty or non-List value"}
		}
		return &ListValue{Elems: l.Elems[1:]}, nil
	case "length":
		l, ok := args[0].(*ListValue)
		if !ok {
			return nil, &errdefs.RuntimeError{Pos: at, Message: "length expects a List"}
		}
		return IntValue(int64(len(l.Elems))), nil
	case "empty?":
		l, ok := args[0].(*ListValue)
		if !ok {
			return nil, &errdefs.RuntimeError{Pos: at, Message: "empty? expects a List"}
		}
		return BoolValue(len(l.Elems) == 0), nil
	case "print":
		fmt.Println(args[0].String())
		return args[0], nil
	default:
		return nil, &errdefs.RuntimeError{Pos: at, Message: "unknown builtin " + name}
	}
}

func intArith(name string, a, b Value, at ast.Position) (Value, error) {
	x, ok1 := a.(IntValue)
	y, ok2 := b.(IntValue)
	if !ok1 || !ok2 {
		return nil, &errdefs.RuntimeError{Pos: at, Message: name + " expects two Ints"}
	}
	switch name {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return nil, &errdefs.DivisionByZero{Pos: at}
		}
		return x / y, nil
	case "%":
		if y == 0 {
			return nil, &errdefs.DivisionByZero{Pos: at}
		}
		return x % y, nil
	default:
		return nil, &errdefs.RuntimeError{Pos: at, Message: "unknown arithmetic operator " + name}
	}
}

func floatArith(name string, a, b Value, at ast.Position) (Value, error) {
	x, ok1 := a.(FloatValue)
	y, ok2 := b.(FloatValue)
	if !ok1 || !ok2 {
		return nil, &errdefs.RuntimeError{Pos: at, Message: name + " expects two Floats"}
	}
	switch name {
	case "+.":
		return x + y, nil
	case "-.":
		return x - y, nil
	case "*.":
		return x * y, nil
	case "/.":
		if y == 0 {
			return nil, &errdefs.DivisionByZero{Pos: at}
		}
		return x / y, nil
	default:
		return nil, &errdefs.RuntimeError{Pos: at, Message: "unknown arithmetic operator " + name}
	}
}

func intCompare(name string, a, b Value, at ast.Position) (Value, error) {
	x, ok1 := a.(IntValue)
	y, ok2 := b.(IntValue)
	if !ok1 || !ok2 {
		return nil, &errdefs.RuntimeError{Pos: at, Message: name + " expects two Ints"}
	}
	switch name {
	case "<":
		return BoolValue(x < y), nil
	case ">":
		return BoolValue(x > y), nil
	case "<=":
		return BoolValue(x <= y), nil
	case ">=":
		return BoolValue(x >= y), nil
	default:
		return nil, &errdefs.RuntimeError{Pos: at, Message: "unknown comparison operator " + name}
	}
}

// valuesEqual implements structural equality for §6.3's `=`/`!=`.
func valuesEqual(a, b Value) bool {
	switch x := a.(type) {
	case IntValue:
		y, ok := b.(IntValue)
		return ok && x == y
	case FloatValue:
		y, ok := b.(FloatValue)
		return ok && x == y
	case BoolValue:
		y, ok := b.(BoolValue)
		return ok && x == y
	case StringValue:
		y, ok := b.(StringValue)
		return ok && x == y
	case UnitValue:
		_, ok := b.(UnitValue)
		return ok
	case *ListValue:
		y, ok := b.(*ListValue)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !valuesEqual(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *ConstructorValue:
		y, ok := b.(*ConstructorValue)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !valuesEqual(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
