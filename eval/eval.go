package eval

import (
	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/errdefs"
)

// Eval reduces e to a value under ctx, per §4.5.2's rule table: strict,
// call-by-value, left-to-right.
func Eval(ctx *Context, e ast.Expr) (Value, error) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return evalLiteral(n.Literal), nil

	case *ast.IdentExpr:
		v, ok := ctx.Env.Lookup(n.Name)
		if !ok {
			return nil, &errdefs.UndefinedVariable{Name: n.Name, Pos: pos(e)}
		}
		return v, nil

	case *ast.HoleExpr:
		return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "cannot evaluate an unfilled hole"}

	case *ast.HashRefExpr:
		return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "hash reference not resolved against a codebase"}

	case *ast.ListExpr:
		elems := make([]Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := Eval(ctx, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &ListValue{Elems: elems}, nil

	case *ast.LambdaExpr:
		return &Closure{Params: n.Params, Body: n.Body, Env: ctx.Env}, nil

	case *ast.ApplyExpr:
		return evalApply(ctx, n)

	case *ast.IfExpr:
		cond, err := Eval(ctx, n.Cond)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(BoolValue)
		if !ok {
			return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "if condition is not a Bool"}
		}
		if bool(b) {
			return Eval(ctx, n.Then)
		}
		return Eval(ctx, n.Else)

	case *ast.LetExpr:
		v, err := Eval(ctx, n.Value)
		if err != nil {
			return nil, err
		}
		ctx.Env = ctx.Env.Extend(n.Name, v)
		return v, nil

	case *ast.LetInExpr:
		v, err := Eval(ctx, n.Value)
		if err != nil {
			return nil, err
		}
		return Eval(ctx.WithEnv(ctx.Env.Extend(n.Name, v)), n.Body)

	case *ast.LetRecExpr:
		v, err := evalRecBinding(ctx, n.Name, n.Value)
		if err != nil {
			return nil, err
		}
		ctx.Env = ctx.Env.Extend(n.Name, v)
		return v, nil

	case *ast.LetRecInExpr:
		v, err := evalRecBinding(ctx, n.Name, n.Value)
		if err != nil {
			return nil, err
		}
		return Eval(ctx.WithEnv(ctx.Env.Extend(n.Name, v)), n.Body)

	case *ast.RecExpr:
		return &RecClosure{Name: n.Name, Params: n.Params, Body: n.Body, Env: ctx.Env}, nil

	case *ast.MatchExpr:
		return evalMatch(ctx, n)

	case *ast.ConstructorExpr:
		args := make([]Value, len(n.Args))
		for i, a := range n.Args {
			v, err := Eval(ctx, a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &ConstructorValue{Name: n.Name, Args: args}, nil

	case *ast.TypeDefExpr:
		return UnitValue{}, nil

	case *ast.RecordExpr:
		return evalRecord(ctx, n.Fields)

	case *ast.AccessExpr:
		rv, err := Eval(ctx, n.Record)
		if err != nil {
			return nil, err
		}
		rec, ok := rv.(*RecordValue)
		if !ok {
			return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "access on a non-record value"}
		}
		v, ok := rec.Field(n.Field)
		if !ok {
			return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "no such field " + n.Field}
		}
		return v, nil

	case *ast.UpdateExpr:
		rv, err := Eval(ctx, n.Record)
		if err != nil {
			return nil, err
		}
		rec, ok := rv.(*RecordValue)
		if !ok {
			return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "update on a non-record value"}
		}
		updated, err := evalRecord(ctx, n.Fields)
		if err != nil {
			return nil, err
		}
		return rec.Merge(updated.(*RecordValue)), nil

	case *ast.BlockExpr:
		var result Value = UnitValue{}
		var err error
		for _, sub := range n.Exprs {
			result, err = Eval(ctx, sub)
			if err != nil {
				return nil, err
			}
		}
		return result, nil

	case *ast.PerformExpr:
		return evalPerform(ctx, n)

	case *ast.HandleExpr:
		return evalHandle(ctx, n)

	default:
		return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "eval: unsupported node"}
	}
}

func pos(e ast.Expr) ast.Position { return e.Span().Start }

func evalLiteral(lit ast.Literal) Value {
	switch lit.Kind {
	case ast.IntLit:
		return IntValue(lit.Int)
	case ast.FloatLit:
		return FloatValue(lit.Float)
	case ast.BoolLit:
		return BoolValue(lit.Bool)
	case ast.StringLit:
		return StringValue(lit.String)
	default:
		return UnitValue{}
	}
}

func evalRecBinding(ctx *Context, name string, value ast.Expr) (Value, error) {
	if lam, ok := value.(*ast.LambdaExpr); ok {
		return &RecClosure{Name: name, Params: lam.Params, Body: lam.Body, Env: ctx.Env}, nil
	}
	return Eval(ctx, value)
}

func evalRecord(ctx *Context, fields []ast.RecordField) (Value, error) {
	rec := &RecordValue{}
	for _, f := range fields {
		v, err := Eval(ctx, f.Value)
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, RecordFieldValue{Name: f.Name, Value: v})
	}
	return rec, nil
}

func evalApply(ctx *Context, n *ast.ApplyExpr) (Value, error) {
	fn, err := Eval(ctx, n.Func)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ctx, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return applyValue(ctx, fn, args, pos(n))
}

// applyValue invokes fn with args, per §4.5.2's Apply rule: each function
// value takes as many args as it has params (fewer raises ArityError), and
// any remaining args are applied to its result.
func applyValue(ctx *Context, fn Value, args []Value, at ast.Position) (Value, error) {
	for len(args) > 0 {
		switch f := fn.(type) {
		case *Closure:
			if len(f.Params) > len(args) {
				return nil, &errdefs.ArityError{Expected: len(f.Params), Got: len(args), Pos: at}
			}
			env := f.Env
			for i, p := range f.Params {
				env = env.Extend(p.Name, args[i])
			}
			rest := args[len(f.Params):]
			v, err := Eval(ctx.WithEnv(env), f.Body)
			if err != nil {
				return nil, err
			}
			fn, args = v, rest

		case *RecClosure:
			if len(f.Params) > len(args) {
				return nil, &errdefs.ArityError{Expected: len(f.Params), Got: len(args), Pos: at}
			}
			env := f.Env.Extend(f.Name, f)
			for i, p := range f.Params {
				env = env.Extend(p.Name, args[i])
			}
			rest := args[len(f.Params):]
			v, err := Eval(ctx.WithEnv(env), f.Body)
			if err != nil {
				return nil, err
			}
			fn, args = v, rest

		case *BuiltinFn:
			arity := builtinArity(f.Name)
			if arity > len(args) {
				return nil, &errdefs.ArityError{Expected: arity, Got: len(args), Pos: at}
			}
			v, err := callBuiltin(f.Name, args[:arity], at)
			if err != nil {
				return nil, err
			}
			fn, args = v, args[arity:]

		case *ContinuationValue:
			if len(args) != 1 {
				return nil, &errdefs.ArityError{Expected: 1, Got: len(args), Pos: at}
			}
			return f.k.Invoke(args[0])

		default:
			return nil, &errdefs.RuntimeError{Pos: at, Message: "cannot apply a non-function value (" + TypeName(fn) + ")"}
		}
	}
	return fn, nil
}

func evalMatch(ctx *Context, n *ast.MatchExpr) (Value, error) {
	scrutinee, err := Eval(ctx, n.Scrutinee)
	if err != nil {
		return nil, err
	}
	for _, mc := range n.Cases {
		env, ok := matchPattern(ctx.Env, mc.Pattern, scrutinee)
		if ok {
			return Eval(ctx.WithEnv(env), mc.Body)
		}
	}
	return nil, &errdefs.NonExhaustiveMatch{Pos: pos(n)}
}

// matchPattern reports whether v matches p, and if so the environment
// extended with its bindings, per §4.4.4/§4.5.2.
func matchPattern(env *Env, p ast.Pattern, v Value) (*Env, bool) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return env, true

	case *ast.VarPattern:
		return env.Extend(pat.Name, v), true

	case *ast.LiteralPattern:
		return env, literalMatches(pat.Literal, v)

	case *ast.ListPattern:
		lv, ok := v.(*ListValue)
		if !ok || len(lv.Elems) != len(pat.Elems) {
			return env, false
		}
		for i, sub := range pat.Elems {
			var matched bool
			env, matched = matchPattern(env, sub, lv.Elems[i])
			if !matched {
				return env, false
			}
		}
		return env, true

	case *ast.ConstructorPattern:
		cv, ok := v.(*ConstructorValue)
		if !ok || cv.Name != pat.Name || len(cv.Args) != len(pat.Args) {
			return env, false
		}
		for i, sub := range pat.Args {
			var matched bool
			env, matched = matchPattern(env, sub, cv.Args[i])
			if !matched {
				return env, false
			}
		}
		return env, true

	default:
		return env, false
	}
}

func literalMatches(lit ast.Literal, v Value) bool {
	switch lit.Kind {
	case ast.IntLit:
		iv, ok := v.(IntValue)
		return ok && int64(iv) == lit.Int
	case ast.FloatLit:
		fv, ok := v.(FloatValue)
		return ok && float64(fv) == lit.Float
	case ast.BoolLit:
		bv, ok := v.(BoolValue)
		return ok && bool(bv) == lit.Bool
	case ast.StringLit:
		sv, ok := v.(StringValue)
		return ok && string(sv) == lit.String
	default:
		return false
	}
}

// evalPerform implements the Perform half of §4.5.3: find the innermost
// frame handling this effect, hand it the arguments and a fresh resume
// channel, and block until the handler (or a nested Invoke) resumes it.
func evalPerform(ctx *Context, n *ast.PerformExpr) (Value, error) {
	f, ok := ctx.findFrame(n.Effect)
	if !ok {
		return nil, &errdefs.UnhandledEffect{Effect: n.Effect, Pos: pos(n)}
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ctx, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	resume := make(chan resumeMsg)
	f.perform <- performMsg{effect: n.Effect, args: args, resume: resume}
	r := <-resume
	return r.value, r.err
}
