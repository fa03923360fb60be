// Package checker implements the Hindley-Milner type checker and effect
// checker of §4.4: constraint generation fused with unification (a
// textbook Algorithm W variant, equivalent to the spec's two-phase
// generate-then-solve description), let-polymorphism via generalization at
// let/let-rec boundaries, and a parallel effect-row pass per §4.4.5.
package checker

import (
	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/diagnostic"
	"github.com/lumenlang/lumen/errdefs"
	"github.com/lumenlang/lumen/types"
)

// CtorInfo is a registered constructor: its declaring type's name, the
// template variables shared with sibling constructors, and its field types
// expressed over those template variables (fresh-instantiated per use).
type CtorInfo struct {
	Name      string
	TypeName  string
	ParamVars []int
	Fields    []*types.Type
}

// TypeDefInfo is a registered user type, per §3.9/§4.4.2's "Registers the
// type; adds each constructor as a scheme."
type TypeDefInfo struct {
	Name         string
	Params       []string
	ParamVars    []int
	Constructors []string // constructor names, in declaration order.
}

// Checker holds the mutable state of one inference run: the substitution
// accumulated by the solver, the fresh-variable counter, and the registries
// built up as TypeDef forms are processed.
type Checker struct {
	gen      *types.VarGen
	subst    types.Subst
	typeDefs map[string]*TypeDefInfo
	ctors    map[string]*CtorInfo
}

// New returns a Checker with an empty registry; callers typically process a
// whole file/session's forms through it so TypeDefs accumulate.
func New() *Checker {
	return &Checker{
		gen:      &types.VarGen{},
		subst:    types.Subst{},
		typeDefs: map[string]*TypeDefInfo{},
		ctors:    map[string]*CtorInfo{},
	}
}

// BuiltinEnv returns a fresh top-level Env seeded with §6.3's predefined
// bindings.
func BuiltinEnv() *types.Env {
	env := types.NewEnv()
	for name, scheme := range builtinScope() {
		env.Bind(name, scheme)
	}
	return env
}

func (c *Checker) unify(pos ast.Position, a, b *types.Type) error {
	s, err := types.Unify(c.subst, a, b)
	if err != nil {
		switch e := err.(type) {
		case *errdefs.TypeMismatch:
			e.Pos = pos
		case *errdefs.InfiniteType:
			e.Pos = pos
		}
		return err
	}
	c.subst = s
	return nil
}

func pos(e ast.Expr) ast.Position { return e.Span().Start }

// Infer computes the principal type of e under env, per §4.4.2. The
// Checker's internal substitution accumulates across calls, so callers
// processing a sequence of top-level forms should reuse one Checker and
// apply the final substitution to each returned type before relying on it
// (Finalize does this).
func (c *Checker) Infer(env *types.Env, e ast.Expr) (*types.Type, error) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return types.Prim(n.Literal.TypeName()), nil

	case *ast.IdentExpr:
		scheme, ok := env.Lookup(n.Name)
		if !ok {
			return nil, &errdefs.UndefinedVariable{Name: n.Name, Pos: pos(e), Suggestion: diagnostic.Suggestion(n.Name, env.Names())}
		}
		return types.Instantiate(c.gen, scheme), nil

	case *ast.HoleExpr:
		if n.TypeHint != nil {
			return c.resolveType(n.TypeHint, map[string]*types.Type{}), nil
		}
		return c.gen.Fresh(), nil

	case *ast.HashRefExpr:
		// A bare hash reference's type is resolved by the codebase (it
		// looks up the stored definition's principal type); the checker
		// alone cannot know it, so a fresh variable stands in.
		return c.gen.Fresh(), nil

	case *ast.ListExpr:
		elemTy := c.gen.Fresh()
		for _, el := range n.Elems {
			ty, err := c.Infer(env, el)
			if err != nil {
				return nil, err
			}
			if err := c.unify(pos(el), elemTy, ty); err != nil {
				return nil, err
			}
		}
		return types.List(elemTy), nil

	case *ast.LambdaExpr:
		return c.inferLambda(env, n.Params, n.Body)

	case *ast.ApplyExpr:
		fnTy, err := c.Infer(env, n.Func)
		if err != nil {
			return nil, err
		}
		return c.inferApply(env, pos(e), fnTy, n.Args)

	case *ast.IfExpr:
		condTy, err := c.Infer(env, n.Cond)
		if err != nil {
			return nil, err
		}
		if err := c.unify(pos(n.Cond), condTy, types.Prim(types.Bool)); err != nil {
			return nil, err
		}
		thenTy, err := c.Infer(env, n.Then)
		if err != nil {
			return nil, err
		}
		elseTy, err := c.Infer(env, n.Else)
		if err != nil {
			return nil, err
		}
		if err := c.unify(pos(e), thenTy, elseTy); err != nil {
			return nil, err
		}
		return thenTy, nil

	case *ast.LetExpr:
		return c.inferLet(env, n.Name, n.Type, n.Value)

	case *ast.LetInExpr:
		valTy, childEnv, err := c.inferLetBinding(env, n.Name, n.Type, n.Value)
		if err != nil {
			return nil, err
		}
		_ = valTy
		return c.Infer(childEnv, n.Body)

	case *ast.LetRecExpr:
		return c.inferLetRec(env, n.Name, n.Type, n.Value)

	case *ast.LetRecInExpr:
		_, childEnv, err := c.inferLetRecBinding(env, n.Name, n.Type, n.Value)
		if err != nil {
			return nil, err
		}
		return c.Infer(childEnv, n.Body)

	case *ast.RecExpr:
		return c.inferRec(env, n)

	case *ast.MatchExpr:
		return c.inferMatch(env, n)

	case *ast.ConstructorExpr:
		scheme, ok := env.Lookup(n.Name)
		if !ok {
			return nil, &errdefs.UndefinedVariable{Name: n.Name, Pos: pos(e), Suggestion: diagnostic.Suggestion(n.Name, env.Names())}
		}
		fnTy := types.Instantiate(c.gen, scheme)
		if len(n.Args) == 0 {
			return fnTy, nil
		}
		return c.inferApply(env, pos(e), fnTy, n.Args)

	case *ast.TypeDefExpr:
		c.registerTypeDef(env, n)
		return types.Prim(types.Unit), nil

	case *ast.RecordExpr:
		fields := make([]types.Field, len(n.Fields))
		for i, f := range n.Fields {
			ty, err := c.Infer(env, f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = types.Field{Name: f.Name, Type: ty}
		}
		return types.Record(fields...), nil

	case *ast.AccessExpr:
		recTy, err := c.Infer(env, n.Record)
		if err != nil {
			return nil, err
		}
		resolved := types.Apply(c.subst, recTy)
		if resolved.Kind == types.KindRecord {
			for _, f := range resolved.Fields {
				if f.Name == n.Field {
					return f.Type, nil
				}
			}
			return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "no such field: " + n.Field}
		}
		// Record type not yet resolved to concrete fields; constrain it
		// with a single-field record carrying a fresh result type.
		result := c.gen.Fresh()
		if err := c.unify(pos(e), recTy, types.Record(types.Field{Name: n.Field, Type: result})); err != nil {
			return nil, err
		}
		return result, nil

	case *ast.UpdateExpr:
		recTy, err := c.Infer(env, n.Record)
		if err != nil {
			return nil, err
		}
		for _, f := range n.Fields {
			ty, err := c.Infer(env, f.Value)
			if err != nil {
				return nil, err
			}
			if err := c.unify(pos(e), recTy, types.Record(types.Field{Name: f.Name, Type: ty})); err != nil {
				return nil, err
			}
		}
		return recTy, nil

	case *ast.BlockExpr:
		var last *types.Type = types.Prim(types.Unit)
		for _, s := range n.Exprs {
			ty, err := c.Infer(env, s)
			if err != nil {
				return nil, err
			}
			last = ty
		}
		return last, nil

	case *ast.PerformExpr:
		// Effect labels (IO, State, …) are not term-level bindings, so an
		// operation's result type is unconstrained at the type level; its
		// effect is tracked separately by InferEffects (§4.4.5).
		for _, a := range n.Args {
			if _, err := c.Infer(env, a); err != nil {
				return nil, err
			}
		}
		return c.gen.Fresh(), nil

	case *ast.HandleExpr:
		return c.inferHandle(env, n)

	default:
		return nil, &errdefs.RuntimeError{Pos: pos(e), Message: "checker: unsupported node"}
	}
}

func (c *Checker) inferLambda(env *types.Env, params []ast.Param, body ast.Expr) (*types.Type, error) {
	child := env.Push()
	paramTys := make([]*types.Type, len(params))
	for i, p := range params {
		var pt *types.Type
		if p.Type != nil {
			pt = c.resolveType(p.Type, map[string]*types.Type{})
		} else {
			pt = c.gen.Fresh()
		}
		paramTys[i] = pt
		child.Bind(p.Name, types.Mono(pt))
	}
	bodyTy, err := c.Infer(child, body)
	if err != nil {
		return nil, err
	}
	result := bodyTy
	for i := len(paramTys) - 1; i >= 0; i-- {
		result = types.Fun(paramTys[i], result)
	}
	return result, nil
}

func (c *Checker) inferApply(env *types.Env, callPos ast.Position, fnTy *types.Type, args []ast.Expr) (*types.Type, error) {
	cur := fnTy
	for _, a := range args {
		argTy, err := c.Infer(env, a)
		if err != nil {
			return nil, err
		}
		result := c.gen.Fresh()
		if err := c.unify(callPos, cur, types.Fun(argTy, result)); err != nil {
			return nil, err
		}
		cur = result
	}
	return cur, nil
}

func (c *Checker) inferLetBinding(env *types.Env, name string, ty *ast.TypeExpr, value ast.Expr) (*types.Type, *types.Env, error) {
	valTy, err := c.Infer(env, value)
	if err != nil {
		return nil, nil, err
	}
	if ty != nil {
		annotated := c.resolveType(ty, map[string]*types.Type{})
		if err := c.unify(pos(value), valTy, annotated); err != nil {
			return nil, nil, err
		}
	}
	resolved := types.Apply(c.subst, valTy)
	scheme := types.Generalize(types.ApplyEnv(c.subst, env), resolved)
	child := env.Push()
	child.Bind(name, scheme)
	return resolved, child, nil
}

func (c *Checker) inferLet(env *types.Env, name string, ty *ast.TypeExpr, value ast.Expr) (*types.Type, error) {
	valTy, _, err := c.inferLetBinding(env, name, ty, value)
	return valTy, err
}

func (c *Checker) inferLetRecBinding(env *types.Env, name string, ty *ast.TypeExpr, value ast.Expr) (*types.Type, *types.Env, error) {
	selfTy := c.gen.Fresh()
	rec := env.Push()
	rec.Bind(name, types.Mono(selfTy))
	valTy, err := c.Infer(rec, value)
	if err != nil {
		return nil, nil, err
	}
	if err := c.unify(pos(value), selfTy, valTy); err != nil {
		return nil, nil, err
	}
	if ty != nil {
		annotated := c.resolveType(ty, map[string]*types.Type{})
		if err := c.unify(pos(value), valTy, annotated); err != nil {
			return nil, nil, err
		}
	}
	resolved := types.Apply(c.subst, valTy)
	scheme := types.Generalize(types.ApplyEnv(c.subst, env), resolved)
	child := env.Push()
	child.Bind(name, scheme)
	return resolved, child, nil
}

func (c *Checker) inferLetRec(env *types.Env, name string, ty *ast.TypeExpr, value ast.Expr) (*types.Type, error) {
	valTy, _, err := c.inferLetRecBinding(env, name, ty, value)
	return valTy, err
}

// inferRec types `(rec name (params) [: ret] body)`, sugar for a recursive
// lambda per §4.4.2. Unlike LetRecIn, a bare Rec is itself the function
// value (typically applied immediately), so its result is the lambda's own
// type rather than a body evaluated under an extended scope.
func (c *Checker) inferRec(env *types.Env, n *ast.RecExpr) (*types.Type, error) {
	selfTy := c.gen.Fresh()
	rec := env.Push()
	rec.Bind(n.Name, types.Mono(selfTy))
	lam := &ast.LambdaExpr{Base: n.Base, Params: n.Params, Body: n.Body}
	lamTy, err := c.Infer(rec, lam)
	if err != nil {
		return nil, err
	}
	if err := c.unify(pos(n.Body), selfTy, lamTy); err != nil {
		return nil, err
	}
	if n.RetType != nil {
		retTy := c.resolveType(n.RetType, map[string]*types.Type{})
		codomain := lamTy
		for range n.Params {
			resolved := types.Apply(c.subst, codomain)
			if resolved.Kind != types.KindFun {
				break
			}
			codomain = resolved.To
		}
		if err := c.unify(pos(n.Body), codomain, retTy); err != nil {
			return nil, err
		}
	}
	return lamTy, nil
}

func (c *Checker) inferMatch(env *types.Env, n *ast.MatchExpr) (*types.Type, error) {
	scrutTy, err := c.Infer(env, n.Scrutinee)
	if err != nil {
		return nil, err
	}
	result := c.gen.Fresh()
	for _, mc := range n.Cases {
		caseEnv, err := c.inferPattern(env, mc.Pattern, scrutTy)
		if err != nil {
			return nil, err
		}
		bodyTy, err := c.Infer(caseEnv, mc.Body)
		if err != nil {
			return nil, err
		}
		if err := c.unify(pos(mc.Body), result, bodyTy); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// inferPattern implements §4.4.4: Wildcard accepts anything; Var binds
// monomorphically; Literal/List/Constructor constrain the scrutinee type.
func (c *Checker) inferPattern(env *types.Env, p ast.Pattern, scrutTy *types.Type) (*types.Env, error) {
	switch v := p.(type) {
	case *ast.WildcardPattern:
		return env, nil
	case *ast.VarPattern:
		child := env.Push()
		child.Bind(v.Name, types.Mono(scrutTy))
		return child, nil
	case *ast.LiteralPattern:
		if err := c.unify(v.Span().Start, scrutTy, types.Prim(v.Literal.TypeName())); err != nil {
			return nil, err
		}
		return env, nil
	case *ast.ListPattern:
		elemTy := c.gen.Fresh()
		if err := c.unify(v.Span().Start, scrutTy, types.List(elemTy)); err != nil {
			return nil, err
		}
		cur := env
		for _, el := range v.Elems {
			var err error
			cur, err = c.inferPattern(cur, el, elemTy)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	case *ast.ConstructorPattern:
		info, ok := c.ctors[v.Name]
		if !ok {
			names := make([]string, 0, len(c.ctors))
			for name := range c.ctors {
				names = append(names, name)
			}
			return nil, &errdefs.UndefinedVariable{Name: v.Name, Pos: v.Span().Start, Suggestion: diagnostic.Suggestion(v.Name, names)}
		}
		if len(v.Args) != len(info.Fields) {
			return nil, &errdefs.ArityError{Expected: len(info.Fields), Got: len(v.Args), Pos: v.Span().Start}
		}
		fresh := types.Subst{}
		for _, id := range info.ParamVars {
			fresh[id] = c.gen.Fresh()
		}
		resultTy := types.Apply(fresh, types.User(info.TypeName, varsToTypes(info.ParamVars)...))
		if err := c.unify(v.Span().Start, scrutTy, resultTy); err != nil {
			return nil, err
		}
		cur := env
		for i, a := range v.Args {
			fieldTy := types.Apply(fresh, info.Fields[i])
			var err error
			cur, err = c.inferPattern(cur, a, fieldTy)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	default:
		return env, nil
	}
}

func varsToTypes(ids []int) []*types.Type {
	out := make([]*types.Type, len(ids))
	for i, id := range ids {
		out[i] = types.NewVar(id)
	}
	return out
}

func (c *Checker) registerTypeDef(env *types.Env, n *ast.TypeDefExpr) {
	vars := map[string]*types.Type{}
	paramVars := make([]int, len(n.Params))
	for i, p := range n.Params {
		v := c.gen.Fresh()
		vars[p] = v
		paramVars[i] = v.Var
	}
	info := &TypeDefInfo{Name: n.Name, Params: n.Params, ParamVars: paramVars}
	c.typeDefs[n.Name] = info

	for _, ctor := range n.Constructors {
		fields := make([]*types.Type, len(ctor.Fields))
		for i, f := range ctor.Fields {
			fields[i] = c.resolveType(f, vars)
		}
		c.ctors[ctor.Name] = &CtorInfo{Name: ctor.Name, TypeName: n.Name, ParamVars: paramVars, Fields: fields}
		info.Constructors = append(info.Constructors, ctor.Name)

		result := types.User(n.Name, varsToTypes(paramVars)...)
		fnTy := result
		for i := len(fields) - 1; i >= 0; i-- {
			fnTy = types.Fun(fields[i], fnTy)
		}
		env.Bind(ctor.Name, &types.Scheme{Vars: paramVars, Type: fnTy})
	}
}

// Finalize applies the accumulated substitution to t, producing its
// principal type once inference of the whole program is complete.
func (c *Checker) Finalize(t *types.Type) *types.Type {
	return types.Apply(c.subst, t)
}

// Bind generalizes t's principal type relative to env and binds name to
// the resulting scheme, in place, the same way inferLetBinding generalizes
// a let's value before extending the child scope. Used by callers (the
// shell session) that persist top-level bindings across many separate
// Infer calls instead of one nested Let chain.
func (c *Checker) Bind(env *types.Env, name string, t *types.Type) {
	resolved := types.Apply(c.subst, t)
	scheme := types.Generalize(types.ApplyEnv(c.subst, env), resolved)
	env.Bind(name, scheme)
}

// InferRecValue types value under env extended with a fresh self-binding
// for name, mirroring inferLetRecBinding's env.Push() step. It is the
// letrec counterpart to a plain Infer call for callers (workspace loading)
// that bind one top-level letrec at a time rather than walking a LetRecIn
// chain; the caller still generalizes and persists the result with Bind.
func (c *Checker) InferRecValue(env *types.Env, name string, value ast.Expr) (*types.Type, error) {
	selfTy := c.gen.Fresh()
	rec := env.Push()
	rec.Bind(name, types.Mono(selfTy))
	valTy, err := c.Infer(rec, value)
	if err != nil {
		return nil, err
	}
	if err := c.unify(pos(value), selfTy, valTy); err != nil {
		return nil, err
	}
	return types.Apply(c.subst, valTy), nil
}
