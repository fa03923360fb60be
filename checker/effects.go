package checker

import (
	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/errdefs"
	"github.com/lumenlang/lumen/types"
)

func (c *Checker) inferHandle(env *types.Env, n *ast.HandleExpr) (*types.Type, error) {
	bodyTy, err := c.Infer(env, n.Body)
	if err != nil {
		return nil, err
	}
	result := c.gen.Fresh()
	for _, h := range n.Handlers {
		child := env.Push()
		for _, binder := range h.Binders {
			child.Bind(binder, types.Mono(c.gen.Fresh()))
		}
		hTy, err := c.Infer(child, h.Body)
		if err != nil {
			return nil, err
		}
		if err := c.unify(pos(h.Body), result, hTy); err != nil {
			return nil, err
		}
	}
	if n.Return != nil {
		child := env.Push()
		child.Bind(n.Return.Binder, types.Mono(bodyTy))
		retTy, err := c.Infer(child, n.Return.Body)
		if err != nil {
			return nil, err
		}
		if err := c.unify(pos(n.Return.Body), result, retTy); err != nil {
			return nil, err
		}
	} else {
		if err := c.unify(pos(n.Body), result, bodyTy); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// InferEffects computes the effect row of e per §4.4.5: a parallel
// traversal independent of the type substitution. handled tracks the
// enclosing Handle frames' effect sets, so a Perform with no matching frame
// raises UnhandledEffect.
func (c *Checker) InferEffects(e ast.Expr, handled []map[string]bool) (*types.Row, error) {
	switch n := e.(type) {
	case *ast.LiteralExpr, *ast.IdentExpr, *ast.HoleExpr, *ast.HashRefExpr, *ast.LambdaExpr, *ast.TypeDefExpr:
		return types.EmptyRow(), nil

	case *ast.ListExpr:
		return c.unionAll(n.Elems, handled)

	case *ast.ApplyExpr:
		args := append([]ast.Expr{n.Func}, n.Args...)
		row, err := c.unionAll(args, handled)
		if err != nil {
			return nil, err
		}
		if id, ok := n.Func.(*ast.IdentExpr); ok {
			if eff, ok := builtinEffects()[id.Name]; ok {
				row = types.Union(row, types.SingleRow(eff))
			}
		}
		return row, nil

	case *ast.IfExpr:
		return c.unionAll([]ast.Expr{n.Cond, n.Then, n.Else}, handled)

	case *ast.LetExpr, *ast.LetRecExpr:
		return c.InferEffects(letValue(e), handled)

	case *ast.LetInExpr:
		return c.unionAll([]ast.Expr{n.Value, n.Body}, handled)

	case *ast.LetRecInExpr:
		return c.unionAll([]ast.Expr{n.Value, n.Body}, handled)

	case *ast.RecExpr:
		return types.EmptyRow(), nil

	case *ast.MatchExpr:
		exprs := []ast.Expr{n.Scrutinee}
		for _, mc := range n.Cases {
			exprs = append(exprs, mc.Body)
		}
		return c.unionAll(exprs, handled)

	case *ast.ConstructorExpr:
		return c.unionAll(n.Args, handled)

	case *ast.RecordExpr:
		var exprs []ast.Expr
		for _, f := range n.Fields {
			exprs = append(exprs, f.Value)
		}
		return c.unionAll(exprs, handled)

	case *ast.AccessExpr:
		return c.InferEffects(n.Record, handled)

	case *ast.UpdateExpr:
		exprs := []ast.Expr{n.Record}
		for _, f := range n.Fields {
			exprs = append(exprs, f.Value)
		}
		return c.unionAll(exprs, handled)

	case *ast.BlockExpr:
		return c.unionAll(n.Exprs, handled)

	case *ast.PerformExpr:
		argsRow, err := c.unionAll(n.Args, handled)
		if err != nil {
			return nil, err
		}
		if !isHandled(handled, n.Effect) {
			return nil, &errdefs.UnhandledEffect{Effect: n.Effect, Pos: pos(e)}
		}
		return types.Union(types.SingleRow(n.Effect), argsRow), nil

	case *ast.HandleExpr:
		handledSet := map[string]bool{}
		for _, h := range n.Handlers {
			handledSet[h.Effect] = true
		}
		bodyRow, err := c.InferEffects(n.Body, append(handled, handledSet))
		if err != nil {
			return nil, err
		}
		bodyRow = bodyRow.Without(handledSet)
		for _, h := range n.Handlers {
			hRow, err := c.InferEffects(h.Body, handled)
			if err != nil {
				return nil, err
			}
			bodyRow = types.Union(bodyRow, hRow)
		}
		if n.Return != nil {
			retRow, err := c.InferEffects(n.Return.Body, handled)
			if err != nil {
				return nil, err
			}
			bodyRow = types.Union(bodyRow, retRow)
		}
		return bodyRow, nil

	default:
		return types.EmptyRow(), nil
	}
}

func (c *Checker) unionAll(exprs []ast.Expr, handled []map[string]bool) (*types.Row, error) {
	row := types.EmptyRow()
	for _, e := range exprs {
		r, err := c.InferEffects(e, handled)
		if err != nil {
			return nil, err
		}
		row = types.Union(row, r)
	}
	return row, nil
}

func isHandled(handled []map[string]bool, effect string) bool {
	for _, set := range handled {
		if set[effect] {
			return true
		}
	}
	return false
}

func letValue(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.LetExpr:
		return n.Value
	case *ast.LetRecExpr:
		return n.Value
	default:
		return nil
	}
}
