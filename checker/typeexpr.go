package checker

import (
	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/types"
)

// resolveType converts a parsed ast.TypeExpr into a semantic types.Type.
// Names that are neither primitives nor declared types, whatever their
// case, are treated as type variables, scoped by the
// `vars` map so that repeated occurrences of the same name within one
// annotation resolve to the same variable (e.g. `(-> a a)`).
func (c *Checker) resolveType(te *ast.TypeExpr, vars map[string]*types.Type) *types.Type {
	if te == nil {
		return c.gen.Fresh()
	}
	switch {
	case te.Fun != nil:
		from := c.resolveType(te.Fun.From, vars)
		to := c.resolveType(te.Fun.To, vars)
		return types.FunWithRow(from, to, resolveRow(te.Fun.Row))
	case te.List != nil:
		return types.List(c.resolveType(te.List, vars))
	case len(te.Record) > 0:
		fields := make([]types.Field, len(te.Record))
		for i, f := range te.Record {
			fields[i] = types.Field{Name: f.Name, Type: c.resolveType(f.Type, vars)}
		}
		return types.Record(fields...)
	case len(te.Params) > 0:
		params := make([]*types.Type, len(te.Params))
		for i, p := range te.Params {
			params[i] = c.resolveType(p, vars)
		}
		return types.User(te.Name, params...)
	default:
		return c.resolveName(te.Name, vars)
	}
}

func (c *Checker) resolveName(name string, vars map[string]*types.Type) *types.Type {
	switch name {
	case types.Int, types.Float, types.Bool, types.String, types.Unit:
		return types.Prim(name)
	}
	if _, isUser := c.typeDefs[name]; isUser {
		return types.User(name)
	}
	if v, ok := vars[name]; ok {
		return v
	}
	v := c.gen.Fresh()
	if vars != nil {
		vars[name] = v
	}
	return v
}

func resolveRow(re *ast.EffectRowExpr) *types.Row {
	if re == nil {
		return nil
	}
	row := types.EmptyRow()
	for _, n := range re.Names {
		row = types.Extend(n, row)
	}
	if re.Var != "" {
		row.HasVar = true
		row.Var = 0 // row-variable identity beyond name is not load-bearing for §4.4.5's modulo-permutation comparison.
	}
	return row
}
