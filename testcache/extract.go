package testcache

import "github.com/lumenlang/lumen/ast"

// TestCase is one `(test "name" (fn () body))` form extracted from a source
// file, per §6.2's test-file convention, grounded on vibe-cli's test_runner.
type TestCase struct {
	Name string
	Body ast.Expr
}

// ExtractTests scans a parsed top-level module for test forms and returns
// them in source order.
func ExtractTests(module []ast.Expr) []TestCase {
	var out []TestCase
	for _, top := range module {
		apply, ok := top.(*ast.ApplyExpr)
		if !ok {
			continue
		}
		ident, ok := apply.Func.(*ast.IdentExpr)
		if !ok || ident.Name != "test" || len(apply.Args) != 2 {
			continue
		}
		nameLit, ok := apply.Args[0].(*ast.LiteralExpr)
		if !ok || nameLit.Literal.Kind != ast.StringLit {
			continue
		}
		lam, ok := apply.Args[1].(*ast.LambdaExpr)
		if !ok || len(lam.Params) != 0 {
			continue
		}
		out = append(out, TestCase{Name: nameLit.Literal.String, Body: lam.Body})
	}
	return out
}
