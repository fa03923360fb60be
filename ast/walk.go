package ast

// Walk calls visit on node and then recurses into every child expression,
// depth-first, left-to-right. visit returning false skips the children of
// that node (mirroring the teacher's participle-era Match/Walk convention,
// generalized to a single typed callback since this AST has one Expr sum
// rather than per-node participle grammars).
func Walk(e Expr, visit func(Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, visit)
	}
}

// Children returns the immediate child expressions of e, in evaluation
// order. Patterns and type annotations are not expressions and are not
// included.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *LiteralExpr, *IdentExpr, *HoleExpr, *HashRefExpr, *TypeDefExpr:
		return nil
	case *ListExpr:
		return n.Elems
	case *LambdaExpr:
		return []Expr{n.Body}
	case *ApplyExpr:
		return append([]Expr{n.Func}, n.Args...)
	case *IfExpr:
		return []Expr{n.Cond, n.Then, n.Else}
	case *LetExpr:
		return []Expr{n.Value}
	case *LetInExpr:
		return []Expr{n.Value, n.Body}
	case *LetRecExpr:
		return []Expr{n.Value}
	case *LetRecInExpr:
		return []Expr{n.Value, n.Body}
	case *RecExpr:
		return []Expr{n.Body}
	case *MatchExpr:
		cs := []Expr{n.Scrutinee}
		for _, c := range n.Cases {
			cs = append(cs, c.Body)
		}
		return cs
	case *ConstructorExpr:
		return n.Args
	case *RecordExpr:
		var cs []Expr
		for _, f := range n.Fields {
			cs = append(cs, f.Value)
		}
		return cs
	case *AccessExpr:
		return []Expr{n.Record}
	case *UpdateExpr:
		cs := []Expr{n.Record}
		for _, f := range n.Fields {
			cs = append(cs, f.Value)
		}
		return cs
	case *BlockExpr:
		return n.Exprs
	case *PerformExpr:
		return n.Args
	case *HandleExpr:
		cs := []Expr{n.Body}
		for _, h := range n.Handlers {
			cs = append(cs, h.Body)
		}
		if n.Return != nil {
			cs = append(cs, n.Return.Body)
		}
		return cs
	default:
		return nil
	}
}

// Idents returns every identifier, constructor and performed-effect name
// referenced anywhere within e, plus the hash of every HashRef. Type-def
// names are not collected.
func Idents(e Expr) (names []string, hashes []string) {
	Walk(e, func(n Expr) bool {
		switch v := n.(type) {
		case *IdentExpr:
			names = append(names, v.Name)
		case *ConstructorExpr:
			names = append(names, v.Name)
		case *HashRefExpr:
			hashes = append(hashes, v.Hash)
		case *PerformExpr:
			names = append(names, v.Effect)
		}
		return true
	})
	return
}
