// Package codebase implements the content-addressed store of §3.8/§3.9/§4.7:
// definitions keyed by structural hash, a mutable name index over them, and
// the forward/reverse dependency graph used for reachability and safe
// removal.
package codebase

import (
	"sort"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/errdefs"
	"github.com/lumenlang/lumen/hash"
	"github.com/lumenlang/lumen/types"
)

// Definition is one stored term or type, per §3.8.
type Definition struct {
	Hash         hash.Hash
	Name         string // may be empty: anonymous/inlined definitions are addressable only by hash.
	Content      ast.Expr
	Type         *types.Type
	Dependencies map[hash.Hash]bool
}

// Codebase is the in-memory content-addressed store of §3.9.
type Codebase struct {
	terms      map[hash.Hash]*Definition
	nameIndex  map[string]hash.Hash
	dependents map[hash.Hash]map[hash.Hash]bool
	history    *History
}

// New returns an empty codebase.
func New() *Codebase {
	return &Codebase{
		terms:      map[hash.Hash]*Definition{},
		nameIndex:  map[string]hash.Hash{},
		dependents: map[hash.Hash]map[hash.Hash]bool{},
		history:    newHistory(64),
	}
}

// AddTerm implements §4.7.1: extract dependencies, compute the hash,
// dedupe identical content, and rebind the name.
func (c *Codebase) AddTerm(name string, expr ast.Expr, ty *types.Type) hash.Hash {
	deps := c.extractDependencies(expr)
	h := hash.Of(hash.KindTerm, expr, ty)

	if _, exists := c.terms[h]; !exists {
		c.terms[h] = &Definition{Hash: h, Name: name, Content: expr, Type: ty, Dependencies: deps}
		for d := range deps {
			if c.dependents[d] == nil {
				c.dependents[d] = map[hash.Hash]bool{}
			}
			c.dependents[d][h] = true
		}
	} else if name != "" {
		c.terms[h].Name = name
	}

	if name != "" {
		c.nameIndex[name] = h
	}
	return h
}

// extractDependencies scans the normalized AST for Ident/HashRef/constructor
// references that resolve to existing hashes, per §4.7.1 step 1.
func (c *Codebase) extractDependencies(expr ast.Expr) map[hash.Hash]bool {
	deps := map[hash.Hash]bool{}
	ast.Walk(expr, func(n ast.Expr) bool {
		switch e := n.(type) {
		case *ast.IdentExpr:
			if h, ok := c.nameIndex[e.Name]; ok {
				deps[h] = true
			}
		case *ast.HashRefExpr:
			if h, err := hash.FromHex(e.Hash); err == nil {
				if _, ok := c.terms[h]; ok {
					deps[h] = true
				}
			}
		case *ast.ConstructorExpr:
			if h, ok := c.nameIndex[e.Name]; ok {
				deps[h] = true
			}
		}
		return true
	})
	return deps
}

// Update implements §4.7.2: the caller re-parses and re-type-checks
// new_src into expr/ty; Update adds it as a new definition and repoints the
// name index, leaving the old hash and its dependents untouched.
func (c *Codebase) Update(name string, expr ast.Expr, ty *types.Type) hash.Hash {
	return c.AddTerm(name, expr, ty)
}

// Remove implements §4.7.3: fails while any dependent remains.
func (c *Codebase) Remove(h hash.Hash) error {
	def, ok := c.terms[h]
	if !ok {
		return &errdefs.CodebaseError{Kind: errdefs.HashNotFound, Subject: h.String()}
	}
	if len(c.dependents[h]) > 0 {
		return &errdefs.CodebaseError{Kind: errdefs.HasDependents, Subject: h.String()}
	}
	for d := range def.Dependencies {
		delete(c.dependents[d], h)
	}
	delete(c.dependents, h)
	delete(c.terms, h)
	for name, bound := range c.nameIndex {
		if bound == h {
			delete(c.nameIndex, name)
		}
	}
	return nil
}

// Lookup resolves a definition by hash.
func (c *Codebase) Lookup(h hash.Hash) (*Definition, bool) {
	d, ok := c.terms[h]
	return d, ok
}

// Resolve resolves a definition by current name.
func (c *Codebase) Resolve(name string) (*Definition, bool) {
	h, ok := c.nameIndex[name]
	if !ok {
		return nil, false
	}
	return c.Lookup(h)
}

// Definitions returns every stored definition, named or anonymous.
func (c *Codebase) Definitions() []*Definition {
	out := make([]*Definition, 0, len(c.terms))
	for _, d := range c.terms {
		out = append(out, d)
	}
	return out
}

// Names returns every currently bound name.
func (c *Codebase) Names() []string {
	out := make([]string, 0, len(c.nameIndex))
	for n := range c.nameIndex {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// NameOf returns the name bound to h, if any.
func (c *Codebase) NameOf(h hash.Hash) (string, bool) {
	if d, ok := c.terms[h]; ok && d.Name != "" {
		return d.Name, true
	}
	return "", false
}

// Snapshot returns an independent copy of c: same definitions and name
// index, but its own history, so branching it and mutating the branch
// never affects c. Grounds the `branch` shell command on the same
// shallow-copy-of-indices technique Apply uses for rollback.
func (c *Codebase) Snapshot() *Codebase {
	terms := make(map[hash.Hash]*Definition, len(c.terms))
	for h, d := range c.terms {
		terms[h] = d
	}
	names := make(map[string]hash.Hash, len(c.nameIndex))
	for n, h := range c.nameIndex {
		names[n] = h
	}
	deps := make(map[hash.Hash]map[hash.Hash]bool, len(c.dependents))
	for h, set := range c.dependents {
		copySet := make(map[hash.Hash]bool, len(set))
		for k := range set {
			copySet[k] = true
		}
		deps[h] = copySet
	}
	return &Codebase{terms: terms, nameIndex: names, dependents: deps, history: newHistory(64)}
}

// Dependents returns the hashes that directly depend on h.
func (c *Codebase) Dependents(h hash.Hash) []hash.Hash {
	out := make([]hash.Hash, 0, len(c.dependents[h]))
	for d := range c.dependents[h] {
		out = append(out, d)
	}
	sortHashes(out)
	return out
}

// DepsStar implements §4.7.5: the BFS closure over dependencies from h.
func (c *Codebase) DepsStar(h hash.Hash) []hash.Hash {
	seen := map[hash.Hash]bool{}
	queue := []hash.Hash{h}
	var order []hash.Hash
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		def, ok := c.terms[cur]
		if !ok {
			continue
		}
		deps := make([]hash.Hash, 0, len(def.Dependencies))
		for d := range def.Dependencies {
			deps = append(deps, d)
		}
		sortHashes(deps)
		for _, d := range deps {
			if !seen[d] {
				seen[d] = true
				order = append(order, d)
				queue = append(queue, d)
			}
		}
	}
	return order
}

// ResolveShortHash disambiguates a hex prefix to exactly one stored hash,
// per spec §6.5 and supplemented feature 1.
func (c *Codebase) ResolveShortHash(prefix string) (hash.Hash, error) {
	var matches []hash.Hash
	for h := range c.terms {
		if len(h.String()) >= len(prefix) && h.String()[:len(prefix)] == prefix {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return hash.Hash{}, &errdefs.CodebaseError{Kind: errdefs.HashNotFound, Subject: prefix}
	case 1:
		return matches[0], nil
	default:
		return hash.Hash{}, &errdefs.CodebaseError{Kind: errdefs.AmbiguousHash, Subject: prefix}
	}
}

func sortHashes(hs []hash.Hash) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].String() < hs[j].String() })
}
