package codebase

import (
	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/hash"
	"github.com/lumenlang/lumen/types"
)

// AddSpec is one adds entry of a Patch.
type AddSpec struct {
	Name string
	Expr ast.Expr
	Type *types.Type
}

// UpdateSpec is one updates entry of a Patch.
type UpdateSpec struct {
	Name string
	Expr ast.Expr
	Type *types.Type
}

// Patch is {adds, removes, updates}, per §4.7.4.
type Patch struct {
	Adds    []AddSpec
	Removes []hash.Hash
	Updates []UpdateSpec
}

// Apply runs removes, then adds, then updates, in that order. It is atomic
// at the command level: on the first failure the codebase is left exactly
// as it was before Apply was called, and the error identifies which step
// failed.
func (c *Codebase) Apply(p Patch) error {
	snapshot := c.clone()

	for _, h := range p.Removes {
		if err := c.Remove(h); err != nil {
			*c = *snapshot
			return err
		}
	}
	for _, a := range p.Adds {
		c.AddTerm(a.Name, a.Expr, a.Type)
	}
	for _, u := range p.Updates {
		c.Update(u.Name, u.Expr, u.Type)
	}

	c.history.push(p)
	return nil
}

// clone returns a shallow structural copy of c sufficient to roll back a
// failed patch (definitions are immutable once stored, so only the indices
// need copying).
func (c *Codebase) clone() *Codebase {
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
	return &Codebase{terms: terms, nameIndex: names, dependents: deps, history: c.history}
}
