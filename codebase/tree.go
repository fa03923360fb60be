package codebase

import (
	"sort"

	"github.com/xlab/treeprint"

	"github.com/lumenlang/lumen/hash"
)

// label resolves a hash to its bound name, or its short hash if anonymous.
func (c *Codebase) label(h hash.Hash) string {
	if name, ok := c.NameOf(h); ok {
		return name
	}
	return h.Short()
}

// DependencyTree renders h's dependency graph as a treeprint.Tree, the
// definition-graph counterpart to the teacher's build-graph tree printer
// (module/tree.go, solver/tree.go). Cycles can't occur (dependencies are
// acyclic by construction), but repeated dependencies are still elided
// after their first appearance to keep the tree readable.
func (c *Codebase) DependencyTree(h hash.Hash) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(c.label(h))
	c.addDependencyBranches(tree, h, map[hash.Hash]bool{h: true})
	return tree
}

func (c *Codebase) addDependencyBranches(tree treeprint.Tree, h hash.Hash, seen map[hash.Hash]bool) {
	def, ok := c.terms[h]
	if !ok {
		return
	}
	deps := make([]hash.Hash, 0, len(def.Dependencies))
	for d := range def.Dependencies {
		deps = append(deps, d)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].String() < deps[j].String() })

	for _, d := range deps {
		label := c.label(d)
		if seen[d] {
			tree.AddNode(label + " (...)")
			continue
		}
		seen[d] = true
		branch := tree.AddBranch(label)
		c.addDependencyBranches(branch, d, seen)
	}
}

// DependentTree renders the reverse graph: everything that (transitively)
// depends on h.
func (c *Codebase) DependentTree(h hash.Hash) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(c.label(h))
	c.addDependentBranches(tree, h, map[hash.Hash]bool{h: true})
	return tree
}

func (c *Codebase) addDependentBranches(tree treeprint.Tree, h hash.Hash, seen map[hash.Hash]bool) {
	for _, d := range c.Dependents(h) {
		label := c.label(d)
		if seen[d] {
			tree.AddNode(label + " (...)")
			continue
		}
		seen[d] = true
		branch := tree.AddBranch(label)
		c.addDependentBranches(branch, d, seen)
	}
}
