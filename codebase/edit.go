package codebase

import (
	"sort"
	"strings"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/errdefs"
)

// Edit implements the supplemented `edit` contract (§4.7.5/§6.1): return
// source text for name with every transitive dependency's definition
// inlined above it, so the result can be pasted back in as a standalone
// unit, mirroring a hole's surrounding scope being expanded for editing.
func (c *Codebase) Edit(name string) (string, error) {
	def, ok := c.Resolve(name)
	if !ok {
		return "", &errdefs.CodebaseError{Kind: errdefs.TermNotFound, Subject: name}
	}

	deps := c.DepsStar(def.Hash)
	// A definition has strictly more transitive dependencies than each of its
	// own dependencies, so this order writes every dependency before its users.
	sort.SliceStable(deps, func(i, j int) bool {
		return len(c.DepsStar(deps[i])) < len(c.DepsStar(deps[j]))
	})
	var b strings.Builder
	for _, h := range deps {
		d, ok := c.terms[h]
		if !ok {
			continue
		}
		depName := d.Name
		if depName == "" {
			depName = h.Short()
		}
		b.WriteString("(let ")
		b.WriteString(depName)
		b.WriteString(" ")
		b.WriteString(ast.Unparse(d.Content))
		b.WriteString(")\n")
	}
	b.WriteString("(let ")
	b.WriteString(name)
	b.WriteString(" ")
	b.WriteString(ast.Unparse(def.Content))
	b.WriteString(")\n")
	return b.String(), nil
}
