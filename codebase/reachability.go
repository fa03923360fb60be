package codebase

import "github.com/lumenlang/lumen/hash"

// Reachable implements §4.8: BFS over dependencies from roots (resolved by
// name), returning every hash transitively referenced.
func (c *Codebase) Reachable(roots []string) map[hash.Hash]bool {
	seen := map[hash.Hash]bool{}
	var queue []hash.Hash
	for _, name := range roots {
		if h, ok := c.nameIndex[name]; ok {
			if !seen[h] {
				seen[h] = true
				queue = append(queue, h)
			}
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		def, ok := c.terms[cur]
		if !ok {
			continue
		}
		for d := range def.Dependencies {
			if !seen[d] {
				seen[d] = true
				queue = append(queue, d)
			}
		}
	}
	return seen
}

// DeadCode returns the stored hashes not reachable from roots, ordered so
// that removing them in sequence never violates §4.7.3's no-dependents
// precondition: a hash appears only after every other dead hash that
// depends on it.
func (c *Codebase) DeadCode(roots []string) []hash.Hash {
	reachable := c.Reachable(roots)
	dead := map[hash.Hash]bool{}
	for h := range c.terms {
		if !reachable[h] {
			dead[h] = true
		}
	}

	remainingDependents := map[hash.Hash]int{}
	for h := range dead {
		remainingDependents[h] = 0
	}
	for h := range dead {
		for dep := range c.dependents[h] {
			if dead[dep] {
				remainingDependents[h]++
			}
		}
	}

	var order []hash.Hash
	for len(remainingDependents) > 0 {
		var ready []hash.Hash
		for h, n := range remainingDependents {
			if n == 0 {
				ready = append(ready, h)
			}
		}
		sortHashes(ready)
		for _, h := range ready {
			order = append(order, h)
			delete(remainingDependents, h)
			if def, ok := c.terms[h]; ok {
				for d := range def.Dependencies {
					if _, stillDead := remainingDependents[d]; stillDead {
						remainingDependents[d]--
					}
				}
			}
		}
		if len(ready) == 0 {
			break // cycle among dead hashes; shouldn't occur, guard against infinite loop.
		}
	}
	return order
}
