// Package testcache implements the test-result cache of §4.10: a map keyed
// by (test-expression hash, merkle of dependency hashes) to the outcome a
// run produced, invalidated implicitly whenever a dependency hash changes.
package testcache

import (
	"sort"

	digest "github.com/opencontainers/go-digest"

	"github.com/lumenlang/lumen/hash"
)

// OutcomeKind enumerates §4.10's outcome variants.
type OutcomeKind int

const (
	Passed OutcomeKind = iota
	Failed
	Skipped
	Timeout
)

// Outcome is the cached result of one test run.
type Outcome struct {
	Kind  OutcomeKind
	Error string // meaningful only when Kind == Failed.
}

// Key identifies a cache entry: the test expression's own hash, plus a
// merkle hash over its (sorted) dependency hashes so that any dependency
// change produces a different key and silently misses the stale entry.
type Key struct {
	TestHash string
	DepsHash string
}

// Cache is an in-memory lookup table, populated by Lookup-before-run /
// Insert-after-run per §4.10.
type Cache struct {
	entries map[Key]Outcome
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: map[Key]Outcome{}}
}

// MerkleDeps computes the merkle hash of a sorted dependency-hash set, used
// as the second half of a Key.
func MerkleDeps(deps []hash.Hash) string {
	hexes := make([]string, len(deps))
	for i, d := range deps {
		hexes[i] = d.String()
	}
	sort.Strings(hexes)
	var joined string
	for _, h := range hexes {
		joined += h
	}
	return digest.FromString(joined).Encoded()
}

// KeyFor builds a Key from a test's own hash and its transitive
// dependencies.
func KeyFor(testHash hash.Hash, deps []hash.Hash) Key {
	return Key{TestHash: testHash.String(), DepsHash: MerkleDeps(deps)}
}

// Lookup returns the cached outcome for key, if any.
func (c *Cache) Lookup(key Key) (Outcome, bool) {
	o, ok := c.entries[key]
	return o, ok
}

// Insert records the outcome of a fresh run under key.
func (c *Cache) Insert(key Key, outcome Outcome) {
	c.entries[key] = outcome
}
