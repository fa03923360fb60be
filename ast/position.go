// Package ast defines the lumen abstract syntax tree: expressions, patterns,
// type terms, and effect rows, each carrying a source span.
package ast

import "fmt"

// Position is a byte offset into a named source, with line/column for
// human-readable diagnostics.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Span is a half-open byte range [Start, End) into the original source, per
// §3.1.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return s.Start.String()
}

// Node is implemented by every AST node.
type Node interface {
	Span() Span
}

// Base is embedded by concrete nodes to provide Span(). The field is
// exported so constructors outside this package can populate it directly.
type Base struct {
	Sp Span
}

func (n Base) Span() Span { return n.Sp }

// NewBase wraps a span for embedding into a concrete node literal.
func NewBase(span Span) Base { return Base{Sp: span} }
