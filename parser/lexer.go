// Package parser implements the lumen front end: a participle-tokenized,
// hand-written recursive-descent parser that turns source text into an
// ast.Expr forest, per spec §4.1/§4.2.
package parser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/errdefs"
)

// lumenLexer is the token definition for §4.1: parens/brackets/braces,
// keywords (lexed as plain idents and recognized by the parser, matching
// the teacher's own regex-lexer-plus-struct-grammar split in
// parser/cst.go), punctuation, literals, identifiers, and `--`/`;` line
// comments.
var lumenLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `(?:--|;)[^\n]*`},
	{Name: "HashRef", Pattern: `#[0-9a-fA-F]+`},
	{Name: "Hole", Pattern: `@[A-Za-z_][A-Za-z0-9_]*|@`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "FatArrow", Pattern: `=>`},
	{Name: "Pipe2", Pattern: `\|>`},
	{Name: "Float", Pattern: `-?[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Punct", Pattern: `[()\[\]{}:|.,;!']`},
	{Name: "Ident", Pattern: `[^\s()\[\]{}":|.,;@#!']+`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

// tok is one (kind, text, position) triple, the output of §4.1's "lazy
// stream of (token, span)".
type tok struct {
	kind string
	text string
	pos  ast.Position
}

func toPosition(p lexer.Position) ast.Position {
	return ast.Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// tokenStream wraps the participle lexer with N-token lookahead and elides
// whitespace/comments, matching §4.1's description of the lexer's token
// stream as already separated from trivia. Lookahead is buffered in `buf`
// rather than relying on struct-copy save/restore, since `lex` is a live
// cursor into the underlying participle lexer and cannot be rewound.
type tokenStream struct {
	name    string
	lex     lexer.Lexer
	symbols map[string]lexer.TokenType
	buf     []tok
	last    ast.Position
}

func newTokenStream(filename, src string) (*tokenStream, error) {
	lex, err := lumenLexer.LexString(filename, src)
	if err != nil {
		return nil, err
	}
	return &tokenStream{name: filename, lex: lex, symbols: lumenLexer.Symbols()}, nil
}

func (ts *tokenStream) symbolName(t lexer.Token) string {
	for name, typ := range ts.symbols {
		if typ == t.Type {
			return name
		}
	}
	return ""
}

// fetch reads the next non-trivia token directly from the underlying lexer,
// bypassing the lookahead buffer.
func (ts *tokenStream) fetch() (tok, error) {
	for {
		t, err := ts.lex.Next()
		if err != nil {
			return tok{}, &errdefs.ParseError{Offset: ts.last.Offset, Message: err.Error()}
		}
		name := ts.symbolName(t)
		if name == "Comment" || name == "Newline" || name == "Whitespace" {
			continue
		}
		out := tok{kind: name, text: t.Value, pos: toPosition(t.Pos)}
		if t.EOF() {
			out.kind = "EOF"
		}
		return out, nil
	}
}

func (ts *tokenStream) next() (tok, error) {
	if len(ts.buf) > 0 {
		t := ts.buf[0]
		ts.buf = ts.buf[1:]
		ts.last = t.pos
		return t, nil
	}
	t, err := ts.fetch()
	if err != nil {
		return tok{}, err
	}
	ts.last = t.pos
	return t, nil
}

// peek returns the next token without consuming it.
func (ts *tokenStream) peek() (tok, error) {
	return ts.peekN(0)
}

// peekN returns the token n positions ahead (0 = next token) without
// consuming any tokens, filling the lookahead buffer as needed.
func (ts *tokenStream) peekN(n int) (tok, error) {
	for len(ts.buf) <= n {
		t, err := ts.fetch()
		if err != nil {
			return tok{}, err
		}
		ts.buf = append(ts.buf, t)
	}
	return ts.buf[n], nil
}
