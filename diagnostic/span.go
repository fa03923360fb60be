package diagnostic

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/lumenlang/lumen/ast"
)

// Type distinguishes a span's role in a diagnostic: the primary offending
// location versus secondary context (e.g. where a conflicting type came
// from).
type Type int

const (
	Primary Type = iota
	Secondary
)

// Span is one annotated range within a SpanError's report.
type Span struct {
	Message string
	Type    Type
	Start   ast.Position
	End     ast.Position
}

type Option func(*SpanError)

// Spanf appends an annotated span to the error being built by WithError.
func Spanf(t Type, start, end ast.Position, format string, a ...interface{}) Option {
	return func(se *SpanError) {
		se.Spans = append(se.Spans, Span{
			Message: fmt.Sprintf(format, a...),
			Type:    t,
			Start:   start,
			End:     end,
		})
	}
}

// WithError wraps err with a primary position and any number of annotated
// spans, for Pretty to render as a source-quoted report.
func WithError(err error, pos, end ast.Position, opts ...Option) error {
	se := &SpanError{Err: err, Pos: pos, End: end}
	for _, opt := range opts {
		opt(se)
	}
	return se
}

// SpanError carries an underlying error plus zero or more source spans
// (§7's diagnostics), grounded on the teacher's own errdefs/SpanError but
// with color rendering dropped (cosmetics, explicitly out of scope here).
type SpanError struct {
	Err      error
	Pos, End ast.Position
	Spans    []Span
}

func (se *SpanError) Error() string {
	return fmt.Sprintf("%s %s", se.Pos, se.Err)
}

func (se *SpanError) Unwrap() error {
	return se.Err
}

// Pretty renders se as a multi-line, gutter-numbered report quoting the
// offending source line(s) from the FileBuffers attached to ctx, with a
// caret/dash underline per span and each span's message beneath it.
func (se *SpanError) Pretty(ctx context.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s\n", se.Err)

	sources := Sources(ctx)
	for _, span := range se.Spans {
		fb := sources.Get(span.Start.Filename)
		if fb == nil {
			fmt.Fprintf(&b, "  %s: %s\n", span.Start, span.Message)
			continue
		}

		data, err := fb.Line(span.Start.Line - 1)
		if err != nil {
			fmt.Fprintf(&b, "  %s: %s\n", span.Start, span.Message)
			continue
		}

		gutter := fmt.Sprintf("%d", span.Start.Line)
		pad := strings.Repeat(" ", len(gutter))

		underline := "^"
		if span.Type == Secondary {
			underline = "-"
		}
		width := span.End.Column - span.Start.Column
		if width < 1 {
			width = 1
		}

		leading := bytes.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return r
			}
			return ' '
		}, data[:min(span.Start.Column-1, len(data))])

		fmt.Fprintf(&b, "%s | %s\n", gutter, data)
		fmt.Fprintf(&b, "%s | %s%s", pad, leading, strings.Repeat(underline, width))
		if span.Message != "" {
			fmt.Fprintf(&b, " %s", span.Message)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
