// Package diagnostic renders §7 error diagnostics as source-quoted reports,
// grounded on the teacher's own diagnostic package with buildkit solver
// RPC-error plumbing and aurora color output dropped (no solve/RPC layer
// exists here; color is explicitly out of scope).
package diagnostic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	perrors "github.com/pkg/errors"
)

// Error aggregates several diagnostics (parse/type errors) into one error,
// reporting them one per line.
type Error struct {
	Err         error
	Diagnostics []error
}

func (e *Error) Error() string {
	var errs []string
	for _, err := range e.Diagnostics {
		errs = append(errs, err.Error())
	}
	return strings.Join(errs, "\n")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Spans collects every SpanError nested in err, whether err is itself one
// or an *Error aggregating several.
func Spans(err error) (spans []*SpanError) {
	var e *Error
	if errors.As(err, &e) {
		for _, err := range e.Diagnostics {
			var span *SpanError
			if errors.As(err, &span) {
				spans = append(spans, span)
			}
		}
	}
	var span *SpanError
	if errors.As(err, &span) {
		spans = append(spans, span)
	}
	return
}

// DisplayError writes every span's pretty-printed report to w, numbered in
// the order they were collected.
func DisplayError(ctx context.Context, w io.Writer, spans []*SpanError, err error) {
	if len(spans) == 0 {
		return
	}
	if err != nil {
		fmt.Fprintf(w, "error: %s\n", Cause(err))
	}
	for i, span := range spans {
		pretty := span.Pretty(ctx)
		lines := strings.Split(pretty, "\n")
		for j, line := range lines {
			if j == 0 {
				lines[j] = fmt.Sprintf(" %d: %s", i+1, line)
			} else {
				lines[j] = fmt.Sprintf("    %s", line)
			}
		}
		fmt.Fprintf(w, "%s\n", strings.Join(lines, "\n"))
	}
}

// Cause unwraps err to its root through a pkg/errors Wrap/Cause chain, such
// as the ones cmd/lumen builds around snapshot and workspace I/O. Errors
// wrapped with fmt.Errorf's %w are not unwrapped.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	return perrors.Cause(err).Error()
}
