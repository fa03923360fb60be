// Package shell implements the interactive command grammar of §6.1: one
// command per line, dispatched purely through the codebase/checker/eval
// APIs of §4, with pipeline stages (filter/take/sort/count) operating on
// structured command output. It exposes parsing and dispatch only; the
// read-line loop itself is left to the embedding CLI.
package shell

import (
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/lumenlang/lumen/errdefs"
)

// Stage is one segment of a pipeline: either the base command (verb plus
// its arguments) or a filter stage (filter/take/sort/count) applied to the
// previous stage's structured output. Args is the shell-quoted token split
// of everything after Verb; Rest is the same span verbatim, unsplit, for
// commands whose argument is itself an expression with its own internal
// whitespace (`add`, `type-of`, `debug`, `trace`).
type Stage struct {
	Verb string
	Args []string
	Rest string
	// Raw is the stage's full trimmed text, verb included. A bare
	// expression like `(+ 1 2)` tokenizes its first symbol as Verb (since
	// it isn't one of the named commands), so dispatch's default case
	// uses Raw rather than Rest to avoid truncating the leading `(`.
	Raw string
}

// Pipeline is a full command line split on unquoted `|`.
type Pipeline struct {
	Stages []Stage
}

// ParseLine splits one shell line into a Pipeline. Each segment is
// tokenized with shell-style quoting via go-shellquote, the same splitter
// the teacher uses for its own debugger command loop.
func ParseLine(line string) (Pipeline, error) {
	segments, err := splitUnquoted(line, '|')
	if err != nil {
		return Pipeline{}, err
	}
	if len(segments) == 0 {
		return Pipeline{}, &errdefs.ShellError{Message: "empty command"}
	}

	var stages []Stage
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return Pipeline{}, &errdefs.ShellError{Message: "empty pipeline stage"}
		}
		args, err := shellquote.Split(seg)
		if err != nil {
			return Pipeline{}, &errdefs.ShellError{Message: "unterminated quote: " + err.Error()}
		}
		if len(args) == 0 {
			return Pipeline{}, &errdefs.ShellError{Message: "empty pipeline stage"}
		}
		stages = append(stages, Stage{Verb: args[0], Args: args[1:], Rest: restAfterVerb(seg, args[0]), Raw: seg})
	}
	return Pipeline{Stages: stages}, nil
}

// restAfterVerb returns seg with its leading verb word (and the whitespace
// following it) stripped, preserving the remainder verbatim including any
// quoting, for expression-bearing commands.
func restAfterVerb(seg, verb string) string {
	trimmed := strings.TrimLeft(seg, " \t")
	rest := strings.TrimPrefix(trimmed, verb)
	return strings.TrimLeft(rest, " \t")
}

// splitUnquoted splits s on sep, ignoring occurrences inside single or
// double quotes, so pipeline syntax doesn't clash with quoted expressions
// such as `add greeting = "a | b"`.
func splitUnquoted(s string, sep byte) ([]string, error) {
	var (
		out   []string
		start int
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == sep:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, &errdefs.ShellError{Message: "unterminated quote"}
	}
	out = append(out, s[start:])
	return out, nil
}
