// Package errdefs defines the error kinds of §7, grounded on the teacher's
// own errdefs package: typed ErrXxx structs implementing error, each
// carrying the span or offset needed to render a diagnostic.
package errdefs

import (
	"fmt"

	"github.com/lumenlang/lumen/ast"
)

// ParseError is raised on malformed input; recoverable at the REPL, fatal
// for file loads (§4.1, §7).
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Message)
}

// UndefinedVariable is a type-phase lookup failure. Suggestion, when
// non-empty, names the closest identifier in scope (§7's "did you mean").
type UndefinedVariable struct {
	Name       string
	Pos        ast.Position
	Suggestion string
}

func (e *UndefinedVariable) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: undefined variable %q (did you mean %q?)", e.Pos, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("%s: undefined variable %q", e.Pos, e.Name)
}

// TypeMismatch is a unification failure between two concrete types.
type TypeMismatch struct {
	Expected, Found string
	Pos             ast.Position
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("%s: type mismatch: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// InfiniteType is an occurs-check failure during unification.
type InfiniteType struct {
	Var, Type string
	Pos       ast.Position
}

func (e *InfiniteType) Error() string {
	return fmt.Sprintf("%s: infinite type: %s occurs in %s", e.Pos, e.Var, e.Type)
}

// UnhandledEffect is an effect-phase failure: a Perform of an effect with no
// enclosing Handle.
type UnhandledEffect struct {
	Effect string
	Pos    ast.Position
}

func (e *UnhandledEffect) Error() string {
	return fmt.Sprintf("%s: unhandled effect %q", e.Pos, e.Effect)
}

// EffectMismatch is raised when an effect row fails to unify.
type EffectMismatch struct {
	Expected, Found string
	Pos             ast.Position
}

func (e *EffectMismatch) Error() string {
	return fmt.Sprintf("%s: effect mismatch: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// ArityError covers both type- and runtime-phase arity mismatches.
type ArityError struct {
	Expected, Got int
	Pos           ast.Position
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: arity mismatch: expected %d argument(s), got %d", e.Pos, e.Expected, e.Got)
}

// NonExhaustiveMatch is a runtime failure to find a matching case.
type NonExhaustiveMatch struct {
	Pos ast.Position
}

func (e *NonExhaustiveMatch) Error() string {
	return fmt.Sprintf("%s: non-exhaustive match", e.Pos)
}

// DivisionByZero is a runtime arithmetic failure.
type DivisionByZero struct {
	Pos ast.Position
}

func (e *DivisionByZero) Error() string {
	return fmt.Sprintf("%s: division by zero", e.Pos)
}

// RuntimeError is the catchall for built-in misuse at runtime.
type RuntimeError struct {
	Pos     ast.Position
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// CodebaseErrorKind enumerates the CodebaseError variants of §7.
type CodebaseErrorKind int

const (
	TermNotFound CodebaseErrorKind = iota
	HashNotFound
	CircularDependency
	HasDependents
	AmbiguousHash
)

func (k CodebaseErrorKind) String() string {
	switch k {
	case TermNotFound:
		return "TermNotFound"
	case HashNotFound:
		return "HashNotFound"
	case CircularDependency:
		return "CircularDependency"
	case HasDependents:
		return "HasDependents"
	case AmbiguousHash:
		return "AmbiguousHash"
	default:
		return "Unknown"
	}
}

// CodebaseError reports a failed codebase mutation; the patch (or single
// operation) that raised it leaves the codebase unchanged (§4.7.3, §7).
type CodebaseError struct {
	Kind    CodebaseErrorKind
	Subject string
}

func (e *CodebaseError) Error() string {
	return fmt.Sprintf("codebase error: %s: %s", e.Kind, e.Subject)
}

// SerializationError wraps a corrupt or malformed snapshot.
type SerializationError struct {
	Message string
	Cause   error
}

func (e *SerializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("serialization error: %s: %s", e.Message, e.Cause)
	}
	return fmt.Sprintf("serialization error: %s", e.Message)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

// ShellError covers malformed or unrecognized shell input: unknown
// commands, wrong argument counts, bad pipeline stages (§6.1, §7).
type ShellError struct {
	Message string
}

func (e *ShellError) Error() string {
	return fmt.Sprintf("shell error: %s", e.Message)
}

// ErrExit is returned by the shell's `exit` command so the embedding REPL
// loop can distinguish a clean exit from a real failure.
var ErrExit = &ShellError{Message: "exit"}
