package command

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/diagnostic"
	"github.com/lumenlang/lumen/errdefs"
	"github.com/lumenlang/lumen/eval"
	"github.com/lumenlang/lumen/parser"
	"github.com/lumenlang/lumen/pkg/filebuffer"
	"github.com/lumenlang/lumen/shell"
)

// sourceExt is the on-disk extension for lumen source files (§6.2).
const sourceExt = ".lm"

// sourcePaths lists the source files directly under dir, sorted, skipping
// anything that doesn't carry sourceExt.
func sourcePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read workspace %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != sourceExt {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// loadWorkspace parses every source file under dir (concurrently, via
// parser.ParseFiles) and binds each top-level form into a fresh session in
// file order, the definition-loading counterpart to the shell's one-command-
// at-a-time `add`.
func loadWorkspace(dir string) (*shell.Session, error) {
	s := shell.New()
	if dir == "" {
		return s, nil
	}

	paths, err := sourcePaths(dir)
	if err != nil {
		return nil, err
	}

	files, err := parser.ParseFiles(paths)
	if err != nil {
		return nil, errors.Wrap(err, "load workspace")
	}

	for _, exprs := range files {
		for _, e := range exprs {
			if err := bindTopLevelForm(s, e); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// reportError prints a source-quoted report for any diagnostic spans nested
// in err (a checker/evaluator error carrying an ast.Position) against the
// single-expression source text under filename, then returns err unchanged
// so the caller's exit code still reflects the failure.
func reportError(filename, source string, err error) error {
	if err == nil {
		return nil
	}
	pos, ok := positionOf(err)
	if !ok {
		return err
	}

	fb := filebuffer.New(filename)
	fb.Write([]byte(source))
	if len(source) == 0 || source[len(source)-1] != '\n' {
		fb.Write([]byte("\n"))
	}
	sources := filebuffer.NewBuffers()
	sources.Set(filename, fb)
	ctx := diagnostic.WithSources(context.Background(), sources)

	end := pos
	end.Column++
	spanned := diagnostic.WithError(err, pos, end, diagnostic.Spanf(diagnostic.Primary, pos, end, "%s", err))
	if spans := diagnostic.Spans(spanned); len(spans) > 0 {
		diagnostic.DisplayError(ctx, os.Stderr, spans, err)
	}
	return err
}

// positionOf recovers the ast.Position carried by the common errdefs types,
// or ok=false if err carries none (e.g. a parse error, which is offset-only
// and has no report to render).
func positionOf(err error) (ast.Position, bool) {
	switch e := err.(type) {
	case *errdefs.UndefinedVariable:
		return e.Pos, true
	case *errdefs.TypeMismatch:
		return e.Pos, true
	case *errdefs.InfiniteType:
		return e.Pos, true
	case *errdefs.UnhandledEffect:
		return e.Pos, true
	case *errdefs.EffectMismatch:
		return e.Pos, true
	case *errdefs.ArityError:
		return e.Pos, true
	case *errdefs.NonExhaustiveMatch:
		return e.Pos, true
	case *errdefs.DivisionByZero:
		return e.Pos, true
	case *errdefs.RuntimeError:
		return e.Pos, true
	default:
		return ast.Position{}, false
	}
}

// bindTopLevelForm binds one top-level source form (§6.2: Let/LetRec/
// TypeDef/expression) into s, the way loading a file differs from
// evaluating a nested Let chain: each binding must persist into s's
// environments rather than living only in a child scope.
func bindTopLevelForm(s *shell.Session, e ast.Expr) error {
	switch n := e.(type) {
	case *ast.LetExpr:
		ty, err := s.Checker.Infer(s.TypeEnv, n.Value)
		if err != nil {
			return err
		}
		v, err := eval.Eval(eval.NewContext(s.EvalEnv), n.Value)
		if err != nil {
			return err
		}
		s.Checker.Bind(s.TypeEnv, n.Name, ty)
		s.EvalEnv = s.EvalEnv.Extend(n.Name, v)
		s.CB.AddTerm(n.Name, n.Value, s.Checker.Finalize(ty))
		return nil

	case *ast.LetRecExpr:
		ty, err := s.Checker.InferRecValue(s.TypeEnv, n.Name, n.Value)
		if err != nil {
			return err
		}
		ctx := eval.NewContext(s.EvalEnv)
		v, err := eval.Eval(ctx, n)
		if err != nil {
			return err
		}
		s.Checker.Bind(s.TypeEnv, n.Name, ty)
		s.EvalEnv = ctx.Env
		s.CB.AddTerm(n.Name, n.Value, s.Checker.Finalize(ty))
		return nil

	case *ast.TypeDefExpr:
		_, err := s.Checker.Infer(s.TypeEnv, n)
		return err

	default:
		// A bare top-level expression: check and evaluate for effect (e.g.
		// a `print` call), but nothing is bound into the session.
		if _, err := s.Checker.Infer(s.TypeEnv, e); err != nil {
			return err
		}
		_, err := eval.Eval(eval.NewContext(s.EvalEnv), e)
		return err
	}
}
