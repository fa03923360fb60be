package shell

import (
	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/checker"
	"github.com/lumenlang/lumen/codebase"
	"github.com/lumenlang/lumen/errdefs"
	"github.com/lumenlang/lumen/eval"
	"github.com/lumenlang/lumen/hash"
	"github.com/lumenlang/lumen/parser"
	"github.com/lumenlang/lumen/testcache"
	"github.com/lumenlang/lumen/types"
)

// draft is a staged `edit` awaiting `update`.
type draft struct {
	name string
	src  string
}

// Session is the long-lived state behind one shell: the codebase, the
// type/eval environments bindings accumulate into, named branches (each a
// full snapshot of the codebase at the moment of `branch`), and drafts
// staged by `edit` until `update` commits them.
type Session struct {
	CB       *codebase.Codebase
	Checker  *checker.Checker
	TypeEnv  *types.Env
	EvalEnv  *eval.Env
	Tests    *testcache.Cache
	Branches map[string]*codebase.Codebase
	drafts   map[string]*draft
}

// New returns a Session seeded with §6.3's built-ins.
func New() *Session {
	return &Session{
		CB:       codebase.New(),
		Checker:  checker.New(),
		TypeEnv:  checker.BuiltinEnv(),
		EvalEnv:  eval.BuiltinEnv(),
		Tests:    testcache.New(),
		Branches: map[string]*codebase.Codebase{},
		drafts:   map[string]*draft{},
	}
}

// Run parses and dispatches one full command line, including any pipeline
// stages, per §6.1.
func (s *Session) Run(line string) (Result, error) {
	pipeline, err := ParseLine(line)
	if err != nil {
		return Result{}, err
	}
	res, err := s.dispatch(pipeline.Stages[0])
	if err != nil {
		return Result{}, err
	}
	for _, stage := range pipeline.Stages[1:] {
		res, err = applyStage(res, stage)
		if err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

// checkAndEval type-checks e against the session's accumulated type
// environment, finalizes its type, then evaluates it against the
// accumulated value environment. Used by bare expressions, `debug`,
// `trace`, and (through bindTopLevel) `add` and `update`.
func (s *Session) checkAndEval(e ast.Expr) (eval.Value, *types.Type, error) {
	ty, err := s.Checker.Infer(s.TypeEnv, e)
	if err != nil {
		return nil, nil, err
	}
	ty = s.Checker.Finalize(ty)

	v, err := eval.Eval(eval.NewContext(s.EvalEnv), e)
	if err != nil {
		return nil, ty, err
	}
	return v, ty, nil
}

// bindTopLevel generalizes e's principal type and extends both the type
// and value environments so later commands can reference name by
// identifier, mirroring a LetIn chain's scope growth one binding at a time.
func (s *Session) bindTopLevel(name string, e ast.Expr) (eval.Value, *types.Type, error) {
	v, ty, err := s.checkAndEval(e)
	if err != nil {
		return nil, nil, err
	}
	if name != "" {
		s.Checker.Bind(s.TypeEnv, name, ty)
		s.EvalEnv = s.EvalEnv.Extend(name, v)
	}
	return v, ty, nil
}

// resolveHashOrName resolves a `<name|hash-prefix>` argument, per §6.5: a
// bare name is tried first, falling back to short-hash disambiguation.
func (s *Session) resolveHashOrName(arg string) (*codebase.Definition, error) {
	if def, ok := s.CB.Resolve(arg); ok {
		return def, nil
	}
	h, err := s.CB.ResolveShortHash(arg)
	if err != nil {
		return nil, err
	}
	def, _ := s.CB.Lookup(h)
	return def, nil
}

func parseOneExpr(src string) (ast.Expr, error) {
	return parser.ParseExpr("<shell>", src)
}

func shortOrName(cb *codebase.Codebase, h hash.Hash) string {
	if name, ok := cb.NameOf(h); ok {
		return name
	}
	return h.Short()
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return &errdefs.ShellError{Message: usage}
	}
	return nil
}
