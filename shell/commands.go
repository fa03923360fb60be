package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/codebase"
	"github.com/lumenlang/lumen/errdefs"
	"github.com/lumenlang/lumen/parser"
)

// dispatch runs the base (first) stage of a pipeline, per §6.1's grammar.
// Anything not matching a named verb is treated as `<expr>` -- evaluate.
func (s *Session) dispatch(stage Stage) (Result, error) {
	switch stage.Verb {
	case "help":
		return s.cmdHelp()
	case "exit":
		return textResult(""), errdefs.ErrExit
	case "clear":
		return textResult("\033[2J\033[H"), nil
	case "add":
		return s.cmdAdd(stage.Rest)
	case "view":
		return s.cmdView(stage.Args)
	case "edit":
		return s.cmdEdit(stage.Args)
	case "update":
		return s.cmdUpdate(stage.Args)
	case "undo":
		return s.cmdUndo(stage.Args)
	case "find":
		return s.cmdFind(stage.Args)
	case "search":
		return s.cmdSearch(stage.Args)
	case "ls":
		return s.cmdLs(stage.Args)
	case "dependencies":
		return s.cmdDependencies(stage.Args)
	case "dependents":
		return s.cmdDependents(stage.Args)
	case "type-of":
		return s.cmdTypeOf(stage.Rest)
	case "branch":
		return s.cmdBranch(stage.Args)
	case "branches":
		return s.cmdBranches(stage.Args)
	case "merge":
		return s.cmdMerge(stage.Args)
	case "history", "log":
		return s.cmdHistory(stage.Args)
	case "debug", "trace":
		return s.cmdDebug(stage.Verb, stage.Rest)
	case "references":
		return s.cmdReferences(stage.Args)
	case "definition":
		return s.cmdDefinition(stage.Args)
	case "hover":
		return s.cmdHover(stage.Args)
	default:
		return s.cmdEval(stage.Raw)
	}
}

func (s *Session) cmdHelp() (Result, error) {
	return textResult(dedent.Dedent(`
		help | exit | clear
		add [name = expr | expr]
		view <name|hash-prefix>
		edit <name|hash-prefix>        -- returns source with deps inlined
		update                         -- commit pending edits
		undo
		find <pattern>                 -- substring on names
		search <query>                 -- substring of source or type
		ls [pattern]
		dependencies <name>
		dependents   <name>
		type-of <expr>
		branch [name] | branches | merge <branch>
		history [n] | log [n]
		debug <expr> | trace <expr>
		references <name> | definition <name> | hover <name>
		<expr>                         -- evaluate

		Pipelines: cmd | filter [col=]substr | take n | sort col | count
	`)), nil
}

// cmdAdd implements `add [name = expr | expr]`: the name/'=' prefix is
// optional; without one the definition is anonymous, addressable only by
// hash (§3.8, §4.7.1).
func (s *Session) cmdAdd(rest string) (Result, error) {
	if strings.TrimSpace(rest) == "" {
		return Result{}, &errdefs.ShellError{Message: "add: missing expression"}
	}
	name, exprSrc := splitNameEq(rest)

	e, err := parseOneExpr(exprSrc)
	if err != nil {
		return Result{}, err
	}
	_, ty, err := s.bindTopLevel(name, e)
	if err != nil {
		return Result{}, err
	}
	h := s.CB.AddTerm(name, e, ty)
	label := name
	if label == "" {
		label = h.Short()
	}
	return textResult(fmt.Sprintf("added %s : %s (%s)", label, ty.String(), h.Short())), nil
}

// splitNameEq splits `name = expr` at the top-level (paren-depth 0) ' = '
// separator, leaving bare expressions (which never contain a bare '=' at
// depth 0) untouched.
func splitNameEq(rest string) (name, expr string) {
	depth := 0
	for i := 0; i+2 < len(rest); i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && rest[i] == ' ' && rest[i+1] == '=' && rest[i+2] == ' ' {
			return strings.TrimSpace(rest[:i]), strings.TrimSpace(rest[i+3:])
		}
	}
	return "", strings.TrimSpace(rest)
}

func (s *Session) cmdView(args []string) (Result, error) {
	if err := requireArgs(args, 1, "view <name|hash-prefix>"); err != nil {
		return Result{}, err
	}
	def, err := s.resolveHashOrName(args[0])
	if err != nil {
		return Result{}, err
	}
	return textResult(fmt.Sprintf("%s : %s\n%s", args[0], def.Type.String(), ast.Unparse(def.Content))), nil
}

func (s *Session) cmdEdit(args []string) (Result, error) {
	if err := requireArgs(args, 1, "edit <name|hash-prefix>"); err != nil {
		return Result{}, err
	}
	def, err := s.resolveHashOrName(args[0])
	if err != nil {
		return Result{}, err
	}
	name := def.Name
	if name == "" {
		name = args[0]
	}
	src, err := s.CB.Edit(name)
	if err != nil {
		return Result{}, err
	}
	s.drafts[name] = &draft{name: name, src: src}
	return textResult(src), nil
}

// cmdUpdate commits every staged draft as a single Patch, per §4.7.4's
// atomicity: either every draft re-parses, re-checks, and applies, or none
// do and the codebase is left exactly as it was.
func (s *Session) cmdUpdate(args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, &errdefs.ShellError{Message: "update takes no arguments"}
	}
	if len(s.drafts) == 0 {
		return textResult("nothing to update"), nil
	}

	var patch codebase.Patch
	for _, d := range s.drafts {
		top, err := parser.Parse("<draft>", d.src)
		if err != nil {
			return Result{}, err
		}
		var last ast.Expr
		for _, form := range top {
			letIn, ok := form.(*ast.LetExpr)
			if !ok {
				continue
			}
			last = letIn.Value
		}
		if last == nil {
			return Result{}, &errdefs.ShellError{Message: "update: draft for " + d.name + " has no binding"}
		}
		_, ty, err := s.bindTopLevel(d.name, last)
		if err != nil {
			return Result{}, err
		}
		patch.Updates = append(patch.Updates, codebase.UpdateSpec{Name: d.name, Expr: last, Type: ty})
	}

	if err := s.CB.Apply(patch); err != nil {
		return Result{}, err
	}
	s.drafts = map[string]*draft{}
	return textResult(fmt.Sprintf("updated %d definition(s)", len(patch.Updates))), nil
}

func (s *Session) cmdUndo(args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, &errdefs.ShellError{Message: "undo takes no arguments"}
	}
	if err := s.CB.Undo(); err != nil {
		return Result{}, err
	}
	return textResult("undone"), nil
}

func (s *Session) cmdFind(args []string) (Result, error) {
	if err := requireArgs(args, 1, "find <pattern>"); err != nil {
		return Result{}, err
	}
	pattern := args[0]
	rows := []Row{}
	for _, name := range s.CB.Names() {
		if strings.Contains(name, pattern) {
			def, _ := s.CB.Resolve(name)
			rows = append(rows, Row{"name": name, "hash": def.Hash.Short(), "type": def.Type.String()})
		}
	}
	return Result{Columns: []string{"name", "hash", "type"}, Rows: rows}, nil
}

// cmdSearch implements `search <query>` of §6.1 as a substring search: the
// query is matched against the unparsed source and the rendered type. It
// has no type or AST predicate language.
func (s *Session) cmdSearch(args []string) (Result, error) {
	if err := requireArgs(args, 1, "search <query>"); err != nil {
		return Result{}, err
	}
	query := args[0]
	rows := []Row{}
	for _, def := range s.CB.Definitions() {
		src := ast.Unparse(def.Content)
		ty := def.Type.String()
		if strings.Contains(src, query) || strings.Contains(ty, query) {
			rows = append(rows, Row{"name": shortOrName(s.CB, def.Hash), "hash": def.Hash.Short(), "type": ty})
		}
	}
	return Result{Columns: []string{"name", "hash", "type"}, Rows: rows}, nil
}

func (s *Session) cmdLs(args []string) (Result, error) {
	var pattern string
	if len(args) == 1 {
		pattern = args[0]
	} else if len(args) > 1 {
		return Result{}, &errdefs.ShellError{Message: "ls [pattern]"}
	}
	rows := []Row{}
	for _, name := range s.CB.Names() {
		if pattern != "" && !strings.Contains(name, pattern) {
			continue
		}
		def, _ := s.CB.Resolve(name)
		rows = append(rows, Row{"name": name, "hash": def.Hash.Short(), "type": def.Type.String()})
	}
	return Result{Columns: []string{"name", "hash", "type"}, Rows: rows}, nil
}

func (s *Session) cmdDependencies(args []string) (Result, error) {
	if err := requireArgs(args, 1, "dependencies <name>"); err != nil {
		return Result{}, err
	}
	def, err := s.resolveHashOrName(args[0])
	if err != nil {
		return Result{}, err
	}
	return textResult(s.CB.DependencyTree(def.Hash).String()), nil
}

func (s *Session) cmdDependents(args []string) (Result, error) {
	if err := requireArgs(args, 1, "dependents <name>"); err != nil {
		return Result{}, err
	}
	def, err := s.resolveHashOrName(args[0])
	if err != nil {
		return Result{}, err
	}
	return textResult(s.CB.DependentTree(def.Hash).String()), nil
}

func (s *Session) cmdTypeOf(rest string) (Result, error) {
	if strings.TrimSpace(rest) == "" {
		return Result{}, &errdefs.ShellError{Message: "type-of <expr>"}
	}
	e, err := parseOneExpr(rest)
	if err != nil {
		return Result{}, err
	}
	ty, err := s.Checker.Infer(s.TypeEnv, e)
	if err != nil {
		return Result{}, err
	}
	return textResult(s.Checker.Finalize(ty).String()), nil
}

// cmdBranch snapshots the current codebase under name (or, with no
// argument, reports the implicit current branch), grounded on the
// teacher's own clone-on-Apply rollback mechanism reused here for a
// persistent named copy instead of a transient one.
func (s *Session) cmdBranch(args []string) (Result, error) {
	if len(args) == 0 {
		return textResult(fmt.Sprintf("%d definition(s) on current branch", len(s.CB.Definitions()))), nil
	}
	if len(args) != 1 {
		return Result{}, &errdefs.ShellError{Message: "branch [name]"}
	}
	s.Branches[args[0]] = s.CB.Snapshot()
	return textResult("branched " + args[0]), nil
}

func (s *Session) cmdBranches(args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, &errdefs.ShellError{Message: "branches takes no arguments"}
	}
	rows := []Row{}
	names := make([]string, 0, len(s.Branches))
	for n := range s.Branches {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		rows = append(rows, Row{"name": n, "definitions": strconv.Itoa(len(s.Branches[n].Definitions()))})
	}
	return Result{Columns: []string{"name", "definitions"}, Rows: rows}, nil
}

// cmdMerge folds branch's definitions into the current codebase as a
// single patch: definitions new to the branch are added, shared names
// pointing at a different hash are updated, per §4.7.4.
func (s *Session) cmdMerge(args []string) (Result, error) {
	if err := requireArgs(args, 1, "merge <branch>"); err != nil {
		return Result{}, err
	}
	branch, ok := s.Branches[args[0]]
	if !ok {
		return Result{}, &errdefs.ShellError{Message: "no such branch " + args[0]}
	}

	var patch codebase.Patch
	for _, name := range branch.Names() {
		bdef, _ := branch.Resolve(name)
		if cur, ok := s.CB.Resolve(name); !ok {
			patch.Adds = append(patch.Adds, codebase.AddSpec{Name: name, Expr: bdef.Content, Type: bdef.Type})
		} else if cur.Hash != bdef.Hash {
			patch.Updates = append(patch.Updates, codebase.UpdateSpec{Name: name, Expr: bdef.Content, Type: bdef.Type})
		}
	}
	if err := s.CB.Apply(patch); err != nil {
		return Result{}, err
	}
	for _, a := range patch.Adds {
		s.Checker.Bind(s.TypeEnv, a.Name, a.Type)
	}
	for _, u := range patch.Updates {
		s.Checker.Bind(s.TypeEnv, u.Name, u.Type)
	}
	return textResult(fmt.Sprintf("merged %s: %d added, %d updated", args[0], len(patch.Adds), len(patch.Updates))), nil
}

func (s *Session) cmdHistory(args []string) (Result, error) {
	n := 0
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return Result{}, &errdefs.ShellError{Message: "history [n]"}
		}
		n = v
	} else if len(args) > 1 {
		return Result{}, &errdefs.ShellError{Message: "history [n]"}
	}

	log := s.CB.Log()
	if n > 0 && n < len(log) {
		log = log[len(log)-n:]
	}
	rows := []Row{}
	for i, p := range log {
		rows = append(rows, Row{
			"patch":   strconv.Itoa(i),
			"adds":    strconv.Itoa(len(p.Adds)),
			"removes": strconv.Itoa(len(p.Removes)),
			"updates": strconv.Itoa(len(p.Updates)),
		})
	}
	return Result{Columns: []string{"patch", "adds", "removes", "updates"}, Rows: rows}, nil
}

// cmdDebug implements `debug <expr>`/`trace <expr>`: both evaluate the
// expression; trace additionally lists each codebase definition the
// expression names directly (not their own dependencies), since the evaluator has no separate single-step mode (§5's
// concurrency model runs each definition to completion via goroutines, not
// steppable frames).
func (s *Session) cmdDebug(verb, rest string) (Result, error) {
	if strings.TrimSpace(rest) == "" {
		return Result{}, &errdefs.ShellError{Message: verb + " <expr>"}
	}
	e, err := parseOneExpr(rest)
	if err != nil {
		return Result{}, err
	}
	v, ty, err := s.checkAndEval(e)
	if err != nil {
		return Result{}, err
	}
	if verb == "trace" {
		var b strings.Builder
		fmt.Fprintf(&b, "%s : %s\n", v.String(), ty.String())
		for name := range collectIdents(e) {
			if def, ok := s.CB.Resolve(name); ok {
				fmt.Fprintf(&b, "  uses %s (%s)\n", name, def.Hash.Short())
			}
		}
		return textResult(b.String()), nil
	}
	return textResult(fmt.Sprintf("%s : %s", v.String(), ty.String())), nil
}

func collectIdents(e ast.Expr) map[string]bool {
	out := map[string]bool{}
	ast.Walk(e, func(n ast.Expr) bool {
		if id, ok := n.(*ast.IdentExpr); ok {
			out[id.Name] = true
		}
		return true
	})
	return out
}

func (s *Session) cmdReferences(args []string) (Result, error) {
	return s.cmdDependents(args)
}

func (s *Session) cmdDefinition(args []string) (Result, error) {
	return s.cmdView(args)
}

func (s *Session) cmdHover(args []string) (Result, error) {
	if err := requireArgs(args, 1, "hover <name>"); err != nil {
		return Result{}, err
	}
	def, err := s.resolveHashOrName(args[0])
	if err != nil {
		return Result{}, err
	}
	return textResult(fmt.Sprintf("%s : %s", args[0], def.Type.String())), nil
}

func (s *Session) cmdEval(rest string) (Result, error) {
	if strings.TrimSpace(rest) == "" {
		return Result{}, &errdefs.ShellError{Message: "unknown command"}
	}
	e, err := parseOneExpr(rest)
	if err != nil {
		return Result{}, err
	}
	v, ty, err := s.checkAndEval(e)
	if err != nil {
		return Result{}, err
	}
	return textResult(fmt.Sprintf("%s : %s", v.String(), ty.String())), nil
}
