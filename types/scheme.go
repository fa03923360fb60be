package types

// Scheme is a type scheme `∀ α₁…αₙ. τ` per §3.3, binding zero or more type
// variables for let-polymorphism.
type Scheme struct {
	Vars []int
	Type *Type
}

// Mono wraps a type with no quantified variables, for monomorphic bindings
// (lambda parameters, LetRec's self-binding before generalization).
func Mono(t *Type) *Scheme { return &Scheme{Type: t} }

// FreeVars returns the scheme's free variables: those occurring in Type but
// not bound by Vars.
func (s *Scheme) FreeVars() map[int]bool {
	bound := map[int]bool{}
	for _, v := range s.Vars {
		bound[v] = true
	}
	free := FreeVars(s.Type)
	for v := range bound {
		delete(free, v)
	}
	return free
}

// Env is a stack of scopes mapping name to scheme, per §4.4.1. Lookup walks
// top to bottom so inner scopes shadow outer ones.
type Env struct {
	scopes []map[string]*Scheme
}

// NewEnv returns an environment with a single empty scope.
func NewEnv() *Env {
	return &Env{scopes: []map[string]*Scheme{{}}}
}

// Push returns a new Env with an additional empty scope on top, sharing the
// parent's scopes by reference (cheap, since scopes are never mutated after
// a child is pushed — see Bind).
func (e *Env) Push() *Env {
	scopes := make([]map[string]*Scheme, len(e.scopes)+1)
	copy(scopes, e.scopes)
	scopes[len(scopes)-1] = map[string]*Scheme{}
	return &Env{scopes: scopes}
}

// Bind sets name in the top scope of e and returns e. Mutates the top scope
// in place; callers that need the old binding preserved must Push first.
func (e *Env) Bind(name string, s *Scheme) *Env {
	e.scopes[len(e.scopes)-1][name] = s
	return e
}

// Lookup finds name's scheme, searching from the innermost scope outward.
func (e *Env) Lookup(name string) (*Scheme, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if s, ok := e.scopes[i][name]; ok {
			return s, true
		}
	}
	return nil, false
}

// Names returns every bound identifier visible in e, innermost scope first,
// for building "did you mean" suggestions on an undefined-variable error.
func (e *Env) Names() []string {
	seen := map[string]bool{}
	var names []string
	for i := len(e.scopes) - 1; i >= 0; i-- {
		for name := range e.scopes[i] {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// FreeVars returns the set of type variables free anywhere in e, used by
// Generalize to exclude variables still referenced by the enclosing scope.
func (e *Env) FreeVars() map[int]bool {
	out := map[int]bool{}
	for _, scope := range e.scopes {
		for _, s := range scope {
			for v := range s.FreeVars() {
				out[v] = true
			}
		}
	}
	return out
}
