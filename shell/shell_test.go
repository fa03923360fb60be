package shell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenlang/lumen/parser"
	"github.com/lumenlang/lumen/types"
)

func TestParseLinePipeline(t *testing.T) {
	p, err := ParseLine(`ls foo | filter name=bar | take 3`)
	require.NoError(t, err)
	require.Len(t, p.Stages, 3)
	require.Equal(t, "ls", p.Stages[0].Verb)
	require.Equal(t, []string{"foo"}, p.Stages[0].Args)
	require.Equal(t, "filter", p.Stages[1].Verb)
	require.Equal(t, []string{"name=bar"}, p.Stages[1].Args)
	require.Equal(t, "take", p.Stages[2].Verb)
	require.Equal(t, []string{"3"}, p.Stages[2].Args)
}

func TestParseLinePreservesExprSpacesInRest(t *testing.T) {
	p, err := ParseLine(`add greeting = (++ "hello " "world")`)
	require.NoError(t, err)
	require.Len(t, p.Stages, 1)
	require.Equal(t, "add", p.Stages[0].Verb)
	require.Equal(t, `greeting = (++ "hello " "world")`, p.Stages[0].Rest)
}

func TestParseLinePipeDoesNotSplitInsideQuotes(t *testing.T) {
	p, err := ParseLine(`add s = "a | b"`)
	require.NoError(t, err)
	require.Len(t, p.Stages, 1)
}

func TestSplitNameEq(t *testing.T) {
	name, expr := splitNameEq(`greeting = (++ "a" "b")`)
	require.Equal(t, "greeting", name)
	require.Equal(t, `(++ "a" "b")`, expr)

	name, expr = splitNameEq(`(= 1 1)`)
	require.Equal(t, "", name)
	require.Equal(t, `(= 1 1)`, expr)
}

func TestSessionAddViewLs(t *testing.T) {
	s := New()

	res, err := s.Run(`add one = 1`)
	require.NoError(t, err)
	require.Contains(t, res.Text, "one")
	require.Contains(t, res.Text, "Int")

	res, err = s.Run(`ls`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "one", res.Rows[0]["name"])

	res, err = s.Run(`view one`)
	require.NoError(t, err)
	require.Contains(t, res.Text, "Int")
}

func TestSessionAddReferencesEarlierBinding(t *testing.T) {
	s := New()
	_, err := s.Run(`add x = 1`)
	require.NoError(t, err)

	res, err := s.Run(`add y = (+ x 1)`)
	require.NoError(t, err)
	require.Contains(t, res.Text, "y")
}

func TestSessionUndefinedVariable(t *testing.T) {
	s := New()
	_, err := s.Run(`add z = bogus`)
	require.Error(t, err)
}

func TestSessionDependenciesAndDependents(t *testing.T) {
	s := New()
	_, err := s.Run(`add x = 1`)
	require.NoError(t, err)
	_, err = s.Run(`add y = (+ x 1)`)
	require.NoError(t, err)

	res, err := s.Run(`dependencies y`)
	require.NoError(t, err)
	require.Contains(t, res.Text, "x")

	res, err = s.Run(`dependents x`)
	require.NoError(t, err)
	require.Contains(t, res.Text, "y")
}

func TestSessionEvalBareExpr(t *testing.T) {
	s := New()
	res, err := s.Run(`(+ 1 2)`)
	require.NoError(t, err)
	require.Contains(t, res.Text, "3")
	require.Contains(t, res.Text, "Int")
}

func TestPipelineFilterTakeCount(t *testing.T) {
	s := New()
	_, err := s.Run(`add alpha = 1`)
	require.NoError(t, err)
	_, err = s.Run(`add beta = 2`)
	require.NoError(t, err)
	_, err = s.Run(`add gamma = 3`)
	require.NoError(t, err)

	res, err := s.Run(`ls | filter name=a`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3) // alpha, beta, gamma

	res, err = s.Run(`ls | count`)
	require.NoError(t, err)
	require.Equal(t, "3", res.Text)

	res, err = s.Run(`ls | take 1`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

func TestBranchAndMerge(t *testing.T) {
	s := New()
	_, err := s.Run(`add a = 1`)
	require.NoError(t, err)

	_, err = s.Run(`branch feature`)
	require.NoError(t, err)

	e, err := parser.ParseExpr("<test>", "2")
	require.NoError(t, err)
	s.Branches["feature"].AddTerm("b", e, types.Prim(types.Int))

	res, err := s.Run(`merge feature`)
	require.NoError(t, err)
	require.Contains(t, res.Text, "added")
}
