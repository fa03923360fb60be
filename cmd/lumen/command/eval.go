package command

import (
	"fmt"

	cli "github.com/urfave/cli/v2"

	"github.com/lumenlang/lumen/eval"
	"github.com/lumenlang/lumen/parser"
)

var evalCommand = &cli.Command{
	Name:      "eval",
	Usage:     "checks, then evaluates, an expression against the workspace",
	ArgsUsage: "<expr>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("eval: expected exactly one expression argument")
		}
		source := c.Args().First()
		e, err := parser.ParseExpr("<arg>", source)
		if err != nil {
			return err
		}

		s, err := loadWorkspace(c.String("workspace"))
		if err != nil {
			return err
		}
		ty, err := s.Checker.Infer(s.TypeEnv, e)
		if err != nil {
			return reportError("<arg>", source, err)
		}
		v, err := eval.Eval(eval.NewContext(s.EvalEnv), e)
		if err != nil {
			return reportError("<arg>", source, err)
		}
		fmt.Printf("%s : %s\n", v.String(), s.Checker.Finalize(ty).String())
		return nil
	},
}
