package command

import (
	"fmt"

	cli "github.com/urfave/cli/v2"

	"github.com/lumenlang/lumen/parser"
)

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "type-checks an expression against the workspace and prints its type",
	ArgsUsage: "<expr>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("check: expected exactly one expression argument")
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
		fmt.Println(s.Checker.Finalize(ty).String())
		return nil
	},
}
