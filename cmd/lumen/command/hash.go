package command

import (
	"fmt"

	cli "github.com/urfave/cli/v2"

	"github.com/lumenlang/lumen/hash"
	"github.com/lumenlang/lumen/parser"
)

var hashCommand = &cli.Command{
	Name:      "hash",
	Usage:     "prints the content hash of an expression",
	ArgsUsage: "<expr>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("hash: expected exactly one expression argument")
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
		h := hash.Of(hash.KindTerm, e, s.Checker.Finalize(ty))
		fmt.Println(h.String())
		return nil
	},
}
