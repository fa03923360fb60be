package command

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"

	"github.com/lumenlang/lumen/persistence"
)

var snapshotCommand = &cli.Command{
	Name:  "snapshot",
	Usage: "saves or loads an on-disk codebase snapshot (§4.9)",
	Subcommands: []*cli.Command{
		snapshotSaveCommand,
		snapshotLoadCommand,
	},
}

var snapshotSaveCommand = &cli.Command{
	Name:      "save",
	Usage:     "loads the workspace and writes a snapshot to path",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("snapshot save: expected exactly one path argument")
		}
		s, err := loadWorkspace(c.String("workspace"))
		if err != nil {
			return err
		}

		f, err := os.Create(c.Args().First())
		if err != nil {
			return errors.Wrap(err, "snapshot save")
		}
		defer f.Close()

		if err := persistence.Save(f, s.CB); err != nil {
			return errors.Wrap(err, "snapshot save")
		}
		fmt.Printf("saved %d definitions to %s\n", len(s.CB.Definitions()), c.Args().First())
		return nil
	},
}

var snapshotLoadCommand = &cli.Command{
	Name:      "load",
	Usage:     "reads a snapshot and prints its definition and namespace summary",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("snapshot load: expected exactly one path argument")
		}

		f, err := os.Open(c.Args().First())
		if err != nil {
			return errors.Wrap(err, "snapshot load")
		}
		defer f.Close()

		cb, meta, err := persistence.Load(f)
		if err != nil {
			return errors.Wrap(err, "snapshot load")
		}
		fmt.Printf("%d definitions, saved namespaces:\n", len(cb.Definitions()))
		for ns, count := range meta.Namespaces {
			if ns == "" {
				ns = "(root)"
			}
			fmt.Printf("  %s: %d\n", ns, count)
		}
		return nil
	},
}
