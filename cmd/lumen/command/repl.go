package command

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/lumenlang/lumen/errdefs"
	"github.com/lumenlang/lumen/persistence"
	"github.com/lumenlang/lumen/shell"
)

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "starts the interactive shell (§6.1)",
	Action: func(c *cli.Context) error {
		s, err := loadWorkspace(c.String("workspace"))
		if err != nil {
			return err
		}

		snapshotPath := c.String("snapshot")
		if snapshotPath != "" {
			if err := mergeSnapshotFile(s, snapshotPath); err != nil && !os.IsNotExist(err) {
				return err
			}
		}

		logger := loggerFromContext(c)
		logger.Debug("repl starting", "workspace", c.String("workspace"), "snapshot", snapshotPath)

		scanner := bufio.NewScanner(os.Stdin)
		fmt.Fprint(os.Stdout, "lumen> ")
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				res, err := s.Run(line)
				if err != nil {
					if errors.Is(err, errdefs.ErrExit) {
						break
					}
					fmt.Fprintf(os.Stderr, "error: %s\n", err)
				} else {
					fmt.Fprintln(os.Stdout, res.Render())
				}
			}
			fmt.Fprint(os.Stdout, "lumen> ")
		}

		if snapshotPath != "" {
			if err := saveSnapshotFile(s, snapshotPath); err != nil {
				return err
			}
			logger.Debug("snapshot saved", "path", snapshotPath)
		}
		return scanner.Err()
	},
}

// mergeSnapshotFile merges a previously saved codebase into s.CB. The
// snapshot's own type and value bindings are not replayed into s.TypeEnv/
// s.EvalEnv (doing so soundly requires rehydrating by dependency order),
// so codebase-level commands (`ls`, `view`, `dependencies`) see the loaded
// definitions immediately; referencing one by name from a new `add`
// requires re-adding it first.
func mergeSnapshotFile(s *shell.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cb, _, err := persistence.Load(f)
	if err != nil {
		return err
	}
	for _, def := range cb.Definitions() {
		name, _ := cb.NameOf(def.Hash)
		s.CB.AddTerm(name, def.Content, def.Type)
	}
	return nil
}

func saveSnapshotFile(s *shell.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return persistence.Save(f, s.CB)
}
