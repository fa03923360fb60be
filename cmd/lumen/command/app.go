// Package command wires the cmd/lumen subcommands, following the shape of
// the teacher's own cmd/hlb/command package: a top-level *cli.App built in
// App(), one *cli.Command value per file.
package command

import (
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/lumenlang/lumen/internal/logging"
)

// Version is reported by the version command.
const Version = "0.1.0"

func App() *cli.App {
	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "interactive content-addressed functional language core"
	app.Description = "lumen loads, checks, evaluates and persists a codebase of hashed definitions"
	app.Commands = []*cli.Command{
		hashCommand,
		checkCommand,
		evalCommand,
		snapshotCommand,
		replCommand,
		versionCommand,
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "workspace",
			Usage: "directory of source files loaded into the session",
		},
		&cli.StringFlag{
			Name:  "snapshot",
			Usage: "on-disk snapshot path (loaded at startup, saved on exit)",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "log output format: text or json",
			Value: "text",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug-level logging",
		},
	}
	return app
}

func loggerFromContext(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	format := logging.Text
	if c.String("format") == "json" {
		format = logging.JSON
	}
	return logging.New(os.Stderr, format, level)
}
