package command

import (
	"fmt"

	cli "github.com/urfave/cli/v2"
)

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "prints lumen tool version",
	Action: func(c *cli.Context) error {
		fmt.Println(Version)
		return nil
	},
}
