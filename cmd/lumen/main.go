package main

import (
	"fmt"
	"os"

	"github.com/lumenlang/lumen/cmd/lumen/command"
)

func main() {
	app := command.App()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %s\n", err)
		os.Exit(1)
	}
}
