package parser

import (
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/lumenlang/lumen/ast"
)

// ParseFiles parses every path concurrently and returns each file's
// top-level forms in the same order as paths, mirroring the teacher's
// ParseMultiple: one goroutine per file, results written into a
// pre-sized slice by index so ordering survives the fan-out.
func ParseFiles(paths []string) ([][]ast.Expr, error) {
	out := make([][]ast.Expr, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			exprs, err := Parse(path, string(src))
			if err != nil {
				return err
			}
			out[i] = exprs
			return nil
		})
	}

	return out, g.Wait()
}
