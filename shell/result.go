package shell

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lumenlang/lumen/errdefs"
)

// Row is one line of structured output, e.g. one codebase entry for `ls`
// or `find`. Columns are looked up by name for filter/sort.
type Row map[string]string

// Result is the output of one pipeline stage: either free text (help,
// view, debug output, evaluation results) or a table of Rows that further
// stages can filter/take/sort/count, per §6.1's "Pipelines ... operate on
// structured command output."
type Result struct {
	Text    string
	Columns []string
	Rows    []Row
}

func textResult(s string) Result { return Result{Text: s} }

func (r Result) structured() bool { return r.Rows != nil || r.Columns != nil }

// Render formats r for display: rows as a simple aligned table, otherwise
// the plain text.
func (r Result) Render() string {
	if !r.structured() {
		return r.Text
	}
	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, "\t"))
	b.WriteByte('\n')
	for _, row := range r.Rows {
		vals := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			vals[i] = row[col]
		}
		b.WriteString(strings.Join(vals, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// applyStage runs one filter/take/sort/count stage against prev, per
// §6.1's pipeline grammar. Only structured results can be piped.
func applyStage(prev Result, stage Stage) (Result, error) {
	if !prev.structured() {
		return Result{}, &errdefs.ShellError{Message: "cannot pipe unstructured output into " + stage.Verb}
	}
	switch stage.Verb {
	case "filter":
		return filterRows(prev, stage.Args)
	case "take":
		return takeRows(prev, stage.Args)
	case "sort":
		return sortRows(prev, stage.Args)
	case "count":
		return countRows(prev, stage.Args)
	default:
		return Result{}, &errdefs.ShellError{Message: "unknown pipeline stage " + stage.Verb}
	}
}

// filterRows keeps rows where any column contains the given substring, or
// (with a `column=substring` argument) where that specific column does.
func filterRows(prev Result, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, &errdefs.ShellError{Message: "filter takes exactly one argument"}
	}
	col, needle, scoped := strings.Cut(args[0], "=")

	var out []Row
	for _, row := range prev.Rows {
		if scoped {
			if strings.Contains(row[col], needle) {
				out = append(out, row)
			}
			continue
		}
		for _, v := range row {
			if strings.Contains(v, args[0]) {
				out = append(out, row)
				break
			}
		}
	}
	return Result{Columns: prev.Columns, Rows: out}, nil
}

func takeRows(prev Result, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, &errdefs.ShellError{Message: "take takes exactly one argument"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return Result{}, &errdefs.ShellError{Message: "take: invalid count " + args[0]}
	}
	if n > len(prev.Rows) {
		n = len(prev.Rows)
	}
	rows := make([]Row, n)
	copy(rows, prev.Rows[:n])
	return Result{Columns: prev.Columns, Rows: rows}, nil
}

func sortRows(prev Result, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, &errdefs.ShellError{Message: "sort takes exactly one field argument"}
	}
	col := args[0]
	rows := make([]Row, len(prev.Rows))
	copy(rows, prev.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i][col] < rows[j][col] })
	return Result{Columns: prev.Columns, Rows: rows}, nil
}

func countRows(prev Result, args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, &errdefs.ShellError{Message: "count takes no arguments"}
	}
	return textResult(strconv.Itoa(len(prev.Rows))), nil
}
