package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskboard` (no args) and `taskboard list [query...]`.
type ListCmd struct {
	search   string
	format   string
	all      bool
	openOnly bool
	doneOnly bool
}

// SetSearch sets the search query (for testing).
func (c *ListCmd) SetSearch(q string) {
	c.search = q
}

// SetFormat sets the output format (for testing).
func (c *ListCmd) SetFormat(f string) {
	c.format = f
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks, optionally filtered by title" }
func (c *ListCmd) Usage() string {
	return "taskboard list [--search <q>] [--all|--open|--done] [--output table|json|yaml] [query...]"
}
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.format, "output", "", "")
	fs.StringVar(&c.format, "o", "", "")
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.openOnly, "open", false, "")
	fs.BoolVar(&c.doneOnly, "done", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if c.openOnly && c.doneOnly {
		fmt.Fprintln(errOut, "error: cannot use both --open and --done")
		return exitcode.UserError
	}
	if c.all && (c.openOnly || c.doneOnly) {
		fmt.Fprintln(errOut, "error: cannot combine --all with --open or --done")
		return exitcode.UserError
	}

	format := c.format
	if format == "" {
		format = cfg.Output
	}
	switch format {
	case "", output.FormatTable, output.FormatJSON, output.FormatYAML:
	default:
		fmt.Fprintf(errOut, "error: unknown output format: %s\n", format)
		return exitcode.UserError
	}

	// Positional args are a shorthand for --search.
	query := c.search
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}

	tasks, err := st.List(ctx)
	if err != nil {
		return fail(errOut, err)
	}

	rows := c.rows(tasks, query)

	if len(rows) == 0 && (format == "" || format == output.FormatTable) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	if err := output.Write(out, format, rows); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// rows filters tasks and numbers them by their position in the full list,
// so that numbers stay valid task references whatever the filter.
func (c *ListCmd) rows(tasks []service.Task, query string) []output.Row {
	pos := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, seen := pos[t.ID]; !seen {
			pos[t.ID] = i + 1
		}
	}

	var rows []output.Row
	for _, t := range store.Filter(tasks, query) {
		if c.openOnly && t.Completed || c.doneOnly && !t.Completed {
			continue
		}
		rows = append(rows, output.Row{Num: pos[t.ID], Task: t})
	}
	return rows
}
