package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	taskType string
	due      string
	priority string
}

// SetFields sets the flag values (for testing).
func (c *AddCmd) SetFields(taskType, due, priority string) {
	c.taskType = taskType
	c.due = due
	c.priority = priority
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskboard add --type <type> --due <date> [--priority normal|important|urgent] <title...>"
}
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.taskType, "type", "", "")
	fs.StringVar(&c.taskType, "t", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.due, "d", "", "")
	fs.StringVar(&c.priority, "priority", string(service.PriorityNormal), "")
	fs.StringVar(&c.priority, "p", string(service.PriorityNormal), "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	prio := c.priority
	if prio == "" {
		prio = string(service.PriorityNormal)
	}
	p, err := service.ParsePriority(prio)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	_, err = st.Create(ctx, service.Fields{
		Title:    title,
		Type:     strings.TrimSpace(c.taskType),
		DueDate:  strings.TrimSpace(c.due),
		Priority: p,
	})
	return exitcode.FromError(err)
}
