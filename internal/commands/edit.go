package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given,
// so "--type ''" can be told apart from an absent --type.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// EditCmd implements the edit command.
type EditCmd struct {
	title    optString
	taskType optString
	due      optString
	priority optString
}

// SetTitle sets the --title flag (for testing).
func (c *EditCmd) SetTitle(s string) { c.title.Set(s) }

// SetPriority sets the --priority flag (for testing).
func (c *EditCmd) SetPriority(s string) { c.priority.Set(s) }

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskboard edit [--title <t>] [--type <t>] [--due <d>] [--priority <p>] <ref>"
}
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.taskType, "type", "")
	fs.Var(&c.taskType, "t", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.due, "d", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	patch := service.Patch{
		Title:   c.title.ptr(),
		Type:    c.taskType.ptr(),
		DueDate: c.due.ptr(),
	}
	if c.priority.set {
		p, err := service.ParsePriority(c.priority.value)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		patch.Priority = &p
	}

	if patch.Empty() {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --type, --due or --priority)")
		return exitcode.UserError
	}

	return runOnRef(ctx, st, args, errOut, func(id string) error {
		_, err := st.Update(ctx, id, patch)
		return err
	})
}
