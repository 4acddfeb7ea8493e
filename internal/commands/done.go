package commands

import (
	"context"
	"flag"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/store"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "taskboard done <ref>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return setCompleted(ctx, st, args, errOut, true)
}

// UndoCmd implements the undo command, the inverse of done.
type UndoCmd struct{}

func (c *UndoCmd) Name() string       { return "undo" }
func (c *UndoCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string   { return "Mark a completed task open again" }
func (c *UndoCmd) Usage() string      { return "taskboard undo <ref>" }
func (c *UndoCmd) NeedsBackend() bool { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return setCompleted(ctx, st, args, errOut, false)
}

func setCompleted(ctx context.Context, st *store.Store, args []string, errOut io.Writer, completed bool) int {
	return runOnRef(ctx, st, args, errOut, func(id string) error {
		_, err := st.SetCompleted(ctx, id, completed)
		return err
	})
}
