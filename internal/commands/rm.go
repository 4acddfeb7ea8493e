package commands

import (
	"context"
	"errors"
	"flag"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "taskboard rm [--force] <ref>" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

// Run deletes the task. With --force, deleting a task that is already gone
// exits successfully; the failure notification is still printed.
func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return runOnRef(ctx, st, args, errOut, func(id string) error {
		err := st.Remove(ctx, id)
		var nf *service.NotFoundError
		if c.force && errors.As(err, &nf) {
			return nil
		}
		return err
	})
}
