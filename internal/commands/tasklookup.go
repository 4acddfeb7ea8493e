package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"taskboard/internal/exitcode"
	"taskboard/internal/store"
)

// OutOfRangeError is returned when a position exceeds the list length.
type OutOfRangeError struct {
	Num int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("task number out of range: %d", e.Num)
}

// resolveTaskID turns a reference into a task ID. Literal IDs are returned
// as-is without a backend call; an unknown ID surfaces later as a
// NotFoundError from the mutation itself. Positions read the list through
// the store cache.
func resolveTaskID(ctx context.Context, st *store.Store, ref TaskRef) (string, error) {
	if ref.ID != "" {
		return ref.ID, nil
	}

	tasks, err := st.List(ctx)
	if err != nil {
		return "", err
	}
	if ref.Num < 1 || ref.Num > len(tasks) {
		return "", &OutOfRangeError{Num: ref.Num}
	}
	return tasks[ref.Num-1].ID, nil
}

// runOnRef parses the task reference in args, resolves it and calls mutate
// with the task ID. Errors from mutate are already reported by the store
// observers; only the exit code is derived here.
func runOnRef(ctx context.Context, st *store.Store, args []string, errOut io.Writer, mutate func(id string) error) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	id, err := resolveTaskID(ctx, st, ref)
	if err != nil {
		var oor *OutOfRangeError
		if errors.As(err, &oor) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return fail(errOut, err)
	}

	return exitcode.FromError(mutate(id))
}
