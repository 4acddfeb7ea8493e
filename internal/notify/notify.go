// Package notify turns store events into user-visible notifications.
package notify

import (
	"fmt"
	"io"
	"log/slog"

	"taskboard/internal/store"
)

var successText = map[store.Op]string{
	store.OpCreate:   "task created",
	store.OpUpdate:   "task updated",
	store.OpComplete: "task completed",
	store.OpReopen:   "task reopened",
	store.OpRemove:   "task deleted",
}

var failureText = map[store.Op]string{
	store.OpCreate:   "failed to create task",
	store.OpUpdate:   "failed to update task",
	store.OpComplete: "failed to complete task",
	store.OpReopen:   "failed to reopen task",
	store.OpRemove:   "failed to delete task",
}

// Toaster prints one line per mutation: "ok: ..." to out unless quiet,
// "error: ..." to errOut always.
type Toaster struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// NewToaster creates a Toaster.
func NewToaster(out, errOut io.Writer, quiet bool) *Toaster {
	return &Toaster{out: out, errOut: errOut, quiet: quiet}
}

// Notify implements store.Observer.
func (t *Toaster) Notify(e store.Event) {
	if e.Failed() {
		fmt.Fprintf(t.errOut, "error: %s: %v\n", failureText[e.Op], e.Err)
		return
	}
	if t.quiet {
		return
	}
	fmt.Fprintf(t.out, "ok: %s\n", Describe(e))
}

// Describe returns the success message for e, e.g. "task created: Buy milk".
func Describe(e store.Event) string {
	msg := successText[e.Op]
	switch {
	case e.Task.Title != "":
		return msg + ": " + e.Task.Title
	case e.TaskID != "":
		return msg + ": " + e.TaskID
	}
	return msg
}

// LogObserver records every event on a logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Notify implements store.Observer.
func (l *LogObserver) Notify(e store.Event) {
	if e.Failed() {
		l.logger.Debug("task mutation failed", "op", string(e.Op), "id", e.TaskID, "error", e.Err)
		return
	}
	l.logger.Debug("task mutation", "op", string(e.Op), "id", e.TaskID)
}
