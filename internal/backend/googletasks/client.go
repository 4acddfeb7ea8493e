// Package googletasks implements the service.Service interface using Google Tasks API.
//
// Tasks live in the user's default list. Google has no place for a task's
// type, due-date label or priority, so those travel in the task notes as a
// small YAML document (see notes.go).
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	statusOpen      = "needsAction"
	statusCompleted = "completed"
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	listID  string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist (run: taskboard login).
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	ts, err := auth.GoogleTokenSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("google tasks auth: %w", err)
	}

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{svc: svc, listID: DefaultListID, timeout: cfg.Timeout, logger: logger}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options such as option.WithEndpoint are passed to the Tasks service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		svc:     svc,
		listID:  DefaultListID,
		timeout: config.DefaultTimeout,
		logger:  logging.Discard(),
	}, nil
}

// ListTasks returns every task of the default list, completed ones included.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, gt := range resp.Items {
				result = append(result, fromGoogle(gt))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError("list tasks", "", err)
	}
	c.logger.Debug("listed google tasks", "count", len(result))
	return result, nil
}

// CreateTask inserts a new open task.
func (c *Client) CreateTask(ctx context.Context, f service.Fields) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	want := service.Task{Title: f.Title, Type: f.Type, DueDate: f.DueDate, Priority: f.Priority}
	gt, err := toGoogle(want, "")
	if err != nil {
		return service.Task{}, err
	}

	created, err := c.svc.Tasks.Insert(c.listID, gt).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError("create task", "", err)
	}
	return fromGoogle(created), nil
}

// UpdateTask reads the task, applies p and writes title, status and notes back.
func (c *Client) UpdateTask(ctx context.Context, id string, p service.Patch) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	current, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError("update task", id, err)
	}

	merged := p.Apply(fromGoogle(current))
	gt, err := toGoogle(merged, decodeNotes(current.Notes).Extra)
	if err != nil {
		return service.Task{}, err
	}
	if !merged.Completed {
		// Reopening requires clearing the completion timestamp.
		gt.NullFields = append(gt.NullFields, "Completed")
	}

	updated, err := c.svc.Tasks.Patch(c.listID, id, gt).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError("update task", id, err)
	}
	return fromGoogle(updated), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError("delete task", id, err)
	}
	return nil
}

func fromGoogle(gt *tasks.Task) service.Task {
	n := decodeNotes(gt.Notes)
	p, err := service.ParsePriority(n.Priority)
	if err != nil {
		p = service.PriorityNormal
	}
	return service.Task{
		ID:        gt.Id,
		Title:     gt.Title,
		Type:      n.Type,
		DueDate:   n.Due,
		Completed: gt.Status == statusCompleted,
		Priority:  p,
	}
}

// toGoogle builds the Google task for t. extra is free text to keep in the
// notes alongside the encoded fields.
func toGoogle(t service.Task, extra string) (*tasks.Task, error) {
	notes, err := encodeNotes(t, extra)
	if err != nil {
		return nil, err
	}
	status := statusOpen
	if t.Completed {
		status = statusCompleted
	}
	return &tasks.Task{
		Title:  t.Title,
		Notes:  notes,
		Status: status,
	}, nil
}

// wrapError maps API errors onto the service error types.
func wrapError(op, id string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusNotFound && id != "" {
			return &service.NotFoundError{ID: id}
		}
		return &service.ServerError{Op: op, StatusCode: gerr.Code, Message: gerr.Message}
	}

	return &service.NetworkError{Op: op, Err: err}
}
