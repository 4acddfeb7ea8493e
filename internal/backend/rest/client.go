// Package rest implements the service.Service interface over a JSON REST
// collection: GET /, POST /, PUT /{id}, DELETE /{id}.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/service"
)

// maxErrorBody bounds how much of an error response is kept in ServerError.
const maxErrorBody = 200

// Client implements service.Service against a REST task collection.
type Client struct {
	root    string // collection URL, always ends in "/"
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for cfg.BaseURL, authenticated with whatever
// credentials cfg provides.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	ts, err := auth.RESTTokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{}
	if ts != nil {
		httpClient = oauth2.NewClient(ctx, ts)
	}

	return NewWithHTTPClient(cfg.BaseURL, httpClient, WithTimeout(cfg.Timeout), WithLogger(logger))
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}

	c := &Client{
		root:    strings.TrimRight(u.String(), "/") + "/",
		http:    httpClient,
		timeout: config.DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c, nil
}

// ListTasks returns the whole collection.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var wire []wireTask
	if err := c.do(ctx, "list tasks", http.MethodGet, c.root, "", nil, &wire); err != nil {
		return nil, err
	}

	tasks := make([]service.Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, c.decode(w))
	}
	return tasks, nil
}

// CreateTask posts a new open task.
func (c *Client) CreateTask(ctx context.Context, f service.Fields) (service.Task, error) {
	body := createBody{
		Title:     f.Title,
		Type:      f.Type,
		DueDate:   f.DueDate,
		Completed: false,
		Priority:  f.Priority.Display(),
	}

	var w wireTask
	if err := c.do(ctx, "create task", http.MethodPost, c.root, "", body, &w); err != nil {
		return service.Task{}, err
	}
	t := c.decode(w)
	if t.ID == "" {
		return service.Task{}, &service.ServerError{Op: "create task", Message: "response has no task id"}
	}
	return t, nil
}

// UpdateTask sends the fields set in p.
func (c *Client) UpdateTask(ctx context.Context, id string, p service.Patch) (service.Task, error) {
	body := patchBody{
		Title:     p.Title,
		Type:      p.Type,
		DueDate:   p.DueDate,
		Completed: p.Completed,
	}
	if p.Priority != nil {
		display := p.Priority.Display()
		body.Priority = &display
	}

	var w wireTask
	if err := c.do(ctx, "update task", http.MethodPut, c.itemURL(id), id, body, &w); err != nil {
		return service.Task{}, err
	}
	t := c.decode(w)
	if t.ID == "" {
		t.ID = id
	}
	return t, nil
}

// DeleteTask deletes a task. The response body, if any, is ignored.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, c.itemURL(id), id, nil, nil)
}

func (c *Client) itemURL(id string) string {
	return c.root + url.PathEscape(id)
}

// do performs one request. id, when non-empty, turns a 404 into a
// NotFoundError. out, when non-nil, receives the decoded JSON body.
func (c *Client) do(ctx context.Context, op, method, target, id string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "error", err)
		return wrapTransportError(op, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "method", method, "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusNotFound && id != "" {
		io.Copy(io.Discard, resp.Body)
		return &service.NotFoundError{ID: id}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &service.ServerError{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return &service.NetworkError{Op: op, Err: err}
		}
		return &service.ServerError{Op: op, StatusCode: resp.StatusCode, Message: "decoding response: " + err.Error()}
	}
	return nil
}

// wrapTransportError classifies an error from http.Client.Do.
func wrapTransportError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &service.ServerError{Op: op, StatusCode: re.Response.StatusCode, Message: "token request failed"}
	}
	return &service.NetworkError{Op: op, Err: err}
}

func (c *Client) decode(w wireTask) service.Task {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}
	p, err := service.ParsePriority(w.Priority)
	if err != nil {
		c.logger.Debug("unknown priority, using normal", "id", id, "priority", w.Priority)
		p = service.PriorityNormal
	}
	return service.Task{
		ID:        id,
		Title:     w.Title,
		Type:      w.Type,
		DueDate:   w.DueDate,
		Completed: w.Completed,
		Priority:  p,
	}
}
