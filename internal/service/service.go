// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service is the remote task collection.
// Backends translate their transport failures into the error types in
// errors.go; commands never import a backend directly.
type Service interface {
	// ListTasks returns the whole collection in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates an open task and returns it with its server-assigned ID.
	CreateTask(ctx context.Context, f Fields) (Task, error)

	// UpdateTask replaces the fields set in p and returns the updated task.
	// Returns *NotFoundError if id is unknown.
	UpdateTask(ctx context.Context, id string, p Patch) (Task, error)

	// DeleteTask deletes a task.
	// Returns *NotFoundError if id is unknown or already deleted.
	DeleteTask(ctx context.Context, id string) error
}
