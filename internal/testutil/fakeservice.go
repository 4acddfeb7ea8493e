// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.RWMutex
	tasks []service.Task

	// Calls counts backend calls by method name.
	Calls map[string]int

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// OnList, if set, runs after ListTasks has taken its snapshot and
	// before it returns.
	OnList func()
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{Calls: make(map[string]int)}
}

// AddTask seeds a task and returns it. An empty id is replaced by a UUID.
func (f *FakeService) AddTask(t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == "" {
		t.Priority = service.PriorityNormal
	}
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a snapshot of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// CallCount returns how often method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.Calls[method]
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.count("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	tasks := f.Tasks()
	if f.OnList != nil {
		f.OnList()
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, fields service.Fields) (service.Task, error) {
	f.count("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := service.Task{
		ID:       uuid.NewString(),
		Title:    fields.Title,
		Type:     fields.Type,
		DueDate:  fields.DueDate,
		Priority: fields.Priority,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, p service.Patch) (service.Task, error) {
	f.count("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = p.Apply(t)
			return f.tasks[i], nil
		}
	}
	return service.Task{}, &service.NotFoundError{ID: id}
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.count("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &service.NotFoundError{ID: id}
}

func (f *FakeService) count(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[method]++
}
