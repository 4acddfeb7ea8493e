// Package store holds the client-side cache of the remote task collection.
//
// A Store wraps a service.Service. Reads are served from a cached copy of the
// collection; every mutation, successful or not, is reported to subscribed
// observers, and every successful mutation invalidates the cache so the next
// read re-fetches from the backend.
package store

import (
	"context"
	"log/slog"
	"sync"

	"taskboard/internal/logging"
	"taskboard/internal/service"
)

// Op identifies a mutation.
type Op string

const (
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpComplete Op = "complete"
	OpReopen   Op = "reopen"
	OpRemove   Op = "remove"
)

// Event describes the outcome of one mutation.
type Event struct {
	Op     Op
	TaskID string
	Task   service.Task // zero on failure and on OpRemove
	Err    error
}

// Failed reports whether the mutation failed.
func (e Event) Failed() bool { return e.Err != nil }

// Observer is notified after every mutation.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

// Store caches the task collection of a backend.
type Store struct {
	svc    service.Service
	logger *slog.Logger

	mu        sync.Mutex
	tasks     []service.Task
	valid     bool
	gen       uint64 // bumped on every invalidation
	nextObsID int
	observers []observerEntry
}

type observerEntry struct {
	id  int
	obs Observer
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store over svc with an empty cache.
func New(svc service.Service, opts ...Option) *Store {
	s := &Store{
		svc:    svc,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer. The returned function removes it.
func (s *Store) Subscribe(obs Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observerEntry{id: id, obs: obs})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.observers {
			if e.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// List returns the collection, from cache when it is valid.
// The returned slice is a copy and may be modified by the caller.
func (s *Store) List(ctx context.Context) ([]service.Task, error) {
	s.mu.Lock()
	if s.valid {
		tasks := cloneTasks(s.tasks)
		s.mu.Unlock()
		s.logger.Debug("task cache hit", "count", len(tasks))
		return tasks, nil
	}
	s.mu.Unlock()

	return s.fetch(ctx)
}

// Refresh re-fetches the collection regardless of cache state.
func (s *Store) Refresh(ctx context.Context) ([]service.Task, error) {
	return s.fetch(ctx)
}

// Get returns the task with the given ID from the current collection.
func (s *Store) Get(ctx context.Context, id string) (service.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return service.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, &service.NotFoundError{ID: id}
}

// Invalidate discards the cached collection.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.invalidateLocked()
	s.mu.Unlock()
}

// Create validates f and creates an open task.
func (s *Store) Create(ctx context.Context, f service.Fields) (service.Task, error) {
	if err := f.Validate(); err != nil {
		s.emit(Event{Op: OpCreate, Err: err})
		return service.Task{}, err
	}

	t, err := s.svc.CreateTask(ctx, f)
	if err != nil {
		s.emit(Event{Op: OpCreate, Err: err})
		return service.Task{}, err
	}

	s.Invalidate()
	s.emit(Event{Op: OpCreate, TaskID: t.ID, Task: t})
	return t, nil
}

// Update replaces the fields set in p on task id.
func (s *Store) Update(ctx context.Context, id string, p service.Patch) (service.Task, error) {
	return s.mutate(ctx, OpUpdate, id, p)
}

// SetCompleted sets only the completion state of task id.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) (service.Task, error) {
	op := OpComplete
	if !completed {
		op = OpReopen
	}
	return s.mutate(ctx, op, id, service.Patch{Completed: &completed})
}

// Remove deletes task id. Deleting an already-deleted task returns
// *service.NotFoundError; callers that only care about the end state may
// ignore it.
func (s *Store) Remove(ctx context.Context, id string) error {
	if id == "" {
		err := &service.ValidationError{Field: "id", Reason: "must not be empty"}
		s.emit(Event{Op: OpRemove, Err: err})
		return err
	}

	if err := s.svc.DeleteTask(ctx, id); err != nil {
		s.emit(Event{Op: OpRemove, TaskID: id, Err: err})
		return err
	}

	s.Invalidate()
	s.emit(Event{Op: OpRemove, TaskID: id})
	return nil
}

func (s *Store) mutate(ctx context.Context, op Op, id string, p service.Patch) (service.Task, error) {
	if id == "" {
		err := &service.ValidationError{Field: "id", Reason: "must not be empty"}
		s.emit(Event{Op: op, Err: err})
		return service.Task{}, err
	}
	if err := p.Validate(); err != nil {
		s.emit(Event{Op: op, TaskID: id, Err: err})
		return service.Task{}, err
	}

	t, err := s.svc.UpdateTask(ctx, id, p)
	if err != nil {
		s.emit(Event{Op: op, TaskID: id, Err: err})
		return service.Task{}, err
	}

	s.Invalidate()
	s.emit(Event{Op: op, TaskID: id, Task: t})
	return t, nil
}

// fetch loads the collection from the backend. The result is cached only if
// no invalidation happened while the request was in flight.
func (s *Store) fetch(ctx context.Context) ([]service.Task, error) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.tasks = cloneTasks(tasks)
		s.valid = true
		s.logger.Debug("task cache filled", "count", len(tasks))
	} else {
		s.logger.Debug("discarding stale fetch", "count", len(tasks))
	}
	s.mu.Unlock()

	return tasks, nil
}

func (s *Store) invalidateLocked() {
	s.tasks = nil
	s.valid = false
	s.gen++
	s.logger.Debug("task cache invalidated", "generation", s.gen)
}

func (s *Store) emit(e Event) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	for i, entry := range s.observers {
		observers[i] = entry.obs
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs.Notify(e)
	}
}

func cloneTasks(tasks []service.Task) []service.Task {
	if tasks == nil {
		return nil
	}
	out := make([]service.Task, len(tasks))
	copy(out, tasks)
	return out
}
