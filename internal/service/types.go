// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"fmt"
	"strings"
)

// Priority is the canonical priority of a task.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityImportant Priority = "important"
	PriorityUrgent    Priority = "urgent"
)

// Priorities lists every valid priority, lowest first.
var Priorities = []Priority{PriorityNormal, PriorityImportant, PriorityUrgent}

// ParsePriority accepts either the internal token ("urgent") or the display
// form ("Urgent"), ignoring case and surrounding whitespace.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %q", s)
	}
	return p, nil
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityImportant, PriorityUrgent:
		return true
	}
	return false
}

// Display returns the capitalized form sent over the wire ("Normal").
func (p Priority) Display() string {
	if p == "" {
		return ""
	}
	s := string(p)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Task represents a single task item.
type Task struct {
	ID        string
	Title     string
	Type      string
	DueDate   string // opaque label, never parsed
	Completed bool
	Priority  Priority
}

// Fields holds the user-supplied values for a new task.
// Completed is not settable on create; new tasks always start open.
type Fields struct {
	Title    string
	Type     string
	DueDate  string
	Priority Priority
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title     *string
	Type      *string
	DueDate   *string
	Completed *bool
	Priority  *Priority
}

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Type == nil && p.DueDate == nil &&
		p.Completed == nil && p.Priority == nil
}

// Apply returns t with every field set in p replaced.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	return t
}
