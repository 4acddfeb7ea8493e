package service

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxFieldLength is the longest accepted title, type or due date, in characters.
const MaxFieldLength = 255

// NetworkError is a transport failure: DNS, refused connection, timeout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response (other than 404) or an unreadable reply.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: server error: %s", e.Op, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s: server error: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server error: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// ValidationError is a client-side field constraint violation.
// No request is sent when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation on an unknown task ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "task not found: " + e.ID
}

// ValidateText checks the length constraints shared by title, type and due date.
func ValidateText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(value)); n > MaxFieldLength {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters, got %d", MaxFieldLength, n)}
	}
	return nil
}

// Validate checks every field of a create request.
func (f Fields) Validate() error {
	if err := ValidateText("title", f.Title); err != nil {
		return err
	}
	if err := ValidateText("type", f.Type); err != nil {
		return err
	}
	if err := ValidateText("dueDate", f.DueDate); err != nil {
		return err
	}
	if !f.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("must be one of normal, important, urgent, got %q", f.Priority)}
	}
	return nil
}

// Validate checks the fields a patch sets. An empty patch is rejected.
func (p Patch) Validate() error {
	if p.Empty() {
		return &ValidationError{Reason: "no fields to update"}
	}
	if p.Title != nil {
		if err := ValidateText("title", *p.Title); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := ValidateText("type", *p.Type); err != nil {
			return err
		}
	}
	if p.DueDate != nil {
		if err := ValidateText("dueDate", *p.DueDate); err != nil {
			return err
		}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("must be one of normal, important, urgent, got %q", *p.Priority)}
	}
	return nil
}
