// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"
	"net/http"

	"taskboard/internal/auth"
	"taskboard/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid fields, unknown task).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// FromError maps an error returned by the store or a backend to an exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var (
		verr *service.ValidationError
		nerr *service.NotFoundError
		serr *service.ServerError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &nerr):
		return UserError
	case errors.As(err, &serr):
		if serr.StatusCode == http.StatusUnauthorized || serr.StatusCode == http.StatusForbidden {
			return AuthError
		}
		return BackendError
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrNoOAuthClient):
		return AuthError
	}
	return BackendError
}
