// Package exitcode defines exit codes for the CLI and maps errors onto them.
package exitcode

import (
	"errors"

	"taskdash/internal/controller"
	"taskdash/internal/service"
)

// Process exit codes.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid input, unknown task).
	UserError = 1

	// AuthError indicates a missing or expired session, or a config error.
	AuthError = 2

	// BackendError indicates a server or network failure.
	BackendError = 3
)

// For maps an operation error to an exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrAuthExpired):
		return AuthError
	case service.IsValidation(err),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, controller.ErrUnknownTask),
		errors.Is(err, controller.ErrSessionOpen):
		return UserError
	}
	return BackendError
}
