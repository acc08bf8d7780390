package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound matches server errors for unknown resources.
	ErrNotFound = errors.New("not found")

	// ErrAuthExpired matches authorization failures on authenticated calls.
	ErrAuthExpired = errors.New("session expired")
)

// ValidationError is raised before any network call for invalid input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NetworkError is a transport failure with no response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response.
type ServerError struct {
	Status  int
	Message string

	// Authenticated is set when the failing call carried a session.
	// Only then does a 401 mean the session expired.
	Authenticated bool
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is match ErrNotFound and ErrAuthExpired by status.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrAuthExpired:
		return e.Authenticated && e.Status == http.StatusUnauthorized
	}
	return false
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// RequireTitle trims title and returns a ValidationError if nothing remains.
func RequireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return title, nil
}

// Message renders err for a user-facing notification. The server's message
// is used when present, otherwise fallback.
func Message(err error, fallback string) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Error()
	}
	var s *ServerError
	if errors.As(err, &s) && s.Message != "" {
		return s.Message
	}
	return fallback
}
