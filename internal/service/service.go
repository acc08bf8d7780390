// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All remote calls go through this interface.
// The controller and commands never import the HTTP client directly.
type Service interface {
	// Login authenticates and stores the session token.
	// Login failures never trigger the expired-session side effect.
	Login(ctx context.Context, email, password string) error

	// Register creates an account. It does not log in.
	Register(ctx context.Context, email, password, name string) error

	// Logout discards the session token. No remote call is made.
	Logout() error

	// Profile returns the authenticated user's profile.
	Profile(ctx context.Context) (Profile, error)

	// UpdateProfile changes the display name. Email is immutable.
	UpdateProfile(ctx context.Context, name string) error

	// ListTasks returns all tasks in server order (no client-side sorting).
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task. The title is trimmed and must be non-empty;
	// an empty title is rejected before any call is issued.
	CreateTask(ctx context.Context, title string, status Status) (Task, error)

	// UpdateTask replaces a task's title and status.
	// Returns an error matching ErrNotFound if the ID is unknown to the server.
	UpdateTask(ctx context.Context, id, title string, status Status) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
