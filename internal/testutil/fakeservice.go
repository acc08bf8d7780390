// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"taskdash/internal/service"
)

// ErrNotFound is returned when a task is not found.
var ErrNotFound = &service.ServerError{Status: http.StatusNotFound, Message: "Task not found", Authenticated: true}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.RWMutex
	tasks    []service.Task
	nextID   int
	profile  service.Profile
	token    string
	accounts map[string]string // email -> password

	// Calls counts every remote operation issued (Logout excluded).
	Calls int

	// Error injection for testing
	LoginErr         error
	RegisterErr      error
	ProfileErr       error
	UpdateProfileErr error
	ListTasksErr     error
	CreateTaskErr    error
	UpdateTaskErr    error
	DeleteTaskErr    error

	// Gate, when set, blocks each remote call until it receives a value.
	Gate chan struct{}
}

// NewFakeService creates an empty FakeService with a logged-in user.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:   1,
		token:    "fake-token",
		profile:  service.Profile{Name: "Ada", Email: "ada@example.com"},
		accounts: map[string]string{"ada@example.com": "secret"},
	}
}

// AddTask seeds a task directly, bypassing validation.
func (f *FakeService) AddTask(id, title string, status service.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Status: status})
}

// Snapshot returns the server-side collection.
func (f *FakeService) Snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// LoggedIn reports whether a session token is held.
func (f *FakeService) LoggedIn() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.token != ""
}

func (f *FakeService) enter(ctx context.Context) error {
	f.mu.Lock()
	f.Calls++
	gate := f.Gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	if f.LoginErr != nil {
		return f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.accounts[email]; !ok || pw != password {
		return &service.ServerError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	f.token = "fake-token"
	return nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, email, password, name string) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[email]; exists {
		return &service.ServerError{Status: http.StatusConflict, Message: "User already exists"}
	}
	f.accounts[email] = password
	return nil
}

// Logout implements service.Service.
func (f *FakeService) Logout() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	return nil
}

// Profile implements service.Service.
func (f *FakeService) Profile(ctx context.Context) (service.Profile, error) {
	if err := f.enter(ctx); err != nil {
		return service.Profile{}, err
	}
	if f.ProfileErr != nil {
		return service.Profile{}, f.ProfileErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.profile, nil
}

// UpdateProfile implements service.Service.
func (f *FakeService) UpdateProfile(ctx context.Context, name string) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	if f.UpdateProfileErr != nil {
		return f.UpdateProfileErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile.Name = name
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Snapshot(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, title string, status service.Status) (service.Task, error) {
	title, err := service.RequireTitle(title)
	if err != nil {
		return service.Task{}, err
	}
	if err := f.enter(ctx); err != nil {
		return service.Task{}, err
	}
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	if status == "" {
		status = service.DefaultStatus
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Skip IDs already taken by seeded tasks
	var id string
	for {
		id = fmt.Sprintf("t%d", f.nextID)
		f.nextID++
		if f.indexLocked(id) < 0 {
			break
		}
	}
	task := service.Task{ID: id, Title: title, Status: status}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id, title string, status service.Status) (service.Task, error) {
	title, err := service.RequireTitle(title)
	if err != nil {
		return service.Task{}, err
	}
	if err := f.enter(ctx); err != nil {
		return service.Task{}, err
	}
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(id)
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	f.tasks[i].Title = title
	f.tasks[i].Status = status
	return f.tasks[i], nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

func (f *FakeService) indexLocked(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
