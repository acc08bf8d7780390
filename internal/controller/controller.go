// Package controller owns the in-memory task mirror and the editor session.
//
// The mirror is only replaced from a successful list round trip; it is never
// patched ahead of server confirmation. Every mutation is followed by a full
// refresh.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"taskdash/internal/service"
)

var (
	// ErrBusy is returned when a gesture arrives while another call is in flight.
	ErrBusy = errors.New("another operation is in progress")

	// ErrSessionOpen is returned when an editor session is already open.
	ErrSessionOpen = errors.New("editor already open")

	// ErrNoSession is returned by Save when no editor session is open.
	ErrNoSession = errors.New("no editor open")

	// ErrUnknownTask is returned for IDs not present in the mirror.
	ErrUnknownTask = errors.New("unknown task")
)

// Fallback notification texts when the server supplies no message.
const (
	msgRefreshFailed = "Could not load tasks"
	msgSaveFailed    = "Could not save task"
	msgDeleteFailed  = "Could not delete task"
)

// Mode is the kind of editor session.
type Mode int

const (
	ModeCreate Mode = iota + 1
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	}
	return "closed"
}

// Session is an open editor session. TaskID is empty in create mode.
type Session struct {
	Mode   Mode
	TaskID string
	Form   service.Payload
}

// StatusOptions returns the statuses selectable in this session's mode.
func (s Session) StatusOptions() []service.Status {
	if s.Mode == ModeCreate {
		return service.CreationStatuses
	}
	return service.EditStatuses
}

// Notifier surfaces failures to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a func to Notifier.
type NotifierFunc func(message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(message string) { f(message) }

// ConfirmFunc asks the user to confirm deleting task.
type ConfirmFunc func(task service.Task) bool

// Controller is the task list state machine.
type Controller struct {
	svc    service.Service
	notify Notifier
	logger *slog.Logger

	mu      sync.Mutex
	tasks   []service.Task
	session *Session
	busy    bool
}

// New creates a controller. notifier and logger may be nil.
func New(svc service.Service, notifier Notifier, logger *slog.Logger) *Controller {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		svc:    svc,
		notify: notifier,
		logger: logger,
		tasks:  []service.Task{},
	}
}

// Tasks returns a copy of the mirror in server order.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]service.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Task looks up a task in the mirror.
func (c *Controller) Task(id string) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(id)
}

// StatusCounters derives per-status counts from the current mirror.
func (c *Controller) StatusCounters() service.Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return service.CountStatuses(c.tasks)
}

// Session returns the open editor session, if any.
func (c *Controller) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Busy reports whether a network operation is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Refresh replaces the mirror with the server's collection.
// On failure the mirror is left unchanged.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.reload(ctx)
}

// RequestCreate opens a create session with a blank form.
func (c *Controller) RequestCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return ErrSessionOpen
	}
	c.session = &Session{
		Mode: ModeCreate,
		Form: service.Payload{Title: "", Status: service.DefaultStatus},
	}
	return nil
}

// RequestEdit opens an edit session bound to a task in the mirror.
func (c *Controller) RequestEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return ErrSessionOpen
	}
	task, ok := c.findLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	c.session = &Session{
		Mode:   ModeEdit,
		TaskID: task.ID,
		Form:   service.Payload{Title: task.Title, Status: task.Status},
	}
	return nil
}

// CancelEdit closes the editor session without any network effect.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}

// Save submits the open session's payload. On success the session closes and
// the mirror is refreshed; on failure the session stays open holding p and
// the mirror is untouched.
func (c *Controller) Save(ctx context.Context, p service.Payload) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return ErrNoSession
	}

	payload, err := validate(*sess, p)
	if err != nil {
		c.keepForm(sess, p)
		c.fail(err, msgSaveFailed)
		return err
	}

	switch sess.Mode {
	case ModeCreate:
		_, err = c.svc.CreateTask(ctx, payload.Title, payload.Status)
	default:
		_, err = c.svc.UpdateTask(ctx, sess.TaskID, payload.Title, payload.Status)
	}
	if err != nil {
		c.keepForm(sess, p)
		c.logger.Debug("save failed", "mode", sess.Mode.String(), "error", err)
		c.fail(err, msgSaveFailed)
		return err
	}

	c.mu.Lock()
	if c.session == sess {
		c.session = nil
	}
	c.mu.Unlock()

	if err := c.reload(ctx); err != nil {
		return fmt.Errorf("task saved but refresh failed: %w", err)
	}
	return nil
}

// RequestDelete deletes a task after confirm approves it, then refreshes.
// It reports whether the delete was issued and succeeded.
func (c *Controller) RequestDelete(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	if err := c.begin(); err != nil {
		return false, err
	}
	defer c.end()

	task, ok := c.Task(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	if confirm == nil || !confirm(task) {
		return false, nil
	}

	if err := c.svc.DeleteTask(ctx, task.ID); err != nil {
		c.logger.Debug("delete failed", "id", task.ID, "error", err)
		c.fail(err, msgDeleteFailed)
		return false, err
	}

	if err := c.reload(ctx); err != nil {
		return true, fmt.Errorf("task deleted but refresh failed: %w", err)
	}
	return true, nil
}

// Reset drops the mirror and any editor session, e.g. after logout.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = []service.Task{}
	c.session = nil
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.busy = true
	return nil
}

// fail notifies about err. Expired sessions are reported by the entry
// navigator, so they produce no notice here.
func (c *Controller) fail(err error, fallback string) {
	if errors.Is(err, service.ErrAuthExpired) {
		return
	}
	c.notify.Notify(service.Message(err, fallback))
}

func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
}

// reload fetches the list and swaps the mirror. Caller holds the busy flag.
func (c *Controller) reload(ctx context.Context) error {
	tasks, err := c.svc.ListTasks(ctx)
	if err != nil {
		c.logger.Debug("refresh failed", "error", err)
		c.fail(err, msgRefreshFailed)
		return err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}

	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()

	c.logger.Debug("tasks refreshed", "count", len(tasks))
	return nil
}

func (c *Controller) keepForm(sess *Session, p service.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == sess {
		c.session.Form = p
	}
}

func (c *Controller) findLocked(id string) (service.Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// validate trims the title and applies the mode's status policy.
func validate(sess Session, p service.Payload) (service.Payload, error) {
	title, err := service.RequireTitle(p.Title)
	if err != nil {
		return service.Payload{}, err
	}
	status := p.Status
	if status == "" {
		status = service.DefaultStatus
	}
	if !status.Allowed(sess.StatusOptions()) {
		return service.Payload{}, &service.ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("%q is not allowed when you %s a task", status, sess.Mode),
		}
	}
	return service.Payload{Title: title, Status: status}, nil
}
