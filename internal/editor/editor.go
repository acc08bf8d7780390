// Package editor holds the form state of the task editor modal.
//
// The modal never closes itself. After Submit the owner checks whether the
// controller still has an open session; a failed save leaves it open with the
// user's input intact.
package editor

import (
	"context"
	"fmt"

	"taskdash/internal/controller"
	"taskdash/internal/service"
)

// Saver receives a validated payload. *controller.Controller implements it.
type Saver interface {
	Save(ctx context.Context, p service.Payload) error
}

// Modal is the local form state for one editor session.
type Modal struct {
	mode    controller.Mode
	taskID  string
	title   string
	status  service.Status
	options []service.Status
}

// Open initializes a modal from an editor session.
func Open(s controller.Session) *Modal {
	status := s.Form.Status
	if status == "" {
		status = service.DefaultStatus
	}
	return &Modal{
		mode:    s.Mode,
		taskID:  s.TaskID,
		title:   s.Form.Title,
		status:  status,
		options: s.StatusOptions(),
	}
}

func (m *Modal) Mode() controller.Mode  { return m.mode }
func (m *Modal) TaskID() string         { return m.taskID }
func (m *Modal) Title() string          { return m.title }
func (m *Modal) Status() service.Status { return m.status }

// StatusOptions returns the selectable statuses for this modal's mode.
func (m *Modal) StatusOptions() []service.Status {
	return append([]service.Status(nil), m.options...)
}

// Heading returns the modal title line.
func (m *Modal) Heading() string {
	if m.mode == controller.ModeEdit {
		return "Edit task"
	}
	return "New task"
}

// SetTitle replaces the title text as typed (untrimmed).
func (m *Modal) SetTitle(title string) {
	m.title = title
}

// SetStatus selects a status. Statuses outside the mode's options are rejected.
func (m *Modal) SetStatus(st service.Status) error {
	if !st.Allowed(m.options) {
		return &service.ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("must be one of %v", m.options),
		}
	}
	m.status = st
	return nil
}

// CycleStatus advances to the next selectable status, wrapping around.
func (m *Modal) CycleStatus() {
	for i, st := range m.options {
		if st == m.status {
			m.status = m.options[(i+1)%len(m.options)]
			return
		}
	}
	m.status = m.options[0]
}

// Payload validates the form and returns the trimmed payload.
func (m *Modal) Payload() (service.Payload, error) {
	title, err := service.RequireTitle(m.title)
	if err != nil {
		return service.Payload{}, err
	}
	return service.Payload{Title: title, Status: m.status}, nil
}

// Submit validates and hands the payload to saver. An invalid form returns a
// ValidationError without calling saver.
func (m *Modal) Submit(ctx context.Context, saver Saver) error {
	p, err := m.Payload()
	if err != nil {
		return err
	}
	return saver.Save(ctx, p)
}
