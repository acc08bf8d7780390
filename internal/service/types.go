// Package service defines the backend-agnostic data model and interface for task operations.
package service

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// DefaultStatus is assigned when a task or payload carries no status.
const DefaultStatus = StatusPending

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusPending, StatusInProgress, StatusBlocked, StatusDone}

// CreationStatuses are the statuses a new task may be created with.
// Blocked and done are only reachable by editing an existing task.
var CreationStatuses = []Status{StatusPending, StatusInProgress}

// EditStatuses are the statuses an existing task may be moved to.
var EditStatuses = AllStatuses

// ParseStatus converts a string to a Status.
// An empty string yields DefaultStatus.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return DefaultStatus, nil
	}
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status: %s", s)
}

// Allowed reports whether s is one of options.
func (s Status) Allowed(options []Status) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

// Task represents a single task item.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status Status `json:"status"`
}

// UnmarshalJSON decodes a task, defaulting a missing status to pending.
func (t *Task) UnmarshalJSON(data []byte) error {
	type rawTask Task
	var raw rawTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Status == "" {
		raw.Status = DefaultStatus
	}
	*t = Task(raw)
	return nil
}

// Payload is the user-editable part of a task.
type Payload struct {
	Title  string `json:"title"`
	Status Status `json:"status"`
}

// Profile is the authenticated user's profile.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Counters maps every status to the number of tasks carrying it.
type Counters map[Status]int

// CountStatuses derives counters from tasks. The keys are exactly the four
// statuses, present even when zero. A missing or unrecognized status counts
// as DefaultStatus.
func CountStatuses(tasks []Task) Counters {
	c := Counters{}
	for _, st := range AllStatuses {
		c[st] = 0
	}
	for _, t := range tasks {
		st := t.Status
		if _, ok := c[st]; !ok {
			st = DefaultStatus
		}
		c[st]++
	}
	return c
}
