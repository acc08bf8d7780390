// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdash/internal/service"
)

const (
	// SummarySeparator is the separator line above the status summary.
	SummarySeparator = "------------"
)

var statusLabels = map[service.Status]string{
	service.StatusPending:    "Pending",
	service.StatusInProgress: "In progress",
	service.StatusBlocked:    "Blocked",
	service.StatusDone:       "Done",
}

// StatusLabel returns the display label for a status.
// Unknown statuses are shown verbatim.
func StatusLabel(st service.Status) string {
	if label, ok := statusLabels[st]; ok {
		return label
	}
	return string(st)
}

// FormatTask formats a task line.
// Format: "{N:>4}  {STATUS:<11}  {TITLE}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %-11s  %s\n", num, StatusLabel(task.Status), NormalizeTitle(task.Title))
}

// FormatCounters formats the per-status summary in display order.
func FormatCounters(w io.Writer, counters service.Counters) {
	fmt.Fprintln(w, SummarySeparator)
	for _, st := range service.AllStatuses {
		fmt.Fprintf(w, "%-11s  %d\n", StatusLabel(st), counters[st])
	}
}

// FormatProfile formats the user profile.
func FormatProfile(w io.Writer, p service.Profile) {
	fmt.Fprintf(w, "name:  %s\n", p.Name)
	fmt.Fprintf(w, "email: %s\n", p.Email)
}

// NormalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
