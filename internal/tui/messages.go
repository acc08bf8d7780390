package tui

import "taskdash/internal/service"

// Results of network calls issued as tea.Cmd.
type (
	loginResultMsg struct {
		err error
	}

	refreshResultMsg struct {
		profile *service.Profile
		err     error
	}

	saveResultMsg struct {
		err error
	}

	deleteResultMsg struct {
		deleted bool
		err     error
	}
)
