package tui

import (
	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/service"
)

// Palette
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#9D8CFF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#F6C453"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2F855A", Dark: "#68D391"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#2B6CB0", Dark: "#63B3ED"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2).
			MarginTop(1)
)

var statusStyles = map[service.Status]lipgloss.Style{
	service.StatusPending:    lipgloss.NewStyle().Foreground(ColorMuted),
	service.StatusInProgress: lipgloss.NewStyle().Foreground(ColorInfo),
	service.StatusBlocked:    lipgloss.NewStyle().Foreground(ColorWarning),
	service.StatusDone:       lipgloss.NewStyle().Foreground(ColorSuccess),
}

// StatusStyle returns the badge style for a status.
func StatusStyle(st service.Status) lipgloss.Style {
	if s, ok := statusStyles[st]; ok {
		return s
	}
	return LabelStyle
}
