package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/output"
	"taskdash/internal/service"
)

const emptyList = "No tasks yet. Press n to add one."

// View implements tea.Model.
func (m *Model) View() string {
	if m.screen == ScreenLogin {
		return m.loginView()
	}
	return m.dashboardView()
}

func (m *Model) loginView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("taskdash"))
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n")
	m.writeStatus(&b)
	b.WriteString(HelpStyle.Render(m.help.ShortHelpView(m.keys.loginHelp())))
	return b.String()
}

func (m *Model) dashboardView() string {
	var b strings.Builder

	header := TitleStyle.Render("Tasks")
	if m.profile != nil {
		header += "  " + LabelStyle.Render(m.profile.Name)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.listView(), "  ", m.countersView())
	b.WriteString(body)
	b.WriteString("\n")

	if m.modal != nil {
		b.WriteString(m.modalView())
		b.WriteString("\n")
	}
	if m.confirming != nil {
		prompt := fmt.Sprintf("Delete %q? (y/n)", output.NormalizeTitle(m.confirming.Title))
		b.WriteString(NoticeStyle.Render(prompt))
		b.WriteString("\n")
	}

	m.writeStatus(&b)

	bindings := m.keys.dashboardHelp()
	switch {
	case m.modal != nil:
		bindings = m.keys.modalHelp()
	case m.confirming != nil:
		bindings = m.keys.confirmHelp()
	}
	b.WriteString(HelpStyle.Render(m.help.ShortHelpView(bindings)))
	return b.String()
}

func (m *Model) listView() string {
	tasks := m.ctl.Tasks()
	if len(tasks) == 0 {
		return LabelStyle.Render(emptyList)
	}

	lines := make([]string, len(tasks))
	for i, task := range tasks {
		badge := StatusStyle(task.Status).Render(fmt.Sprintf("%-11s", output.StatusLabel(task.Status)))
		title := output.NormalizeTitle(task.Title)
		if i == m.cursor {
			lines[i] = SelectedStyle.Render("> ") + badge + "  " + SelectedStyle.Render(title)
		} else {
			lines[i] = "  " + badge + "  " + title
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) countersView() string {
	counters := m.ctl.StatusCounters()
	lines := make([]string, 0, len(service.AllStatuses))
	for _, st := range service.AllStatuses {
		label := StatusStyle(st).Render(fmt.Sprintf("%-11s", output.StatusLabel(st)))
		lines = append(lines, fmt.Sprintf("%s %3d", label, counters[st]))
	}
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) modalView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.modal.Heading()))
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render("Title"))
	b.WriteString("\n")
	b.WriteString(m.title.View())
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render("Status"))
	b.WriteString("\n")

	opts := make([]string, 0, len(m.modal.StatusOptions()))
	for _, st := range m.modal.StatusOptions() {
		label := output.StatusLabel(st)
		if st == m.modal.Status() {
			opts = append(opts, SelectedStyle.Render("["+label+"]"))
		} else {
			opts = append(opts, LabelStyle.Render(" "+label+" "))
		}
	}
	b.WriteString(strings.Join(opts, " "))
	return ModalStyle.Render(b.String())
}

func (m *Model) writeStatus(b *strings.Builder) {
	switch {
	case m.inflight:
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Working..."))
		b.WriteString("\n")
	case m.notice != "":
		b.WriteString("\n")
		b.WriteString(NoticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
}
