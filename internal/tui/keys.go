package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the dashboard reacts to.
type KeyMap struct {
	Quit       key.Binding
	ForceQuit  key.Binding
	Up         key.Binding
	Down       key.Binding
	New        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Refresh    key.Binding
	Logout     key.Binding
	Confirm    key.Binding
	Decline    key.Binding
	Submit     key.Binding
	Cancel     key.Binding
	NextStatus key.Binding
	NextField  key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "down")),
		New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:       key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		Confirm:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "delete")),
		Decline:    key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "keep")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextStatus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "status")),
		NextField:  key.NewBinding(key.WithKeys("tab", "shift+tab", "up", "down"), key.WithHelp("tab", "next field")),
	}
}

func (k KeyMap) loginHelp() []key.Binding {
	submit := k.Submit
	submit.SetHelp("enter", "sign in")
	quit := k.Cancel
	quit.SetHelp("esc", "quit")
	return []key.Binding{submit, k.NextField, quit}
}

func (k KeyMap) dashboardHelp() []key.Binding {
	return []key.Binding{k.New, k.Edit, k.Delete, k.Refresh, k.Logout, k.Quit}
}

func (k KeyMap) modalHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextStatus, k.Cancel}
}

func (k KeyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Decline}
}
