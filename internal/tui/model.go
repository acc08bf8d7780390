// Package tui is the interactive dashboard: a login screen, the task list
// with status counters and the editor modal.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdash/internal/controller"
	"taskdash/internal/editor"
	"taskdash/internal/pipeline"
	"taskdash/internal/service"
)

// Screen is the active top-level view.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
)

const (
	msgLoginFailed     = "Login failed"
	msgMissingLogin    = "Email and password are required"
	msgSessionExpired  = "Session expired, please sign in again"
	msgLoggedOut       = "Signed out"
	titleCharLimit     = 200
	credentialMaxWidth = 40
)

// Options configures New.
type Options struct {
	// Context is passed to every service call. nil means context.Background().
	Context context.Context

	// Entry is retargeted so an expired session returns to the login screen.
	Entry *pipeline.EntryHook

	// LoggedIn starts on the dashboard instead of the login screen.
	LoggedIn bool

	Logger *slog.Logger
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx    context.Context
	svc    service.Service
	ctl    *controller.Controller
	logger *slog.Logger
	keys   KeyMap
	help   help.Model

	screen   Screen
	width    int
	notice   string
	notices  *noticeBox
	expired  *atomic.Bool
	inflight bool

	// login
	email    textinput.Model
	password textinput.Model

	// dashboard
	profile    *service.Profile
	cursor     int
	confirming *service.Task
	modal      *editor.Modal
	title      textinput.Model
}

// noticeBox receives controller notifications from command goroutines.
type noticeBox struct {
	mu   sync.Mutex
	last string
}

func (b *noticeBox) Notify(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = message
}

func (b *noticeBox) take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := b.last
	b.last = ""
	return msg
}

// New creates the dashboard model.
func New(svc service.Service, opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Model{
		ctx:      ctx,
		svc:      svc,
		logger:   logger,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		notices:  &noticeBox{},
		expired:  &atomic.Bool{},
		email:    newInput("you@example.com", credentialMaxWidth),
		password: newInput("password", credentialMaxWidth),
		title:    newInput("What needs doing?", titleCharLimit),
	}
	m.password.EchoMode = textinput.EchoPassword
	m.ctl = controller.New(svc, m.notices, logger)

	if opts.Entry != nil {
		opts.Entry.Set(func() { m.expired.Store(true) })
	}

	if opts.LoggedIn {
		m.screen = ScreenDashboard
	} else {
		m.screen = ScreenLogin
		m.email.Focus()
	}
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 50
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// Screen returns the active screen.
func (m *Model) Screen() Screen { return m.screen }

// Notice returns the message shown to the user, if any.
func (m *Model) Notice() string { return m.notice }

// Controller exposes the task list state.
func (m *Model) Controller() *controller.Controller { return m.ctl }

// Modal returns the open editor modal, or nil.
func (m *Model) Modal() *editor.Modal { return m.modal }

// Cursor returns the selected row.
func (m *Model) Cursor() int { return m.cursor }

// Confirming returns the task awaiting delete confirmation, or nil.
func (m *Model) Confirming() *service.Task { return m.confirming }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == ScreenDashboard {
		m.inflight = true
		return m.refreshCmd(true)
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.expired.Swap(false) && m.screen == ScreenDashboard {
		m.toLogin(msgSessionExpired)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case refreshResultMsg:
		m.inflight = false
		m.takeNotice()
		if msg.profile != nil {
			m.profile = msg.profile
		}
		m.clampCursor()
		return m, nil

	case saveResultMsg:
		m.inflight = false
		m.takeNotice()
		if _, open := m.ctl.Session(); !open {
			m.closeModal()
		}
		m.clampCursor()
		return m, nil

	case deleteResultMsg:
		m.inflight = false
		m.takeNotice()
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.screen == ScreenLogin {
			return m.handleLoginKey(msg)
		}
		switch {
		case m.modal != nil:
			return m.handleModalKey(msg)
		case m.confirming != nil:
			return m.handleConfirmKey(msg)
		}
		return m.handleDashboardKey(msg)
	}

	return m, nil
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextField):
		m.toggleLoginFocus()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		email := strings.TrimSpace(m.email.Value())
		password := m.password.Value()
		if email == "" || password == "" {
			m.notice = msgMissingLogin
			return m, nil
		}
		m.notice = ""
		m.inflight = true
		return m, m.loginCmd(email, password)
	}

	var cmd tea.Cmd
	if m.email.Focused() {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleLoginFocus() {
	if m.email.Focused() {
		m.email.Blur()
		m.password.Focus()
		return
	}
	m.password.Blur()
	m.email.Focus()
}

func (m *Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.inflight = false
	m.password.SetValue("")
	if msg.err != nil {
		m.notice = service.Message(msg.err, msgLoginFailed)
		return m, nil
	}

	m.screen = ScreenDashboard
	m.notice = ""
	m.email.Blur()
	m.password.Blur()
	m.inflight = true
	return m, m.refreshCmd(true)
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.ctl.Tasks())-1 {
			m.cursor++
		}
		return m, nil
	}

	if m.inflight {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.notice = ""
		m.inflight = true
		return m, m.refreshCmd(false)

	case key.Matches(msg, m.keys.New):
		if err := m.ctl.RequestCreate(); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.openModal()

	case key.Matches(msg, m.keys.Edit):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.ctl.RequestEdit(task.ID); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.openModal()

	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.selected(); ok {
			m.confirming = &task
		}

	case key.Matches(msg, m.keys.Logout):
		if err := m.svc.Logout(); err != nil {
			m.logger.Error("logout failed", "error", err)
		}
		m.toLogin(msgLoggedOut)
	}
	return m, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.confirming.ID
		m.confirming = nil
		m.notice = ""
		m.inflight = true
		return m, m.deleteCmd(id)
	case key.Matches(msg, m.keys.Decline):
		m.confirming = nil
	}
	return m, nil
}

func (m *Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctl.CancelEdit()
		m.closeModal()
		m.notice = ""
		return m, nil
	case key.Matches(msg, m.keys.NextStatus):
		m.modal.CycleStatus()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.modal.SetTitle(m.title.Value())
		if _, err := m.modal.Payload(); err != nil {
			m.notice = service.Message(err, "")
			return m, nil
		}
		m.notice = ""
		m.inflight = true
		return m, m.saveCmd(m.modal)
	}

	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	return m, cmd
}

func (m *Model) openModal() {
	sess, _ := m.ctl.Session()
	m.modal = editor.Open(sess)
	m.title.SetValue(m.modal.Title())
	m.title.CursorEnd()
	m.title.Focus()
	m.notice = ""
}

func (m *Model) closeModal() {
	m.modal = nil
	m.title.Blur()
	m.title.SetValue("")
}

// toLogin drops all dashboard state and shows the login screen.
func (m *Model) toLogin(notice string) {
	m.ctl.Reset()
	m.closeModal()
	m.confirming = nil
	m.profile = nil
	m.cursor = 0
	m.inflight = false
	m.notices.take()
	m.screen = ScreenLogin
	m.notice = notice
	m.password.SetValue("")
	m.password.Blur()
	m.email.Focus()
}

func (m *Model) takeNotice() {
	n := m.notices.take()
	if n != "" && m.screen == ScreenDashboard {
		m.notice = n
	}
}

func (m *Model) selected() (service.Task, bool) {
	tasks := m.ctl.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.ctl.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) loginCmd(email, password string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loginResultMsg{err: m.svc.Login(ctx, email, password)}
	}
}

// refreshCmd reloads the list, fetching the profile first when withProfile is set.
func (m *Model) refreshCmd(withProfile bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		var msg refreshResultMsg
		if withProfile {
			p, err := m.svc.Profile(ctx)
			switch {
			case err == nil:
				msg.profile = &p
			case errors.Is(err, service.ErrAuthExpired):
				// The token is gone; listing would only repeat the 401.
				msg.err = err
				return msg
			default:
				m.logger.Debug("profile unavailable", "error", err)
			}
		}
		msg.err = m.ctl.Refresh(ctx)
		return msg
	}
}

func (m *Model) saveCmd(modal *editor.Modal) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return saveResultMsg{err: modal.Submit(ctx, m.ctl)}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		deleted, err := m.ctl.RequestDelete(ctx, id, func(service.Task) bool { return true })
		return deleteResultMsg{deleted: deleted, err: err}
	}
}
