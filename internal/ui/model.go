// Package ui is the interactive console: a login form, the session screen
// and the expiry warning dialog, all driven by the session controller.
package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	domain "backoffice/console/internal/domain/session"
)

// Session is the part of the session controller the console drives.
type Session interface {
	Start()
	View() domain.View
	Activity()
	ContinueSession(ctx context.Context) error
	EndSession()
	Establish(token string, ttl time.Duration) error
}

// LoginFunc exchanges credentials for a token and its lifetime.
type LoginFunc func(ctx context.Context, email, password string) (token string, ttl time.Duration, err error)

// ViewMsg carries a presentation state published by the controller.
type ViewMsg struct{ View domain.View }

// EndedMsg reports that the session ended and why.
type EndedMsg struct{ Reason domain.EndReason }

// ToLoginMsg asks the console to show the login form.
type ToLoginMsg struct{}

type loginDoneMsg struct {
	view domain.View
	err  error
}

type renewDoneMsg struct {
	view domain.View
	err  error
}

type screen int

const (
	screenLogin screen = iota
	screenSession
)

const (
	fieldEmail = iota
	fieldPassword
)

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	session Session
	login   LoginFunc
	keys    KeyMap

	screen   screen
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool

	view   domain.View
	dialog WarningDialog
	notice string
	err    string

	width  int
	height int
}

// New builds the console model. Controller calls that publish state run
// inside commands, never synchronously from Update.
func New(ctx context.Context, session Session, login LoginFunc) Model {
	keys := DefaultKeyMap()

	email := textinput.New()
	email.Placeholder = "email"
	email.Prompt = "Email    › "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password › "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return Model{
		ctx:      ctx,
		session:  session,
		login:    login,
		keys:     keys,
		email:    email,
		password: password,
		dialog:   NewWarningDialog(keys),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), textinput.Blink)
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		m.session.Start()
		return ViewMsg{View: m.session.View()}
	}
}

func (m Model) continueCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.session.ContinueSession(m.ctx)
		return renewDoneMsg{view: m.session.View(), err: err}
	}
}

func (m Model) endCmd() tea.Cmd {
	return func() tea.Msg {
		m.session.EndSession()
		return ViewMsg{View: m.session.View()}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		token, ttl, err := m.login(m.ctx, email, password)
		if err == nil {
			err = m.session.Establish(token, ttl)
		}
		return loginDoneMsg{view: m.session.View(), err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.dialog.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionMotion {
			m.session.Activity()
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.session.Activity()
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		return m.updateSession(msg)

	case ViewMsg:
		m.applyView(msg.View)
		return m, nil

	case EndedMsg:
		m.notice = endNotice(msg.Reason)
		return m, nil

	case ToLoginMsg:
		m.toLogin()
		return m, textinput.Blink

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = "Sign in failed: " + msg.err.Error()
			return m, nil
		}
		m.password.SetValue("")
		m.applyView(msg.view)
		return m, nil

	case renewDoneMsg:
		switch {
		case msg.err == nil:
			m.err = ""
		case !errors.Is(msg.err, domain.ErrRenewalSuperseded):
			m.err = "Session renewal failed: " + msg.err.Error()
		}
		m.applyView(msg.view)
		return m, nil
	}

	if m.screen == screenLogin {
		return m.updateInputs(msg)
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		m.setFocus(1 - m.focus)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.focus == fieldEmail {
			m.setFocus(fieldPassword)
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		email := strings.TrimSpace(m.email.Value())
		if email == "" || m.password.Value() == "" {
			m.err = "Email and password are required."
			return m, nil
		}
		m.busy = true
		m.err = ""
		m.notice = ""
		return m, m.loginCmd(email, m.password.Value())
	}
	return m.updateInputs(msg)
}

func (m Model) updateSession(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog.Visible() {
		switch {
		case key.Matches(msg, m.keys.Continue):
			if m.view.Renewing {
				return m, nil
			}
			// hide optimistically; the controller confirms with a new View
			m.view.Phase = domain.PhaseActive
			m.view.Renewing = true
			m.dialog.SetView(m.view)
			return m, m.continueCmd()
		case key.Matches(msg, m.keys.End):
			return m, m.endCmd()
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Logout) {
		return m, m.endCmd()
	}
	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds [2]tea.Cmd
	m.email, cmds[0] = m.email.Update(msg)
	m.password, cmds[1] = m.password.Update(msg)
	return m, tea.Batch(cmds[:]...)
}

func (m *Model) setFocus(field int) {
	m.focus = field
	if field == fieldEmail {
		m.email.Focus()
		m.password.Blur()
		return
	}
	m.email.Blur()
	m.password.Focus()
}

func (m *Model) applyView(v domain.View) {
	m.view = v
	m.dialog.SetView(v)
	switch {
	case v.Phase == domain.PhaseActive || v.Phase == domain.PhaseWarning:
		m.screen = screenSession
		m.notice = ""
	case m.screen == screenSession:
		m.toLogin()
	}
}

func (m *Model) toLogin() {
	m.screen = screenLogin
	m.busy = false
	m.password.SetValue("")
	m.setFocus(fieldEmail)
}

func endNotice(reason domain.EndReason) string {
	switch reason {
	case domain.ReasonExpired:
		return "Your session expired. Please sign in again."
	case domain.ReasonRenewalFailed:
		return "Your session could not be renewed. Please sign in again."
	case domain.ReasonUnauthorized:
		return "Your session is no longer valid. Please sign in again."
	default:
		return "You have been signed out."
	}
}

func (m Model) View() string {
	if m.screen == screenSession && m.dialog.Visible() {
		return m.dialog.View()
	}

	var body string
	if m.screen == screenLogin {
		body = m.loginView()
	} else {
		body = m.sessionView()
	}
	if m.width == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m Model) loginView() string {
	parts := []string{TitleStyle.Render("Backoffice sign in"), ""}
	if m.notice != "" {
		parts = append(parts, NoticeStyle.Render(m.notice), "")
	}
	parts = append(parts, m.email.View(), m.password.View(), "")
	if m.err != "" {
		parts = append(parts, ErrorStyle.Render(m.err), "")
	}
	if m.busy {
		parts = append(parts, LabelStyle.Render("Signing in…"))
	} else {
		parts = append(parts, HelpStyle.Render(helpLine(m.keys.Submit, m.keys.Next, m.keys.Quit)))
	}
	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) sessionView() string {
	status := ActiveStyle.Render("active")
	if m.view.Renewing {
		status = NoticeStyle.Render("renewing…")
	}

	expires := "unknown"
	if !m.view.ExpiresAt.IsZero() {
		expires = m.view.ExpiresAt.Local().Format("15:04:05")
	}

	parts := []string{
		TitleStyle.Render("Backoffice session"),
		"",
		LabelStyle.Render("Status   ") + status,
		LabelStyle.Render("Expires  ") + ValueStyle.Render(expires),
		"",
	}
	if m.err != "" {
		parts = append(parts, ErrorStyle.Render(m.err), "")
	}
	parts = append(parts, HelpStyle.Render(helpLine(m.keys.Logout, m.keys.Quit)))
	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
