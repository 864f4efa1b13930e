package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "backoffice/console/internal/domain/session"
)

type fakeSession struct {
	mu          sync.Mutex
	view        domain.View
	started     int
	activity    int
	continued   int
	ended       int
	established []string
	continueErr error
}

func (f *fakeSession) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *fakeSession) View() domain.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *fakeSession) Activity() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity++
}

func (f *fakeSession) ContinueSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.continued++
	if f.continueErr == nil {
		f.view = domain.View{Phase: domain.PhaseActive, MaxCountdownSeconds: 300}
	}
	return f.continueErr
}

func (f *fakeSession) EndSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended++
	f.view = domain.View{Phase: domain.PhaseNoSession}
}

func (f *fakeSession) Establish(token string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.established = append(f.established, token)
	f.view = domain.View{Phase: domain.PhaseActive, MaxCountdownSeconds: 300}
	return nil
}

func warningView(countdown int) domain.View {
	return domain.View{Phase: domain.PhaseWarning, CountdownSeconds: countdown, MaxCountdownSeconds: 300}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestWarningDialogRendersCountdown(t *testing.T) {
	d := NewWarningDialog(DefaultKeyMap())
	assert.False(t, d.Visible())
	assert.Empty(t, d.View())

	d.SetView(warningView(240))
	require.True(t, d.Visible())
	assert.InDelta(t, 0.8, d.Fraction(), 1e-9)

	out := d.View()
	assert.Contains(t, out, "Session Expiring")
	assert.Contains(t, out, "4:00")
	assert.Contains(t, out, "c/enter continue")
}

func TestWarningDialogHiddenWhileRenewing(t *testing.T) {
	d := NewWarningDialog(DefaultKeyMap())
	d.SetView(domain.View{Phase: domain.PhaseActive, Renewing: true, MaxCountdownSeconds: 300})
	assert.False(t, d.Visible())
	assert.Empty(t, d.View())
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "0:00", FormatCountdown(0))
	assert.Equal(t, "0:00", FormatCountdown(-3))
	assert.Equal(t, "0:59", FormatCountdown(59))
	assert.Equal(t, "5:00", FormatCountdown(300))
	assert.Equal(t, "2:31", FormatCountdown(151))
}

func TestInitStartsSession(t *testing.T) {
	fake := &fakeSession{view: domain.View{Phase: domain.PhaseActive}}
	m := New(context.Background(), fake, nil)

	msg := m.startCmd()()
	assert.Equal(t, 1, fake.started)
	m, _ = update(t, m, msg)
	assert.Equal(t, screenSession, m.screen)
}

func TestInputReportsActivity(t *testing.T) {
	fake := &fakeSession{}
	m := New(context.Background(), fake, nil)

	m, _ = update(t, m, runes("x"))
	m, _ = update(t, m, tea.MouseMsg{Action: tea.MouseActionMotion})
	m, _ = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, 3, fake.activity)
}

func TestContinueFromWarning(t *testing.T) {
	fake := &fakeSession{view: warningView(120)}
	m := New(context.Background(), fake, nil)
	m, _ = update(t, m, ViewMsg{View: warningView(120)})
	require.True(t, m.dialog.Visible())
	assert.Contains(t, m.View(), "2:00")

	m, cmd := update(t, m, runes("c"))
	require.NotNil(t, cmd)
	assert.False(t, m.dialog.Visible())
	assert.True(t, m.view.Renewing)

	m, again := update(t, m, runes("c"))
	assert.Nil(t, again)

	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, fake.continued)
	assert.Equal(t, domain.PhaseActive, m.view.Phase)
	assert.False(t, m.view.Renewing)
	assert.Empty(t, m.err)
}

func TestContinueFailureShowsError(t *testing.T) {
	fake := &fakeSession{view: warningView(30), continueErr: errors.New("renew session: boom")}
	m := New(context.Background(), fake, nil)
	m, _ = update(t, m, ViewMsg{View: warningView(30)})

	m, cmd := update(t, m, runes("c"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.err, "boom")
}

func TestEndFromWarning(t *testing.T) {
	fake := &fakeSession{view: warningView(30)}
	m := New(context.Background(), fake, nil)
	m, _ = update(t, m, ViewMsg{View: warningView(30)})

	m, cmd := update(t, m, runes("e"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, fake.ended)
	assert.Zero(t, fake.continued)
	assert.Equal(t, screenLogin, m.screen)
}

func TestLogoutFromSessionScreen(t *testing.T) {
	fake := &fakeSession{}
	m := New(context.Background(), fake, nil)
	m, _ = update(t, m, ViewMsg{View: domain.View{Phase: domain.PhaseActive}})

	_, cmd := update(t, m, runes("c"))
	assert.Nil(t, cmd)

	_, cmd = update(t, m, runes("l"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, fake.ended)
}

func TestLoginEstablishesSession(t *testing.T) {
	fake := &fakeSession{}
	var gotEmail, gotPassword string
	login := func(_ context.Context, email, password string) (string, time.Duration, error) {
		gotEmail, gotPassword = email, password
		return "tok-1", time.Hour, nil
	}
	m := New(context.Background(), fake, login)
	m.email.SetValue(" ops@example.com ")
	m.password.SetValue("hunter22")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, fieldPassword, m.focus)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	m, _ = update(t, m, cmd())
	assert.Equal(t, "ops@example.com", gotEmail)
	assert.Equal(t, "hunter22", gotPassword)
	assert.Equal(t, []string{"tok-1"}, fake.established)
	assert.Equal(t, screenSession, m.screen)
	assert.Empty(t, m.password.Value())
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	fake := &fakeSession{}
	login := func(context.Context, string, string) (string, time.Duration, error) {
		return "", 0, errors.New("invalid email or password")
	}
	m := New(context.Background(), fake, login)
	m.email.SetValue("ops@example.com")
	m.password.SetValue("wrong")
	m.setFocus(fieldPassword)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Empty(t, fake.established)
	assert.Equal(t, screenLogin, m.screen)
	assert.Contains(t, m.View(), "invalid email or password")
}

func TestSessionEndReturnsToLogin(t *testing.T) {
	fake := &fakeSession{}
	m := New(context.Background(), fake, nil)
	m, _ = update(t, m, ViewMsg{View: warningView(1)})
	m, _ = update(t, m, ViewMsg{View: domain.View{Phase: domain.PhaseExpired}})
	m, _ = update(t, m, EndedMsg{Reason: domain.ReasonExpired})
	m, _ = update(t, m, ToLoginMsg{})

	assert.Equal(t, screenLogin, m.screen)
	assert.Contains(t, m.View(), "Your session expired")
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), &fakeSession{}, nil)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
