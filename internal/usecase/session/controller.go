package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domain "backoffice/console/internal/domain/session"
)

// Hooks connect the controller to the surrounding application.
type Hooks struct {
	// Changed receives every new presentation state.
	Changed func(domain.View)
	// SessionEnded tells the global auth state that the session is gone.
	SessionEnded func(domain.EndReason)
	// ToLogin navigates to the login entry point.
	ToLogin func()
}

// Options tune a Controller.
type Options struct {
	WarningWindow time.Duration
	ActivityQuiet time.Duration
	Clock         Clock
	Logger        *slog.Logger
	Hooks         Hooks
}

// DefaultWarningWindow is the lead time before expiry at which the warning is shown.
const DefaultWarningWindow = 5 * time.Minute

// Controller composes the credential store, timer coordinator, activity
// monitor and renewal protocol behind the contract the UI consumes.
type Controller struct {
	store    *CredentialStore
	timers   *TimerCoordinator
	activity *ActivityMonitor
	renewal  *RenewalProtocol
	hooks    Hooks
	logger   *slog.Logger
}

// NewController builds a controller persisting into kv and renewing through renewer.
func NewController(kv domain.KeyValueStore, renewer Renewer, opts Options) *Controller {
	if opts.WarningWindow <= 0 {
		opts.WarningWindow = DefaultWarningWindow
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With("component", "session")

	c := &Controller{hooks: opts.Hooks, logger: logger}
	c.store = NewCredentialStore(kv, opts.Clock, logger)
	c.timers = NewTimerCoordinator(c.store, opts.Clock, opts.WarningWindow, func() {
		c.endSession(domain.ReasonExpired)
	}, opts.Hooks.Changed, logger)
	c.activity = NewActivityMonitor(c.timers, opts.ActivityQuiet, logger)
	c.renewal = NewRenewalProtocol(c.store, c.timers, renewer, c.endSession, logger)
	return c
}

// Start derives the phase from the persisted credential and schedules its timers.
func (c *Controller) Start() {
	c.timers.Start()
}

// Close cancels every timer and leaves the persisted credential in place.
func (c *Controller) Close() {
	c.timers.Stop()
}

// Establish persists a freshly issued token and schedules against it.
func (c *Controller) Establish(token string, ttl time.Duration) error {
	if token == "" {
		return errors.New("token is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return c.timers.replace(func() (domain.Credential, error) {
		return c.store.Set(token, ttl)
	})
}

// View returns the presentation state.
func (c *Controller) View() domain.View {
	return c.timers.View()
}

// Token returns the bearer token of the current session.
func (c *Controller) Token() (string, bool) {
	cred, ok := c.timers.Credential()
	if !ok {
		return "", false
	}
	return cred.Token, true
}

// Credential returns the persisted credential. A pair left behind by a
// logout whose clear failed reads as absent.
func (c *Controller) Credential() (domain.Credential, bool) {
	return c.timers.Credential()
}

// Activity reports user interaction.
func (c *Controller) Activity() {
	c.activity.OnActivitySignal()
}

// ContinueSession renews the session from the warning dialog.
func (c *Controller) ContinueSession(ctx context.Context) error {
	return c.renewal.Renew(ctx)
}

// EndSession is an explicit logout.
func (c *Controller) EndSession() {
	c.endSession(domain.ReasonLoggedOut)
}

// ForceLogout is the entry point for an authentication rejection seen by
// the HTTP layer on any request.
func (c *Controller) ForceLogout() {
	c.endSession(domain.ReasonUnauthorized)
}

// endSession is the single logout path. It notifies the application at
// most once per live session.
func (c *Controller) endSession(reason domain.EndReason) {
	final := domain.PhaseExpired
	if reason == domain.ReasonLoggedOut {
		final = domain.PhaseNoSession
	}

	live, err := c.timers.end(final, c.store.Clear)
	if err != nil {
		c.logger.Error("clearing session credential", "error", err)
	}
	if !live {
		c.logger.Debug("logout ignored, no live session", "reason", reason)
		return
	}

	c.logger.Info("session ended", "reason", reason)
	if c.hooks.SessionEnded != nil {
		c.hooks.SessionEnded(reason)
	}
	if c.hooks.ToLogin != nil {
		c.hooks.ToLogin()
	}
}
