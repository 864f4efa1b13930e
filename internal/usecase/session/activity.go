package session

import (
	"log/slog"
	"time"

	domain "backoffice/console/internal/domain/session"
)

// DefaultActivityQuiet is how long input must pause before a burst of
// activity signals is acted upon.
const DefaultActivityQuiet = time.Second

// ActivityMonitor turns user input into a resync of the timer set. It never
// extends the credential's expiry.
type ActivityMonitor struct {
	timers *TimerCoordinator
	quiet  time.Duration
	logger *slog.Logger
}

// NewActivityMonitor debounces signals by quiet.
func NewActivityMonitor(timers *TimerCoordinator, quiet time.Duration, logger *slog.Logger) *ActivityMonitor {
	if quiet <= 0 {
		quiet = DefaultActivityQuiet
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityMonitor{timers: timers, quiet: quiet, logger: logger}
}

// OnActivitySignal records a pointer, key, scroll, touch or click event.
func (m *ActivityMonitor) OnActivitySignal() {
	m.timers.Debounce(m.quiet, m.settle)
}

// settle leaves a visible warning alone: only an explicit renewal or the
// logout timer may move the session out of the warning phase.
func (m *ActivityMonitor) settle() {
	if m.timers.Phase() == domain.PhaseWarning {
		m.logger.Debug("activity ignored while session warning is shown")
		return
	}
	m.timers.Start()
}
