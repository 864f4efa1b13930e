package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	domain "backoffice/console/internal/domain/session"
)

const tickInterval = time.Second

var errRenewalInFlight = errors.New("session renewal already in flight")

// slot holds at most one scheduled callback. id changes on every arm so a
// callback that fires after its slot was re-armed or cancelled is ignored.
type slot struct {
	timer Timer
	id    uint64
}

// TimerCoordinator is the sole owner of every scheduled callback of a
// session: the warning timer, the logout timer, the countdown ticker and
// the activity debounce. Its mutex also serialises every write of the
// persisted credential, so timer callbacks never observe a half-applied
// transition.
type TimerCoordinator struct {
	store         *CredentialStore
	clock         Clock
	warningWindow time.Duration
	logger        *slog.Logger

	expire  func()
	changed func(domain.View)

	mu        sync.Mutex
	seq       uint64
	epoch     uint64
	phase     domain.Phase
	countdown int
	expiresAt time.Time
	renewing  bool
	// revoked is set when a logout could not clear the stored pair. The
	// leftover credential is ignored until the next replace.
	revoked bool

	warning  slot
	logout   slot
	ticker   slot
	debounce slot
}

// NewTimerCoordinator builds a coordinator. expire is the forced logout
// path, invoked when the credential runs out; changed receives every new
// View and may be nil.
func NewTimerCoordinator(
	store *CredentialStore,
	clock Clock,
	warningWindow time.Duration,
	expire func(),
	changed func(domain.View),
	logger *slog.Logger,
) *TimerCoordinator {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TimerCoordinator{
		store:         store,
		clock:         clock,
		warningWindow: warningWindow,
		logger:        logger,
		expire:        expire,
		changed:       changed,
	}
}

// Start schedules the timer set from the persisted credential. It is a
// no-op when the live timers already track the same expiry. An already
// expired credential runs the logout path before returning.
func (tc *TimerCoordinator) Start() {
	tc.mu.Lock()
	cred, ok := tc.credentialLocked()
	expired := tc.startLocked(cred, ok)
	view := tc.viewLocked()
	tc.mu.Unlock()

	tc.publish(view)
	if expired {
		tc.expire()
	}
}

// Stop cancels every scheduled callback and abandons any in-flight renewal.
// It is safe to call any number of times from any phase.
func (tc *TimerCoordinator) Stop() {
	tc.mu.Lock()
	tc.cancelLocked()
	tc.mu.Unlock()
}

// Reschedule is Stop followed by Start.
func (tc *TimerCoordinator) Reschedule() {
	tc.Stop()
	tc.Start()
}

// Phase reports the current phase.
func (tc *TimerCoordinator) Phase() domain.Phase {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.phase
}

// Credential returns the persisted credential of the live session.
func (tc *TimerCoordinator) Credential() (domain.Credential, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.credentialLocked()
}

// View reports the presentation state.
func (tc *TimerCoordinator) View() domain.View {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.viewLocked()
}

// Debounce arms the debounce slot; a new call replaces the pending one.
// action runs only if the slot is still armed when the delay elapses.
func (tc *TimerCoordinator) Debounce(delay time.Duration, action func()) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.armLocked(&tc.debounce, delay, func(id uint64) {
		tc.mu.Lock()
		ok := tc.claimLocked(&tc.debounce, id)
		tc.mu.Unlock()
		if ok {
			action()
		}
	})
}

// replace cancels the timer set, persists a new credential and schedules
// against it.
func (tc *TimerCoordinator) replace(persist func() (domain.Credential, error)) error {
	tc.mu.Lock()
	tc.cancelLocked()
	cred, err := persist()
	if err != nil {
		tc.mu.Unlock()
		return err
	}
	tc.revoked = false
	expired := tc.startLocked(cred, true)
	view := tc.viewLocked()
	tc.mu.Unlock()

	tc.publish(view)
	if expired {
		tc.expire()
	}
	return nil
}

// end tears the timer set down, clears the credential and settles on final.
// It reports whether a session was live beforehand. A failed clear still
// ends the session: the leftover pair stays revoked.
func (tc *TimerCoordinator) end(final domain.Phase, clear func() error) (bool, error) {
	tc.mu.Lock()
	_, held := tc.credentialLocked()
	live := held || tc.renewing || tc.phase == domain.PhaseActive || tc.phase == domain.PhaseWarning
	tc.cancelLocked()
	err := clear()
	tc.revoked = err != nil
	tc.phase = final
	tc.countdown = 0
	view := tc.viewLocked()
	tc.mu.Unlock()

	tc.publish(view)
	return live, err
}

// beginRenewal silences every timer and hides the warning for the
// duration of a renewal exchange. The credential and the epoch are read
// together, so a logout can only land before both or after both. It fails
// with errRenewalInFlight when another renewal owns the session.
func (tc *TimerCoordinator) beginRenewal() (cred domain.Credential, epoch uint64, err error) {
	tc.mu.Lock()
	if tc.renewing {
		tc.mu.Unlock()
		return domain.Credential{}, 0, errRenewalInFlight
	}
	cred, ok := tc.credentialLocked()
	if !ok {
		tc.mu.Unlock()
		return domain.Credential{}, 0, domain.ErrNoCredential
	}
	tc.cancelLocked()
	tc.renewing = true
	tc.phase = domain.PhaseActive
	tc.countdown = 0
	epoch = tc.epoch
	view := tc.viewLocked()
	tc.mu.Unlock()

	tc.publish(view)
	return cred, epoch, nil
}

// commitRenewal persists the renewed credential and reschedules, unless the
// session was ended or replaced after beginRenewal.
func (tc *TimerCoordinator) commitRenewal(epoch uint64, persist func() (domain.Credential, error)) error {
	tc.mu.Lock()
	if !tc.renewing || tc.epoch != epoch {
		tc.mu.Unlock()
		return domain.ErrRenewalSuperseded
	}
	tc.renewing = false
	cred, err := persist()
	if err != nil {
		tc.mu.Unlock()
		return err
	}
	expired := tc.startLocked(cred, true)
	view := tc.viewLocked()
	tc.mu.Unlock()

	tc.publish(view)
	if expired {
		tc.expire()
	}
	return nil
}

// abandonRenewal releases a failed renewal. It reports whether the renewal
// still owned the session, in which case the caller must log out.
func (tc *TimerCoordinator) abandonRenewal(epoch uint64) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !tc.renewing || tc.epoch != epoch {
		return false
	}
	tc.renewing = false
	return true
}

// startLocked returns true when the credential is already expired and the
// logout path must run.
func (tc *TimerCoordinator) startLocked(cred domain.Credential, ok bool) bool {
	if tc.renewing {
		return false
	}
	if !ok {
		tc.cancelLocked()
		if tc.phase != domain.PhaseExpired {
			tc.phase = domain.PhaseNoSession
		}
		tc.countdown = 0
		return false
	}
	if tc.logout.timer != nil && tc.expiresAt.Equal(cred.ExpiresAt) {
		return false
	}

	tc.cancelLocked()
	remaining := cred.ExpiresAt.Sub(tc.clock.Now())
	if remaining <= 0 {
		return true
	}

	tc.expiresAt = cred.ExpiresAt
	tc.armLocked(&tc.logout, remaining, tc.onLogoutTimer)
	if remaining <= tc.warningWindow {
		tc.enterWarningLocked(remaining)
		return false
	}

	tc.phase = domain.PhaseActive
	tc.countdown = 0
	tc.armLocked(&tc.warning, remaining-tc.warningWindow, tc.onWarningTimer)
	tc.logger.Debug("session timers scheduled",
		"expires_at", cred.ExpiresAt,
		"warning_in", remaining-tc.warningWindow,
	)
	return false
}

func (tc *TimerCoordinator) credentialLocked() (domain.Credential, bool) {
	if tc.revoked {
		return domain.Credential{}, false
	}
	return tc.store.Get()
}

func (tc *TimerCoordinator) enterWarningLocked(remaining time.Duration) {
	tc.phase = domain.PhaseWarning
	tc.countdown = ceilSeconds(remaining)
	tc.armLocked(&tc.ticker, tickInterval, tc.onTick)
	tc.logger.Debug("session warning", "countdown_seconds", tc.countdown)
}

func (tc *TimerCoordinator) onWarningTimer(id uint64) {
	tc.mu.Lock()
	if !tc.claimLocked(&tc.warning, id) {
		tc.mu.Unlock()
		return
	}
	tc.enterWarningLocked(tc.expiresAt.Sub(tc.clock.Now()))
	view := tc.viewLocked()
	tc.mu.Unlock()

	tc.publish(view)
}

// onTick refreshes the countdown. The logout timer, not the ticker,
// decides when the session ends.
func (tc *TimerCoordinator) onTick(id uint64) {
	tc.mu.Lock()
	if !tc.claimLocked(&tc.ticker, id) {
		tc.mu.Unlock()
		return
	}
	tc.countdown = ceilSeconds(tc.expiresAt.Sub(tc.clock.Now()))
	if tc.countdown > 0 {
		tc.armLocked(&tc.ticker, tickInterval, tc.onTick)
	}
	view := tc.viewLocked()
	tc.mu.Unlock()

	tc.publish(view)
}

func (tc *TimerCoordinator) onLogoutTimer(id uint64) {
	tc.mu.Lock()
	ok := tc.claimLocked(&tc.logout, id)
	tc.mu.Unlock()
	if ok {
		tc.expire()
	}
}

func (tc *TimerCoordinator) armLocked(s *slot, d time.Duration, fire func(id uint64)) {
	if s.timer != nil {
		s.timer.Stop()
	}
	tc.seq++
	id := tc.seq
	s.id = id
	s.timer = tc.clock.AfterFunc(d, func() { fire(id) })
}

func (tc *TimerCoordinator) claimLocked(s *slot, id uint64) bool {
	if s.timer == nil || s.id != id {
		return false
	}
	s.timer, s.id = nil, 0
	return true
}

func (tc *TimerCoordinator) cancelLocked() {
	for _, s := range []*slot{&tc.warning, &tc.logout, &tc.ticker, &tc.debounce} {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.timer, s.id = nil, 0
	}
	tc.expiresAt = time.Time{}
	tc.renewing = false
	tc.epoch++
}

func (tc *TimerCoordinator) viewLocked() domain.View {
	view := domain.View{
		Phase:               tc.phase,
		MaxCountdownSeconds: int(tc.warningWindow / time.Second),
		Renewing:            tc.renewing,
		ExpiresAt:           tc.expiresAt,
	}
	if tc.phase == domain.PhaseWarning {
		view.CountdownSeconds = tc.countdown
	}
	return view
}

func (tc *TimerCoordinator) publish(view domain.View) {
	if tc.changed != nil {
		tc.changed(view)
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
