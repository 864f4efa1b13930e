package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domain "backoffice/console/internal/domain/session"
)

// DefaultTTL is the token lifetime assumed when a renewal response does not state one.
const DefaultTTL = time.Hour

// Renewal is a freshly issued token.
type Renewal struct {
	Token string
	TTL   time.Duration
}

// Renewer exchanges a still-valid token for a new one.
type Renewer interface {
	Renew(ctx context.Context, token string) (Renewal, error)
}

// RenewalProtocol runs the interactive renewal exchange.
type RenewalProtocol struct {
	store   *CredentialStore
	timers  *TimerCoordinator
	renewer Renewer
	logout  func(domain.EndReason)
	logger  *slog.Logger
}

// NewRenewalProtocol wires the protocol to the shared logout path.
func NewRenewalProtocol(
	store *CredentialStore,
	timers *TimerCoordinator,
	renewer Renewer,
	logout func(domain.EndReason),
	logger *slog.Logger,
) *RenewalProtocol {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenewalProtocol{
		store:   store,
		timers:  timers,
		renewer: renewer,
		logout:  logout,
		logger:  logger,
	}
}

// Renew hides the warning, silences the timers and asks the auth service
// for a new token. Success persists the token and reschedules; any failure
// logs the session out. Failures are not retried. A call made while
// another renewal is in flight returns nil without doing anything.
func (p *RenewalProtocol) Renew(ctx context.Context) error {
	cred, epoch, err := p.timers.beginRenewal()
	switch {
	case errors.Is(err, errRenewalInFlight):
		p.logger.Debug("session renewal already in flight")
		return nil
	case err != nil:
		p.logout(domain.ReasonRenewalFailed)
		return err
	}

	renewal, err := p.renewer.Renew(ctx, cred.Token)
	if err == nil && renewal.Token == "" {
		err = domain.ErrRenewalRejected
	}
	if err != nil {
		if p.timers.abandonRenewal(epoch) {
			p.logger.Warn("session renewal failed", "error", err)
			p.logout(domain.ReasonRenewalFailed)
		}
		return fmt.Errorf("renew session: %w", err)
	}

	ttl := renewal.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	err = p.timers.commitRenewal(epoch, func() (domain.Credential, error) {
		return p.store.Set(renewal.Token, ttl)
	})
	switch {
	case errors.Is(err, domain.ErrRenewalSuperseded):
		p.logger.Info("discarding renewal for a session that already ended")
		return err
	case err != nil:
		p.logger.Error("persisting renewed session", "error", err)
		p.logout(domain.ReasonRenewalFailed)
		return fmt.Errorf("persist renewed session: %w", err)
	}

	p.logger.Debug("session renewed", "ttl", ttl)
	return nil
}
