package session

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	domain "backoffice/console/internal/domain/session"
)

// Well-known keys of the persisted credential pair.
const (
	TokenKey     = "backoffice.session.token"
	ExpiresAtKey = "backoffice.session.expires_at"
)

// CredentialStore owns the persisted token and expiry pair.
type CredentialStore struct {
	kv     domain.KeyValueStore
	clock  Clock
	logger *slog.Logger
}

// NewCredentialStore wraps a key/value store.
func NewCredentialStore(kv domain.KeyValueStore, clock Clock, logger *slog.Logger) *CredentialStore {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{kv: kv, clock: clock, logger: logger}
}

// Set persists token with an expiry ttl from now. Both keys are written together.
func (s *CredentialStore) Set(token string, ttl time.Duration) (domain.Credential, error) {
	cred := domain.Credential{
		Token:     token,
		ExpiresAt: s.clock.Now().Add(ttl).Truncate(time.Millisecond),
	}
	err := s.kv.Put(map[string]string{
		TokenKey:     cred.Token,
		ExpiresAtKey: strconv.FormatInt(cred.ExpiresAtMillis(), 10),
	})
	if err != nil {
		return domain.Credential{}, err
	}
	return cred, nil
}

// Get returns the persisted credential. A missing, empty or unparsable
// field reads as no credential.
func (s *CredentialStore) Get() (domain.Credential, bool) {
	values, err := s.kv.Get(TokenKey, ExpiresAtKey)
	if err != nil {
		s.logger.Warn("reading session credential", "error", err)
		return domain.Credential{}, false
	}

	token := values[TokenKey]
	rawExpiry, ok := values[ExpiresAtKey]
	if token == "" || !ok {
		return domain.Credential{}, false
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(rawExpiry), 10, 64)
	if err != nil {
		s.logger.Debug("discarding unparsable session expiry", "value", rawExpiry)
		return domain.Credential{}, false
	}

	return domain.Credential{Token: token, ExpiresAt: time.UnixMilli(millis).UTC()}, true
}

// Clear removes both keys.
func (s *CredentialStore) Clear() error {
	return s.kv.Delete(TokenKey, ExpiresAtKey)
}

// Remaining is the time left until cred expires; negative once past.
func (s *CredentialStore) Remaining(cred domain.Credential) time.Duration {
	return cred.ExpiresAt.Sub(s.clock.Now())
}
