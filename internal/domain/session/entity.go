package session

import (
	"errors"
	"time"
)

var (
	// ErrNoCredential indicates no persisted credential exists.
	ErrNoCredential = errors.New("no session credential")
	// ErrRenewalRejected indicates the auth service refused to renew the token.
	ErrRenewalRejected = errors.New("session renewal rejected")
	// ErrRenewalSuperseded means the session ended or was replaced while a renewal was in flight.
	ErrRenewalSuperseded = errors.New("session renewal superseded")
)

// Credential is the bearer token and the instant it stops being valid.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// ExpiresAtMillis returns the expiry as milliseconds since the Unix epoch.
func (c Credential) ExpiresAtMillis() int64 {
	return c.ExpiresAt.UnixMilli()
}

// Phase is the derived state of the session.
type Phase int

const (
	// PhaseNoSession means no credential is held.
	PhaseNoSession Phase = iota
	// PhaseActive means the credential is valid and outside the warning window.
	PhaseActive
	// PhaseWarning means the credential expires within the warning window.
	PhaseWarning
	// PhaseExpired is terminal until a new credential is established.
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseNoSession:
		return "no_session"
	case PhaseActive:
		return "active"
	case PhaseWarning:
		return "warning"
	case PhaseExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// EndReason explains why a session was torn down.
type EndReason string

const (
	// ReasonLoggedOut is an explicit logout by the user.
	ReasonLoggedOut EndReason = "logged_out"
	// ReasonExpired is a logout forced by the credential's expiry.
	ReasonExpired EndReason = "expired"
	// ReasonRenewalFailed is a logout forced by a failed renewal.
	ReasonRenewalFailed EndReason = "renewal_failed"
	// ReasonUnauthorized is a logout forced by an authentication rejection from the API.
	ReasonUnauthorized EndReason = "unauthorized"
)

// View is what the warning dialog renders.
type View struct {
	Phase               Phase
	CountdownSeconds    int
	MaxCountdownSeconds int
	Renewing            bool
	ExpiresAt           time.Time
}
