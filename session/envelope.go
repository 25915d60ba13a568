package session

import (
	"errors"
	"time"
)

// DefaultCookieName is the name of the session cookie unless configured
// otherwise.
const DefaultCookieName = "vestibule_session"

// MinSecretLength is the minimum length of a signing secret.
const MinSecretLength = 32

var (
	ErrNoSecrets      = errors.New("at least one session secret is required")
	ErrSecretTooShort = errors.New("session secret is too short")
)

// AccessToken is the opaque credential embedded in a session cookie.
type AccessToken string

// Envelope is the decoded payload of a verified session cookie.
type Envelope struct {
	AccessToken AccessToken `json:"access_token"`
	// IssuedAt is the Unix time the envelope was signed at.
	IssuedAt int64 `json:"iat"`
	// ExpiresAt is the Unix time after which the envelope is rejected. Zero
	// means it never expires.
	ExpiresAt int64 `json:"exp,omitempty"`
}

// Expired reports whether the envelope is no longer valid at t.
func (e Envelope) Expired(t time.Time) bool {
	return e.ExpiresAt != 0 && t.Unix() >= e.ExpiresAt
}
