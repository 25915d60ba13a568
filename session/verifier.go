package session

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.hackfix.me/vestibule/crypto"
)

// keyInfo binds derived keys to session cookie signing.
const keyInfo = "vestibule session cookie v1"

var b64 = base64.RawURLEncoding

// Verifier signs and verifies session cookie values. It is safe for
// concurrent use.
type Verifier struct {
	keys       []*crypto.HMACKey
	cookieName string
	timeNow    func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithCookieName sets the name of the session cookie.
func WithCookieName(name string) Option {
	return func(v *Verifier) {
		if name != "" {
			v.cookieName = name
		}
	}
}

// WithTimeNow sets the clock used for issuing and expiring envelopes.
func WithTimeNow(timeNow func() time.Time) Option {
	return func(v *Verifier) {
		v.timeNow = timeNow
	}
}

// NewVerifier returns a Verifier for the given secrets. The first secret is
// used for signing. All of them are accepted when verifying, which allows
// rotating secrets without invalidating existing sessions.
func NewVerifier(secrets []string, opts ...Option) (*Verifier, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSecrets
	}

	v := &Verifier{cookieName: DefaultCookieName, timeNow: time.Now}
	for i, secret := range secrets {
		if len(secret) < MinSecretLength {
			return nil, fmt.Errorf("%w: secret #%d has %d characters, minimum is %d",
				ErrSecretTooShort, i+1, len(secret), MinSecretLength)
		}
		key, err := crypto.DeriveHMACKey([]byte(secret), keyInfo)
		if err != nil {
			return nil, fmt.Errorf("failed deriving session key: %w", err)
		}
		v.keys = append(v.keys, key)
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// CookieName returns the name of the session cookie.
func (v *Verifier) CookieName() string {
	return v.cookieName
}

// Sign encodes and signs the envelope with the primary secret.
func (v *Verifier) Sign(env Envelope) (string, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed encoding session envelope: %w", err)
	}

	encoded := b64.EncodeToString(payload)
	sig := v.keys[0].Sign([]byte(encoded))

	return encoded + "." + b64.EncodeToString(sig), nil
}

// Issue signs a new envelope for the access token. If maxAge is positive, the
// envelope expires after that duration.
func (v *Verifier) Issue(token AccessToken, maxAge time.Duration) (string, error) {
	now := v.timeNow()
	env := Envelope{AccessToken: token, IssuedAt: now.Unix()}
	if maxAge > 0 {
		env.ExpiresAt = now.Add(maxAge).Unix()
	}

	return v.Sign(env)
}

// Verify checks the signature of a cookie value and decodes its envelope. The
// payload is decoded only if the signature matches one of the secrets. It
// returns false for any invalid, expired or token-less value.
func (v *Verifier) Verify(value string) (Envelope, bool) {
	encoded, encodedSig, ok := strings.Cut(value, ".")
	if !ok || encoded == "" || encodedSig == "" {
		return Envelope{}, false
	}

	sig, err := b64.DecodeString(encodedSig)
	if err != nil {
		return Envelope{}, false
	}

	valid := false
	for _, key := range v.keys {
		if key.Verify([]byte(encoded), sig) {
			valid = true
			break
		}
	}
	if !valid {
		return Envelope{}, false
	}

	payload, err := b64.DecodeString(encoded)
	if err != nil {
		return Envelope{}, false
	}

	var env Envelope
	if err = json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, false
	}

	if env.AccessToken == "" || env.Expired(v.timeNow()) {
		return Envelope{}, false
	}

	return env, true
}

// FromRequest verifies the session cookie of the request. A request without
// the cookie is rejected without any cryptographic work.
func (v *Verifier) FromRequest(r *http.Request) (Envelope, bool) {
	cookie, err := r.Cookie(v.cookieName)
	if err != nil || cookie.Value == "" {
		return Envelope{}, false
	}

	return v.Verify(cookie.Value)
}

// Token returns the access token of the request's session, if it has a valid
// one.
func (v *Verifier) Token(r *http.Request) sql.Null[AccessToken] {
	env, ok := v.FromRequest(r)
	if !ok {
		return sql.Null[AccessToken]{}
	}

	return sql.Null[AccessToken]{V: env.AccessToken, Valid: true}
}
