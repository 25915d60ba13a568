package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"go.hackfix.me/vestibule/app/config"
	actx "go.hackfix.me/vestibule/app/context"
	aerrors "go.hackfix.me/vestibule/app/errors"
	"go.hackfix.me/vestibule/db/types"
	"go.hackfix.me/vestibule/session"
)

// The Session command signs and verifies session cookie values.
type Session struct {
	Sign struct {
		Name string `arg:"" help:"The name of the user."`
		//nolint:lll // Long struct tags are unavoidable.
		Expiration time.Time `type:"expiration" help:"Time when the cookie expires. Either a duration from now (e.g. '12h' or '7d'), or a timestamp in RFC 3339 format (e.g. '%s'). Defaults to the configured session max age."`
	} `kong:"cmd,help='Print a signed session cookie value for a user.'"`
	Verify struct {
		Value string `arg:"" help:"The session cookie value."`
	} `kong:"cmd,help='Check a session cookie value and print who it belongs to.'"`

	maxAge time.Duration
}

// Run the session command.
func (c *Session) Run(kctx *kong.Context, appCtx *actx.Context) error {
	verifier, err := newVerifier(appCtx)
	if err != nil {
		return err
	}

	switch kctx.Args[1] {
	case "sign":
		users, release, err := openUsers(appCtx)
		if err != nil {
			return err
		}
		defer release()

		user, err := users.UserByName(appCtx.Ctx, c.Sign.Name)
		if err != nil {
			return aerrors.NewRuntimeError(
				fmt.Sprintf("failed loading user '%s'", c.Sign.Name), err, "")
		}

		env := session.Envelope{
			AccessToken: session.AccessToken(user.AccessToken),
			IssuedAt:    appCtx.TimeNow().Unix(),
		}
		switch {
		case !c.Sign.Expiration.IsZero():
			env.ExpiresAt = c.Sign.Expiration.Unix()
		case c.maxAge > 0:
			env.ExpiresAt = appCtx.TimeNow().Add(c.maxAge).Unix()
		}

		value, err := verifier.Sign(env)
		if err != nil {
			return aerrors.NewRuntimeError("failed signing session cookie", err, "")
		}
		fmt.Fprintln(appCtx.Stdout, value)
	case "verify":
		env, ok := verifier.Verify(c.Verify.Value)
		if !ok {
			return aerrors.NewRuntimeError("invalid session cookie", nil,
				"the cookie is malformed, expired, or wasn't signed with any of the configured secrets")
		}

		name, err := lookupUserName(appCtx, env.AccessToken)
		if err != nil {
			return err
		}

		exp := "never"
		if env.ExpiresAt != 0 {
			exp = time.Unix(env.ExpiresAt, 0).UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(appCtx.Stdout, "valid session cookie; user: %s; expires: %s\n", name, exp)
	}

	return nil
}

// lookupUserName returns the name of the user with the given token, or a
// placeholder if the user can't be found. An uninitialized SQLite database has
// no users to look up.
func lookupUserName(appCtx *actx.Context, token session.AccessToken) (string, error) {
	if appCtx.Users == nil && usesSQLite(appCtx.Config.Store.Type.V) && appCtx.VersionInit == "" {
		return "<unknown>", nil
	}

	users, release, err := openUsers(appCtx)
	if err != nil {
		return "", err
	}
	defer release()

	user, err := users.UserByToken(appCtx.Ctx, token)
	if err != nil {
		var nrErr types.NoResultError
		if errors.As(err, &nrErr) {
			return "<unknown>", nil
		}
		return "", aerrors.NewRuntimeError("failed loading user", err, "")
	}

	return user.Name, nil
}

func newVerifier(appCtx *actx.Context) (*session.Verifier, error) {
	secrets, err := config.LoadSecrets(appCtx.Env.All())
	if err != nil {
		return nil, aerrors.NewRuntimeError("failed loading session secrets", err,
			fmt.Sprintf("set the %sSECRETS environment variable to a comma-separated list of secrets",
				config.EnvPrefix))
	}

	v, err := session.NewVerifier(secrets.Session,
		session.WithCookieName(appCtx.Config.Session.CookieName.V),
		session.WithTimeNow(appCtx.TimeNow),
	)
	if err != nil {
		return nil, aerrors.NewRuntimeError("invalid session secrets", err, "")
	}

	return v, nil
}
