package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	actx "go.hackfix.me/vestibule/app/context"
	aerrors "go.hackfix.me/vestibule/app/errors"
	"go.hackfix.me/vestibule/session"
	"go.hackfix.me/vestibule/store"
)

// The User command manages Vestibule users.
type User struct {
	Add struct {
		Name string `arg:"" help:"The unique name of the user."`
	} `kong:"cmd,help='Add a new user and print its access token.'"`
	Rm struct {
		Name string `arg:"" help:"The unique name of the user."`
	} `kong:"cmd,help='Remove a user.'"`
	Ls     struct{} `kong:"cmd,help='List users.'"`
	Rotate struct {
		Name string `arg:"" help:"The unique name of the user."`
	} `kong:"cmd,help='Replace the access token of a user, which invalidates its session cookies.'"`
}

// Run the user command.
func (c *User) Run(kctx *kong.Context, appCtx *actx.Context) error {
	users, release, err := openUsers(appCtx)
	if err != nil {
		return err
	}
	defer release()

	ctx := appCtx.Ctx
	switch kctx.Args[1] {
	case "add":
		user, err := users.AddUser(ctx, c.Add.Name)
		if err != nil {
			return aerrors.NewRuntimeError(
				fmt.Sprintf("failed adding user '%s'", c.Add.Name), err, "")
		}
		fmt.Fprintln(appCtx.Stdout, user.AccessToken)
	case "rm":
		user, err := users.RemoveUser(ctx, c.Rm.Name)
		if err != nil {
			return aerrors.NewRuntimeError(
				fmt.Sprintf("failed removing user '%s'", c.Rm.Name), err, "")
		}
		invalidateCachedUser(appCtx, users, session.AccessToken(user.AccessToken))
	case "ls":
		list, err := users.ListUsers(ctx)
		if err != nil {
			return aerrors.NewRuntimeError("failed listing users", err, "")
		}

		if err = renderUsers(appCtx.Stdout, list); err != nil {
			return aerrors.NewRuntimeError("failed rendering table", err, "")
		}
	case "rotate":
		prev, user, err := users.RotateToken(ctx, c.Rotate.Name)
		if err != nil {
			return aerrors.NewRuntimeError(
				fmt.Sprintf("failed rotating the access token of user '%s'", c.Rotate.Name), err, "")
		}
		invalidateCachedUser(appCtx, users, prev)
		fmt.Fprintln(appCtx.Stdout, user.AccessToken)
	}

	return nil
}

// openUsers returns the user store set in the app context, or else opens the
// one selected by the configuration. release must be called when done.
func openUsers(appCtx *actx.Context) (users store.Users, release func(), err error) {
	if appCtx.Users != nil {
		return appCtx.Users, func() {}, nil
	}

	users, err = store.OpenUsers(appCtx.Ctx, appCtx.Config.StoreConfig(), appCtx.DB, appCtx.Logger)
	if err != nil {
		return nil, nil, aerrors.NewRuntimeError("failed opening the user store", err, "")
	}

	return users, func() {
		if cerr := users.Close(); cerr != nil {
			appCtx.Logger.Warn("failed closing the user store", "error", cerr.Error())
		}
	}, nil
}

// invalidateCachedUser removes the user of token from the Redis cache, if
// caching is enabled, so that its stale record isn't served until it expires.
// Failures are only logged, since the record expires anyway.
func invalidateCachedUser(appCtx *actx.Context, users store.Users, token session.AccessToken) {
	cfg := appCtx.Config.Store
	if !cfg.RedisURL.Valid {
		return
	}

	logger := appCtx.Logger.With("component", "user-cache")
	rdb, err := store.ConnectRedis(appCtx.Ctx, cfg.RedisURL.V, 1, 0)
	if err != nil {
		logger.Warn("failed connecting to cache", "error", err.Error())
		return
	}
	// Closing the Cached store would also close users.
	defer rdb.Close() //nolint:errcheck // Nothing to do about it.

	cached := store.NewCached(users, rdb, cfg.CacheTTL.V, logger)
	if err = cached.Invalidate(appCtx.Ctx, token); err != nil {
		logger.Warn(err.Error())
	}
}
