package store

import (
	"context"
	"time"

	"go.hackfix.me/vestibule/crypto"
	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/db/pg"
	"go.hackfix.me/vestibule/effect"
	"go.hackfix.me/vestibule/session"
)

// PgPool is the subset of *pgxpool.Pool used by Postgres.
type PgPool interface {
	pg.RowsQuerier
	pg.Beginner
	Ping(ctx context.Context) error
	Close()
}

// Postgres looks up and manages users in a PostgreSQL database.
type Postgres struct {
	pool    PgPool
	timeNow func() time.Time
}

var _ Users = (*Postgres)(nil)

// NewPostgres returns a store backed by pool. Closing the store closes the
// pool. timeNow sets the creation and update times of users.
func NewPostgres(pool PgPool, timeNow func() time.Time) *Postgres {
	return &Postgres{pool: pool, timeNow: timeNow}
}

// FetchUser implements session.Store.
func (s *Postgres) FetchUser(token session.AccessToken) effect.Effect[effect.Outcome[error, *models.User]] {
	return fetch(func(ctx context.Context) (*models.User, error) {
		return pg.UserByToken(ctx, s.pool, string(token))
	})
}

// AddUser implements Users.
func (s *Postgres) AddUser(ctx context.Context, name string) (*models.User, error) {
	u := &models.User{Name: name, CreatedAt: s.timeNow().UTC()}
	if err := pg.InsertUser(ctx, s.pool, u); err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by caller.
	}
	return u, nil
}

// RemoveUser implements Users.
func (s *Postgres) RemoveUser(ctx context.Context, name string) (*models.User, error) {
	var u *models.User
	err := pg.InTx(ctx, s.pool, func(ctx context.Context) error {
		var err error
		u, err = pg.DeleteUser(ctx, s.pool, name)
		return err
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by caller.
	}
	return u, nil
}

// RotateToken implements Users.
func (s *Postgres) RotateToken(ctx context.Context, name string) (session.AccessToken, *models.User, error) {
	var (
		prev session.AccessToken
		u    *models.User
	)
	err := pg.InTx(ctx, s.pool, func(ctx context.Context) error {
		var err error
		if u, err = pg.UserByName(ctx, s.pool, name); err != nil {
			return err
		}
		prev = session.AccessToken(u.AccessToken)

		token, err := crypto.NewToken()
		if err != nil {
			return err
		}

		return pg.UpdateAccessToken(ctx, s.pool, u, token, s.timeNow().UTC())
	})
	if err != nil {
		return "", nil, err //nolint:wrapcheck // Wrapped by caller.
	}
	return prev, u, nil
}

// ListUsers implements Users.
func (s *Postgres) ListUsers(ctx context.Context) ([]*models.User, error) {
	return pg.Users(ctx, s.pool) //nolint:wrapcheck // Wrapped by caller.
}

// UserByName implements Users.
func (s *Postgres) UserByName(ctx context.Context, name string) (*models.User, error) {
	return pg.UserByName(ctx, s.pool, name) //nolint:wrapcheck // Wrapped by caller.
}

// UserByToken implements Users.
func (s *Postgres) UserByToken(ctx context.Context, token session.AccessToken) (*models.User, error) {
	return pg.UserByToken(ctx, s.pool, string(token)) //nolint:wrapcheck // Wrapped by caller.
}

// Ping implements Store.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx) //nolint:wrapcheck // Wrapped by caller.
}

// Close implements Store.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
