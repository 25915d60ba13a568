package store

import (
	"context"

	"go.hackfix.me/vestibule/db"
	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/effect"
	"go.hackfix.me/vestibule/session"
)

// SQLite looks up and manages users in the application's SQLite database.
type SQLite struct {
	db *db.DB
}

var _ Users = (*SQLite)(nil)

// NewSQLite returns a store backed by d. The database is owned by the caller.
func NewSQLite(d *db.DB) *SQLite {
	return &SQLite{db: d}
}

// FetchUser implements session.Store.
func (s *SQLite) FetchUser(token session.AccessToken) effect.Effect[effect.Outcome[error, *models.User]] {
	return fetch(func(ctx context.Context) (*models.User, error) {
		return models.UserByToken(ctx, s.db, string(token))
	})
}

// AddUser implements Users.
func (s *SQLite) AddUser(ctx context.Context, name string) (*models.User, error) {
	u := &models.User{Name: name}
	if err := u.Save(ctx, s.db, false); err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by caller.
	}
	return u, nil
}

// RemoveUser implements Users.
func (s *SQLite) RemoveUser(ctx context.Context, name string) (*models.User, error) {
	u, err := s.UserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err = u.Delete(ctx, s.db); err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by caller.
	}
	return u, nil
}

// RotateToken implements Users.
func (s *SQLite) RotateToken(ctx context.Context, name string) (session.AccessToken, *models.User, error) {
	u, err := s.UserByName(ctx, name)
	if err != nil {
		return "", nil, err
	}
	prev := session.AccessToken(u.AccessToken)
	if err = u.RotateToken(ctx, s.db); err != nil {
		return "", nil, err //nolint:wrapcheck // Wrapped by caller.
	}
	return prev, u, nil
}

// ListUsers implements Users.
func (s *SQLite) ListUsers(ctx context.Context) ([]*models.User, error) {
	return models.Users(ctx, s.db, nil) //nolint:wrapcheck // Wrapped by caller.
}

// UserByName implements Users.
func (s *SQLite) UserByName(ctx context.Context, name string) (*models.User, error) {
	u := &models.User{Name: name}
	if err := u.Load(ctx, s.db); err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by caller.
	}
	return u, nil
}

// UserByToken implements Users.
func (s *SQLite) UserByToken(ctx context.Context, token session.AccessToken) (*models.User, error) {
	return models.UserByToken(ctx, s.db, string(token)) //nolint:wrapcheck // Wrapped by caller.
}

// Ping implements Store.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx) //nolint:wrapcheck // Wrapped by caller.
}

// Close implements Store. The database is left open, since it's shared with
// the rest of the application.
func (s *SQLite) Close() error {
	return nil
}
