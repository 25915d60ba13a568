package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nrednav/cuid2"

	"go.hackfix.me/vestibule/crypto"
	"go.hackfix.me/vestibule/db/types"
)

// User represents a Vestibule user. AccessToken is the credential embedded in
// signed session cookies.
type User struct {
	ID          uint64    `json:"-"`
	UUID        string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	AccessToken string    `json:"-"`
}

// Save stores the user data in the database. On insert, a new UUID and access
// token are generated if they're not set.
func (u *User) Save(ctx context.Context, d types.Querier, update bool) error {
	timeNow := d.TimeNow().UTC()
	if update {
		filter, filterStr, err := u.filter("")
		if err != nil {
			return err
		}

		args := append([]any{timeNow, u.Name, u.AccessToken}, filter.Args...)
		updateStmt := fmt.Sprintf(`UPDATE users
			SET updated_at = ?, name = ?, access_token = ?
			WHERE %s`, filter.Where)
		res, err := d.ExecContext(ctx, updateStmt, args...)
		if err != nil {
			return types.Err("user", filterStr, "", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed getting affected rows: %w", err)
		}
		if n == 0 {
			return types.NoResultError{ModelName: "user", ID: filterStr}
		}
		if n > 1 {
			return types.IntegrityError{Msg: fmt.Sprintf("updated %d users", n)}
		}
		u.UpdatedAt = timeNow

		return nil
	}

	if u.Name == "" {
		return types.InvalidInputError{Msg: "user name must be set"}
	}
	if u.UUID == "" {
		u.UUID = cuid2.Generate()
	}
	if u.AccessToken == "" {
		token, err := crypto.NewToken()
		if err != nil {
			return err
		}
		u.AccessToken = token
	}

	insertStmt := `INSERT INTO users
		(id, uuid, created_at, updated_at, name, access_token)
		VALUES (NULL, ?, ?, ?, ?, ?)
		RETURNING id`
	err := d.QueryRowContext(ctx, insertStmt, u.UUID, timeNow, timeNow, u.Name, u.AccessToken).
		Scan(&u.ID)
	if err != nil {
		return types.Err("user", fmt.Sprintf("name '%s'", u.Name), "name", err)
	}
	u.CreatedAt = timeNow
	u.UpdatedAt = timeNow

	return nil
}

// Load the user data from the database. Either the user ID or Name must be set
// for the lookup.
func (u *User) Load(ctx context.Context, d types.Querier) error {
	filter, filterStr, err := u.filter("u.")
	if err != nil {
		return err
	}

	users, err := Users(ctx, d, filter)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		return types.NoResultError{ModelName: "user", ID: filterStr}
	}

	// The unique constraint on both users.id and users.name should return only
	// a single result.
	if len(users) > 1 {
		return types.IntegrityError{Msg: fmt.Sprintf("users query returned %d users", len(users))}
	}
	*u = *users[0]

	return nil
}

// Delete removes the user data from the database. Either the user ID or Name
// must be set for the lookup. It returns an error if the user doesn't exist.
func (u *User) Delete(ctx context.Context, d types.Querier) error {
	filter, filterStr, err := u.filter("")
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(`DELETE FROM users WHERE %s`, filter.Where)

	res, err := d.ExecContext(ctx, stmt, filter.Args...)
	if err != nil {
		return types.Err("user", filterStr, "", err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "user", ID: filterStr}
	}

	return nil
}

// RotateToken replaces the user's access token with a new random one. Session
// cookies that embed the previous token stop resolving to this user.
func (u *User) RotateToken(ctx context.Context, d types.Querier) error {
	token, err := crypto.NewToken()
	if err != nil {
		return err
	}

	prev := u.AccessToken
	u.AccessToken = token
	if err = u.Save(ctx, d, true); err != nil {
		u.AccessToken = prev
		return err
	}

	return nil
}

func (u *User) filter(alias string) (*types.Filter, string, error) {
	switch {
	case u.ID != 0:
		return types.NewFilter(alias+"id = ?", []any{u.ID}), fmt.Sprintf("ID %d", u.ID), nil
	case u.Name != "":
		return types.NewFilter(alias+"name = ?", []any{u.Name}), fmt.Sprintf("name '%s'", u.Name), nil
	default:
		return nil, "", types.InvalidInputError{Msg: "either user ID or Name must be set"}
	}
}

// UserByToken returns the user that owns the access token. It returns a
// types.NoResultError if no user has it.
func UserByToken(ctx context.Context, d types.Querier, token string) (*User, error) {
	if token == "" {
		return nil, types.InvalidInputError{Msg: "access token must be set"}
	}

	users, err := Users(ctx, d, types.NewFilter("u.access_token = ?", []any{token}).WithLimit(1))
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		// Never include the token itself in the error.
		return nil, types.NoResultError{ModelName: "user", ID: "access token"}
	}

	return users[0], nil
}

// Users returns one or more users from the database. An optional filter can be
// passed to limit the results.
func Users(ctx context.Context, d types.Querier, filter *types.Filter) (users []*User, rerr error) {
	query := `SELECT u.id, u.uuid, u.created_at, u.updated_at, u.name, u.access_token
		FROM users u %s
		ORDER BY u.name ASC`

	where, args := filter.Clause()
	query = strings.TrimSpace(fmt.Sprintf(query, where) + " " + filter.LimitClause())

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "users", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = errors.Join(rerr, fmt.Errorf("failed closing users rows: %w", err))
		}
	}()

	users = make([]*User, 0)
	for rows.Next() {
		var u User
		err = rows.Scan(&u.ID, &u.UUID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.AccessToken)
		if err != nil {
			return nil, types.ScanError{ModelName: "user", Err: err}
		}
		users = append(users, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over users rows: %w", err)
	}

	return users, nil
}
