package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nrednav/cuid2"

	"go.hackfix.me/vestibule/crypto"
	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/db/types"
)

// Querier is implemented by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RowsQuerier is a Querier that can also return multiple rows.
type RowsQuerier interface {
	Querier
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// querier returns the transaction stored in ctx, if any, or q.
func querier(ctx context.Context, q Querier) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return q
}

func rowsQuerier(ctx context.Context, q RowsQuerier) RowsQuerier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return q
}

const userColumns = `id, uuid, created_at, updated_at, name, access_token`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.UUID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.AccessToken)
	if err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by callers.
	}
	return &u, nil
}

// loadErr converts err returned when querying the user identified by id.
func loadErr(id string, err error) error {
	if IsNotFoundError(err) {
		return types.NoResultError{ModelName: "user", ID: id}
	}
	return types.LoadError{ModelName: "user", Err: err}
}

// UserByToken returns the user that owns the access token. It returns a
// types.NoResultError if no user has it.
func UserByToken(ctx context.Context, q Querier, token string) (*models.User, error) {
	if token == "" {
		return nil, types.InvalidInputError{Msg: "access token must be set"}
	}

	u, err := scanUser(querier(ctx, q).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE access_token = $1`, token))
	if err != nil {
		return nil, loadErr("access token", err)
	}

	return u, nil
}

// UserByName returns the user with the given name. It returns a
// types.NoResultError if it doesn't exist.
func UserByName(ctx context.Context, q Querier, name string) (*models.User, error) {
	if name == "" {
		return nil, types.InvalidInputError{Msg: "user name must be set"}
	}

	u, err := scanUser(querier(ctx, q).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE name = $1`, name))
	if err != nil {
		return nil, loadErr(fmt.Sprintf("name '%s'", name), err)
	}

	return u, nil
}

// Users returns all users ordered by name.
func Users(ctx context.Context, q RowsQuerier) ([]*models.User, error) {
	rows, err := rowsQuerier(ctx, q).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, types.LoadError{ModelName: "user", Err: err}
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, types.LoadError{ModelName: "user", Err: err}
	}

	return users, nil
}

// InsertUser stores a new user. A UUID and access token are generated if
// they're not set.
func InsertUser(ctx context.Context, q Querier, u *models.User) error {
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
	if u.CreatedAt.IsZero() {
		return types.InvalidInputError{Msg: "user creation time must be set"}
	}
	u.UpdatedAt = u.CreatedAt

	err := querier(ctx, q).QueryRow(ctx,
		`INSERT INTO users (uuid, created_at, updated_at, name, access_token)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.UUID, u.CreatedAt, u.UpdatedAt, u.Name, u.AccessToken).Scan(&u.ID)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return &types.DuplicateError{ModelName: "user", ID: fmt.Sprintf("name '%s'", u.Name)}
		}
		return fmt.Errorf("failed inserting user: %w", err)
	}

	return nil
}

// DeleteUser removes the user with the given name and returns its last state.
func DeleteUser(ctx context.Context, q Querier, name string) (*models.User, error) {
	if name == "" {
		return nil, types.InvalidInputError{Msg: "user name must be set"}
	}

	u, err := scanUser(querier(ctx, q).QueryRow(ctx,
		`DELETE FROM users WHERE name = $1 RETURNING `+userColumns, name))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, types.NoResultError{ModelName: "user", ID: fmt.Sprintf("name '%s'", name)}
		}
		return nil, fmt.Errorf("failed deleting user: %w", err)
	}

	return u, nil
}

// UpdateAccessToken replaces the access token of u.
func UpdateAccessToken(ctx context.Context, q Querier, u *models.User, token string, now time.Time) error {
	if token == "" {
		return types.InvalidInputError{Msg: "access token must be set"}
	}

	var id uint64
	err := querier(ctx, q).QueryRow(ctx,
		`UPDATE users SET access_token = $1, updated_at = $2 WHERE id = $3 RETURNING id`,
		token, now, u.ID).Scan(&id)
	if err != nil {
		if IsNotFoundError(err) {
			return types.NoResultError{ModelName: "user", ID: fmt.Sprintf("name '%s'", u.Name)}
		}
		return fmt.Errorf("failed updating user: %w", err)
	}

	u.AccessToken = token
	u.UpdatedAt = now

	return nil
}
