package queries

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.hackfix.me/vestibule/db/types"
)

// Version returns the Vestibule application version the database was
// initialized with. If the returned sql.Null value is invalid, it indicates
// that the database hasn't been initialized.
func Version(ctx context.Context, d types.Querier) (sql.Null[string], error) {
	var version sql.Null[string]
	err := d.QueryRowContext(ctx, `SELECT version FROM _meta`).
		Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		// The _meta table is created by the first migration.
		if strings.Contains(err.Error(), "no such table") {
			return version, nil
		}
		return version, err
	}

	return version, nil
}
