package types

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/glebarez/go-sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// NoResultError means that the record identified by ID doesn't exist.
type NoResultError struct {
	ModelName string
	ID        string
}

func (e NoResultError) Error() string {
	return fmt.Sprintf("%s with %s doesn't exist", e.ModelName, e.ID)
}

// DuplicateError means that a unique value is already taken by another record.
type DuplicateError struct {
	ModelName string
	ID        string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s already exists", e.ModelName, e.ID)
}

// InvalidInputError rejects a model operation before it reaches the database.
type InvalidInputError struct {
	Msg string
}

func (e InvalidInputError) Error() string { return e.Msg }

// IntegrityError means that the database holds data that breaks an assumption
// of the schema, e.g. an update that changed more than one record.
type IntegrityError struct {
	Msg string
}

func (e IntegrityError) Error() string { return "integrity error: " + e.Msg }

// LoadError wraps a failed query.
type LoadError struct {
	ModelName string
	Err       error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("failed loading %s: %s", e.ModelName, e.Err)
}

func (e LoadError) Unwrap() error { return e.Err }

// ScanError wraps a failure to read a result row into a model.
type ScanError struct {
	ModelName string
	Err       error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("failed scanning %s data: %s", e.ModelName, e.Err)
}

func (e ScanError) Unwrap() error { return e.Err }

// Matches e.g. "UNIQUE constraint failed: users.access_token".
var uniqueColumnRx = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)

// Err translates SQLite constraint violations in err into the errors above,
// and returns any other error unchanged. id describes the record for users,
// e.g. "name 'alice'", and idColumn is the column it refers to. Violations on
// other unique columns name the column instead of id, so that secret values
// such as access tokens never end up in messages.
func Err(modelName, id, idColumn string, err error) error {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}

	//nolint:exhaustive // Other codes aren't translated.
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		if m := uniqueColumnRx.FindStringSubmatch(sqlErr.Error()); m != nil && m[1] != idColumn {
			id = "the same " + m[1]
		}
		return &DuplicateError{ModelName: modelName, ID: id}
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return InvalidInputError{Msg: fmt.Sprintf("missing required %s value: %s", modelName, sqlErr)}
	default:
		return err
	}
}
