package types

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Querier exposes only methods for running SQL queries, and some helper functions.
type Querier interface {
	NewContext() context.Context
	TimeNow() time.Time
	ExecContext(ctx context.Context, sql string, arguments ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Filter restricts the rows returned by a query.
type Filter struct {
	Where string
	Args  []any
	Limit int
}

// NewFilter creates a new query filter.
func NewFilter(where string, args []any) *Filter {
	return &Filter{Where: where, Args: args}
}

// WithLimit returns a copy of the filter that returns at most n rows.
func (f *Filter) WithLimit(n int) *Filter {
	out := *f
	out.Limit = n
	return &out
}

// Clause renders the WHERE clause of the filter, and the LIMIT clause if a
// limit is set. A nil filter matches all rows.
func (f *Filter) Clause() (string, []any) {
	if f == nil || f.Where == "" {
		return "WHERE 1=1", nil
	}
	return fmt.Sprintf("WHERE %s", f.Where), f.Args
}

// LimitClause renders the LIMIT clause of the filter, or an empty string if
// there is no limit.
func (f *Filter) LimitClause() string {
	if f == nil || f.Limit <= 0 {
		return ""
	}
	return fmt.Sprintf("LIMIT %d", f.Limit)
}
