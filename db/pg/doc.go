// Package pg provides the PostgreSQL connection pool, schema migrations and
// user queries used by the Postgres user store.
//
// Connect establishes a pgx connection pool with retries and verifies it with
// a ping. Migrate applies the embedded goose migrations through the pgx
// database/sql adapter. UserByToken and InsertUser work with any Querier, so
// they can run on the pool or inside a transaction stored with WithTx.
package pg
