package migrations

import "embed"

// SQLite holds the goose migrations for the sqlite adapter.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the plain SQL migrations for the postgres adapter.
//
//go:embed postgres/*.sql
var Postgres embed.FS
