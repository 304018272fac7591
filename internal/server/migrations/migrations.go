// Package migrations embeds the PostgreSQL schema of the server.
package migrations

import "embed"

// Dialect is the goose dialect the scripts are written for.
const Dialect = "pgx"

//go:embed *.sql
var Migrations embed.FS
