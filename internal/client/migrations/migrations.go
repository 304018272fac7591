// Package migrations embeds the schema of the local session database.
package migrations

import "embed"

// Dialect is the goose dialect the scripts are written for.
const Dialect = "sqlite3"

//go:embed *.sql
var Migrations embed.FS
