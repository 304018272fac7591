package client

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/worklog/internal/client/migrations"
	"github.com/dmitrijs2005/worklog/internal/dbx"
	"github.com/dmitrijs2005/worklog/internal/filex"

	_ "modernc.org/sqlite"
)

// InitDatabase opens the local session database at path, creating its
// directory when needed, and brings the schema up to date.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := filex.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// a single writer keeps SQLite free of "database is locked" errors
	db.SetMaxOpenConns(1)

	if err := dbx.Migrate(ctx, db, migrations.Dialect, migrations.Migrations, "."); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
