package store

import (
	"context"
	"database/sql"
	"embed"
	"io"
	"log"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrate applies the embedded schema migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(log.New(io.Discard, "", 0))
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}
