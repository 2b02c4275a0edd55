package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/studyshare/studyshare-client/internal/client/migrations"
	"github.com/studyshare/studyshare-client/internal/client/repositories/tokens"

	_ "modernc.org/sqlite"
)

// Repositories groups the local stores backed by the client database.
type Repositories struct {
	Tokens tokens.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Tokens: tokens.NewSQLiteRepository(db),
	}
}

// RunMigrations applies the embedded goose migrations. Already applied
// versions are skipped.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens the SQLite database at dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
