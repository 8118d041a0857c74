// Package sqlite persists memories and chat history in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sandevgo/mnemo/pkg/log"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// WAL lets readers run next to the writer; immediate transactions take the
// write lock up front so read-modify-write cycles never interleave.
const dsnParams = "?_foreign_keys=1&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000"

func NewDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log.NewGooseLoggerFromCtx(ctx))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// Store bundles the repositories over one connection pool.
type Store struct {
	*MemoryRepo
	*HistoryRepo
	db *sql.DB
}

func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	db, err := NewDB(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{
		MemoryRepo:  NewMemoryRepo(db),
		HistoryRepo: NewHistoryRepo(db),
		db:          db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
