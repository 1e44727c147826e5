// Package db opens the chat database and keeps its schema migrated.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/go-libsql"
)

// Config holds connection settings for embedded files or remote libsql servers.
type Config struct {
	DSN       string // "file:./data/hchat.db" or "libsql://..."
	AuthToken string // remote only
}

// Connect opens the database, verifies it answers and applies pending migrations.
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*sql.DB, error) {
	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("dsn", redact(dsn)).Msg("Connecting to libsql")

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql connection: %w", err)
	}

	if err := verify(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	applied, err := Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info().Int("applied", applied).Msg("Database migrations up to date")

	return db, nil
}

// resolveDSN creates the directory for embedded databases and attaches the
// auth token to remote URLs.
func resolveDSN(cfg Config) (string, error) {
	if cfg.DSN == "" {
		return "", fmt.Errorf("database dsn is required")
	}

	if path, ok := strings.CutPrefix(cfg.DSN, "file:"); ok {
		path, _, _ = strings.Cut(path, "?")
		if path != "" && path != ":memory:" {
			dir := filepath.Dir(path)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("could not create database directory %s: %w", dir, err)
			}
		}
		return cfg.DSN, nil
	}

	if cfg.AuthToken == "" {
		return cfg.DSN, nil
	}

	u, err := url.Parse(cfg.DSN)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	q := u.Query()
	q.Set("authToken", cfg.AuthToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// verify runs a trivial query so a bad DSN fails at startup.
func verify(ctx context.Context, db *sql.DB) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("basic connectivity test failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("basic connectivity test failed: unexpected result %d", result)
	}
	return nil
}

func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || !u.Query().Has("authToken") {
		return dsn
	}
	q := u.Query()
	q.Set("authToken", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
