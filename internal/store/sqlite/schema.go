package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS grains (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		package_id TEXT NOT NULL,
		app_id TEXT NOT NULL,
		title TEXT NOT NULL,
		created_at_unixms INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_grains_user ON grains(user_id);`,
	`CREATE TABLE IF NOT EXISTS packages (
		id TEXT PRIMARY KEY,
		app_id TEXT NOT NULL,
		manifest_json TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS api_tokens (
		id TEXT PRIMARY KEY,
		grain_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		object_id TEXT NOT NULL,
		owner_user_id TEXT NOT NULL,
		owner_json TEXT,
		created_at_unixms INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_api_tokens_owner ON api_tokens(grain_id, owner_user_id, created_at_unixms);`,
	`CREATE INDEX IF NOT EXISTS idx_api_tokens_issuer ON api_tokens(user_id, owner_user_id);`,
	`CREATE TABLE IF NOT EXISTS token_info (
		token TEXT PRIMARY KEY,
		json TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		grain_id TEXT NOT NULL,
		host_id TEXT NOT NULL,
		has_loaded INTEGER NOT NULL,
		view_info_json TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS grain_sizes (
		session_id TEXT PRIMARY KEY,
		size INTEGER NOT NULL
	);`,
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA busy_timeout=5000;",
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES('schema_version', ?)`, fmt.Sprint(schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}
