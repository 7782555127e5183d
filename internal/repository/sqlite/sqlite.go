// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver (no CGo, so cross-compilation stays
// painless and tests can run against ":memory:").
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath (":memory:" for tests) and runs
// migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and every pooled connection to
	// ":memory:" would otherwise get its own empty database. A single
	// connection serves both cases.
	conn.SetMaxOpenConns(1)

	// Force an immediate connection so a bad path surfaces here rather
	// than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight. The sync
	// pipeline and the follow mutator write independently, so this matters
	// even at small scale.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start.
//
// The profiles table is a document-style row: the repository snapshots,
// stats bundle and follow sets are JSON TEXT columns. They are read and
// replaced wholesale by their owning write path, never queried into, so a
// relational decomposition would buy nothing here.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			github_id    INTEGER NOT NULL UNIQUE,
			login        TEXT NOT NULL,
			email        TEXT NOT NULL DEFAULT '',
			avatar_url   TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL,
			updated_at   DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			user_id          TEXT PRIMARY KEY,
			bio              TEXT NOT NULL DEFAULT '',
			location         TEXT NOT NULL DEFAULT '',
			company          TEXT NOT NULL DEFAULT '',
			github_username  TEXT NOT NULL DEFAULT '',
			github_url       TEXT NOT NULL DEFAULT '',
			github_followers INTEGER NOT NULL DEFAULT 0,
			github_following INTEGER NOT NULL DEFAULT 0,
			github_repos     INTEGER NOT NULL DEFAULT 0,
			top_repositories TEXT NOT NULL DEFAULT '[]',
			all_repositories TEXT NOT NULL DEFAULT '[]',
			stats            TEXT NOT NULL DEFAULT '{}',
			followers        TEXT NOT NULL DEFAULT '[]',
			following        TEXT NOT NULL DEFAULT '[]',
			created_at       DATETIME NOT NULL,
			updated_at       DATETIME NOT NULL,
			last_github_sync DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_profiles_updated_at ON profiles(updated_at);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS activity_log (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			action     TEXT NOT NULL,
			details    TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_activity_user_created
			ON activity_log(user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating activity_log table: %w", err)
	}

	return nil
}
