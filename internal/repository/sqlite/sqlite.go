// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// SQLite is an embedded database — it lives inside the Go binary as a single
// file, which is all a personal movie collection needs. We use
// modernc.org/sqlite, a pure Go translation of SQLite: no CGo, no C compiler,
// cross-compiles anywhere Go does. Tests run against ":memory:".
//
// Every mutating operation that touches more than one row (adding a movie to
// a list, deleting a user, removing the last link to a movie) runs inside a
// single transaction: either all of its changes land or none do.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// One value implements both repository.UserRepository and
// repository.MovieRepository — the tables are too entangled (cascades,
// shared movie rows) to split the implementation.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/movies.db" → file-based, persistent
//   - ":memory:"       → in-memory, gone on close (used by tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces a real connection now, so a bad path or permissions
	// problem surfaces at startup instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// needed once multiple HTTP requests share this pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The user_movies table
	// references both user and movies, so we need them enforced.
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

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// The two UNIQUE constraints carry real invariants:
//   - user.name       — one account per name, enforced by the engine so the
//     guarantee holds even if two requests race past the service pre-check
//   - movies.title    — a title maps to exactly one row; users share it
//
// UNIQUE(user_id, movie_id) on user_movies makes "at most one link per pair"
// a schema fact rather than an application promise.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating user table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS movies (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL UNIQUE,
			director   TEXT NOT NULL DEFAULT '',
			year       INTEGER NOT NULL DEFAULT 0,
			rating     REAL,
			poster     TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating movies table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_movies (
			id       TEXT PRIMARY KEY,
			user_id  TEXT NOT NULL REFERENCES user(id),
			movie_id TEXT NOT NULL REFERENCES movies(id),
			UNIQUE(user_id, movie_id)
		);
		CREATE INDEX IF NOT EXISTS idx_user_movies_user_id  ON user_movies(user_id);
		CREATE INDEX IF NOT EXISTS idx_user_movies_movie_id ON user_movies(movie_id);
	`)
	if err != nil {
		return fmt.Errorf("creating user_movies table: %w", err)
	}

	return nil
}

// withTx runs fn inside a transaction. Commit on nil, rollback on error —
// including a panic inside fn, which the deferred Rollback still covers.
// Rollback after a successful Commit is a no-op, so the defer is safe on
// every exit path.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}
