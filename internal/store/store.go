// Package store provides the SQLite-backed persistence layer for users, notes,
// and shares. All queries run through a Queries value so that the same methods
// work on the bare connection and inside a transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '[]',
	visibility   TEXT NOT NULL DEFAULT 'private' CHECK (visibility IN ('private', 'shared', 'public')),
	public_token TEXT UNIQUE,
	user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS shares (
	id           TEXT PRIMARY KEY,
	note_id      TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	recipient_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	granted_by   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	permission   TEXT NOT NULL DEFAULT 'read' CHECK (permission IN ('read', 'write')),
	created_at   DATETIME NOT NULL,
	UNIQUE (note_id, recipient_id)
);

CREATE INDEX IF NOT EXISTS idx_notes_user_id      ON notes(user_id);
CREATE INDEX IF NOT EXISTS idx_notes_public_token ON notes(public_token);
CREATE INDEX IF NOT EXISTS idx_shares_note_id     ON shares(note_id);
CREATE INDEX IF NOT EXISTS idx_shares_recipient   ON shares(recipient_id);
`

// dbtx is the subset of sql.DB and sql.Tx the queries need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds all store operations over a connection or transaction.
type Queries struct {
	db dbtx
}

// Store wraps a SQLite connection with the full query set.
type Store struct {
	Queries
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// WAL mode serializes conflicting writes while allowing concurrent reads.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{Queries: Queries{db: conn}, conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// WithTx runs fn inside a transaction. Every multi-record mutation (share plus
// visibility change, note plus cascaded shares) must go through here so partial
// application is never observable.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := fn(&Queries{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
