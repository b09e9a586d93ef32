package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

// CreateUser inserts a new user. A duplicate email yields apperr.ErrAlreadyExists.
func (q *Queries) CreateUser(ctx context.Context, u *models.User) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("store: user email %q: %w", u.Email, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given id.
func (q *Queries) GetUser(ctx context.Context, id string) (*models.User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users WHERE id = ?
	`, id))
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users WHERE email = ?
	`, email))
}

// UpdateUser persists mutable profile fields (name, email, credential).
func (q *Queries) UpdateUser(ctx context.Context, u *models.User) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET email = ?, name = ?, password_hash = ?, updated_at = ?
		WHERE id = ?
	`, u.Email, u.Name, u.PasswordHash, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("store: user email %q: %w", u.Email, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("store: update user: %w", err)
	}
	return nil
}

func (q *Queries) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: scan user: %w", err)
	}
	return u, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
