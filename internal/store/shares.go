package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

// ShareWithRecipient is a share joined with the recipient's identity, for the
// owner-facing share list.
type ShareWithRecipient struct {
	Share          models.Share
	RecipientName  string
	RecipientEmail string
}

// ReceivedShare is a share joined with its note and the granting user's name,
// for the recipient's inbox.
type ReceivedShare struct {
	Share         models.Share
	Note          models.Note
	GrantedByName string
}

// CreateShare inserts a new share. A second share for the same (note,
// recipient) pair yields apperr.ErrConflict.
func (q *Queries) CreateShare(ctx context.Context, sh *models.Share) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO shares (id, note_id, recipient_id, granted_by, permission, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sh.ID, sh.NoteID, sh.RecipientID, sh.GrantedBy, sh.Permission, sh.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("store: share for note %q: %w", sh.NoteID, apperr.ErrConflict)
		}
		return fmt.Errorf("store: create share: %w", err)
	}
	return nil
}

// GetShare returns the share with the given id.
func (q *Queries) GetShare(ctx context.Context, id string) (*models.Share, error) {
	return scanShare(q.db.QueryRowContext(ctx, `
		SELECT id, note_id, recipient_id, granted_by, permission, created_at
		FROM shares WHERE id = ?
	`, id))
}

// GetShareByNoteAndRecipient returns the share for a (note, recipient) pair.
func (q *Queries) GetShareByNoteAndRecipient(ctx context.Context, noteID, recipientID string) (*models.Share, error) {
	return scanShare(q.db.QueryRowContext(ctx, `
		SELECT id, note_id, recipient_id, granted_by, permission, created_at
		FROM shares WHERE note_id = ? AND recipient_id = ?
	`, noteID, recipientID))
}

// UpdateSharePermission changes a share's permission in place; the share keeps
// its identity.
func (q *Queries) UpdateSharePermission(ctx context.Context, id string, p models.Permission) error {
	if _, err := q.db.ExecContext(ctx, `UPDATE shares SET permission = ? WHERE id = ?`, p, id); err != nil {
		return fmt.Errorf("store: update share permission: %w", err)
	}
	return nil
}

// DeleteShare removes one share row.
func (q *Queries) DeleteShare(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM shares WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete share: %w", err)
	}
	return nil
}

// DeleteSharesByNote removes every share of a note. Runs alongside note
// deletion in the same transaction so no orphan share survives.
func (q *Queries) DeleteSharesByNote(ctx context.Context, noteID string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM shares WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("store: delete shares by note: %w", err)
	}
	return nil
}

// CountSharesByNote returns how many shares a note currently has.
func (q *Queries) CountSharesByNote(ctx context.Context, noteID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shares WHERE note_id = ?`, noteID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count shares: %w", err)
	}
	return n, nil
}

// ListSharesByNote returns a note's shares with recipient identities,
// newest first.
func (q *Queries) ListSharesByNote(ctx context.Context, noteID string, limit, offset int) ([]ShareWithRecipient, error) {
	builder := squirrel.
		Select("s.id", "s.note_id", "s.recipient_id", "s.granted_by", "s.permission", "s.created_at",
			"u.name", "u.email").
		From("shares s").
		Join("users u ON s.recipient_id = u.id").
		Where(squirrel.Eq{"s.note_id": noteID}).
		OrderBy("s.created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit)).Offset(uint64(offset))
	}
	querySQL, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build share list query: %w", err)
	}

	rows, err := q.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list shares by note: %w", err)
	}
	defer rows.Close()

	out := []ShareWithRecipient{}
	for rows.Next() {
		var r ShareWithRecipient
		if err := rows.Scan(&r.Share.ID, &r.Share.NoteID, &r.Share.RecipientID, &r.Share.GrantedBy,
			&r.Share.Permission, &r.Share.CreatedAt, &r.RecipientName, &r.RecipientEmail); err != nil {
			return nil, fmt.Errorf("store: scan share: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListSharesByRecipient returns the shares granted to a user together with
// their notes and the total count before paging.
func (q *Queries) ListSharesByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]ReceivedShare, int, error) {
	var total int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shares WHERE recipient_id = ?`, recipientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("store: count received shares: %w", err)
	}

	builder := squirrel.
		Select("s.id", "s.note_id", "s.recipient_id", "s.granted_by", "s.permission", "s.created_at",
			"n.id", "n.title", "n.content", "n.tags", "n.visibility", "n.user_id", "n.created_at", "n.updated_at",
			"u.name").
		From("shares s").
		Join("notes n ON s.note_id = n.id").
		Join("users u ON s.granted_by = u.id").
		Where(squirrel.Eq{"s.recipient_id": recipientID}).
		OrderBy("s.created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit)).Offset(uint64(offset))
	}
	querySQL, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("store: build received query: %w", err)
	}

	rows, err := q.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list received shares: %w", err)
	}
	defer rows.Close()

	out := []ReceivedShare{}
	for rows.Next() {
		var r ReceivedShare
		var tags string
		if err := rows.Scan(&r.Share.ID, &r.Share.NoteID, &r.Share.RecipientID, &r.Share.GrantedBy,
			&r.Share.Permission, &r.Share.CreatedAt,
			&r.Note.ID, &r.Note.Title, &r.Note.Content, &tags, &r.Note.Visibility,
			&r.Note.OwnerID, &r.Note.CreatedAt, &r.Note.UpdatedAt,
			&r.GrantedByName); err != nil {
			return nil, 0, fmt.Errorf("store: scan received share: %w", err)
		}
		r.Note.Tags = decodeTags(tags)
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func scanShare(row *sql.Row) (*models.Share, error) {
	sh := &models.Share{}
	err := row.Scan(&sh.ID, &sh.NoteID, &sh.RecipientID, &sh.GrantedBy, &sh.Permission, &sh.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: scan share: %w", err)
	}
	return sh, nil
}
