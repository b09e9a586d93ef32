package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

// NoteFilter narrows and pages owner note listings.
type NoteFilter struct {
	Visibility models.Visibility // empty means all
	Limit      int
	Offset     int
}

// SearchFilter narrows note searches. Query matches title, content, and tags
// as a substring; Tags matches any of the given tags; Visibility narrows to
// one state.
type SearchFilter struct {
	Query      string
	Tags       []string
	Visibility models.Visibility
	Limit      int
	Offset     int
}

// PublicNoteRow is a note joined with its author's display name, as returned
// by the public-token lookup.
type PublicNoteRow struct {
	Note       models.Note
	AuthorName string
}

// CreateNote inserts a new note.
func (q *Queries) CreateNote(ctx context.Context, n *models.Note) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, tags, visibility, public_token, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Content, encodeTags(n.Tags), n.Visibility, nullable(n.PublicToken), n.OwnerID, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: create note: %w", err)
	}
	return nil
}

// GetNote returns the note with the given id.
func (q *Queries) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return scanNote(q.db.QueryRowContext(ctx, `
		SELECT id, title, content, tags, visibility, public_token, user_id, created_at, updated_at
		FROM notes WHERE id = ?
	`, id))
}

// GetNoteByPublicToken resolves a public token to its note and author name.
// The visibility predicate makes a stale token fail even if the raw string is
// still present in storage.
func (q *Queries) GetNoteByPublicToken(ctx context.Context, token string) (*PublicNoteRow, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT n.id, n.title, n.content, n.tags, n.visibility, n.public_token, n.user_id,
		       n.created_at, n.updated_at, u.name
		FROM notes n
		JOIN users u ON n.user_id = u.id
		WHERE n.public_token = ? AND n.visibility = 'public'
	`, token)

	out := &PublicNoteRow{}
	var tags string
	var pubToken sql.NullString
	err := row.Scan(&out.Note.ID, &out.Note.Title, &out.Note.Content, &tags, &out.Note.Visibility,
		&pubToken, &out.Note.OwnerID, &out.Note.CreatedAt, &out.Note.UpdatedAt, &out.AuthorName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: note by public token: %w", err)
	}
	out.Note.Tags = decodeTags(tags)
	out.Note.PublicToken = pubToken.String
	return out, nil
}

// UpdateNote persists all mutable note fields, including visibility and the
// public token, in one statement.
func (q *Queries) UpdateNote(ctx context.Context, n *models.Note) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, tags = ?, visibility = ?, public_token = ?, updated_at = ?
		WHERE id = ?
	`, n.Title, n.Content, encodeTags(n.Tags), n.Visibility, nullable(n.PublicToken), n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	return nil
}

// DeleteNote removes a note row. Callers delete the note's shares in the same
// transaction (see noteservice.Delete).
func (q *Queries) DeleteNote(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	return nil
}

// ListNotesByOwner returns the owner's notes, newest-updated first, with the
// total count before paging.
func (q *Queries) ListNotesByOwner(ctx context.Context, ownerID string, f NoteFilter) ([]models.Note, int, error) {
	where := squirrel.And{squirrel.Eq{"user_id": ownerID}}
	if f.Visibility != "" {
		where = append(where, squirrel.Eq{"visibility": f.Visibility})
	}

	countSQL, countArgs, err := squirrel.Select("COUNT(*)").From("notes").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("store: build count query: %w", err)
	}
	var total int
	if err := q.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count notes: %w", err)
	}

	builder := squirrel.
		Select("id", "title", "content", "tags", "visibility", "public_token", "user_id", "created_at", "updated_at").
		From("notes").
		Where(where).
		OrderBy("updated_at DESC")
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}

	querySQL, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("store: build list query: %w", err)
	}
	rows, err := q.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		var tags string
		var pubToken sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &tags, &n.Visibility, &pubToken,
			&n.OwnerID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("store: scan note: %w", err)
		}
		n.Tags = decodeTags(tags)
		n.PublicToken = pubToken.String
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

// SearchNotes returns notes userID owns or has a share on, filtered by f,
// newest-updated first. The share join makes a note visible to its recipients
// without widening the scope beyond them.
func (q *Queries) SearchNotes(ctx context.Context, userID string, f SearchFilter) ([]models.Note, error) {
	builder := squirrel.
		Select("n.id", "n.title", "n.content", "n.tags", "n.visibility", "n.public_token",
			"n.user_id", "n.created_at", "n.updated_at").
		Distinct().
		From("notes n").
		LeftJoin("shares s ON n.id = s.note_id").
		Where(squirrel.Or{
			squirrel.Eq{"n.user_id": userID},
			squirrel.Eq{"s.recipient_id": userID},
		}).
		OrderBy("n.updated_at DESC")

	if f.Query != "" {
		term := "%" + f.Query + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.Like{"n.title": term},
			squirrel.Like{"n.content": term},
			squirrel.Like{"n.tags": term},
		})
	}
	if len(f.Tags) > 0 {
		or := squirrel.Or{}
		for _, tag := range f.Tags {
			or = append(or, squirrel.Like{"n.tags": "%" + tag + "%"})
		}
		builder = builder.Where(or)
	}
	if f.Visibility != "" {
		builder = builder.Where(squirrel.Eq{"n.visibility": f.Visibility})
	}
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}

	querySQL, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build search query: %w", err)
	}
	rows, err := q.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		var tags string
		var pubToken sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &tags, &n.Visibility, &pubToken,
			&n.OwnerID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		n.Tags = decodeTags(tags)
		n.PublicToken = pubToken.String
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanNote(row *sql.Row) (*models.Note, error) {
	n := &models.Note{}
	var tags string
	var pubToken sql.NullString
	err := row.Scan(&n.ID, &n.Title, &n.Content, &tags, &n.Visibility, &pubToken,
		&n.OwnerID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: scan note: %w", err)
	}
	n.Tags = decodeTags(tags)
	n.PublicToken = pubToken.String
	return n, nil
}

// Tags are []string in the domain and JSON text at the storage boundary.
func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// nullable maps the empty string to SQL NULL so the UNIQUE index on
// public_token only applies to issued tokens.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
