// Package noteservice implements access-controlled note CRUD and the
// anonymous public-token read path.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quill/internal/access"
	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/store"
	"github.com/starford/quill/internal/visibility"
)

// OwnerOnlyVisibility controls whether a write-permission recipient may change
// a note's visibility. When true, visibility (and therefore public-token
// issuance) stays under the owner's control.
const OwnerOnlyVisibility = true

// CreateInput carries the fields for a new note.
type CreateInput struct {
	Title      string
	Content    string
	Tags       []string
	Visibility models.Visibility // empty defaults to private
}

// UpdateInput carries a partial note update. Nil pointers leave the field
// unchanged; nil Tags keeps the existing tags.
type UpdateInput struct {
	Title      *string
	Content    *string
	Tags       []string
	Visibility *models.Visibility
}

// PublicNote is the reduced projection served to anonymous readers. It never
// carries the owner's identifier, email, credential, or share list.
type PublicNote struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates the note store, the access resolver, and the visibility
// state machine.
type Service struct {
	store    *store.Store
	resolver *access.Resolver
	vis      *visibility.Machine
}

// NewService creates a new note service.
func NewService(st *store.Store, resolver *access.Resolver, vis *visibility.Machine) *Service {
	return &Service{store: st, resolver: resolver, vis: vis}
}

// Create stores a new note owned by ownerID. An invalid visibility literal is
// rejected; creating a public note issues its token immediately.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Note, error) {
	vis := in.Visibility
	if vis == "" {
		vis = models.VisibilityPrivate
	}
	now := time.Now().UTC()
	note := &models.Note{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.vis.Set(note, vis); err != nil {
		return nil, err
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Get returns the note together with the requester's resolved permission.
// A missing note and a note the requester cannot see both come back as
// ErrForbidden so unauthorized callers cannot probe for existence.
func (s *Service) Get(ctx context.Context, noteID, userID string) (*models.Note, access.Level, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, access.LevelNone, apperr.ErrForbidden
		}
		return nil, access.LevelNone, err
	}
	lvl, err := s.resolver.ResolveNote(ctx, note, userID)
	if err != nil {
		return nil, access.LevelNone, err
	}
	if !lvl.CanRead() {
		return nil, access.LevelNone, apperr.ErrForbidden
	}
	return note, lvl, nil
}

// Update applies a partial update. Requires write or owner access; visibility
// changes additionally require ownership (see OwnerOnlyVisibility).
func (s *Service) Update(ctx context.Context, noteID, userID string, in UpdateInput) (*models.Note, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrForbidden
		}
		return nil, err
	}
	lvl, err := s.resolver.ResolveNote(ctx, note, userID)
	if err != nil {
		return nil, err
	}
	if !lvl.CanWrite() {
		return nil, apperr.ErrForbidden
	}

	if in.Visibility != nil {
		if OwnerOnlyVisibility && lvl != access.LevelOwner {
			return nil, fmt.Errorf("visibility is owner-only: %w", apperr.ErrForbidden)
		}
		if err := s.vis.Set(note, *in.Visibility); err != nil {
			return nil, err
		}
	}
	if in.Title != nil {
		note.Title = *in.Title
	}
	if in.Content != nil {
		note.Content = *in.Content
	}
	if in.Tags != nil {
		note.Tags = in.Tags
	}
	note.UpdatedAt = time.Now().UTC()

	// Visibility and public_token live on the same row, so one statement
	// keeps the token invariant atomic.
	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note and all its shares in one transaction. Owner only.
func (s *Service) Delete(ctx context.Context, noteID, userID string) error {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrForbidden
		}
		return err
	}
	if note.OwnerID != userID {
		return apperr.ErrForbidden
	}
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.DeleteSharesByNote(ctx, noteID); err != nil {
			return err
		}
		return q.DeleteNote(ctx, noteID)
	})
}

// List returns the owner's notes with an optional visibility filter.
func (s *Service) List(ctx context.Context, ownerID string, f store.NoteFilter) ([]models.Note, int, error) {
	if f.Visibility != "" && !f.Visibility.Valid() {
		return nil, 0, fmt.Errorf("visibility %q: %w", f.Visibility, apperr.ErrInvalid)
	}
	return s.store.ListNotesByOwner(ctx, ownerID, f)
}

// Search returns notes the user owns or has a share on, matching the filter.
// The share join already bounds the scope to the requester, so no further
// access check is needed per result.
func (s *Service) Search(ctx context.Context, userID string, f store.SearchFilter) ([]models.Note, error) {
	if f.Visibility != "" && !f.Visibility.Valid() {
		return nil, fmt.Errorf("visibility %q: %w", f.Visibility, apperr.ErrInvalid)
	}
	return s.store.SearchNotes(ctx, userID, f)
}

// GetPublic resolves a public token to its reduced projection. The lookup
// fails once the note has left public, even though the token string may still
// be present in storage.
func (s *Service) GetPublic(ctx context.Context, token string) (*PublicNote, error) {
	row, err := s.store.GetNoteByPublicToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &PublicNote{
		Title:     row.Note.Title,
		Content:   row.Note.Content,
		Tags:      row.Note.Tags,
		Author:    row.AuthorName,
		CreatedAt: row.Note.CreatedAt,
		UpdatedAt: row.Note.UpdatedAt,
	}, nil
}
