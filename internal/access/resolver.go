// Package access computes a requester's permission level on a note. It is the
// single source of truth for permission checks; every entry point calls
// through here instead of re-deriving the rules.
package access

import (
	"context"
	"errors"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

// Level is a requester's resolved permission on a note.
type Level string

// Permission levels, strongest first. Owner implies full write access.
const (
	LevelOwner Level = "owner"
	LevelWrite Level = "write"
	LevelRead  Level = "read"
	LevelNone  Level = "none"
)

// CanWrite reports whether the level permits mutating the note.
func (l Level) CanWrite() bool {
	return l == LevelOwner || l == LevelWrite
}

// CanRead reports whether the level permits reading the note.
func (l Level) CanRead() bool {
	return l != LevelNone
}

// Store is the subset of the persistence layer the resolver consults.
type Store interface {
	GetNote(ctx context.Context, id string) (*models.Note, error)
	GetShareByNoteAndRecipient(ctx context.Context, noteID, recipientID string) (*models.Share, error)
}

// Resolver resolves permission levels against the store. It is a pure reader;
// it never mutates state.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver over the given store.
func NewResolver(s Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve returns the permission level userID holds on noteID. A missing note
// resolves to LevelNone rather than an error: callers outside the trust
// boundary must not be able to distinguish "does not exist" from "no access".
func (r *Resolver) Resolve(ctx context.Context, noteID, userID string) (Level, error) {
	note, err := r.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return LevelNone, nil
		}
		return LevelNone, err
	}
	return r.ResolveNote(ctx, note, userID)
}

// ResolveNote resolves the level for an already-loaded note. The owner always
// holds LevelOwner regardless of share records.
func (r *Resolver) ResolveNote(ctx context.Context, note *models.Note, userID string) (Level, error) {
	if note.OwnerID == userID {
		return LevelOwner, nil
	}
	share, err := r.store.GetShareByNoteAndRecipient(ctx, note.ID, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return LevelNone, nil
		}
		return LevelNone, err
	}
	if share.Permission == models.PermissionWrite {
		return LevelWrite, nil
	}
	return LevelRead, nil
}
