// Package shareservice orchestrates share creation, revocation, and
// permission changes, keeping note visibility consistent with share records.
package shareservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/store"
	"github.com/starford/quill/internal/visibility"
)

// ShareDetail is a freshly created share together with the recipient's
// identity, for the owner's confirmation response.
type ShareDetail struct {
	Share          models.Share
	RecipientName  string
	RecipientEmail string
}

// Service mutates shares and applies the visibility coupling atomically with
// each share mutation.
type Service struct {
	store *store.Store
	vis   *visibility.Machine
}

// NewService creates a new sharing service.
func NewService(st *store.Store, vis *visibility.Machine) *Service {
	return &Service{store: st, vis: vis}
}

// Create shares a note with the user holding recipientEmail. Only the note's
// owner may share; sharing with oneself is invalid; a second share for the
// same pair conflicts. The first share on a private note promotes it to
// shared in the same transaction.
func (s *Service) Create(ctx context.Context, noteID, ownerID, recipientEmail string, perm models.Permission) (*ShareDetail, error) {
	if !perm.Valid() {
		return nil, fmt.Errorf("permission %q: %w", perm, apperr.ErrInvalid)
	}

	var detail *ShareDetail
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		note, err := q.GetNote(ctx, noteID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.ErrForbidden
			}
			return err
		}
		if note.OwnerID != ownerID {
			return apperr.ErrForbidden
		}

		recipient, err := q.GetUserByEmail(ctx, recipientEmail)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("recipient %q: %w", recipientEmail, apperr.ErrNotFound)
			}
			return err
		}
		if recipient.ID == ownerID {
			return fmt.Errorf("cannot share a note with yourself: %w", apperr.ErrInvalid)
		}

		if _, err := q.GetShareByNoteAndRecipient(ctx, noteID, recipient.ID); err == nil {
			return fmt.Errorf("note already shared with %q: %w", recipientEmail, apperr.ErrConflict)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		share := models.Share{
			ID:          uuid.NewString(),
			NoteID:      noteID,
			RecipientID: recipient.ID,
			GrantedBy:   ownerID,
			Permission:  perm,
			CreatedAt:   time.Now().UTC(),
		}
		if err := q.CreateShare(ctx, &share); err != nil {
			return err
		}

		if s.vis.PromoteOnShare(note) {
			note.UpdatedAt = time.Now().UTC()
			if err := q.UpdateNote(ctx, note); err != nil {
				return err
			}
		}

		detail = &ShareDetail{
			Share:          share,
			RecipientName:  recipient.Name,
			RecipientEmail: recipient.Email,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Revoke deletes a share. Allowed for the note's owner and for the share's
// recipient (self-revocation). Removing the last share from a shared note
// demotes it to private in the same transaction.
func (s *Service) Revoke(ctx context.Context, shareID, actingUserID string) error {
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		share, err := q.GetShare(ctx, shareID)
		if err != nil {
			return err
		}
		note, err := q.GetNote(ctx, share.NoteID)
		if err != nil {
			return err
		}
		if actingUserID != note.OwnerID && actingUserID != share.RecipientID {
			return apperr.ErrForbidden
		}

		if err := q.DeleteShare(ctx, shareID); err != nil {
			return err
		}
		remaining, err := q.CountSharesByNote(ctx, share.NoteID)
		if err != nil {
			return err
		}
		if s.vis.DemoteOnRevoke(note, remaining) {
			note.UpdatedAt = time.Now().UTC()
			return q.UpdateNote(ctx, note)
		}
		return nil
	})
}

// ChangePermission updates a share's permission in place; the share keeps its
// identifier. Only the note's owner may change permissions.
func (s *Service) ChangePermission(ctx context.Context, shareID, ownerID string, perm models.Permission) (*models.Share, error) {
	if !perm.Valid() {
		return nil, fmt.Errorf("permission %q: %w", perm, apperr.ErrInvalid)
	}

	var updated *models.Share
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		share, err := q.GetShare(ctx, shareID)
		if err != nil {
			return err
		}
		note, err := q.GetNote(ctx, share.NoteID)
		if err != nil {
			return err
		}
		if note.OwnerID != ownerID {
			return apperr.ErrForbidden
		}
		if err := q.UpdateSharePermission(ctx, shareID, perm); err != nil {
			return err
		}
		share.Permission = perm
		updated = share
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListForNote returns a note's shares with recipient identities. Owner only.
func (s *Service) ListForNote(ctx context.Context, noteID, ownerID string, limit, offset int) ([]store.ShareWithRecipient, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrForbidden
		}
		return nil, err
	}
	if note.OwnerID != ownerID {
		return nil, apperr.ErrForbidden
	}
	return s.store.ListSharesByNote(ctx, noteID, limit, offset)
}

// ListReceived returns the shares granted to recipientID, newest first.
func (s *Service) ListReceived(ctx context.Context, recipientID string, limit, offset int) ([]store.ReceivedShare, int, error) {
	return s.store.ListSharesByRecipient(ctx, recipientID, limit, offset)
}
