package store

import (
	"context"

	"github.com/starford/quill/internal/models"
)

// NoteStore defines note persistence operations. Consumers that only read can
// depend on this interface rather than the concrete *Queries to facilitate
// testing with mocks.
type NoteStore interface {
	CreateNote(ctx context.Context, n *models.Note) error
	GetNote(ctx context.Context, id string) (*models.Note, error)
	GetNoteByPublicToken(ctx context.Context, token string) (*PublicNoteRow, error)
	UpdateNote(ctx context.Context, n *models.Note) error
	DeleteNote(ctx context.Context, id string) error
	ListNotesByOwner(ctx context.Context, ownerID string, f NoteFilter) ([]models.Note, int, error)
	SearchNotes(ctx context.Context, userID string, f SearchFilter) ([]models.Note, error)
}

// ShareStore defines share persistence operations.
type ShareStore interface {
	CreateShare(ctx context.Context, sh *models.Share) error
	GetShare(ctx context.Context, id string) (*models.Share, error)
	GetShareByNoteAndRecipient(ctx context.Context, noteID, recipientID string) (*models.Share, error)
	UpdateSharePermission(ctx context.Context, id string, p models.Permission) error
	DeleteShare(ctx context.Context, id string) error
	DeleteSharesByNote(ctx context.Context, noteID string) error
	CountSharesByNote(ctx context.Context, noteID string) (int, error)
	ListSharesByNote(ctx context.Context, noteID string, limit, offset int) ([]ShareWithRecipient, error)
	ListSharesByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]ReceivedShare, int, error)
}

// UserStore defines user persistence operations.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

// Verify *Queries satisfies the store contracts at compile time.
var (
	_ NoteStore  = (*Queries)(nil)
	_ ShareStore = (*Queries)(nil)
	_ UserStore  = (*Queries)(nil)
)
