package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quill/internal/access"
	"github.com/starford/quill/internal/models"
)

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the registration payload.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login payload.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthResponse carries a signed token and the account it belongs to.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// CreateNoteRequest is the request body for POST /notes.
type CreateNoteRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Visibility string   `json:"visibility"`
}

// Validate validates the note creation payload. Visibility may be omitted;
// when present it must be one of the three literals.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Visibility, validation.In(
			string(models.VisibilityPrivate), string(models.VisibilityShared), string(models.VisibilityPublic))),
	)
}

// UpdateNoteRequest is the request body for PUT /notes/{id}. Absent fields
// are left unchanged.
type UpdateNoteRequest struct {
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	Tags       []string `json:"tags"`
	Visibility *string  `json:"visibility"`
}

// Validate validates the note update payload.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 200)),
		validation.Field(&r.Visibility, validation.In(
			string(models.VisibilityPrivate), string(models.VisibilityShared), string(models.VisibilityPublic))),
	)
}

// NoteResponse is a note together with the requester's resolved permission.
type NoteResponse struct {
	Note       models.Note  `json:"note"`
	Permission access.Level `json:"permission"`
}

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

// SearchNotesResponse wraps search results together with the query that
// produced them.
type SearchNotesResponse struct {
	Notes []models.Note `json:"notes"`
	Query string        `json:"query"`
}

// CreateShareRequest is the request body for POST /notes/{id}/shares.
// Permission defaults to read.
type CreateShareRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

// Validate validates the share creation payload.
func (r CreateShareRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Permission, validation.In(
			string(models.PermissionRead), string(models.PermissionWrite))),
	)
}

// UpdateShareRequest is the request body for PUT /shares/{id}.
type UpdateShareRequest struct {
	Permission string `json:"permission"`
}

// Validate validates the permission change payload.
func (r UpdateShareRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Permission, validation.Required, validation.In(
			string(models.PermissionRead), string(models.PermissionWrite))),
	)
}

// ShareUser identifies one side of a share in responses.
type ShareUser struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ShareResponse is one share in owner-facing listings and creation responses.
type ShareResponse struct {
	ID         string            `json:"id"`
	NoteID     string            `json:"note_id"`
	Recipient  ShareUser         `json:"recipient"`
	Permission models.Permission `json:"permission"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ReceivedShareResponse is one entry in the recipient's inbox.
type ReceivedShareResponse struct {
	ID         string            `json:"id"`
	Note       models.Note       `json:"note"`
	SharedBy   ShareUser         `json:"shared_by"`
	Permission models.Permission `json:"permission"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ReceivedShareListResponse wraps the paginated inbox.
type ReceivedShareListResponse struct {
	Shares []ReceivedShareResponse `json:"shares"`
	Total  int                     `json:"total"`
}
