// Package models defines the domain types for Quill.
package models

import "time"

// Visibility classifies who may see a note.
type Visibility string

// Visibility states. A note is created private unless the owner says otherwise.
const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
	VisibilityPublic  Visibility = "public"
)

// Valid reports whether v is one of the three recognized states.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return true
	}
	return false
}

// Permission is the capability a share grants its recipient.
type Permission string

// Share permissions.
const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// Valid reports whether p is a recognized permission literal.
func (p Permission) Valid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// User is a registered account. Email is unique across the system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Note is a text note owned by one user.
//
// PublicToken is non-empty exactly when Visibility is public; it is the opaque
// string that grants anonymous read access.
type Note struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Visibility  Visibility `json:"visibility"`
	PublicToken string     `json:"public_token,omitempty"`
	OwnerID     string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Share grants one recipient one permission on one note. At most one share
// exists per (note, recipient) pair, and the recipient is never the owner.
type Share struct {
	ID          string     `json:"id"`
	NoteID      string     `json:"note_id"`
	RecipientID string     `json:"recipient_id"`
	GrantedBy   string     `json:"granted_by"`
	Permission  Permission `json:"permission"`
	CreatedAt   time.Time  `json:"created_at"`
}
