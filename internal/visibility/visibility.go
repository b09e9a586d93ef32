// Package visibility governs a note's visibility state and its coupling to
// share records and the anonymous public token.
package visibility

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

// TokenManager issues and revokes the anonymous-access token tied to public
// visibility.
type TokenManager struct {
	newToken func() string
}

// NewTokenManager creates a TokenManager backed by random UUID tokens.
func NewTokenManager() *TokenManager {
	return &TokenManager{newToken: uuid.NewString}
}

// Issue ensures the note carries a public token and returns it. Issuing on a
// note that already has one keeps the existing token; it is never rotated
// while visibility stays public.
func (tm *TokenManager) Issue(n *models.Note) string {
	if n.PublicToken == "" {
		n.PublicToken = tm.newToken()
	}
	return n.PublicToken
}

// Revoke clears the note's public token.
func (tm *TokenManager) Revoke(n *models.Note) {
	n.PublicToken = ""
}

// Machine applies visibility transitions and keeps the public token
// consistent: token present if and only if visibility is public.
type Machine struct {
	tokens *TokenManager
}

// NewMachine creates a Machine using the given token manager.
func NewMachine(tm *TokenManager) *Machine {
	return &Machine{tokens: tm}
}

// Set moves the note to the requested visibility. Entering public issues a
// token; any other state clears it.
func (m *Machine) Set(n *models.Note, next models.Visibility) error {
	if !next.Valid() {
		return fmt.Errorf("visibility %q: %w", next, apperr.ErrInvalid)
	}
	n.Visibility = next
	if next == models.VisibilityPublic {
		m.tokens.Issue(n)
	} else {
		m.tokens.Revoke(n)
	}
	return nil
}

// PromoteOnShare applies the coupled policy when a share is created: the first
// share on a private note promotes it to shared. Returns true when the note
// changed. A public note is never touched.
func (m *Machine) PromoteOnShare(n *models.Note) bool {
	if n.Visibility != models.VisibilityPrivate {
		return false
	}
	n.Visibility = models.VisibilityShared
	return true
}

// DemoteOnRevoke applies the coupled policy when a share is revoked: removing
// the last share from a shared note demotes it to private. Returns true when
// the note changed. An explicitly public note is never silently downgraded.
func (m *Machine) DemoteOnRevoke(n *models.Note, remaining int) bool {
	if remaining > 0 || n.Visibility != models.VisibilityShared {
		return false
	}
	n.Visibility = models.VisibilityPrivate
	return true
}
