// Package testutil provides shared test helpers for setting up stores and
// fixture data.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically cleaned up.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "quill-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// SeedUser inserts a user with a throwaway credential hash and returns it.
func SeedUser(t *testing.T, st *store.Store, name, email string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

// SeedNote inserts a note owned by ownerID and returns it.
func SeedNote(t *testing.T, st *store.Store, ownerID, title string, vis models.Visibility) *models.Note {
	t.Helper()
	now := time.Now().UTC()
	n := &models.Note{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    "content of " + title,
		Tags:       []string{},
		Visibility: vis,
		OwnerID:    ownerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if vis == models.VisibilityPublic {
		n.PublicToken = uuid.NewString()
	}
	if err := st.CreateNote(context.Background(), n); err != nil {
		t.Fatalf("seed note %s: %v", title, err)
	}
	return n
}
