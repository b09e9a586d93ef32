package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/store"
	"github.com/starford/quill/internal/testutil"
)

func TestNoteRoundTrip(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")

	note := testutil.SeedNote(t, st, owner.ID, "First", models.VisibilityPrivate)
	note.Tags = []string{"go", "notes"}
	if err := st.UpdateNote(ctx, note); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	got, err := st.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "First" || got.OwnerID != owner.ID {
		t.Errorf("note = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" {
		t.Errorf("tags = %v, want [go notes]", got.Tags)
	}
	if got.PublicToken != "" {
		t.Errorf("private note should have no token, got %q", got.PublicToken)
	}
}

func TestGetNote_Missing(t *testing.T) {
	st := testutil.TestStore(t)
	_, err := st.GetNote(context.Background(), uuid.NewString())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDuplicateEmail(t *testing.T) {
	st := testutil.TestStore(t)
	testutil.SeedUser(t, st, "Ada", "dup@example.com")

	now := time.Now().UTC()
	err := st.CreateUser(context.Background(), &models.User{
		ID: uuid.NewString(), Name: "Other", Email: "dup@example.com",
		PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestDuplicateShareConflicts(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	reader := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPrivate)

	mk := func() error {
		return st.CreateShare(ctx, &models.Share{
			ID: uuid.NewString(), NoteID: note.ID, RecipientID: reader.ID,
			GrantedBy: owner.ID, Permission: models.PermissionRead, CreatedAt: time.Now().UTC(),
		})
	}
	if err := mk(); err != nil {
		t.Fatalf("first share: %v", err)
	}
	if err := mk(); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("second share err = %v, want ErrConflict", err)
	}
}

func TestDeleteSharesByNote(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	r1 := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	r2 := testutil.SeedUser(t, st, "Cleo", "cleo@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityShared)

	for _, r := range []*models.User{r1, r2} {
		err := st.CreateShare(ctx, &models.Share{
			ID: uuid.NewString(), NoteID: note.ID, RecipientID: r.ID,
			GrantedBy: owner.ID, Permission: models.PermissionRead, CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	err := st.WithTx(ctx, func(q *store.Queries) error {
		if err := q.DeleteSharesByNote(ctx, note.ID); err != nil {
			return err
		}
		return q.DeleteNote(ctx, note.ID)
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	n, err := st.CountSharesByNote(ctx, note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("shares remaining = %d, want 0", n)
	}
	if _, err := st.GetNote(ctx, note.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("note err = %v, want ErrNotFound", err)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "Keep", models.VisibilityPrivate)

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(q *store.Queries) error {
		if err := q.DeleteNote(ctx, note.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	if _, err := st.GetNote(ctx, note.ID); err != nil {
		t.Errorf("note should survive rolled-back tx: %v", err)
	}
}

func TestListNotesByOwner_FilterAndPaging(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	other := testutil.SeedUser(t, st, "Bob", "bob@example.com")

	testutil.SeedNote(t, st, owner.ID, "p1", models.VisibilityPrivate)
	testutil.SeedNote(t, st, owner.ID, "p2", models.VisibilityPrivate)
	testutil.SeedNote(t, st, owner.ID, "pub", models.VisibilityPublic)
	testutil.SeedNote(t, st, other.ID, "not-mine", models.VisibilityPrivate)

	notes, total, err := st.ListNotesByOwner(ctx, owner.ID, store.NoteFilter{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(notes) != 3 {
		t.Errorf("total = %d, len = %d, want 3/3", total, len(notes))
	}

	notes, total, err = st.ListNotesByOwner(ctx, owner.ID, store.NoteFilter{
		Visibility: models.VisibilityPrivate, Limit: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("private total = %d, want 2", total)
	}
	if len(notes) != 1 {
		t.Errorf("page len = %d, want 1", len(notes))
	}
}

func TestSearchNotes_ScopeAndFilters(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	friend := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	stranger := testutil.SeedUser(t, st, "Eve", "eve@example.com")

	mine := testutil.SeedNote(t, st, owner.ID, "Groceries", models.VisibilityPrivate)
	mine.Tags = []string{"errands"}
	if err := st.UpdateNote(ctx, mine); err != nil {
		t.Fatal(err)
	}
	testutil.SeedNote(t, st, owner.ID, "Meeting notes", models.VisibilityPrivate)
	shared := testutil.SeedNote(t, st, friend.ID, "Shared groceries", models.VisibilityShared)
	testutil.SeedNote(t, st, stranger.ID, "Groceries too", models.VisibilityPrivate)

	err := st.CreateShare(ctx, &models.Share{
		ID: uuid.NewString(), NoteID: shared.ID, RecipientID: owner.ID,
		GrantedBy: friend.ID, Permission: models.PermissionRead, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Query matches both an owned and a received note; the stranger's note
	// never surfaces.
	notes, err := st.SearchNotes(ctx, owner.ID, store.SearchFilter{Query: "groceries", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(notes), notes)
	}
	for _, n := range notes {
		if n.Title == "Groceries too" {
			t.Error("search leaked an unrelated user's note")
		}
	}

	notes, err = st.SearchNotes(ctx, owner.ID, store.SearchFilter{Tags: []string{"errands"}, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].ID != mine.ID {
		t.Errorf("tag filter = %+v, want only %q", notes, mine.ID)
	}

	notes, err = st.SearchNotes(ctx, owner.ID, store.SearchFilter{Visibility: models.VisibilityShared, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].ID != shared.ID {
		t.Errorf("visibility filter = %+v, want only %q", notes, shared.ID)
	}
}

func TestSearchNotes_NoDuplicateRows(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	r1 := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	r2 := testutil.SeedUser(t, st, "Cleo", "cleo@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "Plan", models.VisibilityShared)

	// Multiple shares on the same note must not multiply the owner's result.
	for _, r := range []*models.User{r1, r2} {
		err := st.CreateShare(ctx, &models.Share{
			ID: uuid.NewString(), NoteID: note.ID, RecipientID: r.ID,
			GrantedBy: owner.ID, Permission: models.PermissionRead, CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	notes, err := st.SearchNotes(ctx, owner.ID, store.SearchFilter{Query: "plan", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Errorf("len = %d, want 1", len(notes))
	}
}

func TestGetNoteByPublicToken_VisibilityGate(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "Pub", models.VisibilityPublic)

	row, err := st.GetNoteByPublicToken(ctx, note.PublicToken)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row.Note.ID != note.ID || row.AuthorName != "Ada" {
		t.Errorf("row = %+v", row)
	}

	// Demote but leave the raw token in place: lookup must still fail.
	note.Visibility = models.VisibilityShared
	if err := st.UpdateNote(ctx, note); err != nil {
		t.Fatal(err)
	}
	if _, err := st.GetNoteByPublicToken(ctx, note.PublicToken); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale token err = %v, want ErrNotFound", err)
	}
}

func TestListSharesByRecipient(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	recipient := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	n1 := testutil.SeedNote(t, st, owner.ID, "A", models.VisibilityShared)
	n2 := testutil.SeedNote(t, st, owner.ID, "B", models.VisibilityShared)

	for i, n := range []*models.Note{n1, n2} {
		err := st.CreateShare(ctx, &models.Share{
			ID: uuid.NewString(), NoteID: n.ID, RecipientID: recipient.ID,
			GrantedBy: owner.ID, Permission: models.PermissionRead,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	rows, total, err := st.ListSharesByRecipient(ctx, recipient.ID, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("total = %d, len = %d, want 2/2", total, len(rows))
	}
	if rows[0].GrantedByName != "Ada" {
		t.Errorf("granted by = %q, want Ada", rows[0].GrantedByName)
	}
	// Newest first.
	if rows[0].Note.Title != "B" {
		t.Errorf("first note = %q, want B", rows[0].Note.Title)
	}
}
