package shareservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/shareservice"
	"github.com/starford/quill/internal/store"
	"github.com/starford/quill/internal/testutil"
	"github.com/starford/quill/internal/visibility"
)

func newService(st *store.Store) *shareservice.Service {
	return shareservice.NewService(st, visibility.NewMachine(visibility.NewTokenManager()))
}

func TestCreate_PromotesPrivateToShared(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	recipient := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPrivate)

	svc := newService(st)
	detail, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.PermissionRead)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if detail.Share.RecipientID != recipient.ID || detail.RecipientName != "Bob" {
		t.Errorf("detail = %+v", detail)
	}

	got, err := st.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Visibility != models.VisibilityShared {
		t.Errorf("visibility = %q, want shared", got.Visibility)
	}
}

func TestCreate_PublicNoteStaysPublic(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	recipient := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPublic)

	svc := newService(st)
	if _, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.PermissionRead); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := st.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Visibility != models.VisibilityPublic {
		t.Errorf("visibility = %q, want public", got.Visibility)
	}
	if got.PublicToken == "" {
		t.Error("public token must survive sharing")
	}
}

func TestCreate_Rejections(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	recipient := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	outsider := testutil.SeedUser(t, st, "Eve", "eve@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPrivate)

	svc := newService(st)

	if _, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.Permission("admin")); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad permission err = %v, want ErrInvalid", err)
	}
	if _, err := svc.Create(ctx, note.ID, outsider.ID, recipient.Email, models.PermissionRead); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-owner err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Create(ctx, uuid.NewString(), owner.ID, recipient.Email, models.PermissionRead); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("missing note err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Create(ctx, note.ID, owner.ID, "nobody@example.com", models.PermissionRead); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown recipient err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Create(ctx, note.ID, owner.ID, owner.Email, models.PermissionRead); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("self-share err = %v, want ErrInvalid", err)
	}

	if _, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.PermissionRead); err != nil {
		t.Fatalf("first share: %v", err)
	}
	if _, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.PermissionWrite); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate share err = %v, want ErrConflict", err)
	}
}

func TestRevoke_LastShareDemotes(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	r1 := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	r2 := testutil.SeedUser(t, st, "Cleo", "cleo@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPrivate)

	svc := newService(st)
	d1, err := svc.Create(ctx, note.ID, owner.ID, r1.Email, models.PermissionRead)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := svc.Create(ctx, note.ID, owner.ID, r2.Email, models.PermissionRead)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Revoke(ctx, d1.Share.ID, owner.ID); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	got, _ := st.GetNote(ctx, note.ID)
	if got.Visibility != models.VisibilityShared {
		t.Errorf("visibility after partial revoke = %q, want shared", got.Visibility)
	}

	// Recipient revokes their own share.
	if err := svc.Revoke(ctx, d2.Share.ID, r2.ID); err != nil {
		t.Fatalf("self revoke: %v", err)
	}
	got, _ = st.GetNote(ctx, note.ID)
	if got.Visibility != models.VisibilityPrivate {
		t.Errorf("visibility after last revoke = %q, want private", got.Visibility)
	}
}

func TestRevoke_PublicNoteNotDemoted(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	recipient := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPublic)

	svc := newService(st)
	detail, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.PermissionRead)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Revoke(ctx, detail.Share.ID, owner.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := st.GetNote(ctx, note.ID)
	if got.Visibility != models.VisibilityPublic || got.PublicToken == "" {
		t.Errorf("public note changed by revoke: %+v", got)
	}
}

func TestRevoke_Unauthorized(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	recipient := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	outsider := testutil.SeedUser(t, st, "Eve", "eve@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPrivate)

	svc := newService(st)
	detail, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.PermissionRead)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Revoke(ctx, detail.Share.ID, outsider.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("outsider revoke err = %v, want ErrForbidden", err)
	}
	if err := svc.Revoke(ctx, uuid.NewString(), owner.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing share err = %v, want ErrNotFound", err)
	}
}

func TestChangePermission_InPlace(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	recipient := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPrivate)

	svc := newService(st)
	detail, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.PermissionRead)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.ChangePermission(ctx, detail.Share.ID, owner.ID, models.PermissionWrite)
	if err != nil {
		t.Fatalf("ChangePermission: %v", err)
	}
	if updated.ID != detail.Share.ID {
		t.Errorf("share ID changed: %q -> %q", detail.Share.ID, updated.ID)
	}
	if updated.Permission != models.PermissionWrite {
		t.Errorf("permission = %q, want write", updated.Permission)
	}

	// Recipient cannot escalate their own grant.
	if _, err := svc.ChangePermission(ctx, detail.Share.ID, recipient.ID, models.PermissionWrite); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("recipient change err = %v, want ErrForbidden", err)
	}
}

func TestListForNote_OwnerOnly(t *testing.T) {
	st := testutil.TestStore(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "Ada", "ada@example.com")
	recipient := testutil.SeedUser(t, st, "Bob", "bob@example.com")
	note := testutil.SeedNote(t, st, owner.ID, "N", models.VisibilityPrivate)

	svc := newService(st)
	if _, err := svc.Create(ctx, note.ID, owner.ID, recipient.Email, models.PermissionRead); err != nil {
		t.Fatal(err)
	}

	rows, err := svc.ListForNote(ctx, note.ID, owner.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListForNote: %v", err)
	}
	if len(rows) != 1 || rows[0].RecipientEmail != recipient.Email {
		t.Errorf("rows = %+v", rows)
	}

	if _, err := svc.ListForNote(ctx, note.ID, recipient.ID, 10, 0); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("recipient list err = %v, want ErrForbidden", err)
	}
}
