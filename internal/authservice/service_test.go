package authservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/authservice"
	"github.com/starford/quill/internal/testutil"
)

const testSecret = "0123456789abcdef"

func TestRegisterAndLogin(t *testing.T) {
	st := testutil.TestStore(t)
	svc := authservice.NewService(st, testSecret, time.Hour)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" || token == "" {
		t.Fatalf("user = %+v, token = %q", user, token)
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in clear")
	}

	got, _, err := svc.Login(ctx, "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("login user = %q, want %q", got.ID, user.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	st := testutil.TestStore(t)
	svc := authservice.NewService(st, testSecret, time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ada", "dup@example.com", "hunter2hunter2"); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Register(ctx, "Other", "dup@example.com", "hunter2hunter2")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	st := testutil.TestStore(t)
	svc := authservice.NewService(st, testSecret, time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2hunter2"); err != nil {
		t.Fatal(err)
	}

	// Unknown email and wrong password must fail identically.
	_, _, err1 := svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	_, _, err2 := svc.Login(ctx, "ada@example.com", "wrong-password")
	for _, err := range []error{err1, err2} {
		if !errors.Is(err, apperr.ErrUnauthorized) {
			t.Errorf("err = %v, want ErrUnauthorized", err)
		}
	}
	if err1.Error() != err2.Error() {
		t.Errorf("messages differ: %q vs %q", err1, err2)
	}
}

func TestParseToken(t *testing.T) {
	st := testutil.TestStore(t)
	svc := authservice.NewService(st, testSecret, time.Hour)

	user, token, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}

	uid, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if uid != user.ID {
		t.Errorf("uid = %q, want %q", uid, user.ID)
	}

	if _, err := svc.ParseToken("not-a-jwt"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("garbage token err = %v, want ErrUnauthorized", err)
	}

	other := authservice.NewService(st, "another-secret-value", time.Hour)
	if _, err := other.ParseToken(token); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("wrong secret err = %v, want ErrUnauthorized", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	st := testutil.TestStore(t)
	svc := authservice.NewService(st, testSecret, -time.Minute)

	_, token, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ParseToken(token); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("expired token err = %v, want ErrUnauthorized", err)
	}
}
