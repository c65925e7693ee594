package services

import (
	"context"
	"errors"
	"testing"

	"ledgerlight/backend/database"
)

func newAuth() *AuthService {
	return NewAuthService(database.NewMemoryStore())
}

func TestSignupAndVerify(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	token, user, err := auth.Signup(ctx, "a@b.c", "secret", "Ada")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if user.Email != "a@b.c" || user.Name != "Ada" || user.ID == "" {
		t.Errorf("unexpected user: %+v", user)
	}

	session, err := auth.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if session.Email != "a@b.c" || session.ID != user.ID {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	if _, _, err := auth.Signup(ctx, "a@b.c", "secret", "Ada"); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, _, err := auth.Signup(ctx, "a@b.c", "other", "Bob"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()
	auth.Signup(ctx, "a@b.c", "secret", "Ada")

	token, user, err := auth.Login(ctx, "a@b.c", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || user.Email != "a@b.c" {
		t.Errorf("unexpected login result: token=%q user=%+v", token, user)
	}

	if _, _, err := auth.Login(ctx, "a@b.c", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@b.c", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLoginBootstrapsDefaultUser(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()
	auth.SetDefaultUser("demo@example.com", "demo123", "Demo")

	// Wrong password must not create the account.
	if _, _, err := auth.Login(ctx, "demo@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	token, user, err := auth.Login(ctx, "demo@example.com", "demo123")
	if err != nil {
		t.Fatalf("bootstrap login failed: %v", err)
	}
	if user.Name != "Demo" || token == "" {
		t.Errorf("unexpected bootstrap result: %+v", user)
	}

	// Second login reuses the stored account.
	if _, _, err := auth.Login(ctx, "demo@example.com", "demo123"); err != nil {
		t.Errorf("second login failed: %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	auth := newAuth()

	token, _, _ := auth.Signup(ctx, "a@b.c", "secret", "Ada")

	if err := auth.Logout(ctx, token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := auth.Verify(ctx, token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession after logout, got %v", err)
	}
	if err := auth.Logout(ctx, token); err != nil {
		t.Errorf("second logout failed: %v", err)
	}
	if err := auth.Logout(ctx, ""); err != nil {
		t.Errorf("empty-token logout failed: %v", err)
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	auth := newAuth()
	if _, err := auth.Verify(context.Background(), "no-such-token"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
}
