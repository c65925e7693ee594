package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ledgerlight/backend/database"
	"ledgerlight/backend/models"
)

var (
	// ErrEmailTaken means signup hit an already-registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two cases are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidSession means the presented token has no live session.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// AuthService manages accounts and sessions on top of the KV store.
// Passwords are held in cleartext and tokens never expire; both are
// deliberate fidelity to the system this replaces (see DESIGN.md).
type AuthService struct {
	store database.Store

	// Optional bootstrap account, auto-created on first login with exactly
	// these credentials.
	defaultEmail    string
	defaultPassword string
	defaultName     string
}

func NewAuthService(store database.Store) *AuthService {
	return &AuthService{store: store}
}

// SetDefaultUser enables the bootstrap account.
func (s *AuthService) SetDefaultUser(email, password, name string) {
	s.defaultEmail = email
	s.defaultPassword = password
	s.defaultName = name
}

// Signup registers a new account and opens a session for it.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (string, models.PublicUser, error) {
	_, exists, err := s.store.Get(ctx, userKey(email))
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if exists {
		return "", models.PublicUser{}, ErrEmailTaken
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  password,
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.putUser(ctx, user); err != nil {
		return "", models.PublicUser{}, err
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return "", models.PublicUser{}, err
	}

	log.Printf("User created: %s", email)
	return token, user.Public(), nil
}

// Login checks the credentials and opens a session. If the bootstrap account
// is configured and these are its exact credentials, the account is created
// on first use.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.PublicUser, error) {
	raw, found, err := s.store.Get(ctx, userKey(email))
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if !found && s.defaultEmail != "" && email == s.defaultEmail && password == s.defaultPassword {
		log.Printf("Auto-creating default user %s on first login", email)
		user := models.User{
			ID:        uuid.NewString(),
			Email:     s.defaultEmail,
			Password:  s.defaultPassword,
			Name:      s.defaultName,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.putUser(ctx, user); err != nil {
			return "", models.PublicUser{}, err
		}
		raw, found = mustJSON(user), true
	}

	if !found {
		return "", models.PublicUser{}, ErrInvalidCredentials
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to decode user: %w", err)
	}

	// Plaintext comparison, preserved from the ported system.
	if user.Password != password {
		return "", models.PublicUser{}, ErrInvalidCredentials
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return "", models.PublicUser{}, err
	}

	return token, user.Public(), nil
}

// Verify resolves a session token to its session payload.
func (s *AuthService) Verify(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrInvalidSession
	}

	raw, found, err := s.store.Get(ctx, sessionKey(token))
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to look up session: %w", err)
	}
	if !found {
		return models.Session{}, ErrInvalidSession
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

// Logout deletes the session. Unknown or empty tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *AuthService) createSession(ctx context.Context, user models.User) (string, error) {
	token := uuid.NewString()
	session := models.Session{
		Email:     user.Email,
		ID:        user.ID,
		Name:      user.Name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Set(ctx, sessionKey(token), mustJSON(session)); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (s *AuthService) putUser(ctx context.Context, user models.User) error {
	if err := s.store.Set(ctx, userKey(user.Email), mustJSON(user)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// mustJSON marshals values that cannot fail (plain structs of strings).
func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
