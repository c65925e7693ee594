package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ledgerlight/backend/database"
	"ledgerlight/backend/models"
	"ledgerlight/backend/services"
)

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r)
		if !ok {
			t.Error("expected session in context")
		}
		json.NewEncoder(w).Encode(session)
	})
}

func TestSessionAuthRejectsMissingToken(t *testing.T) {
	auth := services.NewAuthService(database.NewMemoryStore())
	handler := SessionAuth(auth)(protectedEcho(t))

	req := httptest.NewRequest("GET", "/data/transactions", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestSessionAuthRejectsUnknownToken(t *testing.T) {
	auth := services.NewAuthService(database.NewMemoryStore())
	handler := SessionAuth(auth)(protectedEcho(t))

	req := httptest.NewRequest("GET", "/data/transactions", nil)
	req.Header.Set(SessionHeader, "not-a-session")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["error"] == "" {
		t.Error("expected an error body")
	}
}

func TestSessionAuthPassesLiveSession(t *testing.T) {
	auth := services.NewAuthService(database.NewMemoryStore())
	token, _, err := auth.Signup(context.Background(), "a@b.c", "secret", "Ada")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	handler := SessionAuth(auth)(protectedEcho(t))

	req := httptest.NewRequest("GET", "/data/transactions", nil)
	req.Header.Set(SessionHeader, token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var session models.Session
	json.NewDecoder(w.Body).Decode(&session)
	if session.Email != "a@b.c" {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestSessionAuthSkipsPreflight(t *testing.T) {
	auth := services.NewAuthService(database.NewMemoryStore())
	called := false
	handler := SessionAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/data/transactions", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("OPTIONS requests should bypass auth")
	}
}
