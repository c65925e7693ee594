package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ledgerlight/backend/middleware"
	"ledgerlight/backend/services"
)

// AuthHandler serves the signup/login/verify/logout surface.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := h.auth.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		log.Printf("Signup error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionToken": token,
		"user":         user,
		"message":      "Account created successfully",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("Login error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionToken": token,
		"user":         user,
		"message":      "Login successful",
	})
}

// Verify runs behind the session middleware, so reaching it means the token
// resolved; it just echoes the session's user.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "No session token provided")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": session})
}

// Logout deletes the session if one was presented. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.SessionHeader)
	if err := h.auth.Logout(r.Context(), token); err != nil {
		log.Printf("Logout error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
