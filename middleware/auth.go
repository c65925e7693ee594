package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ledgerlight/backend/models"
	"ledgerlight/backend/services"
)

// SessionHeader carries the opaque session token on every protected request.
const SessionHeader = "X-Session-Token"

// Define context keys
type contextKey string

const sessionContextKey contextKey = "session"

// SessionAuth verifies the session token against the store and stashes the
// session payload in the request context. Requests without a live session
// get a 401.
func SessionAuth(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for OPTIONS requests (CORS preflight)
			if r.Method == "OPTIONS" {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(SessionHeader)
			if token == "" {
				writeUnauthorized(w, "Unauthorized - No session token")
				return
			}

			session, err := auth.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, services.ErrInvalidSession) {
					writeUnauthorized(w, "Invalid session - please login again")
					return
				}
				log.Printf("Error verifying session: %v", err)
				writeError(w, http.StatusInternalServerError, "Failed to verify session")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext retrieves the session stored by SessionAuth.
func SessionFromContext(r *http.Request) (models.Session, bool) {
	session, ok := r.Context().Value(sessionContextKey).(models.Session)
	return session, ok
}

// WithSession returns a request carrying the session in its context, the way
// SessionAuth would leave it. Exposed for handler tests.
func WithSession(r *http.Request, session models.Session) *http.Request {
	ctx := context.WithValue(r.Context(), sessionContextKey, session)
	return r.WithContext(ctx)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
