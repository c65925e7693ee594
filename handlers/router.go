package handlers

import (
	"github.com/gorilla/mux"

	"ledgerlight/backend/middleware"
	"ledgerlight/backend/services"
)

// NewRouter wires every route. Auth endpoints that create sessions are
// public; everything else sits behind the session middleware.
func NewRouter(auth *services.AuthService, data *services.DataService) *mux.Router {
	authHandler := NewAuthHandler(auth)
	dataHandler := NewDataHandler(data)

	r := mux.NewRouter()
	r.Use(middleware.EnableCORS)
	r.Use(middleware.LogRequests)

	// Public routes (no auth required)
	r.HandleFunc("/health", HealthCheck).Methods("GET", "OPTIONS")
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	// Logout is deliberately public so it stays idempotent: a dead token
	// still gets a 200.
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	// Create a subrouter for authenticated routes
	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.SessionAuth(auth))

	// OPTIONS is listed so preflight requests match a route and reach the
	// CORS middleware, which answers them before auth runs.
	protected.HandleFunc("/auth/verify", authHandler.Verify).Methods("GET", "OPTIONS")

	protected.HandleFunc("/data/upload", dataHandler.Upload).Methods("POST", "OPTIONS")
	protected.HandleFunc("/data/transactions", dataHandler.Transactions).Methods("GET", "OPTIONS")
	protected.HandleFunc("/data/save-to-database", dataHandler.SaveToDatabase).Methods("POST", "OPTIONS")
	protected.HandleFunc("/data/has-saved", dataHandler.HasSaved).Methods("GET", "OPTIONS")
	protected.HandleFunc("/data/clear-database", dataHandler.ClearDatabase).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/data/analytics", dataHandler.Analytics).Methods("GET", "OPTIONS")

	return r
}
