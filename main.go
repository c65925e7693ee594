package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ledgerlight/backend/database"
	"ledgerlight/backend/handlers"
	"ledgerlight/backend/services"
)

func main() {
	dbPath := flag.String("db", "", "Path to the sqlite store (overrides DB_PATH)")
	flag.Parse()

	// Load .env if present; real environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	path := *dbPath
	if path == "" {
		path = os.Getenv("DB_PATH")
	}
	if path == "" {
		path = "./ledgerlight.db"
	}

	store, err := database.OpenSQLite(path)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	auth := services.NewAuthService(store)
	if email := os.Getenv("DEFAULT_USER_EMAIL"); email != "" {
		auth.SetDefaultUser(email, os.Getenv("DEFAULT_USER_PASSWORD"), os.Getenv("DEFAULT_USER_NAME"))
		log.Printf("Default user enabled: %s", email)
	}
	data := services.NewDataService(store)

	r := handlers.NewRouter(auth, data)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Printf("Starting server on port %s...", port)
	log.Fatal(srv.ListenAndServe())
}
