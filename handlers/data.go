package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"ledgerlight/backend/analytics"
	"ledgerlight/backend/ingest"
	"ledgerlight/backend/middleware"
	"ledgerlight/backend/models"
	"ledgerlight/backend/services"
)

// maxUploadBytes caps the multipart form held in memory.
const maxUploadBytes = 32 << 20

// DataHandler serves the upload / read / save / clear surface.
type DataHandler struct {
	data *services.DataService
}

func NewDataHandler(data *services.DataService) *DataHandler {
	return &DataHandler{data: data}
}

// Upload parses and validates the posted file and stores the surviving
// records as the user's temporary batch.
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file: "+err.Error())
		return
	}

	log.Printf("Processing file %s (%d bytes) for %s", header.Filename, len(content), session.Email)

	parsed, err := ingest.Parse(content, ingest.DetectKind(header.Filename))
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	valid, dropped, err := ingest.Validate(parsed)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	if err := h.data.StoreUpload(r.Context(), session.Email, valid, header.Filename); err != nil {
		log.Printf("Upload store error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "File uploaded and processed successfully",
		"rowCount":    len(valid),
		"skippedRows": dropped,
	})
}

// writeIngestError maps parser/validator failures to 400 responses. The
// missing-columns case carries the found and required column lists so the
// client can show what to fix.
func (h *DataHandler) writeIngestError(w http.ResponseWriter, err error) {
	var schemaErr *ingest.SchemaError
	if errors.As(err, &schemaErr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    schemaErr.Error(),
			"found":    schemaErr.Found,
			"required": schemaErr.Required,
		})
		return
	}

	var parseErr *ingest.ParseError
	var emptyErr *ingest.EmptyResultError
	if errors.As(err, &parseErr) || errors.As(err, &emptyErr) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("Unexpected ingest error: %v", err)
	writeError(w, http.StatusInternalServerError, "Failed to process file")
}

// Transactions serves the authoritative record set: persisted data when the
// saved flag is set, the temporary batch otherwise.
func (h *DataHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := h.data.GetTransactions(r.Context(), session.Email)
	if err != nil {
		log.Printf("Get transactions error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	if !view.HasData {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"hasData": false,
			"records": []models.Record{},
			"message": "No data uploaded yet",
		})
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// SaveToDatabase promotes the temporary batch to durable storage.
func (h *DataHandler) SaveToDatabase(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.data.SaveToDatabase(r.Context(), session)
	if err != nil {
		if errors.Is(err, services.ErrNoBatch) {
			writeError(w, http.StatusBadRequest, "No data to save")
			return
		}
		log.Printf("Save to database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save to database")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Transactions saved to database successfully",
		"savedCount":    result.SavedCount,
		"totalSaved":    result.TotalSaved,
		"previousTotal": result.PreviousTotal,
	})
}

// HasSaved reports whether persisted data is the authoritative read source.
func (h *DataHandler) HasSaved(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	saved, err := h.data.HasSaved(r.Context(), session.Email)
	if err != nil {
		log.Printf("Check saved data error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to check saved status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"hasSaved": saved})
}

// ClearDatabase wipes everything persisted for the user.
func (h *DataHandler) ClearDatabase(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	deleted, err := h.data.ClearDatabase(r.Context(), session.Email)
	if err != nil {
		log.Printf("Clear database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear database")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "All database transactions cleared successfully",
		"deletedCount": deleted,
	})
}

// Analytics computes the dashboard snapshot server-side over the
// authoritative record set.
func (h *DataHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := h.data.GetTransactions(r.Context(), session.Email)
	if err != nil {
		log.Printf("Analytics read error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	// The engine assumes a non-empty set; guard here.
	if !view.HasData || len(view.Records) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"hasData": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hasData":   true,
		"isSaved":   view.IsSaved,
		"analytics": analytics.Analyze(view.Records),
	})
}
