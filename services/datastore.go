package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"ledgerlight/backend/database"
	"ledgerlight/backend/models"
)

// ErrNoBatch means save-to-database was called without a temporary batch.
var ErrNoBatch = errors.New("no data to save")

// DataService owns the record lifecycle: temporary upload batch, the
// append-to-database merge step, the read path and the full clear.
type DataService struct {
	store database.Store
}

func NewDataService(store database.Store) *DataService {
	return &DataService{store: store}
}

// TransactionsView is what GET /data/transactions serves.
type TransactionsView struct {
	HasData     bool            `json:"hasData"`
	Records     []models.Record `json:"records"`
	UploadedAt  string          `json:"uploadedAt,omitempty"`
	FileName    string          `json:"fileName,omitempty"`
	RecordCount int             `json:"recordCount,omitempty"`
	IsSaved     bool            `json:"isSaved"`
}

// SaveResult reports one merge: how many records this call wrote, the total
// persisted after it, and how many were persisted before it.
type SaveResult struct {
	SavedCount    int `json:"savedCount"`
	TotalSaved    int `json:"totalSaved"`
	PreviousTotal int `json:"previousTotal"`
}

// StoreUpload replaces the user's temporary batch with freshly validated
// records and clears the saved-data flag, making this batch the authoritative
// read source until it is saved or replaced.
func (s *DataService) StoreUpload(ctx context.Context, email string, records []models.Record, fileName string) error {
	batch := models.UploadBatch{
		Records:     records,
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
		FileName:    fileName,
		RecordCount: len(records),
	}
	raw, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	if err := s.store.Set(ctx, dataKey(email), string(raw)); err != nil {
		return fmt.Errorf("failed to store batch: %w", err)
	}
	if err := s.store.Delete(ctx, savedFlagKey(email)); err != nil {
		return fmt.Errorf("failed to clear saved flag: %w", err)
	}

	log.Printf("Stored temporary upload of %d records for %s", len(records), email)
	return nil
}

// GetTransactions serves persisted records when the saved flag is set,
// otherwise the temporary batch, otherwise an empty view.
func (s *DataService) GetTransactions(ctx context.Context, email string) (TransactionsView, error) {
	saved, err := s.HasSaved(ctx, email)
	if err != nil {
		return TransactionsView{}, err
	}

	if saved {
		stored, err := s.persistedTransactions(ctx, email)
		if err != nil {
			return TransactionsView{}, err
		}
		if len(stored) > 0 {
			records := make([]models.Record, len(stored))
			for i, tx := range stored {
				records[i] = tx.Record()
			}
			return TransactionsView{
				HasData:     true,
				Records:     records,
				UploadedAt:  stored[0].SavedAt,
				FileName:    "Database Records",
				RecordCount: len(records),
				IsSaved:     true,
			}, nil
		}
	}

	raw, found, err := s.store.Get(ctx, dataKey(email))
	if err != nil {
		return TransactionsView{}, fmt.Errorf("failed to get batch: %w", err)
	}
	if !found {
		return TransactionsView{Records: []models.Record{}}, nil
	}

	var batch models.UploadBatch
	if err := json.Unmarshal([]byte(raw), &batch); err != nil {
		return TransactionsView{}, fmt.Errorf("failed to decode batch: %w", err)
	}

	return TransactionsView{
		HasData:     true,
		Records:     batch.Records,
		UploadedAt:  batch.UploadedAt,
		FileName:    batch.FileName,
		RecordCount: batch.RecordCount,
		IsSaved:     false,
	}, nil
}

// SaveToDatabase appends the temporary batch to durable storage. Each record
// gets the next counter value as its id; the counter, saved flag and batch
// deletion are written only after every record landed.
//
// The counter read-increment-write below has no locking: two saves for the
// same user racing through here can read the same counter and overwrite each
// other's ids. Accepted behavior, not a bug to fix silently; see DESIGN.md
// and TestMergeCounterRace.
func (s *DataService) SaveToDatabase(ctx context.Context, session models.Session) (SaveResult, error) {
	raw, found, err := s.store.Get(ctx, dataKey(session.Email))
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to get batch: %w", err)
	}
	if !found {
		return SaveResult{}, ErrNoBatch
	}

	var batch models.UploadBatch
	if err := json.Unmarshal([]byte(raw), &batch); err != nil {
		return SaveResult{}, fmt.Errorf("failed to decode batch: %w", err)
	}

	existing, err := s.store.GetByPrefix(ctx, transactionPrefix(session.Email))
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to scan transactions: %w", err)
	}
	previousTotal := len(existing)

	counter, err := s.readCounter(ctx, session.Email)
	if err != nil {
		return SaveResult{}, err
	}

	savedAt := time.Now().UTC().Format(time.RFC3339)
	for _, record := range batch.Records {
		counter++
		tx := models.StoredTransaction{
			ID:                 counter,
			UserID:             session.ID,
			UserEmail:          session.Email,
			Date:               record["Date"],
			Time:               record["Time"],
			TransactionID:      record["Transaction_ID"],
			CustomerID:         record["Customer_ID"],
			ProductServiceName: record["Product_Service_Name"],
			Category:           record["Category"],
			Subcategory:        record["Subcategory"],
			Brand:              record["Brand"],
			Price:              record["Price"],
			SavedAt:            savedAt,
		}
		encoded, err := json.Marshal(tx)
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to encode transaction: %w", err)
		}
		if err := s.store.Set(ctx, transactionKey(session.Email, counter), string(encoded)); err != nil {
			return SaveResult{}, fmt.Errorf("failed to store transaction %d: %w", counter, err)
		}
	}

	if err := s.store.Set(ctx, counterKey(session.Email), strconv.Itoa(counter)); err != nil {
		return SaveResult{}, fmt.Errorf("failed to store counter: %w", err)
	}
	if err := s.store.Set(ctx, savedFlagKey(session.Email), "true"); err != nil {
		return SaveResult{}, fmt.Errorf("failed to set saved flag: %w", err)
	}
	if err := s.store.Delete(ctx, dataKey(session.Email)); err != nil {
		return SaveResult{}, fmt.Errorf("failed to delete batch: %w", err)
	}

	log.Printf("Saved %d transactions for %s, counter now %d", len(batch.Records), session.Email, counter)

	return SaveResult{
		SavedCount:    len(batch.Records),
		TotalSaved:    counter,
		PreviousTotal: previousTotal,
	}, nil
}

// HasSaved reports whether the user has ever saved a batch (and not cleared
// or re-uploaded since).
func (s *DataService) HasSaved(ctx context.Context, email string) (bool, error) {
	value, found, err := s.store.Get(ctx, savedFlagKey(email))
	if err != nil {
		return false, fmt.Errorf("failed to get saved flag: %w", err)
	}
	return found && value == "true", nil
}

// ClearDatabase wipes every persisted record, the counter, the saved flag
// and any temporary batch. Idempotent.
func (s *DataService) ClearDatabase(ctx context.Context, email string) (int, error) {
	existing, err := s.store.GetByPrefix(ctx, transactionPrefix(email))
	if err != nil {
		return 0, fmt.Errorf("failed to scan transactions: %w", err)
	}

	for _, kv := range existing {
		if err := s.store.Delete(ctx, kv.Key); err != nil {
			return 0, fmt.Errorf("failed to delete %q: %w", kv.Key, err)
		}
	}
	if err := s.store.Delete(ctx, counterKey(email)); err != nil {
		return 0, fmt.Errorf("failed to delete counter: %w", err)
	}
	if err := s.store.Delete(ctx, savedFlagKey(email)); err != nil {
		return 0, fmt.Errorf("failed to delete saved flag: %w", err)
	}
	if err := s.store.Delete(ctx, dataKey(email)); err != nil {
		return 0, fmt.Errorf("failed to delete batch: %w", err)
	}

	log.Printf("Cleared %d transactions for %s", len(existing), email)
	return len(existing), nil
}

// persistedTransactions returns the user's saved records in merge order.
// The prefix scan is key-ordered, which puts "10" before "2"; re-sorting by
// the numeric id restores append order, which the analytics midpoint split
// depends on.
func (s *DataService) persistedTransactions(ctx context.Context, email string) ([]models.StoredTransaction, error) {
	pairs, err := s.store.GetByPrefix(ctx, transactionPrefix(email))
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}

	stored := make([]models.StoredTransaction, 0, len(pairs))
	for _, kv := range pairs {
		var tx models.StoredTransaction
		if err := json.Unmarshal([]byte(kv.Value), &tx); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", kv.Key, err)
		}
		stored = append(stored, tx)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].ID < stored[j].ID })
	return stored, nil
}

func (s *DataService) readCounter(ctx context.Context, email string) (int, error) {
	raw, found, err := s.store.Get(ctx, counterKey(email))
	if err != nil {
		return 0, fmt.Errorf("failed to get counter: %w", err)
	}
	if !found {
		return 0, nil
	}
	counter, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter %q: %w", raw, err)
	}
	return counter, nil
}
