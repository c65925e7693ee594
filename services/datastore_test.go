package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"ledgerlight/backend/database"
	"ledgerlight/backend/models"
)

var testSession = models.Session{Email: "a@b.c", ID: "user-1", Name: "Ada"}

func batchOf(n int, startPrice float64) []models.Record {
	records := make([]models.Record, n)
	for i := range records {
		records[i] = models.Record{
			"Date":                 "2024-01-01",
			"Time":                 "10:00",
			"Transaction_ID":       fmt.Sprintf("TX-%d", i+1),
			"Customer_ID":          "C-1",
			"Product_Service_Name": "Widget",
			"Category":             "Hardware",
			"Subcategory":          "Tools",
			"Brand":                "Acme",
			"Price":                strconv.FormatFloat(startPrice+float64(i), 'f', 2, 64),
		}
	}
	return records
}

func TestUploadThenReadBack(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	data := NewDataService(store)

	records := batchOf(3, 10)
	if err := data.StoreUpload(ctx, testSession.Email, records, "jan.csv"); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	view, err := data.GetTransactions(ctx, testSession.Email)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !view.HasData || view.IsSaved {
		t.Errorf("expected unsaved data, got %+v", view)
	}
	if view.FileName != "jan.csv" || view.RecordCount != 3 {
		t.Errorf("unexpected batch metadata: %+v", view)
	}
	if len(view.Records) != 3 || view.Records[0]["Transaction_ID"] != "TX-1" {
		t.Errorf("records did not round-trip: %v", view.Records)
	}
}

func TestReadWithNoData(t *testing.T) {
	data := NewDataService(database.NewMemoryStore())

	view, err := data.GetTransactions(context.Background(), "nobody@b.c")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if view.HasData || len(view.Records) != 0 {
		t.Errorf("expected empty view, got %+v", view)
	}
}

func TestSaveAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	data := NewDataService(store)

	// First save: ids 1..3, counter 3.
	data.StoreUpload(ctx, testSession.Email, batchOf(3, 10), "one.csv")
	result, err := data.SaveToDatabase(ctx, testSession)
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if result.SavedCount != 3 || result.TotalSaved != 3 || result.PreviousTotal != 0 {
		t.Errorf("unexpected first save result: %+v", result)
	}

	// Second save: ids 4..5, counter 5, previousTotal 3.
	data.StoreUpload(ctx, testSession.Email, batchOf(2, 50), "two.csv")
	result, err = data.SaveToDatabase(ctx, testSession)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if result.SavedCount != 2 || result.TotalSaved != 5 || result.PreviousTotal != 3 {
		t.Errorf("unexpected second save result: %+v", result)
	}

	counter, _, _ := store.Get(ctx, "transaction_counter:a@b.c")
	if counter != "5" {
		t.Errorf("counter = %q, want 5", counter)
	}
	for id := 1; id <= 5; id++ {
		if _, ok, _ := store.Get(ctx, fmt.Sprintf("transaction:a@b.c:%d", id)); !ok {
			t.Errorf("missing transaction id %d", id)
		}
	}
}

func TestSaveConsumesBatchAndSetsFlag(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	data := NewDataService(store)

	data.StoreUpload(ctx, testSession.Email, batchOf(2, 10), "one.csv")
	if _, err := data.SaveToDatabase(ctx, testSession); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	saved, err := data.HasSaved(ctx, testSession.Email)
	if err != nil || !saved {
		t.Errorf("expected saved flag set, got %v / %v", saved, err)
	}
	if _, ok, _ := store.Get(ctx, "data:a@b.c"); ok {
		t.Error("temporary batch should be deleted after save")
	}

	// A second save with no batch is a distinct error.
	if _, err := data.SaveToDatabase(ctx, testSession); !errors.Is(err, ErrNoBatch) {
		t.Errorf("expected ErrNoBatch, got %v", err)
	}
}

func TestReadPrefersPersistedAndRestoresMergeOrder(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	data := NewDataService(store)

	// 11 records so persisted ids reach two digits and a lexicographic scan
	// would order "10" before "2".
	data.StoreUpload(ctx, testSession.Email, batchOf(11, 10), "big.csv")
	if _, err := data.SaveToDatabase(ctx, testSession); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	view, err := data.GetTransactions(ctx, testSession.Email)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !view.IsSaved || view.FileName != "Database Records" {
		t.Errorf("expected persisted view, got %+v", view)
	}
	for i, record := range view.Records {
		want := fmt.Sprintf("TX-%d", i+1)
		if record["Transaction_ID"] != want {
			t.Fatalf("record %d out of merge order: got %q, want %q", i, record["Transaction_ID"], want)
		}
	}
}

func TestNewUploadMakesTemporaryAuthoritative(t *testing.T) {
	ctx := context.Background()
	data := NewDataService(database.NewMemoryStore())

	data.StoreUpload(ctx, testSession.Email, batchOf(3, 10), "one.csv")
	data.SaveToDatabase(ctx, testSession)

	// Fresh upload clears the saved flag; reads serve the new batch even
	// though persisted records still exist.
	data.StoreUpload(ctx, testSession.Email, batchOf(1, 99), "two.csv")

	saved, _ := data.HasSaved(ctx, testSession.Email)
	if saved {
		t.Error("saved flag should be cleared by a new upload")
	}

	view, _ := data.GetTransactions(ctx, testSession.Email)
	if view.IsSaved || view.FileName != "two.csv" || len(view.Records) != 1 {
		t.Errorf("expected the fresh batch, got %+v", view)
	}

	// Saving the new batch continues the counter past the first merge.
	result, err := data.SaveToDatabase(ctx, testSession)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if result.TotalSaved != 4 || result.PreviousTotal != 3 {
		t.Errorf("counter should continue: %+v", result)
	}
}

func TestClearDatabase(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	data := NewDataService(store)

	data.StoreUpload(ctx, testSession.Email, batchOf(4, 10), "one.csv")
	data.SaveToDatabase(ctx, testSession)

	deleted, err := data.ClearDatabase(ctx, testSession.Email)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if deleted != 4 {
		t.Errorf("deletedCount = %d, want 4", deleted)
	}

	view, _ := data.GetTransactions(ctx, testSession.Email)
	if view.HasData {
		t.Errorf("expected no data after clear, got %+v", view)
	}
	if saved, _ := data.HasSaved(ctx, testSession.Email); saved {
		t.Error("saved flag should be cleared")
	}

	// Counter reset: the next save starts over at 1.
	data.StoreUpload(ctx, testSession.Email, batchOf(1, 10), "two.csv")
	result, _ := data.SaveToDatabase(ctx, testSession)
	if result.TotalSaved != 1 || result.PreviousTotal != 0 {
		t.Errorf("counter should reset after clear: %+v", result)
	}

	// Clearing again is a no-op.
	deleted, err = data.ClearDatabase(ctx, testSession.Email)
	if err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("second clear deletedCount = %d, want 1", deleted)
	}
	if deleted, _ = data.ClearDatabase(ctx, testSession.Email); deleted != 0 {
		t.Errorf("idempotent clear deletedCount = %d, want 0", deleted)
	}
}

// TestMergeCounterRace documents the known lost-update hazard: the counter
// is read, incremented in memory and written back with no locking, so two
// merges that both read the same counter assign overlapping ids and the
// second overwrites the first. This test pins the behavior down; it is a
// hazard to be aware of, not a guarantee to rely on.
func TestMergeCounterRace(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	data := NewDataService(store)

	// Simulate two interleaved saves by resetting the counter between them
	// to the value both would have read.
	data.StoreUpload(ctx, testSession.Email, batchOf(2, 10), "first.csv")
	if _, err := data.SaveToDatabase(ctx, testSession); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	store.Set(ctx, "transaction_counter:a@b.c", "0") // second saver's stale read

	data.StoreUpload(ctx, testSession.Email, batchOf(2, 99), "second.csv")
	if _, err := data.SaveToDatabase(ctx, testSession); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	// Both merges wrote ids 1 and 2; the second clobbered the first.
	pairs, _ := store.GetByPrefix(ctx, "transaction:a@b.c:")
	if len(pairs) != 2 {
		t.Errorf("lost update expected to leave 2 records, got %d", len(pairs))
	}
}
