package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tracerdata/cotracer/src/models"
)

func testRecord(recordID string, amount string) models.Record {
	fields := map[string]models.Value{
		"record_id":      models.StringValue(recordID),
		"committee_name": models.StringValue("Test Committee"),
		"filed_date":     models.DateValue(time.Date(2013, 1, 17, 0, 0, 0, 0, time.UTC)),
	}
	if amount == "" {
		fields["contribution_amount"] = models.NullValue(models.KindAmount)
	} else {
		fields["contribution_amount"] = models.AmountValue(decimal.RequireFromString(amount))
	}
	return models.Record{Fields: fields}
}

func initTestDB(t *testing.T) {
	t.Helper()
	InitDB(filepath.Join(t.TempDir(), "cotracer_test.db"))
	t.Cleanup(func() { DB.Close() })
}

func TestUpsertEntry_InsertThenUpdate(t *testing.T) {
	initTestDB(t)

	if err := UpsertEntry(DB, models.ReportContribData, 2012, testRecord("c-1", "100.00")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// Same record_id again: must replace, not duplicate.
	if err := UpsertEntry(DB, models.ReportContribData, 2012, testRecord("c-1", "250.00")); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	n, err := CountEntries(DB, models.ReportContribData, 2012)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 stored record, got %d", n)
	}

	var amount float64
	if err := DB.QueryRow("SELECT amount FROM contributions WHERE record_id = ?", "c-1").Scan(&amount); err != nil {
		t.Fatalf("querying amount: %v", err)
	}
	if amount != 250.00 {
		t.Fatalf("expected updated amount 250.00, got %v", amount)
	}
}

func TestUpsertEntry_MissingRecordID(t *testing.T) {
	initTestDB(t)

	rec := models.Record{Fields: map[string]models.Value{
		"committee_name": models.StringValue("No ID Committee"),
	}}
	if err := UpsertEntry(DB, models.ReportContribData, 2012, rec); !errors.Is(err, ErrNoRecordID) {
		t.Fatalf("expected ErrNoRecordID, got %v", err)
	}
}

func TestUpsertEntries_SkipsAndCounts(t *testing.T) {
	initTestDB(t)

	recs := []models.Record{
		testRecord("c-1", "10.00"),
		{Fields: map[string]models.Value{"committee_name": models.StringValue("Anonymous")}},
		testRecord("c-2", ""),
	}
	stored, skipped, err := UpsertEntries(DB, models.ReportContribData, 2013, recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != 2 || skipped != 1 {
		t.Fatalf("stored=%d skipped=%d, want 2/1", stored, skipped)
	}

	// Null amount stores as SQL NULL, not zero.
	var amount any
	if err := DB.QueryRow("SELECT amount FROM contributions WHERE record_id = ?", "c-2").Scan(&amount); err != nil {
		t.Fatalf("querying amount: %v", err)
	}
	if amount != nil {
		t.Fatalf("expected NULL amount, got %v", amount)
	}
}

func TestUpsertEntries_PerTypeTables(t *testing.T) {
	initTestDB(t)

	loan := models.Record{Fields: map[string]models.Value{
		"record_id":   models.StringValue("l-1"),
		"loan_amount": models.AmountValue(decimal.RequireFromString("5000")),
	}}
	if _, _, err := UpsertEntries(DB, models.ReportLoanData, 2012, []models.Record{loan}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := CountEntries(DB, models.ReportLoanData, 2012)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 loan record, got %d", n)
	}
	if n, _ := CountEntries(DB, models.ReportContribData, 2012); n != 0 {
		t.Fatalf("loan record leaked into contributions table")
	}
}
