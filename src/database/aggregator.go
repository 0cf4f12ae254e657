package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tracerdata/cotracer/src/logger"
	"github.com/tracerdata/cotracer/src/models"
)

// ErrNoRecordID marks a record that cannot be stored because the upstream
// row carried no record_id to key the upsert on.
var ErrNoRecordID = errors.New("record has no record_id")

// tableSpec is the serialization strategy for one report type: which table
// its records live in and which canonical field is the headline amount.
type tableSpec struct {
	table       string
	amountField string
}

var tableSpecs = map[models.ReportType]tableSpec{
	models.ReportContribData: {table: "contributions", amountField: "contribution_amount"},
	models.ReportExpendData:  {table: "expenditures", amountField: "expenditure_amount"},
	models.ReportLoanData:    {table: "loans", amountField: "loan_amount"},
}

// UpsertEntry stores one normalized record, replacing any previous row with
// the same record_id. The full record is kept as a JSON document alongside
// denormalized amount and filed-date columns for querying.
func UpsertEntry(db *sql.DB, reportType models.ReportType, year int, rec models.Record) error {
	spec, ok := tableSpecs[reportType]
	if !ok {
		return fmt.Errorf("no serialization strategy for report type %s", reportType)
	}

	recordID := rec.Field("record_id")
	if !recordID.Valid || recordID.Str == "" {
		return ErrNoRecordID
	}

	var amount sql.NullFloat64
	if v := rec.Field(spec.amountField); v.Valid {
		amount = sql.NullFloat64{Float64: v.Amount.InexactFloat64(), Valid: true}
	}
	var filedDate sql.NullString
	if v := rec.Field("filed_date"); v.Valid {
		filedDate = sql.NullString{String: v.Date.Format("2006-01-02"), Valid: true}
	}

	document, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serializing record %s: %w", recordID.Str, err)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (record_id, report_year, amount, filed_date, document, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(record_id) DO UPDATE SET
			report_year = excluded.report_year,
			amount = excluded.amount,
			filed_date = excluded.filed_date,
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`, spec.table)

	if _, err := db.Exec(stmt, recordID.Str, year, amount, filedDate, string(document)); err != nil {
		return fmt.Errorf("upserting record %s into %s: %w", recordID.Str, spec.table, err)
	}
	return nil
}

// UpsertEntries stores a batch of records, skipping and counting the ones
// without a record_id. Any other failure aborts the batch.
func UpsertEntries(db *sql.DB, reportType models.ReportType, year int, recs []models.Record) (stored, skipped int, err error) {
	for _, rec := range recs {
		err := UpsertEntry(db, reportType, year, rec)
		if errors.Is(err, ErrNoRecordID) {
			skipped++
			continue
		}
		if err != nil {
			return stored, skipped, err
		}
		stored++
	}
	if logger.L != nil && skipped > 0 {
		logger.L.Warn("Skipped records without record_id during upsert",
			"reportType", reportType, "skipped", skipped)
	}
	return stored, skipped, nil
}

// CountEntries returns the number of stored records for a report type and
// year. Used by the sync endpoint's response.
func CountEntries(db *sql.DB, reportType models.ReportType, year int) (int, error) {
	spec, ok := tableSpecs[reportType]
	if !ok {
		return 0, fmt.Errorf("no serialization strategy for report type %s", reportType)
	}
	var n int
	row := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE report_year = ?", spec.table), year)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s rows: %w", spec.table, err)
	}
	return n, nil
}
