package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tracerdata/cotracer/src/models"
	"github.com/tracerdata/cotracer/src/retrieval"
)

func makeZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// portalStub serves canned archives keyed by the download path.
func portalStub(t *testing.T, archives map[string][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
}

func TestGetReport_AllTypes(t *testing.T) {
	t.Parallel()

	archives := map[string][]byte{
		"/PublicSite/Docs/BulkDataDownloads/2012_ContributionData.csv.zip": makeZip(t, map[string]string{
			"2012_ContributionData.csv": "RecordID,ContributionAmount\nc-1,100.00\n",
		}),
		"/PublicSite/Docs/BulkDataDownloads/2012_ExpenditureData.csv.zip": makeZip(t, map[string]string{
			"2012_ExpenditureData.csv": "RecordID,ExpenditureAmount\ne-1,50.00\ne-2,75.00\n",
		}),
		"/PublicSite/Docs/BulkDataDownloads/2012_LoanData.csv.zip": makeZip(t, map[string]string{
			"2012_LoanData.csv": "RecordID,LoanAmount\nl-1,1000.00\n",
		}),
	}
	server := portalStub(t, archives)
	defer server.Close()

	svc := NewReportService(ServiceConfig{BaseURL: server.URL})
	result, err := svc.GetReport(context.Background(), 2012)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("expected 3 report sections, got %d", len(result))
	}
	for _, rt := range models.AllReportTypes() {
		if _, ok := result[rt]; !ok {
			t.Fatalf("missing key for %s", rt)
		}
	}
	if got := len(result[models.ReportContribData].Records); got != 1 {
		t.Fatalf("contributions: expected 1 record, got %d", got)
	}
	if got := len(result[models.ReportExpendData].Records); got != 2 {
		t.Fatalf("expenditures: expected 2 records, got %d", got)
	}
	if id := result[models.ReportContribData].Records[0].Field("record_id").Str; id != "c-1" {
		t.Fatalf("unexpected contribution record id %q", id)
	}
}

func TestGetReport_MismatchedPayloadLeavesKeyEmpty(t *testing.T) {
	t.Parallel()

	// The loan archive exists but bundles a contribution file; the LoanData
	// key must still be present, just empty.
	archives := map[string][]byte{
		"/PublicSite/Docs/BulkDataDownloads/2012_LoanData.csv.zip": makeZip(t, map[string]string{
			"2012_ContributionData.csv": "RecordID,ContributionAmount\nc-1,100.00\n",
		}),
	}
	server := portalStub(t, archives)
	defer server.Close()

	svc := NewReportService(ServiceConfig{BaseURL: server.URL})
	result, err := svc.GetReport(context.Background(), 2012, models.ReportLoanData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	section, ok := result[models.ReportLoanData]
	if !ok {
		t.Fatalf("LoanData key must be present even when empty")
	}
	if len(section.Records) != 0 {
		t.Fatalf("expected no loan records, got %d", len(section.Records))
	}
	if section.AnomalyCount() == 0 {
		t.Fatalf("expected the mismatched payload to be recorded as an anomaly")
	}
}

func TestGetReport_UnclassifiablePayloadSkippedWithWarning(t *testing.T) {
	t.Parallel()

	archives := map[string][]byte{
		"/PublicSite/Docs/BulkDataDownloads/2012_ContributionData.csv.zip": makeZip(t, map[string]string{
			"2012_BallotData.csv": "a,b\n1,2\n",
		}),
	}
	server := portalStub(t, archives)
	defer server.Close()

	svc := NewReportService(ServiceConfig{BaseURL: server.URL})
	result, err := svc.GetReport(context.Background(), 2012, models.ReportContribData)
	if err != nil {
		t.Fatalf("skip-and-warn policy must not fail the call: %v", err)
	}
	section := result[models.ReportContribData]
	if len(section.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(section.Records))
	}
	if section.AnomalyCount() != 1 {
		t.Fatalf("expected 1 anomaly for the skipped payload, got %v", section.Anomalies)
	}
}

func TestGetReport_FetchFailureFailsWholeCall(t *testing.T) {
	t.Parallel()

	// Only contributions are served; the other two 404.
	archives := map[string][]byte{
		"/PublicSite/Docs/BulkDataDownloads/2012_ContributionData.csv.zip": makeZip(t, map[string]string{
			"2012_ContributionData.csv": "RecordID\nc-1\n",
		}),
	}
	server := portalStub(t, archives)
	defer server.Close()

	svc := NewReportService(ServiceConfig{BaseURL: server.URL})
	_, err := svc.GetReport(context.Background(), 2012)
	var netErr *retrieval.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
}

func TestGetReport_InvalidYear(t *testing.T) {
	t.Parallel()

	svc := NewReportService(ServiceConfig{BaseURL: "http://unused.invalid/"})
	_, err := svc.GetReport(context.Background(), 1990)
	if !errors.Is(err, retrieval.ErrInvalidYear) {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
}

func TestGetReportRaw(t *testing.T) {
	t.Parallel()

	archives := map[string][]byte{
		"/PublicSite/Docs/BulkDataDownloads/2012_ContributionData.csv.zip": makeZip(t, map[string]string{
			"2012_ContributionData.csv": "RecordID,ContributionAmount\nc-1,\"$1,234.56\"\n",
		}),
	}
	server := portalStub(t, archives)
	defer server.Close()

	svc := NewReportService(ServiceConfig{BaseURL: server.URL})
	raw, err := svc.GetReportRaw(context.Background(), 2012, models.ReportContribData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Type != models.ReportContribData {
		t.Fatalf("unexpected type %s", raw.Type)
	}
	if len(raw.Header) != 2 || raw.Header[0] != "RecordID" {
		t.Fatalf("unexpected header %v", raw.Header)
	}
	// Raw means raw: the amount keeps its upstream formatting.
	if len(raw.Rows) != 1 || raw.Rows[0][1] != "$1,234.56" {
		t.Fatalf("unexpected rows %v", raw.Rows)
	}
}
