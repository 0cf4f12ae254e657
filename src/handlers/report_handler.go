package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tracerdata/cotracer/src/database"
	"github.com/tracerdata/cotracer/src/interpreters"
	"github.com/tracerdata/cotracer/src/logger"
	"github.com/tracerdata/cotracer/src/models"
	"github.com/tracerdata/cotracer/src/retrieval"
	"github.com/tracerdata/cotracer/src/services"
	"github.com/tracerdata/cotracer/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

type reportResponse struct {
	Year    int                 `json:"year"`
	Reports models.ReportResult `json:"reports"`
}

type syncCounts struct {
	Stored    int `json:"stored"`
	Skipped   int `json:"skipped"`
	Anomalies int `json:"anomalies"`
}

type syncResponse struct {
	Year   int                              `json:"year"`
	Synced map[models.ReportType]syncCounts `json:"synced"`
}

// HandleGetReport serves GET /api/reports/{year}. An optional type query
// parameter (repeatable) narrows the result to specific report types.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	year, reportTypes, ok := h.parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetReport(r.Context(), year, reportTypes...)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reportResponse{Year: year, Reports: result})
}

// HandleSyncReport serves POST /api/reports/{year}/sync: runs the retrieval
// pipeline and upserts the normalized records into the report store.
func (h *ReportHandler) HandleSyncReport(w http.ResponseWriter, r *http.Request) {
	year, reportTypes, ok := h.parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetReport(r.Context(), year, reportTypes...)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	resp := syncResponse{Year: year, Synced: make(map[models.ReportType]syncCounts, len(result))}
	for reportType, section := range result {
		stored, skipped, err := database.UpsertEntries(database.DB, reportType, year, section.Records)
		if err != nil {
			logger.L.Error("Report store upsert failed", "reportType", reportType, "year", year, "error", err)
			utils.SendJSONError(w, "failed to store report records", http.StatusInternalServerError)
			return
		}
		resp.Synced[reportType] = syncCounts{Stored: stored, Skipped: skipped, Anomalies: section.AnomalyCount()}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *ReportHandler) parseReportRequest(w http.ResponseWriter, r *http.Request) (int, []models.ReportType, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		utils.SendJSONError(w, "year must be an integer", http.StatusBadRequest)
		return 0, nil, false
	}

	var reportTypes []models.ReportType
	for _, raw := range r.URL.Query()["type"] {
		reportType, ok := matchReportType(raw)
		if !ok {
			utils.SendJSONError(w, "unknown report type: "+raw, http.StatusBadRequest)
			return 0, nil, false
		}
		reportTypes = append(reportTypes, reportType)
	}
	return year, reportTypes, true
}

func matchReportType(raw string) (models.ReportType, bool) {
	for _, reportType := range models.AllReportTypes() {
		if strings.EqualFold(raw, reportType.String()) {
			return reportType, true
		}
	}
	return "", false
}

func writePipelineError(w http.ResponseWriter, err error) {
	var netErr *retrieval.NetworkError
	switch {
	case errors.Is(err, retrieval.ErrInvalidYear):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &netErr),
		errors.Is(err, retrieval.ErrEmptyResponse),
		errors.Is(err, retrieval.ErrCorruptArchive),
		errors.Is(err, retrieval.ErrUnexpectedContent),
		errors.Is(err, interpreters.ErrUnknownReportType):
		utils.SendJSONError(w, err.Error(), http.StatusBadGateway)
	default:
		logger.L.Error("Report retrieval failed", "error", err)
		utils.SendJSONError(w, "report retrieval failed", http.StatusInternalServerError)
	}
}
