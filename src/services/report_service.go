package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tracerdata/cotracer/src/interpreters"
	"github.com/tracerdata/cotracer/src/logger"
	"github.com/tracerdata/cotracer/src/models"
	"github.com/tracerdata/cotracer/src/retrieval"
	"golang.org/x/time/rate"
)

// RawReport is an uninterpreted report: the upstream header and rows as-is,
// with no header normalization or type coercion applied.
type RawReport struct {
	Type   models.ReportType
	Header []string
	Rows   [][]string
}

// ReportService retrieves, extracts, and normalizes TRACER bulk reports.
type ReportService interface {
	// GetReport downloads and normalizes the requested report types for a
	// year. No types means all three. Every requested type appears as a key
	// in the result even when its archive yielded nothing; structural
	// failures (bad year, network, corrupt archive) fail the whole call.
	GetReport(ctx context.Context, year int, reportTypes ...models.ReportType) (models.ReportResult, error)

	// GetReportRaw downloads one report type for a year and returns its CSV
	// content uninterpreted.
	GetReportRaw(ctx context.Context, year int, reportType models.ReportType) (*RawReport, error)
}

// ServiceConfig carries the knobs for a report service. Zero values select
// the official portal, a 60s fetch timeout, and no fetch rate limiting.
type ServiceConfig struct {
	BaseURL           string
	FetchTimeout      time.Duration
	FetchRateInterval time.Duration
}

type reportServiceImpl struct {
	baseURL string
	fetcher *retrieval.Fetcher
	limiter *rate.Limiter
}

// NewReportService creates a report service. Each GetReport call performs a
// fresh retrieval; nothing is cached between calls.
func NewReportService(cfg ServiceConfig) ReportService {
	limit := rate.Inf
	if cfg.FetchRateInterval > 0 {
		limit = rate.Every(cfg.FetchRateInterval)
	}
	return &reportServiceImpl{
		baseURL: cfg.BaseURL,
		fetcher: retrieval.NewFetcher(cfg.FetchTimeout),
		limiter: rate.NewLimiter(limit, 1),
	}
}

var (
	defaultService     ReportService
	defaultServiceOnce sync.Once
)

// GetReport is a convenience wrapper around a shared default service talking
// to the official portal. Library callers needing custom timeouts or a
// mirror should construct their own service with NewReportService.
func GetReport(ctx context.Context, year int, reportTypes ...models.ReportType) (models.ReportResult, error) {
	defaultServiceOnce.Do(func() {
		defaultService = NewReportService(ServiceConfig{})
	})
	return defaultService.GetReport(ctx, year, reportTypes...)
}

func (s *reportServiceImpl) GetReport(ctx context.Context, year int, reportTypes ...models.ReportType) (models.ReportResult, error) {
	urls, err := retrieval.BuildURLs(s.baseURL, year, reportTypes)
	if err != nil {
		return nil, err
	}

	result := make(models.ReportResult, len(urls))
	for _, ru := range urls {
		result[ru.Type] = &models.ReportSection{Records: []models.Record{}}
	}

	// Archives are independent of each other, so fetch them concurrently
	// and merge by report type under the lock. First structural failure
	// cancels the siblings and fails the call.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, ru := range urls {
		wg.Add(1)
		go func(ru retrieval.ReportURL) {
			defer wg.Done()
			if err := s.processArchive(ctx, ru, result, &mu); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
			}
		}(ru)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// processArchive runs the fetch-extract-interpret pipeline for one archive
// and merges its sections into result.
func (s *reportServiceImpl) processArchive(ctx context.Context, ru retrieval.ReportURL, result models.ReportResult, mu *sync.Mutex) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for fetch slot: %w", err)
	}

	arch, err := s.fetcher.Fetch(ctx, ru.URL)
	if err != nil {
		return err
	}

	payloads, err := retrieval.Extract(arch)
	if err != nil {
		return err
	}

	for _, payload := range payloads {
		reportType, section, err := interpreters.Interpret(payload)
		if errors.Is(err, interpreters.ErrUnknownReportType) {
			// Skip-and-warn: an upstream rename should not fail the call.
			if logger.L != nil {
				logger.L.Warn("Skipping unclassifiable payload", "payload", payload.Name, "url", ru.URL)
			}
			mu.Lock()
			result[ru.Type].AddAnomaly(0, "", fmt.Sprintf("unclassifiable payload %q skipped", payload.Name))
			mu.Unlock()
			continue
		}
		if err != nil {
			return err
		}

		mu.Lock()
		dest, ok := result[reportType]
		if !ok {
			// The archive bundled a payload of a type the caller did not
			// ask for; note it against the requested section and move on.
			result[ru.Type].AddAnomaly(0, "", fmt.Sprintf("payload %q is %s, not %s", payload.Name, reportType, ru.Type))
			mu.Unlock()
			continue
		}
		dest.Records = append(dest.Records, section.Records...)
		dest.Anomalies = append(dest.Anomalies, section.Anomalies...)
		mu.Unlock()
	}
	return nil
}

func (s *reportServiceImpl) GetReportRaw(ctx context.Context, year int, reportType models.ReportType) (*RawReport, error) {
	url, err := retrieval.BuildURL(s.baseURL, year, reportType)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for fetch slot: %w", err)
	}

	arch, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	payloads, err := retrieval.Extract(arch)
	if err != nil {
		return nil, err
	}

	// TRACER archives hold a single report file; take the first payload the
	// way the portal intends.
	header, rows, err := interpreters.ReadRaw(payloads[0])
	if err != nil {
		return nil, err
	}
	return &RawReport{Type: reportType, Header: header, Rows: rows}, nil
}
