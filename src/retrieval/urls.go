package retrieval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tracerdata/cotracer/src/models"
)

const (
	// DefaultBaseURL is the official TRACER portal.
	DefaultBaseURL = "http://tracer.sos.colorado.gov/"

	// StartYear is the earliest year the portal ever published bulk data.
	StartYear = 2000

	// modernPathYear is where the portal's path convention changed: bulk
	// files for 2000-2009 were re-homed under an Archive/ segment when the
	// current download layout went live.
	modernPathYear = 2010

	modernPathFmt = "PublicSite/Docs/BulkDataDownloads/%d_%s.csv.zip"
	legacyPathFmt = "PublicSite/Docs/BulkDataDownloads/Archive/%d_%s.csv.zip"
)

// ErrInvalidYear is returned for years before the portal published any data.
var ErrInvalidYear = errors.New("year precedes earliest published TRACER data")

// ReportURL pairs a report type with the download URL for its yearly archive.
type ReportURL struct {
	Type models.ReportType
	URL  string
}

// BuildURL returns the download URL for one report archive. Pure function of
// its inputs; years beyond the current year build fine and simply 404 at the
// portal, only years before StartYear are rejected.
func BuildURL(baseURL string, year int, reportType models.ReportType) (string, error) {
	if year < StartYear {
		return "", fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if !reportType.IsValid() {
		return "", fmt.Errorf("%s is not a valid report type", reportType)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pathFmt := modernPathFmt
	if year < modernPathYear {
		pathFmt = legacyPathFmt
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + fmt.Sprintf(pathFmt, year, reportType), nil
}

// BuildURLs resolves the requested report types to their archive URLs for
// the given year. An empty type list means all report types.
func BuildURLs(baseURL string, year int, reportTypes []models.ReportType) ([]ReportURL, error) {
	if len(reportTypes) == 0 {
		reportTypes = models.AllReportTypes()
	}
	urls := make([]ReportURL, 0, len(reportTypes))
	for _, rt := range reportTypes {
		u, err := BuildURL(baseURL, year, rt)
		if err != nil {
			return nil, err
		}
		urls = append(urls, ReportURL{Type: rt, URL: u})
	}
	return urls, nil
}
