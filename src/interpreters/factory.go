package interpreters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tracerdata/cotracer/src/models"
)

// ErrUnknownReportType is returned when a payload filename matches none of
// the known report categories. The orchestrator treats this as skip-and-warn
// so an upstream rename degrades to an anomaly instead of a failed call.
var ErrUnknownReportType = errors.New("unknown report type")

// SchemaForType returns the column schema for a report category.
func SchemaForType(reportType models.ReportType) (*Schema, error) {
	switch reportType {
	case models.ReportContribData:
		return contributionSchema, nil
	case models.ReportExpendData:
		return expenditureSchema, nil
	case models.ReportLoanData:
		return loanSchema, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReportType, reportType)
	}
}

// SchemaForFilename classifies an in-archive filename (e.g.
// "2012_ContributionData.csv") and returns the matching schema.
func SchemaForFilename(name string) (*Schema, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "contribution"):
		return contributionSchema, nil
	case strings.Contains(lower, "expenditure"):
		return expenditureSchema, nil
	case strings.Contains(lower, "loan"):
		return loanSchema, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReportType, name)
	}
}
