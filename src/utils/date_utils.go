package utils

import (
	"strings"
	"time"
)

// Date layouts seen in TRACER bulk exports. Filed dates carry a midnight
// timestamp; hand-entered dates sometimes appear in the short US form.
var reportDateLayouts = []string{
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006-01-02",
}

// ParseReportDate parses a date string from a TRACER report, trying each of
// the known upstream layouts in order.
func ParseReportDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	var lastErr error
	for _, layout := range reportDateLayouts {
		t, err := time.Parse(layout, dateStr)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
