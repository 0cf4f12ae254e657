package models

// ReportType identifies one of the bulk report categories published by the
// TRACER campaign finance portal. The string value matches the name the
// portal uses in its download URLs and archive entry names.
type ReportType string

const (
	ReportContribData ReportType = "ContributionData"
	ReportExpendData  ReportType = "ExpenditureData"
	ReportLoanData    ReportType = "LoanData"
)

// AllReportTypes returns the report categories in their published order.
func AllReportTypes() []ReportType {
	return []ReportType{ReportContribData, ReportExpendData, ReportLoanData}
}

// IsValid reports whether t is one of the recognized report categories.
func (t ReportType) IsValid() bool {
	switch t {
	case ReportContribData, ReportExpendData, ReportLoanData:
		return true
	}
	return false
}

func (t ReportType) String() string {
	return string(t)
}

// Anomaly records a per-row or per-value data quality issue encountered
// while normalizing a report. Anomalies never abort processing; they ride
// along with the section they were found in.
type Anomaly struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// ReportSection holds the normalized records of a single report type
// together with any anomalies found while producing them. Record order
// matches the row order of the upstream CSV.
type ReportSection struct {
	Records   []Record  `json:"records"`
	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

// AddAnomaly appends a data quality note to the section.
func (s *ReportSection) AddAnomaly(row int, field, reason string) {
	s.Anomalies = append(s.Anomalies, Anomaly{Row: row, Field: field, Reason: reason})
}

// AnomalyCount returns the number of recorded anomalies.
func (s *ReportSection) AnomalyCount() int {
	return len(s.Anomalies)
}

// ReportResult maps each requested report type to its normalized section.
// Every requested type is present as a key even when its archive yielded no
// matching records.
type ReportResult map[ReportType]*ReportSection
