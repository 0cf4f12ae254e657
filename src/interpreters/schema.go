package interpreters

import (
	"fmt"
	"strings"

	"github.com/tracerdata/cotracer/src/models"
)

// FieldSpec declares one canonical column of a report: its stable name, its
// semantic type, and the upstream header spellings (beyond the canonical
// name itself) seen for it across publication years.
type FieldSpec struct {
	Name     string
	Kind     models.FieldKind
	Variants []string
}

// Schema is the ordered column layout of one report type.
type Schema struct {
	Type   models.ReportType
	Fields []FieldSpec

	byHeader map[string]int // slugged header -> index into Fields
}

// fieldForHeader resolves a slugged upstream header to its canonical field.
func (s *Schema) fieldForHeader(slug string) (FieldSpec, bool) {
	idx, ok := s.byHeader[slug]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[idx], true
}

// SlugHeader normalizes an arbitrary header to its slug form: lowercase with
// runs of non-alphanumeric characters collapsed to a single underscore.
// Unrecognized upstream columns keep this form as their field name.
func SlugHeader(header string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func buildSchema(reportType models.ReportType, fields []FieldSpec) *Schema {
	s := &Schema{Type: reportType, Fields: fields, byHeader: make(map[string]int)}
	add := func(header string, idx int) {
		slug := SlugHeader(header)
		if prev, exists := s.byHeader[slug]; exists && prev != idx {
			panic(fmt.Sprintf("%s schema: header %q claimed by both %s and %s",
				reportType, header, fields[prev].Name, fields[idx].Name))
		}
		s.byHeader[slug] = idx
	}
	for i, f := range fields {
		add(f.Name, i)
		for _, v := range f.Variants {
			add(v, i)
		}
	}
	return s
}

// The variant tables below cover the header spellings the portal has used
// across years for the same columns: CamelCase run-together forms from the
// bulk exports plus spaced and abbreviated forms from older files.

var contributionSchema = buildSchema(models.ReportContribData, []FieldSpec{
	{Name: "record_id", Kind: models.KindString, Variants: []string{"recordid"}},
	{Name: "co_id", Kind: models.KindString, Variants: []string{"coid"}},
	{Name: "committee_type", Kind: models.KindString, Variants: []string{"committeetype"}},
	{Name: "committee_name", Kind: models.KindString, Variants: []string{"committeename"}},
	{Name: "candidate_name", Kind: models.KindString, Variants: []string{"candidatename"}},
	{Name: "contribution_amount", Kind: models.KindAmount, Variants: []string{"contributionamount", "contrib_amount", "contribamount", "amount"}},
	{Name: "contribution_date", Kind: models.KindDate, Variants: []string{"contributiondate", "contrib_date"}},
	{Name: "filed_date", Kind: models.KindDate, Variants: []string{"fileddate", "date_filed"}},
	{Name: "contribution_type", Kind: models.KindString, Variants: []string{"contributiontype"}},
	{Name: "receipt_type", Kind: models.KindString, Variants: []string{"receipttype"}},
	{Name: "last_name", Kind: models.KindString, Variants: []string{"lastname"}},
	{Name: "first_name", Kind: models.KindString, Variants: []string{"firstname"}},
	{Name: "mi", Kind: models.KindString},
	{Name: "suffix", Kind: models.KindString},
	{Name: "address1", Kind: models.KindString, Variants: []string{"address_1", "address"}},
	{Name: "address2", Kind: models.KindString, Variants: []string{"address_2"}},
	{Name: "city", Kind: models.KindString},
	{Name: "state", Kind: models.KindString},
	{Name: "zip", Kind: models.KindString, Variants: []string{"zipcode", "zip_code"}},
	{Name: "employer", Kind: models.KindString},
	{Name: "occupation", Kind: models.KindString},
	{Name: "explanation", Kind: models.KindString, Variants: []string{"explanation_of_other", "explanationofother"}},
	{Name: "electioneering", Kind: models.KindBool},
	{Name: "amended", Kind: models.KindBool},
	{Name: "amendment", Kind: models.KindBool},
})

var expenditureSchema = buildSchema(models.ReportExpendData, []FieldSpec{
	{Name: "record_id", Kind: models.KindString, Variants: []string{"recordid"}},
	{Name: "co_id", Kind: models.KindString, Variants: []string{"coid"}},
	{Name: "committee_type", Kind: models.KindString, Variants: []string{"committeetype"}},
	{Name: "committee_name", Kind: models.KindString, Variants: []string{"committeename"}},
	{Name: "candidate_name", Kind: models.KindString, Variants: []string{"candidatename"}},
	{Name: "expenditure_amount", Kind: models.KindAmount, Variants: []string{"expenditureamount", "expend_amount", "expendamount", "amount"}},
	{Name: "expenditure_date", Kind: models.KindDate, Variants: []string{"expendituredate", "expend_date"}},
	{Name: "filed_date", Kind: models.KindDate, Variants: []string{"fileddate", "date_filed"}},
	{Name: "expenditure_type", Kind: models.KindString, Variants: []string{"expendituretype"}},
	{Name: "payment_type", Kind: models.KindString, Variants: []string{"paymenttype"}},
	{Name: "disbursement_type", Kind: models.KindString, Variants: []string{"disbursementtype"}},
	{Name: "last_name", Kind: models.KindString, Variants: []string{"lastname"}},
	{Name: "first_name", Kind: models.KindString, Variants: []string{"firstname"}},
	{Name: "mi", Kind: models.KindString},
	{Name: "suffix", Kind: models.KindString},
	{Name: "address1", Kind: models.KindString, Variants: []string{"address_1", "address"}},
	{Name: "address2", Kind: models.KindString, Variants: []string{"address_2"}},
	{Name: "city", Kind: models.KindString},
	{Name: "state", Kind: models.KindString},
	{Name: "zip", Kind: models.KindString, Variants: []string{"zipcode", "zip_code"}},
	{Name: "explanation", Kind: models.KindString, Variants: []string{"explanation_of_other", "explanationofother"}},
	{Name: "electioneering", Kind: models.KindBool},
	{Name: "amended", Kind: models.KindBool},
	{Name: "amendment", Kind: models.KindBool},
})

var loanSchema = buildSchema(models.ReportLoanData, []FieldSpec{
	{Name: "record_id", Kind: models.KindString, Variants: []string{"recordid"}},
	{Name: "co_id", Kind: models.KindString, Variants: []string{"coid"}},
	{Name: "committee_type", Kind: models.KindString, Variants: []string{"committeetype"}},
	{Name: "committee_name", Kind: models.KindString, Variants: []string{"committeename"}},
	{Name: "candidate_name", Kind: models.KindString, Variants: []string{"candidatename"}},
	{Name: "loan_amount", Kind: models.KindAmount, Variants: []string{"loanamount", "amount"}},
	{Name: "payment_amount", Kind: models.KindAmount, Variants: []string{"paymentamount"}},
	{Name: "interest_rate", Kind: models.KindAmount, Variants: []string{"interestrate"}},
	{Name: "interest_payment", Kind: models.KindAmount, Variants: []string{"interestpayment"}},
	{Name: "loan_balance", Kind: models.KindAmount, Variants: []string{"loanbalance", "balance"}},
	{Name: "loan_date", Kind: models.KindDate, Variants: []string{"loandate"}},
	{Name: "payment_date", Kind: models.KindDate, Variants: []string{"paymentdate"}},
	{Name: "filed_date", Kind: models.KindDate, Variants: []string{"fileddate", "date_filed"}},
	{Name: "loan_source_type", Kind: models.KindString, Variants: []string{"loansourcetype"}},
	{Name: "last_name", Kind: models.KindString, Variants: []string{"lastname"}},
	{Name: "first_name", Kind: models.KindString, Variants: []string{"firstname"}},
	{Name: "city", Kind: models.KindString},
	{Name: "state", Kind: models.KindString},
	{Name: "zip", Kind: models.KindString, Variants: []string{"zipcode", "zip_code"}},
	{Name: "amended", Kind: models.KindBool},
	{Name: "amendment", Kind: models.KindBool},
})
