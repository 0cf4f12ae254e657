package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FieldKind is the semantic type of a report column.
type FieldKind int

const (
	KindString FieldKind = iota
	KindAmount
	KindDate
	KindBool
)

func (k FieldKind) String() string {
	switch k {
	case KindAmount:
		return "amount"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a typed cell value. Valid is false when the upstream field was
// empty or could not be coerced; a null Value still carries its Kind so the
// field set of a record stays uniform across rows.
type Value struct {
	Kind   FieldKind
	Valid  bool
	Str    string
	Amount decimal.Decimal
	Date   time.Time
	Bool   bool
}

// NullValue returns the empty sentinel for a field of the given kind.
func NullValue(kind FieldKind) Value {
	return Value{Kind: kind}
}

// StringValue wraps a trimmed string field.
func StringValue(s string) Value {
	return Value{Kind: KindString, Valid: true, Str: s}
}

// AmountValue wraps a parsed currency amount.
func AmountValue(d decimal.Decimal) Value {
	return Value{Kind: KindAmount, Valid: true, Amount: d}
}

// DateValue wraps a parsed date.
func DateValue(t time.Time) Value {
	return Value{Kind: KindDate, Valid: true, Date: t}
}

// BoolValue wraps a parsed yes/no flag.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Valid: true, Bool: b}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || v.Valid != o.Valid {
		return false
	}
	if !v.Valid {
		return true
	}
	switch v.Kind {
	case KindAmount:
		return v.Amount.Equal(o.Amount)
	case KindDate:
		return v.Date.Equal(o.Date)
	case KindBool:
		return v.Bool == o.Bool
	default:
		return v.Str == o.Str
	}
}

// MarshalJSON serializes the underlying value, or null for an empty field.
// Dates use the date-only form since the portal's timestamps carry no
// meaningful time component.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	switch v.Kind {
	case KindAmount:
		return json.Marshal(v.Amount)
	case KindDate:
		return json.Marshal(v.Date.Format("2006-01-02"))
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// Record is a single normalized report row. Fields holds the canonical
// columns declared by the report type's schema; Extra holds unrecognized
// upstream columns, slugged, as trimmed strings.
type Record struct {
	Fields map[string]Value
	Extra  map[string]string
}

// Field returns the value for a canonical field name, or a null string
// sentinel when the record has no such field.
func (r Record) Field(name string) Value {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	return NullValue(KindString)
}

// MarshalJSON flattens canonical and extra fields into one JSON object, the
// same shape the portal's raw rows have after interpretation.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+len(r.Extra))
	for name, v := range r.Fields {
		flat[name] = v
	}
	for name, s := range r.Extra {
		flat[name] = s
	}
	return json.Marshal(flat)
}
