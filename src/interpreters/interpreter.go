package interpreters

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tracerdata/cotracer/src/logger"
	"github.com/tracerdata/cotracer/src/models"
	"github.com/tracerdata/cotracer/src/retrieval"
	"github.com/tracerdata/cotracer/src/utils"
)

// columnBinding ties one CSV column to either a canonical schema field or an
// extra (unrecognized) field name.
type columnBinding struct {
	spec      FieldSpec
	canonical bool
	extraName string
}

// Interpret parses an extracted CSV payload into normalized, typed records.
// The report type is inferred from the payload filename; an unmatched name
// returns ErrUnknownReportType. Row and value level problems are recorded as
// anomalies on the returned section and never abort the remaining rows.
func Interpret(payload retrieval.ExtractedPayload) (models.ReportType, *models.ReportSection, error) {
	schema, err := SchemaForFilename(payload.Name)
	if err != nil {
		return "", nil, err
	}

	section := &models.ReportSection{Records: []models.Record{}}

	reader := csv.NewReader(bytes.NewReader(payload.Data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		// A payload with no readable header yields an empty section, not a
		// failure; the portal has shipped empty files for sparse years.
		section.AddAnomaly(0, "", fmt.Sprintf("unreadable header: %v", err))
		return schema.Type, section, nil
	}

	bindings := bindColumns(schema, header, section)

	for rowNum := 1; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			section.AddAnomaly(rowNum, "", fmt.Sprintf("malformed CSV row: %v", err))
			continue
		}
		if err != nil {
			section.AddAnomaly(rowNum, "", fmt.Sprintf("read aborted: %v", err))
			break
		}
		if len(row) != len(header) {
			section.AddAnomaly(rowNum, "", fmt.Sprintf("row has %d columns, header has %d", len(row), len(header)))
			continue
		}

		section.Records = append(section.Records, buildRecord(schema, bindings, row, rowNum, section))
	}

	if logger.L != nil && section.AnomalyCount() > 0 {
		logger.L.Warn("Report payload interpreted with anomalies",
			"payload", payload.Name, "records", len(section.Records), "anomalies", section.AnomalyCount())
	}
	return schema.Type, section, nil
}

// bindColumns resolves each header cell to a canonical field or an extra
// field name. A duplicate claim on the same canonical field keeps the first
// column and demotes the rest to extra fields with an anomaly.
func bindColumns(schema *Schema, header []string, section *models.ReportSection) []columnBinding {
	bindings := make([]columnBinding, len(header))
	claimed := make(map[string]bool, len(header))
	for i, cell := range header {
		slug := SlugHeader(cell)
		if slug == "" {
			bindings[i] = columnBinding{extraName: fmt.Sprintf("column_%d", i+1)}
			continue
		}
		spec, ok := schema.fieldForHeader(slug)
		if ok && !claimed[spec.Name] {
			claimed[spec.Name] = true
			bindings[i] = columnBinding{spec: spec, canonical: true}
			continue
		}
		if ok {
			section.AddAnomaly(0, spec.Name, fmt.Sprintf("duplicate header %q, keeping first occurrence", cell))
		}
		bindings[i] = columnBinding{extraName: slug}
	}
	return bindings
}

func buildRecord(schema *Schema, bindings []columnBinding, row []string, rowNum int, section *models.ReportSection) models.Record {
	rec := models.Record{Fields: make(map[string]models.Value, len(schema.Fields))}

	// Missing upstream columns still get their null sentinel so the field
	// set is uniform across every record of the section.
	for _, spec := range schema.Fields {
		rec.Fields[spec.Name] = models.NullValue(spec.Kind)
	}

	for i, raw := range row {
		raw = strings.TrimSpace(raw)
		b := bindings[i]
		if !b.canonical {
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[b.extraName] = raw
			continue
		}
		rec.Fields[b.spec.Name] = coerceValue(b.spec, raw, rowNum, section)
	}
	return rec
}

func coerceValue(spec FieldSpec, raw string, rowNum int, section *models.ReportSection) models.Value {
	switch spec.Kind {
	case models.KindAmount:
		if raw == "" {
			return models.NullValue(models.KindAmount)
		}
		d, err := parseAmount(raw)
		if err != nil {
			section.AddAnomaly(rowNum, spec.Name, fmt.Sprintf("uncoercible amount %q", raw))
			return models.NullValue(models.KindAmount)
		}
		return models.AmountValue(d)
	case models.KindDate:
		if raw == "" {
			return models.NullValue(models.KindDate)
		}
		t, err := utils.ParseReportDate(raw)
		if err != nil {
			return models.NullValue(models.KindDate)
		}
		return models.DateValue(t)
	case models.KindBool:
		if raw == "" {
			return models.NullValue(models.KindBool)
		}
		b, err := parseYesNo(raw)
		if err != nil {
			section.AddAnomaly(rowNum, spec.Name, fmt.Sprintf("unrecognized boolean token %q", raw))
			return models.NullValue(models.KindBool)
		}
		return models.BoolValue(b)
	default:
		return models.StringValue(raw)
	}
}

// ReadRaw parses a payload without header normalization or type coercion,
// mirroring the portal's files as-is. Used by the raw retrieval path.
func ReadRaw(payload retrieval.ExtractedPayload) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(payload.Data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header of %s: %w", payload.Name, err)
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV rows of %s: %w", payload.Name, err)
	}
	return header, rows, nil
}
