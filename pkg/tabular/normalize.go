package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"docsift/internal/models"
)

// RowIDField is the per-row sequence number attached to every normalized row.
// It identifies a row within its index, not a document.
const RowIDField = "row_id"

// Normalized is the output of normalizing one tabular upload: typed row
// records plus the column schema derived from the first data row.
type Normalized struct {
	Schema models.IndexSchema
	Rows   []models.Record
}

// NormalizeCSV parses a CSV payload. The first line is the header; each later
// line is zipped positionally with the header names and coerced via Classify/
// Coerce. The schema is frozen from the first data row only; later rows that
// disagree with it are stored as coerced without re-validation. Rows with
// missing columns leave those fields absent; extra trailing fields are
// dropped.
func NormalizeCSV(payload []byte) (*Normalized, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, not fatal

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty payload: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var lines [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		lines = append(lines, record)
	}

	return normalizeLines(header, lines)
}

// NormalizeXLSX parses the first sheet of a spreadsheet payload and feeds it
// through the same normalization path as CSV.
func NormalizeXLSX(payload []byte) (*Normalized, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty payload: no header row")
	}

	return normalizeLines(rows[0], rows[1:])
}

func normalizeLines(header []string, lines [][]string) (*Normalized, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("header row has no columns")
	}
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if name == "" {
			return nil, fmt.Errorf("header row has an empty column name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column name %q in header", name)
		}
		seen[name] = true
	}

	normalized := &Normalized{}

	for i, line := range lines {
		row := models.Record{RowIDField: int64(i)}
		for j, name := range header {
			if j >= len(line) {
				break // short row: leave remaining fields absent
			}
			row[name] = Coerce(line[j])
		}
		normalized.Rows = append(normalized.Rows, row)
	}

	normalized.Schema = deriveSchema(header, lines)
	return normalized, nil
}

// deriveSchema infers one column type per header name from the first data
// row only. Later rows never refine or widen it. A file with no data rows
// gets an all-text schema.
func deriveSchema(header []string, lines [][]string) models.IndexSchema {
	schema := models.IndexSchema{
		Fields: []models.Field{{Name: RowIDField, Kind: models.KindInteger}},
	}

	var first []string
	if len(lines) > 0 {
		first = lines[0]
	}

	for j, name := range header {
		kind := models.KindText
		if j < len(first) {
			kind = Classify(first[j])
		}
		schema.Fields = append(schema.Fields, models.Field{Name: name, Kind: kind})
	}
	return schema
}
