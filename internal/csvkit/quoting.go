package csvkit

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
)

const utf8BOM = "\ufeff"

// WithBOM prefixes content with a UTF-8 byte order mark when enabled.
func WithBOM(content string, enabled bool) string {
	if !enabled {
		return content
	}
	return utf8BOM + content
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(content string) string {
	return strings.TrimPrefix(content, utf8BOM)
}

// ParseCSV reads RFC4180 records. A leading BOM and blank lines are
// ignored; rows may have any number of fields. Cell whitespace is kept.
func ParseCSV(content string) ([][]string, error) {
	content = StripBOM(content)
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeCSVMalformed, err, "malformed csv")
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// SerializeCSV writes a header line and one line per row. Data cells are
// sanitized against formula injection; headers are written as given.
// Fields containing commas, quotes or line breaks are quoted with internal
// quotes doubled.
func SerializeCSV(headers []string, rows [][]string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	// Writes to a strings.Builder cannot fail.
	_ = w.Write(headers)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = guardCRLF(SanitizeCell(v))
		}
		_ = w.Write(cells)
	}
	w.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

// guardCRLF doubles the CR of every CRLF inside a cell. csv.Reader folds
// a CRLF that ends a physical line into LF, which turns the doubled form
// back into the original CRLF.
func guardCRLF(value string) string {
	return strings.ReplaceAll(value, "\r\n", "\r\r\n")
}

// records parses content into header-keyed records, failing with
// CSV_MISSING_REQUIRED when a required column is absent. An empty file
// yields no records.
func records(file, content string, required []string) ([]func(string) string, error) {
	rows, err := ParseCSV(content)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, apperrors.ErrCSVMissingRequired.
				WithDetail("file", file).
				WithDetail("column", col)
		}
	}

	out := make([]func(string) string, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		out = append(out, func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(cells) {
				return ""
			}
			return RestoreCell(cells[i])
		})
	}
	return out, nil
}
