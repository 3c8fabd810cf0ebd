package csvkit

import (
	"strings"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
)

// FlatHeaders is the column order of the flat export.
var FlatHeaders = []string{"occurred_at", "posted_at", "amount", "memo", "counterparty", "template_id", "category", "voided", "superseded"}

// FlatRow is one transaction in the flat export.
type FlatRow struct {
	OccurredAt   string `json:"occurred_at"`
	PostedAt     string `json:"posted_at"`
	Amount       string `json:"amount"`
	Memo         string `json:"memo"`
	Counterparty string `json:"counterparty"`
	TemplateID   string `json:"template_id"`
	Category     string `json:"category"`
	Voided       string `json:"voided"`
	Superseded   string `json:"superseded"`
}

func (r FlatRow) cells() []string {
	return []string{r.OccurredAt, r.PostedAt, r.Amount, r.Memo, r.Counterparty, r.TemplateID, r.Category, r.Voided, r.Superseded}
}

// SerializeFlat writes flat rows as a single CSV document.
func SerializeFlat(rows []FlatRow, opts SerializeOptions) string {
	return WithBOM(SerializeCSV(FlatHeaders, rowsOf(rows, FlatRow.cells)), opts.ExcelBOM)
}

// ParseFlat reads a flat CSV document. Columns may appear in any order;
// every flat column is required.
func ParseFlat(content string) ([]FlatRow, error) {
	rows, err := ParseCSV(content)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	present := make(map[string]bool, len(rows[0]))
	for _, h := range rows[0] {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, h := range FlatHeaders {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.ErrCSVMissingRequired.WithDetail("columns", strings.Join(missing, ","))
	}

	getters, err := records("flat.csv", content, FlatHeaders)
	if err != nil {
		return nil, err
	}
	out := make([]FlatRow, 0, len(getters))
	for _, get := range getters {
		out = append(out, FlatRow{
			OccurredAt: get("occurred_at"), PostedAt: get("posted_at"), Amount: get("amount"),
			Memo: get("memo"), Counterparty: get("counterparty"), TemplateID: get("template_id"),
			Category: get("category"), Voided: get("voided"), Superseded: get("superseded"),
		})
	}
	return out, nil
}
