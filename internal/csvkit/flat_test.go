package csvkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
)

func TestFlat_RoundTrip(t *testing.T) {
	rows := []FlatRow{
		{OccurredAt: "2026-02-01", PostedAt: "2026-02-01", Amount: "12000", Memo: "coffee, cake", Category: "living", Voided: "false", Superseded: "false"},
		{OccurredAt: "2026-02-03", PostedAt: "2026-02-03", Amount: "500000", Memo: "=rent", Category: "rent", Voided: "true", Superseded: "false"},
	}

	content := SerializeFlat(rows, SerializeOptions{ExcelBOM: true})
	parsed, err := ParseFlat(content)
	require.NoError(t, err)
	assert.Equal(t, rows, parsed)
}

func TestParseFlat_ColumnOrderIndependent(t *testing.T) {
	content := "memo,amount,occurred_at,posted_at,counterparty,template_id,category,voided,superseded\n" +
		"lunch,9000,2026-02-05,2026-02-05,,living_spend,living,false,false"

	parsed, err := ParseFlat(content)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "lunch", parsed[0].Memo)
	assert.Equal(t, "9000", parsed[0].Amount)
	assert.Equal(t, "living_spend", parsed[0].TemplateID)
}

func TestParseFlat_MissingColumns(t *testing.T) {
	_, err := ParseFlat("occurred_at,amount\n2026-02-01,100")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCSVMissingRequired, apperrors.CodeOf(err))
	assert.Equal(t, "posted_at,memo,counterparty,template_id,category,voided,superseded", apperrors.DetailsOf(err)["columns"])
}
