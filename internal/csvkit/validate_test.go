package csvkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.ErrorCode
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Bundle)
		opts   ValidateOptions
		want   []string
	}{
		{name: "valid bundle", mutate: func(*Bundle) {}, opts: ValidateOptions{BaseCurrency: "KRW"}},
		{
			name:   "incomplete manifest",
			mutate: func(b *Bundle) { b.Manifest.Version = "" },
			want:   []string{ErrCodeMissingRequired},
		},
		{
			name:   "no postings",
			mutate: func(b *Bundle) { b.Postings = nil },
			want:   []string{ErrCodeMissingRequired},
		},
		{
			name: "bad dates",
			mutate: func(b *Bundle) {
				b.Transactions[0].OccurredAt = "02/01/2026"
				b.Transactions[0].PostedAt = "2026-02-30"
			},
			want: []string{ErrCodeInvalidDate, ErrCodeInvalidDate},
		},
		{
			name:   "date with time suffix",
			mutate: func(b *Bundle) { b.Transactions[0].PostedAt = "2026-02-01T10:00:00Z" },
		},
		{
			name:   "unbalanced",
			mutate: func(b *Bundle) { b.Postings[1].AmountMinor = "9000" },
			want:   []string{ErrCodeUnbalancedPostings},
		},
		{
			name:   "non-numeric amount is also unbalanced",
			mutate: func(b *Bundle) { b.Postings[0].AmountMinor = "ten" },
			want:   []string{ErrCodeInvalidAmount, ErrCodeUnbalancedPostings},
		},
		{
			name:   "unknown direction is unbalanced",
			mutate: func(b *Bundle) { b.Postings[1].Direction = "FOO" },
			want:   []string{ErrCodeUnbalancedPostings},
		},
		{
			name:   "zero amounts balance but are invalid",
			mutate: func(b *Bundle) { b.Postings[0].AmountMinor = "0"; b.Postings[1].AmountMinor = "0" },
			want:   []string{ErrCodeInvalidAmount, ErrCodeInvalidAmount},
		},
		{
			name:   "currency mismatch",
			mutate: func(b *Bundle) { b.Postings[1].Currency = "USD" },
			opts:   ValidateOptions{BaseCurrency: "KRW"},
			want:   []string{ErrCodeCurrencyMismatch},
		},
		{
			name:   "currency unchecked without base",
			mutate: func(b *Bundle) { b.Postings[1].Currency = "USD" },
		},
		{
			name:   "locked transaction",
			mutate: func(*Bundle) {},
			opts:   ValidateOptions{LockedTransactionIDs: map[string]struct{}{"tx-1": {}}},
			want:   []string{ErrCodeLockedTransaction},
		},
		{
			name: "accumulates across checks",
			mutate: func(b *Bundle) {
				b.Manifest.BaseCurrency = ""
				b.Transactions[0].OccurredAt = "yesterday"
				b.Postings[1].AmountMinor = "9000"
			},
			want: []string{ErrCodeMissingRequired, ErrCodeInvalidDate, ErrCodeUnbalancedPostings},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleBundle()
			tt.mutate(&b)
			got := Validate(b, tt.opts)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, codes(got))
		})
	}
}

func TestValidate_MessageShape(t *testing.T) {
	b := sampleBundle()
	b.Transactions[0].OccurredAt = "bad"

	got := Validate(b, ValidateOptions{})
	assert.Equal(t, []ValidationError{{
		ErrorCode:    ErrCodeInvalidDate,
		MessageKey:   "errors.csv.invalidDate",
		SuggestedFix: "Fix occurred_at in transaction tx-1",
	}}, got)
}

func TestParseAmountMinor(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"10000", 10000, true},
		{"1", 1, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
		{"9223372036854775807", 9223372036854775807, true},
		{"9223372036854775808", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmountMinor(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsWarning(t *testing.T) {
	w := AsWarning(DuplicateImportError())
	assert.Equal(t, "CSV_DUPLICATE_IMPORT_WARNING", w.ErrorCode)
	assert.Equal(t, "error.csv.duplicateImport", w.MessageKey)
}
