package accounting

import (
	"math"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

var day = civil.Date{Year: 2026, Month: 2, Day: 1}

func leg(account string, dir domain.Direction, amount int64) domain.PostingInput {
	return domain.PostingInput{AccountCode: account, Direction: dir, AmountMinor: amount, Currency: "KRW", OccurredAt: day}
}

func TestValidateBalanced(t *testing.T) {
	tests := []struct {
		name     string
		postings []domain.PostingInput
		wantCode apperrors.Code
		want     BalanceTotals
	}{
		{
			name:     "empty list",
			postings: nil,
			wantCode: apperrors.CodeEmptyPostings,
		},
		{
			name: "balanced pair",
			postings: []domain.PostingInput{
				leg("expense:living", domain.Debit, 10000),
				leg("asset:cash", domain.Credit, 10000),
			},
			want: BalanceTotals{DebitTotal: 10000, CreditTotal: 10000},
		},
		{
			name: "balanced split",
			postings: []domain.PostingInput{
				leg("expense:living", domain.Debit, 7000),
				leg("expense:rent", domain.Debit, 3000),
				leg("asset:cash", domain.Credit, 10000),
			},
			want: BalanceTotals{DebitTotal: 10000, CreditTotal: 10000},
		},
		{
			name: "unbalanced",
			postings: []domain.PostingInput{
				leg("expense:living", domain.Debit, 100000),
				leg("asset:cash", domain.Credit, 90000),
			},
			wantCode: apperrors.CodeUnbalancedPostings,
			want:     BalanceTotals{DebitTotal: 100000, CreditTotal: 90000},
		},
		{
			name: "zero amount short-circuits with running totals",
			postings: []domain.PostingInput{
				leg("expense:living", domain.Debit, 500),
				leg("asset:cash", domain.Credit, 0),
				leg("asset:cash", domain.Credit, 500),
			},
			wantCode: apperrors.CodeInvalidAmount,
			want:     BalanceTotals{DebitTotal: 500},
		},
		{
			name: "negative amount",
			postings: []domain.PostingInput{
				leg("expense:living", domain.Debit, -5),
			},
			wantCode: apperrors.CodeInvalidAmount,
		},
		{
			name: "overflowing total",
			postings: []domain.PostingInput{
				leg("expense:living", domain.Debit, math.MaxInt64),
				leg("expense:living", domain.Debit, 1),
			},
			wantCode: apperrors.CodeInvalidAmount,
			want:     BalanceTotals{DebitTotal: math.MaxInt64},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := ValidateBalanced(tt.postings)
			assert.Equal(t, tt.want, totals)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			details := apperrors.DetailsOf(err)
			assert.Equal(t, tt.want.DebitTotal, details["debit_total"])
			assert.Equal(t, tt.want.CreditTotal, details["credit_total"])
		})
	}
}

func TestValidateBalanced_SentinelMatching(t *testing.T) {
	_, err := ValidateBalanced([]domain.PostingInput{leg("a", domain.Debit, 1)})
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedPostings)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestNetByAccount(t *testing.T) {
	net := NetByAccount([]domain.PostingInput{
		leg("expense:living", domain.Debit, 300),
		leg("asset:cash", domain.Credit, 300),
		leg("asset:cash", domain.Debit, 100),
	})
	assert.Equal(t, map[string]int64{"expense:living": 300, "asset:cash": -200}, net)
}
