package accounting

import (
	"math"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// BalanceTotals are the debit and credit sums seen by ValidateBalanced.
type BalanceTotals struct {
	DebitTotal  int64 `json:"debitTotal"`
	CreditTotal int64 `json:"creditTotal"`
}

// CalculateSignedAmount returns the amount with DEBIT positive and CREDIT
// negative. Summed per account it gives the net effect of a set of postings.
func CalculateSignedAmount(p domain.PostingInput) int64 {
	if p.Direction == domain.Debit {
		return p.AmountMinor
	}
	return -p.AmountMinor
}

// NetByAccount sums signed amounts per account code.
func NetByAccount(postings []domain.PostingInput) map[string]int64 {
	net := make(map[string]int64)
	for _, p := range postings {
		net[p.AccountCode] += CalculateSignedAmount(p)
	}
	return net
}

// ValidateBalanced is the single authority for the balance invariant.
//
// It fails with EMPTY_POSTINGS for an empty list and with INVALID_AMOUNT at
// the first posting whose amount is not positive (or would overflow the
// running total), returning the totals accumulated so far. Otherwise it
// fails with UNBALANCED_POSTINGS when the debit and credit sums differ.
// Every failure carries both totals in its details.
func ValidateBalanced(postings []domain.PostingInput) (BalanceTotals, error) {
	var totals BalanceTotals
	if len(postings) == 0 {
		return totals, withTotals(apperrors.ErrEmptyPostings, totals)
	}

	for _, p := range postings {
		if p.AmountMinor <= 0 {
			return totals, withTotals(apperrors.ErrInvalidAmount, totals)
		}
		if p.Direction == domain.Debit {
			if totals.DebitTotal > math.MaxInt64-p.AmountMinor {
				return totals, withTotals(apperrors.ErrInvalidAmount, totals)
			}
			totals.DebitTotal += p.AmountMinor
		} else {
			if totals.CreditTotal > math.MaxInt64-p.AmountMinor {
				return totals, withTotals(apperrors.ErrInvalidAmount, totals)
			}
			totals.CreditTotal += p.AmountMinor
		}
	}

	if totals.DebitTotal != totals.CreditTotal {
		return totals, withTotals(apperrors.ErrUnbalancedPostings, totals)
	}
	return totals, nil
}

func withTotals(base *apperrors.AppError, totals BalanceTotals) error {
	return base.
		WithDetail("debit_total", totals.DebitTotal).
		WithDetail("credit_total", totals.CreditTotal)
}
