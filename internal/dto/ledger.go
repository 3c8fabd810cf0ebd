package dto

import (
	"strings"

	"cloud.google.com/go/civil"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// PostingRequest is one posting line in a request body. OccurredAt
// defaults to the transaction's date.
type PostingRequest struct {
	AccountCode string      `json:"accountCode" binding:"required"`
	Direction   string      `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	AmountMinor int64       `json:"amountMinor"`
	Currency    string      `json:"currency" binding:"required,len=3"`
	OccurredAt  *civil.Date `json:"occurredAt,omitempty" swaggertype:"string" example:"2026-02-01"`
	Memo        string      `json:"memo,omitempty" binding:"max=200"`
}

// CreateDraftRequest is the body of POST /ledger/drafts.
type CreateDraftRequest struct {
	OccurredAt civil.Date       `json:"occurredAt" swaggertype:"string" example:"2026-02-01"`
	Memo       string           `json:"memo,omitempty" binding:"max=200"`
	Postings   []PostingRequest `json:"postings" binding:"dive"`
}

// CorrectRequest is the body of POST /ledger/transactions/{id}/correct.
// Postings without a date take the original transaction's.
type CorrectRequest struct {
	Postings []PostingRequest `json:"postings" binding:"required,min=1,dive"`
}

// LockRequest is the body of POST /ledger/transactions/{id}/lock.
type LockRequest struct {
	Action string `json:"action" binding:"required,oneof=reconcile unreconcile close reopen"`
}

// ListPostedResponse is a page of posted transactions.
type ListPostedResponse struct {
	Transactions []domain.ListedTransaction `json:"transactions"`
	NextToken    string                     `json:"nextToken,omitempty"`
}

// ToPostingInputs converts request postings. A missing date is left zero
// for the service to fill in.
func ToPostingInputs(reqs []PostingRequest) []domain.PostingInput {
	inputs := make([]domain.PostingInput, len(reqs))
	for i, r := range reqs {
		var occurredAt civil.Date
		if r.OccurredAt != nil {
			occurredAt = *r.OccurredAt
		}
		inputs[i] = domain.PostingInput{
			AccountCode: strings.TrimSpace(r.AccountCode),
			Direction:   domain.Direction(r.Direction),
			AmountMinor: r.AmountMinor,
			Currency:    strings.ToUpper(r.Currency),
			OccurredAt:  occurredAt,
			Memo:        r.Memo,
		}
	}
	return inputs
}

// ToDomain converts the request into a draft input for householdID.
func (r CreateDraftRequest) ToDomain(householdID string) domain.CreateDraftInput {
	return domain.CreateDraftInput{
		HouseholdID: householdID,
		OccurredAt:  r.OccurredAt,
		Memo:        r.Memo,
		Postings:    ToPostingInputs(r.Postings),
		Source:      domain.SourceManual,
	}
}
