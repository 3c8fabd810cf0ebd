package domain

import (
	"cloud.google.com/go/civil"
)

// Direction is the side of a posting.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	switch d {
	case Debit, Credit:
		return true
	}
	return false
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Debit {
		return Credit
	}
	return Debit
}

// EntryType classifies a posting within its chain. Transactions use the
// same values for their kind.
type EntryType string

const (
	EntryOriginal   EntryType = "ORIGINAL"
	EntryReversal   EntryType = "REVERSAL"
	EntryCorrection EntryType = "CORRECTION"
)

func (e EntryType) Valid() bool {
	switch e {
	case EntryOriginal, EntryReversal, EntryCorrection:
		return true
	}
	return false
}

// TransactionKind is the chain role of a transaction.
type TransactionKind = EntryType

// TransactionStatus is the lifecycle status of a transaction. DRAFT moves
// to POSTED exactly once.
type TransactionStatus string

const (
	StatusDraft  TransactionStatus = "DRAFT"
	StatusPosted TransactionStatus = "POSTED"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPosted:
		return true
	}
	return false
}

// LockState gates void and correct on posted transactions.
type LockState string

const (
	LockUnlocked   LockState = "UNLOCKED"
	LockReconciled LockState = "RECONCILED"
	LockClosed     LockState = "CLOSED"
)

func (l LockState) Valid() bool {
	switch l {
	case LockUnlocked, LockReconciled, LockClosed:
		return true
	}
	return false
}

// Source records how a transaction entered the ledger.
type Source string

const (
	SourceManual    Source = "MANUAL"
	SourceQuickAdd  Source = "QUICK_ADD"
	SourceRecurring Source = "RECURRING"
	SourceCSVImport Source = "CSV_IMPORT"
)

func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceQuickAdd, SourceRecurring, SourceCSVImport:
		return true
	}
	return false
}

// Role is the actor's role within a household.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// IDFactory generates unique identifiers.
type IDFactory func() string

// PostingInput is a posting before it is assigned to a transaction.
type PostingInput struct {
	AccountCode string     `json:"accountCode"`
	Direction   Direction  `json:"direction"`
	AmountMinor int64      `json:"amountMinor"`
	Currency    string     `json:"currency"`
	OccurredAt  civil.Date `json:"occurredAt"`
	Memo        string     `json:"memo,omitempty"`
}

// Posting is an atomic debit or credit line of a transaction.
type Posting struct {
	ID              string     `json:"id"`
	TransactionID   string     `json:"transactionId"`
	ChainID         string     `json:"chainId"`
	EntryType       EntryType  `json:"entryType"`
	AccountCode     string     `json:"accountCode"`
	Direction       Direction  `json:"direction"`
	AmountMinor     int64      `json:"amountMinor"`
	Currency        string     `json:"currency"`
	OccurredAt      civil.Date `json:"occurredAt"`
	Memo            string     `json:"memo,omitempty"`
	LinkedPostingID string     `json:"linkedPostingId,omitempty"`
}

// Input strips the identity fields from p.
func (p Posting) Input() PostingInput {
	return PostingInput{
		AccountCode: p.AccountCode,
		Direction:   p.Direction,
		AmountMinor: p.AmountMinor,
		Currency:    p.Currency,
		OccurredAt:  p.OccurredAt,
		Memo:        p.Memo,
	}
}

// PostingInputs converts postings back to inputs, preserving order.
func PostingInputs(postings []Posting) []PostingInput {
	inputs := make([]PostingInput, len(postings))
	for i, p := range postings {
		inputs[i] = p.Input()
	}
	return inputs
}

// Transaction is a group of postings sharing a transaction id.
// ChainID equals the id of the chain's original transaction.
type Transaction struct {
	ID                  string            `json:"id"`
	HouseholdID         string            `json:"householdId"`
	ChainID             string            `json:"chainId"`
	Kind                TransactionKind   `json:"kind"`
	Status              TransactionStatus `json:"status"`
	OccurredAt          civil.Date        `json:"occurredAt"`
	SourceTransactionID string            `json:"sourceTransactionId,omitempty"`
	Memo                string            `json:"memo,omitempty"`
	Source              Source            `json:"source"`
	LockState           LockState         `json:"lockState"`
}

// TransactionPatch holds the fields a draft update may change.
type TransactionPatch struct {
	Status     *TransactionStatus
	OccurredAt *civil.Date
	Memo       *string
}

// PostedTransaction is a transaction together with its postings, as
// consumed and produced by the chain operations.
type PostedTransaction struct {
	Transaction Transaction `json:"transaction"`
	Postings    []Posting   `json:"postings"`
}

// CorrectResult pairs the reversal and the correction appended by a
// correction. Both must be persisted together.
type CorrectResult struct {
	Reversal   PostedTransaction `json:"reversal"`
	Correction PostedTransaction `json:"correction"`
}

// ListedTransaction is a posted transaction annotated for listing.
type ListedTransaction struct {
	Transaction
	IsVoided     bool `json:"isVoided"`
	IsSuperseded bool `json:"isSuperseded"`
}

// CreateDraftInput is the input to draft creation.
type CreateDraftInput struct {
	HouseholdID string         `json:"householdId"`
	OccurredAt  civil.Date     `json:"occurredAt"`
	Memo        string         `json:"memo,omitempty"`
	Postings    []PostingInput `json:"postings"`
	Source      Source         `json:"source,omitempty"`
}

// ListPostedOptions controls listPostedTransactions.
type ListPostedOptions struct {
	IncludeVoided bool
}
