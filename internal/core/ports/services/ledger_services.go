package services

import (
	"context"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// LedgerWriterSvc defines the draft and chain operations of the ledger.
type LedgerWriterSvc interface {
	// CreateDraft stores a new DRAFT transaction. Drafts may be unbalanced.
	CreateDraft(ctx context.Context, input domain.CreateDraftInput) (*domain.PostedTransaction, error)

	// PostDraft balance-checks a draft and moves it to POSTED.
	PostDraft(ctx context.Context, transactionID string) (*domain.PostedTransaction, error)

	// VoidPosted appends a reversal of a posted transaction.
	VoidPosted(ctx context.Context, transactionID string) (*domain.PostedTransaction, error)

	// DeletePosted is VoidPosted. Posted rows are never removed.
	DeletePosted(ctx context.Context, transactionID string) (*domain.PostedTransaction, error)

	// CorrectPosted appends a reversal and a correction built from postings.
	CorrectPosted(ctx context.Context, transactionID string, postings []domain.PostingInput) (*domain.CorrectResult, error)
}

// LedgerLockSvc defines lock state transitions of posted transactions.
type LedgerLockSvc interface {
	ReconcilePosted(ctx context.Context, transactionID string) (*domain.Transaction, error)
	UnreconcilePosted(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ClosePosted and ReopenPosted require actor to be the household owner.
	ClosePosted(ctx context.Context, transactionID string, actor domain.Role) (*domain.Transaction, error)
	ReopenPosted(ctx context.Context, transactionID string, actor domain.Role) (*domain.Transaction, error)
}

// LedgerReaderSvc defines read operations of the ledger.
type LedgerReaderSvc interface {
	// GetTransaction returns a transaction of any status with its postings.
	GetTransaction(ctx context.Context, transactionID string) (*domain.PostedTransaction, error)

	// ListCurrentPostedTransactions returns the active head of every chain.
	ListCurrentPostedTransactions(ctx context.Context, householdID string) ([]domain.Transaction, error)

	// ListPostedTransactions returns posted transactions by occurredAt
	// descending, annotated with their voided and superseded flags.
	ListPostedTransactions(ctx context.Context, householdID string, opts domain.ListPostedOptions) ([]domain.ListedTransaction, error)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerLockSvc
	LedgerReaderSvc
}
