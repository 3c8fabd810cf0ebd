package repositories

import (
	"context"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// StatusProvider reports the status of the transaction a posting belongs
// to. Posting repositories consult it because postings do not carry their
// transaction's status.
type StatusProvider func(ctx context.Context, transactionID string) (domain.TransactionStatus, bool, error)

// PostingReader defines read operations for postings.
type PostingReader interface {
	// ListPostingsByTransactionID returns a transaction's postings in insertion order.
	ListPostingsByTransactionID(ctx context.Context, transactionID string) ([]domain.Posting, error)

	// ListPostings returns every posting in insertion order.
	ListPostings(ctx context.Context) ([]domain.Posting, error)

	// PostingExists reports whether a posting with the id is stored.
	PostingExists(ctx context.Context, postingID string) (bool, error)
}

// PostingWriter defines write operations for postings. Replacing or
// deleting the postings of a POSTED transaction fails with
// apperrors.ErrAppendOnlyViolation.
type PostingWriter interface {
	// InsertPostings appends postings.
	InsertPostings(ctx context.Context, postings []domain.Posting) error

	// ReplaceDraftPostings swaps the postings of a draft transaction.
	ReplaceDraftPostings(ctx context.Context, transactionID string, postings []domain.Posting) error

	// DeleteDraftPostings removes the postings of a draft transaction.
	DeleteDraftPostings(ctx context.Context, transactionID string) error
}

// PostingSnapshotter supports all-or-nothing rollback around a batch of writes.
type PostingSnapshotter interface {
	SnapshotPostings(ctx context.Context) ([]domain.Posting, error)
	RestorePostings(ctx context.Context, rows []domain.Posting) error
}

// PostingRepositoryFacade combines all posting repository interfaces.
type PostingRepositoryFacade interface {
	PostingReader
	PostingWriter
	PostingSnapshotter
}
