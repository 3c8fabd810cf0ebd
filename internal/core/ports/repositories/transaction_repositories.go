package repositories

import (
	"context"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// TransactionReader defines read operations for transaction rows.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by id. It returns
	// apperrors.ErrNotFound when no such transaction exists.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns every transaction in insertion order.
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)

	// ListTransactionsByHousehold returns the household's transactions in insertion order.
	ListTransactionsByHousehold(ctx context.Context, householdID string) ([]domain.Transaction, error)

	// TransactionExists reports whether a transaction with the id is stored.
	TransactionExists(ctx context.Context, transactionID string) (bool, error)

	// GetTransactionStatus returns the status of a transaction and whether it was found.
	GetTransactionStatus(ctx context.Context, transactionID string) (domain.TransactionStatus, bool, error)
}

// TransactionWriter defines write operations for transaction rows.
// Updates and deletes of POSTED transactions fail with
// apperrors.ErrAppendOnlyViolation.
type TransactionWriter interface {
	// CreateTransaction stores a new transaction row.
	CreateTransaction(ctx context.Context, transaction domain.Transaction) error

	// UpdateTransaction applies a patch to a non-posted transaction and returns the result.
	UpdateTransaction(ctx context.Context, transactionID string, patch domain.TransactionPatch) (*domain.Transaction, error)

	// DeleteTransaction removes a non-posted transaction.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionSnapshotter supports all-or-nothing rollback around a batch of writes.
type TransactionSnapshotter interface {
	// SnapshotTransactions returns an independent copy of every stored row.
	SnapshotTransactions(ctx context.Context) ([]domain.Transaction, error)

	// RestoreTransactions replaces the stored rows with rows.
	RestoreTransactions(ctx context.Context, rows []domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionSnapshotter
}
