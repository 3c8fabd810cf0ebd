package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
)

// TransactionRepository is an in-memory transaction store. Rows are kept in
// insertion order and copied on the way in and out, so callers never hold
// live references.
type TransactionRepository struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]domain.Transaction
}

// NewTransactionRepository creates an empty store.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{rows: make(map[string]domain.Transaction)}
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

func (r *TransactionRepository) CreateTransaction(ctx context.Context, transaction domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[transaction.ID]; exists {
		return apperrors.Newf(apperrors.CodeValidation, "transaction %s already exists", transaction.ID)
	}
	r.rows[transaction.ID] = transaction
	r.order = append(r.order, transaction.ID)
	return nil
}

func (r *TransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound.WithDetail("transaction_id", transactionID)
	}
	return &row, nil
}

func (r *TransactionRepository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return r.list(func(domain.Transaction) bool { return true }), nil
}

func (r *TransactionRepository) ListTransactionsByHousehold(ctx context.Context, householdID string) ([]domain.Transaction, error) {
	return r.list(func(t domain.Transaction) bool { return t.HouseholdID == householdID }), nil
}

func (r *TransactionRepository) list(keep func(domain.Transaction) bool) []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(r.order))
	for _, id := range r.order {
		if row := r.rows[id]; keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (r *TransactionRepository) TransactionExists(ctx context.Context, transactionID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[transactionID]
	return ok, nil
}

func (r *TransactionRepository) GetTransactionStatus(ctx context.Context, transactionID string) (domain.TransactionStatus, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[transactionID]
	if !ok {
		return "", false, nil
	}
	return row.Status, true, nil
}

func (r *TransactionRepository) UpdateTransaction(ctx context.Context, transactionID string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound.WithDetail("transaction_id", transactionID)
	}
	if row.Status == domain.StatusPosted {
		return nil, apperrors.ErrAppendOnlyViolation.WithDetail("transaction_id", transactionID)
	}

	if patch.Status != nil {
		row.Status = *patch.Status
	}
	if patch.OccurredAt != nil {
		row.OccurredAt = *patch.OccurredAt
	}
	if patch.Memo != nil {
		row.Memo = *patch.Memo
	}
	r.rows[transactionID] = row
	return &row, nil
}

func (r *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[transactionID]
	if !ok {
		return apperrors.ErrNotFound.WithDetail("transaction_id", transactionID)
	}
	if row.Status == domain.StatusPosted {
		return apperrors.ErrAppendOnlyViolation.WithDetail("transaction_id", transactionID)
	}

	delete(r.rows, transactionID)
	for i, id := range r.order {
		if id == transactionID {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *TransactionRepository) SnapshotTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return r.list(func(domain.Transaction) bool { return true }), nil
}

func (r *TransactionRepository) RestoreTransactions(ctx context.Context, rows []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = make(map[string]domain.Transaction, len(rows))
	r.order = make([]string, 0, len(rows))
	for _, row := range rows {
		r.rows[row.ID] = row
		r.order = append(r.order, row.ID)
	}
	return nil
}
