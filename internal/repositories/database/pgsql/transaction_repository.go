package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/twoline_ledger/internal/models"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction rows.
func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

var transactionColumns = []string{
	"transaction_id", "household_id", "chain_id", "kind", "status",
	"occurred_at", "source_transaction_id", "memo", "source",
}

const selectTransactions = `
SELECT
	t.seq, t.transaction_id, t.household_id, t.chain_id, t.kind, t.status,
	t.occurred_at, t.source_transaction_id, t.memo, t.source
FROM transactions t
`

func (r *PgxTransactionRepository) getTransactions(ctx context.Context, filterQuery string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, selectTransactions+filterQuery, args...)
	if err != nil {
		return nil, queryFailed(err, "failed to query transactions")
	}
	defer rows.Close()

	modelRows, err := collect[models.Transaction](rows, "failed to collect transaction rows")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, len(modelRows))
	for i, m := range modelRows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, transaction domain.Transaction) error {
	m := models.ToModelTransaction(transaction)
	query := `
		INSERT INTO transactions (
			transaction_id, household_id, chain_id, kind, status,
			occurred_at, source_transaction_id, memo, source
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.HouseholdID,
		m.ChainID,
		m.Kind,
		m.Status,
		m.OccurredAt,
		m.SourceTransactionID,
		m.Memo,
		m.Source,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Newf(apperrors.CodeValidation, "transaction %s already exists", transaction.ID)
		}
		return queryFailed(err, "failed to insert transaction "+transaction.ID)
	}
	return nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	rows, err := r.getTransactions(ctx, `WHERE t.transaction_id = $1`, transactionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound.WithDetail("transaction_id", transactionID)
	}
	return &rows[0], nil
}

func (r *PgxTransactionRepository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return r.getTransactions(ctx, `ORDER BY t.seq`)
}

func (r *PgxTransactionRepository) ListTransactionsByHousehold(ctx context.Context, householdID string) ([]domain.Transaction, error) {
	return r.getTransactions(ctx, `WHERE t.household_id = $1 ORDER BY t.seq`, householdID)
}

func (r *PgxTransactionRepository) TransactionExists(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1)`, transactionID).Scan(&exists)
	if err != nil {
		return false, queryFailed(err, "failed to check transaction "+transactionID)
	}
	return exists, nil
}

func (r *PgxTransactionRepository) GetTransactionStatus(ctx context.Context, transactionID string) (domain.TransactionStatus, bool, error) {
	var status string
	err := r.Pool.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1`, transactionID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, queryFailed(err, "failed to read status of transaction "+transactionID)
	}
	return domain.TransactionStatus(status), true, nil
}

// UpdateTransaction locks the row so the status check and the update see
// the same state.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, transactionID string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	var updated *domain.Transaction
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectTransactions+`WHERE t.transaction_id = $1 FOR UPDATE`, transactionID)
		if err != nil {
			return queryFailed(err, "failed to lock transaction "+transactionID)
		}
		current, err := collect[models.Transaction](rows, "failed to collect transaction row")
		if err != nil {
			return err
		}
		if len(current) == 0 {
			return apperrors.ErrNotFound.WithDetail("transaction_id", transactionID)
		}
		row := current[0].ToDomain()
		if row.Status == domain.StatusPosted {
			return apperrors.ErrAppendOnlyViolation.WithDetail("transaction_id", transactionID)
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

		m := models.ToModelTransaction(row)
		_, err = tx.Exec(ctx,
			`UPDATE transactions SET status = $2, occurred_at = $3, memo = $4 WHERE transaction_id = $1`,
			transactionID, m.Status, m.OccurredAt, m.Memo)
		if err != nil {
			return queryFailed(err, "failed to update transaction "+transactionID)
		}
		updated = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	status, found, err := r.GetTransactionStatus(ctx, transactionID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.ErrNotFound.WithDetail("transaction_id", transactionID)
	}
	if status == domain.StatusPosted {
		return apperrors.ErrAppendOnlyViolation.WithDetail("transaction_id", transactionID)
	}

	tag, err := r.Pool.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1 AND status <> 'POSTED'`, transactionID)
	if err != nil {
		return queryFailed(err, "failed to delete transaction "+transactionID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAppendOnlyViolation.WithDetail("transaction_id", transactionID)
	}
	return nil
}

func (r *PgxTransactionRepository) SnapshotTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return r.ListTransactions(ctx)
}

// RestoreTransactions rewrites the table in one database transaction.
func (r *PgxTransactionRepository) RestoreTransactions(ctx context.Context, rows []domain.Transaction) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM transactions`); err != nil {
			return queryFailed(err, "failed to clear transactions")
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"transactions"}, transactionColumns,
			pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
				m := models.ToModelTransaction(rows[i])
				return []any{m.TransactionID, m.HouseholdID, m.ChainID, m.Kind, m.Status, m.OccurredAt, m.SourceTransactionID, m.Memo, m.Source}, nil
			}))
		if err != nil {
			return queryFailed(err, "failed to restore transactions")
		}
		return nil
	})
}
