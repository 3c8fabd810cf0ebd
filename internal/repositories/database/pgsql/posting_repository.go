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

type PgxPostingRepository struct {
	BaseRepository
}

// newPgxPostingRepository creates a new repository for postings.
func newPgxPostingRepository(pool *pgxpool.Pool) *PgxPostingRepository {
	return &PgxPostingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PostingRepositoryFacade = (*PgxPostingRepository)(nil)

var postingColumns = []string{
	"posting_id", "transaction_id", "chain_id", "entry_type", "account_code",
	"direction", "amount_minor", "currency", "occurred_at", "memo", "linked_posting_id",
}

const selectPostings = `
SELECT
	p.seq, p.posting_id, p.transaction_id, p.chain_id, p.entry_type, p.account_code,
	p.direction, p.amount_minor, p.currency, p.occurred_at, p.memo, p.linked_posting_id
FROM postings p
`

func postingValues(p domain.Posting) []any {
	m := models.ToModelPosting(p)
	return []any{m.PostingID, m.TransactionID, m.ChainID, m.EntryType, m.AccountCode, m.Direction, m.AmountMinor, m.Currency, m.OccurredAt, m.Memo, m.LinkedPostingID}
}

func (r *PgxPostingRepository) getPostings(ctx context.Context, filterQuery string, args ...any) ([]domain.Posting, error) {
	rows, err := r.Pool.Query(ctx, selectPostings+filterQuery, args...)
	if err != nil {
		return nil, queryFailed(err, "failed to query postings")
	}
	defer rows.Close()

	modelRows, err := collect[models.Posting](rows, "failed to collect posting rows")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Posting, len(modelRows))
	for i, m := range modelRows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

// insertPostings batches the inserts on tx so a duplicate id rejects the whole set.
func insertPostings(ctx context.Context, tx pgx.Tx, postings []domain.Posting) error {
	if len(postings) == 0 {
		return nil
	}
	query := `
		INSERT INTO postings (
			posting_id, transaction_id, chain_id, entry_type, account_code,
			direction, amount_minor, currency, occurred_at, memo, linked_posting_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, p := range postings {
		batch.Queue(query, postingValues(p)...)
	}
	results := tx.SendBatch(ctx, batch)
	for _, p := range postings {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isUniqueViolation(err) {
				return apperrors.Newf(apperrors.CodeValidation, "posting %s already exists", p.ID)
			}
			return queryFailed(err, "failed to insert posting "+p.ID)
		}
	}
	if err := results.Close(); err != nil {
		return queryFailed(err, "failed to insert postings")
	}
	return nil
}

func (r *PgxPostingRepository) InsertPostings(ctx context.Context, postings []domain.Posting) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return insertPostings(ctx, tx, postings)
	})
}

func (r *PgxPostingRepository) ListPostingsByTransactionID(ctx context.Context, transactionID string) ([]domain.Posting, error) {
	return r.getPostings(ctx, `WHERE p.transaction_id = $1 ORDER BY p.seq`, transactionID)
}

func (r *PgxPostingRepository) ListPostings(ctx context.Context) ([]domain.Posting, error) {
	return r.getPostings(ctx, `ORDER BY p.seq`)
}

func (r *PgxPostingRepository) PostingExists(ctx context.Context, postingID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM postings WHERE posting_id = $1)`, postingID).Scan(&exists)
	if err != nil {
		return false, queryFailed(err, "failed to check posting "+postingID)
	}
	return exists, nil
}

// assertDraft locks the owning transaction row and rejects POSTED ones.
func assertDraft(ctx context.Context, tx pgx.Tx, transactionID string) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1 FOR UPDATE`, transactionID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return queryFailed(err, "failed to read status of transaction "+transactionID)
	}
	if domain.TransactionStatus(status) == domain.StatusPosted {
		return apperrors.ErrAppendOnlyViolation.WithDetail("transaction_id", transactionID)
	}
	return nil
}

func (r *PgxPostingRepository) ReplaceDraftPostings(ctx context.Context, transactionID string, postings []domain.Posting) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := assertDraft(ctx, tx, transactionID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM postings WHERE transaction_id = $1`, transactionID); err != nil {
			return queryFailed(err, "failed to clear draft postings")
		}
		return insertPostings(ctx, tx, postings)
	})
}

func (r *PgxPostingRepository) DeleteDraftPostings(ctx context.Context, transactionID string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := assertDraft(ctx, tx, transactionID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM postings WHERE transaction_id = $1`, transactionID); err != nil {
			return queryFailed(err, "failed to delete draft postings")
		}
		return nil
	})
}

func (r *PgxPostingRepository) SnapshotPostings(ctx context.Context) ([]domain.Posting, error) {
	return r.ListPostings(ctx)
}

func (r *PgxPostingRepository) RestorePostings(ctx context.Context, rows []domain.Posting) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM postings`); err != nil {
			return queryFailed(err, "failed to clear postings")
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"postings"}, postingColumns,
			pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
				return postingValues(rows[i]), nil
			}))
		if err != nil {
			return queryFailed(err, "failed to restore postings")
		}
		return nil
	})
}
