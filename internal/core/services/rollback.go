package services

import (
	"context"
	"errors"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
)

// ledgerSnapshot is a copy of both ledger stores taken before a batch of
// writes, restored when the batch fails part way.
type ledgerSnapshot struct {
	transactions []domain.Transaction
	postings     []domain.Posting
}

func takeSnapshot(ctx context.Context, txRepo portsrepo.TransactionSnapshotter, postingRepo portsrepo.PostingSnapshotter) (ledgerSnapshot, error) {
	transactions, err := txRepo.SnapshotTransactions(ctx)
	if err != nil {
		return ledgerSnapshot{}, err
	}
	postings, err := postingRepo.SnapshotPostings(ctx)
	if err != nil {
		return ledgerSnapshot{}, err
	}
	return ledgerSnapshot{transactions: transactions, postings: postings}, nil
}

func (s ledgerSnapshot) restore(ctx context.Context, txRepo portsrepo.TransactionSnapshotter, postingRepo portsrepo.PostingSnapshotter) error {
	return errors.Join(
		txRepo.RestoreTransactions(ctx, s.transactions),
		postingRepo.RestorePostings(ctx, s.postings),
	)
}

// applyAtomically runs apply and rolls both stores back if it fails.
func applyAtomically(ctx context.Context, txRepo portsrepo.TransactionSnapshotter, postingRepo portsrepo.PostingSnapshotter, apply func(ctx context.Context) error) error {
	snap, err := takeSnapshot(ctx, txRepo, postingRepo)
	if err != nil {
		return err
	}
	if err := apply(ctx); err != nil {
		if restoreErr := snap.restore(context.WithoutCancel(ctx), txRepo, postingRepo); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}
	return nil
}
