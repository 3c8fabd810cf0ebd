package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
)

// PostingRepository is an in-memory posting store indexed by id and by
// transaction id.
type PostingRepository struct {
	mu       sync.RWMutex
	status   portsrepo.StatusProvider
	postings []domain.Posting
	byID     map[string]int
}

// NewPostingRepository creates an empty store. status is consulted before
// draft postings are replaced or deleted.
func NewPostingRepository(status portsrepo.StatusProvider) *PostingRepository {
	return &PostingRepository{status: status, byID: make(map[string]int)}
}

var _ portsrepo.PostingRepositoryFacade = (*PostingRepository)(nil)

func (r *PostingRepository) InsertPostings(ctx context.Context, postings []domain.Posting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNewIDsLocked(postings, ""); err != nil {
		return err
	}
	for _, p := range postings {
		r.byID[p.ID] = len(r.postings)
		r.postings = append(r.postings, p)
	}
	return nil
}

func (r *PostingRepository) ListPostingsByTransactionID(ctx context.Context, transactionID string) ([]domain.Posting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Posting
	for _, p := range r.postings {
		if p.TransactionID == transactionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PostingRepository) ListPostings(ctx context.Context) ([]domain.Posting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.postings), nil
}

func (r *PostingRepository) PostingExists(ctx context.Context, postingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[postingID]
	return ok, nil
}

func (r *PostingRepository) ReplaceDraftPostings(ctx context.Context, transactionID string, postings []domain.Posting) error {
	if err := r.assertDraft(ctx, transactionID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNewIDsLocked(postings, transactionID); err != nil {
		return err
	}
	r.removeLocked(transactionID)
	for _, p := range postings {
		r.byID[p.ID] = len(r.postings)
		r.postings = append(r.postings, p)
	}
	return nil
}

func (r *PostingRepository) DeleteDraftPostings(ctx context.Context, transactionID string) error {
	if err := r.assertDraft(ctx, transactionID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(transactionID)
	return nil
}

// checkNewIDsLocked rejects ids repeated within postings or already stored
// under a transaction other than replacing.
func (r *PostingRepository) checkNewIDsLocked(postings []domain.Posting, replacing string) error {
	seen := make(map[string]struct{}, len(postings))
	for _, p := range postings {
		if _, dup := seen[p.ID]; dup {
			return apperrors.Newf(apperrors.CodeValidation, "posting %s appears more than once", p.ID)
		}
		seen[p.ID] = struct{}{}
		if i, exists := r.byID[p.ID]; exists && r.postings[i].TransactionID != replacing {
			return apperrors.Newf(apperrors.CodeValidation, "posting %s already exists", p.ID)
		}
	}
	return nil
}

func (r *PostingRepository) assertDraft(ctx context.Context, transactionID string) error {
	if r.status == nil {
		return nil
	}
	status, found, err := r.status(ctx, transactionID)
	if err != nil {
		return err
	}
	if found && status == domain.StatusPosted {
		return apperrors.ErrAppendOnlyViolation.WithDetail("transaction_id", transactionID)
	}
	return nil
}

func (r *PostingRepository) removeLocked(transactionID string) {
	kept := r.postings[:0:0]
	for _, p := range r.postings {
		if p.TransactionID != transactionID {
			kept = append(kept, p)
		}
	}
	r.reindexLocked(kept)
}

func (r *PostingRepository) reindexLocked(postings []domain.Posting) {
	r.postings = postings
	r.byID = make(map[string]int, len(postings))
	for i, p := range postings {
		r.byID[p.ID] = i
	}
}

func (r *PostingRepository) SnapshotPostings(ctx context.Context) ([]domain.Posting, error) {
	return r.ListPostings(ctx)
}

func (r *PostingRepository) RestorePostings(ctx context.Context, rows []domain.Posting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reindexLocked(slices.Clone(rows))
	return nil
}
