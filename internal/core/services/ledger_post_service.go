package services

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/utils/accounting"
)

const ledgerAuditScope = "ledger"

// ledgerPostService is the transaction state machine: drafts, posting,
// the void and correct chain, and lock states.
type ledgerPostService struct {
	BaseService
	txRepo      portsrepo.TransactionRepositoryFacade
	postingRepo portsrepo.PostingRepositoryFacade
	lockRepo    portsrepo.LockStateRepository
	serializer  *WriteSerializer
	newID       domain.IDFactory
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerPostService)

// WithLedgerIDFactory replaces the uuid id generator.
func WithLedgerIDFactory(newID domain.IDFactory) LedgerServiceOption {
	return func(s *ledgerPostService) {
		s.newID = newID
	}
}

// WithLedgerSerializer shares a write serializer with other services.
func WithLedgerSerializer(serializer *WriteSerializer) LedgerServiceOption {
	return func(s *ledgerPostService) {
		s.serializer = serializer
	}
}

// NewLedgerPostService creates the ledger service over the given stores.
func NewLedgerPostService(txRepo portsrepo.TransactionRepositoryFacade, postingRepo portsrepo.PostingRepositoryFacade, lockRepo portsrepo.LockStateRepository, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerPostService{
		txRepo:      txRepo,
		postingRepo: postingRepo,
		lockRepo:    lockRepo,
		newID:       uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	if svc.serializer == nil {
		svc.serializer = NewWriteSerializer()
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerPostService)(nil)

func (s *ledgerPostService) CreateDraft(ctx context.Context, input domain.CreateDraftInput) (*domain.PostedTransaction, error) {
	if input.HouseholdID == "" {
		return nil, apperrors.ErrValidation.WithDetail("field", "householdId")
	}
	if !input.OccurredAt.IsValid() {
		return nil, apperrors.ErrValidation.WithDetail("field", "occurredAt")
	}
	source := input.Source
	if source == "" {
		source = domain.SourceManual
	}
	if !source.Valid() {
		return nil, apperrors.ErrValidation.WithDetail("field", "source")
	}
	for i, p := range input.Postings {
		if !p.Direction.Valid() {
			return nil, apperrors.ErrValidation.WithDetail("field", "postings").WithDetail("index", i)
		}
	}

	return withWrite(ctx, s.serializer, func(ctx context.Context) (*domain.PostedTransaction, error) {
		id := s.newID()
		tx := domain.Transaction{
			ID:          id,
			HouseholdID: input.HouseholdID,
			ChainID:     id,
			Kind:        domain.EntryOriginal,
			Status:      domain.StatusDraft,
			OccurredAt:  input.OccurredAt,
			Memo:        input.Memo,
			Source:      source,
			LockState:   domain.LockUnlocked,
		}

		postings := make([]domain.Posting, len(input.Postings))
		for i, in := range input.Postings {
			occurredAt := in.OccurredAt
			if !occurredAt.IsValid() {
				occurredAt = input.OccurredAt
			}
			postings[i] = domain.Posting{
				ID:            s.newID(),
				TransactionID: id,
				ChainID:       id,
				EntryType:     domain.EntryOriginal,
				AccountCode:   in.AccountCode,
				Direction:     in.Direction,
				AmountMinor:   in.AmountMinor,
				Currency:      in.Currency,
				OccurredAt:    occurredAt,
				Memo:          in.Memo,
			}
		}

		err := applyAtomically(ctx, s.txRepo, s.postingRepo, func(ctx context.Context) error {
			if err := s.txRepo.CreateTransaction(ctx, tx); err != nil {
				return err
			}
			return s.postingRepo.InsertPostings(ctx, postings)
		})
		if err != nil {
			s.LogError(ctx, err, "Failed to create draft", slog.String("transaction_id", id))
			return nil, err
		}

		s.LogInfo(ctx, "Draft created",
			slog.String("transaction_id", id),
			slog.String("household_id", tx.HouseholdID),
			slog.String("source", string(source)))
		return &domain.PostedTransaction{Transaction: tx, Postings: postings}, nil
	})
}

func (s *ledgerPostService) PostDraft(ctx context.Context, transactionID string) (*domain.PostedTransaction, error) {
	return withWrite(ctx, s.serializer, func(ctx context.Context) (*domain.PostedTransaction, error) {
		draft, err := s.txRepo.FindTransactionByID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		if draft.Status != domain.StatusDraft {
			return nil, apperrors.ErrInvalidState.
				WithDetail("transaction_id", transactionID).
				WithDetail("status", string(draft.Status))
		}

		postings, err := s.postingRepo.ListPostingsByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		if _, err := accounting.ValidateBalanced(domain.PostingInputs(postings)); err != nil {
			s.LogDebug(ctx, "Draft failed balance check",
				slog.String("transaction_id", transactionID),
				slog.String("code", string(apperrors.CodeOf(err))))
			return nil, err
		}

		posted := domain.StatusPosted
		updated, err := s.txRepo.UpdateTransaction(ctx, transactionID, domain.TransactionPatch{Status: &posted})
		if err != nil {
			return nil, err
		}
		updated.LockState = domain.LockUnlocked

		s.logLedgerAudit(ctx, "POSTED", *updated)
		return &domain.PostedTransaction{Transaction: *updated, Postings: postings}, nil
	})
}

func (s *ledgerPostService) VoidPosted(ctx context.Context, transactionID string) (*domain.PostedTransaction, error) {
	return withWrite(ctx, s.serializer, func(ctx context.Context) (*domain.PostedTransaction, error) {
		original, err := s.loadUnlockedPosted(ctx, transactionID)
		if err != nil {
			return nil, err
		}

		reversal, err := accounting.VoidTransaction(original, accounting.ChainOptions{NewID: s.newID})
		if err != nil {
			return nil, err
		}
		if err := s.appendToChain(ctx, reversal); err != nil {
			return nil, err
		}

		s.logLedgerAudit(ctx, "VOIDED", reversal.Transaction)
		return &reversal, nil
	})
}

func (s *ledgerPostService) DeletePosted(ctx context.Context, transactionID string) (*domain.PostedTransaction, error) {
	return s.VoidPosted(ctx, transactionID)
}

func (s *ledgerPostService) CorrectPosted(ctx context.Context, transactionID string, postings []domain.PostingInput) (*domain.CorrectResult, error) {
	return withWrite(ctx, s.serializer, func(ctx context.Context) (*domain.CorrectResult, error) {
		original, err := s.loadUnlockedPosted(ctx, transactionID)
		if err != nil {
			return nil, err
		}

		inputs := slices.Clone(postings)
		for i := range inputs {
			if !inputs[i].Direction.Valid() {
				return nil, apperrors.ErrValidation.WithDetail("field", "postings").WithDetail("index", i)
			}
			if !inputs[i].OccurredAt.IsValid() {
				inputs[i].OccurredAt = original.Transaction.OccurredAt
			}
		}

		result, err := accounting.CorrectTransaction(original, inputs, accounting.ChainOptions{NewID: s.newID})
		if err != nil {
			return nil, err
		}
		if err := s.appendToChain(ctx, result.Reversal, result.Correction); err != nil {
			return nil, err
		}

		s.logLedgerAudit(ctx, "CORRECTED", result.Correction.Transaction)
		return &result, nil
	})
}

func (s *ledgerPostService) ReconcilePosted(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.transitionLock(ctx, transactionID, "RECONCILED", func(current domain.LockState) (domain.LockState, error) {
		if current == domain.LockClosed {
			return "", apperrors.ErrClosedLocked.WithDetail("transaction_id", transactionID)
		}
		return domain.LockReconciled, nil
	})
}

func (s *ledgerPostService) UnreconcilePosted(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.transitionLock(ctx, transactionID, "UNRECONCILED", func(current domain.LockState) (domain.LockState, error) {
		if current != domain.LockReconciled {
			return "", apperrors.Newf(apperrors.CodeInvalidState, "transaction %s is not reconciled", transactionID)
		}
		return domain.LockUnlocked, nil
	})
}

func (s *ledgerPostService) ClosePosted(ctx context.Context, transactionID string, actor domain.Role) (*domain.Transaction, error) {
	if actor != domain.RoleOwner {
		return nil, apperrors.ErrOwnerRequired.WithDetail("action", "close")
	}
	return s.transitionLock(ctx, transactionID, "CLOSED", func(domain.LockState) (domain.LockState, error) {
		return domain.LockClosed, nil
	})
}

func (s *ledgerPostService) ReopenPosted(ctx context.Context, transactionID string, actor domain.Role) (*domain.Transaction, error) {
	if actor != domain.RoleOwner {
		return nil, apperrors.ErrOwnerRequired.WithDetail("action", "reopen")
	}
	return s.transitionLock(ctx, transactionID, "REOPENED", func(current domain.LockState) (domain.LockState, error) {
		if current != domain.LockClosed {
			return "", apperrors.Newf(apperrors.CodeInvalidState, "transaction %s is not closed", transactionID)
		}
		return domain.LockUnlocked, nil
	})
}

func (s *ledgerPostService) GetTransaction(ctx context.Context, transactionID string) (*domain.PostedTransaction, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) (*domain.PostedTransaction, error) {
		tx, err := s.txRepo.FindTransactionByID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		if tx.LockState, err = s.lockRepo.GetLockState(ctx, transactionID); err != nil {
			return nil, err
		}
		postings, err := s.postingRepo.ListPostingsByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		return &domain.PostedTransaction{Transaction: *tx, Postings: postings}, nil
	})
}

func (s *ledgerPostService) ListCurrentPostedTransactions(ctx context.Context, householdID string) ([]domain.Transaction, error) {
	listed, err := s.ListPostedTransactions(ctx, householdID, domain.ListPostedOptions{})
	if err != nil {
		return nil, err
	}
	current := make([]domain.Transaction, len(listed))
	for i, t := range listed {
		current[i] = t.Transaction
	}
	return current, nil
}

func (s *ledgerPostService) ListPostedTransactions(ctx context.Context, householdID string, opts domain.ListPostedOptions) ([]domain.ListedTransaction, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) ([]domain.ListedTransaction, error) {
		rows, err := s.txRepo.ListTransactionsByHousehold(ctx, householdID)
		if err != nil {
			return nil, err
		}
		locks, err := s.lockRepo.ListLockStates(ctx)
		if err != nil {
			return nil, err
		}

		posted := slices.DeleteFunc(rows, func(t domain.Transaction) bool {
			return t.Status != domain.StatusPosted
		})
		targets := chainTargetsOf(posted)

		listed := make([]domain.ListedTransaction, 0, len(posted))
		for _, t := range posted {
			t.LockState = lockStateOf(locks, t.ID)
			entry := domain.ListedTransaction{
				Transaction:  t,
				IsVoided:     targets.voided(t.ID),
				IsSuperseded: targets.superseded(t.ID),
			}
			if !opts.IncludeVoided && !isCurrent(entry) {
				continue
			}
			listed = append(listed, entry)
		}

		slices.SortStableFunc(listed, func(a, b domain.ListedTransaction) int {
			return compareDates(b.OccurredAt, a.OccurredAt)
		})
		return listed, nil
	})
}

// loadUnlockedPosted loads a POSTED transaction with its postings and
// rejects it if a lock blocks void and correct.
func (s *ledgerPostService) loadUnlockedPosted(ctx context.Context, transactionID string) (domain.PostedTransaction, error) {
	tx, err := s.requirePosted(ctx, transactionID)
	if err != nil {
		return domain.PostedTransaction{}, err
	}
	switch tx.LockState {
	case domain.LockReconciled:
		return domain.PostedTransaction{}, apperrors.ErrReconciledLocked.WithDetail("transaction_id", transactionID)
	case domain.LockClosed:
		return domain.PostedTransaction{}, apperrors.ErrClosedLocked.WithDetail("transaction_id", transactionID)
	}

	postings, err := s.postingRepo.ListPostingsByTransactionID(ctx, transactionID)
	if err != nil {
		return domain.PostedTransaction{}, err
	}
	return domain.PostedTransaction{Transaction: *tx, Postings: postings}, nil
}

// requirePosted finds a transaction, checks it is POSTED and fills in its
// lock state.
func (s *ledgerPostService) requirePosted(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	tx, err := s.txRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != domain.StatusPosted {
		return nil, apperrors.ErrInvalidState.
			WithDetail("transaction_id", transactionID).
			WithDetail("status", string(tx.Status))
	}
	if tx.LockState, err = s.lockRepo.GetLockState(ctx, transactionID); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *ledgerPostService) transitionLock(ctx context.Context, transactionID, eventType string, next func(current domain.LockState) (domain.LockState, error)) (*domain.Transaction, error) {
	return withWrite(ctx, s.serializer, func(ctx context.Context) (*domain.Transaction, error) {
		tx, err := s.requirePosted(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		state, err := next(tx.LockState)
		if err != nil {
			return nil, err
		}
		if err := s.lockRepo.SetLockState(ctx, transactionID, state); err != nil {
			return nil, err
		}
		tx.LockState = state
		s.logLedgerAudit(ctx, eventType, *tx)
		return tx, nil
	})
}

// appendToChain persists new posted transactions all together.
func (s *ledgerPostService) appendToChain(ctx context.Context, txs ...domain.PostedTransaction) error {
	err := applyAtomically(ctx, s.txRepo, s.postingRepo, func(ctx context.Context) error {
		for _, t := range txs {
			if err := s.txRepo.CreateTransaction(ctx, t.Transaction); err != nil {
				return err
			}
			if err := s.postingRepo.InsertPostings(ctx, t.Postings); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to append to chain")
	}
	return err
}

func (s *ledgerPostService) logLedgerAudit(ctx context.Context, eventType string, t domain.Transaction) {
	s.LogAudit(ctx, ledgerAuditScope, eventType,
		slog.String("transaction_id", t.ID),
		slog.String("household_id", t.HouseholdID),
		slog.String("chain_id", t.ChainID),
		slog.String("kind", string(t.Kind)),
		slog.String("lock_state", string(t.LockState)))
}
