package accounting

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// ChainOptions overrides fields of the appended transaction. Zero values
// keep the original's.
type ChainOptions struct {
	NewID      domain.IDFactory
	OccurredAt *civil.Date
	Memo       *string
}

func (o ChainOptions) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

func (o ChainOptions) occurredAt(original domain.Transaction) civil.Date {
	if o.OccurredAt != nil {
		return *o.OccurredAt
	}
	return original.OccurredAt
}

func (o ChainOptions) memo(original domain.Transaction) string {
	if o.Memo != nil {
		return *o.Memo
	}
	return original.Memo
}

func chainIDOf(t domain.Transaction) string {
	if t.ChainID != "" {
		return t.ChainID
	}
	return t.ID
}

// VoidTransaction builds the reversal of original: every posting flipped,
// with a fresh id and linked back to the posting it offsets. The reversal
// shares the original's chain and is not persisted here.
func VoidTransaction(original domain.PostedTransaction, opts ChainOptions) (domain.PostedTransaction, error) {
	chainID := chainIDOf(original.Transaction)
	reversalID := opts.newID()

	postings := make([]domain.Posting, len(original.Postings))
	for i, p := range original.Postings {
		postings[i] = domain.Posting{
			ID:              opts.newID(),
			TransactionID:   reversalID,
			ChainID:         chainID,
			EntryType:       domain.EntryReversal,
			AccountCode:     p.AccountCode,
			Direction:       p.Direction.Flip(),
			AmountMinor:     p.AmountMinor,
			Currency:        p.Currency,
			OccurredAt:      p.OccurredAt,
			Memo:            p.Memo,
			LinkedPostingID: p.ID,
		}
	}

	if _, err := ValidateBalanced(domain.PostingInputs(postings)); err != nil {
		return domain.PostedTransaction{}, err
	}

	return domain.PostedTransaction{
		Transaction: domain.Transaction{
			ID:                  reversalID,
			HouseholdID:         original.Transaction.HouseholdID,
			ChainID:             chainID,
			Kind:                domain.EntryReversal,
			Status:              domain.StatusPosted,
			OccurredAt:          opts.occurredAt(original.Transaction),
			SourceTransactionID: original.Transaction.ID,
			Memo:                opts.memo(original.Transaction),
			Source:              original.Transaction.Source,
			LockState:           domain.LockUnlocked,
		},
		Postings: postings,
	}, nil
}

// CorrectTransaction replaces original with the given postings: a reversal
// of original plus a CORRECTION transaction on the same chain. Every
// correction currency must appear among the original's postings, and the
// correction must balance.
func CorrectTransaction(original domain.PostedTransaction, inputs []domain.PostingInput, opts ChainOptions) (domain.CorrectResult, error) {
	currencies := make(map[string]struct{}, len(original.Postings))
	for _, p := range original.Postings {
		currencies[p.Currency] = struct{}{}
	}
	for _, in := range inputs {
		if _, ok := currencies[in.Currency]; !ok {
			return domain.CorrectResult{}, apperrors.ErrCurrencyMismatch.WithDetail("currency", in.Currency)
		}
	}

	if _, err := ValidateBalanced(inputs); err != nil {
		return domain.CorrectResult{}, err
	}

	reversal, err := VoidTransaction(original, opts)
	if err != nil {
		return domain.CorrectResult{}, err
	}

	chainID := chainIDOf(original.Transaction)
	correctionID := opts.newID()
	postings := make([]domain.Posting, len(inputs))
	for i, in := range inputs {
		postings[i] = domain.Posting{
			ID:            opts.newID(),
			TransactionID: correctionID,
			ChainID:       chainID,
			EntryType:     domain.EntryCorrection,
			AccountCode:   in.AccountCode,
			Direction:     in.Direction,
			AmountMinor:   in.AmountMinor,
			Currency:      in.Currency,
			OccurredAt:    in.OccurredAt,
			Memo:          in.Memo,
		}
	}

	return domain.CorrectResult{
		Reversal: reversal,
		Correction: domain.PostedTransaction{
			Transaction: domain.Transaction{
				ID:                  correctionID,
				HouseholdID:         original.Transaction.HouseholdID,
				ChainID:             chainID,
				Kind:                domain.EntryCorrection,
				Status:              domain.StatusPosted,
				OccurredAt:          opts.occurredAt(original.Transaction),
				SourceTransactionID: original.Transaction.ID,
				Memo:                opts.memo(original.Transaction),
				Source:              original.Transaction.Source,
				LockState:           domain.LockUnlocked,
			},
			Postings: postings,
		},
	}, nil
}
