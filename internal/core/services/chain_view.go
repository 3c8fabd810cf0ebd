package services

import (
	"cloud.google.com/go/civil"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// chainTargets holds the ids that some posted reversal or correction
// points back to.
type chainTargets struct {
	reversed  map[string]struct{}
	corrected map[string]struct{}
}

func chainTargetsOf(posted []domain.Transaction) chainTargets {
	targets := chainTargets{reversed: map[string]struct{}{}, corrected: map[string]struct{}{}}
	for _, t := range posted {
		if t.SourceTransactionID == "" {
			continue
		}
		switch t.Kind {
		case domain.EntryReversal:
			targets.reversed[t.SourceTransactionID] = struct{}{}
		case domain.EntryCorrection:
			targets.corrected[t.SourceTransactionID] = struct{}{}
		}
	}
	return targets
}

func (c chainTargets) voided(id string) bool {
	_, ok := c.reversed[id]
	return ok
}

func (c chainTargets) superseded(id string) bool {
	_, ok := c.corrected[id]
	return ok
}

// isCurrent reports whether t is the active head of its chain.
func isCurrent(t domain.ListedTransaction) bool {
	return t.Kind != domain.EntryReversal && !t.IsVoided && !t.IsSuperseded
}

func lockStateOf(locks map[string]domain.LockState, id string) domain.LockState {
	if state, ok := locks[id]; ok {
		return state
	}
	return domain.LockUnlocked
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
