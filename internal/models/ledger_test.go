package models

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

func TestTransactionRow_DropsLockState(t *testing.T) {
	tx := domain.Transaction{
		ID:          "tx-1",
		HouseholdID: "hh-1",
		ChainID:     "tx-1",
		Kind:        domain.EntryOriginal,
		Status:      domain.StatusPosted,
		OccurredAt:  civil.Date{Year: 2026, Month: 2, Day: 1},
		Source:      domain.SourceManual,
		LockState:   domain.LockClosed,
	}

	row := ToModelTransaction(tx)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), row.OccurredAt)

	back := row.ToDomain()
	assert.Equal(t, domain.LockUnlocked, back.LockState)
	back.LockState = tx.LockState
	assert.Equal(t, tx, back)
}

func TestRecurringRuleRow_DatesSurviveLocalTime(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	row := RecurringRule{
		RuleID:      "r-1",
		NextRunDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2026, 2, 1, 18, 0, 0, 0, seoul),
	}

	rule := row.ToDomain()
	assert.Equal(t, civil.Date{Year: 2026, Month: 3, Day: 1}, rule.NextRunDate)
	assert.Equal(t, time.UTC, rule.CreatedAt.Location())
	assert.Equal(t, 9, rule.CreatedAt.Hour())
}
