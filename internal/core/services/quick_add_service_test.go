package services_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/core/services"
	"github.com/SscSPs/twoline_ledger/internal/dto"
	"github.com/SscSPs/twoline_ledger/internal/quickadd"
	"github.com/SscSPs/twoline_ledger/internal/repositories/memory"
	"github.com/SscSPs/twoline_ledger/internal/templates"
)

func newQuickAdd(t *testing.T) (portssvc.QuickAddSvcFacade, portssvc.LedgerSvcFacade) {
	t.Helper()
	repos := memory.NewRepositoryProvider()
	ledger := services.NewLedgerPostService(repos.TransactionRepo, repos.PostingRepo, repos.LockStateRepo,
		services.WithLedgerIDFactory(sequence("tx")))
	quick := services.NewQuickAddService(ledger, templates.DefaultCatalog(), "KRW", domain.LocaleKO,
		services.WithQuickAddClock(func() time.Time { return fixedNow }))
	return quick, ledger
}

func TestQuickAdd_Parse(t *testing.T) {
	quick, _ := newQuickAdd(t)

	result := quick.Parse(context.Background(), "02/04 10:11 결제 8900원")
	require.False(t, result.Blocked())
	assert.Equal(t, civil.Date{Year: 2026, Month: 2, Day: 4}, *result.Fields.OccurredAt.Value)
	assert.Equal(t, int64(8900), *result.Fields.Amount.Value)
}

func TestQuickAdd_CreateDraft(t *testing.T) {
	tests := []struct {
		name        string
		input       dto.QuickAddDraftInput
		wantDebit   string
		wantCredit  string
		wantAmount  int64
		wantOccured civil.Date
	}{
		{
			name:        "spending uses living spend",
			input:       dto.QuickAddDraftInput{HouseholdID: householdID, Text: "카드승인 2026.02.07 스타벅스 12,900원"},
			wantDebit:   "expense:living",
			wantCredit:  "asset:cash",
			wantAmount:  12900,
			wantOccured: civil.Date{Year: 2026, Month: 2, Day: 7},
		},
		{
			name:        "incoming money uses salary",
			input:       dto.QuickAddDraftInput{HouseholdID: householdID, Text: "2026-02-05 환불 27,000원 입금"},
			wantDebit:   "asset:cash",
			wantCredit:  "income:salary",
			wantAmount:  27000,
			wantOccured: civil.Date{Year: 2026, Month: 2, Day: 5},
		},
		{
			name:        "explicit template wins",
			input:       dto.QuickAddDraftInput{HouseholdID: householdID, Text: "2026-02-08 출금 15,000원 우리은행", TemplateID: "rent_monthly", Locale: domain.LocaleEN},
			wantDebit:   "expense:rent",
			wantCredit:  "asset:cash",
			wantAmount:  15000,
			wantOccured: civil.Date{Year: 2026, Month: 2, Day: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quick, ledger := newQuickAdd(t)

			result, err := quick.CreateDraft(context.Background(), tt.input)
			require.NoError(t, err)

			draft := result.Draft
			assert.Equal(t, domain.StatusDraft, draft.Transaction.Status)
			assert.Equal(t, domain.SourceQuickAdd, draft.Transaction.Source)
			assert.Equal(t, tt.wantOccured, draft.Transaction.OccurredAt)
			require.Len(t, draft.Postings, 2)
			assert.Equal(t, tt.wantDebit, draft.Postings[0].AccountCode)
			assert.Equal(t, tt.wantCredit, draft.Postings[1].AccountCode)
			assert.Equal(t, tt.wantAmount, draft.Postings[0].AmountMinor)
			assert.Equal(t, "KRW", draft.Postings[0].Currency)

			// A quick add draft posts without edits.
			_, err = ledger.PostDraft(context.Background(), draft.Transaction.ID)
			assert.NoError(t, err)
		})
	}
}

func TestQuickAdd_CreateDraftFailures(t *testing.T) {
	quick, _ := newQuickAdd(t)
	ctx := context.Background()

	_, err := quick.CreateDraft(ctx, dto.QuickAddDraftInput{HouseholdID: householdID, Text: "카드승인 9,900원"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeQuickAddBlocked, apperrors.CodeOf(err))
	assert.Equal(t, []quickadd.ReasonCode{quickadd.ReasonNoDatetime}, apperrors.DetailsOf(err)["reasons"])

	_, err = quick.CreateDraft(ctx, dto.QuickAddDraftInput{HouseholdID: householdID, Text: "2026-02-08 결제 1,000원", Locale: "fr"})
	assert.Equal(t, apperrors.CodeUnsupportedLocale, apperrors.CodeOf(err))

	_, err = quick.CreateDraft(ctx, dto.QuickAddDraftInput{HouseholdID: householdID, Text: "2026-02-08 결제 1,000원", TemplateID: "missing"})
	assert.Equal(t, apperrors.CodeTemplateNotFound, apperrors.CodeOf(err))

	_, err = quick.CreateDraft(ctx, dto.QuickAddDraftInput{Text: "2026-02-08 결제 1,000원"})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}
