package services_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/core/services"
	"github.com/SscSPs/twoline_ledger/internal/csvkit"
	"github.com/SscSPs/twoline_ledger/internal/dto"
	"github.com/SscSPs/twoline_ledger/internal/platform/config"
	"github.com/SscSPs/twoline_ledger/internal/repositories/memory"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func mustFiles(t *testing.T, b csvkit.Bundle) []csvkit.File {
	t.Helper()
	files, err := csvkit.SerializeCanonical(b, csvkit.SerializeOptions{})
	require.NoError(t, err)
	return files
}

func postEntry(t *testing.T, c *portssvc.ServiceContainer, on civil.Date, debit, credit string, amount int64) string {
	t.Helper()
	ctx := context.Background()
	draft, err := c.Ledger.CreateDraft(ctx, domain.CreateDraftInput{
		HouseholdID: householdID,
		OccurredAt:  on,
		Postings: []domain.PostingInput{
			{AccountCode: debit, Direction: domain.Debit, AmountMinor: amount, Currency: "KRW"},
			{AccountCode: credit, Direction: domain.Credit, AmountMinor: amount, Currency: "KRW"},
		},
	})
	require.NoError(t, err)
	_, err = c.Ledger.PostDraft(ctx, draft.Transaction.ID)
	require.NoError(t, err)
	return draft.Transaction.ID
}

func TestDashboard_GetSummary(t *testing.T) {
	ctx := context.Background()
	c := services.NewServiceContainer(&config.Config{BaseCurrency: "KRW", DefaultLocale: "ko"}, memory.NewRepositoryProvider(), nil)
	today := date(2026, 2, 15)

	quick, err := c.QuickAdd.CreateDraft(ctx, dto.QuickAddDraftInput{HouseholdID: householdID, Text: "카드승인 2026.02.07 스타벅스 12,900원"})
	require.NoError(t, err)
	_, err = c.Ledger.PostDraft(ctx, quick.Draft.Transaction.ID)
	require.NoError(t, err)

	postEntry(t, c, date(2026, 1, 25), "asset:cash", "income:salary", 3000000)
	postEntry(t, c, date(2025, 12, 1), "expense:rent", "asset:cash", 500000)
	postEntry(t, c, date(2025, 6, 1), "expense:living", "asset:cash", 700)
	voided := postEntry(t, c, date(2026, 2, 10), "expense:living", "asset:cash", 1000)
	_, err = c.Ledger.VoidPosted(ctx, voided)
	require.NoError(t, err)
	_, err = c.Ledger.CreateDraft(ctx, domain.CreateDraftInput{HouseholdID: householdID, OccurredAt: today, Postings: pair(99, 99)})
	require.NoError(t, err)
	postEntry(t, c, date(2026, 2, 1), "expense:living", "asset:cash", 10000)

	first, err := c.CSVImport.PreviewCanonical(ctx, dto.PreviewInput{HouseholdID: householdID, Files: mustFiles(t, bundleFixture())})
	require.NoError(t, err)
	_, err = c.CSVImport.CommitCanonical(ctx, dto.CommitInput{SessionID: first.SessionID, HouseholdID: householdID})
	require.NoError(t, err)
	_, err = c.CSVImport.PreviewCanonical(ctx, dto.PreviewInput{HouseholdID: householdID, Files: mustFiles(t, bundleFixture())})
	require.NoError(t, err)

	soon, err := c.Recurring.CreateRule(ctx, domain.CreateRuleInput{HouseholdID: householdID, TemplateID: "rent_monthly", AmountMinor: 500000, DayOfMonth: 25, StartDate: today, Locale: domain.LocaleKO})
	require.NoError(t, err)
	later, err := c.Recurring.CreateRule(ctx, domain.CreateRuleInput{HouseholdID: householdID, TemplateID: "salary", AmountMinor: 3000000, DayOfMonth: 1, StartDate: today, Locale: domain.LocaleKO})
	require.NoError(t, err)
	paused, err := c.Recurring.CreateRule(ctx, domain.CreateRuleInput{HouseholdID: householdID, TemplateID: "living_spend", AmountMinor: 1, DayOfMonth: 16, StartDate: today, Locale: domain.LocaleKO})
	require.NoError(t, err)
	_, err = c.Recurring.UpdateRule(ctx, paused.ID, domain.UpdateRuleInput{Active: ptr(false), EffectiveFrom: today})
	require.NoError(t, err)

	summary, err := c.Dashboard.GetSummary(ctx, householdID, today)
	require.NoError(t, err)

	assert.Equal(t, []dto.MonthlySpend{
		{Month: "2025-09"},
		{Month: "2025-10"},
		{Month: "2025-11"},
		{Month: "2025-12", AmountMinor: 500000},
		{Month: "2026-01"},
		{Month: "2026-02", AmountMinor: 12900 + 10000 + 10000},
	}, summary.MonthlySpendTrend)

	assert.Equal(t, []dto.CategorySpend{
		{Category: "rent", AmountMinor: 500000},
		{Category: "living", AmountMinor: 12900 + 700 + 10000 + 10000},
	}, summary.CategoryBreakdown)

	assert.Equal(t, dto.Cashflow{
		IncomeMinor:  3000000,
		ExpenseMinor: 533600,
		NetMinor:     3000000 - 533600,
	}, summary.Cashflow)

	require.Len(t, summary.RecurringUpcomingDrafts, 2)
	assert.Equal(t, soon.ID, summary.RecurringUpcomingDrafts[0].RuleID)
	assert.Equal(t, date(2026, 2, 25), summary.RecurringUpcomingDrafts[0].NextRunDate)
	assert.Equal(t, later.ID, summary.RecurringUpcomingDrafts[1].RuleID)

	// 2026-02-07, 2026-01-25 and 2026-02-01 (twice) fall in the window.
	assert.Equal(t, 3, summary.InputHealth.DaysTrackedLast30)
	assert.Equal(t, 16.7, summary.InputHealth.QuickAddRatioPct)
	require.NotNil(t, summary.InputHealth.CSVImportSuccessRatePct)
	assert.Equal(t, 50.0, *summary.InputHealth.CSVImportSuccessRatePct)
}

func TestDashboard_EmptyHousehold(t *testing.T) {
	c := services.NewServiceContainer(&config.Config{BaseCurrency: "KRW", DefaultLocale: "ko"}, memory.NewRepositoryProvider(), nil)

	summary, err := c.Dashboard.GetSummary(context.Background(), householdID, date(2026, 1, 31))
	require.NoError(t, err)

	require.Len(t, summary.MonthlySpendTrend, 6)
	assert.Equal(t, "2025-08", summary.MonthlySpendTrend[0].Month)
	assert.Equal(t, "2026-01", summary.MonthlySpendTrend[5].Month)
	assert.NotNil(t, summary.CategoryBreakdown)
	assert.Empty(t, summary.CategoryBreakdown)
	assert.NotNil(t, summary.RecurringUpcomingDrafts)
	assert.Zero(t, summary.InputHealth.QuickAddRatioPct)
	assert.Nil(t, summary.InputHealth.CSVImportSuccessRatePct)
}
