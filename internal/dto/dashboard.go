package dto

import "cloud.google.com/go/civil"

// MonthlySpend is the expense total of one calendar month.
type MonthlySpend struct {
	Month       string `json:"month"`
	AmountMinor int64  `json:"amountMinor"`
}

// CategorySpend is the expense total of one category.
type CategorySpend struct {
	Category    string `json:"category"`
	AmountMinor int64  `json:"amountMinor"`
}

// Cashflow sums income and expense.
type Cashflow struct {
	IncomeMinor  int64 `json:"incomeMinor"`
	ExpenseMinor int64 `json:"expenseMinor"`
	NetMinor     int64 `json:"netMinor"`
}

// UpcomingDraft is a recurring rule about to generate a draft.
type UpcomingDraft struct {
	RuleID      string     `json:"ruleId"`
	TemplateID  string     `json:"templateId"`
	NextRunDate civil.Date `json:"nextRunDate" swaggertype:"string"`
	AmountMinor int64      `json:"amountMinor"`
}

// InputHealth measures how consistently the household records entries.
// CSVImportSuccessRatePct is nil before any preview.
type InputHealth struct {
	DaysTrackedLast30       int      `json:"daysTrackedLast30"`
	QuickAddRatioPct        float64  `json:"quickAddRatioPct"`
	CSVImportSuccessRatePct *float64 `json:"csvImportSuccessRatePct"`
}

// DashboardSummary is the household overview.
type DashboardSummary struct {
	MonthlySpendTrend       []MonthlySpend  `json:"monthlySpendTrend"`
	CategoryBreakdown       []CategorySpend `json:"categoryBreakdown"`
	Cashflow                Cashflow        `json:"cashflow"`
	RecurringUpcomingDrafts []UpcomingDraft `json:"recurringUpcomingDrafts"`
	InputHealth             InputHealth     `json:"inputHealth"`
}
