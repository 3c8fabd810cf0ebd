package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/dto"
)

const (
	expensePrefix = "expense:"
	incomePrefix  = "income:"

	trendMonths      = 6
	trackingWindow   = 30
	upcomingRuleCap  = 5
	uncategorizedKey = "etc"
)

type dashboardService struct {
	BaseService
	ledger      portssvc.LedgerReaderSvc
	postingRepo portsrepo.PostingReader
	recurring   portssvc.RecurringRuleSvc
	audit       portssvc.CsvAuditSvc
	serializer  *WriteSerializer
}

// NewDashboardService creates the dashboard projection. serializer may be
// nil when the collaborators are not shared.
func NewDashboardService(ledger portssvc.LedgerReaderSvc, postingRepo portsrepo.PostingReader, recurring portssvc.RecurringRuleSvc, audit portssvc.CsvAuditSvc, serializer *WriteSerializer) portssvc.DashboardSvc {
	if serializer == nil {
		serializer = NewWriteSerializer()
	}
	return &dashboardService{
		ledger:      ledger,
		postingRepo: postingRepo,
		recurring:   recurring,
		audit:       audit,
		serializer:  serializer,
	}
}

var _ portssvc.DashboardSvc = (*dashboardService)(nil)

func monthKey(d civil.Date) string {
	return d.String()[:7]
}

// monthSequence returns the keys of count months ending with today's.
func monthSequence(today civil.Date, count int) []string {
	keys := make([]string, 0, count)
	for i := count - 1; i >= 0; i-- {
		first := time.Date(today.Year, today.Month-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		keys = append(keys, monthKey(civil.DateOf(first)))
	}
	return keys
}

// toPct is numerator/denominator as a percentage with one decimal.
func toPct(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(numerator)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(denominator))).
		Round(1)
	return pct.InexactFloat64()
}

func (s *dashboardService) GetSummary(ctx context.Context, householdID string, today civil.Date) (*dto.DashboardSummary, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) (*dto.DashboardSummary, error) {
		current, err := s.ledger.ListCurrentPostedTransactions(ctx, householdID)
		if err != nil {
			return nil, err
		}

		months := monthSequence(today, trendMonths)
		monthly := make(map[string]int64, len(months))
		for _, m := range months {
			monthly[m] = 0
		}
		categories := make(map[string]int64)
		var cashflow dto.Cashflow

		boundary := today.AddDays(-(trackingWindow - 1))
		daysTracked := make(map[civil.Date]struct{})
		quickAdds := 0

		for _, t := range current {
			if !t.OccurredAt.Before(boundary) {
				daysTracked[t.OccurredAt] = struct{}{}
			}
			if t.Source == domain.SourceQuickAdd {
				quickAdds++
			}

			postings, err := s.postingRepo.ListPostingsByTransactionID(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			for _, p := range postings {
				switch {
				case strings.HasPrefix(p.AccountCode, expensePrefix) && p.Direction == domain.Debit:
					cashflow.ExpenseMinor += p.AmountMinor
					if _, tracked := monthly[monthKey(t.OccurredAt)]; tracked {
						monthly[monthKey(t.OccurredAt)] += p.AmountMinor
					}
					categories[categoryOf(p.AccountCode)] += p.AmountMinor
				case strings.HasPrefix(p.AccountCode, incomePrefix) && p.Direction == domain.Credit:
					cashflow.IncomeMinor += p.AmountMinor
				}
			}
		}
		cashflow.NetMinor = cashflow.IncomeMinor - cashflow.ExpenseMinor

		summary := &dto.DashboardSummary{
			MonthlySpendTrend:       make([]dto.MonthlySpend, len(months)),
			CategoryBreakdown:       make([]dto.CategorySpend, 0, len(categories)),
			Cashflow:                cashflow,
			RecurringUpcomingDrafts: []dto.UpcomingDraft{},
		}
		for i, m := range months {
			summary.MonthlySpendTrend[i] = dto.MonthlySpend{Month: m, AmountMinor: monthly[m]}
		}
		for c, amount := range categories {
			summary.CategoryBreakdown = append(summary.CategoryBreakdown, dto.CategorySpend{Category: c, AmountMinor: amount})
		}
		slices.SortFunc(summary.CategoryBreakdown, func(a, b dto.CategorySpend) int {
			if a.AmountMinor != b.AmountMinor {
				if a.AmountMinor > b.AmountMinor {
					return -1
				}
				return 1
			}
			return strings.Compare(a.Category, b.Category)
		})

		rules, err := s.recurring.ListRules(ctx, householdID)
		if err != nil {
			return nil, err
		}
		rules = slices.DeleteFunc(rules, func(r domain.RecurringRule) bool { return !r.Active })
		slices.SortStableFunc(rules, func(a, b domain.RecurringRule) int {
			return compareDates(a.NextRunDate, b.NextRunDate)
		})
		for _, r := range rules[:min(len(rules), upcomingRuleCap)] {
			summary.RecurringUpcomingDrafts = append(summary.RecurringUpcomingDrafts, dto.UpcomingDraft{
				RuleID:      r.ID,
				TemplateID:  r.TemplateID,
				NextRunDate: r.NextRunDate,
				AmountMinor: r.AmountMinor,
			})
		}

		events, err := s.audit.ListAuditEvents(ctx, householdID)
		if err != nil {
			return nil, err
		}
		previews, commits := 0, 0
		for _, e := range events {
			switch e.EventType {
			case domain.AuditCSVImportPreviewed:
				previews++
			case domain.AuditCSVImportCommitted:
				commits++
			}
		}

		summary.InputHealth = dto.InputHealth{
			DaysTrackedLast30: len(daysTracked),
			QuickAddRatioPct:  toPct(quickAdds, len(current)),
		}
		if previews > 0 {
			rate := toPct(commits, previews)
			summary.InputHealth.CSVImportSuccessRatePct = &rate
		}
		return summary, nil
	})
}

func categoryOf(accountCode string) string {
	_, rest, _ := strings.Cut(accountCode, ":")
	category, _, _ := strings.Cut(rest, ":")
	if category == "" {
		return uncategorizedKey
	}
	return category
}
