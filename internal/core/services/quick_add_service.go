package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/dto"
	"github.com/SscSPs/twoline_ledger/internal/quickadd"
	"github.com/SscSPs/twoline_ledger/internal/templates"
)

const (
	spendTemplateID  = "living_spend"
	incomeTemplateID = "salary"
)

type quickAddService struct {
	BaseService
	ledger        portssvc.LedgerWriterSvc
	catalog       *templates.Catalog
	baseCurrency  string
	defaultLocale domain.Locale
	now           func() time.Time
}

// QuickAddServiceOption is a functional option for configuring the quick add service
type QuickAddServiceOption func(*quickAddService)

// WithQuickAddClock sets the clock that resolves dates without a year.
func WithQuickAddClock(now func() time.Time) QuickAddServiceOption {
	return func(s *quickAddService) {
		s.now = now
	}
}

// NewQuickAddService creates the quick add service.
func NewQuickAddService(ledger portssvc.LedgerWriterSvc, catalog *templates.Catalog, baseCurrency string, defaultLocale domain.Locale, options ...QuickAddServiceOption) portssvc.QuickAddSvcFacade {
	svc := &quickAddService{
		ledger:        ledger,
		catalog:       catalog,
		baseCurrency:  baseCurrency,
		defaultLocale: defaultLocale,
		now:           time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.QuickAddSvcFacade = (*quickAddService)(nil)

func (s *quickAddService) Parse(ctx context.Context, text string) quickadd.Result {
	result := quickadd.Parse(text, s.now())
	s.LogDebug(ctx, "Quick add parsed",
		slog.Float64("overall_confidence", result.OverallConfidence),
		slog.Int("blocking_reasons", len(result.BlockingReasons)))
	return result
}

func (s *quickAddService) CreateDraft(ctx context.Context, input dto.QuickAddDraftInput) (*dto.QuickAddDraftResult, error) {
	if input.HouseholdID == "" {
		return nil, apperrors.ErrValidation.WithDetail("field", "householdId")
	}
	locale := input.Locale
	if locale == "" {
		locale = s.defaultLocale
	}
	if !locale.Valid() {
		return nil, apperrors.New(apperrors.CodeUnsupportedLocale, "unsupported locale").WithDetail("locale", string(locale))
	}

	result := s.Parse(ctx, input.Text)
	if result.Blocked() {
		return nil, apperrors.New(apperrors.CodeQuickAddBlocked, "text could not be parsed into a draft").
			WithDetail("reasons", result.BlockingReasons)
	}

	templateID := input.TemplateID
	if templateID == "" {
		templateID = spendTemplateID
		if d := result.Fields.Direction.Value; d != nil && *d == quickadd.DirectionIn {
			templateID = incomeTemplateID
		}
	}

	occurredAt := *result.Fields.OccurredAt.Value
	memo := ""
	if m := result.Fields.Memo.Value; m != nil {
		memo = *m
	}

	postings, err := s.catalog.BuildPostings(templates.BuildInput{
		TemplateID:  templateID,
		AmountMinor: *result.Fields.Amount.Value,
		OccurredAt:  occurredAt,
		Locale:      locale,
		Memo:        memo,
		Currency:    s.baseCurrency,
	})
	if err != nil {
		return nil, err
	}

	draft, err := s.ledger.CreateDraft(ctx, domain.CreateDraftInput{
		HouseholdID: input.HouseholdID,
		OccurredAt:  occurredAt,
		Memo:        memo,
		Postings:    postings,
		Source:      domain.SourceQuickAdd,
	})
	if err != nil {
		return nil, err
	}
	return &dto.QuickAddDraftResult{Parse: result, Draft: *draft}, nil
}
