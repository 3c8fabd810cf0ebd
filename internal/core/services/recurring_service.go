package services

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/templates"
)

// nextMonthlyDate returns dayOfMonth in the month after base.
func nextMonthlyDate(base civil.Date, dayOfMonth int) civil.Date {
	next := time.Date(base.Year, base.Month+1, domain.ClampDay(dayOfMonth), 0, 0, 0, 0, time.UTC)
	return civil.DateOf(next)
}

// nextRunFrom returns the first dayOfMonth on or after start.
func nextRunFrom(start civil.Date, dayOfMonth int) civil.Date {
	candidate := civil.Date{Year: start.Year, Month: start.Month, Day: domain.ClampDay(dayOfMonth)}
	if candidate.Before(start) {
		return nextMonthlyDate(start, dayOfMonth)
	}
	return candidate
}

type recurringService struct {
	BaseService
	ruleRepo     portsrepo.RecurringRuleRepository
	instanceRepo portsrepo.RecurringInstanceRepository
	ledger       portssvc.LedgerWriterSvc
	catalog      *templates.Catalog
	baseCurrency string
	validate     *validator.Validate
	serializer   *WriteSerializer
	newID        domain.IDFactory
	now          func() time.Time
}

// RecurringServiceOption is a functional option for configuring the recurring service
type RecurringServiceOption func(*recurringService)

func WithRecurringIDFactory(newID domain.IDFactory) RecurringServiceOption {
	return func(s *recurringService) {
		s.newID = newID
	}
}

func WithRecurringClock(now func() time.Time) RecurringServiceOption {
	return func(s *recurringService) {
		s.now = now
	}
}

func WithRecurringSerializer(serializer *WriteSerializer) RecurringServiceOption {
	return func(s *recurringService) {
		s.serializer = serializer
	}
}

// NewRecurringService creates the scheduler. Drafts are created through
// ledger in baseCurrency.
func NewRecurringService(ruleRepo portsrepo.RecurringRuleRepository, instanceRepo portsrepo.RecurringInstanceRepository, ledger portssvc.LedgerWriterSvc, catalog *templates.Catalog, baseCurrency string, options ...RecurringServiceOption) portssvc.RecurringSvcFacade {
	svc := &recurringService{
		ruleRepo:     ruleRepo,
		instanceRepo: instanceRepo,
		ledger:       ledger,
		catalog:      catalog,
		baseCurrency: baseCurrency,
		validate:     newValidator(),
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	if svc.serializer == nil {
		svc.serializer = NewWriteSerializer()
	}
	return svc
}

var _ portssvc.RecurringSvcFacade = (*recurringService)(nil)

func (s *recurringService) CreateRule(ctx context.Context, input domain.CreateRuleInput) (*domain.RecurringRule, error) {
	if !input.Locale.Valid() {
		return nil, apperrors.New(apperrors.CodeUnsupportedLocale, "unsupported locale").WithDetail("locale", string(input.Locale))
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}
	if !input.StartDate.IsValid() {
		return nil, apperrors.ErrValidation.WithDetail("fields", map[string]string{"startDate": "date"})
	}
	if _, ok := s.catalog.Get(input.TemplateID); !ok {
		return nil, apperrors.ErrTemplateNotFound.WithDetail("template_id", input.TemplateID)
	}

	return withWrite(ctx, s.serializer, func(ctx context.Context) (*domain.RecurringRule, error) {
		now := s.now().UTC()
		rule := domain.RecurringRule{
			ID:          s.newID(),
			HouseholdID: input.HouseholdID,
			TemplateID:  input.TemplateID,
			AmountMinor: input.AmountMinor,
			DayOfMonth:  input.DayOfMonth,
			Locale:      input.Locale,
			Memo:        input.Memo,
			NextRunDate: nextRunFrom(input.StartDate, input.DayOfMonth),
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
			s.LogError(ctx, err, "Failed to save recurring rule", slog.String("rule_id", rule.ID))
			return nil, err
		}

		s.LogInfo(ctx, "Recurring rule created",
			slog.String("rule_id", rule.ID),
			slog.String("next_run_date", rule.NextRunDate.String()))
		return &rule, nil
	})
}

func (s *recurringService) UpdateRule(ctx context.Context, ruleID string, input domain.UpdateRuleInput) (*domain.RecurringRule, error) {
	if input.Locale != nil && !input.Locale.Valid() {
		return nil, apperrors.New(apperrors.CodeUnsupportedLocale, "unsupported locale").WithDetail("locale", string(*input.Locale))
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}
	if !input.EffectiveFrom.IsValid() {
		return nil, apperrors.ErrValidation.WithDetail("fields", map[string]string{"effectiveFrom": "date"})
	}
	if input.TemplateID != nil {
		if _, ok := s.catalog.Get(*input.TemplateID); !ok {
			return nil, apperrors.ErrTemplateNotFound.WithDetail("template_id", *input.TemplateID)
		}
	}

	return withWrite(ctx, s.serializer, func(ctx context.Context) (*domain.RecurringRule, error) {
		rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
		if err != nil {
			return nil, err
		}

		if input.AmountMinor != nil {
			rule.AmountMinor = *input.AmountMinor
		}
		if input.DayOfMonth != nil {
			rule.DayOfMonth = *input.DayOfMonth
		}
		if input.TemplateID != nil {
			rule.TemplateID = *input.TemplateID
		}
		if input.Locale != nil {
			rule.Locale = *input.Locale
		}
		if input.Memo != nil {
			rule.Memo = *input.Memo
		}
		if input.Active != nil {
			rule.Active = *input.Active
		}
		rule.NextRunDate = nextRunFrom(input.EffectiveFrom, rule.DayOfMonth)
		rule.UpdatedAt = s.now().UTC()

		if err := s.ruleRepo.SaveRule(ctx, *rule); err != nil {
			return nil, err
		}
		s.LogInfo(ctx, "Recurring rule updated",
			slog.String("rule_id", rule.ID),
			slog.String("effective_from", input.EffectiveFrom.String()),
			slog.String("next_run_date", rule.NextRunDate.String()))
		return rule, nil
	})
}

func (s *recurringService) GetRule(ctx context.Context, ruleID string) (*domain.RecurringRule, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) (*domain.RecurringRule, error) {
		return s.ruleRepo.FindRuleByID(ctx, ruleID)
	})
}

func (s *recurringService) ListRules(ctx context.Context, householdID string) ([]domain.RecurringRule, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) ([]domain.RecurringRule, error) {
		all, err := s.ruleRepo.ListRules(ctx)
		if err != nil {
			return nil, err
		}
		rules := []domain.RecurringRule{}
		for _, r := range all {
			if r.HouseholdID == householdID {
				rules = append(rules, r)
			}
		}
		return rules, nil
	})
}

func (s *recurringService) ListInstances(ctx context.Context, ruleID string) ([]domain.RecurringInstance, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) ([]domain.RecurringInstance, error) {
		instances, err := s.instanceRepo.ListInstances(ctx, ruleID)
		if err != nil {
			return nil, err
		}
		if instances == nil {
			instances = []domain.RecurringInstance{}
		}
		return instances, nil
	})
}

func (s *recurringService) RunDue(ctx context.Context, targetDate civil.Date) ([]domain.RecurringInstance, error) {
	if !targetDate.IsValid() {
		return nil, apperrors.ErrValidation.WithDetail("fields", map[string]string{"targetDate": "date"})
	}

	return withWrite(ctx, s.serializer, func(ctx context.Context) ([]domain.RecurringInstance, error) {
		rules, err := s.ruleRepo.ListRules(ctx)
		if err != nil {
			return nil, err
		}

		generated := []domain.RecurringInstance{}
		for _, rule := range rules {
			if !rule.Active || rule.NextRunDate.After(targetDate) {
				continue
			}

			postings, err := s.catalog.BuildPostings(templates.BuildInput{
				TemplateID:  rule.TemplateID,
				AmountMinor: rule.AmountMinor,
				OccurredAt:  rule.NextRunDate,
				Locale:      rule.Locale,
				Memo:        rule.Memo,
				Currency:    s.baseCurrency,
			})
			if err != nil {
				s.LogError(ctx, err, "Skipping recurring rule", slog.String("rule_id", rule.ID))
				continue
			}

			// A month's draft exists only once its rule has moved past it.
			scheduled := rule
			rule.NextRunDate = nextMonthlyDate(rule.NextRunDate, rule.DayOfMonth)
			rule.UpdatedAt = s.now().UTC()
			if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
				return generated, err
			}

			draft, err := s.ledger.CreateDraft(ctx, domain.CreateDraftInput{
				HouseholdID: rule.HouseholdID,
				OccurredAt:  scheduled.NextRunDate,
				Memo:        rule.Memo,
				Postings:    postings,
				Source:      domain.SourceRecurring,
			})
			if err != nil {
				if restoreErr := s.ruleRepo.SaveRule(ctx, scheduled); restoreErr != nil {
					s.LogError(ctx, restoreErr, "Failed to restore recurring rule", slog.String("rule_id", rule.ID))
				}
				return generated, err
			}

			instance := domain.RecurringInstance{
				ID:                 s.newID(),
				RuleID:             rule.ID,
				ScheduledDate:      scheduled.NextRunDate,
				DraftTransactionID: draft.Transaction.ID,
				Status:             domain.InstanceDraftCreated,
			}
			if err := s.instanceRepo.AppendInstance(ctx, instance); err != nil {
				return generated, err
			}
			generated = append(generated, instance)
		}

		s.LogInfo(ctx, "Recurring run finished",
			slog.String("target_date", targetDate.String()),
			slog.Int("generated", len(generated)))
		return generated, nil
	})
}
