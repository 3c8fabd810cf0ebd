package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/core/services"
	"github.com/SscSPs/twoline_ledger/internal/repositories/memory"
	"github.com/SscSPs/twoline_ledger/internal/templates"
)

type RecurringServiceSuite struct {
	suite.Suite
	ctx       context.Context
	repos     portsrepo.RepositoryProvider
	ledger    portssvc.LedgerSvcFacade
	recurring portssvc.RecurringSvcFacade
}

func (s *RecurringServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewRepositoryProvider()
	serializer := services.NewWriteSerializer()
	s.ledger = services.NewLedgerPostService(s.repos.TransactionRepo, s.repos.PostingRepo, s.repos.LockStateRepo,
		services.WithLedgerIDFactory(sequence("tx")),
		services.WithLedgerSerializer(serializer))
	s.recurring = services.NewRecurringService(s.repos.RuleRepo, s.repos.InstanceRepo, s.ledger, templates.DefaultCatalog(), "KRW",
		services.WithRecurringIDFactory(sequence("r")),
		services.WithRecurringClock(func() time.Time { return fixedNow }),
		services.WithRecurringSerializer(serializer))
}

func TestRecurringServiceSuite(t *testing.T) {
	suite.Run(t, new(RecurringServiceSuite))
}

func (s *RecurringServiceSuite) rentRule(day int, start civil.Date) *domain.RecurringRule {
	rule, err := s.recurring.CreateRule(s.ctx, domain.CreateRuleInput{
		HouseholdID: householdID,
		TemplateID:  "rent_monthly",
		AmountMinor: 500000,
		DayOfMonth:  day,
		StartDate:   start,
		Locale:      domain.LocaleKO,
	})
	s.Require().NoError(err)
	return rule
}

func (s *RecurringServiceSuite) TestCreateRule_NextRunDate() {
	tests := []struct {
		name  string
		day   int
		start civil.Date
		want  civil.Date
	}{
		{name: "start on the day", day: 1, start: feb1, want: feb1},
		{name: "later in the month", day: 25, start: feb1, want: civil.Date{Year: 2026, Month: 2, Day: 25}},
		{name: "day already passed", day: 5, start: civil.Date{Year: 2026, Month: 2, Day: 10}, want: civil.Date{Year: 2026, Month: 3, Day: 5}},
		{name: "year rollover", day: 3, start: civil.Date{Year: 2026, Month: 12, Day: 20}, want: civil.Date{Year: 2027, Month: 1, Day: 3}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rule := s.rentRule(tt.day, tt.start)
			s.Equal(tt.want, rule.NextRunDate)
			s.True(rule.Active)
			s.Equal(fixedNow, rule.CreatedAt)
		})
	}
}

func (s *RecurringServiceSuite) TestCreateRule_Rejects() {
	base := domain.CreateRuleInput{HouseholdID: householdID, TemplateID: "rent_monthly", AmountMinor: 1, DayOfMonth: 1, StartDate: feb1, Locale: domain.LocaleEN}

	bad := base
	bad.Locale = "fr"
	_, err := s.recurring.CreateRule(s.ctx, bad)
	s.Equal(apperrors.CodeUnsupportedLocale, apperrors.CodeOf(err))

	bad = base
	bad.DayOfMonth = 31
	_, err = s.recurring.CreateRule(s.ctx, bad)
	s.Equal(apperrors.CodeValidation, apperrors.CodeOf(err))
	s.Equal(map[string]string{"dayOfMonth": "max"}, apperrors.DetailsOf(err)["fields"])

	bad = base
	bad.AmountMinor = 0
	_, err = s.recurring.CreateRule(s.ctx, bad)
	s.Equal(apperrors.CodeValidation, apperrors.CodeOf(err))

	bad = base
	bad.TemplateID = "unknown"
	_, err = s.recurring.CreateRule(s.ctx, bad)
	s.Equal(apperrors.CodeTemplateNotFound, apperrors.CodeOf(err))

	rules, err := s.recurring.ListRules(s.ctx, householdID)
	s.Require().NoError(err)
	s.Empty(rules)
}

func (s *RecurringServiceSuite) TestRunDue_OncePerMonth() {
	rule := s.rentRule(1, feb1)

	first, err := s.recurring.RunDue(s.ctx, feb1)
	s.Require().NoError(err)
	s.Require().Len(first, 1)
	s.Equal(rule.ID, first[0].RuleID)
	s.Equal(feb1, first[0].ScheduledDate)
	s.Equal(domain.InstanceDraftCreated, first[0].Status)

	again, err := s.recurring.RunDue(s.ctx, feb1)
	s.Require().NoError(err)
	s.Empty(again)

	updated, err := s.recurring.GetRule(s.ctx, rule.ID)
	s.Require().NoError(err)
	s.Equal(civil.Date{Year: 2026, Month: 3, Day: 1}, updated.NextRunDate)

	draft, err := s.ledger.GetTransaction(s.ctx, first[0].DraftTransactionID)
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, draft.Transaction.Status)
	s.Equal(domain.SourceRecurring, draft.Transaction.Source)
	s.Equal(feb1, draft.Transaction.OccurredAt)
	s.Require().Len(draft.Postings, 2)
	s.Equal("expense:rent", draft.Postings[0].AccountCode)
	s.Equal("asset:cash", draft.Postings[1].AccountCode)
	s.Equal("월세 납부", draft.Postings[0].Memo)

	instances, err := s.recurring.ListInstances(s.ctx, rule.ID)
	s.Require().NoError(err)
	s.Equal(first, instances)
}

func (s *RecurringServiceSuite) TestRunDue_NoCatchUp() {
	rule := s.rentRule(10, feb1)

	generated, err := s.recurring.RunDue(s.ctx, civil.Date{Year: 2026, Month: 5, Day: 1})
	s.Require().NoError(err)
	s.Len(generated, 1)

	updated, err := s.recurring.GetRule(s.ctx, rule.ID)
	s.Require().NoError(err)
	s.Equal(civil.Date{Year: 2026, Month: 3, Day: 10}, updated.NextRunDate)
}

func (s *RecurringServiceSuite) TestRunDue_SkipsInactiveAndFuture() {
	s.rentRule(20, feb1)
	paused := s.rentRule(1, feb1)
	_, err := s.recurring.UpdateRule(s.ctx, paused.ID, domain.UpdateRuleInput{Active: ptr(false), EffectiveFrom: feb1})
	s.Require().NoError(err)

	generated, err := s.recurring.RunDue(s.ctx, feb1)
	s.Require().NoError(err)
	s.Empty(generated)
}

func (s *RecurringServiceSuite) TestUpdateRule() {
	rule := s.rentRule(1, feb1)

	updated, err := s.recurring.UpdateRule(s.ctx, rule.ID, domain.UpdateRuleInput{
		AmountMinor:   ptr(int64(650000)),
		DayOfMonth:    ptr(15),
		Memo:          ptr("new lease"),
		EffectiveFrom: civil.Date{Year: 2026, Month: 4, Day: 20},
	})
	s.Require().NoError(err)
	s.Equal(int64(650000), updated.AmountMinor)
	s.Equal(15, updated.DayOfMonth)
	s.Equal("new lease", updated.Memo)
	s.Equal("rent_monthly", updated.TemplateID)
	s.Equal(civil.Date{Year: 2026, Month: 5, Day: 15}, updated.NextRunDate)

	_, err = s.recurring.UpdateRule(s.ctx, "missing", domain.UpdateRuleInput{EffectiveFrom: feb1})
	s.Equal(apperrors.CodeRecurringRuleNotFound, apperrors.CodeOf(err))

	_, err = s.recurring.UpdateRule(s.ctx, rule.ID, domain.UpdateRuleInput{TemplateID: ptr("nope"), EffectiveFrom: feb1})
	s.Equal(apperrors.CodeTemplateNotFound, apperrors.CodeOf(err))

	_, err = s.recurring.UpdateRule(s.ctx, rule.ID, domain.UpdateRuleInput{})
	s.Equal(apperrors.CodeValidation, apperrors.CodeOf(err))
}

func (s *RecurringServiceSuite) TestListRules_ScopedToHousehold() {
	s.rentRule(1, feb1)
	_, err := s.recurring.CreateRule(s.ctx, domain.CreateRuleInput{
		HouseholdID: "hh-other", TemplateID: "salary", AmountMinor: 1, DayOfMonth: 25, StartDate: feb1, Locale: domain.LocaleEN,
	})
	s.Require().NoError(err)

	rules, err := s.recurring.ListRules(s.ctx, householdID)
	s.Require().NoError(err)
	s.Len(rules, 1)

	none, err := s.recurring.ListRules(s.ctx, "hh-none")
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

type failingRuleRepo struct {
	portsrepo.RecurringRuleRepository
	fail bool
}

func (r *failingRuleRepo) SaveRule(ctx context.Context, rule domain.RecurringRule) error {
	if r.fail {
		return errors.New("rule store unavailable")
	}
	return r.RecurringRuleRepository.SaveRule(ctx, rule)
}

type failingInstanceRepo struct {
	portsrepo.RecurringInstanceRepository
	fail bool
}

func (r *failingInstanceRepo) AppendInstance(ctx context.Context, instance domain.RecurringInstance) error {
	if r.fail {
		return errors.New("instance store unavailable")
	}
	return r.RecurringInstanceRepository.AppendInstance(ctx, instance)
}

func (s *RecurringServiceSuite) TestRunDue_WriteFailuresNeverDuplicateDrafts() {
	rules := &failingRuleRepo{RecurringRuleRepository: s.repos.RuleRepo}
	instances := &failingInstanceRepo{RecurringInstanceRepository: s.repos.InstanceRepo}
	recurring := services.NewRecurringService(rules, instances, s.ledger, templates.DefaultCatalog(), "KRW",
		services.WithRecurringIDFactory(sequence("r")),
		services.WithRecurringClock(func() time.Time { return fixedNow }))

	rule, err := recurring.CreateRule(s.ctx, domain.CreateRuleInput{
		HouseholdID: householdID, TemplateID: "rent_monthly", AmountMinor: 500000, DayOfMonth: 1, StartDate: feb1, Locale: domain.LocaleKO,
	})
	s.Require().NoError(err)

	rules.fail = true
	_, err = recurring.RunDue(s.ctx, feb1)
	s.Require().Error(err)
	txs, err := s.repos.TransactionRepo.ListTransactions(s.ctx)
	s.Require().NoError(err)
	s.Empty(txs)
	rules.fail = false

	instances.fail = true
	_, err = recurring.RunDue(s.ctx, feb1)
	s.Require().Error(err)
	instances.fail = false

	again, err := recurring.RunDue(s.ctx, feb1)
	s.Require().NoError(err)
	s.Empty(again)

	txs, err = s.repos.TransactionRepo.ListTransactions(s.ctx)
	s.Require().NoError(err)
	s.Len(txs, 1)

	updated, err := recurring.GetRule(s.ctx, rule.ID)
	s.Require().NoError(err)
	s.Equal(civil.Date{Year: 2026, Month: 3, Day: 1}, updated.NextRunDate)
}
