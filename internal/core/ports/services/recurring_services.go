package services

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// RecurringRuleSvc manages monthly recurring rules.
type RecurringRuleSvc interface {
	CreateRule(ctx context.Context, input domain.CreateRuleInput) (*domain.RecurringRule, error)

	// UpdateRule merges input over the rule. Drafts already generated are
	// never touched.
	UpdateRule(ctx context.Context, ruleID string, input domain.UpdateRuleInput) (*domain.RecurringRule, error)

	GetRule(ctx context.Context, ruleID string) (*domain.RecurringRule, error)
	ListRules(ctx context.Context, householdID string) ([]domain.RecurringRule, error)
}

// RecurringSchedulerSvc generates drafts from due rules.
type RecurringSchedulerSvc interface {
	// RunDue creates at most one draft per active rule due on or before targetDate.
	RunDue(ctx context.Context, targetDate civil.Date) ([]domain.RecurringInstance, error)

	// ListInstances returns the instances of ruleID, or all when empty.
	ListInstances(ctx context.Context, ruleID string) ([]domain.RecurringInstance, error)
}

// RecurringSvcFacade combines all recurring service interfaces.
type RecurringSvcFacade interface {
	RecurringRuleSvc
	RecurringSchedulerSvc
}
