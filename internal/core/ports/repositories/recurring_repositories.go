package repositories

import (
	"context"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// RecurringRuleRepository stores recurring rules.
type RecurringRuleRepository interface {
	// SaveRule inserts or replaces a rule.
	SaveRule(ctx context.Context, rule domain.RecurringRule) error

	// FindRuleByID returns apperrors.ErrRecurringRuleMissing when absent.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.RecurringRule, error)

	// ListRules returns every rule in creation order.
	ListRules(ctx context.Context) ([]domain.RecurringRule, error)
}

// RecurringInstanceRepository records generated instances.
type RecurringInstanceRepository interface {
	AppendInstance(ctx context.Context, instance domain.RecurringInstance) error

	// ListInstances returns the instances of ruleID, or all when ruleID is empty.
	ListInstances(ctx context.Context, ruleID string) ([]domain.RecurringInstance, error)
}
