package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
)

// RecurringRuleRepository keeps rules in creation order.
type RecurringRuleRepository struct {
	mu    sync.RWMutex
	order []string
	rules map[string]domain.RecurringRule
}

func NewRecurringRuleRepository() *RecurringRuleRepository {
	return &RecurringRuleRepository{rules: make(map[string]domain.RecurringRule)}
}

var _ portsrepo.RecurringRuleRepository = (*RecurringRuleRepository)(nil)

func (r *RecurringRuleRepository) SaveRule(ctx context.Context, rule domain.RecurringRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rules[rule.ID]; !exists {
		r.order = append(r.order, rule.ID)
	}
	r.rules[rule.ID] = rule
	return nil
}

func (r *RecurringRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.RecurringRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[ruleID]
	if !ok {
		return nil, apperrors.ErrRecurringRuleMissing.WithDetail("rule_id", ruleID)
	}
	return &rule, nil
}

func (r *RecurringRuleRepository) ListRules(ctx context.Context) ([]domain.RecurringRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RecurringRule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rules[id])
	}
	return out, nil
}

// RecurringInstanceRepository records generated instances in order.
type RecurringInstanceRepository struct {
	mu        sync.RWMutex
	instances []domain.RecurringInstance
}

func NewRecurringInstanceRepository() *RecurringInstanceRepository {
	return &RecurringInstanceRepository{}
}

var _ portsrepo.RecurringInstanceRepository = (*RecurringInstanceRepository)(nil)

func (r *RecurringInstanceRepository) AppendInstance(ctx context.Context, instance domain.RecurringInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = append(r.instances, instance)
	return nil
}

func (r *RecurringInstanceRepository) ListInstances(ctx context.Context, ruleID string) ([]domain.RecurringInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ruleID == "" {
		return slices.Clone(r.instances), nil
	}
	var out []domain.RecurringInstance
	for _, in := range r.instances {
		if in.RuleID == ruleID {
			out = append(out, in)
		}
	}
	return out, nil
}
