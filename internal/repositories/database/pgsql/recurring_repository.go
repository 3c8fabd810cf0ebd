package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/twoline_ledger/internal/models"
)

type PgxRecurringRuleRepository struct {
	BaseRepository
}

func newPgxRecurringRuleRepository(pool *pgxpool.Pool) *PgxRecurringRuleRepository {
	return &PgxRecurringRuleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RecurringRuleRepository = (*PgxRecurringRuleRepository)(nil)

const selectRules = `
SELECT
	seq, rule_id, household_id, template_id, amount_minor, day_of_month,
	locale, memo, next_run_date, is_active, created_at, updated_at
FROM recurring_rules
`

// SaveRule upserts the rule. An update keeps the original seq so ListRules
// stays in creation order.
func (r *PgxRecurringRuleRepository) SaveRule(ctx context.Context, rule domain.RecurringRule) error {
	m := models.ToModelRecurringRule(rule)
	query := `
		INSERT INTO recurring_rules (
			rule_id, household_id, template_id, amount_minor, day_of_month,
			locale, memo, next_run_date, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (rule_id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			amount_minor = EXCLUDED.amount_minor,
			day_of_month = EXCLUDED.day_of_month,
			locale = EXCLUDED.locale,
			memo = EXCLUDED.memo,
			next_run_date = EXCLUDED.next_run_date,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RuleID, m.HouseholdID, m.TemplateID, m.AmountMinor, m.DayOfMonth,
		m.Locale, m.Memo, m.NextRunDate, m.IsActive, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return queryFailed(err, "failed to save recurring rule "+rule.ID)
	}
	return nil
}

func (r *PgxRecurringRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.RecurringRule, error) {
	rows, err := r.Pool.Query(ctx, selectRules+`WHERE rule_id = $1`, ruleID)
	if err != nil {
		return nil, queryFailed(err, "failed to query recurring rule "+ruleID)
	}
	defer rows.Close()

	modelRows, err := collect[models.RecurringRule](rows, "failed to collect recurring rule")
	if err != nil {
		return nil, err
	}
	if len(modelRows) == 0 {
		return nil, apperrors.ErrRecurringRuleMissing.WithDetail("rule_id", ruleID)
	}
	rule := modelRows[0].ToDomain()
	return &rule, nil
}

func (r *PgxRecurringRuleRepository) ListRules(ctx context.Context) ([]domain.RecurringRule, error) {
	rows, err := r.Pool.Query(ctx, selectRules+`ORDER BY seq`)
	if err != nil {
		return nil, queryFailed(err, "failed to query recurring rules")
	}
	defer rows.Close()

	modelRows, err := collect[models.RecurringRule](rows, "failed to collect recurring rules")
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecurringRule, len(modelRows))
	for i, m := range modelRows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

type PgxRecurringInstanceRepository struct {
	BaseRepository
}

func newPgxRecurringInstanceRepository(pool *pgxpool.Pool) *PgxRecurringInstanceRepository {
	return &PgxRecurringInstanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RecurringInstanceRepository = (*PgxRecurringInstanceRepository)(nil)

func (r *PgxRecurringInstanceRepository) AppendInstance(ctx context.Context, instance domain.RecurringInstance) error {
	m := models.ToModelRecurringInstance(instance)
	query := `
		INSERT INTO recurring_instances (instance_id, rule_id, scheduled_date, draft_transaction_id, status)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := r.Pool.Exec(ctx, query, m.InstanceID, m.RuleID, m.ScheduledDate, m.DraftTransactionID, m.Status); err != nil {
		return queryFailed(err, "failed to append recurring instance "+instance.ID)
	}
	return nil
}

func (r *PgxRecurringInstanceRepository) ListInstances(ctx context.Context, ruleID string) ([]domain.RecurringInstance, error) {
	query := `
		SELECT seq, instance_id, rule_id, scheduled_date, draft_transaction_id, status
		FROM recurring_instances
		WHERE $1 = '' OR rule_id = $1
		ORDER BY seq;
	`
	rows, err := r.Pool.Query(ctx, query, ruleID)
	if err != nil {
		return nil, queryFailed(err, "failed to query recurring instances")
	}
	defer rows.Close()

	modelRows, err := collect[models.RecurringInstance](rows, "failed to collect recurring instances")
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecurringInstance, len(modelRows))
	for i, m := range modelRows {
		out[i] = m.ToDomain()
	}
	return out, nil
}
