package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// Locale is a supported UI locale.
type Locale string

const (
	LocaleKO Locale = "ko"
	LocaleEN Locale = "en"
)

func (l Locale) Valid() bool {
	return l == LocaleKO || l == LocaleEN
}

// MaxDayOfMonth is the latest day a monthly rule may run on, so every
// month has the day.
const MaxDayOfMonth = 28

// ClampDay limits a day of month to [1, MaxDayOfMonth].
func ClampDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > MaxDayOfMonth {
		return MaxDayOfMonth
	}
	return day
}

// RecurringRule generates one draft per month from a template.
type RecurringRule struct {
	ID          string     `json:"id"`
	HouseholdID string     `json:"householdId"`
	TemplateID  string     `json:"templateId"`
	AmountMinor int64      `json:"amountMinor"`
	DayOfMonth  int        `json:"dayOfMonth"`
	Locale      Locale     `json:"locale"`
	Memo        string     `json:"memo,omitempty"`
	NextRunDate civil.Date `json:"nextRunDate"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// InstanceStatus is the status of a generated recurring instance.
type InstanceStatus string

const InstanceDraftCreated InstanceStatus = "DRAFT_CREATED"

// RecurringInstance links a rule run to the draft it created.
type RecurringInstance struct {
	ID                 string         `json:"id"`
	RuleID             string         `json:"ruleId"`
	ScheduledDate      civil.Date     `json:"scheduledDate"`
	DraftTransactionID string         `json:"draftTransactionId"`
	Status             InstanceStatus `json:"status"`
}

// CreateRuleInput is the input to rule creation.
type CreateRuleInput struct {
	HouseholdID string     `json:"householdId" validate:"required"`
	TemplateID  string     `json:"templateId" validate:"required"`
	AmountMinor int64      `json:"amountMinor" validate:"gt=0"`
	DayOfMonth  int        `json:"dayOfMonth" validate:"min=1,max=28"`
	StartDate   civil.Date `json:"startDate"`
	Locale      Locale     `json:"locale" validate:"required,oneof=ko en"`
	Memo        string     `json:"memo,omitempty" validate:"max=200"`
}

// UpdateRuleInput merges over an existing rule from EffectiveFrom onwards.
// Nil fields keep their current value.
type UpdateRuleInput struct {
	AmountMinor   *int64     `json:"amountMinor,omitempty" validate:"omitempty,gt=0"`
	DayOfMonth    *int       `json:"dayOfMonth,omitempty" validate:"omitempty,min=1,max=28"`
	TemplateID    *string    `json:"templateId,omitempty"`
	Locale        *Locale    `json:"locale,omitempty" validate:"omitempty,oneof=ko en"`
	Memo          *string    `json:"memo,omitempty" validate:"omitempty,max=200"`
	Active        *bool      `json:"active,omitempty"`
	EffectiveFrom civil.Date `json:"effectiveFrom"`
}
