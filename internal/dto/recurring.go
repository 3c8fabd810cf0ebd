package dto

import (
	"cloud.google.com/go/civil"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// CreateRuleRequest is the body of POST /recurring/rules.
type CreateRuleRequest struct {
	TemplateID  string        `json:"templateId" binding:"required"`
	AmountMinor int64         `json:"amountMinor" binding:"required,gt=0"`
	DayOfMonth  int           `json:"dayOfMonth" binding:"required,min=1,max=28"`
	StartDate   civil.Date    `json:"startDate" swaggertype:"string" example:"2026-02-01"`
	Locale      domain.Locale `json:"locale"`
	Memo        string        `json:"memo,omitempty" binding:"max=200"`
}

// ToDomain converts the request into a rule input for householdID. An
// empty locale falls back to defaultLocale.
func (r CreateRuleRequest) ToDomain(householdID string, defaultLocale domain.Locale) domain.CreateRuleInput {
	locale := r.Locale
	if locale == "" {
		locale = defaultLocale
	}
	return domain.CreateRuleInput{
		HouseholdID: householdID,
		TemplateID:  r.TemplateID,
		AmountMinor: r.AmountMinor,
		DayOfMonth:  r.DayOfMonth,
		StartDate:   r.StartDate,
		Locale:      locale,
		Memo:        r.Memo,
	}
}

// RunDueRequest is the body of POST /recurring/run.
type RunDueRequest struct {
	TargetDate civil.Date `json:"targetDate" swaggertype:"string" example:"2026-02-01"`
}
