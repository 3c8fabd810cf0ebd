package models

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// Transaction is a row of the transactions table. Seq keeps insertion order.
type Transaction struct {
	Seq                 int64     `db:"seq"`
	TransactionID       string    `db:"transaction_id"`
	HouseholdID         string    `db:"household_id"`
	ChainID             string    `db:"chain_id"`
	Kind                string    `db:"kind"`
	Status              string    `db:"status"`
	OccurredAt          time.Time `db:"occurred_at"`
	SourceTransactionID string    `db:"source_transaction_id"`
	Memo                string    `db:"memo"`
	Source              string    `db:"source"`
}

// Posting is a row of the postings table.
type Posting struct {
	Seq             int64     `db:"seq"`
	PostingID       string    `db:"posting_id"`
	TransactionID   string    `db:"transaction_id"`
	ChainID         string    `db:"chain_id"`
	EntryType       string    `db:"entry_type"`
	AccountCode     string    `db:"account_code"`
	Direction       string    `db:"direction"`
	AmountMinor     int64     `db:"amount_minor"`
	Currency        string    `db:"currency"`
	OccurredAt      time.Time `db:"occurred_at"`
	Memo            string    `db:"memo"`
	LinkedPostingID string    `db:"linked_posting_id"`
}

// RecurringRule is a row of the recurring_rules table.
type RecurringRule struct {
	Seq         int64     `db:"seq"`
	RuleID      string    `db:"rule_id"`
	HouseholdID string    `db:"household_id"`
	TemplateID  string    `db:"template_id"`
	AmountMinor int64     `db:"amount_minor"`
	DayOfMonth  int       `db:"day_of_month"`
	Locale      string    `db:"locale"`
	Memo        string    `db:"memo"`
	NextRunDate time.Time `db:"next_run_date"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// RecurringInstance is a row of the recurring_instances table.
type RecurringInstance struct {
	Seq                int64     `db:"seq"`
	InstanceID         string    `db:"instance_id"`
	RuleID             string    `db:"rule_id"`
	ScheduledDate      time.Time `db:"scheduled_date"`
	DraftTransactionID string    `db:"draft_transaction_id"`
	Status             string    `db:"status"`
}

// AuditEvent is a row of the audit_events table.
type AuditEvent struct {
	Seq         int64          `db:"seq"`
	EventID     string         `db:"event_id"`
	SessionID   string         `db:"session_id"`
	HouseholdID string         `db:"household_id"`
	EventType   string         `db:"event_type"`
	OccurredAt  time.Time      `db:"occurred_at"`
	Payload     map[string]any `db:"payload"`
}

// dateValue stores a calendar date as midnight UTC.
func dateValue(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func ToModelTransaction(t domain.Transaction) Transaction {
	return Transaction{
		TransactionID:       t.ID,
		HouseholdID:         t.HouseholdID,
		ChainID:             t.ChainID,
		Kind:                string(t.Kind),
		Status:              string(t.Status),
		OccurredAt:          dateValue(t.OccurredAt),
		SourceTransactionID: t.SourceTransactionID,
		Memo:                t.Memo,
		Source:              string(t.Source),
	}
}

// ToDomain converts the row. Lock state lives in its own table and is
// reported as UNLOCKED here.
func (m Transaction) ToDomain() domain.Transaction {
	return domain.Transaction{
		ID:                  m.TransactionID,
		HouseholdID:         m.HouseholdID,
		ChainID:             m.ChainID,
		Kind:                domain.EntryType(m.Kind),
		Status:              domain.TransactionStatus(m.Status),
		OccurredAt:          civil.DateOf(m.OccurredAt),
		SourceTransactionID: m.SourceTransactionID,
		Memo:                m.Memo,
		Source:              domain.Source(m.Source),
		LockState:           domain.LockUnlocked,
	}
}

func ToModelPosting(p domain.Posting) Posting {
	return Posting{
		PostingID:       p.ID,
		TransactionID:   p.TransactionID,
		ChainID:         p.ChainID,
		EntryType:       string(p.EntryType),
		AccountCode:     p.AccountCode,
		Direction:       string(p.Direction),
		AmountMinor:     p.AmountMinor,
		Currency:        p.Currency,
		OccurredAt:      dateValue(p.OccurredAt),
		Memo:            p.Memo,
		LinkedPostingID: p.LinkedPostingID,
	}
}

func (m Posting) ToDomain() domain.Posting {
	return domain.Posting{
		ID:              m.PostingID,
		TransactionID:   m.TransactionID,
		ChainID:         m.ChainID,
		EntryType:       domain.EntryType(m.EntryType),
		AccountCode:     m.AccountCode,
		Direction:       domain.Direction(m.Direction),
		AmountMinor:     m.AmountMinor,
		Currency:        m.Currency,
		OccurredAt:      civil.DateOf(m.OccurredAt),
		Memo:            m.Memo,
		LinkedPostingID: m.LinkedPostingID,
	}
}

func ToModelRecurringRule(r domain.RecurringRule) RecurringRule {
	return RecurringRule{
		RuleID:      r.ID,
		HouseholdID: r.HouseholdID,
		TemplateID:  r.TemplateID,
		AmountMinor: r.AmountMinor,
		DayOfMonth:  r.DayOfMonth,
		Locale:      string(r.Locale),
		Memo:        r.Memo,
		NextRunDate: dateValue(r.NextRunDate),
		IsActive:    r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m RecurringRule) ToDomain() domain.RecurringRule {
	return domain.RecurringRule{
		ID:          m.RuleID,
		HouseholdID: m.HouseholdID,
		TemplateID:  m.TemplateID,
		AmountMinor: m.AmountMinor,
		DayOfMonth:  m.DayOfMonth,
		Locale:      domain.Locale(m.Locale),
		Memo:        m.Memo,
		NextRunDate: civil.DateOf(m.NextRunDate),
		Active:      m.IsActive,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func ToModelRecurringInstance(i domain.RecurringInstance) RecurringInstance {
	return RecurringInstance{
		InstanceID:         i.ID,
		RuleID:             i.RuleID,
		ScheduledDate:      dateValue(i.ScheduledDate),
		DraftTransactionID: i.DraftTransactionID,
		Status:             string(i.Status),
	}
}

func (m RecurringInstance) ToDomain() domain.RecurringInstance {
	return domain.RecurringInstance{
		ID:                 m.InstanceID,
		RuleID:             m.RuleID,
		ScheduledDate:      civil.DateOf(m.ScheduledDate),
		DraftTransactionID: m.DraftTransactionID,
		Status:             domain.InstanceStatus(m.Status),
	}
}

func ToModelAuditEvent(e domain.AuditEvent) AuditEvent {
	return AuditEvent{
		EventID:     e.EventID,
		SessionID:   e.SessionID,
		HouseholdID: e.HouseholdID,
		EventType:   string(e.EventType),
		OccurredAt:  e.OccurredAt,
		Payload:     e.Payload,
	}
}

func (m AuditEvent) ToDomain() domain.AuditEvent {
	return domain.AuditEvent{
		EventID:     m.EventID,
		SessionID:   m.SessionID,
		HouseholdID: m.HouseholdID,
		EventType:   domain.AuditEventType(m.EventType),
		OccurredAt:  m.OccurredAt.UTC(),
		Payload:     m.Payload,
	}
}
