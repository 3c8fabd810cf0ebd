package domain

import "time"

// AuditEventType names a CSV import audit event.
type AuditEventType string

const (
	AuditCSVImportPreviewed AuditEventType = "CSV_IMPORT_PREVIEWED"
	AuditCSVImportCommitted AuditEventType = "CSV_IMPORT_COMMITTED"
	AuditCSVImportFailed    AuditEventType = "CSV_IMPORT_FAILED"
)

// AuditEvent is an append-only log entry. SessionID holds the import
// session (or transaction) the event refers to.
type AuditEvent struct {
	EventID     string         `json:"eventId"`
	SessionID   string         `json:"sessionId"`
	HouseholdID string         `json:"householdId"`
	EventType   AuditEventType `json:"eventType"`
	OccurredAt  time.Time      `json:"occurredAt"`
	Payload     map[string]any `json:"payload"`
}

// ImportStatus is the state of an import session.
type ImportStatus string

const (
	ImportPreviewed ImportStatus = "PREVIEWED"
	ImportBlocked   ImportStatus = "BLOCKED"
	ImportCommitted ImportStatus = "COMMITTED"
)
