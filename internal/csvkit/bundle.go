// Package csvkit encodes ledger data as canonical CSV bundles and flat
// exports, and validates bundles before import.
package csvkit

// Canonical bundle file names.
const (
	ManifestFile     = "manifest.json"
	AccountsFile     = "accounts.csv"
	TransactionsFile = "transactions.csv"
	PostingsFile     = "postings.csv"
	AuditEventsFile  = "audit_events.csv"
)

// Column order of each canonical file.
var (
	AccountHeaders     = []string{"id", "household_id", "code", "name", "type"}
	TransactionHeaders = []string{"id", "household_id", "occurred_at", "posted_at", "status", "memo"}
	PostingHeaders     = []string{"id", "transaction_id", "account_id", "direction", "amount_minor", "currency", "entry_type", "linked_posting_id"}
	AuditEventHeaders  = []string{"id", "transaction_id", "event_type", "occurred_at"}
)

// Manifest describes a bundle.
type Manifest struct {
	Version      string `json:"version"`
	BaseCurrency string `json:"base_currency"`
	LocaleHint   string `json:"locale_hint,omitempty"`
}

type AccountRow struct {
	ID          string `json:"id"`
	HouseholdID string `json:"household_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
}

type TransactionRow struct {
	ID          string `json:"id"`
	HouseholdID string `json:"household_id"`
	OccurredAt  string `json:"occurred_at"`
	PostedAt    string `json:"posted_at"`
	Status      string `json:"status"`
	Memo        string `json:"memo"`
}

type PostingRow struct {
	ID              string `json:"id"`
	TransactionID   string `json:"transaction_id"`
	AccountID       string `json:"account_id"`
	Direction       string `json:"direction"`
	AmountMinor     string `json:"amount_minor"`
	Currency        string `json:"currency"`
	EntryType       string `json:"entry_type"`
	LinkedPostingID string `json:"linked_posting_id"`
}

type AuditEventRow struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
}

// Bundle is a lossless interchange snapshot of ledger state. Row values are
// kept as strings exactly as they appear in the files. AuditEvents is nil
// when the bundle carries no audit_events.csv.
type Bundle struct {
	Manifest     Manifest         `json:"manifest"`
	Accounts     []AccountRow     `json:"accounts"`
	Transactions []TransactionRow `json:"transactions"`
	Postings     []PostingRow     `json:"postings"`
	AuditEvents  []AuditEventRow  `json:"audit_events,omitempty"`
}

// File is one named file of a bundle.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (r AccountRow) cells() []string {
	return []string{r.ID, r.HouseholdID, r.Code, r.Name, r.Type}
}

func accountFrom(get func(string) string) AccountRow {
	return AccountRow{ID: get("id"), HouseholdID: get("household_id"), Code: get("code"), Name: get("name"), Type: get("type")}
}

func (r TransactionRow) cells() []string {
	return []string{r.ID, r.HouseholdID, r.OccurredAt, r.PostedAt, r.Status, r.Memo}
}

func transactionFrom(get func(string) string) TransactionRow {
	return TransactionRow{
		ID: get("id"), HouseholdID: get("household_id"), OccurredAt: get("occurred_at"),
		PostedAt: get("posted_at"), Status: get("status"), Memo: get("memo"),
	}
}

func (r PostingRow) cells() []string {
	return []string{r.ID, r.TransactionID, r.AccountID, r.Direction, r.AmountMinor, r.Currency, r.EntryType, r.LinkedPostingID}
}

func postingFrom(get func(string) string) PostingRow {
	return PostingRow{
		ID: get("id"), TransactionID: get("transaction_id"), AccountID: get("account_id"),
		Direction: get("direction"), AmountMinor: get("amount_minor"), Currency: get("currency"),
		EntryType: get("entry_type"), LinkedPostingID: get("linked_posting_id"),
	}
}

func (r AuditEventRow) cells() []string {
	return []string{r.ID, r.TransactionID, r.EventType, r.OccurredAt}
}

func auditEventFrom(get func(string) string) AuditEventRow {
	return AuditEventRow{ID: get("id"), TransactionID: get("transaction_id"), EventType: get("event_type"), OccurredAt: get("occurred_at")}
}
