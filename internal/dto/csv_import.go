package dto

import (
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	"github.com/SscSPs/twoline_ledger/internal/csvkit"
)

// PreviewInput starts an import session for a canonical bundle.
type PreviewInput struct {
	HouseholdID string
	Files       []csvkit.File
	Force       bool
}

// RowCounts are the row totals of a bundle.
type RowCounts struct {
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
	Postings     int `json:"postings"`
	AuditEvents  int `json:"audit_events"`
}

// PreviewResult describes a new import session.
type PreviewResult struct {
	SessionID   string                   `json:"sessionId"`
	Status      domain.ImportStatus      `json:"status"`
	Fingerprint string                   `json:"fingerprint"`
	Rows        RowCounts                `json:"rows"`
	Errors      []csvkit.ValidationError `json:"errors"`
	Warnings    []csvkit.ValidationError `json:"warnings"`
}

// CommitInput applies a previewed session. HouseholdID, when set, must
// match the session's household.
type CommitInput struct {
	SessionID   string
	HouseholdID string
	Force       bool
}

// CommitResult is the outcome of a successful commit.
type CommitResult struct {
	SessionID string              `json:"sessionId"`
	Status    domain.ImportStatus `json:"status"`
}

// PreviewRequest is the body of POST /csv/import/preview.
type PreviewRequest struct {
	Files []csvkit.File `json:"files" binding:"required,min=1"`
	Force bool          `json:"force"`
}

// CommitRequest is the body of POST /csv/import/commit.
type CommitRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Force     bool   `json:"force"`
}

// CanonicalExportResponse carries the files of an exported bundle.
type CanonicalExportResponse struct {
	Files []csvkit.File `json:"files"`
}
