package dto

import (
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	"github.com/SscSPs/twoline_ledger/internal/quickadd"
)

// QuickAddParseRequest is the body of POST /quick-add/parse.
type QuickAddParseRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// QuickAddDraftRequest is the body of POST /quick-add/drafts.
type QuickAddDraftRequest struct {
	Text       string        `json:"text" binding:"required,max=2000"`
	TemplateID string        `json:"templateId,omitempty"`
	Locale     domain.Locale `json:"locale,omitempty"`
}

// QuickAddDraftInput creates a draft from pasted text. An empty
// TemplateID picks a template from the parsed direction.
type QuickAddDraftInput struct {
	HouseholdID string
	Text        string
	TemplateID  string
	Locale      domain.Locale
}

// QuickAddDraftResult is the parse together with the created draft.
type QuickAddDraftResult struct {
	Parse quickadd.Result          `json:"parse"`
	Draft domain.PostedTransaction `json:"draft"`
}
