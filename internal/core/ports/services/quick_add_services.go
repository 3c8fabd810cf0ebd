package services

import (
	"context"

	"github.com/SscSPs/twoline_ledger/internal/dto"
	"github.com/SscSPs/twoline_ledger/internal/quickadd"
)

// QuickAddSvcFacade turns pasted notification text into drafts.
type QuickAddSvcFacade interface {
	Parse(ctx context.Context, text string) quickadd.Result
	CreateDraft(ctx context.Context, input dto.QuickAddDraftInput) (*dto.QuickAddDraftResult, error)
}
