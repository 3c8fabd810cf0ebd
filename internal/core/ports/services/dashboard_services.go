package services

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/SscSPs/twoline_ledger/internal/dto"
)

// DashboardSvc is a read-only projection over the ledger.
type DashboardSvc interface {
	GetSummary(ctx context.Context, householdID string, today civil.Date) (*dto.DashboardSummary, error)
}
