package services

import (
	"context"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	"github.com/SscSPs/twoline_ledger/internal/csvkit"
	"github.com/SscSPs/twoline_ledger/internal/dto"
)

// CsvImportSvc defines the two-phase import of canonical bundles.
type CsvImportSvc interface {
	// PreviewCanonical validates a bundle and opens an import session. It
	// never writes to the ledger.
	PreviewCanonical(ctx context.Context, input dto.PreviewInput) (*dto.PreviewResult, error)

	// CommitCanonical applies a session's bundle in full or not at all.
	CommitCanonical(ctx context.Context, input dto.CommitInput) (*dto.CommitResult, error)
}

// CsvExportSvc defines read-side projections of posted data.
type CsvExportSvc interface {
	ExportCanonical(ctx context.Context, householdID string, opts csvkit.SerializeOptions) ([]csvkit.File, error)
	ExportFlat(ctx context.Context, householdID string, excelBOM bool) (string, error)
}

// CsvAuditSvc exposes the import audit log.
type CsvAuditSvc interface {
	ListAuditEvents(ctx context.Context, householdID string) ([]domain.AuditEvent, error)
}

// CsvImportSvcFacade combines all CSV service interfaces.
type CsvImportSvcFacade interface {
	CsvImportSvc
	CsvExportSvc
	CsvAuditSvc
}
