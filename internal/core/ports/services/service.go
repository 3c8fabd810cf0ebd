package services

import "github.com/SscSPs/twoline_ledger/internal/templates"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Ledger    LedgerSvcFacade
	CSVImport CsvImportSvcFacade
	Recurring RecurringSvcFacade
	QuickAdd  QuickAddSvcFacade
	Dashboard DashboardSvc
	Templates *templates.Catalog
}
