package services

import (
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/platform/config"
	"github.com/SscSPs/twoline_ledger/internal/templates"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// All services share one write serializer, so a mutation through any of
// them excludes every other mutation and read.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, catalog *templates.Catalog) *portssvc.ServiceContainer {
	if catalog == nil {
		catalog = templates.DefaultCatalog()
	}
	serializer := NewWriteSerializer()
	container := &portssvc.ServiceContainer{Templates: catalog}

	container.Ledger = NewLedgerPostService(
		repos.TransactionRepo,
		repos.PostingRepo,
		repos.LockStateRepo,
		WithLedgerSerializer(serializer),
	)

	container.CSVImport = NewCsvImportService(repos, CSVImportConfig{
		BaseCurrency: cfg.BaseCurrency,
		LocaleHint:   cfg.DefaultLocale,
		SessionTTL:   cfg.ImportSessionTTL,
		SessionMax:   cfg.ImportSessionMax,
	}, WithCSVSerializer(serializer))

	container.Recurring = NewRecurringService(
		repos.RuleRepo,
		repos.InstanceRepo,
		container.Ledger,
		catalog,
		cfg.BaseCurrency,
		WithRecurringSerializer(serializer),
	)

	container.QuickAdd = NewQuickAddService(container.Ledger, catalog, cfg.BaseCurrency, domain.Locale(cfg.DefaultLocale))

	container.Dashboard = NewDashboardService(container.Ledger, repos.PostingRepo, container.Recurring, container.CSVImport, serializer)

	return container
}
