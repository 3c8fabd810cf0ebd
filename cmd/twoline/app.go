package main

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/core/services"
	"github.com/SscSPs/twoline_ledger/internal/platform/config"
	"github.com/SscSPs/twoline_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/twoline_ledger/internal/repositories/memory"
	"github.com/SscSPs/twoline_ledger/internal/templates"
	"github.com/SscSPs/twoline_ledger/pkg/database"
)

// openRepositories builds the configured storage backend. The returned
// close func releases it. migrateUp applies pending migrations first.
func openRepositories(ctx context.Context, cfg *config.Config, migrateUp bool) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver != config.StoragePostgres {
		slog.Warn("Using in-memory storage; data is lost on exit")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	if migrateUp {
		slog.Info("Running database migrations...")
		if err := pgsql.RunMigrations(cfg.DatabaseURL, pgsql.Up); err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
}

// newContainer wires every service over the configured backend.
func newContainer(ctx context.Context, cfg *config.Config, migrateUp bool) (*portssvc.ServiceContainer, func(), error) {
	catalog, err := templates.LoadCatalog(cfg.TemplateCatalogPath)
	if err != nil {
		return nil, nil, err
	}
	repos, closeRepos, err := openRepositories(ctx, cfg, migrateUp)
	if err != nil {
		return nil, nil, err
	}
	return services.NewServiceContainer(cfg, repos, catalog), closeRepos, nil
}
