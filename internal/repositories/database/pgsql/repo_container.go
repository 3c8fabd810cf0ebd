package pgsql

import (
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: newPgxTransactionRepository(dbPool),
		PostingRepo:     newPgxPostingRepository(dbPool),
		LockStateRepo:   newPgxLockStateRepository(dbPool),
		AuditLogRepo:    newPgxAuditLogRepository(dbPool),
		FingerprintRepo: newPgxFingerprintRegistry(dbPool),
		RuleRepo:        newPgxRecurringRuleRepository(dbPool),
		InstanceRepo:    newPgxRecurringInstanceRepository(dbPool),
	}
}
