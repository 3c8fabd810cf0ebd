package memory

import (
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires a fresh in-memory backend. The posting
// repository asks the transaction repository for statuses.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	transactionRepo := NewTransactionRepository()
	postingRepo := NewPostingRepository(transactionRepo.GetTransactionStatus)

	return portsrepo.RepositoryProvider{
		TransactionRepo: transactionRepo,
		PostingRepo:     postingRepo,
		LockStateRepo:   NewLockStateRepository(),
		AuditLogRepo:    NewAuditLogRepository(),
		FingerprintRepo: NewFingerprintRegistry(),
		RuleRepo:        NewRecurringRuleRepository(),
		InstanceRepo:    NewRecurringInstanceRepository(),
	}
}
