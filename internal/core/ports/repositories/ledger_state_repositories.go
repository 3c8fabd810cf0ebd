package repositories

import (
	"context"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// LockStateRepository stores lock states apart from transaction rows, so
// locking never mutates a posted transaction.
type LockStateRepository interface {
	// GetLockState returns the lock state of a transaction, UNLOCKED if none was set.
	GetLockState(ctx context.Context, transactionID string) (domain.LockState, error)

	// SetLockState records the lock state of a transaction.
	SetLockState(ctx context.Context, transactionID string, state domain.LockState) error

	// ListLockStates returns the state of every transaction that is not UNLOCKED.
	ListLockStates(ctx context.Context) (map[string]domain.LockState, error)
}

// AuditLogRepository is an append-only event log.
type AuditLogRepository interface {
	AppendAuditEvent(ctx context.Context, event domain.AuditEvent) error
	ListAuditEventsByHousehold(ctx context.Context, householdID string) ([]domain.AuditEvent, error)
}

// FingerprintRegistry remembers the fingerprints of committed CSV bundles.
type FingerprintRegistry interface {
	HasFingerprint(ctx context.Context, fingerprint string) (bool, error)
	AddFingerprint(ctx context.Context, fingerprint string) error
}
