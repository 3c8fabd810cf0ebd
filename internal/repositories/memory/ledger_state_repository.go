package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
)

// LockStateRepository keeps lock states keyed by transaction id.
type LockStateRepository struct {
	mu     sync.RWMutex
	states map[string]domain.LockState
}

func NewLockStateRepository() *LockStateRepository {
	return &LockStateRepository{states: make(map[string]domain.LockState)}
}

var _ portsrepo.LockStateRepository = (*LockStateRepository)(nil)

func (r *LockStateRepository) GetLockState(ctx context.Context, transactionID string) (domain.LockState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if state, ok := r.states[transactionID]; ok {
		return state, nil
	}
	return domain.LockUnlocked, nil
}

func (r *LockStateRepository) SetLockState(ctx context.Context, transactionID string, state domain.LockState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state == domain.LockUnlocked {
		delete(r.states, transactionID)
		return nil
	}
	r.states[transactionID] = state
	return nil
}

func (r *LockStateRepository) ListLockStates(ctx context.Context) (map[string]domain.LockState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.states), nil
}

// AuditLogRepository is an append-only in-memory event log.
type AuditLogRepository struct {
	mu     sync.RWMutex
	events []domain.AuditEvent
}

func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

var _ portsrepo.AuditLogRepository = (*AuditLogRepository)(nil)

func (r *AuditLogRepository) AppendAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.Payload = maps.Clone(event.Payload)
	r.events = append(r.events, event)
	return nil
}

func (r *AuditLogRepository) ListAuditEventsByHousehold(ctx context.Context, householdID string) ([]domain.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AuditEvent
	for _, e := range r.events {
		if e.HouseholdID == householdID {
			e.Payload = maps.Clone(e.Payload)
			out = append(out, e)
		}
	}
	return out, nil
}

// FingerprintRegistry is a set of committed bundle fingerprints.
type FingerprintRegistry struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

func NewFingerprintRegistry() *FingerprintRegistry {
	return &FingerprintRegistry{set: make(map[string]struct{})}
}

var _ portsrepo.FingerprintRegistry = (*FingerprintRegistry)(nil)

func (r *FingerprintRegistry) HasFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.set[fingerprint]
	return ok, nil
}

func (r *FingerprintRegistry) AddFingerprint(ctx context.Context, fingerprint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set[fingerprint] = struct{}{}
	return nil
}
