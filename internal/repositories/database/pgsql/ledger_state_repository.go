package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/twoline_ledger/internal/models"
)

type PgxLockStateRepository struct {
	BaseRepository
}

func newPgxLockStateRepository(pool *pgxpool.Pool) *PgxLockStateRepository {
	return &PgxLockStateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LockStateRepository = (*PgxLockStateRepository)(nil)

func (r *PgxLockStateRepository) GetLockState(ctx context.Context, transactionID string) (domain.LockState, error) {
	var state string
	err := r.Pool.QueryRow(ctx, `SELECT lock_state FROM lock_states WHERE transaction_id = $1`, transactionID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LockUnlocked, nil
		}
		return "", queryFailed(err, "failed to read lock state of "+transactionID)
	}
	return domain.LockState(state), nil
}

// SetLockState stores non-UNLOCKED states only, so the table lists locked rows.
func (r *PgxLockStateRepository) SetLockState(ctx context.Context, transactionID string, state domain.LockState) error {
	if state == domain.LockUnlocked {
		if _, err := r.Pool.Exec(ctx, `DELETE FROM lock_states WHERE transaction_id = $1`, transactionID); err != nil {
			return queryFailed(err, "failed to unlock "+transactionID)
		}
		return nil
	}
	query := `
		INSERT INTO lock_states (transaction_id, lock_state)
		VALUES ($1, $2)
		ON CONFLICT (transaction_id) DO UPDATE SET lock_state = EXCLUDED.lock_state;
	`
	if _, err := r.Pool.Exec(ctx, query, transactionID, string(state)); err != nil {
		return queryFailed(err, "failed to set lock state of "+transactionID)
	}
	return nil
}

func (r *PgxLockStateRepository) ListLockStates(ctx context.Context) (map[string]domain.LockState, error) {
	rows, err := r.Pool.Query(ctx, `SELECT transaction_id, lock_state FROM lock_states`)
	if err != nil {
		return nil, queryFailed(err, "failed to query lock states")
	}
	defer rows.Close()

	states := make(map[string]domain.LockState)
	for rows.Next() {
		var id, state string
		if err := rows.Scan(&id, &state); err != nil {
			return nil, queryFailed(err, "failed to scan lock state")
		}
		states[id] = domain.LockState(state)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(err, "failed to read lock states")
	}
	return states, nil
}

type PgxAuditLogRepository struct {
	BaseRepository
}

func newPgxAuditLogRepository(pool *pgxpool.Pool) *PgxAuditLogRepository {
	return &PgxAuditLogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditLogRepository = (*PgxAuditLogRepository)(nil)

func (r *PgxAuditLogRepository) AppendAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	m := models.ToModelAuditEvent(event)
	if m.Payload == nil {
		m.Payload = map[string]any{}
	}
	query := `
		INSERT INTO audit_events (event_id, session_id, household_id, event_type, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query, m.EventID, m.SessionID, m.HouseholdID, m.EventType, m.OccurredAt, m.Payload)
	if err != nil {
		return queryFailed(err, "failed to append audit event "+event.EventID)
	}
	return nil
}

func (r *PgxAuditLogRepository) ListAuditEventsByHousehold(ctx context.Context, householdID string) ([]domain.AuditEvent, error) {
	query := `
		SELECT seq, event_id, session_id, household_id, event_type, occurred_at, payload
		FROM audit_events
		WHERE household_id = $1
		ORDER BY seq;
	`
	rows, err := r.Pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, queryFailed(err, "failed to query audit events")
	}
	defer rows.Close()

	modelRows, err := collect[models.AuditEvent](rows, "failed to collect audit events")
	if err != nil {
		return nil, err
	}
	out := make([]domain.AuditEvent, len(modelRows))
	for i, m := range modelRows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

type PgxFingerprintRegistry struct {
	BaseRepository
}

func newPgxFingerprintRegistry(pool *pgxpool.Pool) *PgxFingerprintRegistry {
	return &PgxFingerprintRegistry{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FingerprintRegistry = (*PgxFingerprintRegistry)(nil)

func (r *PgxFingerprintRegistry) HasFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM import_fingerprints WHERE fingerprint = $1)`, fingerprint).Scan(&exists)
	if err != nil {
		return false, queryFailed(err, "failed to check fingerprint")
	}
	return exists, nil
}

func (r *PgxFingerprintRegistry) AddFingerprint(ctx context.Context, fingerprint string) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO import_fingerprints (fingerprint) VALUES ($1) ON CONFLICT DO NOTHING`, fingerprint)
	if err != nil {
		return queryFailed(err, "failed to add fingerprint")
	}
	return nil
}
