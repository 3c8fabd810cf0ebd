package pgsql

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestQueryFailed(t *testing.T) {
	err := queryFailed(errors.New("conn reset"), "failed to list postings")
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "conn reset")
}

func TestPostingValuesMatchColumns(t *testing.T) {
	p := domain.Posting{
		ID:            "p-1",
		TransactionID: "tx-1",
		ChainID:       "tx-1",
		EntryType:     domain.EntryOriginal,
		AccountCode:   "asset:cash",
		Direction:     domain.Credit,
		AmountMinor:   500,
		Currency:      "KRW",
		OccurredAt:    civil.Date{Year: 2026, Month: 2, Day: 1},
	}
	values := postingValues(p)
	require.Len(t, values, len(postingColumns))
	assert.Equal(t, "p-1", values[0])
	assert.Equal(t, int64(500), values[6])
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.Len(t, ups, 3)
	assert.Len(t, downs, len(ups))
}
