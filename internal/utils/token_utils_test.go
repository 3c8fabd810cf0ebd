package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT("user-1", "hh-1", domain.RoleOwner, "secret", time.Hour, "twoline")
	require.NoError(t, err)

	claims, err := ParseAndValidateJWT(token, "secret", "twoline")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "hh-1", claims.HouseholdID)
	assert.Equal(t, domain.RoleOwner, claims.ActorRole())
}

func TestParseAndValidateJWT_Rejects(t *testing.T) {
	valid, err := GenerateJWT("user-1", "hh-1", domain.RoleMember, "secret", time.Hour, "twoline")
	require.NoError(t, err)
	expired, err := GenerateJWT("user-1", "hh-1", domain.RoleMember, "secret", -time.Minute, "twoline")
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(valid, "other-secret", "twoline")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ParseAndValidateJWT(valid, "secret", "someone-else")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	_, err = ParseAndValidateJWT(expired, "secret", "")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestActorRole_DefaultsToMember(t *testing.T) {
	assert.Equal(t, domain.RoleMember, (&LedgerClaims{}).ActorRole())
	assert.Equal(t, domain.RoleMember, (&LedgerClaims{Role: "admin"}).ActorRole())
}
