package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// LedgerClaims are the JWT claims the API expects. HouseholdID scopes every
// request; Role gates close and reopen.
type LedgerClaims struct {
	HouseholdID string `json:"household_id"`
	Role        string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ActorRole returns the role claim, treating anything but owner as member.
func (c *LedgerClaims) ActorRole() domain.Role {
	if domain.Role(c.Role) == domain.RoleOwner {
		return domain.RoleOwner
	}
	return domain.RoleMember
}

// GenerateJWT generates a new JWT token for subject acting in householdID.
func GenerateJWT(subject, householdID string, role domain.Role, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := LedgerClaims{
		HouseholdID: householdID,
		Role:        string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a JWT token string, validates its signature and
// standard claims, and checks the issuer when one is given.
func ParseAndValidateJWT(tokenString string, secretKey string, issuer string) (*LedgerClaims, error) {
	var opts []jwt.ParserOption
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &LedgerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	return claims, nil
}
