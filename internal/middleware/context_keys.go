package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// contextKey keys values stored in request contexts. Using a custom type
// prevents collisions.
type contextKey string

const (
	loggerCtxKey   = contextKey("logger")
	userIDKey      = contextKey("userID")
	householdIDKey = contextKey("householdID")
	roleKey        = contextKey("role")
)

func stringFromContext(c *gin.Context, key contextKey) (string, bool) {
	if v, exists := c.Get(string(key)); exists {
		s, ok := v.(string)
		return s, ok
	}
	if v, ok := c.Request.Context().Value(key).(string); ok {
		return v, true
	}
	return "", false
}

// GetUserIDFromContext retrieves the authenticated user ID.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, userIDKey)
}

// GetHouseholdIDFromContext retrieves the household the caller acts for.
func GetHouseholdIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, householdIDKey)
}

// GetRoleFromContext retrieves the caller's role, defaulting to member.
func GetRoleFromContext(c *gin.Context) domain.Role {
	if role, ok := stringFromContext(c, roleKey); ok && domain.Role(role) == domain.RoleOwner {
		return domain.RoleOwner
	}
	return domain.RoleMember
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}
