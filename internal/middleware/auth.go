package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	"github.com/SscSPs/twoline_ledger/internal/utils"
)

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHORIZED", "message": msg}})
}

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens
// and stores the caller's user, household and role in the request context.
// An empty issuer skips the issuer check.
func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			abortUnauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := utils.ParseAndValidateJWT(parts[1], jwtSecret, issuer)
		if err != nil {
			logger.Warn("Invalid token", "error", err)
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			abortUnauthorized(c, msg)
			return
		}

		if claims.Subject == "" || claims.HouseholdID == "" {
			logger.Warn("Token is missing subject or household")
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		ctx := context.WithValue(c.Request.Context(), userIDKey, claims.Subject)
		ctx = context.WithValue(ctx, householdIDKey, claims.HouseholdID)
		ctx = context.WithValue(ctx, roleKey, string(claims.ActorRole()))
		enriched := logger.With(
			slog.String("user_id", claims.Subject),
			slog.String("household_id", claims.HouseholdID),
		)
		c.Request = c.Request.WithContext(WithLogger(ctx, enriched))

		c.Next()
	}
}

// RequireOwner rejects callers whose token does not carry the owner role.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRoleFromContext(c) != domain.RoleOwner {
			GetLoggerFromCtx(c.Request.Context()).Warn("Owner role required")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"code": "OWNER_REQUIRED", "message": "owner role required"}})
			return
		}
		c.Next()
	}
}
