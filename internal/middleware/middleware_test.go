package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	"github.com/SscSPs/twoline_ledger/internal/utils"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func init() {
	gin.SetMode(gin.TestMode)
}

type whoami struct {
	User      string
	Household string
	Role      domain.Role
}

func newAuthRouter(t *testing.T) (*gin.Engine, *whoami) {
	t.Helper()
	seen := &whoami{}
	r := gin.New()
	r.Use(StructuredLoggingMiddleware(slogDiscard()), AuthMiddleware("secret", "twoline"))
	r.GET("/me", func(c *gin.Context) {
		seen.User, _ = GetUserIDFromContext(c)
		seen.Household, _ = GetHouseholdIDFromContext(c)
		seen.Role = GetRoleFromContext(c)
		c.Status(http.StatusNoContent)
	})
	return r, seen
}

func TestAuthMiddleware(t *testing.T) {
	owner, err := utils.GenerateJWT("u-1", "hh-1", domain.RoleOwner, "secret", time.Hour, "twoline")
	require.NoError(t, err)
	member, err := utils.GenerateJWT("u-2", "hh-2", "", "secret", time.Hour, "twoline")
	require.NoError(t, err)
	noHousehold, err := utils.GenerateJWT("u-3", "", domain.RoleOwner, "secret", time.Hour, "twoline")
	require.NoError(t, err)
	wrongKey, err := utils.GenerateJWT("u-1", "hh-1", domain.RoleOwner, "nope", time.Hour, "twoline")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		want       whoami
	}{
		{name: "owner", header: "Bearer " + owner, wantStatus: http.StatusNoContent, want: whoami{"u-1", "hh-1", domain.RoleOwner}},
		{name: "role defaults to member", header: "Bearer " + member, wantStatus: http.StatusNoContent, want: whoami{"u-2", "hh-2", domain.RoleMember}},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "bad scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "no household", header: "Bearer " + noHousehold, wantStatus: http.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + wrongKey, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, seen := newAuthRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, tt.want, *seen)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter, err := NewRateLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = NewRateLimiter("lots")
	assert.Error(t, err)
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, GetLoggerFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestRequireOwner(t *testing.T) {
	owner, err := utils.GenerateJWT("u-1", "hh-1", domain.RoleOwner, "secret", time.Hour, "twoline")
	require.NoError(t, err)
	member, err := utils.GenerateJWT("u-2", "hh-1", domain.RoleMember, "secret", time.Hour, "twoline")
	require.NoError(t, err)

	r := gin.New()
	r.Use(AuthMiddleware("secret", "twoline"))
	r.POST("/run", RequireOwner(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	for token, want := range map[string]int{owner: http.StatusAccepted, member: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPost, "/run", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}
