package handlers

import (
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
)

type dashboardHandler struct {
	dashboardService portssvc.DashboardSvc
	now              func() time.Time
}

// getSummary godoc
// @Summary Household dashboard
// @Description Spend trend, category breakdown, cashflow, upcoming recurring drafts and input health.
// @Tags dashboard
// @Produce  json
// @Param   today query string false "Reference date (YYYY-MM-DD), defaults to the server date"
// @Success 200 {object} dto.DashboardSummary
// @Failure 400 {object} ErrorResponse
// @Router /dashboard [get]
func (h *dashboardHandler) getSummary(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	today := civil.DateOf(h.now())
	if raw := c.Query("today"); raw != "" {
		parsed, err := civil.ParseDate(raw)
		if err != nil {
			respondError(c, apperrors.Wrap(apperrors.CodeValidation, err, "today must be YYYY-MM-DD"))
			return
		}
		today = parsed
	}

	summary, err := h.dashboardService.GetSummary(c.Request.Context(), householdID, today)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func registerDashboardRoutes(group *gin.RouterGroup, dashboardService portssvc.DashboardSvc) {
	h := &dashboardHandler{dashboardService: dashboardService, now: time.Now}
	group.GET("/dashboard", h.getSummary)
}
