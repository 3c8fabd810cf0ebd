package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/dto"
)

// recurringHandler handles recurring rules and draft generation.
type recurringHandler struct {
	recurringService portssvc.RecurringSvcFacade
	defaultLocale    domain.Locale
}

func newRecurringHandler(recurringService portssvc.RecurringSvcFacade, defaultLocale domain.Locale) *recurringHandler {
	return &recurringHandler{recurringService: recurringService, defaultLocale: defaultLocale}
}

func (h *recurringHandler) ownedRule(c *gin.Context) (*domain.RecurringRule, bool) {
	householdID, ok := householdOf(c)
	if !ok {
		return nil, false
	}
	ruleID := c.Param("ruleID")
	rule, err := h.recurringService.GetRule(c.Request.Context(), ruleID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if rule.HouseholdID != householdID {
		respondError(c, apperrors.ErrRecurringRuleMissing.WithDetail("rule_id", ruleID))
		return nil, false
	}
	return rule, true
}

// createRule godoc
// @Summary Create a recurring rule
// @Tags recurring
// @Accept  json
// @Produce  json
// @Param   rule body dto.CreateRuleRequest true "Rule"
// @Success 201 {object} domain.RecurringRule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Unknown template"
// @Router /recurring/rules [post]
func (h *recurringHandler) createRule(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rule, err := h.recurringService.CreateRule(c.Request.Context(), req.ToDomain(householdID, h.defaultLocale))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// listRules godoc
// @Summary List recurring rules
// @Tags recurring
// @Produce  json
// @Success 200 {array} domain.RecurringRule
// @Router /recurring/rules [get]
func (h *recurringHandler) listRules(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	rules, err := h.recurringService.ListRules(c.Request.Context(), householdID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// getRule godoc
// @Summary Get a recurring rule
// @Tags recurring
// @Produce  json
// @Param   ruleID path string true "Rule ID"
// @Success 200 {object} domain.RecurringRule
// @Failure 404 {object} ErrorResponse
// @Router /recurring/rules/{ruleID} [get]
func (h *recurringHandler) getRule(c *gin.Context) {
	rule, ok := h.ownedRule(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rule)
}

// updateRule godoc
// @Summary Update a recurring rule
// @Description Merges the given fields from effectiveFrom onwards. Generated drafts are untouched.
// @Tags recurring
// @Accept  json
// @Produce  json
// @Param   ruleID path string true "Rule ID"
// @Param   update body domain.UpdateRuleInput true "Fields to change"
// @Success 200 {object} domain.RecurringRule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /recurring/rules/{ruleID} [patch]
func (h *recurringHandler) updateRule(c *gin.Context) {
	var req domain.UpdateRuleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rule, ok := h.ownedRule(c)
	if !ok {
		return
	}
	updated, err := h.recurringService.UpdateRule(c.Request.Context(), rule.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// listInstances godoc
// @Summary List the drafts generated by a rule
// @Tags recurring
// @Produce  json
// @Param   ruleID path string true "Rule ID"
// @Success 200 {array} domain.RecurringInstance
// @Failure 404 {object} ErrorResponse
// @Router /recurring/rules/{ruleID}/instances [get]
func (h *recurringHandler) listInstances(c *gin.Context) {
	rule, ok := h.ownedRule(c)
	if !ok {
		return
	}
	instances, err := h.recurringService.ListInstances(c.Request.Context(), rule.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if instances == nil {
		instances = []domain.RecurringInstance{}
	}
	c.JSON(http.StatusOK, instances)
}

// runDue godoc
// @Summary Generate due recurring drafts
// @Description Creates at most one draft per active rule due on or before targetDate. Runs for every household.
// @Tags recurring
// @Accept  json
// @Produce  json
// @Param   run body dto.RunDueRequest true "Target date"
// @Success 200 {array} domain.RecurringInstance
// @Failure 403 {object} ErrorResponse
// @Router /recurring/run [post]
func (h *recurringHandler) runDue(c *gin.Context) {
	var req dto.RunDueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.TargetDate.IsZero() || !req.TargetDate.IsValid() {
		respondError(c, apperrors.New(apperrors.CodeValidation, "targetDate is required"))
		return
	}
	generated, err := h.recurringService.RunDue(c.Request.Context(), req.TargetDate)
	if err != nil {
		respondError(c, err)
		return
	}
	if generated == nil {
		generated = []domain.RecurringInstance{}
	}
	c.JSON(http.StatusOK, generated)
}

// registerRecurringRoutes registers recurring specific routes
func registerRecurringRoutes(group *gin.RouterGroup, recurringService portssvc.RecurringSvcFacade, defaultLocale domain.Locale, ownerOnly gin.HandlerFunc) {
	h := newRecurringHandler(recurringService, defaultLocale)

	recurring := group.Group("/recurring")
	{
		recurring.POST("/rules", h.createRule)
		recurring.GET("/rules", h.listRules)
		recurring.GET("/rules/:ruleID", h.getRule)
		recurring.PATCH("/rules/:ruleID", h.updateRule)
		recurring.GET("/rules/:ruleID/instances", h.listInstances)
		recurring.POST("/run", ownerOnly, h.runDue)
	}
}
