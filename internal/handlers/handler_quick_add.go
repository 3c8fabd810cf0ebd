package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/dto"
	"github.com/SscSPs/twoline_ledger/internal/templates"
)

type quickAddHandler struct {
	quickAddService portssvc.QuickAddSvcFacade
	catalog         *templates.Catalog
}

func newQuickAddHandler(quickAddService portssvc.QuickAddSvcFacade, catalog *templates.Catalog) *quickAddHandler {
	return &quickAddHandler{quickAddService: quickAddService, catalog: catalog}
}

// parse godoc
// @Summary Parse notification text
// @Description Extracts date, amount, direction and memo with confidences and reason codes.
// @Tags quick-add
// @Accept  json
// @Produce  json
// @Param   text body dto.QuickAddParseRequest true "Pasted text"
// @Success 200 {object} quickadd.Result
// @Failure 400 {object} ErrorResponse
// @Router /quick-add/parse [post]
func (h *quickAddHandler) parse(c *gin.Context) {
	var req dto.QuickAddParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.quickAddService.Parse(c.Request.Context(), req.Text))
}

// createDraft godoc
// @Summary Create a draft from notification text
// @Tags quick-add
// @Accept  json
// @Produce  json
// @Param   draft body dto.QuickAddDraftRequest true "Pasted text and optional template"
// @Success 201 {object} dto.QuickAddDraftResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Unknown template"
// @Failure 422 {object} ErrorResponse "Parse blocked"
// @Router /quick-add/drafts [post]
func (h *quickAddHandler) createDraft(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	var req dto.QuickAddDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.quickAddService.CreateDraft(c.Request.Context(), dto.QuickAddDraftInput{
		HouseholdID: householdID,
		Text:        req.Text,
		TemplateID:  req.TemplateID,
		Locale:      req.Locale,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// listTemplates godoc
// @Summary List ledger templates
// @Tags quick-add
// @Produce  json
// @Success 200 {array} templates.Template
// @Router /templates [get]
func (h *quickAddHandler) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.List())
}

func registerQuickAddRoutes(group *gin.RouterGroup, quickAddService portssvc.QuickAddSvcFacade, catalog *templates.Catalog, limit gin.HandlerFunc) {
	h := newQuickAddHandler(quickAddService, catalog)

	group.GET("/templates", h.listTemplates)
	quick := group.Group("/quick-add", limit)
	{
		quick.POST("/parse", h.parse)
		quick.POST("/drafts", h.createDraft)
	}
}
