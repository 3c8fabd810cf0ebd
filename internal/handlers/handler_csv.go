package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/csvkit"
	"github.com/SscSPs/twoline_ledger/internal/dto"
	"github.com/SscSPs/twoline_ledger/internal/middleware"
)

// csvHandler handles canonical import, exports and the import audit log.
type csvHandler struct {
	csvService portssvc.CsvImportSvcFacade
}

func newCSVHandler(csvService portssvc.CsvImportSvcFacade) *csvHandler {
	return &csvHandler{csvService: csvService}
}

func bomRequested(c *gin.Context) bool {
	bom, _ := strconv.ParseBool(c.DefaultQuery("bom", "false"))
	return bom
}

// previewImport godoc
// @Summary Preview a canonical bundle import
// @Description Validates the bundle and opens an import session. Nothing is written to the ledger.
// @Tags csv
// @Accept  json
// @Produce  json
// @Param   bundle body dto.PreviewRequest true "Bundle files"
// @Success 200 {object} dto.PreviewResult
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /csv/import/preview [post]
func (h *csvHandler) previewImport(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.csvService.PreviewCanonical(c.Request.Context(), dto.PreviewInput{
		HouseholdID: householdID,
		Files:       req.Files,
		Force:       req.Force,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// commitImport godoc
// @Summary Commit a previewed import
// @Description Applies the session's bundle in full or not at all.
// @Tags csv
// @Accept  json
// @Produce  json
// @Param   commit body dto.CommitRequest true "Session to commit"
// @Success 200 {object} dto.CommitResult
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /csv/import/commit [post]
func (h *csvHandler) commitImport(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	var req dto.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.csvService.CommitCanonical(c.Request.Context(), dto.CommitInput{
		SessionID:   req.SessionID,
		HouseholdID: householdID,
		Force:       req.Force,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("CSV import committed", slog.String("session_id", result.SessionID))
	c.JSON(http.StatusOK, result)
}

// exportCanonical godoc
// @Summary Export the canonical bundle
// @Description Posted data of the household as manifest, accounts, transactions and postings files.
// @Tags csv
// @Produce  json
// @Param   bom query bool false "Prefix every file with a UTF-8 BOM"
// @Success 200 {object} dto.CanonicalExportResponse
// @Router /csv/export/canonical [get]
func (h *csvHandler) exportCanonical(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	files, err := h.csvService.ExportCanonical(c.Request.Context(), householdID, csvkit.SerializeOptions{ExcelBOM: bomRequested(c)})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CanonicalExportResponse{Files: files})
}

// exportFlat godoc
// @Summary Export a flat CSV
// @Description One row per posting of the household's posted transactions.
// @Tags csv
// @Produce  text/csv
// @Param   bom query bool false "Prefix the file with a UTF-8 BOM"
// @Success 200 {string} string "CSV content"
// @Router /csv/export/flat [get]
func (h *csvHandler) exportFlat(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	content, err := h.csvService.ExportFlat(c.Request.Context(), householdID, bomRequested(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="ledger.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(content))
}

// listAuditEvents godoc
// @Summary List import audit events
// @Tags csv
// @Produce  json
// @Success 200 {array} domain.AuditEvent
// @Router /csv/audit-events [get]
func (h *csvHandler) listAuditEvents(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	events, err := h.csvService.ListAuditEvents(c.Request.Context(), householdID)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	c.JSON(http.StatusOK, events)
}

// registerCSVRoutes registers csv specific routes. previewLimit guards the
// preview endpoint, which parses whole bundles.
func registerCSVRoutes(group *gin.RouterGroup, csvService portssvc.CsvImportSvcFacade, previewLimit gin.HandlerFunc) {
	h := newCSVHandler(csvService)

	csv := group.Group("/csv")
	{
		csv.POST("/import/preview", previewLimit, h.previewImport)
		csv.POST("/import/commit", h.commitImport)
		csv.GET("/export/canonical", h.exportCanonical)
		csv.GET("/export/flat", h.exportFlat)
		csv.GET("/audit-events", h.listAuditEvents)
	}
}
