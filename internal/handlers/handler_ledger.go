package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/dto"
	"github.com/SscSPs/twoline_ledger/internal/middleware"
	"github.com/SscSPs/twoline_ledger/internal/utils/pagination"
)

// ledgerHandler handles HTTP requests for drafts and posted transactions.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// ownedTransaction loads transactionID and hides it unless it belongs to
// the caller's household.
func (h *ledgerHandler) ownedTransaction(c *gin.Context) (*domain.PostedTransaction, bool) {
	householdID, ok := householdOf(c)
	if !ok {
		return nil, false
	}
	transactionID := c.Param("transactionID")
	tx, err := h.ledgerService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if tx.Transaction.HouseholdID != householdID {
		respondError(c, apperrors.ErrNotFound.WithDetail("transaction_id", transactionID))
		return nil, false
	}
	return tx, true
}

// createDraft godoc
// @Summary Create a draft transaction
// @Description Stores a DRAFT transaction. Drafts may be unbalanced until posted.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   draft body dto.CreateDraftRequest true "Draft"
// @Success 201 {object} domain.PostedTransaction
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /ledger/drafts [post]
func (h *ledgerHandler) createDraft(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	var req dto.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.ledgerService.CreateDraft(c.Request.Context(), req.ToDomain(householdID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// postDraft godoc
// @Summary Post a draft
// @Description Balance-checks a draft and moves it to POSTED.
// @Tags ledger
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} domain.PostedTransaction
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Unbalanced postings with debit_total and credit_total"
// @Router /ledger/drafts/{transactionID}/post [post]
func (h *ledgerHandler) postDraft(c *gin.Context) {
	tx, ok := h.ownedTransaction(c)
	if !ok {
		return
	}
	posted, err := h.ledgerService.PostDraft(c.Request.Context(), tx.Transaction.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posted)
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Returns a transaction of any status with its postings.
// @Tags ledger
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} domain.PostedTransaction
// @Failure 404 {object} ErrorResponse
// @Router /ledger/transactions/{transactionID} [get]
func (h *ledgerHandler) getTransaction(c *gin.Context) {
	tx, ok := h.ownedTransaction(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tx)
}

// listPosted godoc
// @Summary List posted transactions
// @Description Posted transactions by occurredAt descending with voided and superseded flags.
// @Tags ledger
// @Produce  json
// @Param   include_voided query bool false "Include voided chains"
// @Param   limit query int false "Page size"
// @Param   next_token query string false "Cursor from a previous page"
// @Success 200 {object} dto.ListPostedResponse
// @Failure 400 {object} ErrorResponse
// @Router /ledger/transactions [get]
func (h *ledgerHandler) listPosted(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	includeVoided, _ := strconv.ParseBool(c.DefaultQuery("include_voided", "false"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		respondError(c, apperrors.New(apperrors.CodeValidation, "limit must be a non-negative integer"))
		return
	}

	listed, err := h.ledgerService.ListPostedTransactions(c.Request.Context(), householdID, domain.ListPostedOptions{IncludeVoided: includeVoided})
	if err != nil {
		respondError(c, err)
		return
	}
	page, next, err := pagination.Page(listed, limit, c.Query("next_token"), func(t domain.ListedTransaction) (civil.Date, string) {
		return t.OccurredAt, t.ID
	})
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.CodeValidation, err, "invalid next_token"))
		return
	}
	c.JSON(http.StatusOK, dto.ListPostedResponse{Transactions: page, NextToken: next})
}

// listCurrent godoc
// @Summary List current transactions
// @Description Returns the active head of every chain that is not voided.
// @Tags ledger
// @Produce  json
// @Success 200 {array} domain.Transaction
// @Router /ledger/current [get]
func (h *ledgerHandler) listCurrent(c *gin.Context) {
	householdID, ok := householdOf(c)
	if !ok {
		return
	}
	current, err := h.ledgerService.ListCurrentPostedTransactions(c.Request.Context(), householdID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, current)
}

// voidTransaction godoc
// @Summary Void a posted transaction
// @Description Appends a reversal. The original stays in the ledger.
// @Tags ledger
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 201 {object} domain.PostedTransaction
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /ledger/transactions/{transactionID}/void [post]
func (h *ledgerHandler) voidTransaction(c *gin.Context) {
	tx, ok := h.ownedTransaction(c)
	if !ok {
		return
	}
	reversal, err := h.ledgerService.VoidPosted(c.Request.Context(), tx.Transaction.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Transaction voided", slog.String("transaction_id", tx.Transaction.ID))
	c.JSON(http.StatusCreated, reversal)
}

// deleteTransaction godoc
// @Summary Delete a posted transaction
// @Description Posted rows are never removed; this appends a reversal like void.
// @Tags ledger
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 201 {object} domain.PostedTransaction
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /ledger/transactions/{transactionID} [delete]
func (h *ledgerHandler) deleteTransaction(c *gin.Context) {
	tx, ok := h.ownedTransaction(c)
	if !ok {
		return
	}
	reversal, err := h.ledgerService.DeletePosted(c.Request.Context(), tx.Transaction.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reversal)
}

// correctTransaction godoc
// @Summary Correct a posted transaction
// @Description Appends a reversal and a correction built from the given postings.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   correction body dto.CorrectRequest true "Corrected postings"
// @Success 201 {object} domain.CorrectResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /ledger/transactions/{transactionID}/correct [post]
func (h *ledgerHandler) correctTransaction(c *gin.Context) {
	var req dto.CorrectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	tx, ok := h.ownedTransaction(c)
	if !ok {
		return
	}
	result, err := h.ledgerService.CorrectPosted(c.Request.Context(), tx.Transaction.ID, dto.ToPostingInputs(req.Postings))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// lockTransaction godoc
// @Summary Change the lock state of a posted transaction
// @Description reconcile, unreconcile, close or reopen. close and reopen require the owner role.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   lock body dto.LockRequest true "Lock action"
// @Success 200 {object} domain.Transaction
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /ledger/transactions/{transactionID}/lock [post]
func (h *ledgerHandler) lockTransaction(c *gin.Context) {
	var req dto.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	tx, ok := h.ownedTransaction(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	id := tx.Transaction.ID
	var (
		updated *domain.Transaction
		err     error
	)
	switch req.Action {
	case "reconcile":
		updated, err = h.ledgerService.ReconcilePosted(ctx, id)
	case "unreconcile":
		updated, err = h.ledgerService.UnreconcilePosted(ctx, id)
	case "close":
		updated, err = h.ledgerService.ClosePosted(ctx, id, middleware.GetRoleFromContext(c))
	case "reopen":
		updated, err = h.ledgerService.ReopenPosted(ctx, id, middleware.GetRoleFromContext(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// registerLedgerRoutes registers ledger specific routes
func registerLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := group.Group("/ledger")
	{
		ledger.POST("/drafts", h.createDraft)
		ledger.POST("/drafts/:transactionID/post", h.postDraft)
		ledger.GET("/current", h.listCurrent)
		ledger.GET("/transactions", h.listPosted)
		ledger.GET("/transactions/:transactionID", h.getTransaction)
		ledger.DELETE("/transactions/:transactionID", h.deleteTransaction)
		ledger.POST("/transactions/:transactionID/void", h.voidTransaction)
		ledger.POST("/transactions/:transactionID/correct", h.correctTransaction)
		ledger.POST("/transactions/:transactionID/lock", h.lockTransaction)
	}
}
