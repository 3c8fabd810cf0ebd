package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/middleware"
)

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody under "error".
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound, apperrors.CodeRecurringRuleNotFound,
		apperrors.CodeTemplateNotFound, apperrors.CodeCSVSessionNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidState, apperrors.CodeAppendOnlyViolation,
		apperrors.CodeReconciledLocked, apperrors.CodeClosedLocked:
		return http.StatusConflict
	case apperrors.CodeOwnerRequired:
		return http.StatusForbidden
	case apperrors.CodeValidation, apperrors.CodeUnsupportedLocale,
		apperrors.CodeCSVMissingRequired, apperrors.CodeCSVInvalidManifest, apperrors.CodeCSVMalformed:
		return http.StatusBadRequest
	case apperrors.CodeEmptyPostings, apperrors.CodeInvalidAmount,
		apperrors.CodeUnbalancedPostings, apperrors.CodeCurrencyMismatch,
		apperrors.CodeQuickAddBlocked, apperrors.CodeCSVImportBlocked,
		apperrors.CodeCSVImportMissingTransaction, apperrors.CodeCSVImportDuplicateTxID,
		apperrors.CodeCSVImportDuplicatePostingID, apperrors.CodeCSVImportUnbalanced,
		apperrors.CodeCSVImportInvalidDate:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Internal errors hide their
// message from the client.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := apperrors.CodeOf(err)
	status := statusFor(code)

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	body := ErrorBody{Code: code, Message: message, Details: apperrors.DetailsOf(err)}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("code", string(code)), slog.String("error", err.Error()))
		body = ErrorBody{Code: apperrors.CodeInternal, Message: "internal error"}
	} else {
		logger.Warn("Request rejected", slog.String("code", string(code)), slog.String("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

// respondBindError reports a request body or query that failed binding.
func respondBindError(c *gin.Context, err error) {
	respondError(c, apperrors.Wrap(apperrors.CodeValidation, err, "invalid request"))
}

// householdOf returns the caller's household, aborting with 401 when the
// token carried none.
func householdOf(c *gin.Context) (string, bool) {
	householdID, ok := middleware.GetHouseholdIDFromContext(c)
	if !ok || householdID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: ErrorBody{Code: "UNAUTHORIZED", Message: "household missing from token"}})
		return "", false
	}
	return householdID, true
}
