package apperrors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error identifier. Clients map codes to
// localized messages; the code itself never changes meaning.
type Code string

const (
	CodeInternal   Code = "INTERNAL"
	CodeValidation Code = "VALIDATION"

	// Ledger state machine.
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidState        Code = "INVALID_STATE"
	CodeAppendOnlyViolation Code = "APPEND_ONLY_VIOLATION"
	CodeEmptyPostings       Code = "EMPTY_POSTINGS"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeUnbalancedPostings  Code = "UNBALANCED_POSTINGS"
	CodeCurrencyMismatch    Code = "CURRENCY_MISMATCH"
	CodeReconciledLocked    Code = "RECONCILED_LOCKED"
	CodeClosedLocked        Code = "CLOSED_LOCKED"
	CodeOwnerRequired       Code = "OWNER_REQUIRED"

	// CSV bundle codec and import pipeline.
	CodeCSVMissingRequired          Code = "CSV_MISSING_REQUIRED"
	CodeCSVInvalidManifest          Code = "CSV_INVALID_MANIFEST"
	CodeCSVMalformed                Code = "CSV_MALFORMED"
	CodeCSVSessionNotFound          Code = "CSV_IMPORT_SESSION_NOT_FOUND"
	CodeCSVImportBlocked            Code = "CSV_IMPORT_BLOCKED"
	CodeCSVImportMissingTransaction Code = "CSV_IMPORT_MISSING_TRANSACTION"
	CodeCSVImportDuplicateTxID      Code = "CSV_IMPORT_DUPLICATE_TRANSACTION_ID"
	CodeCSVImportDuplicatePostingID Code = "CSV_IMPORT_DUPLICATE_POSTING_ID"
	CodeCSVImportUnbalanced         Code = "CSV_IMPORT_UNBALANCED"
	CodeCSVImportInvalidDate        Code = "CSV_IMPORT_INVALID_DATE"

	// Recurring rules, templates and quick add.
	CodeRecurringRuleNotFound Code = "RECURRING_RULE_NOT_FOUND"
	CodeTemplateNotFound      Code = "TEMPLATE_NOT_FOUND"
	CodeUnsupportedLocale     Code = "UNSUPPORTED_LOCALE"
	CodeQuickAddBlocked       Code = "QUICK_ADD_BLOCKED"
)

// AppError is the typed failure returned by every core operation.
type AppError struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

func (e *AppError) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError with the same code, so sentinels
// below match any error carrying their code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of e with key set in its details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &AppError{Code: e.Code, Message: e.Message, Details: details, Err: e.Err}
}

// New creates an AppError with the given code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, err error, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code of the first AppError in err's chain.
// Errors that carry no code report CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// DetailsOf returns the details of the first AppError in err's chain.
func DetailsOf(err error) map[string]any {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = New(CodeNotFound, "resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = New(CodeValidation, "validation error")

// ErrInvalidState indicates an operation against a transaction in the wrong status.
var ErrInvalidState = New(CodeInvalidState, "invalid transaction state")

// ErrAppendOnlyViolation indicates a direct mutation of posted ledger data.
var ErrAppendOnlyViolation = New(CodeAppendOnlyViolation, "posted transactions are append-only")

var (
	ErrEmptyPostings      = New(CodeEmptyPostings, "no postings given")
	ErrInvalidAmount      = New(CodeInvalidAmount, "posting amount must be a positive integer")
	ErrUnbalancedPostings = New(CodeUnbalancedPostings, "debit and credit totals differ")
	ErrCurrencyMismatch   = New(CodeCurrencyMismatch, "correction currency not used by original")
	ErrReconciledLocked   = New(CodeReconciledLocked, "transaction is reconciled")
	ErrClosedLocked       = New(CodeClosedLocked, "transaction is in a closed period")
	ErrOwnerRequired      = New(CodeOwnerRequired, "owner role required")
)

var (
	ErrCSVMissingRequired   = New(CodeCSVMissingRequired, "required bundle file or column missing")
	ErrCSVSessionNotFound   = New(CodeCSVSessionNotFound, "import session not found")
	ErrCSVImportBlocked     = New(CodeCSVImportBlocked, "import session has validation errors")
	ErrCSVImportUnbalanced  = New(CodeCSVImportUnbalanced, "imported transaction is unbalanced")
	ErrRecurringRuleMissing = New(CodeRecurringRuleNotFound, "recurring rule not found")
	ErrTemplateNotFound     = New(CodeTemplateNotFound, "template not found")
)
