package csvkit

import (
	"fmt"
	"regexp"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Validation error codes.
const (
	ErrCodeInvalidDate        = "CSV_INVALID_DATE"
	ErrCodeInvalidAmount      = "CSV_INVALID_AMOUNT"
	ErrCodeMissingRequired    = "CSV_MISSING_REQUIRED"
	ErrCodeUnbalancedPostings = "CSV_UNBALANCED_POSTINGS"
	ErrCodeCurrencyMismatch   = "CSV_CURRENCY_MISMATCH"
	ErrCodeLockedTransaction  = "CSV_LOCKED_TRANSACTION"
	ErrCodeDuplicateImport    = "CSV_DUPLICATE_IMPORT"
)

// ValidationError is one bundle problem, described by a stable code, a
// message catalog key and a fix hint.
type ValidationError struct {
	ErrorCode    string `json:"error_code"`
	MessageKey   string `json:"message_key"`
	SuggestedFix string `json:"suggested_fix"`
}

// ValidateOptions configures optional checks.
type ValidateOptions struct {
	// BaseCurrency, when set, is the only currency postings may use.
	BaseCurrency string
	// LockedTransactionIDs flags bundle transactions that are locked in the ledger.
	LockedTransactionIDs map[string]struct{}
}

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// ParseDatePrefix returns the calendar date at the start of value.
func ParseDatePrefix(value string) (civil.Date, bool) {
	if !isoDatePrefix.MatchString(value) {
		return civil.Date{}, false
	}
	d, err := civil.ParseDate(value[:10])
	if err != nil {
		return civil.Date{}, false
	}
	return d, true
}

var maxAmountMinor = decimal.NewFromInt(1<<63 - 1)

// ParseAmountMinor parses a positive integer amount in minor units.
func ParseAmountMinor(value string) (int64, bool) {
	d, err := decimal.NewFromString(value)
	if err != nil || !d.IsInteger() || !d.IsPositive() || d.GreaterThan(maxAmountMinor) {
		return 0, false
	}
	return d.IntPart(), true
}

// Validate runs every bundle check and accumulates the failures.
func Validate(b Bundle, opts ValidateOptions) []ValidationError {
	var errs []ValidationError

	if b.Manifest.Version == "" || b.Manifest.BaseCurrency == "" {
		errs = append(errs, ValidationError{ErrCodeMissingRequired, "errors.csv.missingRequired", "Set manifest.version and manifest.base_currency"})
	}
	if len(b.Accounts) == 0 || len(b.Transactions) == 0 || len(b.Postings) == 0 {
		errs = append(errs, ValidationError{ErrCodeMissingRequired, "errors.csv.missingRequired", "Include accounts, transactions, and postings rows"})
	}

	errs = append(errs, validateDates(b)...)
	errs = append(errs, validateAmounts(b)...)
	errs = append(errs, validateBalance(b)...)
	errs = append(errs, validateCurrency(b, opts.BaseCurrency)...)
	errs = append(errs, validateLocks(b, opts.LockedTransactionIDs)...)
	return errs
}

func validateDates(b Bundle) []ValidationError {
	var errs []ValidationError
	for _, t := range b.Transactions {
		if _, ok := ParseDatePrefix(t.OccurredAt); !ok {
			errs = append(errs, ValidationError{ErrCodeInvalidDate, "errors.csv.invalidDate", fmt.Sprintf("Fix occurred_at in transaction %s", t.ID)})
		}
		if _, ok := ParseDatePrefix(t.PostedAt); !ok {
			errs = append(errs, ValidationError{ErrCodeInvalidDate, "errors.csv.invalidDate", fmt.Sprintf("Fix posted_at in transaction %s", t.ID)})
		}
	}
	return errs
}

func validateAmounts(b Bundle) []ValidationError {
	var errs []ValidationError
	for _, p := range b.Postings {
		if _, ok := ParseAmountMinor(p.AmountMinor); !ok {
			errs = append(errs, ValidationError{ErrCodeInvalidAmount, "errors.csv.invalidAmount", fmt.Sprintf("Fix amount_minor in posting %s", p.ID)})
		}
	}
	return errs
}

type sideTotals struct {
	debit, credit decimal.Decimal
	invalid       bool
}

func validateBalance(b Bundle) []ValidationError {
	var order []string
	totals := make(map[string]*sideTotals)
	for _, p := range b.Postings {
		t, ok := totals[p.TransactionID]
		if !ok {
			t = &sideTotals{}
			totals[p.TransactionID] = t
			order = append(order, p.TransactionID)
		}
		amount, err := decimal.NewFromString(p.AmountMinor)
		if err != nil {
			t.invalid = true
			continue
		}
		switch p.Direction {
		case "DEBIT":
			t.debit = t.debit.Add(amount)
		case "CREDIT":
			t.credit = t.credit.Add(amount)
		default:
			t.invalid = true
		}
	}

	var errs []ValidationError
	for _, id := range order {
		t := totals[id]
		if t.invalid || !t.debit.Equal(t.credit) {
			errs = append(errs, ValidationError{ErrCodeUnbalancedPostings, "errors.csv.unbalancedPostings", fmt.Sprintf("Adjust postings for transaction %s so debit equals credit", id)})
		}
	}
	return errs
}

func validateCurrency(b Bundle, base string) []ValidationError {
	if base == "" {
		return nil
	}
	var errs []ValidationError
	for _, p := range b.Postings {
		if p.Currency != base {
			errs = append(errs, ValidationError{ErrCodeCurrencyMismatch, "errors.csv.currencyMismatch", fmt.Sprintf("Convert posting %s currency to %s", p.ID, base)})
		}
	}
	return errs
}

func validateLocks(b Bundle, locked map[string]struct{}) []ValidationError {
	if len(locked) == 0 {
		return nil
	}
	var errs []ValidationError
	for _, t := range b.Transactions {
		if _, ok := locked[t.ID]; ok {
			errs = append(errs, ValidationError{ErrCodeLockedTransaction, "errors.csv.lockedTransaction", fmt.Sprintf("Unlock transaction %s before import", t.ID)})
		}
	}
	return errs
}

// DuplicateImportError reports a bundle whose fingerprint was already committed.
func DuplicateImportError() ValidationError {
	return ValidationError{ErrCodeDuplicateImport, "error.csv.duplicateImport", "Use force mode if this duplicate import is intentional"}
}

// AsWarning returns a copy of e with its code suffixed _WARNING.
func AsWarning(e ValidationError) ValidationError {
	e.ErrorCode += "_WARNING"
	return e
}
