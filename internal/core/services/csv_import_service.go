package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/twoline_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/twoline_ledger/internal/core/ports/services"
	"github.com/SscSPs/twoline_ledger/internal/csvkit"
	"github.com/SscSPs/twoline_ledger/internal/dto"
	"github.com/SscSPs/twoline_ledger/internal/utils/accounting"
)

const (
	csvAuditScope          = "csv-import"
	canonicalBundleVersion = "1.0.0"

	defaultSessionTTL = 30 * time.Minute
	defaultSessionMax = 256
)

// CSVImportConfig configures the import pipeline.
type CSVImportConfig struct {
	// BaseCurrency is required of every imported posting when set.
	BaseCurrency string
	// LocaleHint is written to exported manifests.
	LocaleHint string
	SessionTTL time.Duration
	SessionMax int
}

// importSession is the preview state a commit consumes.
type importSession struct {
	ID          string
	HouseholdID string
	CreatedAt   time.Time
	Status      domain.ImportStatus
	Bundle      csvkit.Bundle
	Fingerprint string
	Errors      []csvkit.ValidationError
	Warnings    []csvkit.ValidationError
}

type csvImportService struct {
	BaseService
	cfg          CSVImportConfig
	txRepo       portsrepo.TransactionRepositoryFacade
	postingRepo  portsrepo.PostingRepositoryFacade
	lockRepo     portsrepo.LockStateRepository
	auditRepo    portsrepo.AuditLogRepository
	fingerprints portsrepo.FingerprintRegistry
	sessions     *expirable.LRU[string, *importSession]
	serializer   *WriteSerializer
	newID        domain.IDFactory
	now          func() time.Time
}

// CSVImportServiceOption is a functional option for configuring the CSV import service
type CSVImportServiceOption func(*csvImportService)

// WithCSVIDFactory replaces the uuid generator used for sessions and audit events.
func WithCSVIDFactory(newID domain.IDFactory) CSVImportServiceOption {
	return func(s *csvImportService) {
		s.newID = newID
	}
}

// WithCSVClock replaces the clock used for audit timestamps.
func WithCSVClock(now func() time.Time) CSVImportServiceOption {
	return func(s *csvImportService) {
		s.now = now
	}
}

// WithCSVSerializer shares a write serializer with other services.
func WithCSVSerializer(serializer *WriteSerializer) CSVImportServiceOption {
	return func(s *csvImportService) {
		s.serializer = serializer
	}
}

// NewCsvImportService creates the import and export service.
func NewCsvImportService(repos portsrepo.RepositoryProvider, cfg CSVImportConfig, options ...CSVImportServiceOption) portssvc.CsvImportSvcFacade {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.SessionMax <= 0 {
		cfg.SessionMax = defaultSessionMax
	}

	svc := &csvImportService{
		cfg:          cfg,
		txRepo:       repos.TransactionRepo,
		postingRepo:  repos.PostingRepo,
		lockRepo:     repos.LockStateRepo,
		auditRepo:    repos.AuditLogRepo,
		fingerprints: repos.FingerprintRepo,
		sessions:     expirable.NewLRU[string, *importSession](cfg.SessionMax, nil, cfg.SessionTTL),
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	if svc.serializer == nil {
		svc.serializer = NewWriteSerializer()
	}
	return svc
}

var _ portssvc.CsvImportSvcFacade = (*csvImportService)(nil)

func (s *csvImportService) PreviewCanonical(ctx context.Context, input dto.PreviewInput) (*dto.PreviewResult, error) {
	if input.HouseholdID == "" {
		return nil, apperrors.ErrValidation.WithDetail("field", "householdId")
	}
	bundle, err := csvkit.ParseCanonical(input.Files)
	if err != nil {
		return nil, err
	}

	return withWrite(ctx, s.serializer, func(ctx context.Context) (*dto.PreviewResult, error) {
		locks, err := s.lockRepo.ListLockStates(ctx)
		if err != nil {
			return nil, err
		}
		locked := make(map[string]struct{}, len(locks))
		for id := range locks {
			locked[id] = struct{}{}
		}

		errs := csvkit.Validate(bundle, csvkit.ValidateOptions{
			BaseCurrency:         s.cfg.BaseCurrency,
			LockedTransactionIDs: locked,
		})
		fingerprint := csvkit.Fingerprint(bundle)
		duplicate, err := s.fingerprints.HasFingerprint(ctx, fingerprint)
		if err != nil {
			return nil, err
		}
		if duplicate {
			errs = append(errs, csvkit.DuplicateImportError())
		}
		if errs == nil {
			errs = []csvkit.ValidationError{}
		}

		warnings := []csvkit.ValidationError{}
		if input.Force {
			for _, e := range errs {
				warnings = append(warnings, csvkit.AsWarning(e))
			}
		}

		status := domain.ImportPreviewed
		if len(errs) > 0 {
			status = domain.ImportBlocked
		}

		session := &importSession{
			ID:          s.newID(),
			HouseholdID: input.HouseholdID,
			CreatedAt:   s.now().UTC(),
			Status:      status,
			Bundle:      bundle,
			Fingerprint: fingerprint,
			Errors:      errs,
			Warnings:    warnings,
		}
		s.sessions.Add(session.ID, session)

		s.appendAudit(ctx, session, domain.AuditCSVImportPreviewed, map[string]any{
			"status":           string(status),
			"errorCodes":       errorCodes(errs),
			"warningCodes":     errorCodes(warnings),
			"transactionCount": len(bundle.Transactions),
			"postingCount":     len(bundle.Postings),
		})

		return &dto.PreviewResult{
			SessionID:   session.ID,
			Status:      status,
			Fingerprint: fingerprint,
			Rows: dto.RowCounts{
				Accounts:     len(bundle.Accounts),
				Transactions: len(bundle.Transactions),
				Postings:     len(bundle.Postings),
				AuditEvents:  len(bundle.AuditEvents),
			},
			Errors:   errs,
			Warnings: warnings,
		}, nil
	})
}

func (s *csvImportService) CommitCanonical(ctx context.Context, input dto.CommitInput) (*dto.CommitResult, error) {
	return withWrite(ctx, s.serializer, func(ctx context.Context) (*dto.CommitResult, error) {
		session, ok := s.sessions.Get(input.SessionID)
		if !ok || (input.HouseholdID != "" && input.HouseholdID != session.HouseholdID) {
			return nil, apperrors.ErrCSVSessionNotFound.WithDetail("session_id", input.SessionID)
		}
		if len(session.Errors) > 0 && !input.Force {
			return nil, apperrors.ErrCSVImportBlocked.
				WithDetail("session_id", session.ID).
				WithDetail("error_codes", errorCodes(session.Errors))
		}

		err := applyAtomically(ctx, s.txRepo, s.postingRepo, func(ctx context.Context) error {
			return s.applyBundle(ctx, session.HouseholdID, session.Bundle)
		})
		if err != nil {
			s.appendAudit(ctx, session, domain.AuditCSVImportFailed, map[string]any{
				"reason": string(apperrors.CodeOf(err)),
			})
			return nil, err
		}

		if err := s.fingerprints.AddFingerprint(ctx, session.Fingerprint); err != nil {
			s.LogError(ctx, err, "Failed to register bundle fingerprint", slog.String("session_id", session.ID))
		}
		session.Status = domain.ImportCommitted
		s.sessions.Add(session.ID, session)

		s.appendAudit(ctx, session, domain.AuditCSVImportCommitted, map[string]any{
			"committedTransactions": len(session.Bundle.Transactions),
			"committedPostings":     len(session.Bundle.Postings),
		})
		return &dto.CommitResult{SessionID: session.ID, Status: session.Status}, nil
	})
}

// applyBundle writes every row of bundle as POSTED ledger data. The caller
// rolls back on error.
func (s *csvImportService) applyBundle(ctx context.Context, householdID string, bundle csvkit.Bundle) error {
	stored, err := s.postingRepo.ListPostings(ctx)
	if err != nil {
		return err
	}
	postingTx := make(map[string]string, len(stored)+len(bundle.Postings))
	for _, p := range stored {
		postingTx[p.ID] = p.TransactionID
	}

	txRows := make(map[string]struct{}, len(bundle.Transactions))
	for _, row := range bundle.Transactions {
		txRows[row.ID] = struct{}{}
	}
	for _, p := range bundle.Postings {
		if _, ok := txRows[p.TransactionID]; !ok {
			return apperrors.Newf(apperrors.CodeCSVImportMissingTransaction, "posting %s references unknown transaction %s", p.ID, p.TransactionID).
				WithDetail("posting_id", p.ID)
		}
		if _, exists := postingTx[p.ID]; exists {
			return apperrors.Newf(apperrors.CodeCSVImportDuplicatePostingID, "posting %s already exists", p.ID).
				WithDetail("posting_id", p.ID)
		}
		postingTx[p.ID] = p.TransactionID
	}
	rowsByTx := make(map[string][]csvkit.PostingRow)
	for _, p := range bundle.Postings {
		rowsByTx[p.TransactionID] = append(rowsByTx[p.TransactionID], p)
	}

	seenTx := make(map[string]struct{}, len(bundle.Transactions))
	for _, row := range bundle.Transactions {
		if _, dup := seenTx[row.ID]; dup {
			return apperrors.Newf(apperrors.CodeCSVImportDuplicateTxID, "transaction %s appears more than once", row.ID).
				WithDetail("transaction_id", row.ID)
		}
		seenTx[row.ID] = struct{}{}

		exists, err := s.txRepo.TransactionExists(ctx, row.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Newf(apperrors.CodeCSVImportDuplicateTxID, "transaction %s already exists", row.ID).
				WithDetail("transaction_id", row.ID)
		}
	}

	accountCodes := make(map[string]string, len(bundle.Accounts))
	for _, a := range bundle.Accounts {
		accountCodes[a.ID] = a.Code
	}

	chainOf := make(map[string]string, len(bundle.Transactions))
	var all []domain.Posting
	for _, row := range bundle.Transactions {
		occurredAt, ok := csvkit.ParseDatePrefix(row.OccurredAt)
		if !ok {
			return apperrors.Newf(apperrors.CodeCSVImportInvalidDate, "transaction %s has invalid occurred_at", row.ID).
				WithDetail("transaction_id", row.ID)
		}

		postings := make([]domain.Posting, 0, len(rowsByTx[row.ID]))
		for _, pr := range rowsByTx[row.ID] {
			amount, okAmount := csvkit.ParseAmountMinor(pr.AmountMinor)
			direction := domain.Direction(pr.Direction)
			if !okAmount {
				return apperrors.ErrCSVImportUnbalanced.
					WithDetail("transaction_id", row.ID).
					WithDetail("cause", string(apperrors.CodeInvalidAmount))
			}
			if !direction.Valid() {
				return apperrors.ErrCSVImportUnbalanced.
					WithDetail("transaction_id", row.ID).
					WithDetail("cause", "INVALID_DIRECTION").
					WithDetail("direction", pr.Direction)
			}
			entryType := domain.EntryType(pr.EntryType)
			if !entryType.Valid() {
				entryType = domain.EntryOriginal
			}
			accountCode, ok := accountCodes[pr.AccountID]
			if !ok {
				accountCode = pr.AccountID
			}
			postings = append(postings, domain.Posting{
				ID:              pr.ID,
				TransactionID:   row.ID,
				EntryType:       entryType,
				AccountCode:     accountCode,
				Direction:       direction,
				AmountMinor:     amount,
				Currency:        pr.Currency,
				OccurredAt:      occurredAt,
				Memo:            row.Memo,
				LinkedPostingID: pr.LinkedPostingID,
			})
		}

		if _, err := accounting.ValidateBalanced(domain.PostingInputs(postings)); err != nil {
			return apperrors.ErrCSVImportUnbalanced.
				WithDetail("transaction_id", row.ID).
				WithDetail("cause", string(apperrors.CodeOf(err)))
		}

		sourceID := sourceTransactionOf(postings, postingTx)
		chainID, err := s.resolveChain(ctx, row.ID, sourceID, chainOf)
		if err != nil {
			return err
		}
		chainOf[row.ID] = chainID
		for i := range postings {
			postings[i].ChainID = chainID
		}

		kind := domain.EntryOriginal
		if len(postings) > 0 {
			kind = postings[0].EntryType
		}
		tx := domain.Transaction{
			ID:                  row.ID,
			HouseholdID:         householdID,
			ChainID:             chainID,
			Kind:                kind,
			Status:              domain.StatusPosted,
			OccurredAt:          occurredAt,
			SourceTransactionID: sourceID,
			Memo:                row.Memo,
			Source:              domain.SourceCSVImport,
			LockState:           domain.LockUnlocked,
		}
		if err := s.txRepo.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		all = append(all, postings...)
	}

	return s.postingRepo.InsertPostings(ctx, all)
}

// sourceTransactionOf follows the first linked posting back to its transaction.
func sourceTransactionOf(postings []domain.Posting, postingTx map[string]string) string {
	for _, p := range postings {
		if p.LinkedPostingID != "" {
			return postingTx[p.LinkedPostingID]
		}
	}
	return ""
}

// resolveChain places an imported transaction on its source's chain, or
// starts a new chain at id.
func (s *csvImportService) resolveChain(ctx context.Context, id, sourceID string, chainOf map[string]string) (string, error) {
	if sourceID == "" {
		return id, nil
	}
	if chainID, ok := chainOf[sourceID]; ok {
		return chainID, nil
	}
	source, err := s.txRepo.FindTransactionByID(ctx, sourceID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return sourceID, nil
		}
		return "", err
	}
	return source.ChainID, nil
}

func (s *csvImportService) ExportCanonical(ctx context.Context, householdID string, opts csvkit.SerializeOptions) ([]csvkit.File, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) ([]csvkit.File, error) {
		posted, err := s.postedTransactions(ctx, householdID)
		if err != nil {
			return nil, err
		}

		bundle := csvkit.Bundle{
			Manifest: csvkit.Manifest{
				Version:      canonicalBundleVersion,
				BaseCurrency: s.cfg.BaseCurrency,
				LocaleHint:   s.cfg.LocaleHint,
			},
			Accounts:     []csvkit.AccountRow{},
			Transactions: make([]csvkit.TransactionRow, 0, len(posted)),
			Postings:     []csvkit.PostingRow{},
		}

		seenAccounts := make(map[string]struct{})
		for _, t := range posted {
			bundle.Transactions = append(bundle.Transactions, csvkit.TransactionRow{
				ID:          t.ID,
				HouseholdID: householdID,
				OccurredAt:  t.OccurredAt.String(),
				PostedAt:    t.OccurredAt.String(),
				Status:      string(t.Status),
				Memo:        t.Memo,
			})

			postings, err := s.postingRepo.ListPostingsByTransactionID(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			for _, p := range postings {
				accountID := accountIDOf(p.AccountCode)
				if _, seen := seenAccounts[p.AccountCode]; !seen {
					seenAccounts[p.AccountCode] = struct{}{}
					bundle.Accounts = append(bundle.Accounts, csvkit.AccountRow{
						ID:          accountID,
						HouseholdID: householdID,
						Code:        p.AccountCode,
						Name:        p.AccountCode,
						Type:        accountTypeOf(p.AccountCode),
					})
				}
				bundle.Postings = append(bundle.Postings, csvkit.PostingRow{
					ID:              p.ID,
					TransactionID:   p.TransactionID,
					AccountID:       accountID,
					Direction:       string(p.Direction),
					AmountMinor:     strconv.FormatInt(p.AmountMinor, 10),
					Currency:        p.Currency,
					EntryType:       string(p.EntryType),
					LinkedPostingID: p.LinkedPostingID,
				})
			}
		}

		events, err := s.auditRepo.ListAuditEventsByHousehold(ctx, householdID)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			bundle.AuditEvents = append(bundle.AuditEvents, csvkit.AuditEventRow{
				ID:            e.EventID,
				TransactionID: e.SessionID,
				EventType:     string(e.EventType),
				OccurredAt:    e.OccurredAt.UTC().Format(time.RFC3339),
			})
		}

		return csvkit.SerializeCanonical(bundle, opts)
	})
}

func (s *csvImportService) ExportFlat(ctx context.Context, householdID string, excelBOM bool) (string, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) (string, error) {
		posted, err := s.postedTransactions(ctx, householdID)
		if err != nil {
			return "", err
		}
		targets := chainTargetsOf(posted)

		rows := make([]csvkit.FlatRow, 0, len(posted))
		for _, t := range posted {
			if t.Kind == domain.EntryReversal {
				continue
			}
			postings, err := s.postingRepo.ListPostingsByTransactionID(ctx, t.ID)
			if err != nil {
				return "", err
			}
			var amount int64
			category := ""
			for _, p := range postings {
				if p.Direction != domain.Debit {
					continue
				}
				amount += p.AmountMinor
				if category == "" {
					if c, ok := strings.CutPrefix(p.AccountCode, expensePrefix); ok {
						category = c
					}
				}
			}
			rows = append(rows, csvkit.FlatRow{
				OccurredAt: t.OccurredAt.String(),
				PostedAt:   t.OccurredAt.String(),
				Amount:     strconv.FormatInt(amount, 10),
				Memo:       t.Memo,
				Category:   category,
				Voided:     strconv.FormatBool(targets.voided(t.ID)),
				Superseded: strconv.FormatBool(targets.superseded(t.ID)),
			})
		}
		return csvkit.SerializeFlat(rows, csvkit.SerializeOptions{ExcelBOM: excelBOM}), nil
	})
}

func (s *csvImportService) ListAuditEvents(ctx context.Context, householdID string) ([]domain.AuditEvent, error) {
	return withRead(ctx, s.serializer, func(ctx context.Context) ([]domain.AuditEvent, error) {
		events, err := s.auditRepo.ListAuditEventsByHousehold(ctx, householdID)
		if err != nil {
			return nil, err
		}
		if events == nil {
			events = []domain.AuditEvent{}
		}
		return events, nil
	})
}

func (s *csvImportService) postedTransactions(ctx context.Context, householdID string) ([]domain.Transaction, error) {
	rows, err := s.txRepo.ListTransactionsByHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	posted := rows[:0]
	for _, t := range rows {
		if t.Status == domain.StatusPosted {
			posted = append(posted, t)
		}
	}
	return posted, nil
}

func (s *csvImportService) appendAudit(ctx context.Context, session *importSession, eventType domain.AuditEventType, payload map[string]any) {
	event := domain.AuditEvent{
		EventID:     s.newID(),
		SessionID:   session.ID,
		HouseholdID: session.HouseholdID,
		EventType:   eventType,
		OccurredAt:  s.now().UTC(),
		Payload:     payload,
	}
	if err := s.auditRepo.AppendAuditEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to append audit event", slog.String("session_id", session.ID))
	}
	s.LogAudit(ctx, csvAuditScope, string(eventType),
		slog.String("event_id", event.EventID),
		slog.String("session_id", session.ID),
		slog.String("household_id", session.HouseholdID),
		slog.Any("payload", payload))
}

func errorCodes(errs []csvkit.ValidationError) []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.ErrorCode
	}
	return codes
}

func accountIDOf(code string) string {
	return "acc:" + code
}

func accountTypeOf(code string) string {
	prefix, _, _ := strings.Cut(code, ":")
	if prefix == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(prefix)
}
