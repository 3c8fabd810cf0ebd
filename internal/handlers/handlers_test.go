package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	"github.com/SscSPs/twoline_ledger/internal/core/services"
	"github.com/SscSPs/twoline_ledger/internal/handlers"
	"github.com/SscSPs/twoline_ledger/internal/platform/config"
	"github.com/SscSPs/twoline_ledger/internal/repositories/memory"
	"github.com/SscSPs/twoline_ledger/internal/utils"
)

const jwtSecret = "test-secret-key-that-is-long-enough"

type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type HandlersTestSuite struct {
	suite.Suite
	router *gin.Engine
	owner  string
	member string
	other  string
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) token(subject, householdID string, role domain.Role) string {
	token, err := utils.GenerateJWT(subject, householdID, role, jwtSecret, time.Hour, "twoline")
	s.Require().NoError(err)
	return token
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret:           jwtSecret,
		JWTIssuer:           "twoline",
		BaseCurrency:        "KRW",
		DefaultLocale:       "ko",
		ImportSessionTTL:    time.Minute,
		ImportSessionMax:    8,
		CSVPreviewRateLimit: "1000-M",
	}
	container := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(), nil)

	s.router = gin.New()
	s.Require().NoError(handlers.RegisterRoutes(s.router, cfg, container))

	s.owner = s.token("u-owner", "hh-1", domain.RoleOwner)
	s.member = s.token("u-member", "hh-1", domain.RoleMember)
	s.other = s.token("u-other", "hh-2", domain.RoleOwner)
}

func (s *HandlersTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *HandlersTestSuite) errorOf(w *httptest.ResponseRecorder) apiError {
	var body apiError
	s.decode(w, &body)
	return body
}

func draftBody(debit, credit int64) gin.H {
	return gin.H{
		"occurredAt": "2026-02-01",
		"memo":       "groceries",
		"postings": []gin.H{
			{"accountCode": "expense:living", "direction": "DEBIT", "amountMinor": debit, "currency": "krw"},
			{"accountCode": "asset:cash", "direction": "CREDIT", "amountMinor": credit, "currency": "KRW"},
		},
	}
}

// postedID creates and posts a balanced draft for hh-1.
func (s *HandlersTestSuite) postedID(amount int64) string {
	w := s.do(http.MethodPost, "/api/v1/ledger/drafts", s.member, draftBody(amount, amount))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var draft domain.PostedTransaction
	s.decode(w, &draft)

	w = s.do(http.MethodPost, "/api/v1/ledger/drafts/"+draft.Transaction.ID+"/post", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return draft.Transaction.ID
}

func (s *HandlersTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *HandlersTestSuite) TestRequiresToken() {
	w := s.do(http.MethodGet, "/api/v1/ledger/transactions", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("UNAUTHORIZED", s.errorOf(w).Error.Code)
}

func (s *HandlersTestSuite) TestDraftAndPost() {
	w := s.do(http.MethodPost, "/api/v1/ledger/drafts", s.member, draftBody(12900, 12900))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var draft domain.PostedTransaction
	s.decode(w, &draft)
	s.Equal(domain.StatusDraft, draft.Transaction.Status)
	s.Equal("hh-1", draft.Transaction.HouseholdID)
	s.Equal(domain.SourceManual, draft.Transaction.Source)
	s.Require().Len(draft.Postings, 2)
	s.Equal("KRW", draft.Postings[0].Currency)

	w = s.do(http.MethodPost, "/api/v1/ledger/drafts/"+draft.Transaction.ID+"/post", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var posted domain.PostedTransaction
	s.decode(w, &posted)
	s.Equal(domain.StatusPosted, posted.Transaction.Status)

	w = s.do(http.MethodGet, "/api/v1/ledger/transactions/"+draft.Transaction.ID, s.member, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestPostUnbalancedDraft() {
	w := s.do(http.MethodPost, "/api/v1/ledger/drafts", s.member, draftBody(100000, 90000))
	s.Require().Equal(http.StatusCreated, w.Code)
	var draft domain.PostedTransaction
	s.decode(w, &draft)

	w = s.do(http.MethodPost, "/api/v1/ledger/drafts/"+draft.Transaction.ID+"/post", s.member, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	body := s.errorOf(w)
	s.Equal("UNBALANCED_POSTINGS", body.Error.Code)
	s.Equal(float64(100000), body.Error.Details["debit_total"])
	s.Equal(float64(90000), body.Error.Details["credit_total"])
}

func (s *HandlersTestSuite) TestInvalidDraftBody() {
	w := s.do(http.MethodPost, "/api/v1/ledger/drafts", s.member, gin.H{
		"occurredAt": "2026-02-01",
		"postings":   []gin.H{{"accountCode": "asset:cash", "direction": "SIDEWAYS", "amountMinor": 1, "currency": "KRW"}},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION", s.errorOf(w).Error.Code)
}

func (s *HandlersTestSuite) TestOtherHouseholdSeesNotFound() {
	id := s.postedID(5000)

	w := s.do(http.MethodGet, "/api/v1/ledger/transactions/"+id, s.other, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", s.errorOf(w).Error.Code)

	w = s.do(http.MethodPost, "/api/v1/ledger/transactions/"+id+"/void", s.other, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestVoidAndListing() {
	kept := s.postedID(1000)
	voided := s.postedID(2000)

	w := s.do(http.MethodDelete, "/api/v1/ledger/transactions/"+voided, s.member, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var reversal domain.PostedTransaction
	s.decode(w, &reversal)
	s.Equal(domain.EntryReversal, reversal.Transaction.Kind)

	w = s.do(http.MethodGet, "/api/v1/ledger/current", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var current []domain.Transaction
	s.decode(w, &current)
	s.Require().Len(current, 1)
	s.Equal(kept, current[0].ID)

	w = s.do(http.MethodGet, "/api/v1/ledger/transactions?include_voided=true&limit=2", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Transactions []domain.ListedTransaction `json:"transactions"`
		NextToken    string                     `json:"nextToken"`
	}
	s.decode(w, &page)
	s.Len(page.Transactions, 2)
	s.NotEmpty(page.NextToken)

	w = s.do(http.MethodGet, "/api/v1/ledger/transactions?include_voided=true&limit=2&next_token="+page.NextToken, s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var rest struct {
		Transactions []domain.ListedTransaction `json:"transactions"`
		NextToken    string                     `json:"nextToken"`
	}
	s.decode(w, &rest)
	s.Len(rest.Transactions, 1)
	s.Empty(rest.NextToken)

	w = s.do(http.MethodGet, "/api/v1/ledger/transactions?next_token=garbage", s.member, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestCorrect() {
	id := s.postedID(1000)

	w := s.do(http.MethodPost, "/api/v1/ledger/transactions/"+id+"/correct", s.member, gin.H{
		"postings": []gin.H{
			{"accountCode": "expense:living", "direction": "DEBIT", "amountMinor": 1500, "currency": "KRW"},
			{"accountCode": "asset:cash", "direction": "CREDIT", "amountMinor": 1500, "currency": "KRW"},
		},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var result domain.CorrectResult
	s.decode(w, &result)
	s.Equal(domain.EntryReversal, result.Reversal.Transaction.Kind)
	s.Equal(domain.EntryCorrection, result.Correction.Transaction.Kind)
	s.Equal(id, result.Correction.Transaction.ChainID)
}

func (s *HandlersTestSuite) TestLockActions() {
	id := s.postedID(1000)
	lockPath := "/api/v1/ledger/transactions/" + id + "/lock"

	w := s.do(http.MethodPost, lockPath, s.member, gin.H{"action": "close"})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("OWNER_REQUIRED", s.errorOf(w).Error.Code)

	w = s.do(http.MethodPost, lockPath, s.owner, gin.H{"action": "close"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var tx domain.Transaction
	s.decode(w, &tx)
	s.Equal(domain.LockClosed, tx.LockState)

	w = s.do(http.MethodPost, "/api/v1/ledger/transactions/"+id+"/void", s.member, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("CLOSED_LOCKED", s.errorOf(w).Error.Code)

	w = s.do(http.MethodPost, lockPath, s.owner, gin.H{"action": "reopen"})
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, lockPath, s.member, gin.H{"action": "freeze"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestCSVExportAndImport() {
	s.postedID(4200)

	w := s.do(http.MethodGet, "/api/v1/csv/export/canonical", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var export struct {
		Files []struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		} `json:"files"`
	}
	s.decode(w, &export)
	s.NotEmpty(export.Files)

	// A session opened by one household cannot be committed by another.
	w = s.do(http.MethodPost, "/api/v1/csv/import/preview", s.other, gin.H{"files": export.Files})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var preview struct {
		SessionID string `json:"sessionId"`
		Status    string `json:"status"`
	}
	s.decode(w, &preview)
	s.NotEmpty(preview.SessionID)

	w = s.do(http.MethodPost, "/api/v1/csv/import/commit", s.member, gin.H{"sessionId": preview.SessionID})
	s.NotEqual(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/csv/import/commit", s.member, gin.H{"sessionId": "missing"})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("CSV_IMPORT_SESSION_NOT_FOUND", s.errorOf(w).Error.Code)

	w = s.do(http.MethodGet, "/api/v1/csv/export/flat?bom=true", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/csv")
	s.True(bytes.HasPrefix(w.Body.Bytes(), []byte("\ufeff")))

	w = s.do(http.MethodGet, "/api/v1/csv/audit-events", s.other, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var events []domain.AuditEvent
	s.decode(w, &events)
	s.NotEmpty(events)
}

func (s *HandlersTestSuite) TestRecurringRoutes() {
	w := s.do(http.MethodPost, "/api/v1/recurring/rules", s.member, gin.H{
		"templateId":  "rent_monthly",
		"amountMinor": 500000,
		"dayOfMonth":  1,
		"startDate":   "2026-02-01",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var rule domain.RecurringRule
	s.decode(w, &rule)
	s.Equal(domain.LocaleKO, rule.Locale)

	w = s.do(http.MethodGet, "/api/v1/recurring/rules/"+rule.ID, s.other, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/v1/recurring/run", s.member, gin.H{"targetDate": "2026-02-01"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/recurring/run", s.owner, gin.H{"targetDate": "2026-02-01"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var generated []domain.RecurringInstance
	s.decode(w, &generated)
	s.Require().Len(generated, 1)

	w = s.do(http.MethodGet, "/api/v1/recurring/rules/"+rule.ID+"/instances", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var instances []domain.RecurringInstance
	s.decode(w, &instances)
	s.Equal(generated, instances)

	w = s.do(http.MethodPatch, "/api/v1/recurring/rules/"+rule.ID, s.member, gin.H{"active": false, "effectiveFrom": "2026-02-02"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &rule)
	s.False(rule.Active)
}

func (s *HandlersTestSuite) TestQuickAdd() {
	w := s.do(http.MethodPost, "/api/v1/quick-add/parse", s.member, gin.H{"text": "카드승인 2026.02.07 스타벅스 12,900원"})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/quick-add/drafts", s.member, gin.H{"text": "카드승인 9,900원"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("QUICK_ADD_BLOCKED", s.errorOf(w).Error.Code)

	w = s.do(http.MethodPost, "/api/v1/quick-add/drafts", s.member, gin.H{"text": "카드승인 2026.02.07 스타벅스 12,900원"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/templates", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var templates []map[string]any
	s.decode(w, &templates)
	s.Len(templates, 3)
}
