// Package templates holds the ledger template catalog used to turn a
// single amount into a balanced pair of postings.
package templates

import (
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"gopkg.in/yaml.v3"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

// Template maps one kind of everyday entry to its debit and credit accounts.
type Template struct {
	ID                string                   `yaml:"id" json:"id"`
	Category          string                   `yaml:"category" json:"category"`
	Name              map[domain.Locale]string `yaml:"name" json:"name"`
	DebitAccountCode  string                   `yaml:"debit_account_code" json:"debitAccountCode"`
	CreditAccountCode string                   `yaml:"credit_account_code" json:"creditAccountCode"`
	DefaultMemo       map[domain.Locale]string `yaml:"default_memo" json:"defaultMemo"`
}

type catalogFile struct {
	Templates []Template `yaml:"templates"`
}

// Catalog is an ordered, read-only set of templates.
type Catalog struct {
	templates []Template
	byID      map[string]Template
}

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:                "living_spend",
			Category:          "spending",
			Name:              map[domain.Locale]string{domain.LocaleKO: "생활비", domain.LocaleEN: "Living Spend"},
			DebitAccountCode:  "expense:living",
			CreditAccountCode: "asset:cash",
			DefaultMemo:       map[domain.Locale]string{domain.LocaleKO: "생활비 지출", domain.LocaleEN: "Living expense"},
		},
		{
			ID:                "rent_monthly",
			Category:          "housing",
			Name:              map[domain.Locale]string{domain.LocaleKO: "월세", domain.LocaleEN: "Rent"},
			DebitAccountCode:  "expense:rent",
			CreditAccountCode: "asset:cash",
			DefaultMemo:       map[domain.Locale]string{domain.LocaleKO: "월세 납부", domain.LocaleEN: "Monthly rent"},
		},
		{
			ID:                "salary",
			Category:          "income",
			Name:              map[domain.Locale]string{domain.LocaleKO: "월급", domain.LocaleEN: "Salary"},
			DebitAccountCode:  "asset:cash",
			CreditAccountCode: "income:salary",
			DefaultMemo:       map[domain.Locale]string{domain.LocaleKO: "월급 입금", domain.LocaleEN: "Salary income"},
		},
	}
}

// NewCatalog builds a catalog, rejecting templates without an id or
// accounts and duplicate ids.
func NewCatalog(templates []Template) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Template, len(templates))}
	for _, t := range templates {
		if t.ID == "" || t.DebitAccountCode == "" || t.CreditAccountCode == "" {
			return nil, apperrors.Newf(apperrors.CodeValidation, "template %q needs an id and both account codes", t.ID)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, apperrors.Newf(apperrors.CodeValidation, "duplicate template id %q", t.ID)
		}
		c.byID[t.ID] = t
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultTemplates())
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog reads a catalog from YAML of the form
//
//	templates:
//	  - id: living_spend
//	    debit_account_code: expense:living
//	    ...
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	return NewCatalog(file.Templates)
}

// LoadCatalog returns the catalog at path, or the built-in catalog when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog: %w", err)
	}
	return ParseCatalog(data)
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// List returns the templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// BuildInput is a single-amount entry to expand through a template.
type BuildInput struct {
	TemplateID  string
	AmountMinor int64
	OccurredAt  civil.Date
	Locale      domain.Locale
	Memo        string
	Currency    string
}

// BuildPostings expands in into a balanced debit/credit pair. The memo is
// in.Memo when non-blank, otherwise the template's default for the locale.
func (c *Catalog) BuildPostings(in BuildInput) ([]domain.PostingInput, error) {
	t, ok := c.Get(in.TemplateID)
	if !ok {
		return nil, apperrors.ErrTemplateNotFound.WithDetail("template_id", in.TemplateID)
	}

	memo := strings.TrimSpace(in.Memo)
	if memo == "" {
		memo = t.DefaultMemo[in.Locale]
	}

	return []domain.PostingInput{
		{AccountCode: t.DebitAccountCode, Direction: domain.Debit, AmountMinor: in.AmountMinor, Currency: in.Currency, OccurredAt: in.OccurredAt, Memo: memo},
		{AccountCode: t.CreditAccountCode, Direction: domain.Credit, AmountMinor: in.AmountMinor, Currency: in.Currency, OccurredAt: in.OccurredAt, Memo: memo},
	}, nil
}
