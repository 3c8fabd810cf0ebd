package csvkit

import (
	"encoding/json"

	"github.com/SscSPs/twoline_ledger/internal/apperrors"
)

// SerializeOptions controls bundle and flat serialization.
type SerializeOptions struct {
	// ExcelBOM prefixes every CSV file with a UTF-8 byte order mark.
	ExcelBOM bool
}

func findFile(files []File, path string) (File, bool) {
	for _, f := range files {
		if f.Path == path {
			return f, true
		}
	}
	return File{}, false
}

// ParseCanonical reads a bundle from its files. manifest.json, accounts.csv,
// transactions.csv and postings.csv are required; audit_events.csv is
// optional. Accounts, transactions and postings are never nil; AuditEvents
// is nil when the bundle carries no events.
func ParseCanonical(files []File) (Bundle, error) {
	manifestFile, okManifest := findFile(files, ManifestFile)
	accountsFile, okAccounts := findFile(files, AccountsFile)
	transactionsFile, okTransactions := findFile(files, TransactionsFile)
	postingsFile, okPostings := findFile(files, PostingsFile)
	if !okManifest || !okAccounts || !okTransactions || !okPostings {
		return Bundle{}, apperrors.ErrCSVMissingRequired
	}

	var b Bundle
	if err := json.Unmarshal([]byte(StripBOM(manifestFile.Content)), &b.Manifest); err != nil {
		return Bundle{}, apperrors.Wrap(apperrors.CodeCSVInvalidManifest, err, "manifest.json is not valid JSON")
	}

	accounts, err := records(AccountsFile, accountsFile.Content, AccountHeaders)
	if err != nil {
		return Bundle{}, err
	}
	b.Accounts = make([]AccountRow, 0, len(accounts))
	for _, get := range accounts {
		b.Accounts = append(b.Accounts, accountFrom(get))
	}

	transactions, err := records(TransactionsFile, transactionsFile.Content, TransactionHeaders)
	if err != nil {
		return Bundle{}, err
	}
	b.Transactions = make([]TransactionRow, 0, len(transactions))
	for _, get := range transactions {
		b.Transactions = append(b.Transactions, transactionFrom(get))
	}

	postings, err := records(PostingsFile, postingsFile.Content, PostingHeaders)
	if err != nil {
		return Bundle{}, err
	}
	b.Postings = make([]PostingRow, 0, len(postings))
	for _, get := range postings {
		b.Postings = append(b.Postings, postingFrom(get))
	}

	if auditFile, ok := findFile(files, AuditEventsFile); ok {
		events, err := records(AuditEventsFile, auditFile.Content, AuditEventHeaders)
		if err != nil {
			return Bundle{}, err
		}
		for _, get := range events {
			b.AuditEvents = append(b.AuditEvents, auditEventFrom(get))
		}
	}

	return b, nil
}

// SerializeCanonical writes a bundle as files. audit_events.csv is omitted
// when the bundle has no audit events.
func SerializeCanonical(b Bundle, opts SerializeOptions) ([]File, error) {
	manifest, err := json.MarshalIndent(b.Manifest, "", "  ")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "encode manifest")
	}

	files := []File{
		{Path: ManifestFile, Content: string(manifest)},
		{Path: AccountsFile, Content: WithBOM(SerializeCSV(AccountHeaders, rowsOf(b.Accounts, AccountRow.cells)), opts.ExcelBOM)},
		{Path: TransactionsFile, Content: WithBOM(SerializeCSV(TransactionHeaders, rowsOf(b.Transactions, TransactionRow.cells)), opts.ExcelBOM)},
		{Path: PostingsFile, Content: WithBOM(SerializeCSV(PostingHeaders, rowsOf(b.Postings, PostingRow.cells)), opts.ExcelBOM)},
	}
	if len(b.AuditEvents) > 0 {
		files = append(files, File{
			Path:    AuditEventsFile,
			Content: WithBOM(SerializeCSV(AuditEventHeaders, rowsOf(b.AuditEvents, AuditEventRow.cells)), opts.ExcelBOM),
		})
	}
	return files, nil
}

func rowsOf[T any](rows []T, cells func(T) []string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = cells(r)
	}
	return out
}
