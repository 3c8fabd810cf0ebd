package csvkit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

type fingerprintPayload struct {
	Manifest       Manifest `json:"manifest"`
	AccountIDs     []string `json:"accountIds"`
	TransactionIDs []string `json:"transactionIds"`
	PostingIDs     []string `json:"postingIds"`
	AuditEventIDs  []string `json:"auditEventIds"`
}

func sortedIDs[T any](rows []T, id func(T) string) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = id(r)
	}
	sort.Strings(ids)
	return ids
}

// Fingerprint is a stable hash over the manifest and the sorted row ids of
// a bundle. Row order does not affect it.
func Fingerprint(b Bundle) string {
	payload := fingerprintPayload{
		Manifest:       b.Manifest,
		AccountIDs:     sortedIDs(b.Accounts, func(r AccountRow) string { return r.ID }),
		TransactionIDs: sortedIDs(b.Transactions, func(r TransactionRow) string { return r.ID }),
		PostingIDs:     sortedIDs(b.Postings, func(r PostingRow) string { return r.ID }),
		AuditEventIDs:  sortedIDs(b.AuditEvents, func(r AuditEventRow) string { return r.ID }),
	}
	// Only strings and string slices; marshalling cannot fail.
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
