package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// EncodeToken creates a base64 encoded cursor from a row's date and id.
func EncodeToken(occurredAt civil.Date, id string) string {
	tokenStr := fmt.Sprintf("%s|%s", occurredAt.String(), id)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a cursor created by EncodeToken.
func DecodeToken(token string) (civil.Date, string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return civil.Date{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return civil.Date{}, "", fmt.Errorf("invalid pagination token format (split)")
	}

	occurredAt, err := civil.ParseDate(parts[0])
	if err != nil {
		return civil.Date{}, "", fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}
	return occurredAt, parts[1], nil
}

// Page slices an already ordered list. The page starts after the row named
// by token (from the beginning when token is empty) and holds at most limit
// rows; limit <= 0 returns the rest. next is empty on the last page.
func Page[T any](items []T, limit int, token string, key func(T) (civil.Date, string)) (page []T, next string, err error) {
	start := 0
	if token != "" {
		date, id, err := DecodeToken(token)
		if err != nil {
			return nil, "", err
		}
		start = -1
		for i, item := range items {
			if d, itemID := key(item); d == date && itemID == id {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, "", fmt.Errorf("invalid pagination token: cursor row not found")
		}
	}

	end := len(items)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	page = items[start:end]
	if end < len(items) && len(page) > 0 {
		next = EncodeToken(key(page[len(page)-1]))
	}
	return page, next, nil
}
