package pagination

import (
	"encoding/base64"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	date civil.Date
	id   string
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func rowKey(r row) (civil.Date, string) { return r.date, r.id }

func TestEncodeDecodeToken(t *testing.T) {
	date := civil.Date{Year: 2026, Month: 2, Day: 1}
	token := EncodeToken(date, "tx|1")
	assert.NotEmpty(t, token)

	gotDate, gotID, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, date, gotDate)
	assert.Equal(t, "tx|1", gotID)
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := map[string]string{
		"not base64":   "%%%",
		"no separator": b64("2026-02-01"),
		"bad date":     b64("yesterday|tx-1"),
		"empty id":     b64("2026-02-01|"),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeToken(token)
			assert.Error(t, err)
		})
	}
}

func TestPage(t *testing.T) {
	d := func(day int) civil.Date { return civil.Date{Year: 2026, Month: 2, Day: day} }
	items := []row{{d(5), "a"}, {d(4), "b"}, {d(4), "c"}, {d(1), "d"}, {d(1), "e"}}

	page, next, err := Page(items, 2, "", rowKey)
	require.NoError(t, err)
	assert.Equal(t, items[0:2], page)
	require.NotEmpty(t, next)

	page, next, err = Page(items, 2, next, rowKey)
	require.NoError(t, err)
	assert.Equal(t, items[2:4], page)
	require.NotEmpty(t, next)

	page, next, err = Page(items, 2, next, rowKey)
	require.NoError(t, err)
	assert.Equal(t, items[4:], page)
	assert.Empty(t, next)

	page, next, err = Page(items, 0, "", rowKey)
	require.NoError(t, err)
	assert.Equal(t, items, page)
	assert.Empty(t, next)

	_, _, err = Page(items, 2, EncodeToken(d(9), "zz"), rowKey)
	assert.Error(t, err)
}
