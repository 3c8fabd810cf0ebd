package csvkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"=1+1", "'=1+1"},
		{"+82-10", "'+82-10"},
		{"-5000", "'-5000"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"plain", "plain"},
		{"", ""},
		{"a=b", "a=b"},
		{"'quoted", "'quoted"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeCell(tt.in))
			assert.Equal(t, tt.in, RestoreCell(SanitizeCell(tt.in)))
		})
	}
}

func TestSerializeCSV_Quoting(t *testing.T) {
	out := SerializeCSV([]string{"a", "b", "c"}, [][]string{{"x,y", `say "hi"`, "two\nlines"}})
	assert.Equal(t, "a,b,c\n\"x,y\",\"say \"\"hi\"\"\",\"two\nlines\"", out)
}

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(WithBOM("a,b\n\"x,y\",\"say \"\"hi\"\"\"\n\n", true))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"x,y", `say "hi"`}}, rows)

	rows, err = ParseCSV("  \n ")
	require.NoError(t, err)
	assert.Nil(t, rows)

	rows, err = ParseCSV("a,b\n  \nx,y \t\n")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"x", "y \t"}}, rows)
}

func TestSerializeCSV_CarriageReturns(t *testing.T) {
	cells := []string{"a\r\nb", "c\rd", "e\r\r\n"}
	rows, err := ParseCSV(SerializeCSV([]string{"x", "y", "z"}, [][]string{cells}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, cells, rows[1])
}

func TestBOM(t *testing.T) {
	assert.Equal(t, "x", WithBOM("x", false))
	assert.Equal(t, "\ufeffx", WithBOM("x", true))
	assert.Equal(t, "x", StripBOM("\ufeffx"))
	assert.Equal(t, "x", StripBOM("x"))
}
