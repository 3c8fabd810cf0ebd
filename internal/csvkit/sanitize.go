package csvkit

import "strings"

const injectionGuard = "'"

func isFormulaPrefix(c byte) bool {
	switch c {
	case '=', '+', '-', '@':
		return true
	}
	return false
}

// SanitizeCell prefixes a value starting with = + - or @ with an apostrophe
// so spreadsheet applications do not evaluate it. Other values pass through.
func SanitizeCell(value string) string {
	if value != "" && isFormulaPrefix(value[0]) {
		return injectionGuard + value
	}
	return value
}

// RestoreCell undoes SanitizeCell: it drops the apostrophe only when it
// guards a formula prefix.
func RestoreCell(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, injectionGuard) && isFormulaPrefix(value[1]) {
		return value[1:]
	}
	return value
}
