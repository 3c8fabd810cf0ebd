// Package quickadd extracts draft fields from pasted bank and card
// notification text.
package quickadd

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Direction is money flowing in or out of the household.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Field is one parsed value with its confidence in [0,1]. Value is nil when
// nothing usable was found.
type Field[T any] struct {
	Value      *T         `json:"value,omitempty"`
	Confidence float64    `json:"confidence"`
	Reason     ReasonCode `json:"reason"`
}

// Fields are the values a quick add draft needs.
type Fields struct {
	OccurredAt Field[civil.Date] `json:"occurred_at"`
	Amount     Field[int64]      `json:"amount"`
	Memo       Field[string]     `json:"memo"`
	Direction  Field[Direction]  `json:"direction"`
}

// Result is the outcome of parsing one pasted text.
type Result struct {
	Fields            Fields       `json:"fields"`
	OverallConfidence float64      `json:"overall_confidence"`
	BlockingReasons   []ReasonCode `json:"blocking_reasons"`
}

// Blocked reports whether a draft cannot be created from r.
func (r Result) Blocked() bool {
	return len(r.BlockingReasons) > 0
}

var (
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d+)\s*원`),
		regexp.MustCompile(`(?i)KRW\s*(\d{1,3}(?:,\d{3})+|\d+)`),
		regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d+)\s*KRW`),
	}
	fullDatePattern  = regexp.MustCompile(`(\d{4})[./-](\d{1,2})[./-](\d{1,2})`)
	shortDatePattern = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})(?:\s+\d{1,2}:\d{2})?`)
	outPattern       = regexp.MustCompile(`(?i)(출금|결제|승인|사용|이체|debit|payment|spent)`)
	inPattern        = regexp.MustCompile(`(?i)(입금|환불|취소|refund|deposit|credited)`)
	memoNoisePattern = regexp.MustCompile(`(?i)(KRW|원|출금|입금|결제|승인|사용|refund|payment|deposit|approved)`)
	digitPattern     = regexp.MustCompile(`\d`)
	lineBreak        = regexp.MustCompile(`\r?\n`)
)

func ptr[T any](v T) *T { return &v }

func unique[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	var out []T
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func extractAmount(text string) Field[int64] {
	var amounts []int64
	for _, p := range amountPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
			if err == nil && v > 0 {
				amounts = append(amounts, v)
			}
		}
	}
	amounts = unique(amounts)

	switch {
	case len(amounts) == 1:
		return Field[int64]{Value: ptr(amounts[0]), Confidence: 0.95, Reason: ReasonOK}
	case len(amounts) > 1:
		return Field[int64]{Confidence: 0.2, Reason: ReasonMultipleAmounts}
	default:
		return Field[int64]{Confidence: 0.1, Reason: ReasonNoAmount}
	}
}

func datesFrom(matches [][]string, year func(m []string) int, month, day int) []civil.Date {
	var dates []civil.Date
	for _, m := range matches {
		mo, _ := strconv.Atoi(m[month])
		d, _ := strconv.Atoi(m[day])
		date := civil.Date{Year: year(m), Month: time.Month(mo), Day: d}
		if date.IsValid() {
			dates = append(dates, date)
		}
	}
	return unique(dates)
}

func extractDate(text string, now time.Time) Field[civil.Date] {
	full := datesFrom(fullDatePattern.FindAllStringSubmatch(text, -1), func(m []string) int {
		y, _ := strconv.Atoi(m[1])
		return y
	}, 2, 3)
	switch {
	case len(full) == 1:
		return Field[civil.Date]{Value: ptr(full[0]), Confidence: 0.95, Reason: ReasonOK}
	case len(full) > 1:
		return Field[civil.Date]{Confidence: 0.2, Reason: ReasonAmbiguousDatetime}
	}

	// Short dates carry no year; assume the current one.
	short := datesFrom(shortDatePattern.FindAllStringSubmatch(text, -1), func([]string) int {
		return now.UTC().Year()
	}, 1, 2)
	switch {
	case len(short) == 1:
		return Field[civil.Date]{Value: ptr(short[0]), Confidence: 0.7, Reason: ReasonHeuristicMatch}
	case len(short) > 1:
		return Field[civil.Date]{Confidence: 0.2, Reason: ReasonAmbiguousDatetime}
	}

	return Field[civil.Date]{Confidence: 0.1, Reason: ReasonNoDatetime}
}

func extractDirection(text string) Field[Direction] {
	out := outPattern.MatchString(text)
	in := inPattern.MatchString(text)

	if in && !out {
		return Field[Direction]{Value: ptr(DirectionIn), Confidence: 0.85, Reason: ReasonOK}
	}
	if out {
		return Field[Direction]{Value: ptr(DirectionOut), Confidence: 0.85, Reason: ReasonOK}
	}
	return Field[Direction]{Value: ptr(DirectionOut), Confidence: 0.6, Reason: ReasonHeuristicMatch}
}

func extractMemo(text string) Field[string] {
	var lines []string
	for _, l := range lineBreak.Split(text, -1) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	for _, l := range lines {
		if !digitPattern.MatchString(l) && !memoNoisePattern.MatchString(l) {
			return Field[string]{Value: ptr(l), Confidence: 0.75, Reason: ReasonHeuristicMatch}
		}
	}

	memo := ""
	if len(lines) > 0 {
		memo = lines[0]
	} else if r := []rune(text); len(r) > 32 {
		memo = string(r[:32])
	} else {
		memo = text
	}
	return Field[string]{Value: ptr(memo), Confidence: 0.5, Reason: ReasonHeuristicMatch}
}

// Parse extracts draft fields from text. now supplies the year for dates
// written without one.
func Parse(text string, now time.Time) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{
			Fields: Fields{
				OccurredAt: Field[civil.Date]{Confidence: 0.1, Reason: ReasonUnsupportedFormat},
				Amount:     Field[int64]{Confidence: 0.1, Reason: ReasonNoAmount},
				Memo:       Field[string]{Confidence: 0.1, Reason: ReasonUnsupportedFormat},
				Direction:  Field[Direction]{Confidence: 0.1, Reason: ReasonUnsupportedFormat},
			},
			OverallConfidence: 0.1,
			BlockingReasons:   []ReasonCode{ReasonUnsupportedFormat},
		}
	}

	fields := Fields{
		OccurredAt: extractDate(trimmed, now),
		Amount:     extractAmount(trimmed),
		Memo:       extractMemo(trimmed),
		Direction:  extractDirection(trimmed),
	}

	var blocking []ReasonCode
	if fields.Amount.Value == nil {
		blocking = append(blocking, fields.Amount.Reason)
	}
	if fields.OccurredAt.Value == nil {
		blocking = append(blocking, fields.OccurredAt.Reason)
	}

	return Result{
		Fields:            fields,
		OverallConfidence: overallConfidence(fields),
		BlockingReasons:   unique(blocking),
	}
}

func overallConfidence(f Fields) float64 {
	mean := (f.OccurredAt.Confidence + f.Amount.Confidence + f.Memo.Confidence + f.Direction.Confidence) / 4
	return math.Round(mean*100) / 100
}
