package quickadd

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
)

var now = time.Date(2027, 3, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestParse_Golden(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantAmount    int64
		wantDate      civil.Date
		wantDirection Direction
		wantDateWhy   ReasonCode
	}{
		{
			name:          "bank transfer",
			text:          "2026-02-08 출금 15,000원 우리은행",
			wantAmount:    15000,
			wantDate:      date(2026, 2, 8),
			wantDirection: DirectionOut,
			wantDateWhy:   ReasonOK,
		},
		{
			name:          "card approval",
			text:          "카드승인 2026.02.07 스타벅스 12,900원",
			wantAmount:    12900,
			wantDate:      date(2026, 2, 7),
			wantDirection: DirectionOut,
			wantDateWhy:   ReasonOK,
		},
		{
			name:          "refund is incoming",
			text:          "2026-02-05 환불 27,000원 입금",
			wantAmount:    27000,
			wantDate:      date(2026, 2, 5),
			wantDirection: DirectionIn,
			wantDateWhy:   ReasonOK,
		},
		{
			name:          "english payment",
			text:          "2026/02/06 payment approved KRW 31000",
			wantAmount:    31000,
			wantDate:      date(2026, 2, 6),
			wantDirection: DirectionOut,
			wantDateWhy:   ReasonOK,
		},
		{
			name:          "short date takes the current year",
			text:          "02/04 10:11 결제 8900원",
			wantAmount:    8900,
			wantDate:      date(2027, 2, 4),
			wantDirection: DirectionOut,
			wantDateWhy:   ReasonHeuristicMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.text, now)
			require.NotNil(t, r.Fields.Amount.Value)
			require.NotNil(t, r.Fields.OccurredAt.Value)
			require.NotNil(t, r.Fields.Direction.Value)

			assert.Equal(t, tt.wantAmount, *r.Fields.Amount.Value)
			assert.Equal(t, tt.wantDate, *r.Fields.OccurredAt.Value)
			assert.Equal(t, tt.wantDateWhy, r.Fields.OccurredAt.Reason)
			assert.Equal(t, tt.wantDirection, *r.Fields.Direction.Value)
			assert.False(t, r.Blocked())
		})
	}
}

func TestParse_Blocking(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantBlocking []ReasonCode
	}{
		{name: "no amount", text: "2026-02-08 스타벅스 결제", wantBlocking: []ReasonCode{ReasonNoAmount}},
		{name: "multiple amounts", text: "2026-02-08 결제 12,000원 취소 8,000원", wantBlocking: []ReasonCode{ReasonMultipleAmounts}},
		{name: "no date", text: "카드승인 9,900원", wantBlocking: []ReasonCode{ReasonNoDatetime}},
		{name: "ambiguous date", text: "2026-02-01 또는 2026-02-02 결제 5,000원", wantBlocking: []ReasonCode{ReasonAmbiguousDatetime}},
		{name: "empty", text: "   ", wantBlocking: []ReasonCode{ReasonUnsupportedFormat}},
		{name: "nothing usable", text: "hello", wantBlocking: []ReasonCode{ReasonNoAmount, ReasonNoDatetime}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.text, now)
			assert.True(t, r.Blocked())
			assert.Equal(t, tt.wantBlocking, r.BlockingReasons)
		})
	}
}

func TestParse_Memo(t *testing.T) {
	r := Parse("신한카드(1234)\n스타벅스 강남점\n2026-02-08 12,900원 승인", now)
	require.NotNil(t, r.Fields.Memo.Value)
	assert.Equal(t, "스타벅스 강남점", *r.Fields.Memo.Value)
	assert.Equal(t, 0.75, r.Fields.Memo.Confidence)

	r = Parse("2026-02-08 12,900원 승인", now)
	require.NotNil(t, r.Fields.Memo.Value)
	assert.Equal(t, "2026-02-08 12,900원 승인", *r.Fields.Memo.Value)
	assert.Equal(t, 0.5, r.Fields.Memo.Confidence)
}

func TestParse_OverallConfidence(t *testing.T) {
	// date 0.95, amount 0.95, memo 0.5, direction 0.85
	r := Parse("2026-02-08 출금 15,000원", now)
	assert.Equal(t, 0.81, r.OverallConfidence)

	assert.Equal(t, 0.1, Parse("", now).OverallConfidence)
}

func TestGuide(t *testing.T) {
	assert.Equal(t, "Include a date (e.g. 2026-02-08) in the pasted text.", Guide(ReasonNoDatetime, domain.LocaleEN))
	assert.Equal(t, "필드를 직접 확인 후 저장하세요.", Guide(ReasonOK, domain.LocaleKO))
	assert.Equal(t, Guide(ReasonNoAmount, domain.LocaleKO), Guide(ReasonNoAmount, "fr"))
}
