package quickadd

import "github.com/SscSPs/twoline_ledger/internal/core/domain"

// ReasonCode explains how a field was parsed or why it could not be.
type ReasonCode string

const (
	ReasonOK                ReasonCode = "OK"
	ReasonHeuristicMatch    ReasonCode = "HEURISTIC_MATCH"
	ReasonNoAmount          ReasonCode = "PARSE_NO_AMOUNT"
	ReasonMultipleAmounts   ReasonCode = "PARSE_MULTIPLE_AMOUNTS"
	ReasonNoDatetime        ReasonCode = "PARSE_NO_DATETIME"
	ReasonAmbiguousDatetime ReasonCode = "PARSE_AMBIGUOUS_DATETIME"
	ReasonUnsupportedFormat ReasonCode = "PARSE_UNSUPPORTED_FORMAT"
)

var guides = map[domain.Locale]map[ReasonCode]string{
	domain.LocaleEN: {
		ReasonNoAmount:          "Include one amount value (e.g. KRW 12,900) and try again.",
		ReasonMultipleAmounts:   "Multiple amounts detected. Keep only the actual payment amount.",
		ReasonNoDatetime:        "Include a date (e.g. 2026-02-08) in the pasted text.",
		ReasonAmbiguousDatetime: "Multiple dates detected. Keep only one target transaction date.",
		ReasonUnsupportedFormat: "Unsupported format. Paste raw bank/card notification text.",
	},
	domain.LocaleKO: {
		ReasonNoAmount:          "금액 숫자(예: 12,900원)를 포함해 다시 붙여넣으세요.",
		ReasonMultipleAmounts:   "여러 금액이 감지되었습니다. 실제 결제 금액만 남겨주세요.",
		ReasonNoDatetime:        "날짜(예: 2026-02-08)를 포함한 메시지를 붙여넣으세요.",
		ReasonAmbiguousDatetime: "날짜가 여러 개입니다. 원하는 거래일 하나만 남겨주세요.",
		ReasonUnsupportedFormat: "지원되지 않는 포맷입니다. 은행/카드 알림 원문을 그대로 붙여넣어 주세요.",
	},
}

var fallbackGuide = map[domain.Locale]string{
	domain.LocaleEN: "Review fields manually before saving.",
	domain.LocaleKO: "필드를 직접 확인 후 저장하세요.",
}

// Guide returns a short user hint for code. Unknown locales use Korean.
func Guide(code ReasonCode, locale domain.Locale) string {
	if !locale.Valid() {
		locale = domain.LocaleKO
	}
	if g, ok := guides[locale][code]; ok {
		return g
	}
	return fallbackGuide[locale]
}
