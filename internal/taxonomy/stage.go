package taxonomy

import (
	"regexp"
	"strings"
)

// InferStageFromTicket maps a single USD ticket amount to an investment
// stage. Amounts below 100k and nil yield "".
//
//	[100k, 500k]  Pre-seed
//	(500k, 2M]    Seed
//	(2M, 10M]     Series A
//	(10M, 30M]    Series B
//	> 30M         Series C
func InferStageFromTicket(amount *float64) string {
	if amount == nil {
		return ""
	}
	a := *amount
	switch {
	case a >= 100_000 && a <= 500_000:
		return "Pre-seed"
	case a > 500_000 && a <= 2_000_000:
		return "Seed"
	case a > 2_000_000 && a <= 10_000_000:
		return "Series A"
	case a > 10_000_000 && a <= 30_000_000:
		return "Series B"
	case a > 30_000_000:
		return "Series C"
	}
	return ""
}

var currencyRe = regexp.MustCompile(`(?i)(US\$|\$|€|£|\b(?:USD|EUR|GBP|AED|SAR|EGP|MAD|TND|LBP|QAR|KWD|OMR|JOD)\b)`)

var currencySymbols = map[string]string{
	"$":   "USD",
	"us$": "USD",
	"€":   "EUR",
	"£":   "GBP",
}

// CurrencyInText returns the ISO code of the first currency mentioned in
// text, or "".
func CurrencyInText(text string) string {
	m := currencyRe.FindString(text)
	if m == "" {
		return ""
	}
	if code, ok := currencySymbols[strings.ToLower(m)]; ok {
		return code
	}
	return strings.ToUpper(m)
}
