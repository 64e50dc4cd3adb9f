package utils

import "strings"

// yahooSuffix is the suffix Yahoo Finance uses for B3-listed symbols.
const yahooSuffix = ".SA"

// NormalizeTicker canonicalizes a B3 ticker: uppercase, trimmed, without
// the Yahoo ".SA" suffix. "itub4.sa" → "ITUB4".
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	return strings.TrimSuffix(t, yahooSuffix)
}

// YahooSymbol converts a B3 ticker to its Yahoo Finance symbol,
// appending ".SA" when missing. "ITUB4" → "ITUB4.SA".
func YahooSymbol(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.HasSuffix(t, yahooSuffix) {
		return t
	}
	return t + yahooSuffix
}
