// Package utils provides common utility functions for Fundamenta.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatBRL formats a number as Brazilian Real currency (R$ 1.234.567,89).
// Brazil uses "." as the thousands separator and "," as the decimal mark.
func FormatBRL(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	intPart := int64(amount)
	cents := int64(math.Round((amount - float64(intPart)) * 100))
	if cents == 100 { // rounding carried over
		intPart++
		cents = 0
	}

	formatted := fmt.Sprintf("%s,%02d", groupThousands(intPart), cents)
	if negative {
		return "-R$ " + formatted
	}
	return "R$ " + formatted
}

// FormatBRLCompact formats a large amount in compact notation.
// e.g., 1234567890 → "R$ 1,23 B", 2500000000000 → "R$ 2,50 T".
func FormatBRLCompact(amount float64) string {
	prefix := "R$ "
	if amount < 0 {
		prefix = "-R$ "
		amount = -amount
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%s T", prefix, decimalComma(amount/1e12))
	case amount >= 1e9:
		return fmt.Sprintf("%s%s B", prefix, decimalComma(amount/1e9))
	case amount >= 1e6:
		return fmt.Sprintf("%s%s M", prefix, decimalComma(amount/1e6))
	case amount >= 1e3:
		return fmt.Sprintf("%s%s K", prefix, decimalComma(amount/1e3))
	default:
		return prefix + decimalComma(amount)
	}
}

// FormatPercent formats a decimal rate as a percentage ("0.0475" → "4,75%").
func FormatPercent(rate float64) string {
	return decimalComma(rate*100) + "%"
}

// FormatNumber formats a plain number with two decimals and Brazilian
// separators, or "N/A" for NaN.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	neg := v < 0
	v = math.Abs(v)
	intPart := int64(v)
	cents := int64(math.Round((v - float64(intPart)) * 100))
	if cents == 100 {
		intPart++
		cents = 0
	}
	s := fmt.Sprintf("%s,%02d", groupThousands(intPart), cents)
	if neg {
		return "-" + s
	}
	return s
}

// groupThousands renders an integer with "." thousands separators.
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	return s + "." + strings.Join(groups, ".")
}

// decimalComma renders a float with two decimals and a comma decimal mark.
func decimalComma(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}
