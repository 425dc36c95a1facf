package calculator

import (
	"math"
	"strconv"
	"strings"
)

// PercentToFraction converts a percentage typed by the user ("5") into the
// fraction string the calculation service expects ("0.05"). Input that is
// not a finite decimal number yields "NaN", which is forwarded unchanged.
func PercentToFraction(percent string) string {
	p, ok := parseDecimal(percent)
	if !ok {
		return FormatDecimal(math.NaN())
	}
	f := p / 100
	if f == 0 {
		// Drops the sign of negative zero.
		f = 0
	}
	return FormatDecimal(f)
}

// parseDecimal accepts plain decimal notation with an optional exponent.
// Digit separators, hex floats and the infinity and NaN spellings are
// rejected.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.IndexFunc(s, func(r rune) bool { return !strings.ContainsRune("0123456789.+-eE", r) }) >= 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatDecimal renders f as a plain decimal without exponent, using the
// fewest digits that round-trip.
func FormatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ExpectedInterestRate converts the reverse-mortgage interest rate entry.
func ExpectedInterestRate(percent string) string {
	return PercentToFraction(percent)
}

// DiscountRate converts the viager discount rate entry.
func DiscountRate(percent string) string {
	return PercentToFraction(percent)
}

// UpfrontPayment converts the viager upfront payment entry.
func UpfrontPayment(percent string) string {
	return PercentToFraction(percent)
}
