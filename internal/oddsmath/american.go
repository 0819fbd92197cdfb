// Package oddsmath converts between American betting lines and implied
// probabilities expressed in percent.
package oddsmath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// LinePattern matches a well-formed signed American line, e.g. "+250", "-110"
var LinePattern = regexp.MustCompile(`^[+-]\d+$`)

// DefaultTolerancePct is the allowed absolute divergence, in probability
// percentage points, between a quoted implied probability and the one
// re-derived from the American line. Integer odds rounding alone can move
// short prices by several tenths of a point.
const DefaultTolerancePct = 0.75

// AmericanToImpliedPct converts an American line to implied probability percent.
// +150 -> 40.0, -150 -> 60.0
func AmericanToImpliedPct(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}

	if american > 0 {
		return 100.0 * 100.0 / (float64(american) + 100.0), nil
	}

	a := float64(-american)
	return 100.0 * a / (a + 100.0), nil
}

// PctToAmerican converts implied probability percent to the nearest American line.
// 40.0 -> +150, 60.0 -> -150
func PctToAmerican(pct float64) (int, error) {
	if pct <= 0 || pct >= 100 {
		return 0, fmt.Errorf("invalid probability percent: must be in (0,100), got %v", pct)
	}

	p := pct / 100.0
	if p <= 0.5 {
		// Underdog: positive line
		return int(math.Round(100.0 * (1.0 - p) / p)), nil
	}

	// Favorite: negative line
	return -int(math.Round(100.0 * p / (1.0 - p))), nil
}

// FormatAmerican renders an American line with its explicit sign
func FormatAmerican(american int) string {
	if american > 0 {
		return fmt.Sprintf("+%d", american)
	}
	return strconv.Itoa(american)
}

// ParseAmerican parses a signed American line string
func ParseAmerican(s string) (int, error) {
	if !LinePattern.MatchString(s) {
		return 0, fmt.Errorf("malformed American line %q", s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("malformed American line %q: %w", s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("malformed American line %q: zero line", s)
	}
	return v, nil
}

// RoundPct rounds a probability percent to two decimal places. Decimal
// arithmetic avoids float drift in round-tripped values.
func RoundPct(pct float64) float64 {
	f, _ := decimal.NewFromFloat(pct).Round(2).Float64()
	return f
}

// Consistent reports whether a quoted probability percent agrees with the
// probability re-derived from the line, within tolerance percentage points.
func Consistent(american int, quotedPct, tolerancePct float64) bool {
	derived, err := AmericanToImpliedPct(american)
	if err != nil {
		return false
	}
	return math.Abs(derived-quotedPct) <= tolerancePct
}
