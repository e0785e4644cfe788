// Package formulas implements the deterministic research calculators.
//
// Every function is pure: identical inputs produce identical results, and
// results follow one presentation shape (a summary with the headline number
// in **bold**, ordered detail rows with exactly one highlighted row, and
// plain-sentence recommendations) so a single renderer can display any of them.
package formulas

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ErrInvalidInput is returned when an input would make a formula undefined,
// such as a zero sample size in a denominator.
var ErrInvalidInput = errors.New("invalid input")

func invalid(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, fmt.Sprintf(format, args...))
}

// ZScore returns the two-sided z value for a confidence level in percent.
// Anything other than 90 or 99 is treated as 95.
func ZScore(confidenceLevel float64) float64 {
	switch confidenceLevel {
	case 99:
		return 2.576
	case 90:
		return 1.645
	default:
		return 1.96
	}
}

// effectiveConfidence returns the level that ZScore actually used.
func effectiveConfidence(confidenceLevel float64) float64 {
	if confidenceLevel == 90 || confidenceLevel == 99 {
		return confidenceLevel
	}
	return 95
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func formatInt(n float64) string {
	return humanize.Comma(int64(math.Round(n)))
}

// formatPct always shows one decimal, so 5 renders as "5.0%".
func formatPct(p float64) string {
	whole, frac, _ := strings.Cut(strconv.FormatFloat(p, 'f', 1, 64), ".")
	n, _ := strconv.ParseInt(whole, 10, 64)
	sign := ""
	if n == 0 && strings.HasPrefix(whole, "-") {
		sign = "-"
	}
	return sign + humanize.Comma(n) + "." + frac + "%"
}

func bold(s string) string {
	return "**" + s + "**"
}
