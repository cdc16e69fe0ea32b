// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCost formats a USD amount. Amounts of 1,000 and up are rounded to whole dollars.
// e.g., 54100 -> "$54,100", 12.5 -> "$12.50", -300 -> "-$300"
func FormatCost(cost float64) string {
	if cost < 0 {
		return "-" + FormatCost(-cost)
	}
	if cost >= 100 {
		return "$" + FormatNumber(int64(math.Round(cost)))
	}
	return fmt.Sprintf("$%.2f", cost)
}

// FormatSignedCost formats a gap with an explicit sign.
// e.g., 4100 -> "+$4,100", -250 -> "-$250", 0 -> "$0.00"
func FormatSignedCost(v float64) string {
	if v > 0 {
		return "+" + FormatCost(v)
	}
	return FormatCost(v)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatLever formats a lever already expressed in percent.
// e.g., 50 -> "50%", 12.5 -> "12.5%"
func FormatLever(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// FormatIndex formats an affordability index. The capped maximum prints as "max".
func FormatIndex(v float64) string {
	if v >= 1e6 {
		return "max"
	}
	return fmt.Sprintf("%.1f", v)
}

// FormatDelta formats the change from previous to current with a sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatCost(delta)
	}
	return "-" + FormatCost(-delta)
}

// FormatYears formats a program duration.
// e.g., 1 -> "1 yr", 2.5 -> "2.5 yrs"
func FormatYears(y float64) string {
	s := strconv.FormatFloat(y, 'f', -1, 64)
	if y == 1 {
		return s + " yr"
	}
	return s + " yrs"
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "…"
}
