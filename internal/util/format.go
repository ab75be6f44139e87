package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatRating formats an aggregate rating as "4.5" or "—" when unrated.
func FormatRating(rating float64) string {
	if rating <= 0 {
		return "—"
	}
	return formatRatingNumber(rating)
}

// FormatRatingWithStar formats an aggregate rating as "4.5★" for tables.
func FormatRatingWithStar(rating float64) string {
	if rating <= 0 {
		return "—"
	}
	return formatRatingNumber(rating) + "★"
}

// FormatRatingStars renders a 0–5 rating as five stars, rounded to the
// nearest whole star: "★★★★☆".
func FormatRatingStars(rating float64) string {
	stars := int(math.Round(rating))
	if stars < 0 {
		stars = 0
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}

// FormatPriceLevel renders a 1–4 tier as "€".."€€€€", or "—" when unknown.
func FormatPriceLevel(level int) string {
	if level < 1 || level > 4 {
		return "—"
	}
	return strings.Repeat("€", level)
}

// Pluralize returns "1 review", "3 reviews".
func Pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// JoinOrDash joins values with ", " or returns "—" for none.
func JoinOrDash(values []string) string {
	if len(values) == 0 {
		return "—"
	}
	return strings.Join(values, ", ")
}

func formatRatingNumber(v float64) string {
	// One decimal at most, no trailing .0 for whole values.
	s := strconv.FormatFloat(v, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
