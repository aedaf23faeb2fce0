package domain

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// unavailable is rendered in place of a percentage with a zero denominator.
const unavailable = "n/a"

var printer = message.NewPrinter(language.English)

// FormatThousands renders n with a comma between every group of three digits,
// e.g. 1234567 -> "1,234,567". The sign is kept ahead of the first group.
func FormatThousands(n int64) string {
	return printer.Sprintf("%d", n)
}

// Percentage returns round(part*100/whole), rounding halves up. ok is false
// when whole is zero and the percentage is undefined.
func Percentage(part, whole int64) (pct int64, ok bool) {
	if whole == 0 {
		return 0, false
	}
	return int64(math.Floor(float64(part)*100/float64(whole) + 0.5)), true
}

// FormatPercentage renders Percentage as "42%", or "n/a" when undefined.
func FormatPercentage(part, whole int64) string {
	pct, ok := Percentage(part, whole)
	if !ok {
		return unavailable
	}
	return strconv.FormatInt(pct, 10) + "%"
}
