package normalize

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Rupees formats an amount rounded to whole rupees with digit grouping, e.g. "Rs.52,000".
func Rupees(v float64) string {
	n := int64(math.Round(v))
	if n < 0 {
		return "-Rs." + printer.Sprintf("%d", -n)
	}
	return "Rs." + printer.Sprintf("%d", n)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
