package normalize

import (
	"fmt"
	"strings"
	"time"
)

// Claim forms carry day-first dates; ISO dates are accepted as a fallback.
var dateFormats = []string{
	"02/01/2006",
	"2006-01-02",
}

// ParseDate parses a claim date in DD/MM/YYYY or YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q, expected DD/MM/YYYY or YYYY-MM-DD", s)
}

// DaysBetween returns the whole calendar days from start to end. Negative when end is earlier.
func DaysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

// MonthsBetween counts whole calendar months from start to end. A month is
// only complete once the end day-of-month reaches the start day-of-month, so
// 31 Jan to 28 Feb is 0 months and 31 Jan to 1 Mar is 1.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}
