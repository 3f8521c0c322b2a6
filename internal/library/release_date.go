package library

import (
	"regexp"
	"time"
)

var (
	fullDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
	yearRe      = regexp.MustCompile(`^\d{4}$`)
)

// NormalizeReleaseDate pads year-only and year-month values to a full
// YYYY-MM-DD date. Anything that does not end up as a valid calendar date
// yields nil.
func NormalizeReleaseDate(value string) *string {
	var candidate string
	switch {
	case fullDateRe.MatchString(value):
		candidate = value
	case yearMonthRe.MatchString(value):
		candidate = value + "-01"
	case yearRe.MatchString(value):
		candidate = value + "-01-01"
	default:
		return nil
	}
	if _, err := time.Parse(time.DateOnly, candidate); err != nil {
		return nil
	}
	return &candidate
}
