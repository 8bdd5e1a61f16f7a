// Package datetime provides date utility functions with day granularity.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/payment-plan/pkg/constants"
)

const (
	// DateLayout is the canonical ISO date format.
	DateLayout = constants.DateLayout

	// DisplayLayout is the day-first format shown to users.
	DisplayLayout = constants.DisplayDateLayout
)

// inputLayouts are tried in order by ParseDate. ISO comes first so that an
// ambiguous value like 2025-05-10 is never read day-first.
var inputLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
	"2.1.2006",
	"2/1/2006",
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// MustParseDate parses an ISO date and panics on error.
func MustParseDate(dateStr string) time.Time {
	return MustParseTime(DateLayout, dateStr)
}

// ParseDate accepts ISO dates and the day-first layouts found in locale
// exports, returning midnight UTC of that calendar day.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Truncate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Truncate drops the time of day and location, keeping the calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays offsets a date by whole calendar days.
func AddDays(date time.Time, days int) time.Time {
	return Truncate(date).AddDate(0, 0, days)
}

// AddMonths offsets a date by calendar months. Days past the end of the
// target month roll into the following month, as time.AddDate does.
func AddMonths(date time.Time, months int) time.Time {
	return Truncate(date).AddDate(0, months, 0)
}

// Format renders a date in the canonical layout.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// Display renders a date in the day-first layout.
func Display(t time.Time) string {
	return t.Format(DisplayLayout)
}
