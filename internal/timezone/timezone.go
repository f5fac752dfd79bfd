// Package timezone provides the timezone helpers used to key daily state.
//
// Daily challenges roll over at midnight of a canonical timezone, so every
// date computation goes through a real *time.Location rather than a fixed
// UTC offset.
package timezone

import (
	"fmt"
	"time"
)

// DateLayout is the calendar key format, e.g. "2024-01-31".
const DateLayout = "2006-01-02"

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g., "America/New_York").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// DateKey returns the calendar date of t as observed in tz, formatted as YYYY-MM-DD.
func DateKey(t time.Time, tz *time.Location) string {
	if tz == nil {
		tz = UTC
	}
	return t.In(tz).Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight in tz.
func ParseDateKey(key string, tz *time.Location) (time.Time, error) {
	if tz == nil {
		tz = UTC
	}
	t, err := time.ParseInLocation(DateLayout, key, tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
}

// NextDay returns the start of the day after t in tz. Across a DST change the
// gap is 23 or 25 hours, not 24.
func NextDay(t time.Time, tz *time.Location) time.Time {
	start := StartOfDay(t, tz)
	return time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, start.Location())
}
