package datewindow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the YYYY-MM-DD layout used for source file names.
const ISOLayout = "2006-01-02"

// ErrInvalidDate is returned for strings that are not well-formed YYYY-MM-DD dates.
var ErrInvalidDate = errors.New("invalid ISO date")

// DateAtOffset returns the calendar date daysBack days before now, in now's location.
// Negative offsets are treated as zero.
func DateAtOffset(now time.Time, daysBack int) string {
	if daysBack < 0 {
		daysBack = 0
	}
	y, m, d := now.Date()
	// Anchor at noon so DST transitions never push the result across midnight.
	day := time.Date(y, m, d, 12, 0, 0, 0, now.Location()).AddDate(0, 0, -daysBack)
	return day.Format(ISOLayout)
}

// Window returns the dates at offsets 0..days-1, today first.
func Window(now time.Time, days int) []string {
	if days <= 0 {
		return nil
	}
	out := make([]string, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, DateAtOffset(now, i))
	}
	return out
}

// ParseISO parses a YYYY-MM-DD date as a calendar day in UTC.
func ParseISO(iso string) (time.Time, error) {
	raw := strings.TrimSpace(iso)
	if len(raw) != len(ISOLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, iso)
	}
	ts, err := time.Parse(ISOLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, iso)
	}
	return ts, nil
}

// LongDateLabel formats an ISO date in the long form of the locale,
// e.g. "7 de septiembre de 2025".
func LongDateLabel(iso string, locale Locale) (string, error) {
	ts, err := ParseISO(iso)
	if err != nil {
		return "", err
	}
	return locale.long(ts), nil
}
