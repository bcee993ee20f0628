// Package datefmt holds the date/time string helpers shared by the stores
// and the backend client. The backend exchanges calendar fields as plain
// integers and times as strings in several shapes; everything is normalized
// here into the canonical local-time form "YYYY-MM-DD HH:mm:00".
package datefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PadZero formats n as a decimal string left-padded with '0' to width 2.
// Values outside 0..99 are returned as their plain decimal form.
func PadZero(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}

// DateKey returns the cache key for a calendar day: "{year}-{MM}-{DD}".
func DateKey(year, month, day int) string {
	return fmt.Sprintf("%d-%s-%s", year, PadZero(month), PadZero(day))
}

// MidnightString returns "YYYY-MM-DD 00:00:00" for the given calendar day.
// The news query endpoint addresses a day by its midnight timestamp.
func MidnightString(year, month, day int) string {
	return fmt.Sprintf("%d-%s-%s 00:00:00", year, PadZero(month), PadZero(day))
}

// combinedLayouts are the accepted shapes for 'T'-separated date-time input.
// Offset-qualified forms are converted to local time; offset-less forms are
// interpreted as local time directly.
var combinedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// NormalizeDateTime converts a heterogeneous time value into the canonical
// local-time form "YYYY-MM-DD HH:mm:00" (seconds always zeroed).
//
// Dispatch, in order:
//  1. empty input is returned unchanged
//  2. input containing 'T' is parsed as a combined date-time and reformatted
//     in the local time zone; if it does not parse, the raw input is returned
//  3. input containing both a space and a hyphen is assumed canonical and
//     returned verbatim
//  4. input containing a colon is a bare time of day ("HH:mm" or "HH:mm:ss"),
//     combined with the supplied calendar day; missing or non-numeric parts
//     count as 0
//  5. anything else is returned unchanged
func NormalizeDateTime(raw string, year, month, day int) string {
	if raw == "" {
		return ""
	}

	switch {
	case strings.Contains(raw, "T"):
		t, ok := parseCombined(raw)
		if !ok {
			return raw
		}
		return t.In(time.Local).Format("2006-01-02 15:04") + ":00"

	case strings.Contains(raw, " ") && strings.Contains(raw, "-"):
		// Already "YYYY-MM-DD HH:mm:ss"; no validation.
		return raw

	case strings.Contains(raw, ":"):
		parts := strings.Split(raw, ":")
		hours := intOrZero(parts[0])
		minutes := 0
		if len(parts) > 1 {
			minutes = intOrZero(parts[1])
		}
		return fmt.Sprintf("%d-%s-%s %s:%s:00",
			year, PadZero(month), PadZero(day), PadZero(hours), PadZero(minutes))

	default:
		return raw
	}
}

func parseCombined(raw string) (time.Time, bool) {
	for _, layout := range combinedLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func intOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
