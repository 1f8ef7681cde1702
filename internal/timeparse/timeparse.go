// Package timeparse parses the timestamp shapes that appear in radio export
// files. Exports come from two generations of collectors: newer ones write
// ISO-8601 with an offset and fractional seconds, older ones write
// "31.10.2025 22:57:08". Both normalize to the same wall-clock value.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the split date field used by bulk exports ("16.11.2025").
	DateLayout = "02.01.2006"

	fallbackLayout = "02.01.2006 15:04:05"
)

// timestampLayouts is the ordered fallback chain for free-text timestamps.
// RFC3339Nano also accepts plain RFC3339 input, so one primary layout covers
// both fractional and whole-second ISO forms.
var timestampLayouts = []string{
	time.RFC3339Nano,
	fallbackLayout,
}

// ParseTimestamp parses a free-text timestamp using the fallback chain.
//
// The offset of ISO input is dropped after parsing: downstream storage keeps
// naive wall-clock values, matching what the fallback format carries. Callers
// must treat an error as "reject the record"; there is no default value.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("timeparse: empty timestamp")
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// Strip the offset, keep the wall clock.
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("timeparse: unparsable timestamp %q", s)
}

// ParseDate parses the bulk-mode split date field ("D.M.Y").
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeparse: date %q: %w", s, err)
	}
	return t, nil
}

// ParseClock parses the bulk-mode split time field ("H:M:S").
// Components may be unpadded ("9:5:0" is valid).
func ParseClock(raw string) (hour, minute, second int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("timeparse: clock %q: want H:M:S", raw)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("timeparse: clock %q: %w", raw, err)
		}
		vals[i] = n
	}
	h, m, s := vals[0], vals[1], vals[2]
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, 0, 0, fmt.Errorf("timeparse: clock %q out of range", raw)
	}
	return h, m, s, nil
}

// DayOfWeek returns the ISO-8601 day number for a date (Monday=1 .. Sunday=7).
func DayOfWeek(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// FormatDate renders a date the way the store keys time slots ("2006-01-02").
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime renders a normalized timestamp without offset.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
