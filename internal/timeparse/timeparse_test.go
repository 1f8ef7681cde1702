package timeparse

import (
	"testing"
	"time"
)

func TestParseTimestamp_PrimaryAndFallbackAgree(t *testing.T) {
	// The ISO form and the legacy form of the same instant must normalize to
	// the same wall-clock value.
	iso, err := ParseTimestamp("2025-11-16T16:07:51.317683+01:00")
	if err != nil {
		t.Fatalf("iso parse: %v", err)
	}
	legacy, err := ParseTimestamp("16.11.2025 16:07:51")
	if err != nil {
		t.Fatalf("fallback parse: %v", err)
	}

	want := time.Date(2025, 11, 16, 16, 7, 51, 0, time.UTC)
	if !iso.Equal(want) {
		t.Errorf("iso: got %v want %v", iso, want)
	}
	if !legacy.Equal(want) {
		t.Errorf("fallback: got %v want %v", legacy, want)
	}
}

func TestParseTimestamp_Rejects(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not a time",
		"2025-13-40T99:00:00Z",
		"16/11/2025 16:07:51",
	}
	for _, in := range cases {
		if _, err := ParseTimestamp(in); err == nil {
			t.Errorf("ParseTimestamp(%q): expected error", in)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("16.11.2025")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := FormatDate(d); got != "2025-11-16" {
		t.Errorf("FormatDate: got %q", got)
	}

	if _, err := ParseDate("2025-11-16"); err == nil {
		t.Error("ParseDate accepted ISO date; the split field is d.m.Y only")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		h, m, s int
		wantErr bool
	}{
		{in: "22:57:08", h: 22, m: 57, s: 8},
		{in: "9:5:0", h: 9, m: 5, s: 0},
		{in: "24:00:00", wantErr: true},
		{in: "12:60:00", wantErr: true},
		{in: "12:00", wantErr: true},
		{in: "a:b:c", wantErr: true},
	}
	for _, tc := range tests {
		h, m, s, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tc.in, err)
			continue
		}
		if h != tc.h || m != tc.m || s != tc.s {
			t.Errorf("ParseClock(%q): got %d:%d:%d", tc.in, h, m, s)
		}
	}
}

func TestDayOfWeek_ISO(t *testing.T) {
	monday := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 11, 16, 0, 0, 0, 0, time.UTC)
	if got := DayOfWeek(monday); got != 1 {
		t.Errorf("monday: got %d", got)
	}
	if got := DayOfWeek(sunday); got != 7 {
		t.Errorf("sunday: got %d", got)
	}
}
