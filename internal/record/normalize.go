package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"radioetl/internal/genremap"
	"radioetl/internal/timeparse"
)

// durationMillisCutoff: exports mix seconds and milliseconds in the duration
// field; anything above this is taken as milliseconds and converted.
const durationMillisCutoff = 10_000

// bulkRequired are the keys every bulk record must carry. release_year is
// optional by contract.
var bulkRequired = []string{
	"genre", "radio", "song_session_id", "time", "date", "title", "artists", "duration",
}

// streamRequired are the keys every listener measurement must carry.
var streamRequired = []string{"song_session_id", "listeners", "recorded_at"}

// NormalizePlayback validates one decoded bulk record.
//
// Missing required keys reject the record. Unparsable split date/time fields
// return a plain (fatal) error: the bulk export writes both with one fixed
// format, so a parse failure there is a schema mismatch, not a bad record.
func NormalizePlayback(raw map[string]any) (Playback, error) {
	var p Playback

	for _, k := range bulkRequired {
		if _, ok := raw[k]; !ok {
			return p, reject(ReasonMissingField)
		}
	}

	genre, ok := RequiredString(raw["genre"])
	if !ok {
		return p, reject(ReasonEmptyKey)
	}
	radio, ok := RequiredString(raw["radio"])
	if !ok {
		return p, reject(ReasonEmptyKey)
	}
	sessionID, ok := RequiredString(raw["song_session_id"])
	if !ok {
		return p, reject(ReasonEmptyKey)
	}

	dateRaw, ok := stringValue(raw["date"])
	if !ok {
		return p, fmt.Errorf("record: date is %T, want string", raw["date"])
	}
	date, err := timeparse.ParseDate(dateRaw)
	if err != nil {
		return p, err
	}
	clockRaw, ok := stringValue(raw["time"])
	if !ok {
		return p, fmt.Errorf("record: time is %T, want string", raw["time"])
	}
	hour, minute, second, err := timeparse.ParseClock(clockRaw)
	if err != nil {
		return p, err
	}

	title, _ := RequiredString(raw["title"])

	p = Playback{
		Genre:           genremap.Canonical(genre),
		Radio:           radio,
		SongSessionID:   sessionID,
		Title:           title,
		Artists:         joinArtists(raw["artists"]),
		Date:            date,
		Hour:            hour,
		Minute:          minute,
		Second:          second,
		DurationSeconds: normalizeDuration(OptionalInt(raw["duration"])),
		ReleaseYear:     OptionalInt(raw["release_year"]),
	}
	return p, nil
}

// NormalizeMeasurement validates one decoded streaming record. All failures
// here are record-level: the stream carries free-text timestamps from mixed
// producers, so a bad value means a bad record, not a bad file.
func NormalizeMeasurement(raw map[string]any) (Measurement, error) {
	var m Measurement

	for _, k := range streamRequired {
		if _, ok := raw[k]; !ok {
			return m, reject(ReasonMissingField)
		}
	}

	sessionID, ok := RequiredString(raw["song_session_id"])
	if !ok {
		return m, reject(ReasonEmptyKey)
	}

	tsRaw, ok := stringValue(raw["recorded_at"])
	if !ok {
		return m, reject(ReasonBadTimestamp)
	}
	recordedAt, err := timeparse.ParseTimestamp(tsRaw)
	if err != nil {
		return m, reject(ReasonBadTimestamp)
	}

	m = Measurement{
		SongSessionID: sessionID,
		Listeners:     OptionalInt(raw["listeners"]),
		RecordedAt:    recordedAt,
	}
	return m, nil
}

// joinArtists collapses the artists value into one delimited string.
// Arrays join with ", "; blank and non-string elements are dropped; a bare
// string passes through trimmed.
func joinArtists(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			s, ok := it.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		return ""
	}
}

// normalizeDuration converts millisecond durations to seconds. Upstream
// enrichment emits seconds for most tracks but milliseconds for a subset;
// no real song is both longer than 10000 seconds and shorter than 10000 ms.
func normalizeDuration(d *int64) *int64 {
	if d == nil {
		return nil
	}
	if *d > durationMillisCutoff {
		n := (*d + 500) / 1000
		return &n
	}
	return d
}

// DecodeObject decodes one raw JSON object with number fidelity preserved
// (numbers surface as json.Number for the coercion policies).
func DecodeObject(rawJSON string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(rawJSON))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, reject(ReasonNotJSON)
	}
	return m, nil
}
