// Package record validates and coerces decoded export records into typed
// values the loader can act on.
//
// Classification is two-tier: a *RejectError means "skip this record and
// keep going", any other error means the input's shape is wrong and the run
// must abort. Normalization itself is pure; callers own the skip counters.
package record

import (
	"errors"
	"time"
)

// Playback is one normalized bulk-export record: a song played on a radio at
// a point in time.
type Playback struct {
	Genre         string
	Radio         string
	SongSessionID string
	Title         string
	Artists       string

	Date                 time.Time
	Hour, Minute, Second int

	// Optional numerics stay nil when the raw value is not numeric-coercible.
	DurationSeconds *int64
	ReleaseYear     *int64
}

// Measurement is one normalized listener-count sample from the streaming
// export.
type Measurement struct {
	SongSessionID string
	Listeners     *int64
	RecordedAt    time.Time
}

// RejectError marks a record-level failure: the record is skipped and the
// run continues.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return "record rejected: " + e.Reason }

func reject(reason string) error { return &RejectError{Reason: reason} }

// Reject reasons reported in the run summary.
const (
	ReasonMissingField = "missing_field"
	ReasonBadTimestamp = "bad_timestamp"
	ReasonNotJSON      = "not_json"
	ReasonNoAnchor     = "no_anchor_session"
	ReasonEmptyKey     = "empty_key"
)

// IsReject reports whether err is a record-level rejection, and returns its
// reason when it is.
func IsReject(err error) (string, bool) {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}
