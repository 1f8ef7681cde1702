package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coercion policies. Each field in an export record is bound to exactly one
// of these, so the normalizer's tolerance is enumerable instead of being
// buried in inline conditionals:
//
//	RequiredString    - must be present and non-blank after trimming
//	OptionalInt       - numeric-coercible or nil, never a rejection
//	RequiredTimestamp - parsed via the timeparse fallback chain; failure rejects
//
// Decoders are expected to run with UseNumber, so numbers arrive as
// json.Number; string-typed numerics ("183") also coerce, matching the
// is-numeric behavior of the upstream collectors.

// OptionalInt coerces v to an int64 when it is numeric, nil otherwise.
// Floats are truncated toward zero. Booleans and non-numeric strings are nil.
func OptionalInt(v any) *int64 {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return &n
		}
		if f, err := t.Float64(); err == nil {
			n := int64(f)
			return &n
		}
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		n := int64(t)
		return &n
	case int:
		n := int64(t)
		return &n
	case int64:
		return &t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			n := int64(f)
			return &n
		}
		return nil
	default:
		return nil
	}
}

// RequiredString returns the trimmed string value of v, or ok=false when v is
// absent, not a string, or blank.
func RequiredString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// stringValue renders v for free-text parsing (timestamps). Only strings are
// accepted; timestamps never arrive as numbers in these exports.
func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
