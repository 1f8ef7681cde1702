package storage

import (
	"fmt"
	"strings"
)

// NormalizeKey converts a natural-key component to a canonical string form
// suitable for in-memory cache keys (e.g. "Jazz" or "2025-10-31").
//
// The loader must not assume a particular underlying type for key values;
// this helper keeps dimension caches consistent across backends.
func NormalizeKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case int64:
		return fmt.Sprintf("%d", t)
	case int:
		return fmt.Sprintf("%d", t)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// CacheKey joins normalized key components into one cache key. The separator
// cannot occur in normalized components coming out of the normalizer.
func CacheKey(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = NormalizeKey(v)
	}
	return strings.Join(parts, "\x1f")
}
