package fallback

import (
	"strconv"
	"strings"
)

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value string, fallback string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return fallback
}

// SafeLower returns the lowercased value, or the fallback when the value is blank.
func SafeLower(value string, fallback string) string {
	return strings.ToLower(SafeString(value, fallback))
}

// OneOf returns the lowercased value when it is in allowed, otherwise the fallback.
func OneOf(value string, allowed []string, fallback string) string {
	v := SafeLower(value, fallback)
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// IntInRange parses value as a base-10 integer and returns it when it lies in [lo, hi].
// ok is false when the value is unparseable or out of range.
func IntInRange(value string, lo, hi int) (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// SafeBool reports whether value is "true" (case-insensitive); anything else is the fallback.
func SafeBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true
	case "false":
		return false
	}
	return fallback
}
