package util

import (
	"strings"
	"unicode"
)

// MaxClientIDLength caps identifiers taken from request headers.
const MaxClientIDLength = 128

// NormalizeClientID makes a header supplied client identifier safe to use as
// a storage key: invalid UTF-8, NUL and other control characters are dropped,
// surrounding space trimmed and the result capped at MaxClientIDLength bytes.
// An empty result becomes "unknown".
func NormalizeClientID(value string) string {
	sanitized := strings.ToValidUTF8(value, "")
	sanitized = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, sanitized)
	sanitized = strings.TrimSpace(sanitized)

	if len(sanitized) > MaxClientIDLength {
		sanitized = strings.ToValidUTF8(sanitized[:MaxClientIDLength], "")
	}
	if sanitized == "" {
		return "unknown"
	}
	return sanitized
}
