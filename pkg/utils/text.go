// Package utils provides shared utilities for text and logging.
package utils

// Truncate returns s truncated to at most max runes, with "..." appended if
// anything was cut. Titles carry diacritics, so the cut is rune-aligned.
// If max is 0 or negative, returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
