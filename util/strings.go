package util

import "unicode/utf8"

// Truncate cuts s to at most n bytes, backing up to the previous rune
// boundary rather than splitting a multi-byte character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}

// MaskSecret keeps the first and last few characters of a credential visible
// for identification and hides the rest.
func MaskSecret(s string) string {
	if len(s) <= 12 {
		return "***"
	}

	return s[:8] + "..." + s[len(s)-4:]
}
