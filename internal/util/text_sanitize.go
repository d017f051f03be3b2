package util

import "strings"

// SanitizeText strips NUL bytes and other non-printing control characters
// while keeping ordinary whitespace. PDF extractors occasionally emit
// embedded NULs, and Postgres text columns reject them outright.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			b.WriteRune(ch)
			continue
		}
		if ch < 0x20 || ch == 0x7f {
			continue
		}
		b.WriteRune(ch)
	}
	return strings.TrimSpace(b.String())
}
