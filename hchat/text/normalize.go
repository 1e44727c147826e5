// Package text canonicalizes user input at ingress.
package text

import "strings"

// Normalize lower-cases raw and trims surrounding whitespace. It is idempotent
// and must run exactly once, before any strategy sees the text.
func Normalize(raw string) string {
	return strings.TrimSpace(strings.ToLower(raw))
}
