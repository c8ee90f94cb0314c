// Package strcase converts Go identifiers to the snake_case keys used on the wire.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a string to snake_case (initialism-safe).
func ToLowerSnake(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordBoundary(runes, i) {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// wordBoundary reports whether an upper-case rune at i starts a new word:
// after a lower-case letter or digit (backupCodes), or where an acronym
// hands over to a word (HTTPServer).
func wordBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
