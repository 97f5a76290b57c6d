package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxInputLength = 500

var (
	strippedChars    = regexp.MustCompile(`[<>"'&]`)
	productSlugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)
	userRefRegex     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	sourceTagRegex   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// SanitizeInput trims, strips basic XSS vector characters, and caps the
// length of an untrusted parameter. Returns "" for empty/absent input.
func SanitizeInput(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	s = strippedChars.ReplaceAllString(s, "")
	// Cap on runes, not bytes: a byte slice could split a multibyte
	// character and leave invalid UTF-8 in forwarded text.
	if utf8.RuneCountInString(s) > maxInputLength {
		s = string([]rune(s)[:maxInputLength])
	}
	return s
}

// ValidProductSlug reports whether s is lowercase alphanumeric with hyphens
// and at most 50 characters.
func ValidProductSlug(s string) bool {
	return len(s) <= 50 && productSlugRegex.MatchString(s)
}

// ValidUserRef reports whether s is alphanumeric with hyphens/underscores
// and at most 100 characters.
func ValidUserRef(s string) bool {
	return len(s) <= 100 && userRefRegex.MatchString(s)
}

// ValidSourceTag reports whether s is a well-formed traffic source tag.
func ValidSourceTag(s string) bool {
	return len(s) <= maxInputLength && sourceTagRegex.MatchString(s)
}
