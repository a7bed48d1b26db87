package textutil

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ContainsChinese checks if a string contains Chinese characters.
func ContainsChinese(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// IsIdentifier reports whether s is a legal bare identifier
// (letter or underscore followed by letters, digits, underscores).
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

var (
	nonNameChars = regexp.MustCompile(`[^\w\s\p{Han}]`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// ResourceName derives a fallback resource name from literal text. Special
// characters are stripped, whitespace collapses to underscores, ASCII is
// lowercased, and the result is capped at 30 runes. Text that reduces to
// nothing gets a hash-derived name so the result is never empty.
func ResourceName(text string) string {
	name := nonNameChars.ReplaceAllString(text, "")
	name = spaceRuns.ReplaceAllString(strings.TrimSpace(name), "_")

	var b strings.Builder
	for _, r := range name {
		if r < 128 {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	name = b.String()

	if runes := []rune(name); len(runes) > 30 {
		name = string(runes[:30])
	}

	if strings.Trim(name, "_") == "" {
		sum := sha256.Sum256([]byte(text))
		return fmt.Sprintf("text_%05d", binary.BigEndian.Uint32(sum[:4])%100000)
	}
	return name
}

// Hash returns a hex SHA-256 digest of s, used as a stable cache key.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
