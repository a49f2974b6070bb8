// ABOUTME: Deterministic naming rules for resource commands and URL segments.
// ABOUTME: Mixed-case to hyphen-case conversion and simple English pluralization.

package schema

import (
	"strings"
	"unicode"
)

// CommandName converts a mixed-case resource name to its hyphen-case,
// fully lowercased command form: "OrderItem" -> "order-item".
// Already-hyphenated lowercase input passes through unchanged, so the
// conversion is idempotent.
func CommandName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r == '_' || r == ' ' {
			r = '-'
		}
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteRune('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Pluralize applies simple English heuristics: a trailing consonant+"y"
// becomes "ies"; trailing "s", "x", "ch", or "sh" gets "es"; everything
// else gets a plain "s".
func Pluralize(name string) string {
	if name == "" {
		return name
	}
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "y") && len(lower) > 1 && !isVowel(lower[len(lower)-2]) {
		return name[:len(name)-1] + "ies"
	}
	if strings.HasSuffix(lower, "s") || strings.HasSuffix(lower, "x") ||
		strings.HasSuffix(lower, "ch") || strings.HasSuffix(lower, "sh") {
		return name + "es"
	}
	return name + "s"
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
