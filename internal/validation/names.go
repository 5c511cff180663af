package validation

import (
	"strings"
	"unicode"
)

// NormalizeTestName canonicalizes test names so that "SpontaneousFiringTest",
// "spontaneous-firing" and "Spontaneous Firing" all name spontaneous_firing.
func NormalizeTestName(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '-' || r == ' ' || r == '_':
			b.WriteByte('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	normalized := collapseUnderscores(b.String())
	if trimmed := strings.TrimSuffix(normalized, "_test"); trimmed != "" {
		normalized = trimmed
	}
	return normalized
}

func collapseUnderscores(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' })
	return strings.Join(parts, "_")
}
