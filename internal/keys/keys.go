package keys

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AbilityKey produces the canonical lookup key for an ability name.
// Behavior: trims, strips accents, lower-cases and replaces spaces and
// hyphens with underscores. "Chama Ardente" and "chama-ardente" share a key.
func AbilityKey(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	s = stripMarks(s)
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

func stripMarks(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		// combining diacritical marks block
		if r >= 0x0300 && r <= 0x036f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
