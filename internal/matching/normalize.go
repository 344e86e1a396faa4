// Package matching implements the fuzzy-matching core: text
// normalization, string similarity and the three suggestion engines
// (facility→parent, contact→facility, facility→form-record). Everything
// in this package is pure and safe for concurrent use.
package matching

import "strings"

// Normalizer is a normalization policy: a transliteration table applied
// after lowercasing, followed by stripping every rune outside [a-z0-9].
// The table is deliberately lossy and language-specific; it is not a
// general Unicode folding.
type Normalizer struct {
	substitutions map[rune]string
}

// NewNormalizer builds a Normalizer from a substitution table. The table
// maps lowercase runes to their replacements; entries are applied before
// the [a-z0-9] strip, so replacements must themselves be ASCII.
func NewNormalizer(substitutions map[rune]string) *Normalizer {
	return &Normalizer{substitutions: substitutions}
}

// German returns the default policy for German orthography:
// ä→a, ö→o, ü→u, ß→ss.
func German() *Normalizer {
	return NewNormalizer(map[rune]string{
		'ä': "a",
		'ö': "o",
		'ü': "u",
		'ß': "ss",
	})
}

// Normalize lowercases, transliterates and strips the input. Empty input
// normalizes to the empty string; input consisting only of noise
// characters normalizes to the empty string as well.
func (n *Normalizer) Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if sub, ok := n.substitutions[r]; ok {
			b.WriteString(sub)
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DomainToken extracts the pseudo-domain from an email address: the
// substring between '@' and the first '.' that follows it, lowercased.
// Returns "" when the address has no '@'.
func DomainToken(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return ""
	}
	token := email[at+1:]
	if dot := strings.IndexByte(token, '.'); dot >= 0 {
		token = token[:dot]
	}
	return strings.ToLower(token)
}
