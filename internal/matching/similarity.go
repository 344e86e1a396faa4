package matching

import (
	"math"
	"strings"

	"github.com/antzucaro/matchr"
)

// Similarity scores two strings in [0, 100] under the normalizer's
// policy. Equal normalized strings score 100; containment of one side in
// the other scores by length ratio; everything else scores by Levenshtein
// distance relative to the longer string. Either side normalizing to the
// empty string scores 0.
//
// The containment shortcut exists because organization names frequently
// appear as prefixes or suffixes of each other (legal-entity suffixes
// appended) and plain edit distance under-scores those pairs.
func (n *Normalizer) Similarity(a, b string) int {
	s1 := n.Normalize(a)
	s2 := n.Normalize(b)

	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}
	if s1 == s2 {
		return 100
	}

	shorter, longer := s1, s2
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) {
		return roundRatio(len(shorter), len(longer))
	}

	distance := matchr.Levenshtein(s1, s2)
	return roundRatio(len(longer)-distance, len(longer))
}

// roundRatio returns round(100 * num / den), with a zero guard for
// degenerate denominators.
func roundRatio(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(100 * float64(num) / float64(den)))
}
