package matcher

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// unitCost weighs insertion, deletion and substitution equally.
var unitCost = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// EditDistance returns the Levenshtein distance between a and b, counted in
// runes.
func EditDistance(a, b string) int {
	return levenshtein.DistanceForStrings([]rune(a), []rune(b), unitCost)
}

// Similarity returns (maxLen - distance) / maxLen in [0,1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.DistanceForStrings(ra, rb, unitCost)
	return float64(longest-dist) / float64(longest)
}
