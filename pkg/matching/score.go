package matching

import (
	"unicode/utf8"
)

// Score rates how well event venue tokens fit an asset's name tokens.
// An overlap of two or more tokens, or a single token of four or more
// characters, scores overlap*10 plus the length of the longest shared
// token. Anything weaker scores zero.
func Score(eventTokens []string, assetTokens map[string]struct{}) int {
	overlap, longest := 0, 0
	for _, t := range eventTokens {
		if _, ok := assetTokens[t]; !ok {
			continue
		}
		overlap++
		if n := utf8.RuneCountInString(t); n > longest {
			longest = n
		}
	}
	if overlap >= 2 || (overlap == 1 && longest >= 4) {
		return overlap*10 + longest
	}
	return 0
}
