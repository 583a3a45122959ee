package dedup

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Ratio is the normalized indel similarity of a and b in [0, 100]:
// 200 * LCS / (len(a) + len(b)), counted in runes.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(total)
}

// TokenSortRatio compares a and b after sorting their whitespace
// separated tokens.
func TokenSortRatio(a, b string) float64 {
	ta, tb := strings.Fields(a), strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	slices.Sort(ta)
	slices.Sort(tb)
	return Ratio(strings.Join(ta, " "), strings.Join(tb, " "))
}

// TokenSetRatio compares the shared tokens of a and b against each side's
// remainder. When one side's tokens are a subset of the other's the
// result is 100.
func TokenSetRatio(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	var sect, diffAB, diffBA []string
	for _, t := range sa {
		if slices.Contains(sb, t) {
			sect = append(sect, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for _, t := range sb {
		if !slices.Contains(sa, t) {
			diffBA = append(diffBA, t)
		}
	}

	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	ab, ba := strings.Join(diffAB, " "), strings.Join(diffBA, " ")
	if len(sect) == 0 {
		return Ratio(ab, ba)
	}
	s := strings.Join(sect, " ")
	sab, sba := s+" "+ab, s+" "+ba
	return max(Ratio(s, sab), Ratio(s, sba), Ratio(sab, sba))
}

func tokenSet(s string) []string {
	fields := strings.Fields(s)
	slices.Sort(fields)
	return slices.Compact(fields)
}
