// Package textnorm turns free-form venue, city and title text into the
// comparison forms used by matching and deduplication. Every function is
// pure and total: any input, including the empty string, yields a value.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	leadArticle = regexp.MustCompile(`^(the|a|an)\s+`)
	venueSuffix = regexp.MustCompile(`\b(theater|theatre|center|centre|hall)\b`)
)

// Fold lowercases s and strips combining marks, so "Café" becomes "cafe".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Token keeps only the ASCII letters and digits of the folded input.
func Token(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Key is the name+city lookup key "<Token(name)>|<Token(city)>".
// A key of "|" means both parts were empty.
func Key(name, city string) string {
	return Token(name) + "|" + Token(city)
}

// EmptyKey is the key produced by two blank inputs.
const EmptyKey = "|"

// Text trims s and collapses internal whitespace runs to one space.
func Text(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Title normalizes an event title for similarity scoring: lowercase,
// no leading article, no punctuation, single spaces.
func Title(s string) string {
	t := strings.TrimSpace(strings.ToLower(s))
	t = leadArticle.ReplaceAllString(t, "")
	return Text(stripPunct(t))
}

// Venue normalizes a venue name for similarity scoring. Generic building
// words (theater, center, hall) are dropped.
func Venue(s string) string {
	v := strings.TrimSpace(strings.ToLower(s))
	v = venueSuffix.ReplaceAllString(v, "")
	return Text(stripPunct(v))
}

func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
