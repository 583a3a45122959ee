package textnorm

import (
	"strings"
	"unicode/utf8"
)

// VenueStopWords are generic place words that carry no identifying signal.
var VenueStopWords = []string{
	"the", "and", "for", "with", "from", "into", "onto", "near", "inside", "outside",
	"at", "in", "on", "of", "to", "by", "via",
	"city", "county", "downtown",
	"street", "st", "road", "rd", "avenue", "ave", "blvd", "boulevard", "way", "wy", "drive", "dr",
	"center", "centre", "hall", "plaza", "park", "building",
}

// Tokenizer splits text into an ordered set of significant tokens.
type Tokenizer struct {
	MinLen    int
	StopWords map[string]struct{}
}

// NewTokenizer builds a tokenizer from a minimum token length and one or
// more stop word lists.
func NewTokenizer(minLen int, stopWords ...[]string) Tokenizer {
	stop := make(map[string]struct{})
	for _, list := range stopWords {
		for _, w := range list {
			stop[w] = struct{}{}
		}
	}
	return Tokenizer{MinLen: minLen, StopWords: stop}
}

var (
	// VenueTokenizer is used by the asset matcher.
	VenueTokenizer = NewTokenizer(3, VenueStopWords)

	// AuditTokenizer is stricter and also ignores festival vocabulary, so
	// year-specific festival assets compare on their distinctive words.
	AuditTokenizer = NewTokenizer(4, VenueStopWords, []string{"festival", "festivals", "fair", "fairs", "parade"})
)

// Tokenize lowercases s, spells out "&", splits on anything that is not an
// ASCII letter or digit and drops short tokens and stop words. Tokens keep
// first-occurrence order without duplicates.
func (tk Tokenizer) Tokenize(s string) []string {
	text := strings.ReplaceAll(Fold(s), "&", " and ")
	parts := strings.FieldsFunc(text, func(r rune) bool { return !isAlnum(r) })

	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if utf8.RuneCountInString(p) < tk.MinLen {
			continue
		}
		if _, stop := tk.StopWords[p]; stop {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Set converts tokens to a membership set.
func Set(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Overlap counts the tokens of a that are present in b.
func Overlap(a []string, b map[string]struct{}) int {
	n := 0
	for _, t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
