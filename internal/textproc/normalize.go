// Package textproc turns free text into the stemmed tokens and key terms used by
// the recommendation scorers.
package textproc

import (
	"regexp"
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"golang.org/x/text/unicode/norm"
)

// wordSplitter splits on everything that is not a word character.
var wordSplitter = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// stopwords are dropped before stemming.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {},
	"but": {}, "is": {}, "are": {}, "of": {}, "for": {},
	"in": {}, "to": {}, "with": {}, "on": {}, "at": {},
	"this": {}, "that": {}, "be": {}, "by": {}, "as": {},
}

// IsStopword reports whether the lowercased word is excluded from matching.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Tokenize splits text into word tokens without changing case.
// Empty input yields an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	parts := wordSplitter.Split(norm.NFKC.String(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Normalize lowercases, tokenizes, drops stopwords and one-character tokens,
// and stems what is left. Order and duplicates are preserved.
func Normalize(text string) []string {
	tokens := Tokenize(strings.ToLower(text))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) <= 1 || IsStopword(tok) {
			continue
		}
		out = append(out, Stem(tok))
	}
	return out
}

// Stem applies the Porter suffix-stripping algorithm to a lowercased term.
func Stem(term string) string {
	return porterstemmer.StemString(term)
}

// Join builds the space-separated pseudo-document for a token slice.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}
