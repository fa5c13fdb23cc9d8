package ranking

import "strings"

// Categories maps a single-letter test-type code to the words that describe it.
type Categories map[rune][]string

// DefaultCategories returns the standard code table.
func DefaultCategories() Categories {
	return Categories{
		'K': {"technical", "knowledge", "assessment", "skill"},
		'A': {"aptitude", "ability", "reasoning"},
		'P': {"personality", "behavior", "soft", "interpersonal"},
		'B': {"behavioral", "competency", "performance"},
		'C': {"cognitive", "problem", "thinking"},
		'D': {"development", "learning", "growth"},
		'E': {"emotional", "intelligence", "eq"},
	}
}

// KeywordCoverage returns the fraction of key terms that occur as substrings of
// doc, the record's normalized document. It is 0 when terms is empty.
func KeywordCoverage(terms []string, doc string) float64 {
	if len(terms) == 0 {
		return 0
	}
	matched := 0
	for _, term := range terms {
		if strings.Contains(doc, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// CategoryCodes returns every uppercase ASCII letter found in the test types,
// in order. Packed codes such as "KP" yield two codes.
func CategoryCodes(testTypes []string) []rune {
	var codes []rune
	for _, tt := range testTypes {
		for _, r := range tt {
			if r >= 'A' && r <= 'Z' {
				codes = append(codes, r)
			}
		}
	}
	return codes
}

// CategoryRelevance counts, for every code and key term, whether a word
// describing the code contains the term or the term contains the word. The count
// is normalized by codes x terms. Codes missing from the table still count in
// the denominator. A nil table selects DefaultCategories.
func CategoryRelevance(terms, testTypes []string, categories Categories) float64 {
	codes := CategoryCodes(testTypes)
	if len(codes) == 0 || len(terms) == 0 {
		return 0
	}
	if categories == nil {
		categories = DefaultCategories()
	}

	matches := 0
	for _, code := range codes {
		words, ok := categories[code]
		if !ok {
			continue
		}
		for _, term := range terms {
			if relatesTo(term, words) {
				matches++
			}
		}
	}
	return float64(matches) / float64(len(codes)*len(terms))
}

func relatesTo(term string, words []string) bool {
	for _, w := range words {
		if strings.Contains(w, term) || strings.Contains(term, w) {
			return true
		}
	}
	return false
}
