package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultVocabulary lists the skills, platforms and competencies recognised
// anywhere in a query. Multi-word entries match as phrases.
var DefaultVocabulary = []string{
	"javascript", "js", "typescript", "ts", "node", "nodejs",
	"react", "angular", "vue", "java", "python", "ruby", "php",
	"c#", ".net", "sql", "nosql", "database",
	"aws", "azure", "cloud", "docker", "kubernetes", "devops",
	"agile", "scrum", "frontend", "backend", "fullstack",
	"web", "mobile", "api", "rest", "graphql",
	"test", "qa", "quality", "security",
	"machine learning", "ml", "ai", "data science", "analytics",
	"leadership", "management", "communication",
	"problem solving", "critical thinking", "collaboration", "teamwork",
	"project", "product",
	// assessment families
	"aptitude", "reasoning", "personality", "cognitive", "behavioral",
	"competency", "emotional intelligence", "numerical", "verbal",
}

// DefaultIndicators are words whose following token is taken as a skill.
var DefaultIndicators = []string{
	"experience", "knowledge", "proficiency", "skills", "familiar", "competent",
}

// Extractor pulls stemmed key terms out of a raw query.
type Extractor struct {
	Vocabulary []string
	Indicators []string
}

// DefaultExtractor returns an Extractor using the built-in tables.
func DefaultExtractor() *Extractor {
	return &Extractor{
		Vocabulary: DefaultVocabulary,
		Indicators: DefaultIndicators,
	}
}

// ExtractKeyTerms runs the default extractor over query.
func ExtractKeyTerms(query string) []string {
	return DefaultExtractor().Extract(query)
}

// Extract returns the deduplicated, stemmed key terms of query in first-seen
// order. The result is empty when nothing is recognised.
//
// Capitalised tokens count as candidates, which also picks up sentence-initial
// words such as "Looking". The heuristic is kept as is.
func (e *Extractor) Extract(query string) []string {
	var candidates []string

	lower := strings.ToLower(query)
	for _, term := range e.Vocabulary {
		if strings.Contains(lower, term) {
			candidates = append(candidates, term)
		}
	}

	tokens := Tokenize(query)
	for i, tok := range tokens {
		if isCapitalized(tok) {
			candidates = append(candidates, strings.ToLower(tok))
		}
		if i < len(tokens)-1 && e.isIndicator(tok) {
			candidates = append(candidates, strings.ToLower(tokens[i+1]))
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	terms := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		terms = append(terms, Stem(c))
	}
	return terms
}

func (e *Extractor) isIndicator(tok string) bool {
	lower := strings.ToLower(tok)
	for _, ind := range e.Indicators {
		if lower == ind {
			return true
		}
	}
	return false
}

// isCapitalized reports whether tok starts with an upper-case letter and has
// more than one character.
func isCapitalized(tok string) bool {
	if utf8.RuneCountInString(tok) <= 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsUpper(r)
}
