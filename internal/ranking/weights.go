package ranking

// MaxResults is the most records a recommendation returns.
const MaxResults = 10

// Weights are the multipliers applied to each relevance signal.
type Weights struct {
	Similarity        float64 `json:"similarity"`         // TF-IDF relevance (default: 0.6)
	KeywordCoverage   float64 `json:"keyword_coverage"`   // Share of key terms found (default: 0.3)
	CategoryRelevance float64 `json:"category_relevance"` // Test-type fit (default: 0.1)
}

// DefaultWeights returns the standard weighting:
//
//	combined = (similarity * 0.6) + (keyword_coverage * 0.3) + (category_relevance * 0.1)
//
// Similarity dominates, literal key-term overlap is secondary and category fit
// mostly separates otherwise close candidates.
func DefaultWeights() *Weights {
	return &Weights{
		Similarity:        0.6,
		KeywordCoverage:   0.3,
		CategoryRelevance: 0.1,
	}
}

// Scores holds the three relevance signals of one candidate.
type Scores struct {
	Similarity        float64 `json:"similarity"`
	KeywordCoverage   float64 `json:"keyword_coverage"`
	CategoryRelevance float64 `json:"category_relevance"`
}

// CompositeScore combines the signals with weights (DefaultWeights when nil).
// Similarity is not normalized, so the result is not bounded by 1.
func CompositeScore(s Scores, weights *Weights) float64 {
	if weights == nil {
		weights = DefaultWeights()
	}
	return (s.Similarity * weights.Similarity) +
		(s.KeywordCoverage * weights.KeywordCoverage) +
		(s.CategoryRelevance * weights.CategoryRelevance)
}
