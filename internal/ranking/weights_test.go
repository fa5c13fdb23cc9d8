package ranking

import (
	"math"
	"testing"
)

// TestDefaultWeights verifies the default weight configuration.
func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()

	if w.Similarity != 0.6 {
		t.Errorf("expected similarity 0.6, got %f", w.Similarity)
	}
	if w.KeywordCoverage != 0.3 {
		t.Errorf("expected keyword_coverage 0.3, got %f", w.KeywordCoverage)
	}
	if w.CategoryRelevance != 0.1 {
		t.Errorf("expected category_relevance 0.1, got %f", w.CategoryRelevance)
	}
}

// TestCompositeScore tests the weighted combination, including boundary weights.
func TestCompositeScore(t *testing.T) {
	scores := Scores{Similarity: 2.0, KeywordCoverage: 0.5, CategoryRelevance: 0.25}

	tests := []struct {
		name     string
		weights  *Weights
		expected float64
	}{
		{
			name:     "nil uses defaults",
			weights:  nil,
			expected: 2.0*0.6 + 0.5*0.3 + 0.25*0.1,
		},
		{
			name:     "similarity only",
			weights:  &Weights{Similarity: 1},
			expected: 2.0,
		},
		{
			name:     "keyword coverage only",
			weights:  &Weights{KeywordCoverage: 1},
			expected: 0.5,
		},
		{
			name:     "category relevance only",
			weights:  &Weights{CategoryRelevance: 1},
			expected: 0.25,
		},
		{
			name:     "all zero",
			weights:  &Weights{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CompositeScore(scores, tt.weights)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestCompositeScore_SimilarityDominates checks the default priority order.
func TestCompositeScore_SimilarityDominates(t *testing.T) {
	similar := CompositeScore(Scores{Similarity: 1}, nil)
	covered := CompositeScore(Scores{KeywordCoverage: 1}, nil)
	category := CompositeScore(Scores{CategoryRelevance: 1}, nil)

	if !(similar > covered && covered > category) {
		t.Errorf("expected similarity > coverage > category, got %f, %f, %f", similar, covered, category)
	}
}
