package ranking

import (
	"math"
	"testing"
)

func TestKeywordCoverage(t *testing.T) {
	doc := "java develop aptitud test ye ye durat 60"

	tests := []struct {
		name     string
		terms    []string
		expected float64
	}{
		{"no terms", nil, 0},
		{"all found", []string{"java", "aptitud"}, 1},
		{"some found", []string{"java", "python", "aptitud", "sql"}, 0.5},
		{"none found", []string{"python"}, 0},
		{"substring of a token counts", []string{"velop"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeywordCoverage(tt.terms, doc)
			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
			if got < 0 || got > 1 {
				t.Errorf("coverage %f outside [0,1]", got)
			}
		})
	}
}

func TestCategoryCodes(t *testing.T) {
	got := CategoryCodes([]string{"K", "Ability & Aptitude", "pk", "PB"})
	want := []rune{'K', 'A', 'A', 'P', 'B'}
	if len(got) != len(want) {
		t.Fatalf("CategoryCodes() = %q, want %q", string(got), string(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("code %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCategoryRelevance(t *testing.T) {
	tests := []struct {
		name      string
		terms     []string
		testTypes []string
		expected  float64
	}{
		{
			name:      "no codes",
			terms:     []string{"aptitud"},
			testTypes: []string{},
			expected:  0,
		},
		{
			name:      "no terms",
			terms:     nil,
			testTypes: []string{"A"},
			expected:  0,
		},
		{
			name:      "stemmed term inside category word",
			terms:     []string{"aptitud"},
			testTypes: []string{"A"},
			expected:  1,
		},
		{
			name:      "category word inside term",
			terms:     []string{"softwar"},
			testTypes: []string{"P"},
			expected:  1,
		},
		{
			name:      "one of two terms matches",
			terms:     []string{"java", "aptitud"},
			testTypes: []string{"A"},
			expected:  0.5,
		},
		{
			name:      "unmapped code counts in denominator",
			terms:     []string{"aptitud"},
			testTypes: []string{"A", "S"},
			expected:  0.5,
		},
		{
			name:      "packed codes",
			terms:     []string{"skill"},
			testTypes: []string{"KP"},
			expected:  0.5,
		},
		{
			name:      "lowercase letters are not codes",
			terms:     []string{"skill"},
			testTypes: []string{"k"},
			expected:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategoryRelevance(tt.terms, tt.testTypes, nil)
			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestCategoryRelevance_CustomTable(t *testing.T) {
	table := Categories{'X': {"golang"}}

	if got := CategoryRelevance([]string{"golang"}, []string{"X"}, table); got != 1 {
		t.Errorf("expected 1 with custom table, got %f", got)
	}
	if got := CategoryRelevance([]string{"aptitud"}, []string{"A"}, table); got != 0 {
		t.Errorf("expected default codes to be absent from custom table, got %f", got)
	}
}

func TestDefaultCategories_Families(t *testing.T) {
	cats := DefaultCategories()
	for _, code := range "KAPBCDE" {
		words, ok := cats[code]
		if !ok {
			t.Errorf("missing code %q", code)
			continue
		}
		if len(words) < 3 || len(words) > 4 {
			t.Errorf("code %q has %d words, want 3 or 4", code, len(words))
		}
	}
}
