package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/onnwee/assessrec/internal/catalog"
	"github.com/onnwee/assessrec/internal/ranking"
)

func record(desc string, codes ...string) catalog.Assessment {
	if codes == nil {
		codes = []string{}
	}
	return catalog.Assessment{
		URL:             "https://example.com/" + desc,
		Description:     desc,
		TestType:        codes,
		AdaptiveSupport: "No",
		RemoteSupport:   "Yes",
		Duration:        catalog.NumericDuration(30),
	}
}

func sampleCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Assessment{
		record("Python programming knowledge test", "K"),
		record("Leadership and people management assessment", "P"),
		record("Numerical reasoning aptitude test", "A"),
		record("Customer service situational judgement", "B"),
		record("Java enterprise edition developer exam", "K"),
		record("SQL database administration quiz", "K"),
		record("Verbal reasoning and comprehension", "A"),
		record("Occupational personality questionnaire", "P"),
		record("Emotional intelligence profile", "E"),
		record("Cognitive ability screening", "C"),
		record("Graduate development centre exercise", "D", "B"),
		record("Sales motivation inventory", "P"),
	})
}

func TestRecommend_SingleRecordScenario(t *testing.T) {
	cat := catalog.New([]catalog.Assessment{{
		Description:     "Java developer aptitude test",
		TestType:        []string{"A"},
		AdaptiveSupport: "Yes",
		RemoteSupport:   "Yes",
		Duration:        catalog.TextDuration("60"),
	}})
	e := New(cat)

	top, err := e.Rank(context.Background(), "Looking for a candidate with strong Java skills and aptitude for problem solving")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(top))
	}
	if top[0].Assessment.Description != "Java developer aptitude test" {
		t.Errorf("unexpected record %q", top[0].Assessment.Description)
	}
	if top[0].Scores.KeywordCoverage <= 0 {
		t.Errorf("expected keyword coverage > 0, got %f", top[0].Scores.KeywordCoverage)
	}
	if top[0].Scores.CategoryRelevance <= 0 {
		t.Errorf("expected category relevance > 0, got %f", top[0].Scores.CategoryRelevance)
	}
	if top[0].Scores.Similarity <= 0 {
		t.Errorf("expected similarity > 0, got %f", top[0].Scores.Similarity)
	}
}

func TestRecommend_LeadershipOutranksPython(t *testing.T) {
	cat := catalog.New([]catalog.Assessment{
		record("Python programming knowledge test", "K"),
		record("Leadership and people management assessment", "P"),
	})
	e := New(cat)

	top, err := e.Rank(context.Background(), "Seeking a leader with strong communication and people skills")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 results, got %d", len(top))
	}
	if top[0].Position != 1 {
		t.Fatalf("expected leadership record first, got %q", top[0].Assessment.Description)
	}
	if !(top[0].Score > top[1].Score) {
		t.Errorf("expected strictly higher score, got %f and %f", top[0].Score, top[1].Score)
	}
}

func TestRecommend_EmptyQueryFallsBack(t *testing.T) {
	for _, query := range []string{"", "   ", "!!! ???"} {
		for _, cat := range []*catalog.Catalog{
			catalog.New([]catalog.Assessment{record("Only record", "K")}),
			sampleCatalog(),
		} {
			got, err := New(cat).Recommend(context.Background(), query)
			if err != nil {
				t.Fatalf("Recommend(%q) error = %v", query, err)
			}
			if len(got) != 1 {
				t.Fatalf("Recommend(%q) returned %d records, want 1", query, len(got))
			}
			if got[0].Description != cat.At(0).Description {
				t.Errorf("expected first catalog record, got %q", got[0].Description)
			}
		}
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	for _, cat := range []*catalog.Catalog{nil, catalog.New(nil)} {
		got, err := New(cat).Recommend(context.Background(), "Java developer")
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no results, got %d", len(got))
		}
	}
}

func TestRecommend_ResultBoundsAndIntegrity(t *testing.T) {
	cat := sampleCatalog()
	e := New(cat)

	known := make(map[string]catalog.Assessment, cat.Len())
	for _, a := range cat.All() {
		known[a.URL] = a
	}

	queries := []string{
		"Java developer with SQL knowledge",
		"We need a team leader with emotional intelligence",
		"graduate scheme",
		"zzz qqq",
		"Numerical and verbal reasoning for analysts",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			got, err := e.Recommend(context.Background(), q)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if len(got) < 1 || len(got) > ranking.MaxResults {
				t.Fatalf("expected 1..%d results, got %d", ranking.MaxResults, len(got))
			}
			seen := make(map[string]bool)
			for _, a := range got {
				orig, ok := known[a.URL]
				if !ok || !reflect.DeepEqual(orig, a) {
					t.Errorf("result %q is not a catalog record", a.Description)
				}
				if seen[a.URL] {
					t.Errorf("record %q returned twice", a.Description)
				}
				seen[a.URL] = true
			}
		})
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	e := New(sampleCatalog())
	query := "Looking for a Java developer with strong reasoning skills"

	first, err := e.Recommend(context.Background(), query)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Recommend(context.Background(), query)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("same query produced different output")
		}
	}
}

func TestRecommend_ExactDescriptionRanksFirst(t *testing.T) {
	cat := sampleCatalog()
	e := New(cat)

	for _, pos := range []int{0, 2, 8} {
		want := cat.At(pos)
		top, err := e.Rank(context.Background(), want.Description)
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}
		if top[0].Position != pos {
			t.Errorf("query %q ranked %q first", want.Description, top[0].Assessment.Description)
		}
	}
}

func TestRecommend_TiesKeepCatalogOrder(t *testing.T) {
	first := record("Java programming test", "K")
	second := record("Java programming test", "K")
	second.URL = "https://example.com/second"
	cat := catalog.New([]catalog.Assessment{
		record("Unrelated questionnaire", "P"),
		first,
		second,
	})

	top, err := New(cat).Rank(context.Background(), "java programming")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if top[0].Score != top[1].Score {
		t.Fatalf("expected a tie, got %f and %f", top[0].Score, top[1].Score)
	}
	if top[0].Position != 1 || top[1].Position != 2 {
		t.Errorf("expected catalog order 1, 2 for tied records, got %d, %d", top[0].Position, top[1].Position)
	}
}

func TestRecommend_TruncatesToLimit(t *testing.T) {
	cat := sampleCatalog()

	got, err := New(cat).Recommend(context.Background(), "test assessment questionnaire")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != ranking.MaxResults {
		t.Errorf("expected %d results, got %d", ranking.MaxResults, len(got))
	}

	got, err = New(cat, WithLimit(3)).Recommend(context.Background(), "test assessment questionnaire")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 results, got %d", len(got))
	}
}

func TestRecommend_WeightBoundaries(t *testing.T) {
	cat := catalog.New([]catalog.Assessment{
		record("General knowledge quiz", "A"),
		record("Aptitude battery", "K"),
	})
	query := "aptitude"

	tests := []struct {
		name      string
		weights   *ranking.Weights
		wantFirst int
	}{
		{"default weights", nil, 1},
		{"similarity only", &ranking.Weights{Similarity: 1}, 1},
		{"keyword coverage only", &ranking.Weights{KeywordCoverage: 1}, 1},
		{"category relevance only", &ranking.Weights{CategoryRelevance: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, err := New(cat, WithWeights(tt.weights)).Rank(context.Background(), query)
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if top[0].Position != tt.wantFirst {
				t.Errorf("expected record %d first, got %d (scores %+v)", tt.wantFirst, top[0].Position, top)
			}
		})
	}
}

func TestRecommend_CoverageBound(t *testing.T) {
	top, err := New(sampleCatalog()).Rank(context.Background(), "Python SQL Java leadership communication")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, c := range top {
		if c.Scores.KeywordCoverage < 0 || c.Scores.KeywordCoverage > 1 {
			t.Errorf("coverage %f out of range for %q", c.Scores.KeywordCoverage, c.Assessment.Description)
		}
		if c.Scores.CategoryRelevance < 0 || c.Scores.CategoryRelevance > 1 {
			t.Errorf("category relevance %f out of range for %q", c.Scores.CategoryRelevance, c.Assessment.Description)
		}
	}
}

func TestRecommend_ScoringFaultIsReported(t *testing.T) {
	e := New(sampleCatalog())
	e.docs = e.docs[:1]

	got, err := e.Recommend(context.Background(), "Java developer")
	if !errors.Is(err, ErrScoringFault) {
		t.Fatalf("expected ErrScoringFault, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no results on fault, got %d", len(got))
	}
}

func TestRecommend_ConcurrentUse(t *testing.T) {
	e := New(sampleCatalog())
	want, err := e.Recommend(context.Background(), "Java developer")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			got, err := e.Recommend(context.Background(), "Java developer")
			if err == nil && !reflect.DeepEqual(got, want) {
				err = errors.New("concurrent result differs")
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
