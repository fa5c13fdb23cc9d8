// Package recommend ranks catalog assessments against a free-text query.
//
// An Engine owns one immutable catalog. Every call builds its own TF-IDF index
// and candidate list, so an Engine is safe for concurrent use without locks.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/assessrec/internal/catalog"
	"github.com/onnwee/assessrec/internal/corpus"
	"github.com/onnwee/assessrec/internal/ranking"
	"github.com/onnwee/assessrec/internal/textproc"
	"github.com/onnwee/assessrec/internal/tracing"
)

// ErrScoringFault wraps a panic raised while scoring. It signals a programming
// error, not bad input.
var ErrScoringFault = errors.New("scoring fault")

// Candidate is one scored catalog record.
type Candidate struct {
	Position   int
	Assessment catalog.Assessment
	Scores     ranking.Scores
	Score      float64
}

// Engine scores queries against a catalog.
type Engine struct {
	catalog    *catalog.Catalog
	docs       []*corpus.Document
	weights    *ranking.Weights
	extractor  *textproc.Extractor
	categories ranking.Categories
	limit      int
	metrics    *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights sets the signal weights.
func WithWeights(w *ranking.Weights) Option {
	return func(e *Engine) {
		if w != nil {
			e.weights = w
		}
	}
}

// WithExtractor replaces the key-term extractor.
func WithExtractor(x *textproc.Extractor) Option {
	return func(e *Engine) {
		if x != nil {
			e.extractor = x
		}
	}
}

// WithCategories replaces the test-type code table.
func WithCategories(c ranking.Categories) Option {
	return func(e *Engine) {
		if c != nil {
			e.categories = c
		}
	}
}

// WithLimit caps the number of results. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithMetrics records recommendation metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New builds an Engine for cat. Record documents are normalized here once;
// they only depend on the catalog.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	if cat == nil {
		cat = catalog.New(nil)
	}
	e := &Engine{
		catalog:    cat,
		weights:    ranking.DefaultWeights(),
		extractor:  textproc.DefaultExtractor(),
		categories: ranking.DefaultCategories(),
		limit:      ranking.MaxResults,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.docs = make([]*corpus.Document, cat.Len())
	for i := range e.docs {
		e.docs[i] = corpus.NewDocument(corpus.DocumentText(cat.At(i)))
	}
	if e.metrics != nil {
		e.metrics.SetCatalogRecords(cat.Len())
	}
	return e
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Recommend returns up to the result limit of catalog records, best first. A
// non-empty catalog always yields at least one record.
func (e *Engine) Recommend(ctx context.Context, query string) ([]catalog.Assessment, error) {
	candidates, err := e.Rank(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Assessment, len(candidates))
	for i, c := range candidates {
		out[i] = c.Assessment
	}
	return out, nil
}

// Rank is Recommend with the per-signal scores of every returned record.
func (e *Engine) Rank(ctx context.Context, query string) (top []Candidate, err error) {
	start := time.Now()
	ctx, endSpan := tracing.StartSpan(ctx, "recommend.rank",
		attribute.Int("catalog.records", e.catalog.Len()))
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "recommendation scoring panicked",
				"panic", r,
				"stack", string(debug.Stack()))
			top, err = nil, fmt.Errorf("%w: %v", ErrScoringFault, r)
		}
		endSpan(err)
		e.metrics.observe(err, time.Since(start))
	}()

	top, fallback := e.rank(query)
	if fallback {
		tracing.AddEvent(ctx, "fallback")
		e.metrics.incFallback()
	}
	tracing.SetAttributes(ctx, attribute.Int("recommend.results", len(top)))
	return top, nil
}

// rank may panic on an internal inconsistency; Rank turns that into an error.
func (e *Engine) rank(query string) ([]Candidate, bool) {
	if e.catalog.Len() == 0 {
		return []Candidate{}, false
	}

	queryDoc := textproc.Join(textproc.Normalize(query))
	keyTerms := e.extractor.Extract(query)

	var top []Candidate
	if queryDoc != "" || len(keyTerms) > 0 {
		top = e.score(queryDoc, keyTerms)
		if len(top) > e.limit {
			top = top[:e.limit]
		}
	}
	if len(top) == 0 {
		return []Candidate{{Position: 0, Assessment: e.catalog.At(0)}}, true
	}
	return top, false
}

// score rates every record and sorts them best first. Equal scores keep
// catalog order.
func (e *Engine) score(queryDoc string, keyTerms []string) []Candidate {
	index := corpus.NewIndex(corpus.NewDocument(queryDoc), e.docs)

	candidates := make([]Candidate, e.catalog.Len())
	for i := range candidates {
		a := e.catalog.At(i)
		s := ranking.Scores{
			Similarity:        index.Similarity(i),
			KeywordCoverage:   ranking.KeywordCoverage(keyTerms, e.docs[i].Text()),
			CategoryRelevance: ranking.CategoryRelevance(keyTerms, a.TestType, e.categories),
		}
		candidates[i] = Candidate{
			Position:   i,
			Assessment: a,
			Scores:     s,
			Score:      ranking.CompositeScore(s, e.weights),
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
