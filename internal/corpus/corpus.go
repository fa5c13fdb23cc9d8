// Package corpus builds the request-local TF-IDF model that relates a query to
// every catalog document.
//
// Document 0 of an Index is always the query; catalog record i is document i+1.
// Inverse document frequency is computed over the whole set, query included:
//
//	idf(t) = 1 + ln(N / (1 + df(t)))
//
// and the similarity of record i is the sum, over every query token (repeats
// included), of the raw count of that token in the record times its idf.
package corpus

import (
	"fmt"
	"math"
	"strings"

	"github.com/onnwee/assessrec/internal/catalog"
	"github.com/onnwee/assessrec/internal/textproc"
)

// DocumentText flattens a record into its normalized pseudo-document: the
// description, test types, support flags and a "duration <value>" phrase.
func DocumentText(a catalog.Assessment) string {
	parts := []string{
		a.Description,
		strings.Join(a.TestType, " "),
		a.AdaptiveSupport,
		a.RemoteSupport,
		"duration " + a.Duration.String(),
	}
	return textproc.Join(textproc.Normalize(strings.Join(parts, " ")))
}

// Document is a tokenized pseudo-document with its term counts.
type Document struct {
	text   string
	tokens []string
	counts map[string]int
}

// NewDocument splits an already normalized, space-joined text.
func NewDocument(text string) *Document {
	tokens := strings.Fields(text)
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return &Document{text: text, tokens: tokens, counts: counts}
}

// Text returns the document as it was given.
func (d *Document) Text() string { return d.text }

// Tokens returns the document tokens in order.
func (d *Document) Tokens() []string { return d.tokens }

// Count returns the raw frequency of term in the document.
func (d *Document) Count(term string) int { return d.counts[term] }

// Index is the TF-IDF model for one query against a fixed set of documents.
type Index struct {
	docs []*Document
	df   map[string]int
}

// Build parses the query and the catalog documents and indexes them.
func Build(queryDoc string, docs []string) *Index {
	parsed := make([]*Document, len(docs))
	for i, d := range docs {
		parsed[i] = NewDocument(d)
	}
	return NewIndex(NewDocument(queryDoc), parsed)
}

// NewIndex indexes pre-parsed documents. Documents are read only, so the same
// catalog documents can be shared across concurrent requests.
func NewIndex(query *Document, docs []*Document) *Index {
	all := make([]*Document, 0, len(docs)+1)
	all = append(all, query)
	all = append(all, docs...)

	df := make(map[string]int)
	for _, d := range all {
		for term := range d.counts {
			df[term]++
		}
	}
	return &Index{docs: all, df: df}
}

// Len returns the number of catalog documents, excluding the query.
func (x *Index) Len() int { return len(x.docs) - 1 }

// IDF returns the inverse document frequency of term over the whole set.
func (x *Index) IDF(term string) float64 {
	return 1 + math.Log(float64(len(x.docs))/float64(1+x.df[term]))
}

// Similarity scores catalog document i against the query. It panics when i is
// not a catalog position.
func (x *Index) Similarity(i int) float64 {
	if i < 0 || i >= x.Len() {
		panic(fmt.Sprintf("corpus: document %d out of range [0,%d)", i, x.Len()))
	}
	doc := x.docs[i+1]

	var score float64
	for _, term := range x.docs[0].tokens {
		if n := doc.counts[term]; n > 0 {
			score += float64(n) * x.IDF(term)
		}
	}
	return score
}
