package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/onnwee/assessrec/internal/catalog"
	"github.com/onnwee/assessrec/internal/middleware"
	"github.com/onnwee/assessrec/internal/recommend"
)

// MaxRequestBodyBytes bounds the /recommend request body.
const MaxRequestBodyBytes = 64 << 10

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Query *string `json:"query"`
}

// RecommendResponse is the body of a successful POST /recommend.
type RecommendResponse struct {
	RecommendedAssessments []catalog.Assessment `json:"recommended_assessments"`
}

// Recommender produces ranked catalog records for a query.
// *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, query string) ([]catalog.Assessment, error)
}

var _ Recommender = (*recommend.Engine)(nil)

type recommenderRef struct {
	r Recommender
}

// RecommendHandlers serves recommendations from a Recommender installed once
// the catalog has loaded. Until then requests get 503.
type RecommendHandlers struct {
	engine atomic.Pointer[recommenderRef]
}

// NewRecommendHandlers creates handlers with no engine installed.
func NewRecommendHandlers() *RecommendHandlers {
	return &RecommendHandlers{}
}

// SetEngine installs the recommender used for every subsequent request.
func (h *RecommendHandlers) SetEngine(r Recommender) {
	h.engine.Store(&recommenderRef{r: r})
}

// Ready reports whether a recommender is installed.
func (h *RecommendHandlers) Ready() bool {
	return h.engine.Load() != nil
}

// Recommend handles POST /recommend.
func (h *RecommendHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeCodedError(w, r, ErrCodeBadRequest, "Request body too large")
			return
		}
		writeCodedError(w, r, ErrCodeValidation, "Request body must be a JSON object with a string query")
		return
	}
	if req.Query == nil || strings.TrimSpace(*req.Query) == "" {
		writeCodedError(w, r, ErrCodeValidation, "query is required")
		return
	}

	ref := h.engine.Load()
	if ref == nil {
		writeCodedError(w, r, ErrCodeUnavailable, "Catalog is still loading")
		return
	}

	ctx := r.Context()
	results, err := ref.r.Recommend(ctx, *req.Query)
	if err != nil {
		slog.ErrorContext(ctx, "recommendation failed",
			"error", err,
			"scoring_fault", errors.Is(err, recommend.ErrScoringFault),
			"trace_id", middleware.GetTraceID(r))
		writeCodedError(w, r, ErrCodeInternal, "Failed to compute recommendations")
		return
	}

	writeJSON(ctx, w, http.StatusOK, RecommendResponse{RecommendedAssessments: results})
}
