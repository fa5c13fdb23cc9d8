package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/onnwee/assessrec/internal/middleware"
)

// HealthChecker defines the interface for components that can be health checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ReadinessFunc reports whether a component has finished starting up.
type ReadinessFunc func() bool

// readyTimeout bounds the dependency checks of a single readiness probe.
const readyTimeout = 5 * time.Second

// HealthHandlers provides health and readiness check endpoints for Kubernetes probes.
type HealthHandlers struct {
	catalogReady ReadinessFunc
	checkers     map[string]HealthChecker
	now          func() time.Time
}

// HealthHandlersConfig configures the health check handlers.
type HealthHandlersConfig struct {
	// CatalogReady reports whether the catalog is loaded. Nil means loaded.
	CatalogReady ReadinessFunc
	// Checkers are optional dependencies probed by Ready, keyed by the name
	// reported in the response ("redis", "database").
	Checkers map[string]HealthChecker
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	checkers := make(map[string]HealthChecker, len(config.Checkers))
	for name, c := range config.Checkers {
		if c != nil {
			checkers[name] = c
		}
	}
	return &HealthHandlers{
		catalogReady: config.CatalogReady,
		checkers:     checkers,
		now:          time.Now,
	}
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

func (h *HealthHandlers) catalogStatus() string {
	if h.catalogReady == nil || h.catalogReady() {
		return "ok"
	}
	return "loading"
}

// Health handles GET /health (liveness probe). It answers 200 while the
// process runs and reports whether the catalog has loaded.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Checks: map[string]string{
			"runtime": "ok",
			"catalog": h.catalogStatus(),
		},
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready (readiness probe). It answers 200 once the catalog
// is loaded and every configured dependency responds, 503 otherwise.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	checks := map[string]string{"catalog": h.catalogStatus()}
	healthy := checks["catalog"] == "ok"

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checkers[name].HealthCheck(ctx); err != nil {
			checks[name] = "error"
			healthy = false
			slog.WarnContext(ctx, "dependency health check failed", "dependency", name, "error", err)
			continue
		}
		checks[name] = "ok"
	}

	status, statusCode := "ready", http.StatusOK
	if !healthy {
		status, statusCode = "unavailable", http.StatusServiceUnavailable
		middleware.UpdateResponseContext(w, middleware.SetErrorCode(r.Context(), ErrCodeUnavailable))
	}

	writeJSON(ctx, w, statusCode, HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
