package api

import (
	"net/http"
)

// RouterConfig holds the handlers mounted by NewRouter.
type RouterConfig struct {
	Recommend *RecommendHandlers
	// RecommendLimiter wraps /recommend when set, typically middleware.RateLimiter.
	RecommendLimiter func(http.Handler) http.Handler
	Health           *HealthHandlers
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Service and Version are reported on GET /.
	Service string
	Version string
}

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

// NewRouter returns the route table of the service. Unknown paths get a
// not_found error body.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	var recommend http.Handler = http.HandlerFunc(cfg.Recommend.Recommend)
	if cfg.RecommendLimiter != nil {
		recommend = cfg.RecommendLimiter(recommend)
	}
	mux.Handle("/recommend", recommend)
	mux.HandleFunc("/health", cfg.Health.Health)
	mux.HandleFunc("/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	info := ServiceInfo{Service: cfg.Service, Version: cfg.Version}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, info)
	})

	return mux
}

// NotFound writes the standard not_found error.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeCodedError(w, r, ErrCodeNotFound, "The requested resource was not found")
}
