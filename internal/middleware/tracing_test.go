package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return recorder
}

func TestTracing_SpanNames(t *testing.T) {
	tests := []struct {
		method       string
		path         string
		expectedName string
	}{
		{http.MethodPost, "/recommend", "POST /recommend"},
		{http.MethodGet, "/metrics", "GET /metrics"},
		{http.MethodGet, "/recommend/123", "GET other"},
	}

	for _, tt := range tests {
		t.Run(tt.expectedName, func(t *testing.T) {
			recorder := installRecorder(t)

			handler := Tracing("assessrec")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			spans := recorder.Ended()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			if spans[0].Name() != tt.expectedName {
				t.Errorf("expected span name %q, got %q", tt.expectedName, spans[0].Name())
			}
		})
	}
}

func TestTracing_SkipsProbes(t *testing.T) {
	recorder := installRecorder(t)

	handler := Tracing("assessrec")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for _, path := range []string{"/health", "/ready"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if n := len(recorder.Ended()); n != 0 {
		t.Errorf("expected no spans for probes, got %d", n)
	}
}

func TestTracing_PropagatesContext(t *testing.T) {
	recorder := installRecorder(t)

	var traceID, spanID string
	handler := Tracing("assessrec")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = GetTraceID(r)
		spanID = GetSpanID(r)
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/recommend", nil))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].SpanContext().TraceID().String(); got != traceID || traceID == "" {
		t.Errorf("trace ID mismatch: span %s, handler %q", got, traceID)
	}
	if got := spans[0].SpanContext().SpanID().String(); got != spanID || spanID == "" {
		t.Errorf("span ID mismatch: span %s, handler %q", got, spanID)
	}
}

func TestGetIDs_NoActiveSpan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/recommend", nil)
	if id := GetTraceID(req); id != "" {
		t.Errorf("expected empty trace ID, got %q", id)
	}
	if id := GetSpanID(req); id != "" {
		t.Errorf("expected empty span ID, got %q", id)
	}
}
