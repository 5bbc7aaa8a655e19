package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ishro/aura-pipeline/internal/config"
	"github.com/ishro/aura-pipeline/internal/core/ports"
	"github.com/ishro/aura-pipeline/internal/observability/metrics"
)

type Router struct {
	cfg      config.Config
	ingest   ports.DocumentIngestor
	runner   ports.StageRunner
	reader   ports.LifecycleReader
	reviews  ports.ReviewService
	exporter ports.WorklistExporter
	metrics  *metrics.HTTPServerMetrics
}

type RouterOption func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
	}
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	runner ports.StageRunner,
	reader ports.LifecycleReader,
	reviews ports.ReviewService,
	exporter ports.WorklistExporter,
	opts ...RouterOption,
) *Router {
	rt := &Router{
		cfg:      cfg,
		ingest:   ingest,
		runner:   runner,
		reader:   reader,
		reviews:  reviews,
		exporter: exporter,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", rt.openAPISpec)

	mux.HandleFunc("POST /v1/documents/upload", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentLifecycle)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/documents/{id}/parse", rt.triggerStage)
	mux.HandleFunc("POST /v1/documents/{id}/structure", rt.triggerStage)
	mux.HandleFunc("POST /v1/documents/{id}/predict", rt.triggerStage)
	mux.HandleFunc("GET /v1/documents/{id}/stages/{stage}", rt.getStageResult)

	mux.HandleFunc("GET /v1/predictions/export", rt.exportWorklist)
	mux.HandleFunc("GET /v1/predictions/document/{documentID}", rt.getPredictionByDocument)
	mux.HandleFunc("GET /v1/predictions/{id}", rt.getPrediction)
	mux.HandleFunc("PATCH /v1/predictions/{id}/review", rt.reviewPrediction)

	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, defaultMaxConcurrent, defaultBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

const (
	defaultMaxConcurrent    = 256
	defaultBackpressureWait = 100 * time.Millisecond
)
