package server

import (
	"net/http"
	"time"

	"github.com/web8-labs/ultrasearch/pkg/health"
	"github.com/web8-labs/ultrasearch/pkg/metrics"
	"github.com/web8-labs/ultrasearch/pkg/middleware"
)

// NewRouter registers all API routes and wraps them in the standard
// middleware chain: request ID, CORS, metrics, request timeout.
// analyticsStats may be nil when the analytics aggregator is not running.
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, requestTimeout time.Duration, analyticsStats http.HandlerFunc) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents", h.IndexDocument)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/index/export", h.ExportIndex)
	mux.HandleFunc("POST /api/v1/index/import", h.ImportIndex)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	if analyticsStats != nil {
		mux.HandleFunc("GET /api/v1/analytics", analyticsStats)
	}
	if checker != nil {
		mux.HandleFunc("GET /health/live", checker.LiveHandler())
		mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	}

	var handler http.Handler = mux
	if requestTimeout > 0 {
		handler = middleware.Timeout(requestTimeout)(handler)
	}
	if m != nil {
		handler = middleware.Metrics(m)(handler)
	}
	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
	handler = middleware.RequestID(handler)
	return handler
}
