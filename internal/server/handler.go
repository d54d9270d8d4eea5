// Package server exposes the search engine over HTTP: document indexing,
// search, suggestions, statistics, index export/import, and cache
// administration. Responses use a uniform JSON envelope with success flag,
// timestamp, and per-request performance metadata.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/web8-labs/ultrasearch/internal/analytics"
	"github.com/web8-labs/ultrasearch/internal/engine/cache"
	"github.com/web8-labs/ultrasearch/internal/engine/index"
	"github.com/web8-labs/ultrasearch/internal/engine/query"
	apperrors "github.com/web8-labs/ultrasearch/pkg/errors"
	"github.com/web8-labs/ultrasearch/pkg/logger"
	"github.com/web8-labs/ultrasearch/pkg/metrics"
	"github.com/web8-labs/ultrasearch/pkg/middleware"
	"github.com/web8-labs/ultrasearch/pkg/resilience"
)

const maxImportBytes = 64 << 20

// perfStats is the per-request performance block of the response envelope.
type perfStats struct {
	QueryTimeMs float64 `json:"queryTime"`
	ResultCount int     `json:"resultCount"`
}

type apiResponse struct {
	Success     bool       `json:"success"`
	Data        any        `json:"data,omitempty"`
	Error       string     `json:"error,omitempty"`
	Timestamp   string     `json:"timestamp"`
	Performance *perfStats `json:"performance,omitempty"`
}

// Handler serves the search API. Collector and Metrics may be nil when those
// subsystems are disabled.
type Handler struct {
	engine        *query.Engine
	resultCache   *cache.ResultCache
	collector     *analytics.Collector
	metrics       *metrics.Metrics
	searchTimeout time.Duration
	logger        *slog.Logger
}

// NewHandler wires the serving layer. resultCache may be nil to disable
// query caching.
func NewHandler(engine *query.Engine, resultCache *cache.ResultCache, collector *analytics.Collector, m *metrics.Metrics, searchTimeout time.Duration) *Handler {
	return &Handler{
		engine:        engine,
		resultCache:   resultCache,
		collector:     collector,
		metrics:       m,
		searchTimeout: searchTimeout,
		logger:        slog.Default().With("component", "http-handler"),
	}
}

// IndexDocument handles POST /api/v1/documents.
func (h *Handler) IndexDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var doc index.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidDocument, http.StatusBadRequest, "malformed document body: %v", err))
		return
	}
	if doc.Type == "" {
		doc.Type = index.TypeDocument
	}
	if err := validateDocument(doc); err != nil {
		h.writeError(w, err)
		return
	}

	start := time.Now()
	store := h.engine.Store()
	store.Add(doc)
	h.invalidateCache(r)
	h.afterIndexing()

	if h.collector != nil {
		tokens := store.Tokenizer().Tokenize(doc.Title + " " + doc.Content)
		h.collector.Track(analytics.IndexEvent{
			Type:       analytics.EventIndexDoc,
			DocumentID: doc.ID,
			DocType:    string(doc.Type),
			TokenCount: len(tokens),
			SizeBytes:  doc.Metadata.Size,
			Timestamp:  time.Now().UTC(),
		})
	}

	log.Info("document indexed", "doc_id", doc.ID, "type", doc.Type)
	h.writeJSON(w, http.StatusCreated, apiResponse{
		Success:   true,
		Data:      map[string]any{"documentId": doc.ID, "indexed": true},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Performance: &perfStats{
			QueryTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
			ResultCount: 1,
		},
	})
}

// Search handles GET and POST /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	q, err := parseSearchRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if strings.TrimSpace(q.Query) == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidQuery, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}

	start := time.Now()
	result, cacheHit, err := h.executeSearch(r, q)
	if err != nil {
		h.recordSearchMetrics("error", cacheHit, start, 0)
		h.writeError(w, err)
		return
	}

	resultType := "hit"
	if result.TotalResults == 0 {
		resultType = "zero_result"
	}
	h.recordSearchMetrics(resultType, cacheHit, start, len(result.Results))

	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventSearch,
			Query:     q.Query,
			Fuzzy:     q.Fuzzy,
			SortBy:    string(q.SortBy),
			TotalHits: result.TotalResults,
			Returned:  len(result.Results),
			LatencyMs: time.Since(start).Milliseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(r.Context()),
		})
	}

	log.Debug("search served",
		"query", q.Query,
		"total", result.TotalResults,
		"cache_hit", cacheHit,
	)
	h.writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Data:      result,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Performance: &perfStats{
			QueryTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
			ResultCount: len(result.Results),
		},
	})
}

// Suggest handles GET /api/v1/suggest.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	start := time.Now()
	suggestions := h.engine.Suggest(prefix, limit)
	if h.metrics != nil {
		h.metrics.SuggestRequestsTotal.Inc()
	}

	h.writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Data:      map[string]any{"query": prefix, "suggestions": suggestions},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Performance: &perfStats{
			QueryTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
			ResultCount: len(suggestions),
		},
	})
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := h.engine.Stats()
	h.writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Data:      stats,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Performance: &perfStats{
			QueryTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
			ResultCount: stats.TotalDocuments,
		},
	})
}

// ExportIndex handles GET /api/v1/index/export. The payload is the raw
// snapshot, not wrapped in the envelope, so it can be re-imported verbatim.
func (h *Handler) ExportIndex(w http.ResponseWriter, r *http.Request) {
	data, err := h.engine.Store().Export()
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="index-export.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export payload", "error", err)
	}
}

// ImportIndex handles POST /api/v1/index/import. A rejected snapshot leaves
// the live index untouched.
func (h *Handler) ImportIndex(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		h.writeError(w, apperrors.Newf(apperrors.ErrImportCorrupt, http.StatusBadRequest, "reading import body: %v", err))
		return
	}
	if len(data) > maxImportBytes {
		h.writeError(w, apperrors.Newf(apperrors.ErrImportCorrupt, http.StatusBadRequest, "import payload exceeds %d bytes", maxImportBytes))
		return
	}

	start := time.Now()
	store := h.engine.Store()
	if err := store.Import(data); err != nil {
		h.writeError(w, err)
		return
	}
	h.invalidateCache(r)
	h.afterIndexing()

	stats := store.Stats()
	log.Info("index imported", "documents", stats.TotalDocuments)
	h.writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Data:      map[string]any{"imported": true, "documents": stats.TotalDocuments},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Performance: &perfStats{
			QueryTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
			ResultCount: stats.TotalDocuments,
		},
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.resultCache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrCacheDisabled, http.StatusServiceUnavailable, "query cache is disabled"))
		return
	}
	h.writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Data:      h.resultCache.Stats(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.resultCache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrCacheDisabled, http.StatusServiceUnavailable, "query cache is disabled"))
		return
	}
	h.resultCache.Invalidate(r.Context())
	h.writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Data:      map[string]any{"invalidated": true},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) executeSearch(r *http.Request, q query.Query) (*query.Result, bool, error) {
	run := func(ctx context.Context) (*query.Result, error) {
		var result *query.Result
		err := resilience.WithTimeout(ctx, h.searchTimeout, "search", func(tctx context.Context) error {
			var searchErr error
			result, searchErr = h.engine.Search(tctx, q)
			return searchErr
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, apperrors.New(apperrors.ErrTimeout, http.StatusServiceUnavailable, "search timed out")
			}
			return nil, err
		}
		return result, nil
	}

	if h.resultCache == nil {
		result, err := run(r.Context())
		return result, false, err
	}
	return h.resultCache.GetOrCompute(r.Context(), q, run)
}

func (h *Handler) invalidateCache(r *http.Request) {
	if h.resultCache != nil {
		h.resultCache.Invalidate(r.Context())
	}
}

func (h *Handler) afterIndexing() {
	if h.metrics == nil {
		return
	}
	store := h.engine.Store()
	h.metrics.DocsIndexedTotal.Inc()
	h.metrics.IndexedDocuments.Set(float64(store.TotalDocuments()))
	h.metrics.IndexedTerms.Set(float64(store.TermCountTotal()))
}

func (h *Handler) recordSearchMetrics(resultType string, cacheHit bool, start time.Time, returned int) {
	if h.metrics == nil {
		return
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	h.metrics.SearchResultsCount.Observe(float64(returned))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	h.writeJSON(w, status, apiResponse{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// parseSearchRequest builds a Query from either URL parameters (GET) or a
// JSON body (POST).
func parseSearchRequest(r *http.Request) (query.Query, error) {
	if r.Method == http.MethodPost {
		var q query.Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			return query.Query{}, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "malformed search body: %v", err)
		}
		if q.SortBy != "" && !q.SortBy.Valid() {
			return query.Query{}, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "unknown sort order %q", q.SortBy)
		}
		if q.Type != "" && !q.Type.Valid() {
			return query.Query{}, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "unknown document type %q", q.Type)
		}
		return q, nil
	}

	params := r.URL.Query()
	q := query.Query{
		Query: params.Get("q"),
		Fuzzy: params.Get("fuzzy") == "true",
	}
	if raw := params.Get("maxResults"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query.Query{}, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "invalid maxResults %q", raw)
		}
		q.Limit = limit
	}
	if raw := params.Get("type"); raw != "" {
		t := index.DocType(raw)
		if !t.Valid() {
			return query.Query{}, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "unknown document type %q", raw)
		}
		q.Type = t
	}
	if raw := params.Get("sortBy"); raw != "" {
		order := query.SortOrder(raw)
		if !order.Valid() {
			return query.Query{}, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "unknown sort order %q", raw)
		}
		q.SortBy = order
	}

	filters := &query.Filters{}
	hasFilters := false
	if langs := params.Get("language"); langs != "" {
		filters.Languages = strings.Split(langs, ",")
		hasFilters = true
	}
	if tags := params.Get("tags"); tags != "" {
		filters.Tags = strings.Split(tags, ",")
		hasFilters = true
	}
	from, okFrom, err := parseTimeParam(params.Get("dateFrom"))
	if err != nil {
		return query.Query{}, err
	}
	to, okTo, err := parseTimeParam(params.Get("dateTo"))
	if err != nil {
		return query.Query{}, err
	}
	if okFrom || okTo {
		if !okTo {
			to = time.Now().UTC()
		}
		filters.DateRange = &query.DateRange{From: from, To: to}
		hasFilters = true
	}
	minRaw, maxRaw := params.Get("sizeMin"), params.Get("sizeMax")
	if minRaw != "" || maxRaw != "" {
		sr := &query.SizeRange{Max: 1<<63 - 1}
		if minRaw != "" {
			v, err := strconv.ParseInt(minRaw, 10, 64)
			if err != nil {
				return query.Query{}, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "invalid sizeMin %q", minRaw)
			}
			sr.Min = v
		}
		if maxRaw != "" {
			v, err := strconv.ParseInt(maxRaw, 10, 64)
			if err != nil {
				return query.Query{}, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "invalid sizeMax %q", maxRaw)
			}
			sr.Max = v
		}
		filters.SizeRange = sr
		hasFilters = true
	}
	if hasFilters {
		q.Filters = filters
	}
	return q, nil
}

func parseTimeParam(raw string) (time.Time, bool, error) {
	if raw == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, apperrors.Newf(apperrors.ErrInvalidQuery, http.StatusBadRequest, "invalid date %q (want RFC3339 or YYYY-MM-DD)", raw)
}
