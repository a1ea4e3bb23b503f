// Package http exposes the warnings API, liveness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/datatales/dwd-warnings-service/internal/domain"
	"github.com/datatales/dwd-warnings-service/internal/observability"
	"github.com/datatales/dwd-warnings-service/internal/pipeline"
)

// maxBodyBytes caps the inbound request body. Hand-drawn AOIs are tiny;
// anything near this limit is abuse or a mistake.
const maxBodyBytes = 10 << 20

// WarningsProcessor runs the warnings pipeline for one request.
type WarningsProcessor interface {
	Process(ctx context.Context, req pipeline.Request) (domain.Envelope, error)
}

// Server exposes the warnings API plus health and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	processor  WarningsProcessor
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/warnings, /healthz, and
// /metrics routes. Every response carries permissive CORS headers and
// disables caching.
func NewServer(addr string, processor WarningsProcessor, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		processor: processor,
		metrics:   metrics,
		logger:    logger,
	}

	mux.HandleFunc("POST /api/warnings", s.handleWarnings)
	mux.HandleFunc("OPTIONS /api/warnings", handlePreflight)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = withProxyHeaders(mux)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// withProxyHeaders applies the cross-origin and no-store caching policy
// required on every response, errors included.
func withProxyHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// warningsRequest is the inbound body shape. The AOI may arrive under
// "geojson" or "aoi", or the body may itself be raw GeoJSON. "typename" and
// "count" are accepted aliases.
type warningsRequest struct {
	GeoJSON     json.RawMessage `json:"geojson"`
	AOI         json.RawMessage `json:"aoi"`
	TypeName    string          `json:"typeName"`
	TypeNameAlt string          `json:"typename"`
	Max         *int            `json:"max"`
	Count       *int            `json:"count"`
	Raw         bool            `json:"raw"`
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, "request body unreadable: "+err.Error())
		return
	}

	// The body is either a wrapper object or raw GeoJSON. A decode failure
	// here is fine: the raw bytes still go through the extractor, which
	// produces the user-facing diagnostic.
	var req warningsRequest
	_ = json.Unmarshal(body, &req)

	payload := pickPayload(req.GeoJSON, req.AOI, body)

	pReq := pipeline.Request{
		AOI:        payload,
		TypeName:   firstNonEmpty(req.TypeName, req.TypeNameAlt),
		IncludeRaw: req.Raw,
	}
	if req.Max != nil {
		pReq.MaxFeatures = *req.Max
	} else if req.Count != nil {
		pReq.MaxFeatures = *req.Count
	}

	env, err := s.processor.Process(r.Context(), pReq)
	if err != nil {
		s.metrics.RequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("warnings request failed", "error", err)
		s.fail(w, userMessage(err))
		return
	}

	s.metrics.RequestsTotal.WithLabelValues("success").Inc()
	s.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, env)
}

// pickPayload resolves where the AOI lives: an explicit geojson field wins,
// then aoi, then the body itself.
func pickPayload(geojson, aoi json.RawMessage, body []byte) json.RawMessage {
	if isPresent(geojson) {
		return geojson
	}
	if isPresent(aoi) {
		return aoi
	}
	return body
}

// isPresent reports whether a raw field was supplied with a usable value.
func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// userMessage strips nothing: the taxonomy messages are already short,
// user-facing diagnostics. Unexpected errors get the generic internal text so
// no stack detail leaks.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidGeometry),
		errors.Is(err, domain.ErrEmptyGeometry),
		errors.Is(err, domain.ErrUpstream):
		return err.Error()
	default:
		return domain.ErrInternal.Error() + ": " + err.Error()
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
