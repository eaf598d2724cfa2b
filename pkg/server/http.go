package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Barneyjm/camino-mcp/pkg/config"
	"github.com/Barneyjm/camino-mcp/pkg/tools"
	"github.com/Barneyjm/camino-mcp/pkg/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session query parameters accepted on /mcp.
const (
	ParamAPIKey  = "apiKey"
	ParamBaseURL = "baseUrl"
	ParamTimeout = "timeout"
)

// HTTPHandler hosts one MCP server per request over the streamable HTTP
// transport, configured from the request's query parameters.
type HTTPHandler struct {
	defaults config.CaminoConfig
	logger   *slog.Logger
	metrics  *tools.Metrics
	router   *chi.Mux

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPHandler builds the router. Metrics are registered with reg and
// served on /metrics; a nil reg gets a fresh registry.
func NewHTTPHandler(defaults config.CaminoConfig, logger *slog.Logger, reg *prometheus.Registry) *HTTPHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	h := &HTTPHandler{
		defaults: defaults,
		logger:   logger,
		metrics:  tools.NewMetrics(reg),
		router:   chi.NewRouter(),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camino_mcp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed",
		}, []string{"method", "path", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "camino_mcp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "path"}),
	}

	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.RealIP)
	h.router.Use(h.logRequests)
	h.router.Use(middleware.Recoverer)

	h.router.Get("/health", h.handleHealth)
	h.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	h.router.HandleFunc("/mcp", h.handleMCP)

	return h
}

// ServeHTTP implements http.Handler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"name":   ServerName,
		"build":  version.Info(),
	})
}

func (h *HTTPHandler) handleMCP(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.sessionConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	logger := h.logger.With("request_id", middleware.GetReqID(r.Context()))
	srv, err := New(cfg, logger, WithMetrics(h.metrics))
	if err != nil {
		logger.Warn("rejected MCP session", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	transport := server.NewStreamableHTTPServer(srv.MCPServer(),
		server.WithStateLess(true),
		server.WithLogger(transportLogger{logger}),
	)
	transport.ServeHTTP(w, r)
}

// sessionConfig overlays the request's query parameters on the defaults.
func (h *HTTPHandler) sessionConfig(r *http.Request) (config.CaminoConfig, error) {
	cfg := h.defaults
	q := r.URL.Query()

	if v := q.Get(ParamAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := q.Get(ParamBaseURL); v != "" {
		// The process key is only ever sent to the configured endpoint.
		if q.Get(ParamAPIKey) == "" {
			return cfg, fmt.Errorf("%s override requires %s", ParamBaseURL, ParamAPIKey)
		}
		cfg.BaseURL = v
	}
	if v := q.Get(ParamTimeout); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return cfg, fmt.Errorf("invalid %s %q: must be a positive number of milliseconds", ParamTimeout, v)
		}
		cfg.TimeoutMS = ms
	}

	if err := cfg.RequireAPIKey(); err != nil {
		return cfg, fmt.Errorf("missing API key: pass %s or set CAMINO_API_KEY", ParamAPIKey)
	}
	return cfg, nil
}

// logRequests records each request to the logger and the HTTP metrics.
func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		h.requests.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		h.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())

		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// transportLogger adapts slog to the logger interface mcp-go's HTTP
// transport expects.
type transportLogger struct {
	logger *slog.Logger
}

func (l transportLogger) Infof(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l transportLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
