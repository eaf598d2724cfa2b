package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for tool call metrics.
const (
	outcomeOK       = "ok"
	outcomeFallback = "fallback"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// Metrics records tool call counts and latencies.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates tool metrics registered with reg. A nil reg leaves the
// collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camino_mcp",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "camino_mcp",
			Subsystem: "tools",
			Name:      "call_duration_seconds",
			Help:      "Tool call latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"tool"}),
	}
}

// outcomeKey carries a *string the handlers use to report how a call ended.
type outcomeKey struct{}

func markOutcome(ctx context.Context, outcome string) {
	if p, ok := ctx.Value(outcomeKey{}).(*string); ok {
		*p = outcome
	}
}

func (m *Metrics) middleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		outcome := outcomeOK
		ctx = context.WithValue(ctx, outcomeKey{}, &outcome)

		start := time.Now()
		result, err := next(ctx, req)

		switch {
		case err != nil:
			outcome = outcomeError
		case result != nil && result.IsError && outcome == outcomeOK:
			outcome = outcomeInvalid
		}

		m.calls.WithLabelValues(req.Params.Name, outcome).Inc()
		m.duration.WithLabelValues(req.Params.Name).Observe(time.Since(start).Seconds())
		return result, err
	}
}
