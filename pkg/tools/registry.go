// Package tools provides the Camino MCP tool implementations.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names.
const (
	ToolQuery               = "camino_query"
	ToolSearch              = "camino_search"
	ToolSpatialRelationship = "camino_spatial_relationship"
	ToolPlaceContext        = "camino_place_context"
	ToolJourneyPlanning     = "camino_journey_planning"
	ToolRoutePlanning       = "camino_route_planning"
)

// ErrUnknownTool is returned by Invoke for a name that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Upstream is the Camino API as seen by the tool handlers. *camino.Client
// implements it.
type Upstream interface {
	Query(ctx context.Context, req camino.QueryRequest) camino.Envelope
	Search(ctx context.Context, req camino.SearchRequest) camino.Envelope
	SpatialRelationship(ctx context.Context, req camino.RelationshipRequest) camino.Envelope
	PlaceContext(ctx context.Context, req camino.ContextRequest) camino.Envelope
	JourneyPlanning(ctx context.Context, req camino.JourneyRequest) camino.Envelope
	RoutePlanning(ctx context.Context, req camino.RouteRequest) camino.Envelope
}

// Registry holds all MCP tool registrations for the Camino service.
type Registry struct {
	logger   *slog.Logger
	upstream Upstream
	metrics  *Metrics

	defs     []ToolDefinition
	handlers map[string]server.ToolHandlerFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics records tool call metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates a tool registry whose handlers call upstream.
func NewRegistry(upstream Upstream, logger *slog.Logger, opts ...Option) (*Registry, error) {
	if upstream == nil {
		return nil, errors.New("tools: upstream is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Registry{
		logger:   logger,
		upstream: upstream,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.defs = r.buildDefinitions()

	v, err := newValidator(r.defs)
	if err != nil {
		return nil, err
	}

	r.handlers = make(map[string]server.ToolHandlerFunc, len(r.defs))
	for _, def := range r.defs {
		h := v.middleware(def.Handler)
		if r.metrics != nil {
			h = r.metrics.middleware(h)
		}
		r.handlers[def.Name] = r.record(h)
	}

	return r, nil
}

// ToolDefinition represents a Camino MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     server.ToolHandlerFunc
}

func (r *Registry) buildDefinitions() []ToolDefinition {
	defs := []ToolDefinition{
		{Name: ToolQuery, Tool: QueryTool(), Handler: r.handleQuery},
		{Name: ToolSearch, Tool: SearchTool(), Handler: r.handleSearch},
		{Name: ToolSpatialRelationship, Tool: SpatialRelationshipTool(), Handler: r.handleSpatialRelationship},
		{Name: ToolPlaceContext, Tool: PlaceContextTool(), Handler: r.handlePlaceContext},
		{Name: ToolJourneyPlanning, Tool: JourneyPlanningTool(), Handler: r.handleJourneyPlanning},
		{Name: ToolRoutePlanning, Tool: RoutePlanningTool(), Handler: r.handleRoutePlanning},
	}
	for i := range defs {
		defs[i].Description = defs[i].Tool.Description
	}
	return defs
}

// GetToolDefinitions returns all Camino MCP tool definitions in their fixed order.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	out := make([]ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// ListTools returns the six tool descriptors.
func (r *Registry) ListTools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def.Tool)
	}
	return out
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.defs {
		r.logger.Debug("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, r.handlers[def.Name])
	}
}

// Invoke runs the named tool with args. Upstream failures come back as a
// normal result carrying the failure envelope; only dispatch problems are
// returned as errors.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (result *mcp.CallToolResult, err error) {
	h, ok := r.handlers[name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool handler panicked", "tool", name, "panic", rec)
			result, err = nil, fmt.Errorf("panic recovered in %s tool handler: %v", name, rec)
		}
	}()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return h(ctx, req)
}

// record logs every invocation before it is dispatched.
func (r *Registry) record(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := r.logger.With("tool", req.Params.Name, "invocation_id", uuid.NewString())
		logger.Info("tool invoked", "arguments", req.GetArguments())

		result, err := next(ctx, req)
		if err != nil {
			logger.Error("tool failed", "error", err)
			return result, err
		}
		if result != nil && result.IsError {
			logger.Info("tool rejected arguments")
		}
		return result, nil
	}
}
