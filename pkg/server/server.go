// Package server provides the MCP server implementation for the Camino integration.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/Barneyjm/camino-mcp/pkg/config"
	"github.com/Barneyjm/camino-mcp/pkg/tools"
	"github.com/Barneyjm/camino-mcp/pkg/version"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is the name of the MCP server
const ServerName = "camino-mcp"

// Server encapsulates the MCP server with Camino tools.
type Server struct {
	srv      *server.MCPServer
	registry *tools.Registry
	client   *camino.Client
	logger   *slog.Logger
	errorLog *log.Logger
}

type options struct {
	metrics *tools.Metrics
}

// Option configures a Server.
type Option func(*options)

// WithMetrics records tool call metrics on m.
func WithMetrics(m *tools.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates a Camino MCP server with all tools registered. Each call builds
// its own upstream client; instances share nothing.
func New(cfg config.CaminoConfig, logger *slog.Logger, opts ...Option) (*Server, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client, err := camino.NewClient(cfg.BaseURL, cfg.APIKey,
		camino.WithTimeout(cfg.Timeout()),
		camino.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		camino.WithLogger(logger.With("component", "camino")),
	)
	if err != nil {
		return nil, fmt.Errorf("create camino client: %w", err)
	}

	var registryOpts []tools.Option
	if o.metrics != nil {
		registryOpts = append(registryOpts, tools.WithMetrics(o.metrics))
	}
	registry, err := tools.NewRegistry(client, logger.With("component", "tools"), registryOpts...)
	if err != nil {
		return nil, fmt.Errorf("create tool registry: %w", err)
	}

	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	registry.RegisterTools(srv)

	logger.Debug("initialized Camino MCP server",
		"name", ServerName,
		"version", version.BuildVersion,
		"base_url", client.BaseURL(),
		"timeout", client.Timeout())

	return &Server{
		srv:      srv,
		registry: registry,
		client:   client,
		logger:   logger,
		errorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Registry returns the tool registry bound to this server.
func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// Listen serves the MCP protocol over the given streams until in reaches EOF
// or ctx is cancelled. Transport errors go to the server's logger, never to out.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.srv)
	stdio.SetErrorLogger(s.errorLog)

	s.logger.Info("serving MCP over stdio", "base_url", s.client.BaseURL())
	err := stdio.Listen(ctx, in, out)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}
