// Command camino-mcp-http serves the Camino location tools over the MCP
// streamable HTTP transport.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Barneyjm/camino-mcp/pkg/config"
	"github.com/Barneyjm/camino-mcp/pkg/diag"
	"github.com/Barneyjm/camino-mcp/pkg/server"
	"github.com/Barneyjm/camino-mcp/pkg/version"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		showVersion bool
		debug       bool
		configPath  string
		addr        string
	)
	flag.BoolVar(&showVersion, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&configPath, "config", "", "Optional YAML or JSON config file")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides CAMINO_HTTP_ADDR)")
	flag.Parse()

	if showVersion {
		fmt.Println(version.String())
		return
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if debug {
		cfg.Debug = true
	}
	if addr != "" {
		cfg.HTTP.Addr = addr
	}

	sink := diag.New(diag.Options{Path: cfg.LogFile, Debug: cfg.Debug})
	defer sink.Close()
	logger := sink.Logger()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := server.NewHTTPHandler(cfg.Camino, logger, reg)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          sink.StdLogger(),
	}

	go func() {
		logger.Info("Camino MCP HTTP server starting",
			"addr", cfg.HTTP.Addr,
			"version", version.BuildVersion,
			"default_key", cfg.Camino.APIKey != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("stopped")
}
