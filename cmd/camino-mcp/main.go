// Command camino-mcp serves the Camino location tools over MCP stdio.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Barneyjm/camino-mcp/pkg/config"
	"github.com/Barneyjm/camino-mcp/pkg/diag"
	"github.com/Barneyjm/camino-mcp/pkg/server"
	"github.com/Barneyjm/camino-mcp/pkg/version"
	"github.com/joho/godotenv"
)

// desktopServerKey is the mcpServers entry written by -generate-config.
const desktopServerKey = "camino"

var (
	showVersion    bool
	debug          bool
	configPath     string
	generateConfig string
)

func init() {
	flag.BoolVar(&showVersion, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&configPath, "config", "", "Optional YAML or JSON config file")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	// Show version and exit if requested
	if showVersion {
		fmt.Println(version.String())
		return 0
	}

	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load .env: %v\n", err)
		return 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if debug {
		cfg.Debug = true
	}

	// Generate Claude Desktop config if requested
	if generateConfig != "" {
		if err := generateClientConfig(generateConfig, cfg.Camino.APIKey); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to generate config: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Wrote Claude Desktop Client config to %s\n", generateConfig)
		return 0
	}

	if err := cfg.Camino.RequireAPIKey(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	sink := diag.New(diag.Options{Path: cfg.LogFile, Debug: cfg.Debug})
	defer sink.Close()
	logger := sink.Logger()

	logger.Info("starting Camino MCP server",
		"version", version.BuildVersion,
		"debug", cfg.Debug,
		"base_url", cfg.Camino.BaseURL)

	srv, err := server.New(cfg.Camino, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}

	logger.Info("server stopped")
	return 0
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file, adding a "camino" entry under mcpServers and keeping everything else.
func generateClientConfig(outputPath, apiKey string) error {
	if outputPath == "" {
		return errors.New("output path is empty")
	}
	if filepath.Ext(outputPath) != ".json" {
		return fmt.Errorf("output path %q must end in .json", outputPath)
	}
	if strings.Contains(outputPath, "..") {
		return fmt.Errorf("output path %q must not contain ..", outputPath)
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	entry := map[string]any{
		"command": absExecPath,
		"args":    []string{},
	}
	if apiKey != "" {
		entry["env"] = map[string]string{"CAMINO_API_KEY": apiKey}
	}

	cfg := make(map[string]any)
	data, err := os.ReadFile(outputPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("existing config %s is not valid JSON: %w", outputPath, err)
		}
		if cfg == nil {
			cfg = make(map[string]any)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("failed to read existing config: %w", err)
	}

	mcpServers, ok := cfg["mcpServers"].(map[string]any)
	if !ok {
		mcpServers = make(map[string]any)
		cfg["mcpServers"] = mcpServers
	}
	mcpServers[desktopServerKey] = entry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	out = append(out, '\n')

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(outputPath, 0o600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}
