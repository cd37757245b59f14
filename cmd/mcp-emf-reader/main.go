package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-emf-reader/internal/config"
	"github.com/a3tai/mcp-emf-reader/internal/logging"
	"github.com/a3tai/mcp-emf-reader/internal/mcp"
	"github.com/a3tai/mcp-emf-reader/internal/metafile"
	"github.com/a3tai/mcp-emf-reader/internal/metrics"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// logLevel keeps stdio mode quiet unless debug logging was asked for
func logLevel(cfg *config.Config) string {
	if cfg.IsStdioMode() && !cfg.IsDebug() && cfg.LogLevel != "error" {
		return "warn"
	}
	return cfg.LogLevel
}

// newServer wires the metafile service, metrics and MCP server for cfg
func newServer(cfg *config.Config, logger *zap.Logger) (*mcp.Server, error) {
	ws, err := cfg.Whitespace()
	if err != nil {
		return nil, fmt.Errorf("invalid whitespace rules: %w", err)
	}

	service, err := metafile.NewService(cfg.MaxFileSize, cfg.EMFDirectory,
		metafile.WithLogger(logger),
		metafile.WithObserver(metrics.NewMetrics()),
		metafile.WithWhitespace(ws),
		metafile.WithFailureLogging(cfg.LogFailed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metafile service: %w", err)
	}

	return mcp.NewServer(cfg, service, mcp.WithLogger(logger))
}

// run serves until ctx is cancelled or the transport ends
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	server, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.IsDebug() {
		logger.Debug("starting with configuration", zap.Stringer("config", cfg))
	}

	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped successfully")
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(logLevel(cfg), cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server error", zap.Error(err))
	}
	_ = logging.Sync(logger)
	if err != nil {
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP EMF Reader\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
