package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/renamekit/renamer/internal/server"
	"github.com/renamekit/renamer/pkg/types"
)

func main() {
	var (
		checkerPath   = flag.String("checker-path", "fschecker", "Path to the checker binary")
		workspaceRoot = flag.String("workspace-root", ".", "Root directory of the workspace")
		projectPath   = flag.String("project", "", "Project file to load (default: located per document)")
		logLevel      = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	setupLogging(*logLevel)

	config := types.Config{
		CheckerPath:   *checkerPath,
		WorkspaceRoot: *workspaceRoot,
		ProjectPath:   *projectPath,
		LogLevel:      *logLevel,
	}

	// Validate workspace root
	if stat, err := os.Stat(config.WorkspaceRoot); err != nil || !stat.IsDir() {
		log.Fatalf("Invalid workspace root: %s", config.WorkspaceRoot)
	}

	// Convert to absolute path
	if absPath, err := filepath.Abs(config.WorkspaceRoot); err == nil {
		config.WorkspaceRoot = absPath
	}

	ctx := context.Background()
	renamerServer := server.NewRenamerServer(config)

	// Start the server (this blocks until the server shuts down)
	if err := renamerServer.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	if err := renamerServer.Shutdown(ctx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
}

func setupLogging(level string) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	// Stdout carries the MCP protocol; logs go to stderr
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
