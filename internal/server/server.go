package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/renamekit/renamer/internal/buffer"
	"github.com/renamekit/renamer/internal/checker"
	"github.com/renamekit/renamer/internal/engine"
	"github.com/renamekit/renamer/internal/msbuild"
	"github.com/renamekit/renamer/internal/tools"
	"github.com/renamekit/renamer/pkg/project"
	"github.com/renamekit/renamer/pkg/types"

	"github.com/mark3labs/mcp-go/server"
)

// RenamerServer hosts the rename engine behind an MCP command surface
type RenamerServer struct {
	mcpServer *server.MCPServer
	checker   *checker.Client
	cache     *msbuild.Cache
	engine    *engine.Engine
	config    types.Config
}

// NewRenamerServer creates a new renamer MCP server
func NewRenamerServer(config types.Config) *RenamerServer {
	mcpServer := server.NewMCPServer(project.Name, project.Version)
	checkerClient := checker.NewClient(config.CheckerPath)
	cache := msbuild.NewCache()
	locator := msbuild.NewLocator(config.WorkspaceRoot, config.ProjectPath, cache)
	host := buffer.NewHost()

	return &RenamerServer{
		mcpServer: mcpServer,
		checker:   checkerClient,
		cache:     cache,
		engine:    engine.New(checkerClient, host, locator),
		config:    config,
	}
}

// Start starts the renamer MCP server and blocks until it shuts down
func (s *RenamerServer) Start(ctx context.Context) error {
	slog.Info("Starting renamer server",
		"workspace_root", s.config.WorkspaceRoot,
		"checker_path", s.config.CheckerPath)

	// The checker is initialized with the workspace project's resolved
	// metadata when a project is pinned; otherwise documents bind to
	// projects lazily as the caret visits them
	var proj types.ProjectHandle
	if s.config.ProjectPath != "" {
		handle, err := s.cache.Get(s.config.ProjectPath)
		if err != nil {
			// A broken project disables rename but must not crash the
			// host command surface
			slog.Warn("Project load failed, starting without project metadata",
				"project", s.config.ProjectPath, "error", err)
		} else {
			proj = handle
		}
	}

	if err := s.checker.Start(ctx, s.config.WorkspaceRoot, proj); err != nil {
		return fmt.Errorf("failed to start checker client: %w", err)
	}

	s.registerTools()

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve MCP server: %w", err)
	}

	return nil
}

func (s *RenamerServer) registerTools() {
	moveCaretTool := tools.NewMoveCaretTool(s.engine, s.config)
	s.mcpServer.AddTool(moveCaretTool.GetTool(), moveCaretTool.Handle)

	canRenameTool := tools.NewCanRenameTool(s.engine, s.config)
	s.mcpServer.AddTool(canRenameTool.GetTool(), canRenameTool.Handle)

	renameTool := tools.NewRenameSymbolTool(s.engine, s.config)
	s.mcpServer.AddTool(renameTool.GetTool(), renameTool.Handle)
}

// Shutdown gracefully shuts down the server
func (s *RenamerServer) Shutdown(ctx context.Context) error {
	if err := s.cache.Close(); err != nil {
		slog.Warn("Failed to close project cache", "error", err)
	}

	if err := s.checker.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop checker client: %w", err)
	}

	return nil
}
