package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/renamekit/renamer/internal/transport"
	"github.com/renamekit/renamer/pkg/project"
	"github.com/renamekit/renamer/pkg/types"
)

const (
	defaultCheckerPath = "fschecker"
)

var _ types.CompilerService = &Client{}

// Client implements the CompilerService interface over a checker subprocess
type Client struct {
	checkerPath string
	cmd         *exec.Cmd
	stderr      io.ReadCloser
	transport   types.Transport
}

// NewClient creates a new checker client
func NewClient(checkerPath string) *Client {
	if checkerPath == "" {
		checkerPath = defaultCheckerPath
	}

	slog.Debug("Creating new checker client", "checker_path", checkerPath)

	return &Client{
		checkerPath: checkerPath,
	}
}

// Start spawns the checker process and initializes it for the workspace
func (c *Client) Start(ctx context.Context, workspaceRoot string, proj types.ProjectHandle) error {
	slog.Debug("Starting checker client", "checker_path", c.checkerPath, "workspace_root", workspaceRoot)

	c.cmd = exec.CommandContext(ctx, c.checkerPath, "serve")

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := c.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	c.stderr = stderr
	c.transport = transport.NewJsonRpcTransport(stdin, stdout, handleNotification)

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start checker command: %w", err)
	}
	slog.Debug("Checker process started", "pid", c.cmd.Process.Pid)

	if err := c.transport.Start(); err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	rootURI := "file://" + workspaceRoot
	if err := c.initialize(rootURI, proj); err != nil {
		return fmt.Errorf("failed to initialize checker client: %w", err)
	}
	slog.Debug("Checker client initialized", "root_uri", rootURI)

	return nil
}

func (c *Client) initialize(rootURI string, proj types.ProjectHandle) error {
	params := map[string]any{
		"processId": nil,
		"clientInfo": map[string]any{
			"name":    project.Name,
			"version": project.Version,
		},
		"rootUri":      rootURI,
		"capabilities": map[string]any{},
	}

	// The checker analyzes against the project's own compiler invocation,
	// so the resolved metadata rides along with the handshake.
	if proj != nil {
		args := proj.CompilerArguments()
		args = append(args, proj.References()...)
		params["initializationOptions"] = map[string]any{
			"projectPath":       proj.Path(),
			"compilerArguments": args,
			"sourceFiles":       proj.SourceFiles(),
		}
	}

	_, err := c.transport.SendRequest("initialize", params)
	if err != nil {
		return fmt.Errorf("failed to send initialization request: %w", err)
	}

	if err := c.transport.SendNotification("initialized", map[string]any{}); err != nil {
		return fmt.Errorf("failed to send initialization notification: %w", err)
	}

	return nil
}

func (c *Client) Stop(ctx context.Context) error {
	_, err := c.transport.SendRequest("shutdown", nil)
	if err != nil {
		return fmt.Errorf("failed to send shutdown request: %w", err)
	}

	if err := c.transport.SendNotification("exit", nil); err != nil {
		return fmt.Errorf("failed to send exit notification: %w", err)
	}

	if err := c.transport.Stop(); err != nil {
		return fmt.Errorf("failed to stop transport: %w", err)
	}

	if c.cmd != nil && c.cmd.Process != nil {
		if err := c.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("failed to kill checker process: %w", err)
		}
		if _, err := c.cmd.Process.Wait(); err != nil {
			return fmt.Errorf("failed to wait for checker process: %w", err)
		}
	}

	return nil
}

// ResolveSymbol asks the checker for the symbol token spanning the position.
// A nil symbol with a nil error is the normal "nothing under the caret" case.
func (c *Client) ResolveSymbol(ctx context.Context, uri string, position types.Position) (*types.Symbol, error) {
	slog.Debug("Resolving symbol", "uri", uri, "line", position.Line, "character", position.Character)

	params := map[string]any{
		"textDocument": map[string]any{
			"uri": uri,
		},
		"position": position,
	}

	response, err := c.transport.SendRequest("textDocument/resolveSymbol", params)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve symbol: %w", err)
	}

	// The response is null when the position covers no symbol token
	if isNull(response) {
		slog.Debug("No symbol at position", "uri", uri)
		return nil, nil
	}

	var resolved struct {
		FullName    string      `json:"fullName"`
		DisplayText string      `json:"displayText"`
		Range       types.Range `json:"range"`
	}
	if err := json.Unmarshal(response, &resolved); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resolveSymbol response: %w", err)
	}

	symbol := &types.Symbol{
		Name:        resolved.FullName,
		DisplayText: resolved.DisplayText,
		Location: types.Location{
			URI:   uri,
			Range: resolved.Range,
		},
	}

	slog.Debug("Resolved symbol", "uri", uri, "name", symbol.Name)
	return symbol, nil
}

// FindAllUsages issues exactly one usage query to the checker. A nil slice
// with a nil error means the checker could not complete analysis.
func (c *Client) FindAllUsages(ctx context.Context, symbol *types.Symbol) ([]types.Location, error) {
	slog.Debug("Finding symbol usages", "name", symbol.Name, "uri", symbol.Location.URI)

	params := map[string]any{
		"textDocument": map[string]any{
			"uri": symbol.Location.URI,
		},
		"position": symbol.Location.Range.Start,
		"context": map[string]any{
			"includeDeclaration": true,
		},
	}

	response, err := c.transport.SendRequest("textDocument/references", params)
	if err != nil {
		return nil, fmt.Errorf("failed to find usages: %w", err)
	}

	// The response is null when semantic analysis failed
	if isNull(response) {
		slog.Debug("Usage analysis returned no results", "name", symbol.Name)
		return nil, nil
	}

	var locations []types.Location
	if err := json.Unmarshal(response, &locations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal references response: %w", err)
	}

	slog.Debug("Found symbol usages", "name", symbol.Name, "count", len(locations))
	return locations, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || strings.TrimSpace(string(raw)) == "null"
}

// handleNotification logs server-initiated notifications from the checker
func handleNotification(method string, params json.RawMessage) {
	switch method {
	case "analysis/progress":
		slog.Debug("Checker analysis progress", "params", string(params))
	case "window/logMessage":
		slog.Debug("Checker log message", "params", string(params))
	default:
		slog.Debug("Ignoring checker notification", "method", method)
	}
}
