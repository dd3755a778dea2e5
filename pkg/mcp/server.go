// Package mcp exposes shell operations as Model Context Protocol tools.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jllopis/surveyshell/pkg/bootstrap"
	"github.com/jllopis/surveyshell/pkg/errors"
	"github.com/jllopis/surveyshell/pkg/includecheck"
)

// Tool names served by NewServer.
const (
	ToolCheckIncludes   = "check_includes"
	ToolBootstrapStatus = "bootstrap_status"
)

// ToolHandler handles a tool call with decoded arguments.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// Options selects what the server exposes.
type Options struct {
	// Root is the corpus checked when a call does not name one. A root
	// named by a call must resolve inside it.
	Root     string
	Includes includecheck.Options
	// Orchestrator, when set, enables the bootstrap_status tool.
	Orchestrator *bootstrap.Orchestrator
}

// Server wraps the mcp-go server with the shell tools.
type Server struct {
	mcpServer *server.MCPServer
	opts      Options
}

// NewServer creates a server with check_includes and, when an orchestrator
// is configured, bootstrap_status.
func NewServer(name, version string, opts Options) *Server {
	if opts.Root == "" {
		opts.Root = "."
	}
	s := &Server{
		mcpServer: server.NewMCPServer(name, version),
		opts:      opts,
	}
	s.RegisterTool(ToolCheckIncludes,
		"Check that every document using the app header includes the shared scripts once and in canonical order",
		s.checkIncludes,
		mcp.WithString("root", mcp.Description("Corpus root directory, defaults to the server root")),
		mcp.WithString("format", mcp.Description("Report format"), mcp.Enum("text", "json", "yaml")),
	)
	if opts.Orchestrator != nil {
		s.RegisterTool(ToolBootstrapStatus,
			"Report the settings bootstrap state, optionally running it first",
			s.bootstrapStatus,
			mcp.WithBoolean("initialize", mcp.Description("Run the bootstrap before reporting")),
		)
	}
	return s
}

// RegisterTool registers a tool with the server.
func (s *Server) RegisterTool(name, description string, handler ToolHandler, opts ...mcp.ToolOption) {
	toolOpts := append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)
	tool := mcp.NewTool(name, toolOpts...)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		return handler(ctx, args)
	})
}

// ServeStdio starts the server on Stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) checkIncludes(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	root, err := resolveRoot(s.opts.Root, stringArg(args, "root", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := stringArg(args, "format", "text")

	report, err := includecheck.Run(ctx, root, s.opts.Includes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: buf.String()}},
		IsError: !report.OK(),
	}, nil
}

func (s *Server) bootstrapStatus(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	o := s.opts.Orchestrator
	if run, _ := args["initialize"].(bool); run {
		if _, err := o.Initialize(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("bootstrap failed: %v", err)), nil
		}
	}
	data, err := json.MarshalIndent(o.Status(), "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func stringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// resolveRoot resolves requested against base, relative paths included,
// and rejects anything that lands outside base after following symlinks.
func resolveRoot(base, requested string) (string, error) {
	baseAbs, err := realPath(base)
	if err != nil {
		return "", errors.New(errors.CodeInvalidInput, "invalid server root", err).WithContext("root", base)
	}
	if requested == "" {
		return baseAbs, nil
	}
	target := requested
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseAbs, target)
	}
	target, err = realPath(target)
	if err != nil {
		return "", errors.New(errors.CodeInvalidInput, "invalid root", err).WithContext("root", requested)
	}
	rel, err := filepath.Rel(baseAbs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.CodeInvalidInput, "root is outside the server root", nil).
			WithContext("root", requested).
			WithContext("server_root", base)
	}
	return target, nil
}

// realPath returns the absolute path with symlinks resolved. A path that
// does not exist yet is only cleaned; the scan reports it as not found.
func realPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
