// Package mcpserver exposes the task dispatcher over the Model Context
// Protocol on stdio. It registers a single run_task tool plus the
// task://definition resource describing the task language.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mattjoyce/taskgate/internal/task"
)

const definitionURI = "task://definition"

// TaskDispatcher is the dispatch entry point the server hands tasks to.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, t *task.Task) (task.Result, error)
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	// DefinitionPath is the markdown document served as task://definition.
	DefinitionPath string
}

// Server hosts the task protocol over MCP stdio.
type Server struct {
	config     Config
	dispatcher TaskDispatcher
	logger     *slog.Logger
}

// New creates a new MCP server instance.
func New(config Config, dispatcher TaskDispatcher, logger *slog.Logger) *Server {
	return &Server{
		config:     config,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    s.config.Name,
		Version: s.config.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_task",
		Description: "Execute a single task envelope. Read the task://definition resource for the task language.",
	}, s.runTaskHandler())

	server.AddResource(&mcp.Resource{
		URI:      definitionURI,
		Name:     "Task Definition",
		MIMEType: "text/markdown",
	}, s.definitionHandler())

	s.logger.Info("MCP server starting", "transport", "stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

// runTaskHandler dispatches one task per tool call.
//
// Protocol faults (missing id, unknown action) surface as tool call errors.
// Operational failures are ordinary results with success=false.
func (s *Server) runTaskHandler() mcp.ToolHandlerFor[task.Task, task.Result] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input task.Task) (*mcp.CallToolResult, task.Result, error) {
		result, err := s.dispatcher.Dispatch(ctx, &input)
		if err != nil {
			return nil, task.Result{}, err
		}
		return nil, result, nil
	}
}

// definitionHandler serves the task-language definition document.
func (s *Server) definitionHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := definitionURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != definitionURI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", definitionURI, uri)
		}

		data, err := os.ReadFile(s.config.DefinitionPath)
		if err != nil {
			return nil, fmt.Errorf("read definition document: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     string(data),
				},
			},
		}, nil
	}
}
