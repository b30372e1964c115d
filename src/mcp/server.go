// Package mcp exposes the document archive to MCP clients. An agent can list
// archived runs and pull the full document stream of a run for inspection.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"runbridge/src/store"
)

// Server is the MCP server for runbridge.
type Server struct {
	mcpServer *server.MCPServer
	store     store.Store
}

// NewServer creates an MCP server reading from st.
func NewServer(st store.Store) *Server {
	s := server.NewMCPServer(
		"runbridge",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		store:     st,
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_runs",
		mcp.WithDescription("List archived data acquisition runs, newest first. Each run reports its uid, source topic, document count and whether a stop document has been archived (complete). Use get_run_documents to fetch a run's full document stream."),
		mcp.WithNumber("limit",
			mcp.Description("Max runs to return (default: 20)"),
		),
	)

	documentsTool := mcp.NewTool("get_run_documents",
		mcp.WithDescription("Get the full ordered document stream of a run: the start document, descriptors, events and the stop document, in arrival order. Use after list_runs."),
		mcp.WithString("run_uid",
			mcp.Required(),
			mcp.Description("Run uid from list_runs"),
		),
		mcp.WithString("name",
			mcp.Description("Only return documents of this type (start, descriptor, event, stop, ...)"),
		),
	)

	s.mcpServer.AddTool(listTool, s.handleListRuns)
	s.mcpServer.AddTool(documentsTool, s.handleGetRunDocuments)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// handleListRuns handles the list_runs tool call.
func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(map[string]any{
		"run_count": len(runs),
		"runs":      runs,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleGetRunDocuments handles the get_run_documents tool call.
func (s *Server) handleGetRunDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runUID := request.GetString("run_uid", "")
	if runUID == "" {
		return mcp.NewToolResultError("run_uid parameter is required"), nil
	}
	nameFilter := request.GetString("name", "")

	docs, err := s.store.GetRunDocuments(ctx, runUID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load run documents: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no documents archived for run %q", runUID)), nil
	}

	if nameFilter != "" {
		filtered := docs[:0:0]
		for _, d := range docs {
			if d.Name == nameFilter {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}

	jsonBytes, err := json.Marshal(map[string]any{
		"run_uid":        runUID,
		"document_count": len(docs),
		"documents":      docs,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
