package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"runbridge/src/documents"
	"runbridge/src/store"
)

func seededServer(t *testing.T) *Server {
	t.Helper()
	mem := store.NewMemoryStore()
	ctx := context.Background()

	docs := []struct {
		run  string
		name string
	}{
		{"run-1", documents.NameStart},
		{"run-1", documents.NameEvent},
		{"run-1", documents.NameStop},
		{"run-2", documents.NameStart},
		{"run-2", documents.NameEvent},
	}
	for _, d := range docs {
		if err := mem.InsertDocument(ctx, "runs", d.run, d.name, documents.Document{"uid": d.run}); err != nil {
			t.Fatalf("InsertDocument failed: %v", err)
		}
	}
	return NewServer(mem)
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected a single content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestListRuns(t *testing.T) {
	srv := seededServer(t)

	result, err := srv.handleListRuns(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handleListRuns failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("handleListRuns returned tool error: %s", resultText(t, result))
	}

	var payload struct {
		RunCount int                `json:"run_count"`
		Runs     []store.RunSummary `json:"runs"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.RunCount != 2 {
		t.Errorf("run_count = %d, want 2", payload.RunCount)
	}
	for _, r := range payload.Runs {
		if r.UID == "run-1" && !r.Complete {
			t.Error("run-1 should be complete")
		}
		if r.UID == "run-2" && r.Complete {
			t.Error("run-2 should not be complete")
		}
	}
}

func TestGetRunDocuments(t *testing.T) {
	srv := seededServer(t)

	result, err := srv.handleGetRunDocuments(context.Background(),
		toolRequest(map[string]any{"run_uid": "run-1"}))
	if err != nil {
		t.Fatalf("handleGetRunDocuments failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("handleGetRunDocuments returned tool error: %s", resultText(t, result))
	}

	var payload struct {
		DocumentCount int                      `json:"document_count"`
		Documents     []store.ArchivedDocument `json:"documents"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.DocumentCount != 3 {
		t.Fatalf("document_count = %d, want 3", payload.DocumentCount)
	}
	if payload.Documents[0].Name != documents.NameStart {
		t.Errorf("first document is %q, want the start document", payload.Documents[0].Name)
	}
}

func TestGetRunDocumentsNameFilter(t *testing.T) {
	srv := seededServer(t)

	result, err := srv.handleGetRunDocuments(context.Background(),
		toolRequest(map[string]any{"run_uid": "run-1", "name": "event"}))
	if err != nil {
		t.Fatalf("handleGetRunDocuments failed: %v", err)
	}

	var payload struct {
		DocumentCount int `json:"document_count"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.DocumentCount != 1 {
		t.Errorf("document_count = %d, want 1 event", payload.DocumentCount)
	}
}

func TestGetRunDocumentsErrors(t *testing.T) {
	srv := seededServer(t)

	result, err := srv.handleGetRunDocuments(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handleGetRunDocuments failed: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "run_uid") {
		t.Error("missing run_uid should produce a tool error naming the parameter")
	}

	result, err = srv.handleGetRunDocuments(context.Background(),
		toolRequest(map[string]any{"run_uid": "no-such-run"}))
	if err != nil {
		t.Fatalf("handleGetRunDocuments failed: %v", err)
	}
	if !result.IsError {
		t.Error("unknown run should produce a tool error")
	}
}
