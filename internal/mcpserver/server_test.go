package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mattjoyce/taskgate/internal/log"
	"github.com/mattjoyce/taskgate/internal/task"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR", "json")
	os.Exit(m.Run())
}

func newTestMCPServer(t *testing.T) *Server {
	t.Helper()

	registry, err := task.NewDefaultRegistry(nil)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	defPath := filepath.Join(t.TempDir(), "definition.md")
	if err := os.WriteFile(defPath, []byte("# Task Language\n"), 0644); err != nil {
		t.Fatalf("failed to write definition: %v", err)
	}

	return New(Config{
		Name:           "taskgate",
		Version:        "test",
		DefinitionPath: defPath,
	}, task.NewDispatcher(registry), log.WithComponent("mcp"))
}

func TestRunTaskHandler(t *testing.T) {
	srv := newTestMCPServer(t)
	handler := srv.runTaskHandler()

	t.Run("successful file create", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		_, result, err := handler(context.Background(), nil, task.Task{
			ID:      "m-1",
			Action:  task.ActionFileCreate,
			Path:    path,
			Content: &task.Content{Value: "hello"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if result.ID != "m-1" {
			t.Errorf("expected id m-1, got %q", result.ID)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected file to exist: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("unexpected content %q", string(data))
		}
	})

	t.Run("operational failure is a result", func(t *testing.T) {
		_, result, err := handler(context.Background(), nil, task.Task{
			ID:     "m-2",
			Action: task.ActionFileDelete,
			Path:   filepath.Join(t.TempDir(), "absent.txt"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success {
			t.Fatal("expected failure result")
		}
		if result.Error == nil || result.Error.Type != task.KindArgument {
			t.Errorf("expected argument error, got %+v", result.Error)
		}
	})

	t.Run("protocol fault is a tool error", func(t *testing.T) {
		_, _, err := handler(context.Background(), nil, task.Task{
			Action: task.ActionFileCreate,
			Path:   "/tmp/x",
		})
		if err == nil {
			t.Fatal("expected error for missing id")
		}
	})

	t.Run("unknown action is a tool error", func(t *testing.T) {
		_, _, err := handler(context.Background(), nil, task.Task{
			ID:     "m-3",
			Action: "file/move",
		})
		if err == nil {
			t.Fatal("expected error for unknown action")
		}
	})
}

func TestDefinitionHandler(t *testing.T) {
	srv := newTestMCPServer(t)
	handler := srv.definitionHandler()

	t.Run("serves the document", func(t *testing.T) {
		res, err := handler(context.Background(), &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: definitionURI},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Contents) != 1 {
			t.Fatalf("expected one content item, got %d", len(res.Contents))
		}
		c := res.Contents[0]
		if c.URI != definitionURI {
			t.Errorf("expected uri %s, got %q", definitionURI, c.URI)
		}
		if c.MIMEType != "text/markdown" {
			t.Errorf("expected text/markdown, got %q", c.MIMEType)
		}
		if c.Text != "# Task Language\n" {
			t.Errorf("unexpected text %q", c.Text)
		}
	})

	t.Run("nil request defaults to the definition URI", func(t *testing.T) {
		res, err := handler(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Contents[0].URI != definitionURI {
			t.Errorf("unexpected uri %q", res.Contents[0].URI)
		}
	})

	t.Run("rejects other URIs", func(t *testing.T) {
		_, err := handler(context.Background(), &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "task://other"},
		})
		if err == nil {
			t.Fatal("expected error for unknown URI")
		}
	})

	t.Run("missing document", func(t *testing.T) {
		srv := newTestMCPServer(t)
		srv.config.DefinitionPath = filepath.Join(t.TempDir(), "nope.md")
		_, err := srv.definitionHandler()(context.Background(), nil)
		if err == nil {
			t.Fatal("expected error for missing document")
		}
	})
}
