package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/perthro/internal/catalog"
	"github.com/starford/perthro/internal/extract"
	"github.com/starford/perthro/internal/storage"
)

func sampleArchive() []byte {
	var buf bytes.Buffer
	buf.WriteString("GUID/")
	buf.WriteString("cafebabecafebabe")
	buf.WriteString("FILENAME/homer-simpson.jpg")
	buf.WriteString("DOCU/")
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	buf.Write(bytes.Repeat([]byte{0xAB}, 36))
	return buf.Bytes()
}

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	outDir := t.TempDir()
	intakeDir := t.TempDir()
	store, err := storage.NewFS(outDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "perthro-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ex := extract.New(store, logger)

	srv := New(store, db, ex, intakeDir)
	return srv, intakeDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_archives":
		result, err = srv.listArchives(ctx, req)
	case "list_records":
		result, err = srv.listRecords(ctx, req)
	case "search_records":
		result, err = srv.searchRecords(ctx, req)
	case "read_record":
		result, err = srv.readRecord(ctx, req)
	case "extract_archive":
		result, err = srv.extractArchive(ctx, req)
	case "import_archive":
		result, err = srv.importArchive(ctx, req)
	case "get_format_contract":
		result, err = srv.getFormatContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestExtractArchiveAndList(t *testing.T) {
	srv, intakeDir := testServer(t)

	path := filepath.Join(intakeDir, "sample.env")
	if err := os.WriteFile(path, sampleArchive(), 0o644); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "extract_archive", map[string]interface{}{"path": path})
	if r.IsError {
		t.Fatalf("extract_archive error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "homer-simpson.jpg") {
		t.Errorf("summary missing record: %s", resultText(r))
	}

	r = callTool(t, srv, "list_archives", map[string]interface{}{})
	if !strings.Contains(resultText(r), "sample.env") {
		t.Errorf("list_archives = %q", resultText(r))
	}

	r = callTool(t, srv, "list_records", map[string]interface{}{"source": "sample.env"})
	if !strings.Contains(resultText(r), "homer-simpson.jpg") {
		t.Errorf("list_records = %q", resultText(r))
	}
}

func TestImportArchive_GeneratedName(t *testing.T) {
	srv, intakeDir := testServer(t)

	encoded := base64.StdEncoding.EncodeToString(sampleArchive())
	r := callTool(t, srv, "import_archive", map[string]interface{}{"data": encoded})
	if r.IsError {
		t.Fatalf("import_archive error: %s", resultText(r))
	}

	entries, err := os.ReadDir(intakeDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("intake entries = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "upload-") || !strings.HasSuffix(name, ".env") {
		t.Errorf("generated name = %q", name)
	}
}

func TestImportArchive_InvalidBase64(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "import_archive", map[string]interface{}{"data": "not-base64!!!"})
	if !r.IsError {
		t.Error("expected error for invalid base64")
	}
}

func TestReadRecord(t *testing.T) {
	srv, intakeDir := testServer(t)

	path := filepath.Join(intakeDir, "sample.env")
	if err := os.WriteFile(path, sampleArchive(), 0o644); err != nil {
		t.Fatal(err)
	}
	callTool(t, srv, "extract_archive", map[string]interface{}{"path": path})

	r := callTool(t, srv, "read_record", map[string]interface{}{"name": "homer-simpson.jpg"})
	if r.IsError {
		t.Fatalf("read_record error: %s", resultText(r))
	}
	decoded, err := base64.StdEncoding.DecodeString(resultText(r))
	if err != nil {
		t.Fatalf("payload not base64: %v", err)
	}
	if len(decoded) != 40 {
		t.Errorf("payload length = %d, want 40", len(decoded))
	}
}

func TestReadRecordMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_record", map[string]interface{}{"name": "nope.bin"})
	if !r.IsError {
		t.Error("expected error for missing record")
	}
}

func TestSearchRecords(t *testing.T) {
	srv, intakeDir := testServer(t)

	path := filepath.Join(intakeDir, "sample.env")
	if err := os.WriteFile(path, sampleArchive(), 0o644); err != nil {
		t.Fatal(err)
	}
	callTool(t, srv, "extract_archive", map[string]interface{}{"path": path})

	r := callTool(t, srv, "search_records", map[string]interface{}{"query": "homer"})
	if !strings.Contains(resultText(r), "homer-simpson.jpg") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestFormatContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_format_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "GUID/") {
		t.Error("contract missing tag list")
	}
}
