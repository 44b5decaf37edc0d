package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/starford/perthro/internal/archiveservice"
	"github.com/starford/perthro/internal/catalog"
	"github.com/starford/perthro/internal/extract"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/storage"
)

// sampleArchive builds an archive buffer with one JPEG record.
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

// testEnv sets up a temp output dir, SQLite catalog, one extracted archive,
// and a router. authToken == "" means auth disabled.
func testEnv(t *testing.T, authToken string) (*archiveservice.Service, http.Handler) {
	t.Helper()

	outDir := t.TempDir()
	store, err := storage.NewFS(outDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "perthro-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ex := extract.New(store, logger)
	sum, err := ex.Extract(sampleArchive(), "intake/sample.env")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	meta := models.ArchiveMetadata{
		Source:      sum.Source,
		Checksum:    sum.Checksum,
		RecordCount: len(sum.Files),
		ExtractedAt: sum.ExtractedAt,
	}
	if err := db.UpsertArchive(meta, sum.Files); err != nil {
		t.Fatalf("UpsertArchive: %v", err)
	}

	svc := archiveservice.NewService(store, db)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func TestListArchives(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/archives", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	archives := resp["archives"].([]any)
	if len(archives) != 1 {
		t.Fatalf("len(archives) = %d, want 1", len(archives))
	}
	if resp["total"].(float64) != 1 {
		t.Errorf("total = %v, want 1", resp["total"])
	}
}

func TestGetArchive(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/archives/intake/sample.env", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d, body = %s", w.Code, w.Body.String())
	}
	var detail ArchiveDetail
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.Source != "intake/sample.env" {
		t.Errorf("source = %q", detail.Source)
	}
	if len(detail.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(detail.Records))
	}
	if detail.Records[0].Name != "homer-simpson.jpg" {
		t.Errorf("record name = %q", detail.Records[0].Name)
	}
}

func TestGetArchive_EncodedSlash(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/archives/intake%2Fsample.env", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("encoded get = %d, want 200", w.Code)
	}
}

func TestGetArchive_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/archives/nope.env", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing archive = %d, want 404", w.Code)
	}
}

func TestReadRecord(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/records/homer-simpson.jpg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("read = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.Bytes()
	if len(body) != 40 {
		t.Errorf("len(body) = %d, want 40", len(body))
	}
	if !bytes.HasPrefix(body, []byte{0xFF, 0xD8, 0xFF}) {
		t.Error("payload missing JPEG signature")
	}
}

func TestReadRecord_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/records/ghost.bin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing record = %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search?q=homer", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	results := resp["results"].([]any)
	if len(results) != 1 {
		t.Errorf("search results = %d, want 1", len(results))
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestTagsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("tags = %d", w.Code)
	}
	var resp map[string][]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	found := map[string]bool{}
	for _, tag := range resp["tags"] {
		found[tag] = true
	}
	for _, want := range []string{"GUID/", "FILENAME/", "DOCU/"} {
		if !found[want] {
			t.Errorf("tags missing %q, got %v", want, resp["tags"])
		}
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/archives", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/archives", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/archives", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/archives", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	svc, _ := testEnv(t, "")
	router := routerWithSSE(t, svc, true, "secret")

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	svc, _ := testEnv(t, "")
	router := routerWithSSE(t, svc, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// routerWithSSE mounts a stub SSE handler that blocks until context done.
func routerWithSSE(t *testing.T, svc *archiveservice.Service, authEnabled bool, token string) http.Handler {
	t.Helper()
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
	return NewRouter(svc, authEnabled, token, sseHandler)
}
