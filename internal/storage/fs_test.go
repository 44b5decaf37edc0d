package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	f, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestWriteRead_RoundTrip(t *testing.T) {
	f := newTestFS(t)
	content := []byte{0xFF, 0xD8, 0xFF, 0x00}
	if err := f.Write("out/homer.jpg", content); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := f.Read("out/homer.jpg")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("read = %v, want %v", got, content)
	}
}

func TestWriteChunks_Concatenates(t *testing.T) {
	f := newTestFS(t)
	chunks := [][]byte{[]byte("abc"), nil, []byte("def")}
	if err := f.WriteChunks("joined.bin", chunks); err != nil {
		t.Fatalf("write chunks: %v", err)
	}
	got, err := f.Read("joined.bin")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "abcdef" {
		t.Errorf("content = %q, want %q", got, "abcdef")
	}
}

func TestSafePath_RejectsTraversal(t *testing.T) {
	f := newTestFS(t)
	if err := f.Write("../escape.bin", []byte("x")); err == nil {
		t.Error("traversal path accepted")
	}
	if err := f.Write("/abs/path.bin", []byte("x")); err == nil {
		t.Error("absolute path accepted")
	}
}

func TestList_ReturnsAllFiles(t *testing.T) {
	f := newTestFS(t)
	if err := f.Write("a.bin", []byte("aaa")); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("sub/b.bin", []byte("bb")); err != nil {
		t.Fatal(err)
	}
	metas, err := f.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len(metas) = %d, want 2", len(metas))
	}
	for _, m := range metas {
		if m.Checksum == "" {
			t.Errorf("missing checksum for %s", m.Path)
		}
	}
}

func TestDelete(t *testing.T) {
	f := newTestFS(t)
	if err := f.Write("gone.bin", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Delete("gone.bin"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.Root(), "gone.bin")); !os.IsNotExist(err) {
		t.Error("file still exists after delete")
	}
}

func TestNewFS_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "output")
	if _, err := NewFS(root); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}
