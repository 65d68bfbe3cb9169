package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plipka7/FileChecker/backend/file"
)

func TestOpenFromPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "test.img")
	content := []byte("some image bytes")
	if err := os.WriteFile(p, content, 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := file.OpenFromPath(p)
	if err != nil {
		t.Fatalf("error opening image: %v", err)
	}

	size, err := b.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), size)
	}

	buf := make([]byte, 5)
	if _, err := b.ReadAt(buf, 5); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "image" {
		t.Errorf("expected %q, got %q", "image", buf)
	}

	if err := b.Close(); err != nil {
		t.Errorf("error closing backend: %v", err)
	}
}

func TestOpenFromPathMissing(t *testing.T) {
	_, err := file.OpenFromPath(filepath.Join(t.TempDir(), "nope.img"))
	if err == nil {
		t.Fatal("expected error for missing image, got nil")
	}
}

func TestOpenFromPathEmptyName(t *testing.T) {
	_, err := file.OpenFromPath("")
	if err == nil {
		t.Fatal("expected error for empty image name, got nil")
	}
}

func TestOpenFromPathEmptyFile(t *testing.T) {
	// zero-length files cannot be mapped; the plain-file path must serve them
	dir := t.TempDir()
	p := filepath.Join(dir, "empty.img")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := file.OpenFromPath(p)
	if err != nil {
		t.Fatalf("error opening empty image: %v", err)
	}
	defer b.Close()
	size, err := b.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 0 {
		t.Errorf("expected size 0, got %d", size)
	}
}
