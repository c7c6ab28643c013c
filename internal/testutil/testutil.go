// Package testutil provides shared test helpers for databases, content
// directories and small corpora.
package testutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/virtualta/internal/corpus"
	"github.com/starford/virtualta/internal/index"
	"github.com/starford/virtualta/internal/models"
	"github.com/starford/virtualta/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "virtualta-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContentDir creates a temporary content directory holding files
// (relative path → content) and returns it with a storage.Provider.
func TestContentDir(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Docs is a small mixed corpus used across packages.
func Docs() []models.Document {
	return []models.Document{
		{Title: "Pandas basics", Content: "pandas dataframes and series", URL: "https://example.test/pandas", Type: models.CourseMaterial, SectionOrDate: "Week 2"},
		{Title: "Dataframes", Content: "dataframes joins pandas merge", URL: "https://example.test/merge", Type: models.CourseMaterial, SectionOrDate: "Week 2"},
		{Title: "Rootless containers", Content: "podman runs rootless containers without a daemon", URL: "https://example.test/podman", Type: models.DiscoursePost, SectionOrDate: "2025-01-10"},
	}
}

// Corpus wraps Docs in a corpus.
func Corpus() *corpus.Corpus {
	return corpus.New(corpus.SourceSnapshot, Docs())
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// PNG returns a base64 PNG of the given size.
func PNG(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
