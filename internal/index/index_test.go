package index

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/virtualta/internal/apperr"
	"github.com/starford/virtualta/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "virtualta-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleDocs() []models.Document {
	return []models.Document{
		{Title: "Python Basics", Content: "Install packages with pip inside a virtual environment.", URL: "https://example.test/python", Type: models.CourseMaterial, SectionOrDate: "Week 1"},
		{Title: "Docker vs Podman", Content: "Podman runs rootless containers.", URL: "https://example.test/podman", Type: models.DiscoursePost, SectionOrDate: "2025-01-10"},
		{Title: "Plotting", Content: "Use matplotlib for charts and pip to install it.", URL: "https://example.test/plot", Type: models.CourseMaterial},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{URL: "u1", Title: "Hello", Type: "course_material", Checksum: "abc", Content: "hello world"}
	if err := db.UpsertDocument(row); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	got, err := db.GetDocument("u1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Title != "Hello" || got.Content != "hello world" || got.Checksum != "abc" {
		t.Errorf("got %+v", got)
	}
	if got.IndexedAt.IsZero() {
		t.Error("indexed_at not set")
	}
	if d := got.Document(); d.Type != models.CourseMaterial || d.URL != "u1" {
		t.Errorf("Document() = %+v", d)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{URL: "u", Title: "Old", Checksum: "1", Content: "old"})
	_ = db.UpsertDocument(DocumentRow{URL: "u", Title: "New", Checksum: "2", Content: "new"})

	got, err := db.GetDocument("u")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New" || got.Checksum != "2" {
		t.Errorf("got %+v, want updated row", got)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetDocument("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{URL: "del", Checksum: "x", Content: "body"})
	if err := db.DeleteDocument("del"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := db.GetDocument("del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted document still present: %v", err)
	}
}

func TestListDocuments(t *testing.T) {
	db := testDB(t)
	if _, err := Sync(db, sampleDocs(), quietLogger()); err != nil {
		t.Fatal(err)
	}

	rows, total, err := db.ListDocuments(2, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("total=%d rows=%d, want 3/2", total, len(rows))
	}
	if rows[0].URL != "https://example.test/python" || rows[1].URL != "https://example.test/podman" {
		t.Errorf("rows not in cache order: %+v", rows)
	}
	if rows[0].Content != "" {
		t.Error("list should not carry content")
	}

	rows, total, err = db.ListDocuments(10, 0, "discourse_post")
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Title != "Docker vs Podman" {
		t.Errorf("type filter: total=%d rows=%+v", total, rows)
	}

	rows, _, err = db.ListDocuments(10, 5, "")
	if err != nil {
		t.Fatal(err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("past the end should be empty, got %+v", rows)
	}
}

func TestCountByType(t *testing.T) {
	db := testDB(t)
	if _, err := Sync(db, sampleDocs(), quietLogger()); err != nil {
		t.Fatal(err)
	}
	counts, err := db.CountByType()
	if err != nil {
		t.Fatal(err)
	}
	if counts["course_material"] != 2 || counts["discourse_post"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	docs := sampleDocs()

	st, err := Sync(db, docs, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if st.Upserted != 3 {
		t.Errorf("first sync = %+v, want 3 upserted", st)
	}

	st, _ = Sync(db, docs, quietLogger())
	if st.Unchanged != 3 || st.Upserted != 0 {
		t.Errorf("second sync = %+v, want 3 unchanged", st)
	}

	// Drop the first document, edit the last: the middle one only moves.
	next := []models.Document{docs[1], docs[2]}
	next[1].Content = "Seaborn builds on matplotlib."
	st, _ = Sync(db, next, quietLogger())
	if st.Removed != 1 || st.Moved != 1 || st.Upserted != 1 {
		t.Errorf("third sync = %+v, want 1 removed, 1 moved, 1 upserted", st)
	}
	got, err := db.GetDocument("https://example.test/podman")
	if err != nil {
		t.Fatal(err)
	}
	if got.Position != 0 {
		t.Errorf("position = %d, want 0", got.Position)
	}
	got, _ = db.GetDocument("https://example.test/plot")
	if got.Content != "Seaborn builds on matplotlib." {
		t.Errorf("content not updated: %q", got.Content)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	if _, err := Sync(db, sampleDocs(), quietLogger()); err != nil {
		t.Fatal(err)
	}

	results, err := db.Search("rootless", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://example.test/podman" {
		t.Errorf("search results = %+v, want 1 hit", results)
	}
	if results[0].Type != "discourse_post" {
		t.Errorf("type = %q", results[0].Type)
	}
}

func TestSearch_AllTermsMustMatch(t *testing.T) {
	db := testDB(t)
	if _, err := Sync(db, sampleDocs(), quietLogger()); err != nil {
		t.Fatal(err)
	}

	results, err := db.Search("how do I install with pip", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("pip+install hits = %+v, want 2", results)
	}

	results, err = db.Search("pip matplotlib", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].URL != "https://example.test/plot" {
		t.Errorf("pip+matplotlib hits = %+v", results)
	}
}

func TestSearch_EmptyAndSyntax(t *testing.T) {
	db := testDB(t)
	if _, err := Sync(db, sampleDocs(), quietLogger()); err != nil {
		t.Fatal(err)
	}
	for _, q := range []string{"", "  ?? ", `"unbalanced AND (`} {
		results, err := db.Search(q, 10)
		if err != nil {
			t.Errorf("Search(%q): %v", q, err)
		}
		if results == nil {
			t.Errorf("Search(%q) returned nil slice", q)
		}
	}
}

func TestSearchTerms(t *testing.T) {
	got := searchTerms("How do I plot with Matplotlib?")
	if len(got) != 2 || got[0] != "plot" || got[1] != "matplotlib" {
		t.Errorf("searchTerms = %v", got)
	}
	if q := ftsQuery([]string{"a\"b", "c"}); q != `"a""b" "c"` {
		t.Errorf("ftsQuery = %s", q)
	}
}
