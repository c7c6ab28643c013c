//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts`).Scan(&count); err != nil {
		t.Fatalf("documents_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{URL: "fts", Title: "FTS Doc", Type: "course_material", Checksum: "f1",
		Content: "The virtual TA provides powerful full-text search capabilities."}
	if err := db.UpsertDocument(row); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Snippet == "" || results[0].Type != "course_material" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestFTS5_DeleteRemovesFromIndex(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{URL: "gone", Checksum: "g", Content: "ephemeral words"})
	if err := db.DeleteDocument("gone"); err != nil {
		t.Fatal(err)
	}
	results, err := db.Search("ephemeral", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("deleted document still searchable: %+v", results)
	}
}
