package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/virtualta/internal/apperr"
	"github.com/starford/virtualta/internal/models"
)

// DefaultLimit applies when a caller passes a non-positive limit.
const DefaultLimit = 20

// DocumentRow is one row of the documents table.
type DocumentRow struct {
	URL           string    `json:"url"`
	Position      int       `json:"position"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	SectionOrDate string    `json:"section_or_date,omitempty"`
	Checksum      string    `json:"checksum"`
	Content       string    `json:"content,omitempty"`
	IndexedAt     time.Time `json:"indexed_at"`
}

// Document converts the row back to the domain type.
func (r DocumentRow) Document() models.Document {
	return models.Document{
		Title:         r.Title,
		Content:       r.Content,
		URL:           r.URL,
		Type:          models.DocumentType(r.Type),
		SectionOrDate: r.SectionOrDate,
	}
}

// SearchResult is one search hit.
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Snippet string `json:"snippet"`
}

// Entry is the change-detection state of an indexed document.
type Entry struct {
	Checksum string
	Position int
}

// UpsertDocument inserts or replaces a document and its FTS entry.
func (db *DB) UpsertDocument(r DocumentRow) error {
	if r.IndexedAt.IsZero() {
		r.IndexedAt = time.Now().UTC()
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (url, position, title, type, section_or_date, checksum, content, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			position        = excluded.position,
			title           = excluded.title,
			type            = excluded.type,
			section_or_date = excluded.section_or_date,
			checksum        = excluded.checksum,
			content         = excluded.content,
			indexed_at      = excluded.indexed_at
	`, r.URL, r.Position, r.Title, r.Type, r.SectionOrDate, r.Checksum, r.Content, r.IndexedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}
	if err := ftsUpsert(tx, r.URL, r.Title, r.Content); err != nil {
		return err
	}
	return tx.Commit()
}

// SetPosition moves an unchanged document to a new cache position.
func (db *DB) SetPosition(url string, position int) error {
	if _, err := db.conn.Exec(`UPDATE documents SET position = ? WHERE url = ?`, position, url); err != nil {
		return fmt.Errorf("index: set position: %w", err)
	}
	return nil
}

// DeleteDocument removes a document and its FTS entry.
func (db *DB) DeleteDocument(url string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, url); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE url = ?`, url); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// GetDocument returns the full row for url or apperr.ErrNotFound.
func (db *DB) GetDocument(url string) (*DocumentRow, error) {
	var r DocumentRow
	err := db.conn.QueryRow(`
		SELECT url, position, title, type, section_or_date, checksum, content, indexed_at
		FROM documents WHERE url = ?
	`, url).Scan(&r.URL, &r.Position, &r.Title, &r.Type, &r.SectionOrDate, &r.Checksum, &r.Content, &r.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &r, nil
}

// ListDocuments pages through documents in cache order without their
// content. docType filters when non-empty. The total ignores paging.
func (db *DB) ListDocuments(limit, offset int, docType string) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(
		`SELECT count(*) FROM documents WHERE (? = '' OR type = ?)`, docType, docType,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT url, position, title, type, section_or_date, checksum, indexed_at
		FROM documents
		WHERE (? = '' OR type = ?)
		ORDER BY position, url
		LIMIT ? OFFSET ?
	`, docType, docType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []DocumentRow{}
	for rows.Next() {
		var r DocumentRow
		if err := rows.Scan(&r.URL, &r.Position, &r.Title, &r.Type, &r.SectionOrDate, &r.Checksum, &r.IndexedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// CountByType returns the number of indexed documents per type.
func (db *DB) CountByType() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT type, count(*) FROM documents GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("index: count by type: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}

// AllChecksums returns the change-detection state of every indexed document.
func (db *DB) AllChecksums() (map[string]Entry, error) {
	rows, err := db.conn.Query(`SELECT url, checksum, position FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]Entry)
	for rows.Next() {
		var url string
		var e Entry
		if err := rows.Scan(&url, &e.Checksum, &e.Position); err != nil {
			return nil, err
		}
		out[url] = e
	}
	return out, rows.Err()
}
