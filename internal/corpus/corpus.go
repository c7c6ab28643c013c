// Package corpus holds the read-only document cache the answerer scores
// against, and the loaders that build it.
package corpus

import (
	"slices"
	"time"

	"github.com/starford/virtualta/internal/models"
)

// Sources a corpus can be loaded from.
const (
	SourceSnapshot = "snapshot"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
	SourceEmpty    = "empty"
)

// Corpus is an immutable, ordered set of documents keyed by URL.
type Corpus struct {
	docs     []models.Document
	byURL    map[string]int
	source   string
	loadedAt time.Time
}

// New builds a corpus from docs. Documents without a URL are dropped and a
// repeated URL keeps its first occurrence. Order is otherwise preserved.
func New(source string, docs []models.Document) *Corpus {
	c := &Corpus{
		docs:     make([]models.Document, 0, len(docs)),
		byURL:    make(map[string]int, len(docs)),
		source:   source,
		loadedAt: time.Now().UTC(),
	}
	for _, d := range docs {
		if d.URL == "" {
			continue
		}
		if _, dup := c.byURL[d.URL]; dup {
			continue
		}
		c.byURL[d.URL] = len(c.docs)
		c.docs = append(c.docs, d)
	}
	return c
}

// Empty returns a corpus with no documents.
func Empty() *Corpus { return New(SourceEmpty, nil) }

// Documents returns a copy of the documents in cache order.
func (c *Corpus) Documents() []models.Document {
	if c == nil {
		return nil
	}
	return slices.Clone(c.docs)
}

// Len returns the number of documents. A nil corpus is empty.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// Lookup returns the document with the given URL.
func (c *Corpus) Lookup(url string) (models.Document, bool) {
	if c == nil {
		return models.Document{}, false
	}
	i, ok := c.byURL[url]
	if !ok {
		return models.Document{}, false
	}
	return c.docs[i], true
}

// CountByType returns the number of documents of type t.
func (c *Corpus) CountByType(t models.DocumentType) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.docs {
		if d.Type == t {
			n++
		}
	}
	return n
}

// Source names where the base documents came from.
func (c *Corpus) Source() string {
	if c == nil {
		return SourceEmpty
	}
	return c.source
}

// LoadedAt returns when the corpus was built.
func (c *Corpus) LoadedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.loadedAt
}

// With returns a new corpus holding c's documents followed by extra.
func (c *Corpus) With(extra []models.Document) *Corpus {
	docs := append(c.Documents(), extra...)
	out := New(c.Source(), docs)
	out.loadedAt = c.LoadedAt()
	return out
}
