package corpus_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/virtualta/internal/corpus"
	"github.com/starford/virtualta/internal/models"
	"github.com/starford/virtualta/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_DedupesByURL(t *testing.T) {
	t.Parallel()

	c := corpus.New("test", []models.Document{
		{Title: "first", URL: "a"},
		{Title: "no url"},
		{Title: "second", URL: "b"},
		{Title: "dup", URL: "a"},
	})
	require.Equal(t, 2, c.Len())
	docs := c.Documents()
	assert.Equal(t, "first", docs[0].Title)
	assert.Equal(t, "second", docs[1].Title)

	d, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "first", d.Title)
	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestCorpus_DocumentsIsACopy(t *testing.T) {
	t.Parallel()

	c := corpus.New("test", []models.Document{{Title: "orig", URL: "a"}})
	docs := c.Documents()
	docs[0].Title = "changed"
	assert.Equal(t, "orig", c.Documents()[0].Title)
}

func TestCorpus_NilIsEmpty(t *testing.T) {
	t.Parallel()

	var c *corpus.Corpus
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Documents())
	assert.Equal(t, corpus.SourceEmpty, c.Source())
}

func TestFallback(t *testing.T) {
	t.Parallel()

	c := corpus.Fallback()
	assert.Equal(t, corpus.SourceFallback, c.Source())
	assert.Equal(t, 14, c.Len())
	assert.Equal(t, 8, c.CountByType(models.CourseMaterial))
	assert.Equal(t, 6, c.CountByType(models.DiscoursePost))

	d, ok := c.Lookup("https://discourse.onlinedegree.iitm.ac.in/t/python-setup/155940")
	require.True(t, ok)
	assert.Equal(t, "2025-01-10", d.SectionOrDate)
}

func TestSnapshot_RoundTripKeepsLists(t *testing.T) {
	t.Parallel()

	docs := corpus.Fallback().Documents()
	data, err := corpus.NewSnapshot(docs, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).Encode()
	require.NoError(t, err)

	s, err := corpus.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Len(t, s.CourseContent, 8)
	assert.Len(t, s.DiscoursePosts, 6)
	assert.Equal(t, 14, s.Metadata.TotalDocuments)
	assert.Equal(t, docs, s.Documents())
}

func TestSnapshot_TypeFromList(t *testing.T) {
	t.Parallel()

	s, err := corpus.DecodeSnapshot([]byte(`{"course_content":[{"title":"c","url":"c"}],"discourse_posts":[{"title":"p","url":"p","date":"2025-01-01"}]}`))
	require.NoError(t, err)
	docs := s.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, models.CourseMaterial, docs[0].Type)
	assert.Equal(t, models.DiscoursePost, docs[1].Type)
	assert.Equal(t, "2025-01-01", docs[1].SectionOrDate)
}

func TestLoader_ZeroConfigUsesFallback(t *testing.T) {
	t.Parallel()

	c := corpus.NewLoader(corpus.WithLogger(quietLogger())).Load(context.Background())
	assert.Equal(t, corpus.SourceFallback, c.Source())
	assert.Equal(t, 14, c.Len())
}

func TestLoader_SnapshotPreferred(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"course_content":[{"title":"Only","content":"x","url":"u"}],"discourse_posts":[]}`), 0o644))

	c := corpus.NewLoader(corpus.WithSnapshot(path, true), corpus.WithLogger(quietLogger())).Load(context.Background())
	assert.Equal(t, corpus.SourceSnapshot, c.Source())
	assert.Equal(t, 1, c.Len())
}

func TestLoader_WritesSnapshotAfterFallback(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "cache.json")
	c := corpus.NewLoader(corpus.WithSnapshot(path, true), corpus.WithLogger(quietLogger())).Load(context.Background())
	assert.Equal(t, corpus.SourceFallback, c.Source())

	again := corpus.NewLoader(corpus.WithSnapshot(path, false), corpus.WithLogger(quietLogger())).Load(context.Background())
	assert.Equal(t, corpus.SourceSnapshot, again.Source())
	assert.Equal(t, c.Documents(), again.Documents())
}

func TestLoader_CorruptSnapshotFallsBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := corpus.NewLoader(corpus.WithSnapshot(path, false), corpus.WithLogger(quietLogger())).Load(context.Background())
	assert.Equal(t, corpus.SourceFallback, c.Source())
}

func TestLoader_Remote(t *testing.T) {
	t.Parallel()

	t.Run("uses remote snapshot", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"course_content":[],"discourse_posts":[{"title":"Remote","content":"r","url":"r1"}]}`))
		}))
		defer srv.Close()

		c := corpus.NewLoader(corpus.WithSource(srv.URL, time.Second), corpus.WithLogger(quietLogger())).Load(context.Background())
		assert.Equal(t, corpus.SourceRemote, c.Source())
		assert.Equal(t, 1, c.Len())
	})

	t.Run("falls back on server error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := corpus.NewLoader(corpus.WithSource(srv.URL, time.Second), corpus.WithLogger(quietLogger())).Load(context.Background())
		assert.Equal(t, corpus.SourceFallback, c.Source())
	})

	t.Run("empty when fallback disabled", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := corpus.NewLoader(corpus.WithSource(srv.URL, time.Second), corpus.WithoutFallback(), corpus.WithLogger(quietLogger())).Load(context.Background())
		assert.Equal(t, 0, c.Len())
	})

	t.Run("times out", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		c := corpus.NewLoader(corpus.WithSource(srv.URL, 20*time.Millisecond), corpus.WithLogger(quietLogger())).Load(context.Background())
		assert.Equal(t, corpus.SourceFallback, c.Source())
	})
}

func TestLoader_ContentDirectoryAppended(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	require.NoError(t, err)
	require.NoError(t, store.Write("week1/pandas.md", []byte("---\ntitle: Pandas Cheatsheet\nurl: https://example.test/pandas\n---\nGroupby and merge.\n")))
	require.NoError(t, store.Write("broken.md", []byte("---\ntype: podcast\n---\nbody")))

	c := corpus.NewLoader(corpus.WithContent(store), corpus.WithLogger(quietLogger())).Load(context.Background())
	assert.Equal(t, 15, c.Len())
	docs := c.Documents()
	assert.Equal(t, "Pandas Cheatsheet", docs[len(docs)-1].Title)
}

func TestLoader_ReloadKeepsBaseSet(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"course_content":[{"title":"Remote","content":"r","url":"r1"}],"discourse_posts":[]}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	require.NoError(t, err)

	loader := corpus.NewLoader(corpus.WithSource(srv.URL, time.Second), corpus.WithContent(store), corpus.WithLogger(quietLogger()))
	first := loader.Load(context.Background())
	require.Equal(t, 1, first.Len())

	require.NoError(t, store.Write("extra.md", []byte("---\ntitle: Extra\nurl: https://example.test/extra\n---\nbody\n")))
	second := loader.Reload(context.Background())

	assert.Equal(t, 2, second.Len())
	assert.Equal(t, corpus.SourceRemote, second.Source())
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, first.Len(), "earlier snapshot must not change")
}

func TestLoader_ReloadBeforeLoad(t *testing.T) {
	t.Parallel()

	c := corpus.NewLoader(corpus.WithLogger(quietLogger())).Reload(context.Background())
	assert.Equal(t, corpus.SourceFallback, c.Source())
}
