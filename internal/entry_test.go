package internal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/virtualta/internal/corpus"
)

func testApplication(t *testing.T, mutate func(*Config)) (*application, *components) {
	t.Helper()

	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Content.SnapshotPath = filepath.Join(dir, "cache.json")
	cfg.Content.Dir = filepath.Join(dir, "content")
	cfg.SQLite.Path = filepath.Join(dir, "index.db")
	if mutate != nil {
		mutate(cfg)
	}

	app, err := newApplication([]Option{WithConfig(cfg), WithLogOutput(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	c, err := app.build(context.Background(), app.newLogger(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	return app, c
}

func testHandler(t *testing.T, mutate func(*Config)) (http.Handler, *components) {
	t.Helper()
	app, c := testApplication(t, mutate)
	return newHTTPHandler(app.config, c.svc, httpDeps{metrics: c.metrics, index: c.pinger()}), c
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestNewApplication_RejectsInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Answer.TopK = 0
	if _, err := newApplication([]Option{WithConfig(cfg)}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuild_LoadsFallback(t *testing.T) {
	_, c := testApplication(t, nil)

	st := c.svc.Stats()
	if !st.Ready {
		t.Fatal("service should be ready after build")
	}
	if st.Source != corpus.SourceFallback {
		t.Errorf("source = %q, want fallback", st.Source)
	}
	if st.Documents != corpus.Fallback().Len() {
		t.Errorf("documents = %d", st.Documents)
	}
}

func TestBuild_WithoutIndex(t *testing.T) {
	_, c := testApplication(t, func(cfg *Config) { cfg.SQLite.Path = "" })
	if c.db != nil || c.pinger() != nil {
		t.Fatal("index should be disabled")
	}
	results, err := c.svc.Search(context.Background(), "docker podman", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Error("relevance search should find the docker documents")
	}
}

func TestReload_PicksUpContent(t *testing.T) {
	app, c := testApplication(t, nil)
	before := c.svc.Stats().Documents

	doc := "---\ntitle: Week 9 Notes\nurl: https://example.test/week9\n---\nVector databases and embeddings.\n"
	if err := os.WriteFile(filepath.Join(app.config.Content.Dir, "week9.md"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c.reload(context.Background(), []string{"week9.md"})

	st := c.svc.Stats()
	if st.Documents != before+1 {
		t.Errorf("documents = %d, want %d", st.Documents, before+1)
	}
	if st.Reloads != 1 {
		t.Errorf("reloads = %d, want 1", st.Reloads)
	}
	if _, err := c.svc.Document(context.Background(), "https://example.test/week9"); err != nil {
		t.Errorf("new document not served: %v", err)
	}
}

func TestHTTPHandler_Routes(t *testing.T) {
	h, _ := testHandler(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{"index", http.MethodGet, "/", "", http.StatusOK, "TDS Virtual TA"},
		{"live", http.MethodGet, "/health/live", "", http.StatusOK, "ok"},
		{"ready", http.MethodGet, "/health/ready", "", http.StatusOK, "ok"},
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"healthy"`},
		{"ask", http.MethodPost, "/api/", `{"question":"Should I use gpt-4o-mini which AI proxy supports, or gpt3.5 turbo?"}`, http.StatusOK, "gpt-3.5-turbo-0125"},
		{"sample", http.MethodGet, "/api/solve-sample-problem", "", http.StatusOK, "0.0006"},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, "virtualta_corpus_documents"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body missing %q: %s", tt.want, w.Body.String())
			}
		})
	}
}

func TestHTTPHandler_MetricsDisabled(t *testing.T) {
	h, _ := testHandler(t, func(cfg *Config) { cfg.Metrics.Enabled = false })

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHTTPHandler_CORS(t *testing.T) {
	h, _ := testHandler(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/", nil)
	req.Header.Set("Origin", "https://student.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestHTTPHandler_AuthGuardsAPIOnly(t *testing.T) {
	h, _ := testHandler(t, func(cfg *Config) {
		cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "s3cret"}
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("api without token = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("api with token = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health = %d, want 200", w.Code)
	}
}
