package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/virtualta/internal/api"
	"github.com/starford/virtualta/internal/corpus"
	"github.com/starford/virtualta/internal/index"
	"github.com/starford/virtualta/internal/metrics"
	"github.com/starford/virtualta/internal/qaservice"
	"github.com/starford/virtualta/internal/storage"
)

// components are the long-lived parts shared by every command.
type components struct {
	loader  *corpus.Loader
	db      *index.DB
	metrics *metrics.Metrics
	svc     *qaservice.Service
}

func (c *components) Close() {
	if c.db != nil {
		_ = c.db.Close()
	}
}

// pinger returns the index as a health dependency, or nil without one.
func (c *components) pinger() api.Pinger {
	if c.db == nil {
		return nil
	}
	return c.db
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := app.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return app, nil
}

// build opens the index, loads the corpus and returns a ready service.
// pub may be nil.
func (a *application) build(ctx context.Context, logger *slog.Logger, pub qaservice.Publisher) (*components, error) {
	cfg := a.config

	loaderOpts := []corpus.Option{
		corpus.WithLogger(logger),
		corpus.WithSource(cfg.Content.SourceURL, cfg.Content.FetchTimeout),
	}
	if cfg.Content.SnapshotPath != "" {
		loaderOpts = append(loaderOpts, corpus.WithSnapshot(cfg.Content.SnapshotPath, cfg.Content.SaveSnapshot))
	}
	if cfg.Content.DisableFallback {
		loaderOpts = append(loaderOpts, corpus.WithoutFallback())
	}
	if cfg.Content.Dir != "" {
		store, err := openContentDir(cfg.Content.Dir)
		if err != nil {
			return nil, err
		}
		loaderOpts = append(loaderOpts, corpus.WithContent(store))
	}

	c := &components{loader: corpus.NewLoader(loaderOpts...)}
	if cfg.Metrics.Enabled {
		c.metrics = metrics.New()
	}

	svcOpts := []qaservice.Option{
		qaservice.WithLogger(logger),
		qaservice.WithAnswerOptions(cfg.Answer.Options()),
		qaservice.WithMetrics(c.metrics),
	}
	if cfg.SQLite.Enabled() {
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		c.db = db
		svcOpts = append(svcOpts, qaservice.WithIndex(db))
	}
	if pub != nil {
		svcOpts = append(svcOpts, qaservice.WithPublisher(pub))
	}

	c.svc = qaservice.New(nil, svcOpts...)
	c.svc.Reload(ctx, c.loader.Load(ctx), nil)
	return c, nil
}

// reload is the watcher callback: rebuild the corpus and swap it in.
func (c *components) reload(ctx context.Context, paths []string) {
	c.svc.Reload(ctx, c.loader.Reload(ctx), paths)
}

// httpDeps are the optional handlers mounted next to the API.
type httpDeps struct {
	events  http.Handler
	metrics *metrics.Metrics
	index   api.Pinger
}

// newHTTPHandler builds the root router: health and metrics at the top
// level, the question API under /api.
func newHTTPHandler(cfg *Config, svc *qaservice.Service, deps httpDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.CORSMiddleware(cfg.CORS.Origins))

	// Health check endpoints (unauthenticated).
	health := api.NewHealthHandler(svc, deps.index)
	r.Get("/health", health.Health)
	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)

	if deps.metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.metrics.Handler())
	}

	r.Get("/", serviceIndex)

	r.Mount("/api", api.NewRouter(svc, api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Events:      deps.events,
		Timeout:     cfg.App.HTTP.RequestTimeout,
		RateLimit:   cfg.App.HTTP.RateLimit,
		RateBurst:   cfg.App.HTTP.RateBurst,
	}))
	return r
}

func serviceIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("TDS Virtual TA\n\n" +
		"POST /api/                      {\"question\": \"...\", \"image\": \"<base64>\"}\n" +
		"POST /api/calculate-tokens      {\"text\": \"...\", \"model\": \"gpt-3.5-turbo-0125\"}\n" +
		"GET  /api/solve-sample-problem\n" +
		"GET  /api/search?q=...\n" +
		"GET  /health\n"))
}

func openContentDir(dir string) (*storage.FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}
