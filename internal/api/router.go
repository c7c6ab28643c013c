package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/virtualta/internal/qaservice"
)

// RouterConfig configures the /api router.
type RouterConfig struct {
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events behind auth but outside
	// the request timeout.
	Events http.Handler
	// Timeout bounds every non-streaming request; zero disables it.
	Timeout time.Duration
	// RateLimit caps non-streaming requests per second; zero disables it.
	RateLimit float64
	RateBurst int
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *qaservice.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))
		if cfg.Timeout > 0 {
			r.Use(middleware.Timeout(cfg.Timeout))
		}

		// Questions.
		r.Post("/", h.Ask)

		// Documents.
		r.Get("/search", h.Search)
		r.Get("/documents", h.ListDocuments)
		r.Get("/document", h.GetDocument)
		r.Get("/stats", h.Stats)

		// Token cost utility.
		r.Post("/calculate-tokens", h.CalculateTokens)
		r.Get("/solve-sample-problem", h.SolveSampleProblem)
		r.Get("/pricing", h.Pricing)
	})

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
