package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/virtualta/internal/answerer"
	"github.com/starford/virtualta/internal/corpus"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Answer  AnswerConfig      `yaml:"answer"`
	Auth    AuthConfig        `yaml:"auth"`
	CORS    CORSConfig        `yaml:"cors"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Answer.Validate(); err != nil {
		return fmt.Errorf("answer: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// RequestTimeout bounds every /api request except the event stream.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RateLimit is the global /api request rate per second; zero disables it.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.RateBurst, validation.Min(0)),
	)
}

// ContentConfig describes where the document cache comes from.
//
// The base set is read from SnapshotPath, else fetched from SourceURL, else
// taken from the built-in fallback. Markdown documents under Dir are added
// on top and, with Watch, reloaded when they change.
type ContentConfig struct {
	SnapshotPath    string        `yaml:"snapshot_path"`
	SaveSnapshot    bool          `yaml:"save_snapshot"`
	SourceURL       string        `yaml:"source_url"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	Dir             string        `yaml:"dir"`
	Watch           bool          `yaml:"watch"`
	DisableFallback bool          `yaml:"disable_fallback"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SourceURL, is.URL),
		validation.Field(&c.FetchTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Dir, validation.When(c.Watch, validation.Required.Error("is required when watch is enabled"))),
		validation.Field(&c.SnapshotPath, validation.When(c.SaveSnapshot, validation.Required.Error("is required when save_snapshot is enabled"))),
	)
}

// SQLiteConfig holds SQLite database configuration. An empty Path runs
// without the search index; search then falls back to relevance ranking.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the index should be opened.
func (c *SQLiteConfig) Enabled() bool {
	return c.Path != ""
}

// AnswerConfig tunes answer composition.
type AnswerConfig struct {
	TopK     int `yaml:"top_k"`
	MaxLinks int `yaml:"max_links"`
}

// Validate validates the answer configuration.
func (c *AnswerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TopK, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&c.MaxLinks, validation.Required, validation.Min(1), validation.Max(50)),
	)
}

// Options converts the config to answerer options.
func (c *AnswerConfig) Options() answerer.Options {
	return answerer.Options{TopK: c.TopK, MaxLinks: c.MaxLinks}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): /api is open, as students and graders expect.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// CORSConfig lists allowed browser origins; empty allows all.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:           8000,
				RequestTimeout: 30 * time.Second,
				RateBurst:      20,
			},
		},
		Content: ContentConfig{
			SnapshotPath: "./data/tds_data_cache.json",
			FetchTimeout: corpus.DefaultFetchTimeout,
		},
		SQLite: SQLiteConfig{
			Path: "./virtualta.db",
		},
		Answer: AnswerConfig{
			TopK:     answerer.DefaultTopK,
			MaxLinks: answerer.DefaultMaxLinks,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
