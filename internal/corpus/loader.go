package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/starford/virtualta/internal/models"
	"github.com/starford/virtualta/internal/parser"
	"github.com/starford/virtualta/internal/storage"
)

// DefaultFetchTimeout bounds the remote snapshot request.
const DefaultFetchTimeout = 30 * time.Second

// maxSnapshotBytes caps how much of a remote snapshot is read.
const maxSnapshotBytes = 32 << 20

// Loader builds a Corpus from the configured sources. The zero value loads
// the embedded fallback.
type Loader struct {
	snapshotPath    string
	sourceURL       string
	timeout         time.Duration
	content         storage.Provider
	saveSnapshot    bool
	disableFallback bool
	client          *http.Client
	logger          *slog.Logger

	base atomic.Pointer[Corpus]
}

// Option configures a Loader.
type Option func(*Loader)

// WithSnapshot reads (and, when save is set, writes back) the cache file at path.
func WithSnapshot(path string, save bool) Option {
	return func(l *Loader) {
		l.snapshotPath = path
		l.saveSnapshot = save
	}
}

// WithSource fetches a JSON snapshot from url when no snapshot file exists.
func WithSource(url string, timeout time.Duration) Option {
	return func(l *Loader) {
		l.sourceURL = url
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// WithContent appends Markdown documents from the content provider.
func WithContent(p storage.Provider) Option {
	return func(l *Loader) {
		l.content = p
	}
}

// WithoutFallback makes an unavailable source produce an empty corpus
// instead of the built-in documents.
func WithoutFallback() Option {
	return func(l *Loader) {
		l.disableFallback = true
	}
}

// WithHTTPClient replaces the client used for remote snapshots.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		timeout: DefaultFetchTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load builds a new corpus. It never fails: unreadable sources are logged
// and the next source in line is tried, ending with the fallback set.
func (l *Loader) Load(ctx context.Context) *Corpus {
	base := l.loadBase(ctx)
	l.base.Store(base)
	return l.withContent(base)
}

// Reload re-reads the content directory on top of the base set of the last
// Load. Before any Load it behaves like Load.
func (l *Loader) Reload(ctx context.Context) *Corpus {
	base := l.base.Load()
	if base == nil {
		return l.Load(ctx)
	}
	return l.withContent(base)
}

func (l *Loader) withContent(base *Corpus) *Corpus {
	c := base
	if l.content != nil {
		docs := l.contentDocuments()
		if len(docs) > 0 {
			c = base.With(docs)
		}
	}

	l.logger.Info("corpus loaded",
		slog.String("source", c.Source()),
		slog.Int("documents", c.Len()),
		slog.Int("course_material", c.CountByType(models.CourseMaterial)),
		slog.Int("discourse_posts", c.CountByType(models.DiscoursePost)))
	return c
}

func (l *Loader) loadBase(ctx context.Context) *Corpus {
	if l.snapshotPath != "" {
		c, err := l.readSnapshot()
		if err == nil {
			return c
		}
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("corpus: no snapshot file", slog.String("path", l.snapshotPath))
		} else {
			l.logger.Warn("corpus: snapshot unreadable", slog.String("path", l.snapshotPath), slog.String("error", err.Error()))
		}
	}

	var c *Corpus
	if l.sourceURL != "" {
		remote, err := l.fetch(ctx)
		if err != nil {
			l.logger.Warn("corpus: remote fetch failed", slog.String("url", l.sourceURL), slog.String("error", err.Error()))
		} else {
			c = remote
		}
	}
	if c == nil {
		if l.disableFallback {
			return Empty()
		}
		c = Fallback()
	}

	if l.saveSnapshot && l.snapshotPath != "" {
		if err := l.writeSnapshot(c); err != nil {
			l.logger.Warn("corpus: snapshot write failed", slog.String("path", l.snapshotPath), slog.String("error", err.Error()))
		} else {
			l.logger.Info("corpus: snapshot written", slog.String("path", l.snapshotPath))
		}
	}
	return c
}

func (l *Loader) readSnapshot() (*Corpus, error) {
	data, err := os.ReadFile(l.snapshotPath)
	if err != nil {
		return nil, err
	}
	s, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return New(SourceSnapshot, s.Documents()), nil
}

func (l *Loader) writeSnapshot(c *Corpus) error {
	dir := filepath.Dir(l.snapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("corpus: mkdir: %w", err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return err
	}
	data, err := NewSnapshot(c.Documents(), c.LoadedAt()).Encode()
	if err != nil {
		return err
	}
	return store.Write(filepath.Base(l.snapshotPath), data)
}

func (l *Loader) fetch(ctx context.Context) (*Corpus, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.sourceURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, l.sourceURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, err
	}
	s, err := DecodeSnapshot(body)
	if err != nil {
		return nil, err
	}
	return New(SourceRemote, s.Documents()), nil
}

// contentDocuments parses every Markdown file under the content root. Files
// that fail to parse are skipped.
func (l *Loader) contentDocuments() []models.Document {
	files, err := l.content.List("", ".md")
	if err != nil {
		l.logger.Warn("corpus: list content failed", slog.String("error", err.Error()))
		return nil
	}
	docs := make([]models.Document, 0, len(files))
	for _, f := range files {
		data, err := l.content.Read(f.Path)
		if err != nil {
			l.logger.Warn("corpus: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		doc, err := parser.Document(f.Path, data)
		if err != nil {
			l.logger.Warn("corpus: parse failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
