// Package qaservice serves questions from the current corpus snapshot and
// swaps in new snapshots on reload.
package qaservice

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/starford/virtualta/internal/answerer"
	"github.com/starford/virtualta/internal/apperr"
	"github.com/starford/virtualta/internal/corpus"
	"github.com/starford/virtualta/internal/imageinfo"
	"github.com/starford/virtualta/internal/index"
	"github.com/starford/virtualta/internal/metrics"
	"github.com/starford/virtualta/internal/models"
	"github.com/starford/virtualta/internal/relevance"
	"github.com/starford/virtualta/internal/rules"
	"github.com/starford/virtualta/internal/sse"
)

// Publisher receives service activity. *sse.Broker satisfies it.
type Publisher interface {
	PublishReload(sse.Reload)
	PublishAnswered(sse.Answered)
}

// snapshot is one immutable generation of the service state.
type snapshot struct {
	corpus   *corpus.Corpus
	answerer *answerer.Answerer
}

// Service answers questions. Reload replaces the whole snapshot atomically,
// so a request always sees one consistent corpus.
type Service struct {
	current atomic.Pointer[snapshot]
	reloads atomic.Int64

	matcher *rules.Matcher
	opts    answerer.Options
	db      *index.DB
	metrics *metrics.Metrics
	events  Publisher
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAnswerOptions sets the answerer's top-K and link cap.
func WithAnswerOptions(o answerer.Options) Option {
	return func(s *Service) { s.opts = o }
}

// WithIndex mirrors each snapshot into db and serves search from it.
func WithIndex(db *index.DB) Option {
	return func(s *Service) { s.db = db }
}

// WithMetrics records answers and reloads.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher announces answers and reloads.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a service with no corpus; it is not ready until the first
// Reload. A nil matcher means the built-in rules.
func New(m *rules.Matcher, opts ...Option) *Service {
	if m == nil {
		m = rules.Default()
	}
	s := &Service{matcher: m, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether a corpus has been loaded.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Reload builds an answerer over c and makes it current. changed lists the
// content files that triggered the reload, if any. Index sync failures are
// logged; the new snapshot is served regardless.
func (s *Service) Reload(_ context.Context, c *corpus.Corpus, changed []string) {
	if c == nil {
		c = corpus.Empty()
	}
	next := &snapshot{corpus: c, answerer: answerer.New(c, s.matcher, s.opts)}
	prev := s.current.Swap(next)

	if s.db != nil {
		if _, err := index.Sync(s.db, c.Documents(), s.logger); err != nil {
			s.logger.Error("index sync failed", slog.String("error", err.Error()))
		}
	}

	s.metrics.SetDocuments(map[string]int{
		string(models.CourseMaterial): c.CountByType(models.CourseMaterial),
		string(models.DiscoursePost):  c.CountByType(models.DiscoursePost),
	})
	if prev != nil {
		s.reloads.Add(1)
		s.metrics.IncReloads()
	}
	if s.events != nil {
		s.events.PublishReload(sse.Reload{Source: c.Source(), Documents: c.Len(), Changed: changed})
	}
	s.logger.Info("corpus ready",
		slog.String("source", c.Source()),
		slog.Int("documents", c.Len()),
		slog.Int("rules", s.matcher.Len()))
}

// Question is one incoming question with an optional base64 image.
type Question struct {
	Text  string
	Image string
}

// Reply is an answer plus diagnostics for logging and tools.
type Reply struct {
	models.Answer
	Outcome answerer.Outcome
	RuleID  string
	Image   *imageinfo.Info
}

// Ask answers q against the current snapshot. It fails only with
// apperr.ErrNotReady. An image that cannot be inspected is logged and the
// question is answered as if no image were attached.
func (s *Service) Ask(ctx context.Context, q Question) (Reply, error) {
	snap := s.current.Load()
	if snap == nil {
		return Reply{}, apperr.ErrNotReady
	}
	start := time.Now()

	var img *imageinfo.Info
	if strings.TrimSpace(q.Image) != "" {
		info, err := imageinfo.Inspect(q.Image)
		s.metrics.ObserveImage(err == nil)
		if err != nil {
			s.logger.WarnContext(ctx, "image attachment ignored", slog.String("error", err.Error()))
		} else {
			img = &info
			s.logger.InfoContext(ctx, "image attachment", slog.String("context", info.Context()))
		}
	}

	res := snap.answerer.Explain(q.Text, img != nil)
	s.metrics.ObserveAnswer(string(res.Outcome), res.RuleID, time.Since(start))
	if s.events != nil {
		s.events.PublishAnswered(sse.Answered{Outcome: string(res.Outcome), RuleID: res.RuleID, Links: len(res.Links)})
	}
	s.logger.DebugContext(ctx, "question answered",
		slog.String("outcome", string(res.Outcome)),
		slog.String("rule", res.RuleID),
		slog.Int("links", len(res.Links)))

	return Reply{Answer: res.Answer, Outcome: res.Outcome, RuleID: res.RuleID, Image: img}, nil
}

// snippetLen bounds the content excerpt of an in-memory search hit.
const snippetLen = 200

// Search returns documents matching query: through the index when one is
// configured, otherwise by relevance over the current corpus.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, apperr.ErrNotReady
	}
	if limit <= 0 {
		limit = index.DefaultLimit
	}
	if s.db != nil {
		return s.db.Search(query, limit)
	}

	scored := relevance.TopK(query, snap.corpus.Documents(), limit)
	out := make([]index.SearchResult, 0, len(scored))
	for _, sd := range scored {
		out = append(out, index.SearchResult{
			URL:     sd.Document.URL,
			Title:   sd.Document.Title,
			Type:    string(sd.Document.Type),
			Snippet: relevance.Truncate(sd.Document.Content, snippetLen),
		})
	}
	return out, nil
}

// ListDocuments pages through the current corpus in cache order without
// document content. docType filters when non-empty.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, docType string) ([]index.DocumentRow, int, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, 0, apperr.ErrNotReady
	}
	if s.db != nil {
		return s.db.ListDocuments(limit, offset, docType)
	}
	if limit <= 0 {
		limit = index.DefaultLimit
	}

	var all []index.DocumentRow
	for i, d := range snap.corpus.Documents() {
		if docType != "" && string(d.Type) != docType {
			continue
		}
		all = append(all, index.DocumentRow{
			URL:           d.URL,
			Position:      i,
			Title:         d.Title,
			Type:          string(d.Type),
			SectionOrDate: d.SectionOrDate,
			IndexedAt:     snap.corpus.LoadedAt(),
		})
	}
	total := len(all)
	if offset >= total || offset < 0 {
		return []index.DocumentRow{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

// Document returns one document of the current corpus by URL.
func (s *Service) Document(_ context.Context, url string) (models.Document, error) {
	snap := s.current.Load()
	if snap == nil {
		return models.Document{}, apperr.ErrNotReady
	}
	d, ok := snap.corpus.Lookup(url)
	if !ok {
		return models.Document{}, apperr.ErrNotFound
	}
	return d, nil
}

// Stats summarises the current snapshot.
type Stats struct {
	Ready           bool      `json:"ready"`
	Source          string    `json:"source"`
	LoadedAt        time.Time `json:"loaded_at"`
	Documents       int       `json:"documents"`
	CourseMaterials int       `json:"course_materials"`
	DiscoursePosts  int       `json:"discourse_posts"`
	Rules           int       `json:"rules"`
	RuleIDs         []string  `json:"rule_ids"`
	Reloads         int64     `json:"reloads"`
	// Indexed counts the SQLite mirror by type; absent without an index.
	Indexed map[string]int `json:"indexed,omitempty"`
}

// Stats returns counts for the current snapshot.
func (s *Service) Stats() Stats {
	st := Stats{
		Source:  corpus.SourceEmpty,
		Rules:   s.matcher.Len(),
		RuleIDs: s.matcher.IDs(),
		Reloads: s.reloads.Load(),
	}
	snap := s.current.Load()
	if snap == nil {
		return st
	}
	c := snap.corpus
	st.Ready = true
	st.Source = c.Source()
	st.LoadedAt = c.LoadedAt()
	st.Documents = c.Len()
	st.CourseMaterials = c.CountByType(models.CourseMaterial)
	st.DiscoursePosts = c.CountByType(models.DiscoursePost)
	if s.db != nil {
		counts, err := s.db.CountByType()
		if err != nil {
			s.logger.Warn("index count failed", slog.String("error", err.Error()))
		} else {
			st.Indexed = counts
		}
	}
	return st
}
