// Package answerer composes the rule matcher and the relevance scorer into
// a single question → answer function.
package answerer

import (
	"fmt"
	"strings"

	"github.com/starford/virtualta/internal/corpus"
	"github.com/starford/virtualta/internal/models"
	"github.com/starford/virtualta/internal/relevance"
	"github.com/starford/virtualta/internal/rules"
)

// Defaults for Options.
const (
	DefaultTopK     = 3
	DefaultMaxLinks = 5
)

const (
	snippetLen     = 200
	linkTextLen    = 50
	unknownAnswer  = "I don't know the answer to that yet. Please refer to the course materials and discourse posts, or post your question on the course discourse forum for clarification."
	genericPrefix  = "Based on the course materials: "
	genericSuffix  = " Please refer to the linked resources for more detailed information."
	defaultLinkTxt = "Relevant resource"
)

// Outcome says which path produced an answer.
type Outcome string

// Outcomes.
const (
	OutcomeRule    Outcome = "rule"
	OutcomeScored  Outcome = "scored"
	OutcomeUnknown Outcome = "unknown"
)

// Result is an answer plus how it was reached.
type Result struct {
	models.Answer
	Outcome Outcome
	RuleID  string
}

// Options tunes an Answerer.
type Options struct {
	TopK     int
	MaxLinks int
}

// Answerer answers questions from a fixed corpus and rule list. It holds no
// mutable state and is safe for concurrent use.
type Answerer struct {
	docs     []models.Document
	matcher  *rules.Matcher
	topK     int
	maxLinks int
}

// New returns an Answerer over a snapshot of c. A nil corpus is empty and a
// nil matcher has no rules.
func New(c *corpus.Corpus, m *rules.Matcher, opts Options) *Answerer {
	if m == nil {
		m = rules.NewMatcher(nil)
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MaxLinks <= 0 {
		opts.MaxLinks = DefaultMaxLinks
	}
	return &Answerer{
		docs:     c.Documents(),
		matcher:  m,
		topK:     opts.TopK,
		maxLinks: opts.MaxLinks,
	}
}

// Answer returns the answer and supporting links for question.
func (a *Answerer) Answer(question string, hasImage bool) models.Answer {
	return a.Explain(question, hasImage).Answer
}

// Explain is Answer with the decision path attached.
func (a *Answerer) Explain(question string, hasImage bool) Result {
	top := relevance.TopK(question, a.docs, a.topK)

	in := rules.NewInput(question, hasImage)
	in.HasContext = len(top) > 0
	if r, ok := a.matcher.Match(in); ok {
		links := newLinkSet(a.maxLinks)
		for _, l := range r.Links {
			links.add(l)
		}
		for _, sd := range top {
			links.add(docLink(sd.Document))
		}
		return Result{
			Answer:  models.Answer{Answer: r.Answer, Links: links.list()},
			Outcome: OutcomeRule,
			RuleID:  r.ID,
		}
	}

	if len(top) > 0 {
		links := newLinkSet(a.maxLinks)
		for _, sd := range top {
			links.add(docLink(sd.Document))
		}
		return Result{
			Answer:  models.Answer{Answer: synthesize(top), Links: links.list()},
			Outcome: OutcomeScored,
		}
	}

	return Result{
		Answer:  models.Answer{Answer: unknownAnswer, Links: []models.Link{}},
		Outcome: OutcomeUnknown,
	}
}

// DocumentCount returns the number of documents the answerer scores.
func (a *Answerer) DocumentCount() int { return len(a.docs) }

// RuleCount returns the number of rules the answerer evaluates.
func (a *Answerer) RuleCount() int { return a.matcher.Len() }

func synthesize(top []models.ScoredDocument) string {
	var b strings.Builder
	b.WriteString(genericPrefix)
	b.WriteString(relevance.Truncate(top[0].Document.Content, snippetLen))
	titles := make([]string, 0, len(top))
	for _, sd := range top {
		if sd.Document.Title != "" {
			titles = append(titles, sd.Document.Title)
		}
	}
	if len(titles) > 0 {
		fmt.Fprintf(&b, " Relevant resources: %s.", strings.Join(titles, "; "))
	}
	b.WriteString(genericSuffix)
	return b.String()
}

// docLink prefers a content snippet for the link text, falling back to the
// title for short documents.
func docLink(d models.Document) models.Link {
	text := d.Title
	if len([]rune(d.Content)) > linkTextLen {
		text = relevance.Truncate(d.Content, linkTextLen)
	}
	if text == "" {
		text = defaultLinkTxt
	}
	return models.Link{URL: d.URL, Text: text}
}

// truncate cuts s to n runes and marks the cut with "...".
type linkSet struct {
	seen  map[string]struct{}
	links []models.Link
	max   int
}

func newLinkSet(max int) *linkSet {
	return &linkSet{seen: map[string]struct{}{}, links: []models.Link{}, max: max}
}

func (s *linkSet) add(l models.Link) {
	if l.URL == "" || len(s.links) >= s.max {
		return
	}
	if _, dup := s.seen[l.URL]; dup {
		return
	}
	s.seen[l.URL] = struct{}{}
	s.links = append(s.links, l)
}

func (s *linkSet) list() []models.Link { return s.links }
