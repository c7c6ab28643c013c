// Package relevance ranks cached documents against a free-text question by
// keyword overlap.
package relevance

import (
	"sort"
	"strings"

	"github.com/starford/virtualta/internal/models"
)

// Score returns the number of keywords that occur in the document's title or
// content, case-insensitively.
func Score(keywords []string, doc models.Document) float64 {
	if len(keywords) == 0 {
		return 0
	}
	text := Normalize(doc.Title + " " + doc.Content)
	var n float64
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// Rank scores every document against question and returns those with a
// positive score, highest first. Equal scores keep their input order.
func Rank(question string, docs []models.Document) []models.ScoredDocument {
	keywords := Keywords(question)
	if len(keywords) == 0 {
		return nil
	}
	var out []models.ScoredDocument
	for _, d := range docs {
		if s := Score(keywords, d); s > 0 {
			out = append(out, models.ScoredDocument{Document: d, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// TopK ranks docs and keeps at most k results. k <= 0 keeps everything.
func TopK(question string, docs []models.Document, k int) []models.ScoredDocument {
	ranked := Rank(question, docs)
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
