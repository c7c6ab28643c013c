package relevance

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// minKeywordLen drops very short tokens ("is", "my", "do") from scoring.
const minKeywordLen = 3

var stopWords = map[string]bool{
	"and": true, "are": true, "but": true, "can": true, "did": true, "does": true,
	"for": true, "from": true, "had": true, "has": true, "have": true, "how": true,
	"its": true, "not": true, "should": true, "that": true, "the": true, "their": true,
	"then": true, "there": true, "this": true, "was": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "who": true, "why": true, "will": true,
	"with": true, "would": true, "you": true, "your": true,
}

// Normalize applies NFKC normalisation and lowercases s.
func Normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Truncate cuts s to at most n runes, marking a cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Tokens splits s into lowercase runs of letters and digits.
func Tokens(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Keywords returns the deduplicated scoring keywords of a question in
// first-seen order.
func Keywords(question string) []string {
	tokens := Tokens(question)
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, t := range tokens {
		if len([]rune(t)) < minKeywordLen || stopWords[t] {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
