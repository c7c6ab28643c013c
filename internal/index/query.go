package index

import (
	"strings"

	"github.com/starford/virtualta/internal/relevance"
)

// searchTerms reduces free text to the terms both search backends match on.
// Stopwords and short tokens are kept out so "how do I plot" searches "plot".
func searchTerms(query string) []string {
	terms := relevance.Keywords(query)
	if len(terms) == 0 {
		terms = relevance.Tokens(query)
	}
	return terms
}

// ftsQuery quotes each term so user input never reaches the FTS5 query
// syntax.
func ftsQuery(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}
