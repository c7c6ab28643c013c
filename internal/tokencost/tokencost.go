// Package tokencost estimates token counts and prices prompts against the
// course's model pricing table.
package tokencost

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/starford/virtualta/internal/apperr"
)

// Token types.
const (
	Input  = "input"
	Output = "output"
)

// DefaultModel is used when a request leaves the model empty.
const DefaultModel = "gpt-3.5-turbo-0125"

// charsPerToken is the rough ratio for English text.
const charsPerToken = 4

// Price is USD per million tokens.
type Price struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

var pricing = map[string]Price{
	"gpt-3.5-turbo-0125": {Input: 0.50, Output: 1.50},
	"gpt-4o-mini":        {Input: 0.15, Output: 0.60},
	"gpt-4":              {Input: 30.00, Output: 60.00},
}

// Pricing returns a copy of the pricing table.
func Pricing() map[string]Price {
	out := make(map[string]Price, len(pricing))
	for k, v := range pricing {
		out[k] = v
	}
	return out
}

// Models returns the supported model names, sorted.
func Models() []string {
	out := make([]string, 0, len(pricing))
	for k := range pricing {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Cost is the outcome of pricing a text.
type Cost struct {
	TokenCount            int     `json:"token_count"`
	CostDollars           float64 `json:"cost_dollars"`
	CostCents             float64 `json:"cost_cents"`
	Model                 string  `json:"model"`
	TokenType             string  `json:"token_type"`
	PricePerMillionTokens float64 `json:"price_per_million_tokens"`
}

var spaceRun = regexp.MustCompile(`\s+`)

// EstimateTokens approximates the token count of text at four characters
// per token after collapsing whitespace.
func EstimateTokens(text string) int {
	text = spaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" {
		return 0
	}
	return utf8.RuneCountInString(text) / charsPerToken
}

// Calculate prices text for model and token type. An empty model means
// DefaultModel and an empty token type means Input.
func Calculate(text, model, tokenType string) (Cost, error) {
	if model == "" {
		model = DefaultModel
	}
	if tokenType == "" {
		tokenType = Input
	}
	p, ok := pricing[model]
	if !ok {
		return Cost{}, fmt.Errorf("tokencost: model %q not supported, available: %s: %w",
			model, strings.Join(Models(), ", "), apperr.ErrInvalid)
	}

	var perMillion float64
	switch tokenType {
	case Input:
		perMillion = p.Input
	case Output:
		perMillion = p.Output
	default:
		return Cost{}, fmt.Errorf("tokencost: token type must be %q or %q: %w", Input, Output, apperr.ErrInvalid)
	}

	n := EstimateTokens(text)
	dollars := float64(n) / 1_000_000 * perMillion
	return Cost{
		TokenCount:            n,
		CostDollars:           round(dollars, 6),
		CostCents:             round(dollars*100, 4),
		Model:                 model,
		TokenType:             tokenType,
		PricePerMillionTokens: perMillion,
	}, nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
