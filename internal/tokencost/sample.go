package tokencost

import (
	"fmt"
	"unicode/utf8"
)

const (
	sampleText        = "私は静かな図書館で本を読みながら、時間の流れを忘れてしまいました。"
	sampleTranslation = "I forgot the flow of time while reading a book in a quiet library."
	sampleModel       = "gpt-3.5-turbo-0125"
	// Japanese runs at roughly three characters per token.
	sampleCharsPerToken = 3
	sampleCentsPerM     = 50
)

// Solution is the worked answer to the Japanese-sentence pricing exercise.
type Solution struct {
	Text            string  `json:"text"`
	Translation     string  `json:"translation"`
	Characters      int     `json:"characters"`
	Tokens          float64 `json:"tokens"`
	Model           string  `json:"model"`
	CentsPerMillion float64 `json:"cents_per_million"`
	CostCents       float64 `json:"cost_cents"`
	Explanation     string  `json:"explanation"`
}

// SolveSampleProblem prices the sample sentence as gpt-3.5-turbo-0125 input
// at 50 cents per million tokens.
func SolveSampleProblem() Solution {
	chars := utf8.RuneCountInString(sampleText)
	tokens := float64(chars) / sampleCharsPerToken
	cents := tokens / 1_000_000 * sampleCentsPerM

	s := Solution{
		Text:            sampleText,
		Translation:     sampleTranslation,
		Characters:      chars,
		Tokens:          round(tokens, 1),
		Model:           sampleModel,
		CentsPerMillion: sampleCentsPerM,
		CostCents:       round(cents, 6),
	}
	s.Explanation = fmt.Sprintf(`Problem: Japanese text: %q
Translation: %q

Analysis:
- Text length: %d characters
- Estimated tokens (Japanese ~%d chars/token): %.1f tokens
- Model: %s
- Cost per million input tokens: %d cents
- Calculation: (%.1f / 1,000,000) x %d = %.6f cents

Answer: %.4f cents`,
		sampleText, sampleTranslation, chars, sampleCharsPerToken, tokens, sampleModel,
		sampleCentsPerM, tokens, sampleCentsPerM, cents, cents)
	return s
}
