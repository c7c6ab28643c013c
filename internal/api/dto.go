package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/virtualta/internal/imageinfo"
	"github.com/starford/virtualta/internal/index"
	"github.com/starford/virtualta/internal/models"
	"github.com/starford/virtualta/internal/tokencost"
)

// MaxQuestionLen bounds the question text in runes.
const MaxQuestionLen = 10000

// AskRequest is the body of POST /api/. An empty question is answered with
// the fallback answer.
type AskRequest struct {
	Question string `json:"question" example:"Should I use gpt-4o-mini or gpt-3.5-turbo?"`
	Image    string `json:"image,omitempty" example:"iVBORw0KGgo..."`
}

// Validate implements validation.Validatable.
func (r *AskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Question, validation.RuneLength(0, MaxQuestionLen)),
		validation.Field(&r.Image, validation.Length(0, imageinfo.MaxEncodedSize)),
	)
}

// AnswerResponse is the body returned for a question.
type AnswerResponse = models.Answer

// TokenRequest is the body of POST /api/calculate-tokens.
type TokenRequest struct {
	Text      string `json:"text" example:"How do I set up my Python environment?"`
	Model     string `json:"model,omitempty" example:"gpt-3.5-turbo-0125"`
	TokenType string `json:"token_type,omitempty" example:"input"`
}

// Validate implements validation.Validatable.
func (r *TokenRequest) Validate() error {
	names := make([]any, 0, len(tokencost.Models()))
	for _, m := range tokencost.Models() {
		names = append(names, m)
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Model, validation.In(names...)),
		validation.Field(&r.TokenType, validation.In(tokencost.Input, tokencost.Output)),
	)
}

// TokenResponse is the priced result.
type TokenResponse = tokencost.Cost

// SampleProblemResponse carries the worked sample problem.
type SampleProblemResponse struct {
	Solution string             `json:"solution"`
	Details  tokencost.Solution `json:"details"`
}

// PricingResponse lists the model pricing table in USD per million tokens.
type PricingResponse struct {
	Models map[string]tokencost.Price `json:"models"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// DocumentListResponse wraps a page of documents.
type DocumentListResponse struct {
	Documents []index.DocumentRow `json:"documents"`
	Total     int                 `json:"total"`
}
