package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/virtualta/internal/models"
	"github.com/starford/virtualta/internal/qaservice"
	"github.com/starford/virtualta/internal/tokencost"
)

// maxSearchLimit caps the limit query parameter.
const maxSearchLimit = 100

// Handler holds API route handlers.
type Handler struct {
	svc *qaservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *qaservice.Service) *Handler {
	return &Handler{svc: svc}
}

func queryInt(r *http.Request, key string, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, max)
}

// Ask handles POST /api/.
//
//	@Summary		Answer a student question
//	@Tags			questions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AskRequest	true	"Question and optional base64 image"
//	@Success		200		{object}	AnswerResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/ [post]
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.svc.Ask(r.Context(), qaservice.Question{Text: req.Question, Image: req.Image})
	if err != nil {
		writeError(w, r, "ask", err)
		return
	}
	writeJSON(w, http.StatusOK, reply.Answer)
}

// Search handles GET /api/search.
//
//	@Summary		Search the course documents
//	@Tags			documents
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results, err := h.svc.Search(r.Context(), q, queryInt(r, "limit", 10, maxSearchLimit))
	if err != nil {
		writeError(w, r, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List cached documents in cache order
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			type	query		string	false	"Document type"	Enums(course_material, discourse_post)
//	@Success		200		{object}	DocumentListResponse
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docType := r.URL.Query().Get("type")
	if docType != "" && !models.DocumentType(docType).Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown document type"))
		return
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	rows, total, err := h.svc.ListDocuments(r.Context(), queryInt(r, "limit", 20, maxSearchLimit), offset, docType)
	if err != nil {
		writeError(w, r, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: rows, Total: total})
}

// GetDocument handles GET /api/document?url=.
//
//	@Summary		Get one cached document by URL
//	@Tags			documents
//	@Produce		json
//	@Param			url	query		string	true	"Document URL"
//	@Success		200	{object}	models.Document
//	@Failure		404	{object}	errResponse
//	@Router			/document [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'url' is required"))
		return
	}
	doc, err := h.svc.Document(r.Context(), url)
	if err != nil {
		writeError(w, r, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Stats handles GET /api/stats.
//
//	@Summary		Corpus and rule counts
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	qaservice.Stats
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

// CalculateTokens handles POST /api/calculate-tokens.
//
//	@Summary		Estimate token count and cost
//	@Tags			tokens
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TokenRequest	true	"Text to price"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	errResponse
//	@Router			/calculate-tokens [post]
func (h *Handler) CalculateTokens(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cost, err := tokencost.Calculate(req.Text, req.Model, req.TokenType)
	if err != nil {
		writeError(w, r, "calculate tokens", err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}

// SolveSampleProblem handles GET /api/solve-sample-problem.
//
//	@Summary		Worked token-cost sample problem
//	@Tags			tokens
//	@Produce		json
//	@Success		200	{object}	SampleProblemResponse
//	@Router			/solve-sample-problem [get]
func (h *Handler) SolveSampleProblem(w http.ResponseWriter, _ *http.Request) {
	s := tokencost.SolveSampleProblem()
	writeJSON(w, http.StatusOK, SampleProblemResponse{Solution: s.Explanation, Details: s})
}

// Pricing handles GET /api/pricing.
//
//	@Summary		Model pricing table
//	@Tags			tokens
//	@Produce		json
//	@Success		200	{object}	PricingResponse
//	@Router			/pricing [get]
func (h *Handler) Pricing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PricingResponse{Models: tokencost.Pricing()})
}
