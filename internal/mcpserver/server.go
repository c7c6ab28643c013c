// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the virtual TA to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/virtualta/internal/apperr"
	"github.com/starford/virtualta/internal/qaservice"
	"github.com/starford/virtualta/internal/tokencost"
)

// Resource URIs.
const (
	PricingURI        = "virtualta://pricing"
	DocumentFormatURI = "virtualta://document-format"
)

// Server wraps the MCP server with the virtual TA tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *qaservice.Service
	client *http.Client
}

// New creates a new MCP server with all tools registered.
func New(svc *qaservice.Service, version string) *Server {
	s := &Server{svc: svc, client: newImageClient(checkBlockedHost)}

	s.mcp = server.NewMCPServer(
		"VirtualTA",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("ask_question",
		mcp.WithDescription("Answer a Tools in Data Science student question. Returns the answer "+
			"and supporting links as JSON {answer, links:[{url,text}]}."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The student's question")),
		mcp.WithString("image", mcp.Description("Optional screenshot: http(s) URL, data URI or base64")),
	), s.askQuestion)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Search course materials and discourse posts by keyword."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 10)")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List cached documents in cache order."),
		mcp.WithString("type", mcp.Description("Optional filter: course_material or discourse_post"),
			mcp.Enum("course_material", "discourse_post")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 20)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of one cached document."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Document URL as returned by search or list")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("calculate_tokens",
		mcp.WithDescription("Estimate the token count of a text and its cost for a GPT model."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to price")),
		mcp.WithString("model", mcp.Description("Model name (default gpt-3.5-turbo-0125)"),
			mcp.Enum(tokencost.Models()...)),
		mcp.WithString("token_type", mcp.Description("input (default) or output"),
			mcp.Enum(tokencost.Input, tokencost.Output)),
	), s.calculateTokens)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the Markdown format for documents placed in the content directory."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(PricingURI, "Model Pricing",
			mcp.WithResourceDescription("USD per million tokens for supported models."),
			mcp.WithMIMEType("application/json"),
		),
		s.readPricingResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(DocumentFormatURI, "Document Format",
			mcp.WithResourceDescription("Markdown format for documents in the content directory."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotReady) {
		return mcp.NewToolResultError("corpus not loaded yet")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) askQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	image, err := resolveImage(ctx, s.client, req.GetString("image", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("image: %v", err)), nil
	}
	reply, err := s.svc.Ask(ctx, qaservice.Question{Text: question, Image: image})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(reply.Answer)
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 10))
	if err != nil {
		return errorResult(err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	return jsonResult(results)
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, total, err := s.svc.ListDocuments(ctx,
		req.GetInt("limit", 20), req.GetInt("offset", 0), req.GetString("type", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"documents": rows, "total": total})
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Document(ctx, url)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", url)), nil
		}
		return errorResult(err), nil
	}
	return jsonResult(doc)
}

func (s *Server) calculateTokens(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cost, err := tokencost.Calculate(text, req.GetString("model", ""), req.GetString("token_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cost)
}

func (s *Server) getDocumentFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readPricingResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(tokencost.Pricing(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PricingURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) readDocumentFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DocumentFormatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
