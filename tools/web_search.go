package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/petasbytes/go-chatbot/internal/search"
)

const WebSearchName = "web_search"

// Searcher is the backend behind web_search.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]search.Result, error)
}

type WebSearchInput struct {
	Query      string `json:"query" jsonschema_description:"Search query. Be specific; include names, dates and places when relevant."`
	MaxResults int    `json:"max_results,omitempty" jsonschema_description:"Optional number of results to return; capped by the configured maximum."`
}

var WebSearchInputSchema = GenerateSchema[WebSearchInput]()

// NewWebSearch returns the web_search tool bounded to at most maxResults hits per call.
func NewWebSearch(s Searcher, maxResults int) ToolDefinition {
	if maxResults <= 0 {
		maxResults = 1
	}
	return ToolDefinition{
		Name: WebSearchName,
		Description: `Search the web for current information. Returns a JSON array of results with title, url and content.

Use it for recent events or facts you are unsure about.`,
		InputSchema: WebSearchInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			return webSearch(ctx, s, maxResults, input)
		},
	}
}

func webSearch(ctx context.Context, s Searcher, limit int, input json.RawMessage) (string, error) {
	var in WebSearchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", ToolError{Code: CodeInvalidInput, Message: fmt.Sprintf("invalid web_search input: %v", err)}
	}
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return "", ToolError{Code: CodeInvalidInput, Message: "query must not be empty"}
	}
	n := limit
	if in.MaxResults > 0 && in.MaxResults < limit {
		n = in.MaxResults
	}

	results, err := s.Search(ctx, query, n)
	if err != nil {
		return "", ToolError{Code: CodeSearchFailed, Message: err.Error()}
	}
	if len(results) > n {
		results = results[:n]
	}
	b, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
