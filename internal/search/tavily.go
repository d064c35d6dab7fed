package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTavilyURL = "https://api.tavily.com"
	defaultTimeout   = 10 * time.Second
)

// ErrMissingAPIKey is returned when the provider is used without credentials.
var ErrMissingAPIKey = errors.New("tavily: API key is missing")

// Result is a single search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Tavily calls the Tavily search API.
type Tavily struct {
	apiKey  string
	baseURL string
	depth   string
	client  *http.Client
}

type Option func(*Tavily)

// WithDepth sets Tavily's search_depth (basic or advanced).
func WithDepth(depth string) Option {
	return func(t *Tavily) {
		if depth != "" {
			t.depth = depth
		}
	}
}

func WithBaseURL(u string) Option {
	return func(t *Tavily) {
		if u != "" {
			t.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the default client (and its 10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(t *Tavily) {
		if c != nil {
			t.client = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(t *Tavily) {
		if d > 0 {
			t.client = &http.Client{Timeout: d}
		}
	}
}

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey string, opts ...Option) *Tavily {
	t := &Tavily{
		apiKey:  apiKey,
		baseURL: DefaultTavilyURL,
		depth:   "basic",
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results,omitempty"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

// Search posts a query to Tavily and returns at most maxResults hits (all of them when maxResults <= 0).
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(tavilyRequest{Query: query, MaxResults: maxResults, SearchDepth: t.depth})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}
	if maxResults > 0 && len(out.Results) > maxResults {
		out.Results = out.Results[:maxResults]
	}
	if out.Results == nil {
		out.Results = []Result{}
	}
	return out.Results, nil
}
