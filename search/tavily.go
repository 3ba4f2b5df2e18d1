// Package search is the Tavily client used by the web tools: search and
// URL extraction plus the agent-facing result formatters.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/deepscout/deepscout/logger"
)

const (
	searchEndpoint  = "https://api.tavily.com/search"
	extractEndpoint = "https://api.tavily.com/extract"

	// Truncation limits applied before results reach the model.
	searchContentLimit  = 800
	extractContentLimit = 5000
)

// Client calls the Tavily search API.
type Client struct {
	apiKey     string
	depth      string // basic or advanced
	http       *http.Client
	searchURL  string
	extractURL string
}

// NewClient constructs a Tavily client. depth defaults to basic.
func NewClient(apiKey, depth string) *Client {
	return NewClientWithHTTP(apiKey, depth, &http.Client{Timeout: 60 * time.Second})
}

// NewClientWithHTTP constructs a Tavily client using the supplied HTTP
// client, useful for overriding the default timeout or for tests.
func NewClientWithHTTP(apiKey, depth string, hc *http.Client) *Client {
	if depth == "" {
		depth = "basic"
	}
	return &Client{
		apiKey:     apiKey,
		depth:      depth,
		http:       hc,
		searchURL:  searchEndpoint,
		extractURL: extractEndpoint,
	}
}

// SetEndpoints overrides the API endpoints so tests can point the client
// at a local server.
func (c *Client) SetEndpoints(searchURL, extractURL string) {
	c.searchURL = searchURL
	c.extractURL = extractURL
}

// SearchResult is one entry from a search response.
type SearchResult struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content,omitempty"`
}

// SearchResponse is a search response including the optional AI answer.
type SearchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// ExtractResult is the extracted content of one URL.
type ExtractResult struct {
	URL        string `json:"url"`
	RawContent string `json:"raw_content"`
}

// FailedExtract describes a URL whose extraction failed.
type FailedExtract struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ExtractResponse is an extract response with per-URL outcomes.
type ExtractResponse struct {
	Results       []ExtractResult `json:"results"`
	FailedResults []FailedExtract `json:"failed_results"`
}

// SearchOptions tunes one search request. Zero values fall back to the
// client defaults.
type SearchOptions struct {
	Depth             string // basic or advanced, defaults to the client depth
	MaxResults        int
	IncludeAnswer     bool
	IncludeRawContent bool
	IncludeDomains    []string
	ExcludeDomains    []string
}

// ExtractOptions tunes one extract request.
type ExtractOptions struct {
	Depth         string // basic or advanced, defaults to the client depth
	Format        string // markdown or text, defaults to markdown
	IncludeImages bool
}

// Search posts a query to Tavily.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if opts.Depth == "" {
		opts.Depth = c.depth
	}
	body := map[string]any{
		"query":          query,
		"search_depth":   opts.Depth,
		"max_results":    opts.MaxResults,
		"include_answer": opts.IncludeAnswer,
	}
	if opts.IncludeRawContent {
		body["include_raw_content"] = true
	}
	if len(opts.IncludeDomains) > 0 {
		body["include_domains"] = opts.IncludeDomains
	}
	if len(opts.ExcludeDomains) > 0 {
		body["exclude_domains"] = opts.ExcludeDomains
	}
	var resp SearchResponse
	if err := c.post(ctx, c.searchURL, body, &resp); err != nil {
		return nil, fmt.Errorf("search failed for query %q: %w", query, err)
	}
	logger.Debug("tavily search", "query", query, "results", len(resp.Results))
	return &resp, nil
}

// Extract pulls page content from the given URLs.
func (c *Client) Extract(ctx context.Context, urls []string, opts ExtractOptions) (*ExtractResponse, error) {
	if len(urls) == 0 {
		return nil, errors.New("no URLs provided")
	}
	if opts.Depth == "" {
		opts.Depth = c.depth
	}
	if opts.Format == "" {
		opts.Format = "markdown"
	}
	body := map[string]any{
		"urls":          urls,
		"extract_depth": opts.Depth,
		"format":        opts.Format,
	}
	if opts.IncludeImages {
		body["include_images"] = true
	}
	var resp ExtractResponse
	if err := c.post(ctx, c.extractURL, body, &resp); err != nil {
		return nil, fmt.Errorf("extract failed for %d URL(s): %w", len(urls), err)
	}
	logger.Debug("tavily extract", "urls", len(urls), "ok", len(resp.Results), "failed", len(resp.FailedResults))
	return &resp, nil
}

// post sends an authenticated JSON request, backing off and retrying on
// 429 with the delay doubling up to 30 s.
func (c *Client) post(ctx context.Context, endpoint string, body map[string]any, out any) error {
	if strings.TrimSpace(c.apiKey) == "" {
		return errors.New("tavily: API key is missing")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err = c.http.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tavily http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
