// Package search queries a web search provider for grounding documents.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ashureev/codexr/internal/config"
	"github.com/tidwall/gjson"
)

// Placeholders used when a result omits a field.
const (
	NoTitle = "No Title"
	NoURL   = "#"
)

const (
	defaultEndpoint = "https://google.serper.dev/search"
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 2 << 20
)

var errUnexpectedStatus = errors.New("unexpected search status")

// Result is a single organic search hit.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Client calls the Serper search API.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a search client from configuration. A client without an
// API key is valid and always returns no results.
func NewClient(cfg config.SearchConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled returns true if an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Search returns up to maxResults organic results for query. Without an API
// key it returns an empty slice without touching the network. On any failure
// it returns an empty slice and the cause; results are never partial.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if !c.Enabled() || maxResults <= 0 {
		return []Result{}, nil
	}

	body, err := json.Marshal(map[string]any{"q": query, "num": maxResults})
	if err != nil {
		return []Result{}, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return []Result{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return []Result{}, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return []Result{}, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return []Result{}, fmt.Errorf("read search response: %w", err)
	}

	return parseOrganic(data, maxResults)
}

func parseOrganic(data []byte, maxResults int) ([]Result, error) {
	if !gjson.ValidBytes(data) {
		return []Result{}, errors.New("malformed search response")
	}
	organic := gjson.GetBytes(data, "organic")
	if organic.Exists() && !organic.IsArray() {
		return []Result{}, errors.New("malformed search response: organic is not a list")
	}

	results := make([]Result, 0, maxResults)
	for _, item := range organic.Array() {
		if len(results) == maxResults {
			break
		}
		results = append(results, Result{
			Title: stringOr(item.Get("title"), NoTitle),
			URL:   stringOr(item.Get("link"), NoURL),
		})
	}
	return results, nil
}

func stringOr(v gjson.Result, fallback string) string {
	if !v.Exists() || v.Type == gjson.Null {
		return fallback
	}
	return v.String()
}
