// Package searchclient issues queries against a local meta-search backend
// (a SearXNG-compatible instance) and returns ranked SearchHit records.
package searchclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/resilience"
)

const maxSnippetChars = 300

// Client issues GET requests against a meta-search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	ua         string
	logger     *slog.Logger
	breaker    *resilience.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(s *Client) { s.httpClient = c } }
func WithUserAgent(ua string) Option       { return func(s *Client) { s.ua = ua } }
func WithLogger(l *slog.Logger) Option     { return func(s *Client) { s.logger = l } }

// New creates a Client for the given meta-search base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ua:         "web-research-assistant/1.0",
		logger:     slog.Default(),
		breaker:    resilience.NewCircuitBreaker(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Params configures a single search call.
type Params struct {
	Query     string
	Category  string
	MaxResults int
	TimeRange string
}

type searxResponse struct {
	Results []searxResult `json:"results"`
}

type searxResult struct {
	Title     string `json:"title"`
	PrettyURL string `json:"pretty_url"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	Snippet   string `json:"snippet"`
	Engine    string `json:"engine"`
	Score     float64 `json:"score"`
}

// Search issues a single query and returns up to Params.MaxResults hits,
// preserving upstream ranking.
func (c *Client) Search(ctx context.Context, p Params) ([]model.SearchHit, error) {
	limit := p.MaxResults
	if limit <= 0 {
		limit = 5
	}

	q := url.Values{}
	q.Set("q", p.Query)
	q.Set("categories", p.Category)
	q.Set("format", "json")
	q.Set("pageno", "1")
	if p.TimeRange != "" && p.TimeRange != "all" {
		q.Set("time_range", p.TimeRange)
	}

	reqURL := c.baseURL + "?" + q.Encode()

	resp, err := resilience.Call(ctx, "searxng", c.breaker, 10*time.Second, 2, 250*time.Millisecond, c.logger,
		func(ctx context.Context) (*searxResponse, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", c.ua)
			req.Header.Set("Accept", "application/json")

			httpResp, err := c.httpClient.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return nil, &errs.ErrUpstreamTimeout{Upstream: "searxng"}
				}
				return nil, &errs.ErrUpstreamUnavailable{Upstream: "searxng", Cause: err}
			}
			defer httpResp.Body.Close()

			if httpResp.StatusCode == http.StatusForbidden || httpResp.StatusCode == http.StatusUnauthorized {
				return nil, &errs.ErrUpstreamForbidden{Upstream: "searxng"}
			}
			if httpResp.StatusCode == http.StatusTooManyRequests {
				return nil, &errs.ErrRateLimited{Upstream: "searxng", RetryAfter: httpResp.Header.Get("Retry-After")}
			}
			if httpResp.StatusCode >= 500 {
				return nil, &errs.ErrUpstreamUnavailable{Upstream: "searxng", Cause: fmt.Errorf("status %d", httpResp.StatusCode)}
			}

			var payload searxResponse
			if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
				return nil, &errs.ErrUpstreamMalformed{Upstream: "searxng"}
			}
			if payload.Results == nil {
				return nil, &errs.ErrUpstreamMalformed{Upstream: "searxng"}
			}
			return &payload, nil
		})
	if err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, limit)
	for i, item := range resp.Results {
		if i >= limit {
			break
		}
		title := firstNonEmpty(item.Title, item.PrettyURL, item.URL, "Untitled")
		snippet := firstNonEmpty(item.Content, item.Snippet)
		snippet = clampSnippet(snippet, maxSnippetChars)
		hits = append(hits, model.SearchHit{
			Title:   strings.TrimSpace(title),
			URL:     item.URL,
			Snippet: strings.TrimSpace(snippet),
			Engine:  item.Engine,
			Score:   item.Score,
		})
	}
	return hits, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func clampSnippet(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
