// Package imageclient queries a stock-image API (Pixabay-compatible) for
// tagged, licensed images.
package imageclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/resilience"
)

// ErrNotConfigured is returned when no API key is available; handlers
// should render this as a graceful message, not a failure.
var ErrNotConfigured = fmt.Errorf("stock-image search is not configured: set PIXABAY_API_KEY")

// Client queries a Pixabay-compatible stock-image search endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	ua         string
	logger     *slog.Logger
	breaker    *resilience.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.httpClient = c } }
func WithUserAgent(ua string) Option       { return func(cl *Client) { cl.ua = ua } }
func WithLogger(l *slog.Logger) Option     { return func(cl *Client) { cl.logger = l } }
func WithBaseURL(u string) Option          { return func(cl *Client) { cl.baseURL = u } }

// New constructs a Client. An empty apiKey means the client is
// "not configured": Search always returns ErrNotConfigured.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    "https://pixabay.com/api",
		apiKey:     apiKey,
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

// Params configures a single image search.
type Params struct {
	Query       string
	ImageType   string // all, photo, illustration, vector
	Orientation string // all, horizontal, vertical
	MaxResults  int
}

type pixabayResponse struct {
	Hits []pixabayHit `json:"hits"`
}

type pixabayHit struct {
	Tags           string `json:"tags"`
	ImageWidth     int    `json:"imageWidth"`
	ImageHeight    int    `json:"imageHeight"`
	Views          int    `json:"views"`
	Downloads      int    `json:"downloads"`
	Likes          int    `json:"likes"`
	User           string `json:"user"`
	PreviewURL     string `json:"previewURL"`
	WebformatURL   string `json:"webformatURL"`
	LargeImageURL  string `json:"largeImageURL"`
	FullHDURL      string `json:"fullHDURL"`
}

// Search queries the stock-image API. Returns ErrNotConfigured when no
// API key is set.
func (c *Client) Search(ctx context.Context, p Params) ([]model.ImageResult, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	limit := p.MaxResults
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", p.Query)
	q.Set("per_page", strconv.Itoa(clampPerPage(limit)))
	if p.ImageType != "" && p.ImageType != "all" {
		q.Set("image_type", p.ImageType)
	}
	if p.Orientation != "" && p.Orientation != "all" {
		q.Set("orientation", p.Orientation)
	}
	reqURL := c.baseURL + "?" + q.Encode()

	resp, err := resilience.Call(ctx, "pixabay", c.breaker, 10*time.Second, 2, 250*time.Millisecond, c.logger,
		func(ctx context.Context) (*pixabayResponse, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", c.ua)
			httpResp, err := c.httpClient.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return nil, &errs.ErrUpstreamTimeout{Upstream: "pixabay"}
				}
				return nil, &errs.ErrUpstreamUnavailable{Upstream: "pixabay", Cause: err}
			}
			defer httpResp.Body.Close()

			if httpResp.StatusCode == http.StatusTooManyRequests {
				return nil, &errs.ErrRateLimited{Upstream: "pixabay", RetryAfter: httpResp.Header.Get("Retry-After")}
			}
			if httpResp.StatusCode == http.StatusForbidden || httpResp.StatusCode == http.StatusUnauthorized {
				return nil, &errs.ErrUpstreamForbidden{Upstream: "pixabay"}
			}
			if httpResp.StatusCode >= 500 {
				return nil, &errs.ErrUpstreamUnavailable{Upstream: "pixabay", Cause: fmt.Errorf("status %d", httpResp.StatusCode)}
			}

			var payload pixabayResponse
			if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
				return nil, &errs.ErrUpstreamMalformed{Upstream: "pixabay"}
			}
			return &payload, nil
		})
	if err != nil {
		return nil, err
	}

	out := make([]model.ImageResult, 0, len(resp.Hits))
	for i, h := range resp.Hits {
		if i >= limit {
			break
		}
		out = append(out, model.ImageResult{
			Tags:       splitTags(h.Tags),
			Width:      h.ImageWidth,
			Height:     h.ImageHeight,
			Views:      h.Views,
			Downloads:  h.Downloads,
			Likes:      h.Likes,
			User:       h.User,
			PreviewURL: h.PreviewURL,
			LargeURL:   firstNonEmptyImg(h.LargeImageURL, h.WebformatURL),
			FullHDURL:  h.FullHDURL,
		})
	}
	return out, nil
}

func clampPerPage(n int) int {
	if n < 3 {
		return 3
	}
	if n > 200 {
		return 200
	}
	return n
}

func firstNonEmptyImg(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
