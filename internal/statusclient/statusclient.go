// Package statusclient resolves a service name to its status page and
// reports the service's current health using, in order, the Statuspage.io
// JSON API, best-effort HTML parsing, and a plain reachability check.
package statusclient

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/research-mcp/internal/model"
)

// StatusEmoji maps a normalized health state to its display glyph.
var StatusEmoji = map[model.ServiceHealth]string{
	model.HealthOperational:      "✅",
	model.HealthDegradedPerf:     "⚠️",
	model.HealthPartialOutage:    "⚠️",
	model.HealthMajorOutage:      "🚨",
	model.HealthUnderMaintenance: "🔧",
	model.HealthUnknown:          "❓",
}

// RawFetcher fetches raw HTML for a status page, used for the HTML-parse
// fallback strategy (the second of three: Statuspage API, HTML parse,
// reachability check).
type RawFetcher interface {
	FetchRaw(ctx context.Context, url string, maxChars int) (string, error)
}

// Client resolves and checks service status pages.
type Client struct {
	httpClient *http.Client
	ua         string
	logger     *slog.Logger
	fetcher    RawFetcher
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.httpClient = c } }
func WithUserAgent(ua string) Option       { return func(cl *Client) { cl.ua = ua } }
func WithLogger(l *slog.Logger) Option     { return func(cl *Client) { cl.logger = l } }
func WithFetcher(f RawFetcher) Option      { return func(cl *Client) { cl.fetcher = f } }

// New constructs a Client. fetcher may be nil; without one, strategy 2
// (HTML parse) is skipped and the client falls through to the
// reachability check.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ua:         "Mozilla/5.0 (compatible; StatusChecker/1.0)",
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CheckService resolves service's status page and probes it, in order,
// via the Statuspage.io API, best-effort HTML parsing, and finally a
// plain HEAD reachability check.
func (c *Client) CheckService(ctx context.Context, service string) model.ServiceStatus {
	now := time.Now().UTC().Format(time.RFC3339)

	statusURL, found := findKnownStatusPage(service)
	if !found {
		statusURL, found = probePatterns(ctx, c.httpClient, c.ua, service)
	}
	if !found {
		return model.ServiceStatus{
			Service:          service,
			Status:           model.HealthUnknown,
			CheckedAt:        now,
			CurrentIncidents: []model.ServiceIncident{},
		}
	}

	if data, ok := fetchStatuspageAPI(ctx, c.httpClient, c.ua, statusURL); ok {
		status := parseStatuspageAPIResponse(data)
		status.Service = service
		status.StatusPageURL = statusURL
		status.CheckedAt = now
		return status
	}

	if c.fetcher != nil {
		if body, err := c.fetcher.FetchRaw(ctx, statusURL, 200_000); err == nil && len(strings.TrimSpace(body)) > 100 {
			status := parseStatusHTML(body)
			status.Service = service
			status.StatusPageURL = statusURL
			status.CheckedAt = now
			return status
		}
	}

	accessible := headOK(ctx, c.httpClient, c.ua, statusURL)
	status := model.ServiceStatus{
		Service:          service,
		Status:           model.HealthUnknown,
		StatusPageURL:    statusURL,
		CheckedAt:        now,
		CurrentIncidents: []model.ServiceIncident{},
	}
	if !accessible {
		c.logger.WarnContext(ctx, "status page unreachable", "service", service, "url", statusURL)
	}
	return status
}

