// Package registry looks up package metadata across NPM, PyPI, crates.io,
// and the Go module proxy, and offers a best-effort cross-registry package
// search.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/resilience"
)

// GuessRegistry heuristically picks a registry for a bare package name
// when the caller doesn't know or specify one: a name containing "/" or
// "." looks like a Go module path, one containing "_" looks like a PyPI
// name, otherwise it's treated as npm.
func GuessRegistry(pkg string) model.Registry {
	switch {
	case strings.Contains(pkg, "/") || strings.Contains(pkg, "."):
		return model.RegistryGo
	case strings.Contains(pkg, "_"):
		return model.RegistryPyPI
	default:
		return model.RegistryNPM
	}
}

// Client fans out PackageInfo/search requests to the four registry
// sub-protocols. Each sub-protocol keeps its own circuit breaker so a single
// flaky upstream does not throttle the others.
type Client struct {
	httpClient *http.Client
	ua         string
	logger     *slog.Logger

	npmBreaker    *resilience.CircuitBreaker
	pypiBreaker   *resilience.CircuitBreaker
	cratesBreaker *resilience.CircuitBreaker
	goBreaker     *resilience.CircuitBreaker

	npmBaseURL      string
	npmDownloadsURL string
	pypiBaseURL     string
	cratesBaseURL   string
	goProxyURL      string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.httpClient = c } }
func WithUserAgent(ua string) Option       { return func(cl *Client) { cl.ua = ua } }
func WithLogger(l *slog.Logger) Option     { return func(cl *Client) { cl.logger = l } }

// New constructs a Client wired to the public registry endpoints.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		ua:              "web-research-assistant/1.0",
		logger:          slog.Default(),
		npmBreaker:      resilience.NewCircuitBreaker(),
		pypiBreaker:     resilience.NewCircuitBreaker(),
		cratesBreaker:   resilience.NewCircuitBreaker(),
		goBreaker:       resilience.NewCircuitBreaker(),
		npmBaseURL:      "https://registry.npmjs.org",
		npmDownloadsURL: "https://api.npmjs.org/downloads/point/last-week",
		pypiBaseURL:     "https://pypi.org",
		cratesBaseURL:   "https://crates.io",
		goProxyURL:      "https://proxy.golang.org",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// PackageInfo dispatches to the sub-protocol matching reg.
func (c *Client) PackageInfo(ctx context.Context, reg model.Registry, name string) (model.PackageInfo, error) {
	var (
		info *model.PackageInfo
		err  error
	)
	switch reg {
	case model.RegistryNPM:
		info, err = c.NPMPackageInfo(ctx, name)
	case model.RegistryPyPI:
		info, err = c.PyPIPackageInfo(ctx, name)
	case model.RegistryCrates:
		info, err = c.CratesPackageInfo(ctx, name)
	case model.RegistryGo:
		info, err = c.GoPackageInfo(ctx, name)
	default:
		return model.PackageInfo{}, fmt.Errorf("unknown registry %q", reg)
	}
	if err != nil {
		return model.PackageInfo{}, err
	}
	return *info, nil
}

// fetchJSON issues a GET against reqURL and decodes the JSON body into T,
// wrapped with the shared breaker/timeout/retry behavior.
func fetchJSON[T any](ctx context.Context, c *Client, upstream string, breaker *resilience.CircuitBreaker, reqURL string) (*T, error) {
	return resilience.Call(ctx, upstream, breaker, 10*time.Second, 2, 250*time.Millisecond, c.logger,
		func(ctx context.Context) (*T, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", c.ua)
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return nil, &errs.ErrUpstreamTimeout{Upstream: upstream}
				}
				return nil, &errs.ErrUpstreamUnavailable{Upstream: upstream, Cause: err}
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return nil, &errs.ErrNotFound{Subject: reqURL}
			}
			if resp.StatusCode >= 500 {
				return nil, &errs.ErrUpstreamUnavailable{Upstream: upstream, Cause: fmt.Errorf("status %d", resp.StatusCode)}
			}

			var payload T
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return nil, &errs.ErrUpstreamMalformed{Upstream: upstream}
			}
			return &payload, nil
		})
}
