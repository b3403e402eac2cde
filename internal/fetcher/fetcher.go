// Package fetcher renders a URL to markdown or raw HTML using a headless
// browser, capping the returned body size. Redirects and page-initiated
// navigations are followed wherever they lead; nothing restricts a render
// to the requested URL's origin.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/resilience"
)

const maxRawBytes = 500_000

// Fetcher renders pages through a recycled headless Chrome instance.
type Fetcher struct {
	logger      *slog.Logger
	breaker     *resilience.CircuitBreaker
	mdConverter *converter.Converter
	sanitizer   *bluemonday.Policy
	remoteURL   string // non-empty connects to an external Chrome instead of launching one

	mu      sync.Mutex
	browser *rod.Browser
}

// Option configures a Fetcher.
type Option func(*Fetcher)

func WithLogger(l *slog.Logger) Option { return func(f *Fetcher) { f.logger = l } }
func WithRemoteURL(u string) Option    { return func(f *Fetcher) { f.remoteURL = u } }

// New creates a Fetcher. The browser is launched lazily on first use.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		logger:  slog.Default(),
		breaker: resilience.NewCircuitBreaker(),
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Fetcher) ensureBrowser() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser != nil {
		return f.browser, nil
	}

	var wsURL string
	if f.remoteURL != "" {
		wsURL = f.remoteURL
	} else {
		l := launcher.New().Headless(true).Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("fetcher: launch chrome: %w", err)
		}
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("fetcher: connect chrome: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		f.logger.Warn("fetcher: ignore cert errors failed", "error", err)
	}
	f.browser = b
	return b, nil
}

// render navigates to rawURL, waits for load, and returns the rendered
// document's outer HTML. A single render is one tab, used once, then
// closed; navigations the page starts itself, cross-origin ones included,
// are not blocked.
func (f *Fetcher) render(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	b, err := f.ensureBrowser()
	if err != nil {
		return "", &errs.ErrUpstreamUnavailable{Upstream: "headless-browser", Cause: err}
	}

	page, err := stealth.Page(b)
	if err != nil {
		return "", &errs.ErrUpstreamUnavailable{Upstream: "headless-browser", Cause: err}
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(rawURL); err != nil {
		if navCtx.Err() != nil {
			return "", &errs.ErrUpstreamTimeout{Upstream: rawURL}
		}
		return "", &errs.ErrUpstreamUnavailable{Upstream: rawURL, Cause: err}
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		f.logger.Warn("fetcher: wait load timeout", "url", rawURL, "error", err)
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", &errs.ErrUpstreamUnavailable{Upstream: rawURL, Cause: err}
	}
	return res.Value.Str(), nil
}

// FetchRaw returns raw HTML for url, capped at maxChars (itself capped to
// maxRawBytes regardless of the caller's requested ceiling).
func (f *Fetcher) FetchRaw(ctx context.Context, url string, maxChars int) (string, error) {
	if maxChars <= 0 || maxChars > maxRawBytes {
		maxChars = maxRawBytes
	}
	html, err := resilience.Call(ctx, url, f.breaker, 30*time.Second, 0, 0, f.logger,
		func(ctx context.Context) (string, error) { return f.render(ctx, url, 30*time.Second) })
	if err != nil {
		return "", err
	}
	return capString(html, maxChars), nil
}

// FetchMarkdown renders url, converts the result to markdown, and caps it
// at maxChars. Browser-rendered fetches get a longer default deadline.
func (f *Fetcher) FetchMarkdown(ctx context.Context, url string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = 8000
	}
	html, err := resilience.Call(ctx, url, f.breaker, 60*time.Second, 0, 0, f.logger,
		func(ctx context.Context) (string, error) { return f.render(ctx, url, 60*time.Second) })
	if err != nil {
		return "", err
	}

	clean := f.sanitizer.Sanitize(html)
	md, err := f.mdConverter.ConvertString(clean, converter.WithDomain(url))
	if err != nil {
		return "", &errs.ErrUpstreamMalformed{Upstream: url}
	}
	return capString(strings.TrimSpace(md), maxChars), nil
}

// Close releases the underlying browser, if one was launched.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}

func capString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
