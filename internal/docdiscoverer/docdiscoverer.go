// Package docdiscoverer resolves an API's documentation host and crawls a
// topic within it, extracting overview text, parameter tables, code
// examples, notes, and related links.
package docdiscoverer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/searchclient"
	"github.com/hazyhaar/research-mcp/internal/textutil"
)

// RawFetcher fetches a page's raw HTML, used for crawling discovered pages.
type RawFetcher interface {
	FetchRaw(ctx context.Context, url string, maxChars int) (string, error)
}

// Searcher performs meta-search, used for the docs-host fallback lookup
// and for the within-host topic search.
type Searcher interface {
	Search(ctx context.Context, p searchclient.Params) ([]model.SearchHit, error)
}

// Client discovers documentation hosts and crawls topics within them.
type Client struct {
	httpClient *http.Client
	ua         string
	fetcher    RawFetcher
	searcher   Searcher
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.httpClient = c } }
func WithUserAgent(ua string) Option       { return func(cl *Client) { cl.ua = ua } }
func WithFetcher(f RawFetcher) Option      { return func(cl *Client) { cl.fetcher = f } }
func WithSearcher(s Searcher) Option       { return func(cl *Client) { cl.searcher = s } }

// New constructs a Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ua:         "research-mcp/1.0",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var docsURLHint = regexp.MustCompile(`(?i)docs|developer|api`)

// DiscoverDocsHost resolves apiName to a documentation base URL, in order:
// a curated alias table, a pattern probe preferring ".com" over ".io", and
// a meta-search fallback.
func (c *Client) DiscoverDocsHost(ctx context.Context, apiName string) (string, error) {
	normalized := normalizeAPIName(apiName)
	if host, ok := knownDocsHosts[normalized]; ok {
		return host, nil
	}

	if host, ok := probeDocsPatterns(ctx, c.httpClient, c.ua, normalized); ok {
		return host, nil
	}

	if c.searcher != nil {
		hits, err := c.searcher.Search(ctx, searchclient.Params{
			Query:      fmt.Sprintf("%s API official documentation", apiName),
			MaxResults: 10,
		})
		if err == nil {
			for _, h := range hits {
				if docsURLHint.MatchString(h.URL) {
					return h.URL, nil
				}
			}
		}
	}

	return "", fmt.Errorf("could not discover a documentation host for %q", apiName)
}

// CrawlTopic searches within docsHost for topic, crawls up to maxResults
// pages, and extracts structured documentation content from each.
func (c *Client) CrawlTopic(ctx context.Context, apiName, docsHost, topic string, maxResults int) (model.ApiDoc, error) {
	doc := model.ApiDoc{APIName: apiName, Topic: topic, DocsBaseURL: docsHost}
	if maxResults <= 0 || maxResults > 3 {
		maxResults = 3
	}
	if c.searcher == nil {
		return doc, fmt.Errorf("no search backend configured for topic crawl")
	}

	host := hostOnly(docsHost)
	hits, err := c.searcher.Search(ctx, searchclient.Params{
		Query:      fmt.Sprintf("site:%s %s", host, topic),
		MaxResults: maxResults,
	})
	if err != nil {
		return doc, fmt.Errorf("search within docs host: %w", err)
	}

	for i, hit := range hits {
		if i >= maxResults {
			break
		}
		if c.fetcher == nil {
			continue
		}
		body, err := c.fetcher.FetchRaw(ctx, hit.URL, 300_000)
		if err != nil || strings.TrimSpace(body) == "" {
			continue
		}
		extractPageInto(&doc, body, hit.URL)
		doc.Sources = append(doc.Sources, hit.URL)
	}
	return doc, nil
}

func hostOnly(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	}
	return parsed.Host
}

func normalizeAPIName(apiName string) string {
	lower := strings.ToLower(strings.TrimSpace(apiName))
	return strings.NewReplacer(" ", "", ".", "", "-", "").Replace(lower)
}

func probeDocsPatterns(ctx context.Context, client *http.Client, ua, normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}
	var comHit, otherHit string
	for _, tmpl := range docsPatternTemplates {
		candidate := strings.ReplaceAll(tmpl, "{n}", normalized)
		if headOK(ctx, client, ua, candidate) {
			if strings.Contains(candidate, ".com") {
				if comHit == "" {
					comHit = candidate
				}
				continue
			}
			if otherHit == "" {
				otherHit = candidate
			}
		}
	}
	if comHit != "" {
		return comHit, true
	}
	if otherHit != "" {
		return otherHit, true
	}
	return "", false
}

func headOK(ctx context.Context, client *http.Client, ua, candidate string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, candidate, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", ua)
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

var paramLinePattern = regexp.MustCompile(`(?i)^\s*([a-zA-Z_][\w.]*)\s*(?:\(([^)]+)\))?\s*[-:–]\s*(.+)$`)

// extractPageInto parses one crawled page's HTML and merges its overview,
// parameters, examples, notes, and related links into doc.
func extractPageInto(doc *model.ApiDoc, body, pageURL string) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return
	}

	if doc.Overview == "" {
		if p := firstSubstantiveParagraph(root); p != "" {
			doc.Overview = textutil.Sanitize(p)
		}
	}

	walkDocNodes(root, doc, pageURL)
}

func walkDocNodes(n *html.Node, doc *model.ApiDoc, pageURL string) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "pre", "code":
			if code := textContent(n); len(code) > 10 {
				lang := attrValue(n, "class")
				doc.Examples = append(doc.Examples, model.DocExample{
					Language: extractLangFromClass(lang),
					Code:     textutil.Sanitize(code),
				})
			}
		case "div", "aside", "p":
			class := strings.ToLower(attrValue(n, "class"))
			if strings.Contains(class, "warning") || strings.Contains(class, "note") || strings.Contains(class, "tip") {
				if text := textContent(n); text != "" {
					doc.Notes = append(doc.Notes, textutil.Sanitize(text))
				}
			}
		case "li":
			if name, typ, desc, ok := parseParamLine(textContent(n)); ok {
				doc.Parameters = append(doc.Parameters, model.DocParam{Name: name, Type: typ, Description: textutil.Sanitize(desc)})
			}
		case "a":
			href := attrValue(n, "href")
			if href != "" && !strings.HasPrefix(href, "#") {
				absolute := resolveURL(pageURL, href)
				title := textContent(n)
				if title != "" && absolute != "" {
					doc.RelatedLinks = append(doc.RelatedLinks, model.RelatedLink{Title: textutil.Sanitize(title), URL: absolute})
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkDocNodes(c, doc, pageURL)
	}
}

func parseParamLine(line string) (name, typ, desc string, ok bool) {
	m := paramLinePattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

func extractLangFromClass(class string) string {
	for _, tok := range strings.Fields(class) {
		if after, found := strings.CutPrefix(tok, "language-"); found {
			return after
		}
		if after, found := strings.CutPrefix(tok, "lang-"); found {
			return after
		}
	}
	return ""
}

func firstSubstantiveParagraph(n *html.Node) string {
	if n.Type == html.ElementNode && strings.ToLower(n.Data) == "p" {
		text := strings.TrimSpace(textContent(n))
		if len([]rune(text)) >= 40 {
			return text
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if p := firstSubstantiveParagraph(c); p != "" {
			return p
		}
	}
	return ""
}

func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
