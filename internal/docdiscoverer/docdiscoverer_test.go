package docdiscoverer

import (
	"context"
	"strings"
	"testing"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/searchclient"
)

func TestDiscoverDocsHostKnownAlias(t *testing.T) {
	c := New()
	host, err := c.DiscoverDocsHost(context.Background(), "Stripe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "https://docs.stripe.com" {
		t.Fatalf("got %q, want known stripe docs host", host)
	}
}

type stubSearcher struct {
	hits []model.SearchHit
}

func (s stubSearcher) Search(ctx context.Context, p searchclient.Params) ([]model.SearchHit, error) {
	return s.hits, nil
}

func TestDiscoverDocsHostFallsBackToMetaSearch(t *testing.T) {
	searcher := stubSearcher{hits: []model.SearchHit{
		{URL: "https://example.com/blog/unrelated"},
		{URL: "https://example.com/developer/widgetapi"},
	}}
	c := New(WithSearcher(searcher))
	host, err := c.DiscoverDocsHost(context.Background(), "totally-unknown-widget-api-xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "https://example.com/developer/widgetapi" {
		t.Fatalf("got %q, want the developer-hinted hit", host)
	}
}

type stubFetcher struct {
	body string
}

func (f stubFetcher) FetchRaw(ctx context.Context, url string, maxChars int) (string, error) {
	return f.body, nil
}

func TestCrawlTopicExtractsOverviewAndExamples(t *testing.T) {
	page := `<html><body>
		<p>This is a reasonably long overview paragraph describing the widget API in detail.</p>
		<pre class="language-go">fmt.Println("hello")</pre>
		<div class="note">Remember to set your API key before calling this.</div>
		<a href="/docs/auth">Authentication</a>
	</body></html>`

	searcher := stubSearcher{hits: []model.SearchHit{{URL: "https://docs.example.com/widgets", Title: "Widgets"}}}
	fetcher := stubFetcher{body: page}
	c := New(WithSearcher(searcher), WithFetcher(fetcher))

	doc, err := c.CrawlTopic(context.Background(), "widget", "https://docs.example.com", "widgets", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(doc.Overview, "overview paragraph") {
		t.Fatalf("expected overview extracted, got %q", doc.Overview)
	}
	if len(doc.Examples) != 1 || doc.Examples[0].Language != "go" {
		t.Fatalf("expected one go example, got %+v", doc.Examples)
	}
	if len(doc.Notes) != 1 {
		t.Fatalf("expected one note, got %+v", doc.Notes)
	}
	if len(doc.RelatedLinks) != 1 || doc.RelatedLinks[0].URL != "https://docs.example.com/docs/auth" {
		t.Fatalf("expected resolved related link, got %+v", doc.RelatedLinks)
	}
	if len(doc.Sources) != 1 || doc.Sources[0] != "https://docs.example.com/widgets" {
		t.Fatalf("expected source recorded, got %+v", doc.Sources)
	}
}
