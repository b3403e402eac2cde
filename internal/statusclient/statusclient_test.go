package statusclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/research-mcp/internal/model"
)

func TestNormalizeServiceNameAlias(t *testing.T) {
	cases := map[string]string{
		"Claude API":        "anthropic",
		"google cloud":      "gcp",
		"Hugging Face":      "huggingface",
		"random-unknown-co": "randomunknownco",
	}
	for in, want := range cases {
		if got := normalizeServiceName(in); got != want {
			t.Errorf("normalizeServiceName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindKnownStatusPage(t *testing.T) {
	url, ok := findKnownStatusPage("stripe")
	if !ok || url != "https://status.stripe.com" {
		t.Fatalf("expected stripe status page, got %q, ok=%v", url, ok)
	}
}

func TestCheckServiceUnknownService(t *testing.T) {
	c := New()
	status := c.CheckService(context.Background(), "totally-unheard-of-service-xyz")
	if status.Status != model.HealthUnknown {
		t.Fatalf("expected unknown status, got %v", status.Status)
	}
}

func TestParseStatuspageAPIResponse(t *testing.T) {
	data := &statuspageAPIResponse{}
	data.Status.Indicator = "none"
	data.Status.Description = ""
	data.Components = append(data.Components, struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}{Name: "API", Status: "operational"})

	status := parseStatuspageAPIResponse(data)
	if status.Status != model.HealthOperational {
		t.Fatalf("expected operational, got %v", status.Status)
	}
	if len(status.Components) != 1 || status.Components[0].Name != "API" {
		t.Fatalf("expected 1 component named API, got %+v", status.Components)
	}
}

func TestParseStatusHTMLOperational(t *testing.T) {
	body := `<html><body><h1>All Systems Operational</h1></body></html>`
	status := parseStatusHTML(body)
	if status.Status != model.HealthOperational {
		t.Fatalf("expected operational, got %v", status.Status)
	}
}

type stubRawFetcher struct {
	body string
	err  error
}

func (s stubRawFetcher) FetchRaw(ctx context.Context, url string, maxChars int) (string, error) {
	return s.body, s.err
}

func TestCheckServiceFallsBackToHTMLParseWhenStatuspageAPI404s(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/api/v2/status.json") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	knownStatusPages["testservicehtml"] = srv.URL
	defer delete(knownStatusPages, "testservicehtml")

	html := `<html><body><h1>All Systems Operational</h1><p>` + strings.Repeat("padding ", 20) + `</p></body></html>`
	c := New(WithFetcher(stubRawFetcher{body: html}))
	status := c.CheckService(context.Background(), "test-service-html")
	if status.Status != model.HealthOperational {
		t.Fatalf("expected operational via HTML parse fallback, got %v", status.Status)
	}
	if status.StatusPageURL != srv.URL {
		t.Fatalf("expected status page url %q, got %q", srv.URL, status.StatusPageURL)
	}
}

func TestCheckServiceWithoutFetcherSkipsHTMLParseFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/api/v2/status.json") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	knownStatusPages["testservicenofetcher"] = srv.URL
	defer delete(knownStatusPages, "testservicenofetcher")

	c := New()
	status := c.CheckService(context.Background(), "test-service-no-fetcher")
	if status.Status != model.HealthUnknown {
		t.Fatalf("expected unknown status falling through to the reachability check, got %v", status.Status)
	}
}

func TestCheckServiceUsesStatuspageAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/api/v2/status.json") {
			w.Write([]byte(`{"status": {"indicator": "none", "description": ""}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	knownStatusPages["testservicexyz"] = srv.URL
	defer delete(knownStatusPages, "testservicexyz")

	c := New()
	status := c.CheckService(context.Background(), "test-service-xyz")
	if status.Status != model.HealthOperational {
		t.Fatalf("expected operational via statuspage API, got %v", status.Status)
	}
	if status.StatusPageURL != srv.URL {
		t.Fatalf("expected status page url %q, got %q", srv.URL, status.StatusPageURL)
	}
}
