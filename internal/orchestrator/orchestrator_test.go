package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/research-mcp/internal/config"
	"github.com/hazyhaar/research-mcp/internal/docdiscoverer"
	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/fetcher"
	"github.com/hazyhaar/research-mcp/internal/imageclient"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/registry"
	"github.com/hazyhaar/research-mcp/internal/repoclient"
	"github.com/hazyhaar/research-mcp/internal/searchclient"
	"github.com/hazyhaar/research-mcp/internal/statusclient"
	"github.com/hazyhaar/research-mcp/internal/usage"
)

func newTestOrchestrator(t *testing.T, searchSrv, repoSrv, imageSrv *httptest.Server) *Orchestrator {
	t.Helper()
	cfg := config.New(config.WithUsageLogPath(filepath.Join(t.TempDir(), "usage.json")), config.WithMaxResponseChars(8000))
	tracker := usage.NewTracker(cfg.UsageLogPath, nil)

	var search *searchclient.Client
	if searchSrv != nil {
		search = searchclient.New(searchSrv.URL)
	} else {
		search = searchclient.New("http://127.0.0.1:0")
	}

	var repos *repoclient.Client
	if repoSrv != nil {
		repos = repoclient.New(repoclient.WithBaseURL(repoSrv.URL))
	} else {
		repos = repoclient.New()
	}

	var images *imageclient.Client
	if imageSrv != nil {
		images = imageclient.New("test-key", imageclient.WithBaseURL(imageSrv.URL))
	} else {
		images = imageclient.New("")
	}

	fetch := fetcher.New()
	docs := docdiscoverer.New(docdiscoverer.WithSearcher(search), docdiscoverer.WithFetcher(fetch))
	status := statusclient.New(statusclient.WithFetcher(fetch))

	return New(search, fetch, registry.New(), repos, images, status, docs, tracker, cfg, nil)
}

func TestDispatchRejectsEmptyReasoning(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil)
	out, err := o.WebSearch(context.Background(), &WebSearchRequest{Query: "golang", Reasoning: "  "})
	if err != nil {
		t.Fatalf("WebSearch returned Go error: %v", err)
	}
	if !strings.Contains(out, "reasoning is required") {
		t.Fatalf("expected reasoning-required message, got %q", out)
	}
}

func TestWebSearchValidatesCategory(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil)
	out, err := o.WebSearch(context.Background(), &WebSearchRequest{Query: "x", Reasoning: "checking", Category: "bogus"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(out, "category") {
		t.Fatalf("expected category validation message, got %q", out)
	}
}

func TestWebSearchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Go Concurrency Patterns", "url": "https://go.dev/blog/pipelines", "content": "fan-out fan-in"},
			},
		})
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv, nil, nil)
	out, err := o.WebSearch(context.Background(), &WebSearchRequest{Query: "concurrency patterns", Reasoning: "researching fan-out"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(out, "Go Concurrency Patterns") {
		t.Fatalf("expected result title in output, got %q", out)
	}
}

func TestSearchExamplesAugmentsQueryForCodeContentType(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}})
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv, nil, nil)
	_, err := o.SearchExamples(context.Background(), &SearchExamplesRequest{
		Query: "debounce hook", Reasoning: "looking for implementations", ContentType: "code",
	})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(gotQuery, "github.com") {
		t.Fatalf("expected query augmented with code sources, got %q", gotQuery)
	}
}

func TestSearchImagesNotConfiguredIsGraceful(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil)
	out, err := o.SearchImages(context.Background(), &SearchImagesRequest{Query: "server room", Reasoning: "illustrating a blog post"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(out, "not configured") {
		t.Fatalf("expected graceful not-configured message, got %q", out)
	}
}

func TestGitHubRepoIncludesCommitsByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/expressjs/express":
			w.Write([]byte(`{"full_name": "expressjs/express", "stargazers_count": 1000, "updated_at": "2024-01-01T00:00:00Z"}`))
		case "/search/issues":
			w.Write([]byte(`{"total_count": 2}`))
		case "/repos/expressjs/express/commits":
			w.Write([]byte(`[{"sha": "abc1234", "commit": {"message": "fix bug", "author": {"name": "alice", "date": "2024-01-01T00:00:00Z"}}}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, nil, srv, nil)
	out, err := o.GitHubRepo(context.Background(), &GitHubRepoRequest{Repo: "expressjs/express", Reasoning: "evaluating for a new service"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(out, "fix bug") {
		t.Fatalf("expected recent commit in output, got %q", out)
	}
}

func TestGitHubRepoRejectsMalformedRepo(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil)
	out, err := o.GitHubRepo(context.Background(), &GitHubRepoRequest{Repo: "not a repo shape", Reasoning: "checking"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if strings.Contains(out, "stars:") {
		t.Fatalf("expected failure message, got repo info: %q", out)
	}
}

func TestTranslateErrorFindsSolutions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Fixing TypeError in JS", "url": "https://stackoverflow.com/q/1", "content": "Cannot read property of undefined"},
			},
		})
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv, nil, nil)
	out, err := o.TranslateError(context.Background(), &TranslateErrorRequest{
		ErrorMessage: "TypeError: Cannot read properties of undefined (reading 'map')",
		Reasoning:    "debugging a frontend crash",
	})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(out, "javascript") {
		t.Fatalf("expected detected language in output, got %q", out)
	}
}

func TestApiDocsUsesKnownHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}})
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv, nil, nil)
	out, err := o.ApiDocs(context.Background(), &ApiDocsRequest{APIName: "stripe", Topic: "webhooks", Reasoning: "integrating payments"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(out, "docs.stripe.com") {
		t.Fatalf("expected known docs host in output, got %q", out)
	}
}

func TestCompareTechRejectsTooFewTechnologies(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil)
	out, err := o.CompareTech(context.Background(), &CompareTechRequest{Technologies: []string{"react"}, Reasoning: "deciding"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(out, "technologies") {
		t.Fatalf("expected technologies validation message, got %q", out)
	}
}

func TestCheckServiceStatusUnknownService(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil)
	out, err := o.CheckServiceStatus(context.Background(), &CheckServiceStatusRequest{Service: "totally-unheard-of-service-xyz", Reasoning: "checking before deploy"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(out, "unknown") {
		t.Fatalf("expected unknown status in output, got %q", out)
	}
}

func TestResponseIsClampedToConfiguredCeiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := make([]map[string]any, 0, 10)
		for i := 0; i < 10; i++ {
			results = append(results, map[string]any{
				"title": "Result", "url": "https://example.com/x", "content": strings.Repeat("padding ", 50),
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	cfg := config.New(config.WithUsageLogPath(filepath.Join(t.TempDir(), "usage.json")), config.WithMaxResponseChars(100))
	tracker := usage.NewTracker(cfg.UsageLogPath, nil)
	fetch := fetcher.New()
	o := New(searchclient.New(srv.URL), fetch, registry.New(), repoclient.New(), imageclient.New(""),
		statusclient.New(statusclient.WithFetcher(fetch)), docdiscoverer.New(), tracker, cfg, nil)

	out, err := o.WebSearch(context.Background(), &WebSearchRequest{Query: "padding", Reasoning: "checking clamp", MaxResults: 10})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if len(out) > 100 {
		t.Fatalf("expected response clamped to 100 chars, got %d", len(out))
	}
}

func TestEveryDispatchRecordsExactlyOneUsageEvent(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil)
	_, err := o.WebSearch(context.Background(), &WebSearchRequest{Query: "", Reasoning: "invalid query test"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	summary := o.tracker.Summary()
	ts, ok := summary.Tools["web_search"]
	if !ok || ts.Count != 1 {
		t.Fatalf("expected exactly 1 recorded web_search event, got %+v", ts)
	}
	if ts.SuccessCount != 0 {
		t.Fatalf("expected the invalid-query call to record as a failure, got success_count=%d", ts.SuccessCount)
	}
}

func TestHumanizeErrorMapsKnownKinds(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&errs.ErrInputInvalid{Field: "query", Reason: "must not be empty"}, "invalid input"},
		{&errs.ErrNotFound{Subject: "left-pad"}, "not found"},
		{&errs.ErrUpstreamUnavailable{Upstream: "github", Cause: context.DeadlineExceeded}, "unavailable"},
		{&errs.ErrUpstreamTimeout{Upstream: "npm"}, "timed out"},
		{&errs.ErrUpstreamForbidden{Upstream: "crates.io"}, "forbidden"},
		{&errs.ErrUpstreamMalformed{Upstream: "pypi"}, "unexpected data"},
		{&errs.ErrRateLimited{Upstream: "github", RetryAfter: "60s"}, "rate-limiting"},
	}
	for _, c := range cases {
		got := humanizeError(c.err)
		if !strings.Contains(got, c.want) {
			t.Errorf("humanizeError(%v) = %q, want substring %q", c.err, got, c.want)
		}
	}
}


func TestFilterReleaseRangeRestrictsToBounds(t *testing.T) {
	releases := []model.Release{{Version: "v3"}, {Version: "v2"}, {Version: "v1"}}
	filtered := filterReleaseRange(releases, "v2", "")
	if len(filtered) != 2 {
		t.Fatalf("expected 2 releases from v2 onward, got %d: %+v", len(filtered), filtered)
	}
	if filtered[0].Version != "v2" {
		t.Fatalf("expected first release to be v2, got %q", filtered[0].Version)
	}
}
