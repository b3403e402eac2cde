package changelog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/repoclient"
)

type stubLookup struct {
	info model.PackageInfo
	err  error
}

func (s stubLookup) PackageInfo(ctx context.Context, registry model.Registry, name string) (model.PackageInfo, error) {
	return s.info, s.err
}

func TestBuildChangelogNoRepository(t *testing.T) {
	lookup := stubLookup{info: model.PackageInfo{Name: "leftpad"}}
	gh := repoclient.New()
	_, err := BuildChangelog(context.Background(), lookup, gh, model.RegistryNPM, "leftpad", 10)
	if err == nil {
		t.Fatal("expected an error when repository is absent")
	}
}

func TestBuildChangelogClassifiesReleases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"tag_name": "v2.0.0", "published_at": "2026-01-01T00:00:00Z", "author": {"login": "maintainer"},
			 "html_url": "https://github.com/acme/widget/releases/v2.0.0",
			 "body": "- BREAKING: removed legacy config loader\n- feat: add retry policy\n- fix: correct off-by-one in pager"}
		]`))
	}))
	defer srv.Close()

	lookup := stubLookup{info: model.PackageInfo{Name: "widget", Repository: "https://github.com/acme/widget"}}
	gh := repoclient.New(repoclient.WithBaseURL(srv.URL))

	cl, err := BuildChangelog(context.Background(), lookup, gh, model.RegistryNPM, "widget", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cl.Releases) != 1 {
		t.Fatalf("expected 1 release, got %d", len(cl.Releases))
	}
	r := cl.Releases[0]
	if len(r.BreakingChanges) != 1 || len(r.NewFeatures) != 1 || len(r.BugFixes) != 1 {
		t.Fatalf("expected 1 of each classification, got %+v", r)
	}
	if cl.Summary.Difficulty != model.DifficultyMedium {
		t.Fatalf("expected medium difficulty for 1 breaking change, got %v", cl.Summary.Difficulty)
	}
	if r.BreakingChanges[0] != "removed legacy config loader" {
		t.Fatalf("expected bullet and category prefix stripped, got %q", r.BreakingChanges[0])
	}
	if r.NewFeatures[0] != "add retry policy" {
		t.Fatalf("expected bullet and category prefix stripped, got %q", r.NewFeatures[0])
	}
	if r.BugFixes[0] != "correct off-by-one in pager" {
		t.Fatalf("expected bullet and category prefix stripped, got %q", r.BugFixes[0])
	}
}

func TestSummarizeDifficultyBuckets(t *testing.T) {
	cases := []struct {
		breaking int
		want     model.Difficulty
	}{
		{0, model.DifficultyLow},
		{1, model.DifficultyMedium},
		{2, model.DifficultyMedium},
		{3, model.DifficultyHigh},
		{5, model.DifficultyHigh},
	}
	for _, c := range cases {
		got := summarize(10, c.breaking)
		if got.Difficulty != c.want {
			t.Errorf("summarize(breaking=%d) = %v, want %v", c.breaking, got.Difficulty, c.want)
		}
	}
}
