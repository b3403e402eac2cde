package repoclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizeRepo(t *testing.T) {
	cases := []struct {
		in        string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"expressjs/express", "expressjs", "express", false},
		{"https://github.com/expressjs/express", "expressjs", "express", false},
		{"https://github.com/expressjs/express.git", "expressjs", "express", false},
		{"https://github.com/expressjs/express/", "expressjs", "express", false},
		{"not a repo shape", "", "", true},
		{"github.com/only-owner", "", "", true},
	}
	for _, c := range cases {
		owner, repo, err := NormalizeRepo(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("NormalizeRepo(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeRepo(%q): unexpected error %v", c.in, err)
			continue
		}
		if owner != c.wantOwner || repo != c.wantRepo {
			t.Errorf("NormalizeRepo(%q) = %q/%q, want %q/%q", c.in, owner, repo, c.wantOwner, c.wantRepo)
		}
	}
}

func TestGetRepoInfoFollowsRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/old-owner/old-repo":
			w.Header().Set("Location", "/repos/new-owner/new-repo")
			w.WriteHeader(http.StatusMovedPermanently)
		case "/repos/new-owner/new-repo":
			w.Write([]byte(`{
				"full_name": "new-owner/new-repo",
				"stargazers_count": 42,
				"updated_at": "2024-01-01T00:00:00Z"
			}`))
		case "/search/issues":
			w.Write([]byte(`{"total_count": 3}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	info, err := c.GetRepoInfo(context.Background(), "old-owner", "old-repo")
	if err != nil {
		t.Fatalf("GetRepoInfo: %v", err)
	}
	if info.FullName != "new-owner/new-repo" {
		t.Fatalf("expected redirected repo, got %q", info.FullName)
	}
	if info.OpenPRs == nil || *info.OpenPRs != 3 {
		t.Fatalf("expected open PR count 3, got %v", info.OpenPRs)
	}
}

func TestGetRepoInfoOpenPRsNullOnSubQueryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/repo":
			w.Write([]byte(`{"full_name": "owner/repo", "updated_at": "2024-01-01T00:00:00Z"}`))
		case "/search/issues":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	info, err := c.GetRepoInfo(context.Background(), "owner", "repo")
	if err != nil {
		t.Fatalf("GetRepoInfo: %v", err)
	}
	if info.OpenPRs != nil {
		t.Fatalf("expected nil OpenPRs on sub-query failure, got %v", *info.OpenPRs)
	}
}

func TestGetRecentCommitsCapsAtThree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"sha": "a", "commit": {"message": "first\n\nbody", "author": {"name": "alice", "date": "2024-01-01T00:00:00Z"}}},
			{"sha": "b", "commit": {"message": "second", "author": {"name": "bob", "date": "2024-01-02T00:00:00Z"}}},
			{"sha": "c", "commit": {"message": "third", "author": {"name": "carol", "date": "2024-01-03T00:00:00Z"}}},
			{"sha": "d", "commit": {"message": "fourth", "author": {"name": "dave", "date": "2024-01-04T00:00:00Z"}}}
		]`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	commits, err := c.GetRecentCommits(context.Background(), "owner", "repo", 10)
	if err != nil {
		t.Fatalf("GetRecentCommits: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(commits))
	}
	if commits[0].Message != "first" {
		t.Fatalf("expected first line only, got %q", commits[0].Message)
	}
}

func TestSearchRepositoriesRestrictsByLanguage(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"items": [
			{"full_name": "psf/requests", "description": "HTTP for humans", "stargazers_count": 5000, "language": "Python"}
		]}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	repos, err := c.SearchRepositories(context.Background(), "http client", "python", 5)
	if err != nil {
		t.Fatalf("SearchRepositories: %v", err)
	}
	if len(repos) != 1 || repos[0].FullName != "psf/requests" {
		t.Fatalf("unexpected repos: %+v", repos)
	}
	if !strings.Contains(gotQuery, "language:python") {
		t.Fatalf("expected query to restrict by language, got %q", gotQuery)
	}
}
