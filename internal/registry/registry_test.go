package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/research-mcp/internal/model"
)

func TestGuessRegistryHeuristics(t *testing.T) {
	cases := map[string]model.Registry{
		"github.com/hazyhaar/research-mcp": model.RegistryGo,
		"some_python_package":              model.RegistryPyPI,
		"lodash":                           model.RegistryNPM,
	}
	for pkg, want := range cases {
		if got := GuessRegistry(pkg); got != want {
			t.Errorf("GuessRegistry(%q) = %q, want %q", pkg, got, want)
		}
	}
}

func TestNPMPackageInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/express":
			w.Write([]byte(`{
				"name": "express",
				"dist-tags": {"latest": "4.19.2"},
				"time": {"4.19.2": "2024-03-01T00:00:00.000Z"},
				"description": "Fast web framework",
				"repository": {"url": "git+https://github.com/expressjs/express.git"},
				"homepage": "https://expressjs.com",
				"license": "MIT"
			}`))
		case "/downloads/express":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"downloads": 50300000}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New()
	c.npmBaseURL = srv.URL
	c.npmDownloadsURL = srv.URL + "/downloads"

	info, err := c.NPMPackageInfo(context.Background(), "express")
	if err != nil {
		t.Fatalf("NPMPackageInfo: %v", err)
	}
	if info.Version != "4.19.2" {
		t.Fatalf("expected version 4.19.2, got %q", info.Version)
	}
	if info.License != "MIT" {
		t.Fatalf("expected MIT license, got %q", info.License)
	}
}

func TestNPMPackageInfoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New()
	c.npmBaseURL = srv.URL
	_, err := c.NPMPackageInfo(context.Background(), "does-not-exist")
	if err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestPyPIPackageInfoNullProjectURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"info": {
				"name": "hypercorn",
				"version": "0.16.0",
				"summary": "An ASGI Server",
				"license": "MIT",
				"home_page": "https://gitlab.com/pgjones/hypercorn",
				"project_urls": null
			}
		}`))
	}))
	defer srv.Close()

	c := New()
	c.pypiBaseURL = srv.URL
	info, err := c.PyPIPackageInfo(context.Background(), "hypercorn")
	if err != nil {
		t.Fatalf("PyPIPackageInfo: %v", err)
	}
	if len([]rune(info.License)) > maxLicenseChars {
		t.Fatalf("license exceeds cap: %q", info.License)
	}
	if info.Repository == "" && info.Homepage == "" {
		t.Fatal("expected some repository or homepage to be populated")
	}
}

func TestCratesPackageInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"crate": {
				"max_version": "1.2.3",
				"downloads": 1000000,
				"updated_at": "2024-05-01T00:00:00Z",
				"repository": "https://github.com/rust-lang/x",
				"homepage": "https://x.rs",
				"description": "An x crate"
			}
		}`))
	}))
	defer srv.Close()

	c := New()
	c.cratesBaseURL = srv.URL
	info, err := c.CratesPackageInfo(context.Background(), "x")
	if err != nil {
		t.Fatalf("CratesPackageInfo: %v", err)
	}
	if info.Version != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %q", info.Version)
	}
}

func TestGoPackageInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Version": "v1.9.0", "Time": "2024-06-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := New()
	c.goProxyURL = srv.URL
	info, err := c.GoPackageInfo(context.Background(), "github.com/google/uuid")
	if err != nil {
		t.Fatalf("GoPackageInfo: %v", err)
	}
	if info.Version != "v1.9.0" {
		t.Fatalf("expected version v1.9.0, got %q", info.Version)
	}
	if info.Repository != "https://github.com/google/uuid" {
		t.Fatalf("expected guessed repository URL, got %q", info.Repository)
	}
}

func TestEscapeGoModule(t *testing.T) {
	got, err := escapeGoModule("github.com/BurntSushi/toml")
	if err != nil {
		t.Fatalf("escapeGoModule: %v", err)
	}
	want := "github.com/!burnt!sushi/toml"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
