package registry

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
)

type npmSearchResponse struct {
	Objects []struct {
		Package struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"package"`
	} `json:"objects"`
}

type cratesSearchResponse struct {
	Crates []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"crates"`
}

// CodeSearcher delegates PyPI/Go package discovery to a repo-host code
// search (GitHub-style), since neither registry exposes a native search
// matching the other two.
type CodeSearcher interface {
	SearchRepositories(ctx context.Context, query, language string, limit int) ([]model.RepoInfo, error)
}

// SearchNPM queries the NPM registry's native package search endpoint.
func (c *Client) SearchNPM(ctx context.Context, query string, limit int) ([]model.PackageInfo, error) {
	reqURL := fmt.Sprintf("%s/-/v1/search?text=%s&size=%d", c.npmBaseURL, url.QueryEscape(query), limit)
	payload, err := fetchJSON[npmSearchResponse](ctx, c, "npm-search", c.npmBreaker, reqURL)
	if err != nil {
		return nil, err
	}
	hits := make([]model.PackageInfo, 0, len(payload.Objects))
	for _, o := range payload.Objects {
		hits = append(hits, model.PackageInfo{
			Name:        o.Package.Name,
			Registry:    model.RegistryNPM,
			Description: o.Package.Description,
		})
	}
	return hits, nil
}

// SearchCrates queries crates.io's native package search endpoint.
func (c *Client) SearchCrates(ctx context.Context, query string, limit int) ([]model.PackageInfo, error) {
	reqURL := fmt.Sprintf("%s/api/v1/crates?q=%s&per_page=%d", c.cratesBaseURL, url.QueryEscape(query), limit)
	payload, err := fetchJSON[cratesSearchResponse](ctx, c, "crates-search", c.cratesBreaker, reqURL)
	if err != nil {
		return nil, err
	}
	hits := make([]model.PackageInfo, 0, len(payload.Crates))
	for _, cr := range payload.Crates {
		hits = append(hits, model.PackageInfo{
			Name:        cr.Name,
			Registry:    model.RegistryCrates,
			Description: cr.Description,
		})
	}
	return hits, nil
}

// SearchPyPIViaCodeHost finds PyPI package candidates by searching
// repository hosts for Python projects, since PyPI has no native search
// API. Results are candidate names only, not guaranteed to exist on PyPI.
func (c *Client) SearchPyPIViaCodeHost(ctx context.Context, searcher CodeSearcher, query string, limit int) ([]model.PackageInfo, error) {
	repos, err := searcher.SearchRepositories(ctx, query, "python", limit)
	if err != nil {
		return nil, err
	}
	return candidatesFromRepos(repos, model.RegistryPyPI, func(owner, repo string) string { return repo })
}

// SearchGoViaCodeHost finds Go module candidates by searching repository
// hosts for Go projects and returning their module path as
// "github.com/{owner}/{repo}".
func (c *Client) SearchGoViaCodeHost(ctx context.Context, searcher CodeSearcher, query string, limit int) ([]model.PackageInfo, error) {
	repos, err := searcher.SearchRepositories(ctx, query, "go", limit)
	if err != nil {
		return nil, err
	}
	return candidatesFromRepos(repos, model.RegistryGo, func(owner, repo string) string {
		return fmt.Sprintf("github.com/%s/%s", owner, repo)
	})
}

func candidatesFromRepos(repos []model.RepoInfo, reg model.Registry, name func(owner, repo string) string) ([]model.PackageInfo, error) {
	out := make([]model.PackageInfo, 0, len(repos))
	for _, r := range repos {
		owner, repo, ok := strings.Cut(r.FullName, "/")
		if !ok {
			continue
		}
		out = append(out, model.PackageInfo{
			Name:        name(owner, repo),
			Registry:    reg,
			Description: r.Description,
			Repository:  "https://github.com/" + r.FullName,
		})
	}
	if len(out) == 0 {
		return nil, &errs.ErrNotFound{Subject: "no candidates found"}
	}
	return out, nil
}
