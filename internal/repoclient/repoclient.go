// Package repoclient normalizes repository references and reads repository
// metadata, recent commits, and releases from a GitHub-compatible host API.
package repoclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/resilience"
	"github.com/hazyhaar/research-mcp/internal/textutil"
)

const maxRecentCommits = 3
const maxReleasesHardCap = 50

// Client talks to a GitHub-compatible REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	ua         string
	token      string
	logger     *slog.Logger
	breaker    *resilience.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.httpClient = c } }
func WithUserAgent(ua string) Option       { return func(cl *Client) { cl.ua = ua } }
func WithToken(token string) Option        { return func(cl *Client) { cl.token = token } }
func WithLogger(l *slog.Logger) Option     { return func(cl *Client) { cl.logger = l } }
func WithBaseURL(u string) Option          { return func(cl *Client) { cl.baseURL = u } }

// New constructs a Client pointed at the GitHub REST API by default.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    "https://api.github.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ua:         "web-research-assistant/1.0",
		logger:     slog.Default(),
		breaker:    resilience.NewCircuitBreaker(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NormalizeRepo accepts "owner/repo", a full host URL, or a ".git"-suffixed
// clone URL and returns the bare "owner/repo" shape.
func NormalizeRepo(input string) (owner, repo string, err error) {
	s := strings.TrimSpace(input)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	if strings.Contains(s, "://") {
		u, parseErr := url.Parse(s)
		if parseErr != nil {
			return "", "", &errs.ErrInputInvalid{Field: "repo", Reason: "not a valid URL"}
		}
		s = strings.Trim(u.Path, "/")
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &errs.ErrInputInvalid{Field: "repo", Reason: "expected owner/repo, a repository URL, or a .git clone URL"}
	}
	return parts[0], parts[1], nil
}

type repoResponse struct {
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	Watchers        int    `json:"watchers_count"`
	OpenIssues      int    `json:"open_issues_count"`
	Language        string `json:"language"`
	Homepage        string `json:"homepage"`
	UpdatedAt       string `json:"updated_at"`
	Topics          []string `json:"topics"`
	License         *struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
}

// GetRepoInfo fetches repository metadata, following a single 301 redirect
// (renamed or transferred repositories) via the response's Location header.
func (c *Client) GetRepoInfo(ctx context.Context, owner, repo string) (*model.RepoInfo, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)

	var payload *repoResponse
	err := c.withRetryableGet(ctx, "github-repo", reqURL, &payload, true)
	if err != nil {
		return nil, err
	}

	info := &model.RepoInfo{
		FullName:    payload.FullName,
		Description: payload.Description,
		Stars:       payload.StargazersCount,
		Forks:       payload.ForksCount,
		Watchers:    payload.Watchers,
		OpenIssues:  payload.OpenIssues,
		Language:    payload.Language,
		Homepage:    payload.Homepage,
		Topics:      payload.Topics,
	}
	if payload.License != nil {
		info.License = payload.License.SPDXID
	}
	if t, parseErr := time.Parse(time.RFC3339, payload.UpdatedAt); parseErr == nil {
		info.LastUpdated = textutil.RelativeTime(t, time.Now())
	}

	if prs, prErr := c.openPRCount(ctx, owner, repo); prErr == nil {
		info.OpenPRs = &prs
	}

	return info, nil
}

type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// GetRecentCommits returns up to n (capped at 3) recent commits.
func (c *Client) GetRecentCommits(ctx context.Context, owner, repo string, n int) ([]model.Commit, error) {
	if n <= 0 || n > maxRecentCommits {
		n = maxRecentCommits
	}
	reqURL := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=%d", c.baseURL, owner, repo, n)

	var payload []commitResponse
	if err := c.withRetryableGet(ctx, "github-commits", reqURL, &payload, false); err != nil {
		return nil, err
	}

	commits := make([]model.Commit, 0, len(payload))
	for i, cm := range payload {
		if i >= n {
			break
		}
		commits = append(commits, model.Commit{
			SHA:     cm.SHA,
			Message: firstLine(cm.Commit.Message),
			Author:  cm.Commit.Author.Name,
			Date:    cm.Commit.Author.Date,
		})
	}
	return commits, nil
}

type releaseResponse struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	Author      struct {
		Login string `json:"login"`
	} `json:"author"`
	HTMLURL string `json:"html_url"`
}

// GetReleases returns up to n (capped at 50) opaque release records for the
// changelog engine to classify.
func (c *Client) GetReleases(ctx context.Context, owner, repo string, n int) ([]releaseResponse, error) {
	if n <= 0 || n > maxReleasesHardCap {
		n = maxReleasesHardCap
	}
	reqURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.baseURL, owner, repo, n)

	var payload []releaseResponse
	if err := c.withRetryableGet(ctx, "github-releases", reqURL, &payload, false); err != nil {
		return nil, err
	}
	if len(payload) > n {
		payload = payload[:n]
	}
	return payload, nil
}

// ReleaseVersion, ReleaseBody, ReleaseDate, ReleaseAuthor, ReleaseURL expose
// the opaque release record's fields to the changelog engine without
// leaking the GitHub wire shape across the package boundary.
func ReleaseVersion(r releaseResponse) string { return firstNonEmptyRelease(r.TagName, r.Name) }
func ReleaseBody(r releaseResponse) string    { return r.Body }
func ReleaseDate(r releaseResponse) string    { return r.PublishedAt }
func ReleaseAuthor(r releaseResponse) string  { return r.Author.Login }
func ReleaseURL(r releaseResponse) string     { return r.HTMLURL }

func firstNonEmptyRelease(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type searchIssuesResponse struct {
	TotalCount int `json:"total_count"`
}

func (c *Client) openPRCount(ctx context.Context, owner, repo string) (int, error) {
	q := url.QueryEscape(fmt.Sprintf("repo:%s/%s is:pr is:open", owner, repo))
	reqURL := fmt.Sprintf("%s/search/issues?q=%s", c.baseURL, q)

	var payload *searchIssuesResponse
	if err := c.withRetryableGet(ctx, "github-search-prs", reqURL, &payload, false); err != nil {
		return 0, err
	}
	return payload.TotalCount, nil
}

type searchRepositoriesResponse struct {
	Items []repoResponse `json:"items"`
}

// SearchRepositories searches the host's repository index by query,
// optionally restricted to language, sorted by stars descending. Results
// are partial RepoInfo records (full_name, description, stars, language,
// homepage) suitable
// for package-candidate discovery and comparator repo-guessing; callers
// needing full metadata should follow up with GetRepoInfo.
func (c *Client) SearchRepositories(ctx context.Context, query, language string, limit int) ([]model.RepoInfo, error) {
	q := query
	if language != "" {
		q = fmt.Sprintf("%s language:%s", query, language)
	}
	reqURL := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		c.baseURL, url.QueryEscape(q), limit)

	var payload *searchRepositoriesResponse
	if err := c.withRetryableGet(ctx, "github-search-repos", reqURL, &payload, false); err != nil {
		return nil, err
	}

	repos := make([]model.RepoInfo, 0, len(payload.Items))
	for i, item := range payload.Items {
		if i >= limit {
			break
		}
		repos = append(repos, model.RepoInfo{
			FullName:    item.FullName,
			Description: item.Description,
			Stars:       item.StargazersCount,
			Language:    item.Language,
			Homepage:    item.Homepage,
		})
	}
	return repos, nil
}

// withRetryableGet performs a GET against reqURL decoding JSON into out,
// wrapped in the shared breaker/retry helper. When followRedirect is true
// and the upstream responds 301, the request is retried once against the
// Location header (GitHub issues 301 for renamed/transferred repositories).
func (c *Client) withRetryableGet(ctx context.Context, upstream, reqURL string, out any, followRedirect bool) error {
	_, err := resilience.Call(ctx, upstream, c.breaker, 10*time.Second, 2, 250*time.Millisecond, c.logger,
		func(ctx context.Context) (struct{}, error) {
			resp, err := c.doGet(ctx, reqURL)
			if err != nil {
				return struct{}{}, err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusMovedPermanently && followRedirect {
				loc := resp.Header.Get("Location")
				if loc == "" {
					return struct{}{}, &errs.ErrUpstreamMalformed{Upstream: upstream}
				}
				resp2, err2 := c.doGet(ctx, loc)
				if err2 != nil {
					return struct{}{}, err2
				}
				defer resp2.Body.Close()
				return struct{}{}, decodeGitHubResponse(resp2, upstream, out)
			}

			return struct{}{}, decodeGitHubResponse(resp, upstream, out)
		})
	return err
}

func (c *Client) doGet(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &errs.ErrUpstreamTimeout{Upstream: "github"}
		}
		return nil, &errs.ErrUpstreamUnavailable{Upstream: "github", Cause: err}
	}
	return resp, nil
}

func decodeGitHubResponse(resp *http.Response, upstream string, out any) error {
	if resp.StatusCode == http.StatusNotFound {
		return &errs.ErrNotFound{Subject: upstream}
	}
	if resp.StatusCode == http.StatusForbidden {
		return &errs.ErrRateLimited{Upstream: upstream, RetryAfter: resp.Header.Get("Retry-After")}
	}
	if resp.StatusCode >= 500 {
		return &errs.ErrUpstreamUnavailable{Upstream: upstream, Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return &errs.ErrUpstreamUnavailable{Upstream: upstream, Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errs.ErrUpstreamMalformed{Upstream: upstream}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
