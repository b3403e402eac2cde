// Package orchestrator implements the single tool-dispatch contract: every
// call is validated, timed, executed, clamped to a response-size ceiling,
// and recorded as exactly one usage event — success or failure alike. No
// handler error ever escapes as a Go error; it is rendered as human-
// readable text and recorded with success=false instead.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/research-mcp/internal/changelog"
	"github.com/hazyhaar/research-mcp/internal/comparator"
	"github.com/hazyhaar/research-mcp/internal/config"
	"github.com/hazyhaar/research-mcp/internal/docdiscoverer"
	"github.com/hazyhaar/research-mcp/internal/errorparser"
	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/extractor"
	"github.com/hazyhaar/research-mcp/internal/fetcher"
	"github.com/hazyhaar/research-mcp/internal/imageclient"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/registry"
	"github.com/hazyhaar/research-mcp/internal/repoclient"
	"github.com/hazyhaar/research-mcp/internal/searchclient"
	"github.com/hazyhaar/research-mcp/internal/statusclient"
	"github.com/hazyhaar/research-mcp/internal/textutil"
	"github.com/hazyhaar/research-mcp/internal/usage"
)

// Orchestrator wires every upstream client together behind the single
// invoke(tool, params) contract.
type Orchestrator struct {
	search  *searchclient.Client
	fetch   *fetcher.Fetcher
	reg     *registry.Client
	repos   *repoclient.Client
	images  *imageclient.Client
	status  *statusclient.Client
	docs    *docdiscoverer.Client
	tracker *usage.Tracker
	cfg     *config.Config
	logger  *slog.Logger
}

// New builds an Orchestrator from its constructed dependencies.
func New(
	search *searchclient.Client,
	fetch *fetcher.Fetcher,
	reg *registry.Client,
	repos *repoclient.Client,
	images *imageclient.Client,
	status *statusclient.Client,
	docs *docdiscoverer.Client,
	tracker *usage.Tracker,
	cfg *config.Config,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		search: search, fetch: fetch, reg: reg, repos: repos, images: images,
		status: status, docs: docs, tracker: tracker, cfg: cfg, logger: logger,
	}
}

// dispatch runs the shared contract around a single tool call: reject
// missing reasoning before doing any work, run fn, clamp the result, and
// record exactly one usage event.
func (o *Orchestrator) dispatch(ctx context.Context, tool, reasoning string, req any, fn func(context.Context) (string, error)) (string, error) {
	start := time.Now()
	params := toParams(req)
	invocationID := uuid.Must(uuid.NewV7()).String()
	log := o.logger.With("invocation_id", invocationID, "tool", tool)

	if strings.TrimSpace(reasoning) == "" {
		log.Warn("rejected: missing reasoning")
		return o.finish(log, tool, reasoning, params, start, false, "reasoning is required and must not be empty"), nil
	}

	log.Debug("dispatching")
	body, err := fn(ctx)
	if err != nil {
		log.Warn("failed", "error", err)
		return o.finish(log, tool, reasoning, params, start, false, humanizeError(err)), nil
	}
	return o.finish(log, tool, reasoning, params, start, true, body), nil
}

func (o *Orchestrator) finish(log *slog.Logger, tool, reasoning string, params map[string]any, start time.Time, success bool, body string) string {
	clamped := textutil.Clamp(body, o.cfg.MaxResponseChars)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	event := model.UsageEvent{
		Tool:              tool,
		Reasoning:         reasoning,
		Parameters:        params,
		ResponseTimeMs:    elapsed,
		Success:           success,
		ResponseSizeBytes: len(clamped),
	}
	if !success {
		event.ErrorMessage = body
	}
	if o.tracker != nil {
		o.tracker.Track(event)
	}
	log.Debug("completed", "success", success, "response_time_ms", elapsed, "response_size_bytes", len(clamped))
	return clamped
}

func toParams(req any) map[string]any {
	if req == nil {
		return map[string]any{}
	}
	data, err := json.Marshal(req)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{}
	}
	return m
}

func humanizeError(err error) string {
	var inputErr *errs.ErrInputInvalid
	var notFound *errs.ErrNotFound
	var unavailable *errs.ErrUpstreamUnavailable
	var timeout *errs.ErrUpstreamTimeout
	var forbidden *errs.ErrUpstreamForbidden
	var malformed *errs.ErrUpstreamMalformed
	var rateLimited *errs.ErrRateLimited

	switch {
	case errors.As(err, &inputErr):
		return inputErr.Error()
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &unavailable):
		return fmt.Sprintf("Sorry, %s is currently unavailable. Please try again later.", unavailable.Upstream)
	case errors.As(err, &timeout):
		return fmt.Sprintf("Sorry, the request to %s timed out. Please try again later.", timeout.Upstream)
	case errors.As(err, &forbidden):
		return fmt.Sprintf("%s refused the request (access forbidden).", forbidden.Upstream)
	case errors.As(err, &malformed):
		return fmt.Sprintf("%s returned unexpected data.", malformed.Upstream)
	case errors.As(err, &rateLimited):
		if rateLimited.RetryAfter != "" {
			return fmt.Sprintf("%s is rate-limiting requests; retry after %s.", rateLimited.Upstream, rateLimited.RetryAfter)
		}
		return fmt.Sprintf("%s is rate-limiting requests; please retry later.", rateLimited.Upstream)
	default:
		return err.Error()
	}
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func inRange(v, min, max int) bool {
	return v >= min && v <= max
}

// --- web_search ---

type WebSearchRequest struct {
	Query      string `json:"query"`
	Reasoning  string `json:"reasoning"`
	Category   string `json:"category"`
	MaxResults int    `json:"max_results"`
}

func (o *Orchestrator) WebSearch(ctx context.Context, req *WebSearchRequest) (string, error) {
	return o.dispatch(ctx, "web_search", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.Query) == "" {
			return "", &errs.ErrInputInvalid{Field: "query", Reason: "must not be empty"}
		}
		category := defaultString(req.Category, "general")
		if !oneOf(category, "general", "it", "news", "science", "videos", "images", "files") {
			return "", &errs.ErrInputInvalid{Field: "category", Reason: "must be one of general, it, news, science, videos, images, files"}
		}
		maxResults := defaultInt(req.MaxResults, 5)
		if !inRange(maxResults, 1, 10) {
			return "", &errs.ErrInputInvalid{Field: "max_results", Reason: "must be between 1 and 10"}
		}

		hits, err := o.search.Search(ctx, searchclient.Params{Query: req.Query, Category: category, MaxResults: maxResults})
		if err != nil {
			return "", err
		}
		return formatSearchHits(hits), nil
	})
}

func formatSearchHits(hits []model.SearchHit) string {
	if len(hits) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. %s\n%s", i+1, h.Title, h.URL)
		if h.Engine != "" {
			fmt.Fprintf(&b, " (via %s)", h.Engine)
		}
		b.WriteString("\n")
		if h.Snippet != "" {
			b.WriteString(h.Snippet)
			b.WriteString("\n")
		}
		if i < len(hits)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// --- search_examples ---

type SearchExamplesRequest struct {
	Query       string `json:"query"`
	Reasoning   string `json:"reasoning"`
	ContentType string `json:"content_type"`
	TimeRange   string `json:"time_range"`
	MaxResults  int    `json:"max_results"`
}

func (o *Orchestrator) SearchExamples(ctx context.Context, req *SearchExamplesRequest) (string, error) {
	return o.dispatch(ctx, "search_examples", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.Query) == "" {
			return "", &errs.ErrInputInvalid{Field: "query", Reason: "must not be empty"}
		}
		contentType := defaultString(req.ContentType, "both")
		if !oneOf(contentType, "code", "articles", "both") {
			return "", &errs.ErrInputInvalid{Field: "content_type", Reason: "must be one of code, articles, both"}
		}
		timeRange := defaultString(req.TimeRange, "all")
		if !oneOf(timeRange, "day", "week", "month", "year", "all") {
			return "", &errs.ErrInputInvalid{Field: "time_range", Reason: "must be one of day, week, month, year, all"}
		}
		maxResults := defaultInt(req.MaxResults, 5)
		if !inRange(maxResults, 1, 10) {
			return "", &errs.ErrInputInvalid{Field: "max_results", Reason: "must be between 1 and 10"}
		}

		query := req.Query
		switch contentType {
		case "code":
			query += " (site:github.com OR site:stackoverflow.com OR site:gist.github.com)"
		case "articles":
			query += " (tutorial OR guide OR article OR blog OR \"how to\" OR documentation)"
		}

		hits, err := o.search.Search(ctx, searchclient.Params{Query: query, Category: "it", MaxResults: maxResults, TimeRange: timeRange})
		if err != nil {
			return "", err
		}
		return formatExampleHits(hits), nil
	})
}

func formatExampleHits(hits []model.SearchHit) string {
	if len(hits) == 0 {
		return "No examples found."
	}
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. %s %s\n%s\n", i+1, exampleSourceLabel(h.URL), h.Title, h.URL)
		if h.Snippet != "" {
			b.WriteString(h.Snippet)
			b.WriteString("\n")
		}
		if i < len(hits)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func exampleSourceLabel(rawURL string) string {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "github.com"):
		return "[GitHub]"
	case strings.Contains(lower, "stackoverflow.com"):
		return "[Stack Overflow]"
	default:
		return "[Article]"
	}
}

// --- search_images ---

type SearchImagesRequest struct {
	Query       string `json:"query"`
	Reasoning   string `json:"reasoning"`
	ImageType   string `json:"image_type"`
	Orientation string `json:"orientation"`
	MaxResults  int    `json:"max_results"`
}

func (o *Orchestrator) SearchImages(ctx context.Context, req *SearchImagesRequest) (string, error) {
	return o.dispatch(ctx, "search_images", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.Query) == "" {
			return "", &errs.ErrInputInvalid{Field: "query", Reason: "must not be empty"}
		}
		imageType := defaultString(req.ImageType, "all")
		if !oneOf(imageType, "all", "photo", "illustration", "vector") {
			return "", &errs.ErrInputInvalid{Field: "image_type", Reason: "must be one of all, photo, illustration, vector"}
		}
		orientation := defaultString(req.Orientation, "all")
		if !oneOf(orientation, "all", "horizontal", "vertical") {
			return "", &errs.ErrInputInvalid{Field: "orientation", Reason: "must be one of all, horizontal, vertical"}
		}
		maxResults := defaultInt(req.MaxResults, 10)
		if !inRange(maxResults, 1, 20) {
			return "", &errs.ErrInputInvalid{Field: "max_results", Reason: "must be between 1 and 20"}
		}

		images, err := o.images.Search(ctx, imageclient.Params{Query: req.Query, ImageType: imageType, Orientation: orientation, MaxResults: maxResults})
		if err != nil {
			if errors.Is(err, imageclient.ErrNotConfigured) {
				return "Stock image search is not configured. Set PIXABAY_API_KEY to enable this tool.", nil
			}
			return "", err
		}
		return formatImages(images), nil
	})
}

func formatImages(images []model.ImageResult) string {
	if len(images) == 0 {
		return "No images found."
	}
	var b strings.Builder
	for i, img := range images {
		fmt.Fprintf(&b, "%d. %dx%d by %s\n%s\n", i+1, img.Width, img.Height, img.User, img.LargeURL)
		if len(img.Tags) > 0 {
			fmt.Fprintf(&b, "tags: %s\n", strings.Join(img.Tags, ", "))
		}
		if i < len(images)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// --- crawl_url ---

type CrawlURLRequest struct {
	URL       string `json:"url"`
	Reasoning string `json:"reasoning"`
	MaxChars  int    `json:"max_chars"`
}

func (o *Orchestrator) CrawlURL(ctx context.Context, req *CrawlURLRequest) (string, error) {
	return o.dispatch(ctx, "crawl_url", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.URL) == "" {
			return "", &errs.ErrInputInvalid{Field: "url", Reason: "must not be empty"}
		}
		maxChars := defaultInt(req.MaxChars, 8000)
		if !inRange(maxChars, 1, 50000) {
			return "", &errs.ErrInputInvalid{Field: "max_chars", Reason: "must be between 1 and 50000"}
		}
		return o.fetch.FetchMarkdown(ctx, req.URL, maxChars)
	})
}

// --- package_info ---

type PackageInfoRequest struct {
	Name      string `json:"name"`
	Registry  string `json:"registry"`
	Reasoning string `json:"reasoning"`
}

func (o *Orchestrator) PackageInfo(ctx context.Context, req *PackageInfoRequest) (string, error) {
	return o.dispatch(ctx, "package_info", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.Name) == "" {
			return "", &errs.ErrInputInvalid{Field: "name", Reason: "must not be empty"}
		}
		reg, err := parseRegistry(req.Registry)
		if err != nil {
			return "", err
		}
		info, err := o.reg.PackageInfo(ctx, reg, req.Name)
		if err != nil {
			return "", err
		}
		return formatPackageInfo(info), nil
	})
}

func parseRegistry(s string) (model.Registry, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "npm":
		return model.RegistryNPM, nil
	case "pypi":
		return model.RegistryPyPI, nil
	case "crates":
		return model.RegistryCrates, nil
	case "go":
		return model.RegistryGo, nil
	default:
		return "", &errs.ErrInputInvalid{Field: "registry", Reason: "must be one of npm, pypi, crates, go"}
	}
}

func formatPackageInfo(info model.PackageInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) — %s\n", info.Name, info.Registry, defaultString(info.Version, "unknown version"))
	if info.Description != "" {
		fmt.Fprintf(&b, "%s\n", info.Description)
	}
	if info.License != "" {
		fmt.Fprintf(&b, "license: %s\n", info.License)
	}
	if info.Downloads != "" {
		fmt.Fprintf(&b, "downloads: %s\n", info.Downloads)
	}
	if info.LastUpdated != "" {
		fmt.Fprintf(&b, "last updated: %s\n", info.LastUpdated)
	}
	if info.Repository != "" {
		fmt.Fprintf(&b, "repository: %s\n", info.Repository)
	}
	if info.Homepage != "" {
		fmt.Fprintf(&b, "homepage: %s\n", info.Homepage)
	}
	return b.String()
}

// --- package_search ---

type PackageSearchRequest struct {
	Query      string `json:"query"`
	Registry   string `json:"registry"`
	Reasoning  string `json:"reasoning"`
	MaxResults int    `json:"max_results"`
}

func (o *Orchestrator) PackageSearch(ctx context.Context, req *PackageSearchRequest) (string, error) {
	return o.dispatch(ctx, "package_search", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.Query) == "" {
			return "", &errs.ErrInputInvalid{Field: "query", Reason: "must not be empty"}
		}
		reg, err := parseRegistry(req.Registry)
		if err != nil {
			return "", err
		}
		maxResults := defaultInt(req.MaxResults, 10)
		if !inRange(maxResults, 1, 20) {
			return "", &errs.ErrInputInvalid{Field: "max_results", Reason: "must be between 1 and 20"}
		}

		var candidates []model.PackageInfo
		switch reg {
		case model.RegistryNPM:
			candidates, err = o.reg.SearchNPM(ctx, req.Query, maxResults)
		case model.RegistryCrates:
			candidates, err = o.reg.SearchCrates(ctx, req.Query, maxResults)
		case model.RegistryPyPI:
			candidates, err = o.reg.SearchPyPIViaCodeHost(ctx, o.repos, req.Query, maxResults)
		case model.RegistryGo:
			candidates, err = o.reg.SearchGoViaCodeHost(ctx, o.repos, req.Query, maxResults)
		}
		if err != nil {
			return "", err
		}
		return formatPackageCandidates(candidates), nil
	})
}

func formatPackageCandidates(candidates []model.PackageInfo) string {
	if len(candidates) == 0 {
		return "No packages found."
	}
	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s", i+1, c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, " — %s", c.Description)
		}
		b.WriteString("\n")
		if c.Repository != "" {
			fmt.Fprintf(&b, "   %s\n", c.Repository)
		}
	}
	return b.String()
}

// --- github_repo ---

type GitHubRepoRequest struct {
	Repo           string `json:"repo"`
	Reasoning      string `json:"reasoning"`
	IncludeCommits *bool  `json:"include_commits"`
}

func (o *Orchestrator) GitHubRepo(ctx context.Context, req *GitHubRepoRequest) (string, error) {
	return o.dispatch(ctx, "github_repo", req.Reasoning, req, func(ctx context.Context) (string, error) {
		owner, repo, err := repoclient.NormalizeRepo(req.Repo)
		if err != nil {
			return "", err
		}
		info, err := o.repos.GetRepoInfo(ctx, owner, repo)
		if err != nil {
			return "", err
		}

		includeCommits := req.IncludeCommits == nil || *req.IncludeCommits
		var commits []model.Commit
		if includeCommits {
			commits, _ = o.repos.GetRecentCommits(ctx, owner, repo, 3)
		}
		return formatRepoInfo(*info, commits), nil
	})
}

func formatRepoInfo(info model.RepoInfo, commits []model.Commit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", info.FullName)
	if info.Description != "" {
		fmt.Fprintf(&b, "%s\n", info.Description)
	}
	fmt.Fprintf(&b, "stars: %d  forks: %d  open issues: %d\n", info.Stars, info.Forks, info.OpenIssues)
	if info.OpenPRs != nil {
		fmt.Fprintf(&b, "open PRs: %d\n", *info.OpenPRs)
	}
	if info.Language != "" {
		fmt.Fprintf(&b, "language: %s\n", info.Language)
	}
	if info.License != "" {
		fmt.Fprintf(&b, "license: %s\n", info.License)
	}
	if info.LastUpdated != "" {
		fmt.Fprintf(&b, "last updated: %s\n", info.LastUpdated)
	}
	if info.Homepage != "" {
		fmt.Fprintf(&b, "homepage: %s\n", info.Homepage)
	}
	if len(info.Topics) > 0 {
		fmt.Fprintf(&b, "topics: %s\n", strings.Join(info.Topics, ", "))
	}
	if len(commits) > 0 {
		b.WriteString("\nrecent commits:\n")
		for _, c := range commits {
			fmt.Fprintf(&b, "- %s (%s): %s\n", c.SHA[:min(7, len(c.SHA))], c.Author, c.Message)
		}
	}
	return b.String()
}

// --- translate_error ---

type TranslateErrorRequest struct {
	ErrorMessage string `json:"error_message"`
	Reasoning    string `json:"reasoning"`
	Language     string `json:"language"`
	Framework    string `json:"framework"`
	MaxResults   int    `json:"max_results"`
}

func (o *Orchestrator) TranslateError(ctx context.Context, req *TranslateErrorRequest) (string, error) {
	return o.dispatch(ctx, "translate_error", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.ErrorMessage) == "" {
			return "", &errs.ErrInputInvalid{Field: "error_message", Reason: "must not be empty"}
		}
		maxResults := defaultInt(req.MaxResults, 5)
		if !inRange(maxResults, 1, 10) {
			return "", &errs.ErrInputInvalid{Field: "max_results", Reason: "must be between 1 and 10"}
		}

		parsed, hits, err := errorparser.FindSolutions(ctx, o.search, req.ErrorMessage,
			model.Language(strings.ToLower(req.Language)), model.Framework(strings.ToLower(req.Framework)), maxResults)
		if err != nil {
			return "", err
		}
		return formatParsedError(parsed, hits), nil
	})
}

func formatParsedError(parsed model.ParsedError, hits []model.SearchHit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "language: %s\n", parsed.Language)
	if parsed.Framework != "" {
		fmt.Fprintf(&b, "framework: %s\n", parsed.Framework)
	}
	fmt.Fprintf(&b, "error type: %s\n", parsed.ErrorType)
	if parsed.File != "" {
		fmt.Fprintf(&b, "file: %s:%d\n", parsed.File, parsed.Line)
	}
	if len(parsed.KeyTerms) > 0 {
		fmt.Fprintf(&b, "key terms: %s\n", strings.Join(parsed.KeyTerms, ", "))
	}
	if len(hits) == 0 {
		b.WriteString("\nNo solutions found.\n")
		return b.String()
	}
	b.WriteString("\nlikely solutions:\n")
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. %s\n%s\n", i+1, h.Title, h.URL)
		if h.Snippet != "" {
			b.WriteString(h.Snippet)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// --- api_docs ---

type ApiDocsRequest struct {
	APIName    string `json:"api_name"`
	Topic      string `json:"topic"`
	Reasoning  string `json:"reasoning"`
	MaxResults int    `json:"max_results"`
}

func (o *Orchestrator) ApiDocs(ctx context.Context, req *ApiDocsRequest) (string, error) {
	return o.dispatch(ctx, "api_docs", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.APIName) == "" {
			return "", &errs.ErrInputInvalid{Field: "api_name", Reason: "must not be empty"}
		}
		if strings.TrimSpace(req.Topic) == "" {
			return "", &errs.ErrInputInvalid{Field: "topic", Reason: "must not be empty"}
		}
		maxResults := defaultInt(req.MaxResults, 3)
		if !inRange(maxResults, 1, 5) {
			return "", &errs.ErrInputInvalid{Field: "max_results", Reason: "must be between 1 and 5"}
		}

		host, err := o.docs.DiscoverDocsHost(ctx, req.APIName)
		if err != nil {
			return "", err
		}
		doc, err := o.docs.CrawlTopic(ctx, req.APIName, host, req.Topic, maxResults)
		if err != nil {
			return "", err
		}
		return formatApiDoc(doc), nil
	})
}

func formatApiDoc(doc model.ApiDoc) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s\n", doc.APIName, doc.Topic)
	if doc.DocsBaseURL != "" {
		fmt.Fprintf(&b, "%s\n", doc.DocsBaseURL)
	}
	if doc.Overview != "" {
		fmt.Fprintf(&b, "\n%s\n", doc.Overview)
	}
	if len(doc.Parameters) > 0 {
		b.WriteString("\nparameters:\n")
		for _, p := range doc.Parameters {
			fmt.Fprintf(&b, "- %s", p.Name)
			if p.Type != "" {
				fmt.Fprintf(&b, " (%s)", p.Type)
			}
			if p.Description != "" {
				fmt.Fprintf(&b, ": %s", p.Description)
			}
			b.WriteString("\n")
		}
	}
	if len(doc.Examples) > 0 {
		b.WriteString("\nexamples:\n")
		for _, ex := range doc.Examples {
			fmt.Fprintf(&b, "```%s\n%s\n```\n", ex.Language, ex.Code)
		}
	}
	if len(doc.Notes) > 0 {
		b.WriteString("\nnotes:\n")
		for _, n := range doc.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	if len(doc.RelatedLinks) > 0 {
		b.WriteString("\nrelated:\n")
		for _, l := range doc.RelatedLinks {
			fmt.Fprintf(&b, "- %s: %s\n", l.Title, l.URL)
		}
	}
	if len(doc.Sources) > 0 {
		fmt.Fprintf(&b, "\nsources: %s\n", strings.Join(doc.Sources, ", "))
	}
	return b.String()
}

// --- extract_data ---

type ExtractDataRequest struct {
	URL         string            `json:"url"`
	Reasoning   string            `json:"reasoning"`
	ExtractType string            `json:"extract_type"`
	Selectors   map[string]string `json:"selectors"`
	MaxItems    int               `json:"max_items"`
}

func (o *Orchestrator) ExtractData(ctx context.Context, req *ExtractDataRequest) (string, error) {
	return o.dispatch(ctx, "extract_data", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.URL) == "" {
			return "", &errs.ErrInputInvalid{Field: "url", Reason: "must not be empty"}
		}
		extractType := defaultString(req.ExtractType, "auto")
		if !oneOf(extractType, "table", "list", "fields", "json-ld", "auto") {
			return "", &errs.ErrInputInvalid{Field: "extract_type", Reason: "must be one of table, list, fields, json-ld, auto"}
		}
		maxItems := defaultInt(req.MaxItems, 100)
		if !inRange(maxItems, 1, 500) {
			return "", &errs.ErrInputInvalid{Field: "max_items", Reason: "must be between 1 and 500"}
		}

		body, err := o.fetch.FetchRaw(ctx, req.URL, o.cfg.CrawlMaxChars)
		if err != nil {
			return "", err
		}
		result, err := extractor.Extract(body, model.ExtractionKind(extractType), maxItems, req.Selectors)
		if err != nil {
			return "", err
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
}

// --- compare_tech ---

type CompareTechRequest struct {
	Technologies      []string `json:"technologies"`
	Reasoning         string   `json:"reasoning"`
	Category          string   `json:"category"`
	Aspects           []string `json:"aspects"`
	MaxResultsPerTech int      `json:"max_results_per_tech"`
}

func (o *Orchestrator) CompareTech(ctx context.Context, req *CompareTechRequest) (string, error) {
	return o.dispatch(ctx, "compare_tech", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if !inRange(len(req.Technologies), 2, 5) {
			return "", &errs.ErrInputInvalid{Field: "technologies", Reason: "must list between 2 and 5 technologies"}
		}
		categoryStr := defaultString(req.Category, "auto")
		if !oneOf(categoryStr, "framework", "library", "database", "language", "tool", "auto") {
			return "", &errs.ErrInputInvalid{Field: "category", Reason: "must be one of framework, library, database, language, tool, auto"}
		}
		maxPerTech := defaultInt(req.MaxResultsPerTech, 3)

		category := comparator.Category(categoryStr)
		if categoryStr == "auto" {
			category = comparator.InferCategory(req.Technologies[0])
		}

		// Empty registry: compare_tech spans arbitrary, possibly
		// cross-ecosystem technologies, so Compare guesses a registry
		// per technology rather than applying one registry to all of them.
		result := comparator.Compare(ctx, o.reg, o.repos, o.search, req.Technologies, category, "", req.Aspects, maxPerTech)
		return formatComparison(result), nil
	})
}

func formatComparison(result comparator.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "comparing %s (%s)\n\n", strings.Join(result.Technologies, ", "), result.Category)

	aspectNames := make([]string, 0, len(result.Aspects))
	for aspect := range result.Aspects {
		aspectNames = append(aspectNames, aspect)
	}
	sort.Strings(aspectNames)

	for _, aspect := range aspectNames {
		fmt.Fprintf(&b, "%s:\n", aspect)
		for _, tech := range result.Technologies {
			fmt.Fprintf(&b, "  %s: %s\n", tech, result.Aspects[aspect][tech])
		}
		b.WriteString("\n")
	}

	b.WriteString("summary:\n")
	for _, tech := range result.Technologies {
		fmt.Fprintf(&b, "  %s: %s\n", tech, result.Summary[tech])
	}
	if len(result.Sources) > 0 {
		fmt.Fprintf(&b, "\nsources: %s\n", strings.Join(result.Sources, ", "))
	}
	return b.String()
}

// --- get_changelog ---

type GetChangelogRequest struct {
	Package     string `json:"package"`
	Reasoning   string `json:"reasoning"`
	Registry    string `json:"registry"`
	FromVersion string `json:"from_version"`
	ToVersion   string `json:"to_version"`
	MaxReleases int    `json:"max_releases"`
}

func (o *Orchestrator) GetChangelog(ctx context.Context, req *GetChangelogRequest) (string, error) {
	return o.dispatch(ctx, "get_changelog", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.Package) == "" {
			return "", &errs.ErrInputInvalid{Field: "package", Reason: "must not be empty"}
		}
		registryStr := defaultString(req.Registry, "auto")
		var reg model.Registry
		if registryStr == "auto" {
			reg = registry.GuessRegistry(req.Package)
		} else {
			var err error
			reg, err = parseRegistry(registryStr)
			if err != nil {
				return "", err
			}
		}
		maxReleases := defaultInt(req.MaxReleases, 10)
		if !inRange(maxReleases, 1, 50) {
			return "", &errs.ErrInputInvalid{Field: "max_releases", Reason: "must be between 1 and 50"}
		}

		cl, err := changelog.BuildChangelog(ctx, o.reg, o.repos, reg, req.Package, maxReleases)
		if err != nil {
			return "", err
		}
		return formatChangelog(cl, req.FromVersion, req.ToVersion), nil
	})
}

func formatChangelog(cl model.Changelog, fromVersion, toVersion string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", cl.Package, cl.Registry)
	if cl.Repository != "" {
		fmt.Fprintf(&b, "%s\n", cl.Repository)
	}
	fmt.Fprintf(&b, "\nupgrade difficulty: %s\n%s\n", cl.Summary.Difficulty, cl.Summary.Recommendation)

	releases := cl.Releases
	if fromVersion != "" || toVersion != "" {
		releases = filterReleaseRange(releases, fromVersion, toVersion)
	}

	for _, r := range releases {
		fmt.Fprintf(&b, "\n%s", r.Version)
		if r.Date != "" {
			fmt.Fprintf(&b, " (%s)", r.Date)
		}
		b.WriteString("\n")
		writeBullets(&b, "breaking", r.BreakingChanges)
		writeBullets(&b, "features", r.NewFeatures)
		writeBullets(&b, "fixes", r.BugFixes)
	}
	return b.String()
}

func filterReleaseRange(releases []model.Release, from, to string) []model.Release {
	out := make([]model.Release, 0, len(releases))
	started := from == ""
	for _, r := range releases {
		if !started {
			if r.Version == from {
				started = true
			} else {
				continue
			}
		}
		out = append(out, r)
		if to != "" && r.Version == to {
			break
		}
	}
	return out
}

func writeBullets(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

// --- check_service_status ---

type CheckServiceStatusRequest struct {
	Service        string `json:"service"`
	Reasoning      string `json:"reasoning"`
	IncludeHistory bool   `json:"include_history"`
	Days           int    `json:"days"`
}

func (o *Orchestrator) CheckServiceStatus(ctx context.Context, req *CheckServiceStatusRequest) (string, error) {
	return o.dispatch(ctx, "check_service_status", req.Reasoning, req, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.Service) == "" {
			return "", &errs.ErrInputInvalid{Field: "service", Reason: "must not be empty"}
		}
		status := o.status.CheckService(ctx, req.Service)
		return formatServiceStatus(status, req.IncludeHistory), nil
	})
}

func formatServiceStatus(status model.ServiceStatus, includeHistory bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s\n", statusclient.StatusEmoji[status.Status], status.Service, status.Status)
	if status.StatusPageURL != "" {
		fmt.Fprintf(&b, "%s\n", status.StatusPageURL)
	}
	fmt.Fprintf(&b, "checked at: %s\n", status.CheckedAt)

	if len(status.Components) > 0 {
		b.WriteString("\ncomponents:\n")
		for _, c := range status.Components {
			fmt.Fprintf(&b, "- %s %s: %s\n", statusclient.StatusEmoji[c.Status], c.Name, c.Status)
		}
	}
	if len(status.CurrentIncidents) == 0 {
		b.WriteString("\nno current incidents\n")
	} else {
		b.WriteString("\ncurrent incidents:\n")
		for _, inc := range status.CurrentIncidents {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", inc.Title, inc.Status, inc.Impact)
		}
	}
	if includeHistory && len(status.RecentIncidents) > 0 {
		b.WriteString("\nrecent incidents:\n")
		for _, inc := range status.RecentIncidents {
			fmt.Fprintf(&b, "- %s (%s)\n", inc.Title, inc.Status)
		}
	}
	return b.String()
}
