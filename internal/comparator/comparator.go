// Package comparator fans out registry, repository, and meta-search
// lookups across 2-5 technologies and aggregates them into a side-by-side
// comparison.
package comparator

import (
	"context"
	"strings"
	"sync"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/registry"
	"github.com/hazyhaar/research-mcp/internal/searchclient"
)

const maxConcurrentTechs = 5

const notFoundPlaceholder = "Information not found"

// Category selects the default aspect list for a technology comparison.
type Category string

const (
	CategoryFramework Category = "framework"
	CategoryLibrary   Category = "library"
	CategoryDatabase  Category = "database"
	CategoryLanguage  Category = "language"
	CategoryTool      Category = "tool"
)

var defaultAspects = map[Category][]string{
	CategoryFramework: {"performance", "learning_curve", "ecosystem", "popularity", "features"},
	CategoryLibrary:   {"performance", "features", "ecosystem", "popularity", "bundle_size"},
	CategoryDatabase:  {"performance", "data_model", "scaling", "use_cases", "ecosystem"},
	CategoryLanguage:  {"performance", "learning_curve", "ecosystem", "jobs", "use_cases"},
	CategoryTool:      {"performance", "features", "configuration", "ecosystem"},
}

// Result is the aggregate comparison across technologies.
type Result struct {
	Technologies []string                     `json:"technologies"`
	Category     Category                     `json:"category"`
	Aspects      map[string]map[string]string `json:"aspects"`
	Summary      map[string]string            `json:"summary"`
	Sources      []string                     `json:"sources"`
}

// RegistryLookup resolves a technology name to package metadata.
type RegistryLookup interface {
	PackageInfo(ctx context.Context, registry model.Registry, name string) (model.PackageInfo, error)
}

// RepoGuesser finds the most likely source repository for a technology name.
type RepoGuesser interface {
	SearchRepositories(ctx context.Context, query, language string, limit int) ([]model.RepoInfo, error)
}

// Searcher performs meta-search for per-aspect sentences.
type Searcher interface {
	Search(ctx context.Context, p searchclient.Params) ([]model.SearchHit, error)
}

type techResult struct {
	tech    string
	aspects map[string]string
	sources []string
}

// Compare fans out one sub-task per technology, each concurrently
// gathering a registry lookup, a repo lookup, and one meta-search per
// aspect. A single technology's partial failure fills its missing aspects
// with a placeholder rather than failing the whole comparison. An empty
// reg leaves the registry lookup to guess per technology instead of
// applying one registry across the whole set.
func Compare(ctx context.Context, registry RegistryLookup, repos RepoGuesser, searcher Searcher, technologies []string, category Category, reg model.Registry, aspectOverride []string, maxResultsPerAspect int) Result {
	aspects := defaultAspects[category]
	if aspects == nil {
		aspects = defaultAspects[CategoryTool]
	}
	if len(aspectOverride) > 0 {
		aspects = intersect(aspects, aspectOverride)
	}
	if maxResultsPerAspect <= 0 {
		maxResultsPerAspect = 5
	}

	sem := make(chan struct{}, maxConcurrentTechs)
	var wg sync.WaitGroup
	results := make([]techResult, len(technologies))

	for i, tech := range technologies {
		wg.Add(1)
		go func(i int, tech string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = compareOne(ctx, registry, repos, searcher, tech, aspects, reg, maxResultsPerAspect)
		}(i, tech)
	}
	wg.Wait()

	result := Result{
		Technologies: technologies,
		Category:     category,
		Aspects:      make(map[string]map[string]string, len(aspects)),
		Summary:      make(map[string]string, len(technologies)),
	}
	seenSource := map[string]bool{}

	for _, aspect := range aspects {
		result.Aspects[aspect] = make(map[string]string, len(results))
	}
	for _, r := range results {
		for _, aspect := range aspects {
			value, ok := r.aspects[aspect]
			if !ok {
				value = notFoundPlaceholder
			}
			result.Aspects[aspect][r.tech] = value
		}
		result.Summary[r.tech] = bestForSentence(r.aspects, aspects)
		for _, src := range r.sources {
			if !seenSource[src] {
				seenSource[src] = true
				result.Sources = append(result.Sources, src)
			}
		}
	}
	return result
}

func compareOne(ctx context.Context, reglookup RegistryLookup, repos RepoGuesser, searcher Searcher, tech string, aspects []string, reg model.Registry, maxResultsPerAspect int) techResult {
	r := techResult{tech: tech, aspects: make(map[string]string, len(aspects))}

	if reglookup != nil {
		techReg := reg
		if techReg == "" {
			techReg = registry.GuessRegistry(tech)
		}
		if info, err := reglookup.PackageInfo(ctx, techReg, tech); err == nil && info.Homepage != "" {
			r.sources = append(r.sources, info.Homepage)
		}
	}
	if repos != nil {
		if hits, err := repos.SearchRepositories(ctx, tech, "", 1); err == nil && len(hits) > 0 && hits[0].Homepage != "" {
			r.sources = append(r.sources, hits[0].Homepage)
		}
	}

	if searcher == nil {
		return r
	}

	var innerWG sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, maxConcurrentTechs)

	for _, aspect := range aspects {
		innerWG.Add(1)
		go func(aspect string) {
			defer innerWG.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			hits, err := searcher.Search(ctx, searchclient.Params{
				Query:      tech + " " + aspect,
				MaxResults: maxResultsPerAspect,
			})
			if err != nil {
				return
			}
			sentence, url := firstSentenceMentioning(hits, aspect)
			if sentence == "" {
				return
			}
			mu.Lock()
			r.aspects[aspect] = sentence
			if url != "" {
				r.sources = append(r.sources, url)
			}
			mu.Unlock()
		}(aspect)
	}
	innerWG.Wait()

	return r
}

// bestForSentence picks the "what's this good for" summary line, preferring
// use_cases, then features, then the first aspect that resolved at all.
func bestForSentence(found map[string]string, aspects []string) string {
	for _, preferred := range []string{"use_cases", "features"} {
		if v, ok := found[preferred]; ok {
			return v
		}
	}
	for _, aspect := range aspects {
		if v, ok := found[aspect]; ok {
			return v
		}
	}
	return notFoundPlaceholder
}

// firstSentenceMentioning returns the first hit sentence (snippet split on
// ". ") that contains aspect, along with that hit's URL.
func firstSentenceMentioning(hits []model.SearchHit, aspect string) (sentence, url string) {
	keyword := strings.ReplaceAll(aspect, "_", " ")
	for _, hit := range hits {
		for _, s := range strings.Split(hit.Snippet, ". ") {
			if strings.Contains(strings.ToLower(s), keyword) {
				return strings.TrimSpace(s), hit.URL
			}
		}
	}
	return "", ""
}

// InferCategory makes a best-effort category guess from a technology name
// against a small set of well-known examples; callers that already know
// the category should pass it explicitly instead.
func InferCategory(name string) Category {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "postgres", "mysql", "mongodb", "redis", "sqlite", "cassandra", "dynamodb"):
		return CategoryDatabase
	case containsAny(lower, "python", "rust", "golang", " go", "java", "typescript", "javascript", "ruby", "c++", "kotlin"):
		return CategoryLanguage
	case containsAny(lower, "webpack", "vite", "eslint", "docker", "terraform", "kubernetes", "prettier"):
		return CategoryTool
	case containsAny(lower, "react", "vue", "angular", "django", "flask", "fastapi", "express", "next", "rails", "spring"):
		return CategoryFramework
	default:
		return CategoryLibrary
	}
}

// intersect preserves the order and default-aspect membership of base,
// restricting it to names also present in requested.
func intersect(base, requested []string) []string {
	want := make(map[string]bool, len(requested))
	for _, a := range requested {
		want[a] = true
	}
	out := make([]string, 0, len(base))
	for _, a := range base {
		if want[a] {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return base
	}
	return out
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
