package orchestrator

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/research-mcp/internal/transport"
)

// RegisterMCP registers all thirteen research tools on srv.
func (o *Orchestrator) RegisterMCP(srv *mcp.Server) {
	o.registerWebSearch(srv)
	o.registerSearchExamples(srv)
	o.registerSearchImages(srv)
	o.registerCrawlURL(srv)
	o.registerPackageInfo(srv)
	o.registerPackageSearch(srv)
	o.registerGitHubRepo(srv)
	o.registerTranslateError(srv)
	o.registerApiDocs(srv)
	o.registerExtractData(srv)
	o.registerCompareTech(srv)
	o.registerGetChangelog(srv)
	o.registerCheckServiceStatus(srv)
}

var reasoningProp = map[string]any{
	"type":        "string",
	"description": "why this tool call is needed right now; never empty",
}

func (o *Orchestrator) registerWebSearch(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "web_search",
		Description: "Search the web for general information, news, or technical content via a meta-search backend.",
		InputSchema: transport.InputSchema(map[string]any{
			"query":       map[string]any{"type": "string", "description": "search query"},
			"reasoning":   reasoningProp,
			"category":    map[string]any{"type": "string", "description": "general, it, news, science, videos, images, files", "default": "general"},
			"max_results": map[string]any{"type": "integer", "description": "1-10", "default": 5},
		}, []string{"query", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.WebSearch(ctx, req.(*WebSearchRequest))
	}, transport.DecodeJSON[WebSearchRequest]())
}

func (o *Orchestrator) registerSearchExamples(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "search_examples",
		Description: "Search for code examples, tutorials, and articles illustrating how to use something.",
		InputSchema: transport.InputSchema(map[string]any{
			"query":        map[string]any{"type": "string"},
			"reasoning":    reasoningProp,
			"content_type": map[string]any{"type": "string", "description": "code, articles, both", "default": "both"},
			"time_range":   map[string]any{"type": "string", "description": "day, week, month, year, all", "default": "all"},
			"max_results":  map[string]any{"type": "integer", "description": "1-10", "default": 5},
		}, []string{"query", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.SearchExamples(ctx, req.(*SearchExamplesRequest))
	}, transport.DecodeJSON[SearchExamplesRequest]())
}

func (o *Orchestrator) registerSearchImages(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "search_images",
		Description: "Search for stock images by query, type, and orientation.",
		InputSchema: transport.InputSchema(map[string]any{
			"query":       map[string]any{"type": "string"},
			"reasoning":   reasoningProp,
			"image_type":  map[string]any{"type": "string", "description": "all, photo, illustration, vector", "default": "all"},
			"orientation": map[string]any{"type": "string", "description": "all, horizontal, vertical", "default": "all"},
			"max_results": map[string]any{"type": "integer", "description": "1-20", "default": 10},
		}, []string{"query", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.SearchImages(ctx, req.(*SearchImagesRequest))
	}, transport.DecodeJSON[SearchImagesRequest]())
}

func (o *Orchestrator) registerCrawlURL(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "crawl_url",
		Description: "Render a URL through a headless browser and return its content as markdown.",
		InputSchema: transport.InputSchema(map[string]any{
			"url":       map[string]any{"type": "string"},
			"reasoning": reasoningProp,
			"max_chars": map[string]any{"type": "integer", "description": "1-50000", "default": 8000},
		}, []string{"url", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.CrawlURL(ctx, req.(*CrawlURLRequest))
	}, transport.DecodeJSON[CrawlURLRequest]())
}

func (o *Orchestrator) registerPackageInfo(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "package_info",
		Description: "Look up a single package's metadata from a named registry.",
		InputSchema: transport.InputSchema(map[string]any{
			"name":      map[string]any{"type": "string"},
			"registry":  map[string]any{"type": "string", "description": "npm, pypi, crates, go"},
			"reasoning": reasoningProp,
		}, []string{"name", "registry", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.PackageInfo(ctx, req.(*PackageInfoRequest))
	}, transport.DecodeJSON[PackageInfoRequest]())
}

func (o *Orchestrator) registerPackageSearch(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "package_search",
		Description: "Search a named registry for packages matching a query.",
		InputSchema: transport.InputSchema(map[string]any{
			"query":       map[string]any{"type": "string"},
			"registry":    map[string]any{"type": "string", "description": "npm, pypi, crates, go"},
			"reasoning":   reasoningProp,
			"max_results": map[string]any{"type": "integer", "description": "1-20", "default": 10},
		}, []string{"query", "registry", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.PackageSearch(ctx, req.(*PackageSearchRequest))
	}, transport.DecodeJSON[PackageSearchRequest]())
}

func (o *Orchestrator) registerGitHubRepo(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "github_repo",
		Description: "Look up a GitHub-hosted repository's metadata and recent commits.",
		InputSchema: transport.InputSchema(map[string]any{
			"repo":            map[string]any{"type": "string", "description": "owner/repo, or a repository URL"},
			"reasoning":       reasoningProp,
			"include_commits": map[string]any{"type": "boolean", "default": true},
		}, []string{"repo", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.GitHubRepo(ctx, req.(*GitHubRepoRequest))
	}, transport.DecodeJSON[GitHubRepoRequest]())
}

func (o *Orchestrator) registerTranslateError(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "translate_error",
		Description: "Parse a language/framework error message and search for likely solutions.",
		InputSchema: transport.InputSchema(map[string]any{
			"error_message": map[string]any{"type": "string"},
			"reasoning":     reasoningProp,
			"language":      map[string]any{"type": "string", "description": "override auto-detected language"},
			"framework":     map[string]any{"type": "string", "description": "override auto-detected framework"},
			"max_results":   map[string]any{"type": "integer", "description": "1-10", "default": 5},
		}, []string{"error_message", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.TranslateError(ctx, req.(*TranslateErrorRequest))
	}, transport.DecodeJSON[TranslateErrorRequest]())
}

func (o *Orchestrator) registerApiDocs(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "api_docs",
		Description: "Discover an API's documentation host and crawl a topic within it.",
		InputSchema: transport.InputSchema(map[string]any{
			"api_name":    map[string]any{"type": "string"},
			"topic":       map[string]any{"type": "string"},
			"reasoning":   reasoningProp,
			"max_results": map[string]any{"type": "integer", "description": "1-5", "default": 3},
		}, []string{"api_name", "topic", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.ApiDocs(ctx, req.(*ApiDocsRequest))
	}, transport.DecodeJSON[ApiDocsRequest]())
}

func (o *Orchestrator) registerExtractData(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "extract_data",
		Description: "Extract structured data (tables, lists, fields, or JSON-LD) from a rendered page.",
		InputSchema: transport.InputSchema(map[string]any{
			"url":          map[string]any{"type": "string"},
			"reasoning":    reasoningProp,
			"extract_type": map[string]any{"type": "string", "description": "table, list, fields, json-ld, auto", "default": "auto"},
			"selectors":    map[string]any{"type": "object", "description": "field name to CSS selector, used with extract_type=fields"},
			"max_items":    map[string]any{"type": "integer", "description": "1-500", "default": 100},
		}, []string{"url", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.ExtractData(ctx, req.(*ExtractDataRequest))
	}, transport.DecodeJSON[ExtractDataRequest]())
}

func (o *Orchestrator) registerCompareTech(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "compare_tech",
		Description: "Compare 2-5 technologies side by side across a set of aspects.",
		InputSchema: transport.InputSchema(map[string]any{
			"technologies":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "2-5 technology names"},
			"reasoning":            reasoningProp,
			"category":             map[string]any{"type": "string", "description": "framework, library, database, language, tool, auto", "default": "auto"},
			"aspects":              map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "restrict to these aspects"},
			"max_results_per_tech": map[string]any{"type": "integer", "default": 3},
		}, []string{"technologies", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.CompareTech(ctx, req.(*CompareTechRequest))
	}, transport.DecodeJSON[CompareTechRequest]())
}

func (o *Orchestrator) registerGetChangelog(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "get_changelog",
		Description: "Build a risk-rated release history for a package, optionally restricted to a version range.",
		InputSchema: transport.InputSchema(map[string]any{
			"package":      map[string]any{"type": "string"},
			"reasoning":    reasoningProp,
			"registry":     map[string]any{"type": "string", "description": "npm, pypi, crates, go, auto", "default": "auto"},
			"from_version": map[string]any{"type": "string"},
			"to_version":   map[string]any{"type": "string"},
			"max_releases": map[string]any{"type": "integer", "description": "1-50", "default": 10},
		}, []string{"package", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.GetChangelog(ctx, req.(*GetChangelogRequest))
	}, transport.DecodeJSON[GetChangelogRequest]())
}

func (o *Orchestrator) registerCheckServiceStatus(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "check_service_status",
		Description: "Check a third-party service's current status and, optionally, its recent incident history.",
		InputSchema: transport.InputSchema(map[string]any{
			"service":         map[string]any{"type": "string"},
			"reasoning":       reasoningProp,
			"include_history": map[string]any{"type": "boolean", "default": false},
			"days":            map[string]any{"type": "integer", "description": "history window in days, used with include_history", "default": 7},
		}, []string{"service", "reasoning"}),
	}
	transport.RegisterTextTool(srv, tool, func(ctx context.Context, req any) (string, error) {
		return o.CheckServiceStatus(ctx, req.(*CheckServiceStatusRequest))
	}, transport.DecodeJSON[CheckServiceStatusRequest]())
}
