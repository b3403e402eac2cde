// Command research-mcp runs the developer research assistant as an MCP
// server speaking stdio to its client.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/research-mcp/internal/config"
	"github.com/hazyhaar/research-mcp/internal/docdiscoverer"
	"github.com/hazyhaar/research-mcp/internal/fetcher"
	"github.com/hazyhaar/research-mcp/internal/imageclient"
	"github.com/hazyhaar/research-mcp/internal/orchestrator"
	"github.com/hazyhaar/research-mcp/internal/prompts"
	"github.com/hazyhaar/research-mcp/internal/registry"
	"github.com/hazyhaar/research-mcp/internal/repoclient"
	"github.com/hazyhaar/research-mcp/internal/resources"
	"github.com/hazyhaar/research-mcp/internal/searchclient"
	"github.com/hazyhaar/research-mcp/internal/statusclient"
	"github.com/hazyhaar/research-mcp/internal/usage"
)

var version = "0.1.0"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if err := run(logger); err != nil {
		logger.Error("research-mcp exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.New()

	search := searchclient.New(cfg.SearxBaseURL, searchclient.WithUserAgent(cfg.UserAgent))
	fetch := fetcher.New()
	reg := registry.New()
	repos := repoclient.New(repoclient.WithToken(cfg.GitHubToken), repoclient.WithUserAgent(cfg.UserAgent))
	images := imageclient.New(cfg.PixabayAPIKey)
	status := statusclient.New(statusclient.WithFetcher(fetch))
	docs := docdiscoverer.New(docdiscoverer.WithSearcher(search), docdiscoverer.WithFetcher(fetch))
	tracker := usage.NewTracker(cfg.UsageLogPath, logger)

	orch := orchestrator.New(search, fetch, reg, repos, images, status, docs, tracker, cfg, logger)

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "research-mcp",
		Version: version,
	}, nil)

	orch.RegisterMCP(srv)

	resourceReg := resources.New()
	if err := orch.RegisterResources(resourceReg); err != nil {
		return fmt.Errorf("register resources: %w", err)
	}
	resourceReg.RegisterMCP(srv)

	prompts.New().RegisterMCP(srv)

	ctx := context.Background()
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}
