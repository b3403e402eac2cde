package orchestrator

import (
	"context"
	"fmt"

	"github.com/hazyhaar/research-mcp/internal/changelog"
	"github.com/hazyhaar/research-mcp/internal/repoclient"
	"github.com/hazyhaar/research-mcp/internal/resources"
)

// RegisterResources registers the read-only resource views onto reg.
func (o *Orchestrator) RegisterResources(reg *resources.Registry) error {
	if err := reg.Register("package://{registry}/{name}", "package", "package registry metadata", o.resolvePackage); err != nil {
		return err
	}
	if err := reg.Register("github://{owner}/{repo}", "github_repo", "GitHub repository metadata and recent commits", o.resolveGitHubRepo); err != nil {
		return err
	}
	if err := reg.Register("status://{service}", "service_status", "third-party service status", o.resolveServiceStatus); err != nil {
		return err
	}
	if err := reg.Register("changelog://{registry}/{package}", "changelog", "package release history", o.resolveChangelog); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) resolvePackage(ctx context.Context, vars map[string]string) (any, error) {
	reg, err := parseRegistry(vars["registry"])
	if err != nil {
		return nil, err
	}
	return o.reg.PackageInfo(ctx, reg, vars["name"])
}

func (o *Orchestrator) resolveGitHubRepo(ctx context.Context, vars map[string]string) (any, error) {
	owner, repo, err := repoclient.NormalizeRepo(fmt.Sprintf("%s/%s", vars["owner"], vars["repo"]))
	if err != nil {
		return nil, err
	}
	return o.repos.GetRepoInfo(ctx, owner, repo)
}

func (o *Orchestrator) resolveServiceStatus(ctx context.Context, vars map[string]string) (any, error) {
	return o.status.CheckService(ctx, vars["service"]), nil
}

func (o *Orchestrator) resolveChangelog(ctx context.Context, vars map[string]string) (any, error) {
	reg, err := parseRegistry(vars["registry"])
	if err != nil {
		return nil, err
	}
	return changelog.BuildChangelog(ctx, o.reg, o.repos, reg, vars["package"], 10)
}
