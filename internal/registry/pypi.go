package registry

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
)

const maxLicenseChars = 100

type pypiResponse struct {
	Info struct {
		Name        string         `json:"name"`
		Version     string         `json:"version"`
		Summary     string         `json:"summary"`
		License     string         `json:"license"`
		HomePage    string         `json:"home_page"`
		ProjectURLs map[string]any `json:"project_urls"`
	} `json:"info"`
}

// PyPIPackageInfo fetches package metadata from PyPI.
func (c *Client) PyPIPackageInfo(ctx context.Context, name string) (*model.PackageInfo, error) {
	reqURL := fmt.Sprintf("%s/pypi/%s/json", c.pypiBaseURL, url.PathEscape(name))
	payload, err := fetchJSON[pypiResponse](ctx, c, "pypi", c.pypiBreaker, reqURL)
	if err != nil {
		return nil, err
	}
	if payload.Info.Version == "" {
		return nil, &errs.ErrNotFound{Subject: name}
	}

	urls := payload.Info.ProjectURLs
	if urls == nil {
		urls = map[string]any{}
	}
	repo := firstURLKey(urls, "Source", "Repository", "Homepage")
	if repo == "" {
		repo = payload.Info.HomePage
	}

	license := payload.Info.License
	if len([]rune(license)) > maxLicenseChars {
		license = string([]rune(license)[:maxLicenseChars])
	}

	return &model.PackageInfo{
		Name:        payload.Info.Name,
		Registry:    model.RegistryPyPI,
		Version:     payload.Info.Version,
		Description: payload.Info.Summary,
		Homepage:    payload.Info.HomePage,
		Repository:  repo,
		License:     license,
	}, nil
}

func firstURLKey(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
