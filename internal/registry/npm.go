package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/resilience"
	"github.com/hazyhaar/research-mcp/internal/textutil"
)

type npmPackument struct {
	Name     string `json:"name"`
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
	Time        map[string]string `json:"time"`
	Description string            `json:"description"`
	Repository  struct {
		URL string `json:"url"`
	} `json:"repository"`
	Homepage string `json:"homepage"`
	License  any    `json:"license"`
}

type npmDownloads struct {
	Downloads int64 `json:"downloads"`
}

// NPMPackageInfo fetches package metadata from the NPM registry.
func (c *Client) NPMPackageInfo(ctx context.Context, name string) (*model.PackageInfo, error) {
	reqURL := fmt.Sprintf("%s/%s", c.npmBaseURL, url.PathEscape(name))
	packument, err := fetchJSON[npmPackument](ctx, c, "npm", c.npmBreaker, reqURL)
	if err != nil {
		return nil, err
	}
	if packument.DistTags.Latest == "" {
		return nil, &errs.ErrNotFound{Subject: name}
	}

	downloads := c.npmLastWeekDownloads(ctx, name)

	info := &model.PackageInfo{
		Name:        packument.Name,
		Registry:    model.RegistryNPM,
		Version:     packument.DistTags.Latest,
		Description: packument.Description,
		Homepage:    packument.Homepage,
		Repository:  packument.Repository.URL,
		Downloads:   downloads,
		License:     licenseToString(packument.License),
	}
	if ts, ok := packument.Time[packument.DistTags.Latest]; ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			info.LastUpdated = textutil.RelativeTime(t, time.Now())
		}
	}
	return info, nil
}

func (c *Client) npmLastWeekDownloads(ctx context.Context, name string) string {
	reqURL := fmt.Sprintf("%s/%s", c.npmDownloadsURL, url.PathEscape(name))
	dl, err := resilience.Call(ctx, "npm-downloads", c.npmBreaker, 5*time.Second, 1, 100*time.Millisecond, c.logger,
		func(ctx context.Context) (*npmDownloads, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", c.ua)
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("status %d", resp.StatusCode)
			}
			var d npmDownloads
			if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
				return nil, err
			}
			return &d, nil
		})
	if err != nil {
		return ""
	}
	return textutil.HumanCount(dl.Downloads)
}

func licenseToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["type"].(string); ok {
			return s
		}
	}
	return ""
}
