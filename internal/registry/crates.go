package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/textutil"
)

type cratesResponse struct {
	Crate struct {
		MaxVersion  string `json:"max_version"`
		Downloads   int64  `json:"downloads"`
		UpdatedAt   string `json:"updated_at"`
		Repository  string `json:"repository"`
		Homepage    string `json:"homepage"`
		Description string `json:"description"`
	} `json:"crate"`
}

// CratesPackageInfo fetches package metadata from crates.io.
func (c *Client) CratesPackageInfo(ctx context.Context, name string) (*model.PackageInfo, error) {
	reqURL := fmt.Sprintf("%s/api/v1/crates/%s", c.cratesBaseURL, name)
	payload, err := fetchJSON[cratesResponse](ctx, c, "crates", c.cratesBreaker, reqURL)
	if err != nil {
		return nil, err
	}
	if payload.Crate.MaxVersion == "" {
		return nil, &errs.ErrNotFound{Subject: name}
	}

	info := &model.PackageInfo{
		Name:        name,
		Registry:    model.RegistryCrates,
		Version:     payload.Crate.MaxVersion,
		Description: payload.Crate.Description,
		Homepage:    payload.Crate.Homepage,
		Repository:  payload.Crate.Repository,
		Downloads:   textutil.HumanCount(payload.Crate.Downloads),
	}
	if t, err := time.Parse(time.RFC3339, payload.Crate.UpdatedAt); err == nil {
		info.LastUpdated = textutil.RelativeTime(t, time.Now())
	}
	return info, nil
}
