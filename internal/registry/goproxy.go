package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/research-mcp/internal/errs"
	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/textutil"
)

type goProxyInfo struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

// GoPackageInfo fetches module metadata from the Go module proxy. The
// module path is the package identity; there is no separate name field.
func (c *Client) GoPackageInfo(ctx context.Context, modulePath string) (*model.PackageInfo, error) {
	escaped, err := escapeGoModule(modulePath)
	if err != nil {
		return nil, &errs.ErrInputInvalid{Field: "name", Reason: err.Error()}
	}
	reqURL := fmt.Sprintf("%s/%s/@latest", c.goProxyURL, escaped)
	payload, err := fetchJSON[goProxyInfo](ctx, c, "go-proxy", c.goBreaker, reqURL)
	if err != nil {
		return nil, err
	}
	if payload.Version == "" {
		return nil, &errs.ErrNotFound{Subject: modulePath}
	}

	info := &model.PackageInfo{
		Name:     modulePath,
		Registry: model.RegistryGo,
		Version:  payload.Version,
	}
	if repo, ok := moduleRepositoryURL(modulePath); ok {
		info.Repository = repo
	}
	if !payload.Time.IsZero() {
		info.LastUpdated = textutil.RelativeTime(payload.Time, time.Now())
	}
	return info, nil
}

// escapeGoModule applies the Go module proxy's "!" case-escaping: every
// uppercase letter becomes "!" followed by its lowercase form, and a
// literal "!" becomes "!!". Slashes are left intact since they delimit the
// proxy's path segments.
func escapeGoModule(modulePath string) (string, error) {
	if modulePath == "" {
		return "", fmt.Errorf("empty module path")
	}
	var b []byte
	for _, r := range modulePath {
		switch {
		case r == '!':
			b = append(b, '!', '!')
		case r >= 'A' && r <= 'Z':
			b = append(b, '!', byte(r-'A'+'a'))
		default:
			b = append(b, byte(r))
		}
	}
	return string(b), nil
}

// moduleRepositoryURL guesses a source-repository URL for well-known
// hosting prefixes; returns ok=false when the module path does not match
// a recognizable host.
func moduleRepositoryURL(modulePath string) (string, bool) {
	if !strings.HasPrefix(modulePath, "github.com/") && !strings.HasPrefix(modulePath, "gitlab.com/") {
		return "", false
	}
	parts := strings.Split(modulePath, "/")
	if len(parts) < 3 {
		return "", false
	}
	return "https://" + strings.Join(parts[:3], "/"), true
}
