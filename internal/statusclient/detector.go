package statusclient

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// normalizeServiceName resolves aliases and strips common suffixes/
// separators so "Claude API" and "claude-api" both resolve to the same
// knownStatusPages key.
func normalizeServiceName(service string) string {
	lower := strings.ToLower(strings.TrimSpace(service))

	if canonical, ok := serviceAliases[lower]; ok {
		return canonical
	}
	for alias, canonical := range serviceAliases {
		if strings.Contains(lower, alias) || strings.Contains(alias, lower) {
			return canonical
		}
	}

	cleaned := lower
	for _, suffix := range []string{" api", " status", " service"} {
		cleaned = strings.TrimSuffix(cleaned, suffix)
	}
	cleaned = strings.NewReplacer(" ", "", ".", "", "-", "").Replace(cleaned)
	return cleaned
}

// rawCleanedName strips separators without resolving aliases, matching the
// fallback lookup the original detector performs before pattern probing.
func rawCleanedName(service string) string {
	lower := strings.ToLower(service)
	return strings.NewReplacer(" ", "", ".", "", "-", "").Replace(lower)
}

// findKnownStatusPage returns a known status page URL for service, or
// ("", false) when neither the normalized nor raw-cleaned name matches.
func findKnownStatusPage(service string) (string, bool) {
	normalized := normalizeServiceName(service)
	if url, ok := knownStatusPages[normalized]; ok {
		return url, true
	}
	if url, ok := knownStatusPages[rawCleanedName(service)]; ok {
		return url, true
	}
	return "", false
}

// probePatterns issues a HEAD request against each pattern URL in order
// and returns the first that responds with a status below 400, preferring
// a ".com" hit over a
// ".io"/other hit when both succeed within the probe set.
func probePatterns(ctx context.Context, client *http.Client, ua, service string) (string, bool) {
	normalized := normalizeServiceName(service)
	if normalized == "" {
		return "", false
	}

	var comHit, otherHit string
	for _, pattern := range statusPagePatterns {
		candidate := strings.ReplaceAll(pattern, "{service}", normalized)
		if headOK(ctx, client, ua, candidate) {
			if strings.Contains(candidate, ".com") {
				if comHit == "" {
					comHit = candidate
				}
				continue
			}
			if otherHit == "" {
				otherHit = candidate
			}
		}
	}
	if comHit != "" {
		return comHit, true
	}
	if otherHit != "" {
		return otherHit, true
	}
	return "", false
}

func headOK(ctx context.Context, client *http.Client, ua, url string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", ua)
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}
