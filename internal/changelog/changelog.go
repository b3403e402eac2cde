// Package changelog builds a risk-rated release history for a package by
// resolving its repository and classifying each release's body text.
package changelog

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/repoclient"
)

// PackageLookup resolves a package to its PackageInfo (for repository()).
type PackageLookup interface {
	PackageInfo(ctx context.Context, registry model.Registry, name string) (model.PackageInfo, error)
}

var breakingMarkers = []string{
	"breaking change", "breaking:", "breaking", "removed", "deprecated",
	"incompatible", "migration required", "must upgrade", "⚠️", "🚨",
}

var featureMarkers = []string{"new:", "added:", "feature:", "✨", "🎉", "feat:"}

var fixMarkers = []string{"fix:", "fixed:", "bugfix:", "bug fix:", "🐛", "patch:"}

var bulletPrefixes = []string{"- ", "* ", "• ", "+ "}

// categoryPrefixes lists the category labels classifyBody matches on, so
// stripBulletPrefix can also strip them from the text it keeps; without
// this a line like "BREAKING: removed foo" would classify correctly but
// still carry "BREAKING:" into the stripped release text.
var categoryPrefixes = []string{
	"breaking change:", "breaking:", "new:", "added:", "feature:", "feat:",
	"fix:", "fixed:", "bugfix:", "bug fix:", "patch:",
}

// BuildChangelog resolves pkg's repository via lookup, fetches up to
// maxReleases releases via the GitHub client, and classifies each release's
// body into breaking changes, new features, and bug fixes.
func BuildChangelog(ctx context.Context, lookup PackageLookup, gh *repoclient.Client, registry model.Registry, pkg string, maxReleases int) (model.Changelog, error) {
	info, err := lookup.PackageInfo(ctx, registry, pkg)
	if err != nil {
		return model.Changelog{}, fmt.Errorf("resolve package: %w", err)
	}
	if info.Repository == "" {
		return model.Changelog{}, fmt.Errorf("Could not find repository for package")
	}

	owner, repo, err := repoclient.NormalizeRepo(info.Repository)
	if err != nil {
		return model.Changelog{}, fmt.Errorf("Could not find repository for package")
	}

	rawReleases, err := gh.GetReleases(ctx, owner, repo, maxReleases)
	if err != nil {
		return model.Changelog{}, fmt.Errorf("fetch releases: %w", err)
	}

	cl := model.Changelog{Package: pkg, Registry: registry, Repository: info.Repository}
	breakingCount := 0

	for _, r := range rawReleases {
		release := model.Release{
			Version: repoclient.ReleaseVersion(r),
			Date:    repoclient.ReleaseDate(r),
			Author:  repoclient.ReleaseAuthor(r),
			URL:     repoclient.ReleaseURL(r),
		}
		release.BreakingChanges, release.NewFeatures, release.BugFixes = classifyBody(repoclient.ReleaseBody(r))
		breakingCount += len(release.BreakingChanges)
		cl.Releases = append(cl.Releases, release)
	}

	cl.Summary = summarize(len(cl.Releases), breakingCount)
	return cl, nil
}

func classifyBody(body string) (breaking, features, fixes []string) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		clean := stripBulletPrefix(line)

		switch {
		case containsAny(lower, breakingMarkers):
			breaking = append(breaking, clean)
		case containsAny(lower, featureMarkers):
			features = append(features, clean)
		case containsAny(lower, fixMarkers):
			fixes = append(fixes, clean)
		}
	}
	return breaking, features, fixes
}

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func stripBulletPrefix(line string) string {
	for _, prefix := range bulletPrefixes {
		if after, found := strings.CutPrefix(line, prefix); found {
			line = strings.TrimSpace(after)
			break
		}
	}
	return stripCategoryPrefix(line)
}

// stripCategoryPrefix removes a leading category label (e.g. "BREAKING:",
// "fix:") case-insensitively, so classifyBody's markers don't leak into the
// text kept for display.
func stripCategoryPrefix(line string) string {
	lower := strings.ToLower(line)
	for _, prefix := range categoryPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return line
}

var recommendations = map[model.Difficulty]string{
	model.DifficultyLow:    "No breaking changes detected. Should be a safe upgrade.",
	model.DifficultyMedium: "A small number of breaking changes were found. Review the release notes before upgrading.",
	model.DifficultyHigh:   "Multiple breaking changes were found. Budget time for a careful migration and test thoroughly.",
}

func summarize(totalReleases, breakingCount int) model.ChangelogSummary {
	difficulty := model.DifficultyLow
	switch {
	case breakingCount >= 3:
		difficulty = model.DifficultyHigh
	case breakingCount >= 1:
		difficulty = model.DifficultyMedium
	}
	return model.ChangelogSummary{
		TotalReleases:  totalReleases,
		BreakingCount:  breakingCount,
		Difficulty:     difficulty,
		Recommendation: recommendations[difficulty],
	}
}
