// Package evaluation implements the repository evaluation engine: metric
// collection, deterministic scoring and the cached evaluator that ties them
// together.
package evaluation

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/liugu2023/nekro-github-analyzer/internal/monitoring"
	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

// Client is the facet surface the collector needs from the GitHub layer.
type Client interface {
	Repository(ctx context.Context, owner, repo string) (*types.Repository, error)
	Readme(ctx context.Context, owner, repo string) (*types.Readme, error)
	License(ctx context.Context, owner, repo string) (*types.License, error)
	CommunityProfile(ctx context.Context, owner, repo string) (*types.CommunityProfile, error)
	Languages(ctx context.Context, owner, repo string) (map[string]int, error)
	Tree(ctx context.Context, owner, repo, branch string) ([]types.TreeEntry, error)
	Issues(ctx context.Context, owner, repo, state string) ([]types.Issue, error)
	PullRequests(ctx context.Context, owner, repo, state string) ([]types.PullRequest, error)
	Releases(ctx context.Context, owner, repo string) ([]types.Release, error)
	Branches(ctx context.Context, owner, repo string) ([]types.Branch, error)
}

// standardDirs are conventional top-level directory names. Two or more of
// them present counts as a standard layout.
var standardDirs = map[string]bool{
	"src":   true,
	"lib":   true,
	"tests": true,
	"test":  true,
	"docs":  true,
	"doc":   true,
}

// Collector fetches every facet of a repository and reduces them into one
// flat metrics record. Only the repository metadata facet is mandatory:
// any other facet that fails is logged and replaced by its zero value.
type Collector struct {
	client Client
	logger *monitoring.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewCollector creates a Collector over the given facet client.
func NewCollector(client Client, logger *monitoring.Logger) *Collector {
	if logger == nil {
		logger = monitoring.NewLogger()
	}
	return &Collector{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// facet runs one optional facet fetch. On failure it logs a warning and
// reports the zero value so collection continues.
func facet[T any](logger *monitoring.Logger, repo, name string, fn func() (T, error)) (T, bool) {
	v, err := fn()
	if err != nil {
		logger.Warn("facet unavailable, using defaults",
			"facet", name,
			"repo", repo,
			"error", err.Error(),
		)
		var zero T
		return zero, false
	}
	return v, true
}

// Collect fetches all facets of owner/repo and returns the flat metrics
// record. It fails only when the repository metadata itself cannot be
// fetched or the context ends.
func (c *Collector) Collect(ctx context.Context, owner, repo string) (*types.RepoMetrics, error) {
	rep, err := c.client.Repository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	full := rep.FullName
	m := &types.RepoMetrics{
		Owner:        rep.Owner,
		Repo:         rep.Name,
		FullName:     full,
		Description:  rep.Description,
		URL:          rep.URL,
		CreatedAt:    rep.CreatedAt,
		UpdatedAt:    rep.UpdatedAt,
		Stars:        rep.Stars,
		Forks:        rep.Forks,
		Contributors: rep.Contributors,
	}

	if readme, ok := facet(c.logger, full, "readme", func() (*types.Readme, error) {
		return c.client.Readme(ctx, owner, repo)
	}); ok {
		m.HasReadme = true
		m.ReadmeLength = len(readme.Content)
	}

	if lic, ok := facet(c.logger, full, "license", func() (*types.License, error) {
		return c.client.License(ctx, owner, repo)
	}); ok {
		m.HasLicense = true
		m.LicenseName = lic.Name
	}

	if profile, ok := facet(c.logger, full, "community_profile", func() (*types.CommunityProfile, error) {
		return c.client.CommunityProfile(ctx, owner, repo)
	}); ok {
		m.HasContributing = profile.HasContributing
		m.HasCodeOfConduct = profile.HasCodeOfConduct
	}

	m.PrimaryLanguage = rep.Language
	if langs, ok := facet(c.logger, full, "languages", func() (map[string]int, error) {
		return c.client.Languages(ctx, owner, repo)
	}); ok {
		m.LanguageCount = len(langs)
		m.LanguageDistribution = languageDistribution(langs)
	} else if rep.Language != "" {
		// Fall back to the metadata's primary language as the whole
		// distribution.
		m.LanguageCount = 1
		m.LanguageDistribution = map[string]float64{rep.Language: 100}
	}

	if entries, ok := facet(c.logger, full, "tree", func() ([]types.TreeEntry, error) {
		return c.client.Tree(ctx, owner, repo, rep.DefaultBranch)
	}); ok {
		m.HasStandardDirs = hasStandardDirs(entries)
	}

	openIssues, _ := facet(c.logger, full, "open_issues", func() ([]types.Issue, error) {
		return c.client.Issues(ctx, owner, repo, "open")
	})
	closedIssues, _ := facet(c.logger, full, "closed_issues", func() ([]types.Issue, error) {
		return c.client.Issues(ctx, owner, repo, "closed")
	})
	m.OpenIssues = len(openIssues)
	m.ClosedIssues = len(closedIssues)
	for _, i := range openIssues {
		m.IssueCommentsTotal += i.Comments
	}
	for _, i := range closedIssues {
		m.IssueCommentsTotal += i.Comments
	}
	if total := m.OpenIssues + m.ClosedIssues; total > 0 {
		m.IssueCommentsAvg = float64(m.IssueCommentsTotal) / float64(total)
	}

	if prs, ok := facet(c.logger, full, "pull_requests", func() ([]types.PullRequest, error) {
		return c.client.PullRequests(ctx, owner, repo, "all")
	}); ok {
		m.TotalPRs = len(prs)
		for _, pr := range prs {
			if pr.Merged {
				m.MergedPRs++
			}
			m.PRCommentsTotal += pr.Comments
		}
	}
	if m.MergedPRs > 0 {
		m.PRCommentDensity = float64(m.IssueCommentsTotal+m.PRCommentsTotal) / float64(m.MergedPRs)
	}

	if releases, ok := facet(c.logger, full, "releases", func() ([]types.Release, error) {
		return c.client.Releases(ctx, owner, repo)
	}); ok {
		m.ReleaseCount = len(releases)
		yearAgo := c.now().AddDate(-1, 0, 0)
		for _, r := range releases {
			if r.PublishedAt.After(yearAgo) {
				m.ReleasesLastYear++
			}
		}
	}

	if branches, ok := facet(c.logger, full, "branches", func() ([]types.Branch, error) {
		return c.client.Branches(ctx, owner, repo)
	}); ok {
		for _, b := range branches {
			if b.Protected {
				m.ProtectedBranches++
			}
		}
	}

	c.deriveTemporal(m)
	return m, nil
}

// deriveTemporal computes the age-based fields once, at collection time,
// so scoring the same record always yields the same result.
func (c *Collector) deriveTemporal(m *types.RepoMetrics) {
	now := c.now()
	if !m.CreatedAt.IsZero() {
		m.AgeInDays = int(now.Sub(m.CreatedAt).Hours() / 24)
	}
	if !m.UpdatedAt.IsZero() {
		m.DaysSinceUpdate = int(now.Sub(m.UpdatedAt).Hours() / 24)
	}
	years := float64(m.AgeInDays-m.DaysSinceUpdate) / 365
	if years < 0 {
		years = 0
	}
	m.MaintainedForYears = years
}

func languageDistribution(langs map[string]int) map[string]float64 {
	total := 0
	for _, bytes := range langs {
		total += bytes
	}
	if total == 0 {
		return nil
	}
	dist := make(map[string]float64, len(langs))
	for lang, bytes := range langs {
		dist[lang] = round1(float64(bytes) / float64(total) * 100)
	}
	return dist
}

func hasStandardDirs(entries []types.TreeEntry) bool {
	found := 0
	for _, e := range entries {
		if e.Type != "tree" {
			continue
		}
		if standardDirs[strings.ToLower(path.Base(e.Path))] {
			found++
		}
	}
	return found >= 2
}
