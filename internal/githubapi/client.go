// Package githubapi wraps the GitHub REST API behind the typed facet calls
// the collector consumes.
package githubapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	apperrors "github.com/liugu2023/nekro-github-analyzer/internal/errors"
	"github.com/liugu2023/nekro-github-analyzer/internal/monitoring"
	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

const facetPageSize = 100

// Client fetches repository facets from the GitHub API. All calls are
// throttled by a client-side rate limiter so burst evaluations stay under
// the API budget.
type Client struct {
	gh      *github.Client
	limiter *rate.Limiter
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// Options configures a Client.
type Options struct {
	Token             string
	RequestsPerSecond float64
	Burst             int
	Logger            *monitoring.Logger
	Metrics           *monitoring.Metrics
}

// New creates a Client. An empty token yields unauthenticated access with
// GitHub's lower rate limits.
func New(opts Options) *Client {
	var httpClient *http.Client
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 10
	}

	logger := opts.Logger
	if logger == nil {
		logger = monitoring.NewLogger()
	}

	return &Client{
		gh:      github.NewClient(httpClient),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Repository fetches the mandatory repository metadata, including the
// contributor count.
func (c *Client) Repository(ctx context.Context, owner, repo string) (*types.Repository, error) {
	var rep *github.Repository
	err := c.call(ctx, "repository", owner+"/"+repo, func() error {
		var err error
		rep, _, err = c.gh.Repositories.Get(ctx, owner, repo)
		return err
	})
	if err != nil {
		return nil, c.mapError("repository", owner+"/"+repo, err)
	}

	return &types.Repository{
		Owner:         rep.GetOwner().GetLogin(),
		Name:          rep.GetName(),
		FullName:      rep.GetFullName(),
		Description:   rep.GetDescription(),
		URL:           rep.GetHTMLURL(),
		DefaultBranch: rep.GetDefaultBranch(),
		Language:      rep.GetLanguage(),
		Stars:         rep.GetStargazersCount(),
		Forks:         rep.GetForksCount(),
		OpenIssues:    rep.GetOpenIssuesCount(),
		Contributors:  c.contributorCount(ctx, owner, repo),
		CreatedAt:     rep.GetCreatedAt().Time,
		UpdatedAt:     rep.GetUpdatedAt().Time,
	}, nil
}

// contributorCount counts contributors by requesting a single-entry page
// and reading the last page number from the pagination links. A failure
// degrades to zero; the metadata call itself stays usable.
func (c *Client) contributorCount(ctx context.Context, owner, repo string) int {
	opts := &github.ListContributorsOptions{
		Anon:        "true",
		ListOptions: github.ListOptions{PerPage: 1},
	}

	var contributors []*github.Contributor
	var resp *github.Response
	err := c.call(ctx, "contributors", owner+"/"+repo, func() error {
		var err error
		contributors, resp, err = c.gh.Repositories.ListContributors(ctx, owner, repo, opts)
		return err
	})
	if err != nil {
		return 0
	}

	if resp != nil && resp.LastPage > 0 {
		return resp.LastPage
	}
	return len(contributors)
}

// Readme fetches the decoded README content.
func (c *Client) Readme(ctx context.Context, owner, repo string) (*types.Readme, error) {
	var readme *github.RepositoryContent
	err := c.call(ctx, "readme", owner+"/"+repo, func() error {
		var err error
		readme, _, err = c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
		return err
	})
	if err != nil {
		return nil, c.mapError("readme", owner+"/"+repo, err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return nil, apperrors.NewExternalAPIError("readme decode", err)
	}
	return &types.Readme{Content: content}, nil
}

// License fetches the detected repository license.
func (c *Client) License(ctx context.Context, owner, repo string) (*types.License, error) {
	var lic *github.RepositoryLicense
	err := c.call(ctx, "license", owner+"/"+repo, func() error {
		var err error
		lic, _, err = c.gh.Repositories.License(ctx, owner, repo)
		return err
	})
	if err != nil {
		return nil, c.mapError("license", owner+"/"+repo, err)
	}

	return &types.License{
		Key:  lic.GetLicense().GetKey(),
		Name: lic.GetLicense().GetName(),
	}, nil
}

// CommunityProfile fetches the community-health file inventory.
func (c *Client) CommunityProfile(ctx context.Context, owner, repo string) (*types.CommunityProfile, error) {
	var metrics *github.CommunityHealthMetrics
	err := c.call(ctx, "community_profile", owner+"/"+repo, func() error {
		var err error
		metrics, _, err = c.gh.Repositories.GetCommunityHealthMetrics(ctx, owner, repo)
		return err
	})
	if err != nil {
		return nil, c.mapError("community_profile", owner+"/"+repo, err)
	}

	files := metrics.GetFiles()
	return &types.CommunityProfile{
		HasContributing:  files != nil && files.Contributing != nil,
		HasCodeOfConduct: files != nil && files.CodeOfConduct != nil,
	}, nil
}

// Languages fetches the byte counts per language.
func (c *Client) Languages(ctx context.Context, owner, repo string) (map[string]int, error) {
	var langs map[string]int
	err := c.call(ctx, "languages", owner+"/"+repo, func() error {
		var err error
		langs, _, err = c.gh.Repositories.ListLanguages(ctx, owner, repo)
		return err
	})
	if err != nil {
		return nil, c.mapError("languages", owner+"/"+repo, err)
	}
	return langs, nil
}

// Tree fetches the repository tree of the given branch. Only top-level
// entries are requested; standard-directory detection needs no recursion.
func (c *Client) Tree(ctx context.Context, owner, repo, branch string) ([]types.TreeEntry, error) {
	if branch == "" {
		branch = "HEAD"
	}

	var tree *github.Tree
	err := c.call(ctx, "tree", owner+"/"+repo, func() error {
		var err error
		tree, _, err = c.gh.Git.GetTree(ctx, owner, repo, branch, false)
		return err
	})
	if err != nil {
		return nil, c.mapError("tree", owner+"/"+repo, err)
	}

	entries := make([]types.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, types.TreeEntry{
			Path: e.GetPath(),
			Type: e.GetType(),
		})
	}
	return entries, nil
}

// Issues fetches up to one page of issues in the given state, excluding
// pull requests (GitHub's issues endpoint reports PRs as issues).
func (c *Client) Issues(ctx context.Context, owner, repo, state string) ([]types.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: facetPageSize},
	}

	var raw []*github.Issue
	err := c.call(ctx, "issues", owner+"/"+repo, func() error {
		var err error
		raw, _, err = c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		return err
	})
	if err != nil {
		return nil, c.mapError("issues", owner+"/"+repo, err)
	}

	issues := make([]types.Issue, 0, len(raw))
	for _, i := range raw {
		if i.IsPullRequest() {
			continue
		}
		issues = append(issues, types.Issue{
			Number:   i.GetNumber(),
			State:    i.GetState(),
			Comments: i.GetComments(),
		})
	}
	return issues, nil
}

// PullRequests fetches up to one page of pull requests in the given state.
func (c *Client) PullRequests(ctx context.Context, owner, repo, state string) ([]types.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: facetPageSize},
	}

	var raw []*github.PullRequest
	err := c.call(ctx, "pull_requests", owner+"/"+repo, func() error {
		var err error
		raw, _, err = c.gh.PullRequests.List(ctx, owner, repo, opts)
		return err
	})
	if err != nil {
		return nil, c.mapError("pull_requests", owner+"/"+repo, err)
	}

	prs := make([]types.PullRequest, 0, len(raw))
	for _, pr := range raw {
		prs = append(prs, types.PullRequest{
			Number:   pr.GetNumber(),
			State:    pr.GetState(),
			Merged:   pr.MergedAt != nil,
			Comments: pr.GetComments(),
		})
	}
	return prs, nil
}

// Releases fetches up to one page of published releases, newest first.
func (c *Client) Releases(ctx context.Context, owner, repo string) ([]types.Release, error) {
	opts := &github.ListOptions{PerPage: facetPageSize}

	var raw []*github.RepositoryRelease
	err := c.call(ctx, "releases", owner+"/"+repo, func() error {
		var err error
		raw, _, err = c.gh.Repositories.ListReleases(ctx, owner, repo, opts)
		return err
	})
	if err != nil {
		return nil, c.mapError("releases", owner+"/"+repo, err)
	}

	releases := make([]types.Release, 0, len(raw))
	for _, r := range raw {
		releases = append(releases, types.Release{
			TagName:     r.GetTagName(),
			PublishedAt: r.GetPublishedAt().Time,
		})
	}
	return releases, nil
}

// Branches fetches up to one page of branches with their protection flag.
func (c *Client) Branches(ctx context.Context, owner, repo string) ([]types.Branch, error) {
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: facetPageSize},
	}

	var raw []*github.Branch
	err := c.call(ctx, "branches", owner+"/"+repo, func() error {
		var err error
		raw, _, err = c.gh.Repositories.ListBranches(ctx, owner, repo, opts)
		return err
	})
	if err != nil {
		return nil, c.mapError("branches", owner+"/"+repo, err)
	}

	branches := make([]types.Branch, 0, len(raw))
	for _, b := range raw {
		branches = append(branches, types.Branch{
			Name:      b.GetName(),
			Protected: b.GetProtected(),
		})
	}
	return branches, nil
}

// call throttles, runs and logs one upstream request.
func (c *Client) call(ctx context.Context, operation, repo string, fn func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	err := fn()
	if c.metrics != nil {
		c.metrics.IncrementGitHubCalls()
	}
	c.logger.ExternalAPILogger(operation, repo, time.Since(start), err == nil)
	return err
}

// mapError converts go-github errors into the application taxonomy: 404
// becomes not-found, everything else an external API error.
func (c *Client) mapError(operation, fullName string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError(fullName)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("github API timeout during "+operation, err)
	}

	return apperrors.NewExternalAPIError(operation, err)
}
