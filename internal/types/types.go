package types

import "time"

// Repository is the mandatory metadata facet. Evaluation cannot proceed
// without it.
type Repository struct {
	Owner         string    `json:"owner"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	DefaultBranch string    `json:"default_branch"`
	Language      string    `json:"language"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	OpenIssues    int       `json:"open_issues"`
	Contributors  int       `json:"contributors"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Readme holds the decoded README content.
type Readme struct {
	Content string `json:"content"`
}

// License describes the repository license, when one is detected.
type License struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// CommunityProfile reports which community-health files exist.
type CommunityProfile struct {
	HasContributing  bool `json:"has_contributing"`
	HasCodeOfConduct bool `json:"has_code_of_conduct"`
}

// TreeEntry is a single entry of the repository tree. Type is "tree" for
// directories and "blob" for files, as reported by the API.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Issue is one issue from the issues facet (pull requests excluded).
type Issue struct {
	Number   int    `json:"number"`
	State    string `json:"state"`
	Comments int    `json:"comments"`
}

// PullRequest is one entry from the pull-requests facet.
type PullRequest struct {
	Number   int    `json:"number"`
	State    string `json:"state"`
	Merged   bool   `json:"merged"`
	Comments int    `json:"comments"`
}

// Release is one published release.
type Release struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
}

// Branch is one repository branch.
type Branch struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
}

// RepoMetrics is the flat metrics record produced by the collector and
// consumed by the scorer. Every numeric field defaults to zero and every
// boolean to false when the corresponding facet could not be fetched, so
// the scorer never has to distinguish "missing" from "worst case".
type RepoMetrics struct {
	Owner       string    `json:"owner"`
	Repo        string    `json:"repo"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Documentation
	HasReadme        bool   `json:"has_readme"`
	ReadmeLength     int    `json:"readme_length"`
	HasLicense       bool   `json:"has_license"`
	LicenseName      string `json:"license_name"`
	HasContributing  bool   `json:"has_contributing"`
	HasCodeOfConduct bool   `json:"has_code_of_conduct"`
	HasStandardDirs  bool   `json:"has_standard_dirs"`

	// Organization
	PrimaryLanguage      string             `json:"primary_language"`
	LanguageCount        int                `json:"language_count"`
	LanguageDistribution map[string]float64 `json:"language_distribution"`

	// Maintenance
	ReleaseCount      int `json:"release_count"`
	ReleasesLastYear  int `json:"releases_last_year"`
	ProtectedBranches int `json:"protected_branches"`

	// Issue / PR throughput
	OpenIssues         int     `json:"open_issues"`
	ClosedIssues       int     `json:"closed_issues"`
	IssueCommentsTotal int     `json:"issue_comments_total"`
	IssueCommentsAvg   float64 `json:"issue_comments_avg"`
	TotalPRs           int     `json:"total_prs"`
	MergedPRs          int     `json:"merged_prs"`
	PRCommentsTotal    int     `json:"pr_comments_total"`
	PRCommentDensity   float64 `json:"pr_comment_density"`

	// Community
	Stars        int `json:"stars"`
	Forks        int `json:"forks"`
	Contributors int `json:"contributors"`

	// Derived temporal fields, computed once at collection time so the
	// scorer stays pure.
	AgeInDays          int     `json:"age_in_days"`
	DaysSinceUpdate    int     `json:"days_since_update"`
	MaintainedForYears float64 `json:"maintained_for_years"`
}

// DimensionScore is the scored result of one evaluation dimension.
type DimensionScore struct {
	Score      float64           `json:"score"`
	MaxScore   float64           `json:"max_score"`
	Percentage float64           `json:"percentage"`
	Confidence string            `json:"confidence"`
	Details    map[string]string `json:"details"`
}

// Evaluation is the final assembled evaluation result. Immutable once
// constructed; the cache holds the only shared copy per repository.
type Evaluation struct {
	RepoFullName string    `json:"repo_full_name"`
	RepoURL      string    `json:"repo_url"`
	EvaluatedAt  time.Time `json:"evaluated_at"`

	TotalScore float64 `json:"total_score"`
	Confidence string  `json:"confidence"`
	Rating     string  `json:"rating"`

	CodeQuality     DimensionScore `json:"code_quality"`
	Activity        DimensionScore `json:"activity"`
	CommunityHealth DimensionScore `json:"community_health"`

	KeyMetrics     map[string]string `json:"key_metrics"`
	Summary        string            `json:"summary"`
	Strengths      []string          `json:"strengths"`
	Weaknesses     []string          `json:"weaknesses"`
	Recommendation string            `json:"recommendation"`
}

// DimensionBreakdown exposes one dimension's scoring internals to the
// renderer: totals, per-sub-metric judgements and the raw inputs.
type DimensionBreakdown struct {
	TotalScore float64           `json:"total_score"`
	MaxScore   float64           `json:"max_score"`
	Percentage float64           `json:"percentage"`
	Confidence string            `json:"confidence"`
	Details    map[string]string `json:"details"`
	RawMetrics map[string]any    `json:"raw_metrics"`
}

// BreakdownSummary is the top-level entry of a scoring breakdown.
type BreakdownSummary struct {
	TotalScore float64 `json:"total_score"`
	MaxScore   float64 `json:"max_score"`
	Rating     string  `json:"rating"`
	Confidence string  `json:"confidence"`
}

// ScoringBreakdown maps each dimension to its breakdown, plus a combined
// summary entry.
type ScoringBreakdown struct {
	CodeQuality     DimensionBreakdown `json:"code_quality"`
	Activity        DimensionBreakdown `json:"activity"`
	CommunityHealth DimensionBreakdown `json:"community_health"`
	Summary         BreakdownSummary   `json:"summary"`
}

// EvaluationCard bundles every rendering of one evaluation: markdown,
// plain-text report, the structured result, the raw metrics it was scored
// from and the full scoring breakdown.
type EvaluationCard struct {
	Markdown  string           `json:"markdown"`
	PlainText string           `json:"plain_text"`
	Result    *Evaluation      `json:"result"`
	Raw       *RepoMetrics     `json:"raw_metrics"`
	Breakdown ScoringBreakdown `json:"scoring_breakdown"`
}

// EvaluateRequest is the request body of the evaluate endpoint.
type EvaluateRequest struct {
	URL string `json:"url" binding:"required"`
}
