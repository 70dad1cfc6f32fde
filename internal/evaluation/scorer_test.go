package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

// healthyMetrics is a well-run project: complete docs, frequent releases,
// recent activity, responsive maintainers.
func healthyMetrics() *types.RepoMetrics {
	return &types.RepoMetrics{
		FullName:           "acme/rocket",
		HasReadme:          true,
		ReadmeLength:       1200,
		HasLicense:         true,
		LicenseName:        "MIT License",
		HasContributing:    true,
		HasCodeOfConduct:   true,
		HasStandardDirs:    true,
		PrimaryLanguage:    "Go",
		LanguageCount:      3,
		ReleaseCount:       40,
		ReleasesLastYear:   8,
		ProtectedBranches:  5,
		OpenIssues:         10,
		ClosedIssues:       190,
		IssueCommentsTotal: 700,
		IssueCommentsAvg:   3.5,
		TotalPRs:           100,
		MergedPRs:          90,
		PRCommentsTotal:    200,
		PRCommentDensity:   10,
		Stars:              5000,
		Forks:              600,
		Contributors:       120,
		AgeInDays:          365 * 5,
		DaysSinceUpdate:    5,
		MaintainedForYears: 4.9,
	}
}

func TestCodeQualityFullMarks(t *testing.T) {
	s := NewScorer()
	score := s.CodeQuality(healthyMetrics())

	assert.InDelta(t, 30.0, score.Score, 0.01)
	assert.Equal(t, float64(30), score.MaxScore)
	assert.InDelta(t, 100.0, score.Percentage, 0.01)
	assert.Equal(t, "high", score.Confidence)
	assert.Equal(t, "excellent", score.Details["readme"])
	assert.Equal(t, "clear (standard directories)", score.Details["code_structure"])
}

func TestCodeQualityShortReadmeScoresLess(t *testing.T) {
	s := NewScorer()
	m := healthyMetrics()
	m.ReadmeLength = 200

	score := s.CodeQuality(m)

	assert.InDelta(t, 28.0, score.Score, 0.01)
	assert.Equal(t, "good", score.Details["readme"])
}

func TestCodeQualityEmptyRepository(t *testing.T) {
	s := NewScorer()
	m := &types.RepoMetrics{DaysSinceUpdate: 400}

	score := s.CodeQuality(m)

	assert.Zero(t, score.Score)
	assert.Equal(t, "missing", score.Details["readme"])
	assert.Equal(t, "no formal releases", score.Details["release_management"])
	assert.Equal(t, "not detected", score.Details["primary_language"])
}

func TestCodeQualityLanguageDiversityBands(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name      string
		count     int
		wantLabel string
	}{
		{"focused", 3, "focused"},
		{"upper edge of focused", 5, "focused"},
		{"acceptable", 8, "acceptable"},
		{"fragmented", 11, "fragmented"},
		{"none detected", 0, "not detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := healthyMetrics()
			m.LanguageCount = tt.count
			score := s.CodeQuality(m)
			assert.Equal(t, tt.wantLabel, score.Details["language_diversity"])
		})
	}
}

func TestActivityFullReleaseAndFreshness(t *testing.T) {
	s := NewScorer()
	m := healthyMetrics()
	// Isolate release cadence and freshness: no issues, no PRs, no stars.
	m.OpenIssues = 0
	m.ClosedIssues = 0
	m.TotalPRs = 0
	m.MergedPRs = 0
	m.Stars = 0

	score := s.Activity(m)

	// 12 (cadence) + 15 (freshness) + 4.4 (zero-star repo with no backlog).
	assert.InDelta(t, 31.4, score.Score, 0.01)
	assert.Equal(t, "no issues", score.Details["issue_close_rate"])
	assert.Equal(t, "no pull requests", score.Details["pr_merge_rate"])
}

func TestActivityCloseAndMergeRates(t *testing.T) {
	s := NewScorer()
	m := &types.RepoMetrics{
		DaysSinceUpdate: 400,
		OpenIssues:      50,
		ClosedIssues:    50,
		TotalPRs:        10,
		MergedPRs:       10,
		Stars:           10000,
	}

	score := s.Activity(m)

	// 0.5·4.3 + 1.0·4.3 + 3.0 (open-issue ratio 0.005.. is < 0.01? 50/10000
	// = 0.005 → 4.4).
	assert.InDelta(t, 0.5*4.3+4.3+4.4, score.Score, 0.05)
	assert.Equal(t, "50.0%", score.Details["issue_close_rate"])
	assert.Equal(t, "100.0%", score.Details["pr_merge_rate"])
	assert.Equal(t, "very good (few open issues)", score.Details["open_issues_health"])
}

func TestActivityOpenIssueRatioBands(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name       string
		openIssues int
		stars      int
		wantLabel  string
	}{
		{"very good", 5, 1000, "very good (few open issues)"},
		{"good", 30, 1000, "good (moderate)"},
		{"fair", 100, 1000, "fair (quite a few)"},
		{"backlog", 200, 1000, "needs attention (backlog)"},
		{"zero stars no backlog", 0, 0, "very good (few open issues)"},
		{"zero stars with backlog", 5, 0, "needs attention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &types.RepoMetrics{
				DaysSinceUpdate: 400,
				OpenIssues:      tt.openIssues,
				Stars:           tt.stars,
			}
			score := s.Activity(m)
			assert.Equal(t, tt.wantLabel, score.Details["open_issues_health"])
		})
	}
}

func TestActivityStaleProjectScoresLow(t *testing.T) {
	s := NewScorer()
	m := &types.RepoMetrics{DaysSinceUpdate: 800}

	score := s.Activity(m)

	// Only the zero-star no-backlog credit applies.
	assert.InDelta(t, 4.4, score.Score, 0.01)
}

func TestCommunityHealthLogScaledPopularity(t *testing.T) {
	s := NewScorer()
	score := s.CommunityHealth(healthyMetrics())

	// Popularity saturates: log10(5001)·1.5 > 6, log10(601)·1.2 < 4,
	// log10(121)·1.8 < 5. Engagement and maturity are all at full credit.
	assert.Greater(t, score.Score, 25.0)
	assert.LessOrEqual(t, score.Score, 30.0)
	assert.Equal(t, "long term", score.Details["maintained"])
	assert.Contains(t, score.Details["contributors"], "active")
}

func TestCommunityHealthEmptyRepository(t *testing.T) {
	s := NewScorer()
	score := s.CommunityHealth(&types.RepoMetrics{})

	assert.Zero(t, score.Score)
	assert.Equal(t, "0 stars", score.Details["stars"])
	assert.Equal(t, "-", score.Details["star_fork_ratio"])
	assert.Equal(t, "new project", score.Details["project_age"])
}

func TestCommunityHealthStarForkRatioBands(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name      string
		stars     int
		forks     int
		wantLabel string
	}{
		{"healthy", 1000, 100, "10.0 (healthy)"},
		{"acceptable low", 200, 100, "2.0 (acceptable)"},
		{"acceptable high", 1800, 100, "18.0 (acceptable)"},
		{"outlier", 5000, 100, "50.0"},
		{"no forks", 50, 0, "no forks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := s.CommunityHealth(&types.RepoMetrics{Stars: tt.stars, Forks: tt.forks})
			assert.Equal(t, tt.wantLabel, score.Details["star_fork_ratio"])
		})
	}
}

func TestScoreTotalWithinBounds(t *testing.T) {
	s := NewScorer()

	records := []*types.RepoMetrics{
		healthyMetrics(),
		{},
		{DaysSinceUpdate: 10000, OpenIssues: 100000, Stars: 1},
		{Stars: 1 << 30, Forks: 1 << 28, Contributors: 1 << 20, ReleasesLastYear: 100},
	}

	for _, m := range records {
		scores := s.Score(m)
		assert.GreaterOrEqual(t, scores.CodeQuality.Score, 0.0)
		assert.LessOrEqual(t, scores.CodeQuality.Score, 30.0)
		assert.GreaterOrEqual(t, scores.Activity.Score, 0.0)
		assert.LessOrEqual(t, scores.Activity.Score, 40.0)
		assert.GreaterOrEqual(t, scores.CommunityHealth.Score, 0.0)
		assert.LessOrEqual(t, scores.CommunityHealth.Score, 30.0)
		assert.LessOrEqual(t, scores.Total(), 100.0)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer()
	m := healthyMetrics()

	first := s.Score(m)
	second := s.Score(m)

	assert.Equal(t, first, second)
}

func TestRatingBands(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		score float64
		want  string
	}{
		{92, "A+ (Excellent)"},
		{85, "A+ (Excellent)"},
		{84.9, "A (Great)"},
		{75, "A (Great)"},
		{65, "B+ (Good)"},
		{55, "B (Fair)"},
		{45, "C (Below Average)"},
		{44.9, "D (Poor)"},
		{0, "D (Poor)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Rating(tt.score), "score %.1f", tt.score)
	}
}

func TestRecommendationMatchesRatingBand(t *testing.T) {
	s := NewScorer()

	require.NotEmpty(t, s.Recommendation(90))
	assert.NotEqual(t, s.Recommendation(90), s.Recommendation(40))
	// Same band, same recommendation.
	assert.Equal(t, s.Recommendation(86), s.Recommendation(99))
}

func TestStrengthsAndWeaknesses(t *testing.T) {
	s := NewScorer()

	t.Run("healthy project collects strengths", func(t *testing.T) {
		m := healthyMetrics()
		scores := s.Score(m)
		strengths, weaknesses := strengthsAndWeaknesses(m, scores)

		assert.NotEmpty(t, strengths)
		assert.Empty(t, weaknesses)
	})

	t.Run("neglected project collects weaknesses", func(t *testing.T) {
		m := &types.RepoMetrics{
			DaysSinceUpdate: 700,
			OpenIssues:      300,
			ClosedIssues:    20,
		}
		scores := s.Score(m)
		strengths, weaknesses := strengthsAndWeaknesses(m, scores)

		assert.Empty(t, strengths)
		assert.Contains(t, weaknesses, "Documentation or licensing is incomplete")
		assert.Contains(t, weaknesses, "Large open-issue backlog; issue triage may need attention")
		assert.Contains(t, weaknesses, "README may lack detail")
	})

	t.Run("checks are independent", func(t *testing.T) {
		// High stars but stale: both lists populated.
		m := &types.RepoMetrics{
			Stars:           5000,
			DaysSinceUpdate: 700,
		}
		scores := s.Score(m)
		strengths, weaknesses := strengthsAndWeaknesses(m, scores)

		assert.Contains(t, strengths, "Widely starred, indicating strong user approval")
		assert.NotEmpty(t, weaknesses)
	})
}

func TestBreakdownMirrorsScores(t *testing.T) {
	s := NewScorer()
	m := healthyMetrics()
	scores := s.Score(m)

	breakdown := s.Breakdown(m, scores)

	assert.Equal(t, scores.CodeQuality.Score, breakdown.CodeQuality.TotalScore)
	assert.Equal(t, scores.Activity.Score, breakdown.Activity.TotalScore)
	assert.Equal(t, scores.CommunityHealth.Score, breakdown.CommunityHealth.TotalScore)
	assert.Equal(t, scores.Total(), breakdown.Summary.TotalScore)
	assert.Equal(t, float64(100), breakdown.Summary.MaxScore)
	assert.Equal(t, s.Rating(scores.Total()), breakdown.Summary.Rating)

	assert.Equal(t, true, breakdown.CodeQuality.RawMetrics["has_readme"])
	assert.Equal(t, 90, breakdown.Activity.RawMetrics["merged_prs"])
	assert.Equal(t, 5000, breakdown.CommunityHealth.RawMetrics["stars"])
}

func TestBreakdownStarForkRatioWithoutForks(t *testing.T) {
	s := NewScorer()
	m := &types.RepoMetrics{Stars: 10}
	breakdown := s.Breakdown(m, s.Score(m))

	assert.Equal(t, "N/A", breakdown.CommunityHealth.RawMetrics["star_fork_ratio"])
}
