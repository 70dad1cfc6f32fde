package evaluation

import (
	"fmt"
	"math"

	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

// Dimension maximums. The three sum to 100.
const (
	maxCodeQuality     = 30
	maxActivity        = 40
	maxCommunityHealth = 30
)

// confidenceHigh is the only confidence level produced today: every facet
// the scorer reads is fetched deterministically. The field stays on the
// result for forward extension.
const confidenceHigh = "high"

// Scorer turns a metrics record into dimension scores. It is pure: no
// clock, no I/O, no mutation of its input, so the same record always
// scores identically.
type Scorer struct{}

// NewScorer creates a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Scores holds the three dimension scores of one evaluation.
type Scores struct {
	CodeQuality     types.DimensionScore
	Activity        types.DimensionScore
	CommunityHealth types.DimensionScore
}

// Total is the sum of the three dimension scores, in [0, 100].
func (s Scores) Total() float64 {
	return round1(s.CodeQuality.Score + s.Activity.Score + s.CommunityHealth.Score)
}

// Score evaluates all three dimensions of the metrics record.
func (s *Scorer) Score(m *types.RepoMetrics) Scores {
	return Scores{
		CodeQuality:     s.CodeQuality(m),
		Activity:        s.Activity(m),
		CommunityHealth: s.CommunityHealth(m),
	}
}

// CodeQuality scores documentation completeness, maintenance discipline and
// code organization, 0..30.
func (s *Scorer) CodeQuality(m *types.RepoMetrics) types.DimensionScore {
	score := 0.0
	details := make(map[string]string)

	// Documentation completeness (10 points).
	switch {
	case m.HasReadme && m.ReadmeLength >= 500:
		score += 5
		details["readme"] = "excellent"
	case m.HasReadme:
		score += 3
		details["readme"] = "good"
	default:
		details["readme"] = "missing"
	}

	if m.HasLicense {
		score += 2
		details["license"] = "present: " + m.LicenseName
	} else {
		details["license"] = "missing"
	}

	if m.HasContributing {
		score += 1.5
		details["contributing"] = "present"
	} else {
		details["contributing"] = "missing"
	}

	if m.HasCodeOfConduct {
		score += 1.5
		details["code_of_conduct"] = "present"
	} else {
		details["code_of_conduct"] = "missing"
	}

	// Maintenance discipline (10 points).
	points, label := floorTier(qualityReleaseTiers, float64(m.ReleasesLastYear), "no formal releases")
	score += points
	if points > 0 {
		details["release_management"] = fmt.Sprintf("%s (%d/year)", label, m.ReleasesLastYear)
	} else {
		details["release_management"] = label
	}

	points, label = ceilTier(qualityFreshnessTiers, float64(m.DaysSinceUpdate), "dormant")
	score += points
	details["last_update"] = fmt.Sprintf("%d days ago (%s)", m.DaysSinceUpdate, label)

	if m.ProtectedBranches > 0 {
		score += math.Min(2.5, float64(m.ProtectedBranches)*0.5)
		details["branch_protection"] = fmt.Sprintf("%d protected branches", m.ProtectedBranches)
	} else {
		details["branch_protection"] = "no protected branches"
	}

	// Code organization (10 points).
	if m.PrimaryLanguage != "" {
		score += 3
		details["primary_language"] = m.PrimaryLanguage
	} else {
		details["primary_language"] = "not detected"
	}

	switch {
	case m.LanguageCount >= 1 && m.LanguageCount <= 5:
		score += 4
		details["language_diversity"] = "focused"
	case m.LanguageCount > 5 && m.LanguageCount <= 10:
		score += 2
		details["language_diversity"] = "acceptable"
	case m.LanguageCount > 10:
		details["language_diversity"] = "fragmented"
	default:
		details["language_diversity"] = "not detected"
	}

	switch {
	case m.HasStandardDirs:
		score += 3
		details["code_structure"] = "clear (standard directories)"
	case m.PrimaryLanguage != "" && m.LanguageCount > 0:
		score += 1.5
		details["code_structure"] = "moderate"
	default:
		details["code_structure"] = "needs work"
	}

	return dimensionScore(score, maxCodeQuality, details)
}

// Activity scores release cadence, freshness and issue/PR responsiveness,
// 0..40.
func (s *Scorer) Activity(m *types.RepoMetrics) types.DimensionScore {
	score := 0.0
	details := make(map[string]string)

	// Release cadence (12 points).
	points, label := floorTier(activityReleaseTiers, float64(m.ReleasesLastYear), "no releases")
	score += points
	details["release_frequency"] = fmt.Sprintf("%d/year (%s)", m.ReleasesLastYear, label)

	// Freshness (15 points). The single highest-weighted activity signal.
	points, label = ceilTier(activityFreshnessTiers, float64(m.DaysSinceUpdate), "abandoned")
	score += points
	details["project_freshness"] = fmt.Sprintf("%d days since last update (%s)", m.DaysSinceUpdate, label)

	// Issue/PR responsiveness (13 points).
	if total := m.OpenIssues + m.ClosedIssues; total > 0 {
		closeRate := float64(m.ClosedIssues) / float64(total)
		score += closeRate * 4.3
		details["issue_close_rate"] = fmt.Sprintf("%.1f%%", closeRate*100)
	} else {
		details["issue_close_rate"] = "no issues"
	}

	if m.TotalPRs > 0 {
		mergeRate := float64(m.MergedPRs) / float64(m.TotalPRs)
		score += mergeRate * 4.3
		details["pr_merge_rate"] = fmt.Sprintf("%.1f%%", mergeRate*100)
	} else {
		details["pr_merge_rate"] = "no pull requests"
	}

	if m.Stars > 0 {
		ratio := float64(m.OpenIssues) / math.Max(1, float64(m.Stars))
		points, label = ltTier(openIssueRatioTiers, ratio, "needs attention (backlog)")
		score += points
		details["open_issues_health"] = label
	} else if m.OpenIssues == 0 {
		score += 4.4
		details["open_issues_health"] = "very good (few open issues)"
	} else {
		details["open_issues_health"] = "needs attention"
	}

	return dimensionScore(score, maxActivity, details)
}

// CommunityHealth scores popularity, engagement and maturity, 0..30.
func (s *Scorer) CommunityHealth(m *types.RepoMetrics) types.DimensionScore {
	score := 0.0
	details := make(map[string]string)

	// Popularity (15 points), log-scaled so giant repositories do not
	// saturate the dimension.
	if m.Stars > 0 {
		score += math.Min(6, math.Log10(float64(m.Stars)+1)*1.5)
		details["stars"] = fmt.Sprintf("%d stars", m.Stars)
	} else {
		details["stars"] = "0 stars"
	}

	if m.Forks > 0 {
		score += math.Min(4, math.Log10(float64(m.Forks)+1)*1.2)
		details["forks"] = fmt.Sprintf("%d forks", m.Forks)
	} else {
		details["forks"] = "0 forks"
	}

	if m.Contributors > 0 {
		score += math.Min(5, math.Log10(float64(m.Contributors)+1)*1.8)
		level := "small"
		if m.Contributors >= 10 {
			level = "active"
		}
		details["contributors"] = fmt.Sprintf("%d contributors (%s)", m.Contributors, level)
	} else {
		details["contributors"] = "0 contributors"
	}

	// Engagement (10 points).
	if m.OpenIssues+m.ClosedIssues > 0 {
		avg := m.IssueCommentsAvg
		points, label := floorTier(issueDiscussionTiers, avg, "")
		switch {
		case points > 0:
			score += points
			details["issue_discussion"] = fmt.Sprintf("%s (%.1f comments/issue)", label, avg)
		case avg > 0:
			score += 1
			details["issue_discussion"] = fmt.Sprintf("low (%.1f comments/issue)", avg)
		default:
			details["issue_discussion"] = "no comments"
		}
	} else {
		details["issue_discussion"] = "no issues"
	}

	if m.TotalPRs > 0 {
		mergeRate := float64(m.MergedPRs) / float64(m.TotalPRs)
		density := m.PRCommentDensity
		switch {
		case mergeRate > 0.8 && density >= 1:
			score += 5
			details["pr_review"] = fmt.Sprintf("excellent (merge rate %.0f%%, comment density %.1f)", mergeRate*100, density)
		case mergeRate > 0.6 && density >= 0.5:
			score += 3
			details["pr_review"] = fmt.Sprintf("good (merge rate %.0f%%, comment density %.1f)", mergeRate*100, density)
		case mergeRate > 0.4 || density > 0:
			score += 1
			details["pr_review"] = fmt.Sprintf("basic (merge rate %.0f%%)", mergeRate*100)
		default:
			details["pr_review"] = "needs work"
		}
	} else {
		details["pr_review"] = "no pull requests"
	}

	// Maturity (5 points).
	ageYears := float64(m.AgeInDays) / 365
	points, label := floorTier(projectAgeTiers, ageYears, "new project")
	score += points
	details["project_age"] = fmt.Sprintf("%d years (%s)", m.AgeInDays/365, label)

	if m.Forks > 0 {
		ratio := float64(m.Stars) / float64(m.Forks)
		switch {
		case ratio >= 3 && ratio <= 15:
			score += 2
			details["star_fork_ratio"] = fmt.Sprintf("%.1f (healthy)", ratio)
		case ratio >= 2 && ratio <= 20:
			score += 1
			details["star_fork_ratio"] = fmt.Sprintf("%.1f (acceptable)", ratio)
		default:
			details["star_fork_ratio"] = fmt.Sprintf("%.1f", ratio)
		}
	} else if m.Stars > 0 {
		details["star_fork_ratio"] = "no forks"
	} else {
		details["star_fork_ratio"] = "-"
	}

	if m.MaintainedForYears >= 2 {
		score += 1
		details["maintained"] = "long term"
	} else {
		details["maintained"] = "short term"
	}

	return dimensionScore(score, maxCommunityHealth, details)
}

// Rating maps a total score to its letter rating.
func (s *Scorer) Rating(totalScore float64) string {
	return ratingFor(totalScore).label
}

// Recommendation maps a total score to adoption guidance.
func (s *Scorer) Recommendation(totalScore float64) string {
	return ratingFor(totalScore).recommendation
}

// dimensionScore clamps and packages one dimension result.
func dimensionScore(score, max float64, details map[string]string) types.DimensionScore {
	score = math.Min(max, math.Max(0, score))
	return types.DimensionScore{
		Score:      round1(score),
		MaxScore:   max,
		Percentage: round1(score / max * 100),
		Confidence: confidenceHigh,
		Details:    details,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
