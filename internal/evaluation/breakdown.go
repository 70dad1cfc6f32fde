package evaluation

import (
	"math"
	"time"

	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

// Breakdown expands dimension scores into a full scoring breakdown: per
// dimension, the judgements plus the raw metric values each judgement was
// derived from.
func (s *Scorer) Breakdown(m *types.RepoMetrics, scores Scores) types.ScoringBreakdown {
	total := scores.Total()

	issueCloseRate := 0.0
	if total := m.OpenIssues + m.ClosedIssues; total > 0 {
		issueCloseRate = round1(float64(m.ClosedIssues) / float64(total) * 100)
	}
	prMergeRate := 0.0
	if m.TotalPRs > 0 {
		prMergeRate = round1(float64(m.MergedPRs) / float64(m.TotalPRs) * 100)
	}
	var starForkRatio any = "N/A"
	if m.Forks > 0 {
		starForkRatio = round2(float64(m.Stars) / float64(m.Forks))
	}

	return types.ScoringBreakdown{
		CodeQuality: dimensionBreakdown(scores.CodeQuality, map[string]any{
			"has_readme":          m.HasReadme,
			"readme_length":       m.ReadmeLength,
			"has_license":         m.HasLicense,
			"has_contributing":    m.HasContributing,
			"has_code_of_conduct": m.HasCodeOfConduct,
			"has_standard_dirs":   m.HasStandardDirs,
			"primary_language":    m.PrimaryLanguage,
			"language_count":      m.LanguageCount,
			"release_count":       m.ReleaseCount,
			"protected_branches":  m.ProtectedBranches,
		}),
		Activity: dimensionBreakdown(scores.Activity, map[string]any{
			"releases_last_year": m.ReleasesLastYear,
			"updated_at":         m.UpdatedAt.Format(time.RFC3339),
			"days_since_update":  m.DaysSinceUpdate,
			"open_issues":        m.OpenIssues,
			"closed_issues":      m.ClosedIssues,
			"issue_close_rate":   issueCloseRate,
			"total_prs":          m.TotalPRs,
			"merged_prs":         m.MergedPRs,
			"pr_merge_rate":      prMergeRate,
		}),
		CommunityHealth: dimensionBreakdown(scores.CommunityHealth, map[string]any{
			"stars":                m.Stars,
			"forks":                m.Forks,
			"contributors":         m.Contributors,
			"age_in_days":          m.AgeInDays,
			"age_in_years":         round1(float64(m.AgeInDays) / 365),
			"maintained_for_years": round1(m.MaintainedForYears),
			"issue_comments_avg":   round2(m.IssueCommentsAvg),
			"pr_comment_density":   round2(m.PRCommentDensity),
			"star_fork_ratio":      starForkRatio,
		}),
		Summary: types.BreakdownSummary{
			TotalScore: total,
			MaxScore:   100,
			Rating:     s.Rating(total),
			Confidence: confidenceHigh,
		},
	}
}

func dimensionBreakdown(score types.DimensionScore, raw map[string]any) types.DimensionBreakdown {
	return types.DimensionBreakdown{
		TotalScore: score.Score,
		MaxScore:   score.MaxScore,
		Percentage: score.Percentage,
		Confidence: score.Confidence,
		Details:    score.Details,
		RawMetrics: raw,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
