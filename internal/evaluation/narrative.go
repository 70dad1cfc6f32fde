package evaluation

import (
	"fmt"
	"strings"

	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

// strengthsAndWeaknesses derives the ordered strength and weakness lists.
// Each check is independent; a repository can trip both lists.
func strengthsAndWeaknesses(m *types.RepoMetrics, scores Scores) (strengths, weaknesses []string) {
	if scores.CodeQuality.Score >= 25 {
		strengths = append(strengths, "Well documented and easy to get started with")
	}
	if scores.CodeQuality.Score < 15 {
		weaknesses = append(weaknesses, "Documentation or licensing is incomplete")
	}

	if scores.Activity.Score >= 35 {
		strengths = append(strengths, "Continuously maintained with frequent updates")
	}
	if scores.Activity.Score < 20 {
		weaknesses = append(weaknesses, "Infrequent updates; the project may be hard to keep maintained")
	}

	if scores.CommunityHealth.Score >= 25 {
		strengths = append(strengths, "Active community with many contributors")
	}
	if m.OpenIssues > m.ClosedIssues*2 {
		weaknesses = append(weaknesses, "Large open-issue backlog; issue triage may need attention")
	}

	if m.Stars > 1000 {
		strengths = append(strengths, "Widely starred, indicating strong user approval")
	}

	if m.ReleasesLastYear >= 6 {
		strengths = append(strengths, "Active development with frequent releases")
	} else if m.ReleasesLastYear < 2 {
		weaknesses = append(weaknesses, "Few releases; maintenance may be slow")
	}

	if m.HasLicense && m.HasContributing {
		strengths = append(strengths, "Well governed, with a license and contribution guidelines")
	}

	if !m.HasReadme || m.ReadmeLength < 300 {
		weaknesses = append(weaknesses, "README may lack detail")
	}

	if float64(m.ClosedIssues)/float64(max(1, m.OpenIssues+m.ClosedIssues)) > 0.85 {
		strengths = append(strengths, "Issues are handled promptly")
	}

	return strengths, weaknesses
}

// keyMetrics builds the headline metrics mapping shown alongside the score.
func keyMetrics(m *types.RepoMetrics) map[string]string {
	lang := m.PrimaryLanguage
	if lang == "" {
		lang = "unknown"
	}
	return map[string]string{
		"stars":             fmt.Sprintf("%d", m.Stars),
		"forks":             fmt.Sprintf("%d", m.Forks),
		"contributors":      fmt.Sprintf("%d", m.Contributors),
		"open_issues":       fmt.Sprintf("%d", m.OpenIssues),
		"release_count":     fmt.Sprintf("%d", m.ReleaseCount),
		"primary_language":  lang,
		"project_age_years": fmt.Sprintf("%d", m.AgeInDays/365),
		"last_update":       m.UpdatedAt.Format("2006-01-02"),
	}
}

// summarize builds the one-paragraph narrative summary.
func summarize(m *types.RepoMetrics) string {
	var parts []string

	if m.PrimaryLanguage != "" {
		parts = append(parts, fmt.Sprintf("This is a %s project", m.PrimaryLanguage))
	} else {
		parts = append(parts, "This is an open source project")
	}

	switch {
	case m.Stars > 10000:
		parts = append(parts, "with a large following (10k+ stars)")
	case m.Stars > 1000:
		parts = append(parts, "with notable reach (1k+ stars)")
	case m.Stars > 100:
		parts = append(parts, "with community recognition (100+ stars)")
	}

	switch {
	case m.DaysSinceUpdate <= 30:
		parts = append(parts, "actively maintained (recently updated)")
	case m.ReleasesLastYear >= 4:
		parts = append(parts, "continuously maintained (regular releases)")
	default:
		parts = append(parts, "updated infrequently")
	}

	if m.Contributors >= 10 {
		parts = append(parts, "backed by a sizable contributor base")
	} else if m.Contributors > 0 {
		parts = append(parts, "with a handful of contributors")
	}

	return strings.Join(parts, ", ") + "."
}
