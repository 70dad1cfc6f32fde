package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

func sampleEvaluation() *types.Evaluation {
	return &types.Evaluation{
		RepoFullName: "acme/rocket",
		RepoURL:      "https://github.com/acme/rocket",
		EvaluatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TotalScore:   82.5,
		Confidence:   "high",
		Rating:       "A (Great)",
		CodeQuality: types.DimensionScore{
			Score: 27.5, MaxScore: 30, Percentage: 91.7, Confidence: "high",
			Details: map[string]string{"readme": "excellent", "license": "present: MIT License"},
		},
		Activity: types.DimensionScore{
			Score: 30, MaxScore: 40, Percentage: 75, Confidence: "high",
			Details: map[string]string{"release_frequency": "4/year (steady (4-5/year))"},
		},
		CommunityHealth: types.DimensionScore{
			Score: 25, MaxScore: 30, Percentage: 83.3, Confidence: "high",
			Details: map[string]string{"stars": "1200 stars"},
		},
		KeyMetrics: map[string]string{
			"stars":            "1200",
			"forks":            "150",
			"primary_language": "Go",
		},
		Summary:        "This is a Go project, with notable reach (1k+ stars), actively maintained (recently updated).",
		Strengths:      []string{"Continuously maintained with frequent updates"},
		Weaknesses:     []string{"README may lack detail"},
		Recommendation: "Recommended.",
	}
}

func TestMarkdownCard(t *testing.T) {
	card := MarkdownCard(sampleEvaluation())

	assert.Contains(t, card, "**82.5/100**")
	assert.Contains(t, card, "**A (Great)**")
	assert.Contains(t, card, "### Code quality: 27.5/30")
	assert.Contains(t, card, "### Activity: 30.0/40")
	assert.Contains(t, card, "- **readme**: excellent")
	assert.Contains(t, card, "| Stars | 1200 |")
	assert.Contains(t, card, "[acme/rocket](https://github.com/acme/rocket)")
	assert.Contains(t, card, "2025-06-01 12:00:00")
	assert.Contains(t, card, "- Continuously maintained with frequent updates")
	assert.Contains(t, card, "- README may lack detail")

	// Known detail keys render before unknown ones, in scoring order.
	readmeIdx := strings.Index(card, "**readme**")
	licenseIdx := strings.Index(card, "**license**")
	assert.Less(t, readmeIdx, licenseIdx)
}

func TestMarkdownCardOmitsEmptySections(t *testing.T) {
	ev := sampleEvaluation()
	ev.Strengths = nil
	ev.Weaknesses = nil

	card := MarkdownCard(ev)

	assert.NotContains(t, card, "### Strengths")
	assert.NotContains(t, card, "### Areas to improve")
	assert.Contains(t, card, "### Recommendation")
}

func TestBriefReportStaysWithinLimit(t *testing.T) {
	ev := sampleEvaluation()
	ev.Recommendation = strings.Repeat("very long recommendation text ", 100)

	report := BriefReport(ev)

	assert.LessOrEqual(t, len(report), 1003) // limit plus ellipsis
	assert.True(t, strings.HasSuffix(report, "..."))
}

func TestBriefReportTruncatesLists(t *testing.T) {
	ev := sampleEvaluation()
	ev.Strengths = []string{"one", "two", "three"}

	report := BriefReport(ev)

	assert.Contains(t, report, "- one")
	assert.Contains(t, report, "- two")
	assert.NotContains(t, report, "- three")
}

func TestDetailedReport(t *testing.T) {
	ev := sampleEvaluation()
	breakdown := types.ScoringBreakdown{
		CodeQuality: types.DimensionBreakdown{
			TotalScore: 27.5, MaxScore: 30, Percentage: 91.7, Confidence: "high",
			Details:    ev.CodeQuality.Details,
			RawMetrics: map[string]any{"has_readme": true, "readme_length": 1200},
		},
		Activity:        types.DimensionBreakdown{TotalScore: 30, MaxScore: 40, Percentage: 75},
		CommunityHealth: types.DimensionBreakdown{TotalScore: 25, MaxScore: 30, Percentage: 83.3},
		Summary:         types.BreakdownSummary{TotalScore: 82.5, MaxScore: 100, Rating: "A (Great)", Confidence: "high"},
	}

	report := DetailedReport(ev, breakdown)

	assert.Contains(t, report, "GitHub Repository Evaluation Report")
	assert.Contains(t, report, "Overall score: 82.5/100 (A (Great), confidence: high)")
	assert.Contains(t, report, "Code quality: 27.5/30 (91.7%)")
	assert.Contains(t, report, "has_readme:")
	assert.Contains(t, report, "readme_length:")
	assert.Contains(t, report, "Recommendation:")
}
