// Package render turns evaluation results into human-readable output:
// a markdown score card, a brief chat-sized report and a detailed plain
// report with the full scoring breakdown.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

// Detail keys are printed in scoring order; maps are unordered, so the
// order lives here.
var (
	codeQualityOrder = []string{
		"readme", "license", "contributing", "code_of_conduct",
		"release_management", "last_update", "branch_protection",
		"primary_language", "language_diversity", "code_structure",
	}
	activityOrder = []string{
		"release_frequency", "project_freshness",
		"issue_close_rate", "pr_merge_rate", "open_issues_health",
	}
	communityOrder = []string{
		"stars", "forks", "contributors",
		"issue_discussion", "pr_review",
		"project_age", "star_fork_ratio", "maintained",
	}
	keyMetricLabels = []struct{ label, key string }{
		{"Stars", "stars"},
		{"Forks", "forks"},
		{"Contributors", "contributors"},
		{"Open issues", "open_issues"},
		{"Releases", "release_count"},
		{"Primary language", "primary_language"},
		{"Project age (years)", "project_age_years"},
		{"Last update", "last_update"},
	}
)

// MarkdownCard renders the evaluation as a markdown score card.
func MarkdownCard(ev *types.Evaluation) string {
	var b strings.Builder

	b.WriteString("# GitHub Repository Evaluation\n\n")
	fmt.Fprintf(&b, "## Overall score: **%.1f/100** | Rating: **%s**\n\n", ev.TotalScore, ev.Rating)
	b.WriteString("---\n\n")

	b.WriteString("## Dimension scores\n\n")
	writeDimension(&b, "Code quality", ev.CodeQuality, codeQualityOrder)
	writeDimension(&b, "Activity", ev.Activity, activityOrder)
	writeDimension(&b, "Community health", ev.CommunityHealth, communityOrder)

	b.WriteString("## Key metrics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	for _, km := range keyMetricLabels {
		if v, ok := ev.KeyMetrics[km.key]; ok {
			fmt.Fprintf(&b, "| %s | %s |\n", km.label, v)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	if ev.Summary != "" {
		b.WriteString(ev.Summary + "\n\n")
	}

	if len(ev.Strengths) > 0 {
		b.WriteString("### Strengths\n\n")
		for _, s := range ev.Strengths {
			b.WriteString("- " + s + "\n")
		}
		b.WriteString("\n")
	}
	if len(ev.Weaknesses) > 0 {
		b.WriteString("### Areas to improve\n\n")
		for _, w := range ev.Weaknesses {
			b.WriteString("- " + w + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("### Recommendation\n\n")
	b.WriteString(ev.Recommendation + "\n\n")

	b.WriteString("---\n")
	fmt.Fprintf(&b, "**Evaluated at**: %s UTC\n", ev.EvaluatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Repository**: [%s](%s)\n", ev.RepoFullName, ev.RepoURL)
	b.WriteString("**Data source**: GitHub API\n")

	return b.String()
}

// BriefReport renders a compact report, truncated to stay chat-friendly.
func BriefReport(ev *types.Evaluation) string {
	const maxLen = 1000

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", ev.RepoFullName)
	fmt.Fprintf(&b, "Score: %.1f/100 | Rating: %s\n\n", ev.TotalScore, ev.Rating)

	b.WriteString("Dimensions:\n")
	fmt.Fprintf(&b, "- Code quality: %.1f/%.0f\n", ev.CodeQuality.Score, ev.CodeQuality.MaxScore)
	fmt.Fprintf(&b, "- Activity: %.1f/%.0f\n", ev.Activity.Score, ev.Activity.MaxScore)
	fmt.Fprintf(&b, "- Community health: %.1f/%.0f\n", ev.CommunityHealth.Score, ev.CommunityHealth.MaxScore)

	if len(ev.Strengths) > 0 {
		b.WriteString("\nStrengths:\n")
		for _, s := range firstN(ev.Strengths, 2) {
			b.WriteString("- " + s + "\n")
		}
	}
	if len(ev.Weaknesses) > 0 {
		b.WriteString("\nWeaknesses:\n")
		for _, w := range firstN(ev.Weaknesses, 2) {
			b.WriteString("- " + w + "\n")
		}
	}

	fmt.Fprintf(&b, "\n%s\n", ev.Recommendation)

	report := b.String()
	if len(report) > maxLen {
		report = report[:maxLen] + "..."
	}
	return report
}

// DetailedReport renders a plain-text report including the raw metric
// values behind every judgement, for readers who want to audit the score.
func DetailedReport(ev *types.Evaluation, breakdown types.ScoringBreakdown) string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	b.WriteString(rule + "\n")
	b.WriteString("GitHub Repository Evaluation Report\n")
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Repository: %s\n", ev.RepoFullName)
	fmt.Fprintf(&b, "Overall score: %.1f/100 (%s, confidence: %s)\n\n", ev.TotalScore, ev.Rating, ev.Confidence)

	writeBreakdownSection(&b, "Code quality", breakdown.CodeQuality, codeQualityOrder)
	writeBreakdownSection(&b, "Activity", breakdown.Activity, activityOrder)
	writeBreakdownSection(&b, "Community health", breakdown.CommunityHealth, communityOrder)

	b.WriteString("Summary\n")
	b.WriteString(strings.Repeat("-", 70) + "\n")
	b.WriteString(ev.Summary + "\n\n")

	if len(ev.Strengths) > 0 {
		b.WriteString("Strengths:\n")
		for _, s := range ev.Strengths {
			b.WriteString("  + " + s + "\n")
		}
		b.WriteString("\n")
	}
	if len(ev.Weaknesses) > 0 {
		b.WriteString("Weaknesses:\n")
		for _, w := range ev.Weaknesses {
			b.WriteString("  - " + w + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Recommendation:\n")
	b.WriteString(ev.Recommendation + "\n\n")

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Evaluated at %s UTC from GitHub API data.\n", ev.EvaluatedAt.Format("2006-01-02 15:04:05"))

	return b.String()
}

func writeDimension(b *strings.Builder, title string, d types.DimensionScore, order []string) {
	fmt.Fprintf(b, "### %s: %.1f/%.0f\n\n", title, d.Score, d.MaxScore)
	for _, key := range orderedKeys(d.Details, order) {
		fmt.Fprintf(b, "- **%s**: %s\n", key, d.Details[key])
	}
	b.WriteString("\n")
}

func writeBreakdownSection(b *strings.Builder, title string, d types.DimensionBreakdown, order []string) {
	fmt.Fprintf(b, "%s: %.1f/%.0f (%.1f%%)\n", title, d.TotalScore, d.MaxScore, d.Percentage)
	b.WriteString(strings.Repeat("-", 70) + "\n")
	for _, key := range orderedKeys(d.Details, order) {
		fmt.Fprintf(b, "  %-22s %s\n", key+":", d.Details[key])
	}
	b.WriteString("  raw:\n")
	for _, key := range sortedKeys(d.RawMetrics) {
		fmt.Fprintf(b, "    %-20s %v\n", key+":", d.RawMetrics[key])
	}
	b.WriteString("\n")
}

// orderedKeys returns the known keys in display order, then any remaining
// keys alphabetically.
func orderedKeys(details map[string]string, order []string) []string {
	keys := make([]string, 0, len(details))
	seen := make(map[string]bool, len(details))
	for _, k := range order {
		if _, ok := details[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range details {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
