package evaluation

// tier maps a threshold to the points awarded and the judgement label shown
// in the score details. Tables are ordered from the most demanding threshold
// down, so the first match wins.
type tier struct {
	threshold float64
	points    float64
	label     string
}

// floorTier returns the first tier whose threshold the value meets or
// exceeds, with the fallback applied when no tier matches.
func floorTier(tiers []tier, value float64, fallback string) (float64, string) {
	for _, t := range tiers {
		if value >= t.threshold {
			return t.points, t.label
		}
	}
	return 0, fallback
}

// ceilTier returns the first tier whose threshold the value stays at or
// below. Used for staleness measures where smaller is better.
func ceilTier(tiers []tier, value float64, fallback string) (float64, string) {
	for _, t := range tiers {
		if value <= t.threshold {
			return t.points, t.label
		}
	}
	return 0, fallback
}

// ltTier returns the first tier the value is strictly below. Used for
// ratio bands with exclusive upper bounds.
func ltTier(tiers []tier, value float64, fallback string) (float64, string) {
	for _, t := range tiers {
		if value < t.threshold {
			return t.points, t.label
		}
	}
	return 0, fallback
}

// Code quality dimension.
var (
	qualityReleaseTiers = []tier{
		{6, 5, "disciplined"},
		{2, 3, "basic"},
		{1, 1, "minimal"},
	}
	qualityFreshnessTiers = []tier{
		{30, 2.5, "actively maintained"},
		{90, 1.5, "regularly maintained"},
		{180, 0.5, "occasionally maintained"},
	}
)

// Activity dimension.
var (
	activityReleaseTiers = []tier{
		{6, 12, "frequent (6+/year)"},
		{4, 10, "steady (4-5/year)"},
		{2, 7, "moderate (2-3/year)"},
		{1, 4, "sparse (1/year)"},
	}
	activityFreshnessTiers = []tier{
		{30, 15, "continuously active"},
		{90, 12, "regularly maintained"},
		{180, 8, "slowing down"},
		{365, 4, "stalled"},
	}
	openIssueRatioTiers = []tier{
		{0.01, 4.4, "very good (few open issues)"},
		{0.05, 3.0, "good (moderate)"},
		{0.15, 1.5, "fair (quite a few)"},
	}
)

// Community health dimension.
var (
	issueDiscussionTiers = []tier{
		{3, 5, "active"},
		{1, 3, "moderate"},
	}
	projectAgeTiers = []tier{
		{3, 2, "mature"},
		{1, 1, "developing"},
	}
)

// Rating bands shared by rating labels and recommendations, best first.
type ratingBand struct {
	minScore       float64
	label          string
	recommendation string
}

var ratingBands = []ratingBand{
	{85, "A+ (Excellent)", "Highly recommended. A high-quality, actively maintained project with a healthy community and responsive maintainers. Safe for production use and a good example to learn from."},
	{75, "A (Great)", "Recommended. A well-maintained project with solid code quality and community support. Suitable for production, but keep an eye on its release activity."},
	{65, "B+ (Good)", "Usable. The project is decent overall but has room to improve in documentation, activity or community size. Test the features you rely on thoroughly."},
	{55, "B (Fair)", "Use with care. The project has practical value but shows gaps in maintenance, documentation or community support. Prepare a risk assessment and a fallback."},
	{45, "C (Below Average)", "Needs evaluation. The project shows clear maintenance issues or other risk factors. Avoid it for critical workloads unless you can support it yourself."},
	{0, "D (Poor)", "Not recommended. The project has problems across multiple dimensions and may be difficult to maintain. Avoid production use."},
}

func ratingFor(score float64) ratingBand {
	for _, b := range ratingBands {
		if score >= b.minScore {
			return b
		}
	}
	return ratingBands[len(ratingBands)-1]
}
