package evaluation

import (
	"context"
	"time"

	"github.com/liugu2023/nekro-github-analyzer/internal/cache"
	"github.com/liugu2023/nekro-github-analyzer/internal/monitoring"
	"github.com/liugu2023/nekro-github-analyzer/internal/render"
	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

// Evaluator composes collection, scoring and caching into the evaluate
// protocol: cache lookup, then collect, score, assemble, store. Collection
// and scoring are idempotent, so concurrent misses for the same key at
// worst duplicate work; the cache keeps the single authoritative copy.
type Evaluator struct {
	collector *Collector
	scorer    *Scorer
	cache     *cache.Cache[*types.Evaluation]
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics
}

// NewEvaluator wires an Evaluator. The cache is injected so callers control
// its bounds and lifetime; metrics may be nil.
func NewEvaluator(client Client, resultCache *cache.Cache[*types.Evaluation], logger *monitoring.Logger, metrics *monitoring.Metrics) *Evaluator {
	if logger == nil {
		logger = monitoring.NewLogger()
	}
	return &Evaluator{
		collector: NewCollector(client, logger),
		scorer:    NewScorer(),
		cache:     resultCache,
		logger:    logger,
		metrics:   metrics,
	}
}

// Evaluate returns the evaluation of owner/repo, serving from cache when a
// fresh entry exists. Cached results are shared; callers must not mutate
// them.
func (e *Evaluator) Evaluate(ctx context.Context, owner, repo string) (*types.Evaluation, error) {
	key := owner + "/" + repo
	start := time.Now()

	if ev, ok := e.cache.Get(key); ok {
		if e.metrics != nil {
			e.metrics.IncrementCacheHit()
		}
		e.logger.CacheLogger("get", key, true, e.cache.Len())
		e.logger.EvaluationLogger(key, ev.TotalScore, ev.Rating, time.Since(start), true)
		return ev, nil
	}
	if e.metrics != nil {
		e.metrics.IncrementCacheMiss()
	}
	e.logger.CacheLogger("get", key, false, e.cache.Len())

	ev, _, err := e.evaluate(ctx, owner, repo)
	if err != nil {
		if e.metrics != nil {
			e.metrics.IncrementEvaluationFailure()
		}
		return nil, err
	}

	e.cache.Set(key, ev)
	if e.metrics != nil {
		e.metrics.IncrementEvaluation()
	}
	e.logger.EvaluationLogger(key, ev.TotalScore, ev.Rating, time.Since(start), false)
	return ev, nil
}

// Card evaluates owner/repo and renders the full card: markdown, plain-text
// report, raw metrics and scoring breakdown. The card needs the raw metrics
// record, which cached results no longer carry, so it always collects
// fresh; the assembled result is still stored for subsequent Evaluate
// calls.
func (e *Evaluator) Card(ctx context.Context, owner, repo string) (*types.EvaluationCard, error) {
	start := time.Now()

	ev, m, err := e.evaluate(ctx, owner, repo)
	if err != nil {
		if e.metrics != nil {
			e.metrics.IncrementEvaluationFailure()
		}
		return nil, err
	}

	e.cache.Set(owner+"/"+repo, ev)
	if e.metrics != nil {
		e.metrics.IncrementEvaluation()
	}
	e.logger.EvaluationLogger(ev.RepoFullName, ev.TotalScore, ev.Rating, time.Since(start), false)

	breakdown := e.scorer.Breakdown(m, Scores{
		CodeQuality:     ev.CodeQuality,
		Activity:        ev.Activity,
		CommunityHealth: ev.CommunityHealth,
	})

	return &types.EvaluationCard{
		Markdown:  render.MarkdownCard(ev),
		PlainText: render.DetailedReport(ev, breakdown),
		Result:    ev,
		Raw:       m,
		Breakdown: breakdown,
	}, nil
}

// evaluate runs the collect-score-assemble pipeline without touching the
// cache.
func (e *Evaluator) evaluate(ctx context.Context, owner, repo string) (*types.Evaluation, *types.RepoMetrics, error) {
	m, err := e.collector.Collect(ctx, owner, repo)
	if err != nil {
		return nil, nil, err
	}

	scores := e.scorer.Score(m)
	total := scores.Total()
	strengths, weaknesses := strengthsAndWeaknesses(m, scores)

	ev := &types.Evaluation{
		RepoFullName:    m.FullName,
		RepoURL:         m.URL,
		EvaluatedAt:     time.Now().UTC(),
		TotalScore:      total,
		Confidence:      confidenceHigh,
		Rating:          e.scorer.Rating(total),
		CodeQuality:     scores.CodeQuality,
		Activity:        scores.Activity,
		CommunityHealth: scores.CommunityHealth,
		KeyMetrics:      keyMetrics(m),
		Summary:         summarize(m),
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendation:  e.scorer.Recommendation(total),
	}
	return ev, m, nil
}

// CacheStats reports the result cache occupancy.
func (e *Evaluator) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache drops every cached evaluation.
func (e *Evaluator) ClearCache() {
	e.cache.Clear()
}

// CleanupExpiredCache removes expired entries and reports how many were
// dropped.
func (e *Evaluator) CleanupExpiredCache() int {
	return e.cache.CleanupExpired()
}
