package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application counters for the evaluation service.
type Metrics struct {
	RequestCount       int64
	ErrorCount         int64
	CacheHits          int64
	CacheMisses        int64
	GitHubAPICalls     int64
	Evaluations        int64
	EvaluationFailures int64
	StartTime          time.Time

	responseTimes []time.Duration
	responseMu    sync.RWMutex

	requestsByStatus map[int]int64
	statusMu         sync.RWMutex
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:        time.Now(),
		responseTimes:    make([]time.Duration, 0, 1000),
		requestsByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the inbound request count.
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count.
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments the evaluation cache hit count.
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments the evaluation cache miss count.
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementGitHubCalls increments the upstream GitHub call count.
func (m *Metrics) IncrementGitHubCalls() {
	atomic.AddInt64(&m.GitHubAPICalls, 1)
}

// IncrementEvaluation records a completed evaluation.
func (m *Metrics) IncrementEvaluation() {
	atomic.AddInt64(&m.Evaluations, 1)
}

// IncrementEvaluationFailure records a failed evaluation.
func (m *Metrics) IncrementEvaluationFailure() {
	atomic.AddInt64(&m.EvaluationFailures, 1)
}

// RecordResponseTime stores a response time sample (last 1000 kept).
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	m.responseMu.Lock()
	m.responseTimes = append(m.responseTimes, duration)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[1:]
	}
	m.responseMu.Unlock()
}

// RecordRequestByStatus records a request count by HTTP status code.
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.requestsByStatus[statusCode]++
}

// PercentileResponseTime returns the given response-time percentile over
// the retained samples.
func (m *Metrics) PercentileResponseTime(percentile float64) time.Duration {
	m.responseMu.RLock()
	defer m.responseMu.RUnlock()

	if len(m.responseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.responseTimes))
	copy(times, m.responseTimes)
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}
	return times[index]
}

// GetStats returns a snapshot of all counters.
func (m *Metrics) GetStats() map[string]any {
	m.statusMu.RLock()
	byStatus := make(map[int]int64, len(m.requestsByStatus))
	for code, count := range m.requestsByStatus {
		byStatus[code] = count
	}
	m.statusMu.RUnlock()

	hits := atomic.LoadInt64(&m.CacheHits)
	misses := atomic.LoadInt64(&m.CacheMisses)
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	return map[string]any{
		"request_count":       atomic.LoadInt64(&m.RequestCount),
		"error_count":         atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":          hits,
		"cache_misses":        misses,
		"cache_hit_rate":      hitRate,
		"github_api_calls":    atomic.LoadInt64(&m.GitHubAPICalls),
		"evaluations":         atomic.LoadInt64(&m.Evaluations),
		"evaluation_failures": atomic.LoadInt64(&m.EvaluationFailures),
		"requests_by_status":  byStatus,
		"p50_response_ms":     m.PercentileResponseTime(50).Milliseconds(),
		"p95_response_ms":     m.PercentileResponseTime(95).Milliseconds(),
		"p99_response_ms":     m.PercentileResponseTime(99).Milliseconds(),
		"uptime_seconds":      time.Since(m.StartTime).Seconds(),
	}
}
