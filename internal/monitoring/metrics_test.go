package monitoring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := NewMetrics()

	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementGitHubCalls()
	m.IncrementEvaluation()
	m.IncrementEvaluationFailure()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["request_count"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
	assert.Equal(t, int64(1), stats["github_api_calls"])
	assert.Equal(t, int64(1), stats["evaluations"])
	assert.Equal(t, int64(1), stats["evaluation_failures"])
	assert.InDelta(t, 50.0, stats["cache_hit_rate"], 0.01)
}

func TestCacheHitRateWithoutTraffic(t *testing.T) {
	stats := NewMetrics().GetStats()
	assert.InDelta(t, 0.0, stats["cache_hit_rate"], 0.01)
}

func TestRecordRequestByStatus(t *testing.T) {
	m := NewMetrics()
	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(404)

	byStatus := m.GetStats()["requests_by_status"].(map[int]int64)
	assert.Equal(t, int64(2), byStatus[200])
	assert.Equal(t, int64(1), byStatus[404])
}

func TestPercentileResponseTime(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, int64(50), m.PercentileResponseTime(50).Milliseconds())
	assert.Equal(t, int64(95), m.PercentileResponseTime(95).Milliseconds())
	assert.Equal(t, int64(99), m.PercentileResponseTime(99).Milliseconds())
}

func TestPercentileResponseTimeEmpty(t *testing.T) {
	assert.Zero(t, NewMetrics().PercentileResponseTime(95))
}

func TestConcurrentUpdates(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncrementRequest()
				m.RecordResponseTime(time.Millisecond)
				m.RecordRequestByStatus(200)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2000), m.GetStats()["request_count"])
}
