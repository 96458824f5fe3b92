package summarizer

import (
	"sync"
	"time"

	"daily-refresher/internal/resilience/retry"
)

type fakeMetrics struct {
	mu        sync.Mutex
	requests  map[string]int
	lengths   []int
	durations int
	truncated int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{requests: map[string]int{}}
}

func (m *fakeMetrics) RecordRequest(provider, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[provider+"/"+status]++
}

func (m *fakeMetrics) RecordDuration(string, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *fakeMetrics) RecordLength(_ string, length int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lengths = append(m.lengths, length)
}

func (m *fakeMetrics) RecordTruncated(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.truncated++
}

func (m *fakeMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[key]
}

// fastRetry keeps retry tests quick.
func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func testConfig(provider, baseURL string, m *fakeMetrics) Config {
	return Config{
		Provider: provider,
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
		Retry:    fastRetry(),
		Metrics:  m,
	}
}
