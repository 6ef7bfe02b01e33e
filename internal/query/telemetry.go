package query

import (
	"sync"
	"time"
)

const telemetryRingCapacity = 256

type queryRecord struct {
	operation string
	duration  time.Duration
	at        time.Time
}

// telemetryRing accumulates recent query call durations and cache hit/miss
// counts for the telemetry() contract method, grounded on the ring-buffer
// shape already used by internal/temporal.Metrics.
type telemetryRing struct {
	mu      sync.Mutex
	samples [telemetryRingCapacity]queryRecord
	next    int
	filled  bool
	hits    int
	misses  int
}

func newTelemetryRing() *telemetryRing {
	return &telemetryRing{}
}

func (t *telemetryRing) record(operation string, d time.Duration, cacheHit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples[t.next] = queryRecord{operation: operation, duration: d, at: time.Now()}
	t.next = (t.next + 1) % telemetryRingCapacity
	if t.next == 0 {
		t.filled = true
	}
	if cacheHit {
		t.hits++
	} else {
		t.misses++
	}
}

func (t *telemetryRing) snapshot() TelemetrySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.next
	if t.filled {
		n = telemetryRingCapacity
	}
	if n == 0 {
		return TelemetrySnapshot{LastQueryMetrics: map[string]any{}}
	}

	var total time.Duration
	last := t.samples[0]
	for i := 0; i < n; i++ {
		s := t.samples[i]
		total += s.duration
		if s.at.After(last.at) {
			last = s
		}
	}

	totalRequests := t.hits + t.misses
	hitRate := 0.0
	if totalRequests > 0 {
		hitRate = float64(t.hits) / float64(totalRequests)
	}

	return TelemetrySnapshot{
		AvgQueryTimeMS: float64(total.Milliseconds()) / float64(n),
		CacheHitRate:   hitRate,
		MemoryUsageMB:  0, // no in-process memory sampler is wired; left at zero rather than faked
		LastQueryMetrics: map[string]any{
			"operation":   last.operation,
			"duration_ms": last.duration.Milliseconds(),
		},
	}
}
