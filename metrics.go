package authgate

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter or histogram in the in-process metrics
// system.
type MetricID uint16

const (
	// MetricRegisterSuccess counts successful account registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterDuplicate counts registrations rejected for an existing email.
	MetricRegisterDuplicate
	// MetricRegisterInvalid counts registrations rejected by input validation.
	MetricRegisterInvalid
	// MetricRegisterRateLimited counts rate-limited registration attempts.
	MetricRegisterRateLimited
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts failed logins (bad credentials or disabled account).
	MetricLoginFailure
	// MetricLoginRateLimited counts rate-limited login attempts.
	MetricLoginRateLimited
	// MetricRefreshSuccess counts refresh operations that minted a new access token.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refreshes rejected as unauthorized.
	MetricRefreshFailure
	// MetricSessionExpired counts refreshes rejected because the refresh token itself expired.
	MetricSessionExpired
	// MetricRefreshRateLimited counts rate-limited refresh attempts.
	MetricRefreshRateLimited
	// MetricAuthenticateSuccess counts validated access tokens.
	MetricAuthenticateSuccess
	// MetricAccessExpired counts access tokens rejected only for expiry.
	MetricAccessExpired
	// MetricUnauthorized counts tokens rejected as malformed, tampered, or wrong-kind.
	MetricUnauthorized
	// MetricProfileSuccess counts successful profile fetches.
	MetricProfileSuccess
	// MetricProfileFailure counts failed profile fetches.
	MetricProfileFailure
	// MetricProfileRateLimited counts rate-limited profile fetches.
	MetricProfileRateLimited
	// MetricHealthOK counts health checks served.
	MetricHealthOK
	// MetricRateLimitHit counts endpoint-tier denials across all operations.
	MetricRateLimitHit
	// MetricGlobalRateLimited counts denials by the global ceiling.
	MetricGlobalRateLimited
	// MetricStoreUnavailable counts user-store backend failures.
	MetricStoreUnavailable
	// MetricAuthenticateLatency is the access-token validation latency histogram.
	MetricAuthenticateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each counter on its own cache line so concurrent
// increments on different metrics never contend.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters and the optional Authenticate latency
// histogram. All operations are no-ops when disabled.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether metric collection is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only MetricAuthenticateLatency carries a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricAuthenticateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current counter value for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthenticateLatency].buckets[i])
		}
		s.Histograms[MetricAuthenticateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 50:
		return 0
	case us <= 100:
		return 1
	case us <= 250:
		return 2
	case us <= 500:
		return 3
	case us <= 1000:
		return 4
	case us <= 5000:
		return 5
	case us <= 25000:
		return 6
	default:
		return 7
	}
}
