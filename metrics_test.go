package authgate

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoOps(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricAuthenticateLatency, time.Millisecond)

	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics recorded a count")
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatal("disabled snapshot should be empty")
	}
}

func TestMetricsCountersIsolated(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricRefreshSuccess)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("login success = %d, want 2", got)
	}
	if got := m.Value(MetricRefreshSuccess); got != 1 {
		t.Fatalf("refresh success = %d, want 1", got)
	}
	if got := m.Value(MetricLoginFailure); got != 0 {
		t.Fatalf("login failure = %d, want 0", got)
	}
}

func TestMetricsSnapshotIsCopy(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Inc(MetricProfileSuccess)
	m.Observe(MetricAuthenticateLatency, 75*time.Microsecond)

	snap := m.Snapshot()
	snap.Counters[MetricProfileSuccess] = 99
	snap.Histograms[MetricAuthenticateLatency][1] = 99

	again := m.Snapshot()
	if again.Counters[MetricProfileSuccess] != 1 {
		t.Fatalf("counter = %d, want 1 after snapshot mutation", again.Counters[MetricProfileSuccess])
	}
	if again.Histograms[MetricAuthenticateLatency][1] != 1 {
		t.Fatalf("bucket = %d, want 1 after snapshot mutation", again.Histograms[MetricAuthenticateLatency][1])
	}
}

func TestLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	samples := []struct {
		d      time.Duration
		bucket int
	}{
		{10 * time.Microsecond, 0},
		{80 * time.Microsecond, 1},
		{200 * time.Microsecond, 2},
		{400 * time.Microsecond, 3},
		{800 * time.Microsecond, 4},
		{3 * time.Millisecond, 5},
		{20 * time.Millisecond, 6},
		{time.Second, 7},
	}
	for _, s := range samples {
		m.Observe(MetricAuthenticateLatency, s.d)
	}

	buckets := m.Snapshot().Histograms[MetricAuthenticateLatency]
	for _, s := range samples {
		if buckets[s.bucket] != 1 {
			t.Fatalf("bucket %d = %d, want 1 (sample %v)", s.bucket, buckets[s.bucket], s.d)
		}
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perGoroutine = 1000

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				m.Inc(MetricAuthenticateSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricAuthenticateSuccess); got != goroutines*perGoroutine {
		t.Fatalf("count = %d, want %d", got, goroutines*perGoroutine)
	}
}
