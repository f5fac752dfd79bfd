package observability

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects request and storage metrics for the running server.
type Metrics struct {
	mu sync.Mutex

	// Counters
	requestTotal    atomic.Int64
	requestFailed   atomic.Int64
	storageFailures atomic.Int64

	// Route-specific metrics
	routeMetrics map[string]*RouteMetrics

	// Rolling window of recent request durations
	durations    []time.Duration
	maxDurations int
}

// RouteMetrics represents metrics for a specific route.
type RouteMetrics struct {
	requestCount  atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector keeping the last maxDurations durations.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		routeMetrics: make(map[string]*RouteMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

// RecordRequest records one handled request.
func (m *Metrics) RecordRequest(route string, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)
	if failed {
		m.requestFailed.Add(1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)

	rm := m.getRouteMetrics(route)
	rm.requestCount.Add(1)
	rm.totalDuration.Add(duration.Milliseconds())
	if failed {
		rm.errorCount.Add(1)
	}
}

// RecordStorageFailure counts a failed progress load, save or delete.
func (m *Metrics) RecordStorageFailure() {
	m.storageFailures.Add(1)
}

// getRouteMetrics gets or creates route metrics. The caller holds m.mu.
func (m *Metrics) getRouteMetrics(route string) *RouteMetrics {
	rm, ok := m.routeMetrics[route]
	if !ok {
		rm = &RouteMetrics{}
		m.routeMetrics[route] = rm
	}
	return rm
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.storageFailures.Store(0)

	m.mu.Lock()
	m.routeMetrics = make(map[string]*RouteMetrics)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make(map[string]*RouteMetricsSnapshot, len(m.routeMetrics))
	for route, rm := range m.routeMetrics {
		s := &RouteMetricsSnapshot{
			RequestCount:  rm.requestCount.Load(),
			TotalDuration: rm.totalDuration.Load(),
			ErrorCount:    rm.errorCount.Load(),
		}
		if s.RequestCount > 0 {
			s.AverageDuration = s.TotalDuration / s.RequestCount
		}
		routes[route] = s
	}

	sorted := slices.Clone(m.durations)
	slices.Sort(sorted)

	snap := &MetricsSnapshot{
		RequestTotal:    m.requestTotal.Load(),
		RequestFailed:   m.requestFailed.Load(),
		StorageFailures: m.storageFailures.Load(),
		RouteMetrics:    routes,
		DurationCount:   len(sorted),
		P50:             percentile(sorted, 0.50),
		P95:             percentile(sorted, 0.95),
	}
	if len(sorted) > 0 {
		var total time.Duration
		for _, d := range sorted {
			total += d
		}
		snap.Average = total / time.Duration(len(sorted))
	}
	return snap
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal    int64
	RequestFailed   int64
	StorageFailures int64
	RouteMetrics    map[string]*RouteMetricsSnapshot
	DurationCount   int
	Average         time.Duration
	P50             time.Duration
	P95             time.Duration
}

// SuccessRate returns the share of requests that did not fail, or 1 with no traffic.
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 1
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal)
}

// RouteMetricsSnapshot represents metrics for a specific route.
type RouteMetricsSnapshot struct {
	RequestCount    int64
	TotalDuration   int64
	ErrorCount      int64
	AverageDuration int64
}
