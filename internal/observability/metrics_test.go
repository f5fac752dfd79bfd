package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics(10)
	m.RecordRequest("/api/v1/state", 10*time.Millisecond, false)
	m.RecordRequest("/api/v1/state", 30*time.Millisecond, false)
	m.RecordRequest("/api/v1/guess", 20*time.Millisecond, true)
	m.RecordStorageFailure()

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.RequestTotal)
	assert.Equal(t, int64(1), snap.RequestFailed)
	assert.Equal(t, int64(1), snap.StorageFailures)
	assert.Equal(t, 3, snap.DurationCount)
	assert.Equal(t, 20*time.Millisecond, snap.Average)
	assert.Equal(t, 20*time.Millisecond, snap.P50)
	assert.InDelta(t, 2.0/3.0, snap.SuccessRate(), 1e-9)

	state := snap.RouteMetrics["/api/v1/state"]
	require.NotNil(t, state)
	assert.Equal(t, int64(2), state.RequestCount)
	assert.Equal(t, int64(20), state.AverageDuration)
	assert.Equal(t, int64(1), snap.RouteMetrics["/api/v1/guess"].ErrorCount)
}

func TestMetricsRollingWindow(t *testing.T) {
	m := NewMetrics(2)
	for i := 1; i <= 5; i++ {
		m.RecordRequest("/", time.Duration(i)*time.Millisecond, false)
	}
	snap := m.Snapshot()
	assert.Equal(t, 2, snap.DurationCount)
	assert.Equal(t, 4*time.Millisecond, snap.P50)
	assert.Equal(t, int64(5), snap.RequestTotal)
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics(0)
	m.RecordRequest("/", time.Millisecond, true)
	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.RequestTotal)
	assert.Empty(t, snap.RouteMetrics)
	assert.Equal(t, 1.0, snap.SuccessRate())
}
