package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MetricsOverviewResponse represents the overview response of system metrics
type MetricsOverviewResponse struct {
	TotalRequests   int64   `json:"total_requests"`
	SuccessRate     float64 `json:"success_rate"`
	AvgLatencyMs    int64   `json:"avg_latency_ms"`
	P50LatencyMs    int64   `json:"p50_latency_ms"`
	P95LatencyMs    int64   `json:"p95_latency_ms"`
	ErrorCount      int64   `json:"error_count"`
	StorageFailures int64   `json:"storage_failures"`
	WindowSize      int     `json:"window_size"`
}

// GetMetricsOverview returns the system metrics overview
// GET /api/v1/system/metrics/overview
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snap := s.Metrics.Snapshot()
	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalRequests:   snap.RequestTotal,
		SuccessRate:     snap.SuccessRate(),
		AvgLatencyMs:    snap.Average.Milliseconds(),
		P50LatencyMs:    snap.P50.Milliseconds(),
		P95LatencyMs:    snap.P95.Milliseconds(),
		ErrorCount:      snap.RequestFailed,
		StorageFailures: snap.StorageFailures,
		WindowSize:      snap.DurationCount,
	})
}
