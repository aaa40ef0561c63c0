package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"fruitdash/internal/shared/testutil"
	"fruitdash/pkg/contracts"
)

func TestHealthService_Readiness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	dashboard := NewDashboardService(logger)
	health := NewHealthService(dashboard, logger)

	status := health.ReadinessCheck(context.Background())
	assert.Equal(t, StatusNotReady, status.Status)
	data := status.Services["dataset"].(ServiceHealth)
	assert.Equal(t, StatusNotReady, data.Status)

	dashboard.Attach(testDataset())

	status = health.ReadinessCheck(context.Background())
	assert.Equal(t, StatusReady, status.Status)
	data = status.Services["dataset"].(ServiceHealth)
	assert.Equal(t, map[string]int{"historical": 6, "forecast": 3}, data.Records)
}

func TestHealthService_NilDataset(t *testing.T) {
	health := NewHealthService(nil, nil)
	assert.Equal(t, StatusNotReady, health.ReadinessCheck(context.Background()).Status)
}

func TestHealthService_Probes(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	health := NewHealthService(NewDashboardService(logger), logger)

	assert.Equal(t, StatusOK, health.HealthCheck(context.Background()).Status)

	live := health.LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := health.Version()
	assert.Equal(t, contracts.Version, version["version"])
	assert.Equal(t, contracts.APIVersion, version["api_version"])
}
