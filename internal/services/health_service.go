package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"fruitdash/pkg/contracts"
)

// DatasetStatus is what the health service needs to know about the data
type DatasetStatus interface {
	Loaded() bool
	Stats() map[string]int
}

// HealthService provides health check functionality
type HealthService struct {
	dataset   DatasetStatus
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Records map[string]int `json:"records,omitempty"`
}

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// NewHealthService creates a health service reporting on dataset
func NewHealthService(dataset DatasetStatus, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
	hs.logger.DebugContext(ctx, "Health check", slog.String("status", status.Status))
	return status
}

// ReadinessCheck reports ready once the dataset is attached
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	data := hs.checkDataHealth()

	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services:  map[string]interface{}{"dataset": data},
	}
	if data.Status != StatusReady {
		status.Status = StatusNotReady
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"data_format":  info.DataFormat,
		"api_version":  info.APIVersion,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.dataset == nil || !hs.dataset.Loaded() {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: "dataset not loaded",
		}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: "dataset loaded",
		Records: hs.dataset.Stats(),
	}
}
