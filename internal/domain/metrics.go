package domain

import (
	"context"
	"time"
)

// Metrics is a snapshot of recent operation results to be pushed.
type Metrics struct {
	Timestamp time.Time
	Hostname  string

	// BackupCount is the number of regular archives in the backup folder.
	BackupCount int

	Results []*OperationResult
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(hostname string) *Metrics {
	return &Metrics{
		Timestamp: time.Now(),
		Hostname:  hostname,
		Results:   make([]*OperationResult, 0),
	}
}

// AddResult adds an operation result. Nil results are ignored.
func (m *Metrics) AddResult(result *OperationResult) {
	if result != nil {
		m.Results = append(m.Results, result)
	}
}

// MetricsPusher defines the interface for pushing metrics to a remote endpoint.
type MetricsPusher interface {
	// Push sends metrics to the remote endpoint.
	Push(ctx context.Context, metrics *Metrics) error

	// Validate checks if the pusher is properly configured.
	Validate(ctx context.Context) error
}
