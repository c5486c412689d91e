package metrics

import (
	"context"

	"github.com/kemukujara/lolbackup/internal/domain"
)

// MockPusher records pushed metrics instead of sending them.
type MockPusher struct {
	PushFunc     func(ctx context.Context, metrics *domain.Metrics) error
	ValidateFunc func(ctx context.Context) error

	PushedMetrics []*domain.Metrics
}

func (m *MockPusher) Push(ctx context.Context, metrics *domain.Metrics) error {
	m.PushedMetrics = append(m.PushedMetrics, metrics)
	if m.PushFunc != nil {
		return m.PushFunc(ctx, metrics)
	}
	return nil
}

func (m *MockPusher) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

// Results flattens the operation results of every push in push order.
func (m *MockPusher) Results() []*domain.OperationResult {
	var results []*domain.OperationResult
	for _, pushed := range m.PushedMetrics {
		results = append(results, pushed.Results...)
	}
	return results
}

// Result returns the last recorded result for op, or nil.
func (m *MockPusher) Result(op domain.OperationType) *domain.OperationResult {
	results := m.Results()
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Operation == op {
			return results[i]
		}
	}
	return nil
}

var _ domain.MetricsPusher = (*MockPusher)(nil)
