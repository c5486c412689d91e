package procguard

import (
	"context"

	"github.com/kemukujara/lolbackup/internal/domain"
)

// MockGuard is a mock implementation of domain.ProcessGuard for testing.
type MockGuard struct {
	CheckFunc   func(ctx context.Context, prompter domain.Prompter) (domain.GuardResult, error)
	RunningFunc func(ctx context.Context) ([]domain.ProcessInfo, error)

	// Checks counts calls to Check.
	Checks int
}

// Check calls the mock CheckFunc. Without one the client is reported as not running.
func (m *MockGuard) Check(ctx context.Context, prompter domain.Prompter) (domain.GuardResult, error) {
	m.Checks++
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, prompter)
	}
	return domain.GuardSafe, nil
}

// Running calls the mock RunningFunc.
func (m *MockGuard) Running(ctx context.Context) ([]domain.ProcessInfo, error) {
	if m.RunningFunc != nil {
		return m.RunningFunc(ctx)
	}
	return nil, nil
}

// Ensure MockGuard implements domain.ProcessGuard.
var _ domain.ProcessGuard = (*MockGuard)(nil)
