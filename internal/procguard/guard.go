// Package procguard makes sure the League of Legends client is closed before
// its configuration files are replaced.
package procguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kemukujara/lolbackup/internal/domain"
)

// Default timing for waiting on a killed client to exit.
const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultTimeout      = 30 * time.Second
)

// Process is a running process the guard can inspect and terminate.
type Process interface {
	PID() int32
	Name(ctx context.Context) (string, error)
	Kill(ctx context.Context) error
	IsRunning(ctx context.Context) (bool, error)
}

// ProcessSource enumerates the processes of the local machine.
type ProcessSource interface {
	Processes(ctx context.Context) ([]Process, error)
}

// Guard implements domain.ProcessGuard for a single process name.
type Guard struct {
	name         string
	source       ProcessSource
	pollInterval time.Duration
	timeout      time.Duration
	logger       *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithSource sets the process source.
func WithSource(source ProcessSource) Option {
	return func(g *Guard) {
		g.source = source
	}
}

// WithPollInterval sets how often a killed process is checked for exit.
func WithPollInterval(d time.Duration) Option {
	return func(g *Guard) {
		g.pollInterval = d
	}
}

// WithTimeout bounds the wait for killed processes to exit.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		g.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New creates a guard for processes named processName. Names are matched
// case-insensitively and without a trailing ".exe".
func New(processName string, opts ...Option) *Guard {
	g := &Guard{
		name:         processName,
		source:       SystemSource(),
		pollInterval: DefaultPollInterval,
		timeout:      DefaultTimeout,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Running lists the matching client processes.
func (g *Guard) Running(ctx context.Context) ([]domain.ProcessInfo, error) {
	procs, err := g.find(ctx)
	if err != nil {
		return nil, err
	}
	return g.describe(ctx, procs), nil
}

// Check returns GuardSafe when no client is running. Otherwise the prompter is
// asked whether the client may be closed; on Yes every match is killed and
// awaited. Declining returns GuardNotSafe with a nil error.
func (g *Guard) Check(ctx context.Context, prompter domain.Prompter) (domain.GuardResult, error) {
	procs, err := g.find(ctx)
	if err != nil {
		return domain.GuardNotSafe, err
	}
	if len(procs) == 0 {
		g.logger.Debug("client not running", "process", g.name)
		return domain.GuardSafe, nil
	}

	running := g.describe(ctx, procs)
	g.logger.Info("client is running", "process", g.name, "count", len(running))

	answer, err := prompter.ConfirmCloseClient(ctx, running)
	if err != nil {
		return domain.GuardNotSafe, fmt.Errorf("prompt failed: %w", err)
	}
	if answer != domain.AnswerYes {
		g.logger.Info("user declined to close the client", "answer", answer)
		return domain.GuardNotSafe, nil
	}

	if err := g.terminate(ctx, procs); err != nil {
		return domain.GuardNotSafe, domain.NewError(domain.KindProcessTerminationFailed, "close client", g.name, err)
	}

	g.logger.Info("client closed", "process", g.name)
	return domain.GuardSafe, nil
}

func (g *Guard) find(ctx context.Context) ([]Process, error) {
	all, err := g.source.Processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var matches []Process
	for _, p := range all {
		name, err := p.Name(ctx)
		if err != nil {
			// Usually a process that exited during enumeration.
			continue
		}
		if g.matches(name) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (g *Guard) matches(name string) bool {
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".exe") {
		name = name[:len(name)-4]
	}
	return strings.EqualFold(name, g.name)
}

func (g *Guard) describe(ctx context.Context, procs []Process) []domain.ProcessInfo {
	infos := make([]domain.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, _ := p.Name(ctx)
		infos = append(infos, domain.ProcessInfo{PID: p.PID(), Name: name})
	}
	return infos
}

// terminate kills every process and waits until all of them have exited.
func (g *Guard) terminate(ctx context.Context, procs []Process) error {
	var errs []error
	for _, p := range procs {
		g.logger.Debug("killing process", "pid", p.PID())
		if err := p.Kill(ctx); err != nil {
			if running, rerr := p.IsRunning(ctx); rerr == nil && !running {
				continue
			}
			errs = append(errs, fmt.Errorf("kill pid %d: %w", p.PID(), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	return g.waitForExit(ctx, procs)
}

func (g *Guard) waitForExit(ctx context.Context, procs []Process) error {
	deadline := time.NewTimer(g.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	pending := procs
	for {
		pending = g.stillRunning(ctx, pending)
		if len(pending) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			pids := make([]string, 0, len(pending))
			for _, p := range pending {
				pids = append(pids, fmt.Sprint(p.PID()))
			}
			return fmt.Errorf("still running after %s (pid %s)", g.timeout, strings.Join(pids, ", "))
		case <-ticker.C:
		}
	}
}

func (g *Guard) stillRunning(ctx context.Context, procs []Process) []Process {
	var out []Process
	for _, p := range procs {
		running, err := p.IsRunning(ctx)
		if err != nil {
			g.logger.Debug("failed to query process", "pid", p.PID(), "error", err)
			running = true
		}
		if running {
			out = append(out, p)
		}
	}
	return out
}

// Ensure Guard implements domain.ProcessGuard.
var _ domain.ProcessGuard = (*Guard)(nil)
