// Package app provides the backup and restore orchestration.
package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/kemukujara/lolbackup/internal/config"
	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/fsutil"
	"github.com/kemukujara/lolbackup/internal/procguard"
)

// Notification titles.
const (
	titleBackupCompleted  = "Backup Completed"
	titleRestoreCompleted = "Restoration Completed"
	titleCancelled        = "Operation Cancelled"
	titleNoBackups        = "No Backups"
	titleWarning          = "Warning"
	titleError            = "Error"
)

// Runner orchestrates backup and restore operations.
type Runner struct {
	config        *config.Config
	fs            afero.Fs
	guard         domain.ProcessGuard
	metricsPusher domain.MetricsPusher
	notifier      domain.Notifier
	logger        *slog.Logger
	hostname      string
	now           func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFS sets the filesystem every operation works on.
func WithFS(fsys afero.Fs) RunnerOption {
	return func(r *Runner) {
		r.fs = fsys
	}
}

// WithProcessGuard sets the guard consulted before a restore.
func WithProcessGuard(g domain.ProcessGuard) RunnerOption {
	return func(r *Runner) {
		r.guard = g
	}
}

// WithMetricsPusher sets the metrics pusher.
func WithMetricsPusher(m domain.MetricsPusher) RunnerOption {
	return func(r *Runner) {
		r.metricsPusher = m
	}
}

// WithNotifier sets the notifier.
func WithNotifier(n domain.Notifier) RunnerOption {
	return func(r *Runner) {
		r.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithClock sets the clock used to timestamp archive names.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a new Runner. Without WithProcessGuard the runner watches
// the configured client process name through the operating system process table.
func NewRunner(cfg *config.Config, opts ...RunnerOption) *Runner {
	hostname, _ := os.Hostname()

	r := &Runner{
		config:   cfg,
		fs:       afero.NewOsFs(),
		logger:   slog.Default(),
		hostname: hostname,
		notifier: &domain.NopNotifier{}, // Default to no-op
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.guard == nil {
		r.guard = procguard.New(cfg.Client.ProcessName,
			procguard.WithTimeout(cfg.Restore.KillTimeout),
			procguard.WithLogger(r.logger),
		)
	}

	return r
}

// EnsureBackupDir creates the backup folder if it does not exist.
func (r *Runner) EnsureBackupDir() error {
	if err := r.fs.MkdirAll(r.config.BackupDir, 0o755); err != nil {
		return fsutil.Wrap("create backup folder", r.config.BackupDir, err, domain.KindUnknown)
	}
	return nil
}

// notify sends a notification, logging rather than returning delivery failures.
func (r *Runner) notify(ctx context.Context, n *domain.Notification) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, n); err != nil {
		r.logger.Error("failed to send notification", "title", n.Title, "error", err)
	}
}

// pushMetrics sends the results of one command to the metrics pusher.
func (r *Runner) pushMetrics(ctx context.Context, results ...*domain.OperationResult) {
	if r.metricsPusher == nil {
		return
	}

	metrics := domain.NewMetrics(r.hostname)
	for _, result := range results {
		metrics.AddResult(result)
	}

	if archives, err := r.ListArchives(); err == nil {
		metrics.BackupCount = len(archives)
	}

	if err := r.metricsPusher.Push(ctx, metrics); err != nil {
		r.logger.Error("failed to push metrics", "error", err)
	}
}
