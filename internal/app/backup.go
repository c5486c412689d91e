package app

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kemukujara/lolbackup/internal/archive"
	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/fsutil"
)

// RunBackup archives the two client configuration directories into a new
// timestamped archive in the backup folder and returns its path. Failures are
// returned as *domain.Error; no partial archive is left behind.
func (r *Runner) RunBackup(ctx context.Context) (string, error) {
	dest := filepath.Join(r.config.BackupDir, domain.ArchiveName(r.now()))

	r.logger.Info("starting backup", "destination", dest)

	result, err := r.backupTo(ctx, domain.OperationBackup, dest)
	r.pushMetrics(ctx, result)

	if err != nil {
		r.logger.Error("backup failed", "error", err, "kind", domain.KindOf(err))
		r.notify(ctx, domain.ErrorNotification(titleError, "Error during backup: "+domain.Describe(err)))
		return "", err
	}

	r.logger.Info("backup completed",
		"path", dest,
		"bytes", result.ArchiveBytes,
		"duration", result.Duration,
	)
	r.notify(ctx, domain.InfoNotification(titleBackupCompleted,
		"Backup completed successfully.\nFile saved to: "+dest))

	return dest, nil
}

// backupTo runs the backup procedure into dest and records it as op.
func (r *Runner) backupTo(ctx context.Context, op domain.OperationType, dest string) (*domain.OperationResult, error) {
	result := domain.NewOperationResult(op)
	result.ArchivePath = dest

	size, err := r.createArchive(ctx, dest)
	result.ArchiveBytes = size
	result.Complete(err)

	return result, err
}

// createArchive stages Config and CFG in a fresh temporary directory, zips the
// staging directory into dest and always removes the staging directory.
func (r *Runner) createArchive(ctx context.Context, dest string) (int64, error) {
	if err := r.EnsureBackupDir(); err != nil {
		return 0, err
	}

	staging := filepath.Join(r.config.TempDir, "lolbackup-"+uuid.NewString())
	if err := r.fs.MkdirAll(staging, 0o700); err != nil {
		return 0, fsutil.Wrap("create staging directory", staging, err, domain.KindUnknown)
	}
	defer func() {
		if err := r.fs.RemoveAll(staging); err != nil {
			r.logger.Warn("failed to remove staging directory", "path", staging, "error", err)
			return
		}
		r.logger.Debug("staging directory removed", "path", staging)
	}()

	r.logger.Debug("staging directory created", "path", staging)

	sources := []struct{ src, name string }{
		{r.config.Client.ConfigDir, domain.StagingConfigDir},
		{r.config.Client.DataCFGDir, domain.StagingCFGDir},
	}
	for _, s := range sources {
		if err := fsutil.CopyDir(ctx, r.fs, s.src, filepath.Join(staging, s.name)); err != nil {
			return 0, err
		}
		r.logger.Debug("copied source directory", "source", s.src, "staging", s.name)
	}

	return archive.Create(ctx, r.fs, staging, dest)
}
