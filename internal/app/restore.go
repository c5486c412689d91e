package app

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/kemukujara/lolbackup/internal/archive"
	"github.com/kemukujara/lolbackup/internal/config"
	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/fsutil"
)

// User-facing restore messages.
const (
	MsgClientStillRunning = "Operation cancelled. League of Legends client is still running."
	MsgNoBackups          = "No backups found. Please create a backup first."
	MsgNoArchiveSelected  = "No backup selected. Restoration cancelled."
	MsgRestoreCancelled   = "Restoration cancelled."
	MsgRestoreCompleted   = "Restoration completed successfully."
)

// RunRestore restores an archive over the client installation. It makes sure
// the client is closed, snapshots the current configuration into the recovery
// archive, lets the prompter pick an archive and extracts it into the restore
// root. Every outcome is reported through the returned result and the notifier.
func (r *Runner) RunRestore(ctx context.Context, prompter domain.Prompter) *domain.RestoreResult {
	res := r.restore(ctx, prompter)

	switch res.Outcome {
	case domain.OutcomeCompleted:
		r.logger.Info("restore completed", "archive", res.Archive.Path)
		r.notify(ctx, domain.InfoNotification(titleRestoreCompleted, res.Message))
	case domain.OutcomeCancelled:
		r.logger.Info("restore cancelled", "reason", res.Message)
		title := titleCancelled
		if res.Message == MsgNoBackups {
			title = titleNoBackups
		}
		r.notify(ctx, domain.InfoNotification(title, res.Message))
	default:
		r.logger.Error("restore failed", "error", res.Err, "kind", domain.KindOf(res.Err))
		r.notify(ctx, domain.ErrorNotification(titleError, res.Message))
	}

	r.pushMetrics(ctx, res.Recovery, res.Restore)
	return res
}

func (r *Runner) restore(ctx context.Context, prompter domain.Prompter) *domain.RestoreResult {
	res := &domain.RestoreResult{}

	if err := r.EnsureBackupDir(); err != nil {
		return failed(res, "Error during restoration: ", err)
	}

	safe, err := r.guard.Check(ctx, prompter)
	if err != nil {
		if domain.IsKind(err, domain.KindProcessTerminationFailed) {
			return failed(res, "Failed to close League of Legends client: ", err)
		}
		return failed(res, "Error during restoration: ", err)
	}
	if safe != domain.GuardSafe {
		return cancelled(res, MsgClientStillRunning)
	}

	res.Recovery, err = r.recoverySnapshot(ctx)
	if err != nil {
		if r.config.Restore.RecoveryPolicy == config.RecoveryRequired {
			return failed(res, "Recovery backup failed, restore aborted: ", err)
		}
		r.logger.Warn("recovery backup failed, continuing with restore", "error", err)
		r.notify(ctx, domain.WarningNotification(titleWarning,
			"Recovery backup failed, continuing with restore: "+domain.Describe(err)))
	}

	chosen, msg, err := r.selectArchive(ctx, prompter)
	if err != nil {
		return failed(res, "Error during restoration: ", err)
	}
	if chosen == nil {
		return cancelled(res, msg)
	}
	res.Archive = chosen

	res.Restore, err = r.extract(ctx, chosen.Path)
	if err != nil {
		return failed(res, "Error during restoration: ", err)
	}

	res.Outcome = domain.OutcomeCompleted
	res.Message = MsgRestoreCompleted
	return res
}

// recoverySnapshot replaces the recovery archive with a backup of the current state.
func (r *Runner) recoverySnapshot(ctx context.Context) (*domain.OperationResult, error) {
	path := filepath.Join(r.config.BackupDir, domain.RecoveryArchiveName)

	if err := r.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		result := domain.NewOperationResult(domain.OperationRecoveryBackup)
		result.ArchivePath = path
		err = fsutil.Wrap("remove recovery archive", path, err, domain.KindUnknown)
		result.Complete(err)
		return result, err
	}

	r.logger.Info("creating recovery backup", "path", path)
	return r.backupTo(ctx, domain.OperationRecoveryBackup, path)
}

// selectArchive returns the archive to restore, or nil and a message when the
// user ends the restore.
func (r *Runner) selectArchive(ctx context.Context, prompter domain.Prompter) (*domain.Archive, string, error) {
	archives, err := r.ListArchives()
	if err != nil {
		return nil, "", err
	}
	if len(archives) == 0 {
		return nil, MsgNoBackups, nil
	}

	latest := archives[0]
	answer, err := prompter.ConfirmUseLatest(ctx, latest)
	if err != nil {
		return nil, "", err
	}

	switch answer {
	case domain.AnswerYes:
		return &latest, "", nil
	case domain.AnswerNo:
		path, err := prompter.ChooseArchive(ctx, r.config.BackupDir, archives)
		if err != nil {
			return nil, "", err
		}
		if path == "" {
			return nil, MsgNoArchiveSelected, nil
		}
		chosen, err := describeArchive(r.fs, path)
		if err != nil {
			return nil, "", err
		}
		return &chosen, "", nil
	default:
		return nil, MsgRestoreCancelled, nil
	}
}

func (r *Runner) extract(ctx context.Context, path string) (*domain.OperationResult, error) {
	result := domain.NewOperationResult(domain.OperationRestore)
	result.ArchivePath = path

	extractFn := archive.Extract
	if r.config.Restore.StagedExtract {
		extractFn = archive.ExtractStaged
	}

	r.logger.Info("extracting archive",
		"archive", path,
		"target", r.config.Restore.Root,
		"staged", r.config.Restore.StagedExtract,
	)

	n, err := extractFn(ctx, r.fs, path, r.config.Restore.Root)
	result.Complete(err)
	if err == nil {
		r.logger.Debug("archive extracted", "files", n)
	}
	return result, err
}

func failed(res *domain.RestoreResult, prefix string, err error) *domain.RestoreResult {
	res.Outcome = domain.OutcomeFailed
	res.Message = prefix + domain.Describe(err)
	res.Err = err
	return res
}

func cancelled(res *domain.RestoreResult, msg string) *domain.RestoreResult {
	res.Outcome = domain.OutcomeCancelled
	res.Message = msg
	return res
}
