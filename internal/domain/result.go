// Package domain defines core business types and interfaces.
package domain

import "time"

// OperationType represents the kind of operation a result describes.
type OperationType string

const (
	// OperationBackup is a user-initiated backup.
	OperationBackup OperationType = "backup"
	// OperationRecoveryBackup is the safety snapshot taken before a restore.
	OperationRecoveryBackup OperationType = "recovery_backup"
	// OperationRestore is a restore of a chosen archive.
	OperationRestore OperationType = "restore"
)

// String returns the string representation of the operation type.
func (o OperationType) String() string {
	return string(o)
}

// OperationResult contains the result of a single backup or restore operation.
type OperationResult struct {
	Operation    OperationType `json:"operation"`
	Success      bool          `json:"success"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	ArchivePath  string        `json:"archive_path,omitempty"`
	ArchiveBytes int64         `json:"archive_bytes,omitempty"`
	Error        string        `json:"error,omitempty"`
	ErrorKind    ErrorKind     `json:"error_kind,omitempty"`
}

// NewOperationResult creates a new OperationResult with the given operation type.
func NewOperationResult(op OperationType) *OperationResult {
	return &OperationResult{
		Operation: op,
		StartTime: time.Now(),
	}
}

// Complete marks the result as complete. A nil error means success.
func (r *OperationResult) Complete(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = err == nil
	if err != nil {
		r.Error = err.Error()
		r.ErrorKind = KindOf(err)
	}
}

// Outcome is the terminal state of a restore.
type Outcome string

const (
	// OutcomeCompleted means the archive was extracted over the installation.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCancelled means the restore stopped before touching the installation.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeFailed means a step failed; the installation may be partially restored.
	OutcomeFailed Outcome = "failed"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// RestoreResult is what a restore reports back to its caller.
type RestoreResult struct {
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message"`

	// Archive is the archive that was (or would have been) restored.
	Archive *Archive `json:"archive,omitempty"`

	// Recovery describes the recovery snapshot, nil if none was attempted.
	Recovery *OperationResult `json:"recovery,omitempty"`

	// Restore describes the extraction step, nil if it never started.
	Restore *OperationResult `json:"restore,omitempty"`

	// Err is the underlying failure for OutcomeFailed.
	Err error `json:"-"`
}

// Failed reports whether the restore ended in OutcomeFailed.
func (r *RestoreResult) Failed() bool {
	return r.Outcome == OutcomeFailed
}
