package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by backup and restore operations.
type ErrorKind string

const (
	// KindUnknown is used when a failure could not be classified.
	KindUnknown ErrorKind = "unknown"
	// KindSourceMissing means a source directory is absent or inaccessible.
	KindSourceMissing ErrorKind = "source_missing"
	// KindDestinationConflict means the destination path is already occupied.
	KindDestinationConflict ErrorKind = "destination_conflict"
	// KindArchiveCorrupt means the archive could not be read as a zip file.
	KindArchiveCorrupt ErrorKind = "archive_corrupt"
	// KindPermissionDenied means a file was locked or not writable.
	KindPermissionDenied ErrorKind = "permission_denied"
	// KindProcessTerminationFailed means the client could not be closed.
	KindProcessTerminationFailed ErrorKind = "process_termination_failed"
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	return string(k)
}

// Error is a classified failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

// NewError creates a classified error.
func NewError(kind ErrorKind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Describe renders err for a human, prefixed by a short label for its kind.
func Describe(err error) string {
	switch KindOf(err) {
	case KindSourceMissing:
		return fmt.Sprintf("source directory missing or inaccessible (%v)", err)
	case KindDestinationConflict:
		return fmt.Sprintf("destination already exists (%v)", err)
	case KindArchiveCorrupt:
		return fmt.Sprintf("archive is corrupt or not a zip file (%v)", err)
	case KindPermissionDenied:
		return fmt.Sprintf("file is locked or access was denied (%v)", err)
	case KindProcessTerminationFailed:
		return fmt.Sprintf("could not close the client (%v)", err)
	default:
		return err.Error()
	}
}
