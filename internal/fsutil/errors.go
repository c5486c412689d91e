package fsutil

import (
	"errors"
	"io/fs"

	"github.com/kemukujara/lolbackup/internal/domain"
)

// Classify maps a filesystem error onto an error kind. Errors that are already
// classified keep their kind; anything unrecognised gets fallback.
func Classify(err error, fallback domain.ErrorKind) domain.ErrorKind {
	if err == nil {
		return ""
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return de.Kind
	}

	switch {
	case isLocked(err), errors.Is(err, fs.ErrPermission):
		return domain.KindPermissionDenied
	case errors.Is(err, fs.ErrExist):
		return domain.KindDestinationConflict
	case errors.Is(err, fs.ErrNotExist):
		return domain.KindSourceMissing
	}
	return fallback
}

// Wrap classifies err and attaches the operation and path to it.
// It returns nil for a nil error and leaves classified errors untouched.
func Wrap(op, path string, err error, fallback domain.ErrorKind) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewError(Classify(err, fallback), op, path, err)
}
