//go:build windows

package fsutil

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isLocked reports whether err comes from a file held open by another process,
// typically the client keeping its settings files open.
func isLocked(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION) ||
		errors.Is(err, windows.ERROR_ACCESS_DENIED)
}
