//go:build !windows

package fsutil

import (
	"errors"
	"syscall"
)

func isLocked(err error) bool {
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ETXTBSY)
}
