//go:build unix

package datafs

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"github.com/hnrobert/equidash/internal/logger"
)

// lockFile takes a flock(2) on the sibling lock file. Read-only data
// directories cannot hold a lock file; those fall back to the in-process
// lock only.
func lockFile(path string, exclusive bool) (func(), error) {
	f, err := os.OpenFile(LockPath(path), os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, unix.EROFS) {
			logger.Warn("datafs: cannot open lock file for %s (%v); using in-process lock only", path, err)
			return func() {}, nil
		}
		return nil, err
	}
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	for {
		err = unix.Flock(int(f.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
