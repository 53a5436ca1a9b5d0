//go:build linux

package link

import (
	"os"

	"golang.org/x/sys/unix"
)

// reflink attempts a copy-on-write clone via the FICLONE ioctl, the
// same mechanism backend/local/clone_darwin.go uses APFS's equivalent
// for (that file is build-tagged darwin+cgo; this is its Linux
// sibling, following the teacher's one-file-per-platform convention
// seen throughout backend/local, e.g. stat_unix.go/stat_windows.go).
func reflink(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	if err := unix.IoctlFileClone(int(dst.Fd()), int(src.Fd())); err != nil {
		_ = os.Remove(to)
		return err
	}
	return nil
}
