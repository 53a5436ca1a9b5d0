//go:build !windows

package state

import (
	"os"
	"syscall"
)

// FingerprintOf derives a Fingerprint from a stat result.
func FingerprintOf(info os.FileInfo) Fingerprint {
	fp := Fingerprint{Mtime: info.ModTime(), Size: info.Size()}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		fp.Inode = st.Ino
	}
	return fp
}
