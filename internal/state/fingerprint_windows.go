//go:build windows

package state

import "os"

// FingerprintOf derives a Fingerprint from a stat result. Windows has
// no syscall.Stat_t inode field reachable this way; mtime and size
// alone back the fingerprint, matching the teacher's own
// windows-specific fallbacks (e.g. backend/local/stat_windows.go).
func FingerprintOf(info os.FileInfo) Fingerprint {
	return Fingerprint{Mtime: info.ModTime(), Size: info.Size()}
}
