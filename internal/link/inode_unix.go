//go:build !windows

package link

import (
	"os"
	"syscall"
)

// sameInode reports whether a and b are the same inode, used to
// verify a hardlink actually shares identity with its source (spec
// §4.3 "Verification"). Zero-byte files are exempted by the caller
// before this is ever invoked.
func sameInode(a, b string) bool {
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false
	}
	stA, ok := sa.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	stB, ok := sb.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return stA.Ino == stB.Ino && stA.Dev == stB.Dev
}
