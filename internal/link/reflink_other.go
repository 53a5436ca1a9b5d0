//go:build !linux

package link

import "errors"

// reflink has no portable implementation outside Linux's FICLONE and
// Darwin's APFS clonefile (the latter is out of scope for this core;
// the teacher itself gates it behind "darwin && cgo", see
// backend/local/clone_darwin.go). Callers fall through to the next
// configured strategy, matching spec §4.3's "first strategy that
// succeeds wins".
func reflink(from, to string) error {
	return errors.New("reflink not supported on this platform")
}
