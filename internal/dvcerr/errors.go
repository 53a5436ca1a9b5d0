// Package dvcerr classifies the error kinds of spec §7. Rather than a
// deep type hierarchy, it follows the teacher's fs/fserrors approach
// (see fs/fserrors/error_test.go's Fatal/retryable wrapper shapes):
// small concrete error types plus a couple of predicates callers use
// to decide what to do with an error, built on top of
// github.com/pkg/errors for wrapping and cause-chasing.
package dvcerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// LinkTypeError is returned by the materializer when every configured
// strategy in the ordered list failed to place an object.
type LinkTypeError struct {
	Path       string
	Strategies []string
	Cause      error
}

func (e *LinkTypeError) Error() string {
	return fmt.Sprintf("no link strategy succeeded for %s (tried %v): %v", e.Path, e.Strategies, e.Cause)
}

func (e *LinkTypeError) Unwrap() error { return e.Cause }

// UploadError aggregates the count of per-object upload failures in a
// single transfer batch (§4.8, §7).
type UploadError struct {
	Count int
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%d upload(s) failed", e.Count)
}

// DownloadError aggregates the count of per-object download failures
// in a single transfer batch.
type DownloadError struct {
	Count int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%d download(s) failed", e.Count)
}

// CyclicGraphError is surfaced by the external stage-graph executor
// (§9) but defined here so the core and its CLI share one vocabulary
// of user-visible error kinds.
type CyclicGraphError struct {
	Cycle []string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("cyclic dependency graph: %v", e.Cycle)
}

// CorruptionError marks an object whose content no longer matches its
// pathname's checksum (§7). The caller quarantines the object and
// treats it as locally absent for the remainder of the run; it is
// never deleted automatically.
type CorruptionError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("cache object %s is corrupt: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// PermissionError marks a protect/unprotect rejection that isn't
// silently tolerable per §4.3 (EROFS is always tolerated; EACCES/EPERM
// are tolerated only when the current mode already matches).
type PermissionError struct {
	Path string
	Op   string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// ConfigError marks a fatal configuration or argument problem (§7):
// overlapping output paths, circular dependencies, a stage file used
// as its own dependency. These are surfaced before the engine starts.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// Wrap annotates err with a message, preserving the cause chain, the
// way the teacher's backends wrap filesystem errors with
// github.com/pkg/errors throughout (e.g. backend/cache's
// storage_persistent.go).
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// IsFatal reports whether err should stop a transfer batch outright
// rather than simply being counted (§5's cancellation rule: workers
// stop accepting new items, but only on a fatal fault). Only a
// *ConfigError in err's chain counts as fatal; an unreachable cache
// root or any other I/O error is not classified as fatal.
func IsFatal(err error) bool {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return true
	}
	return false
}
