// Package remote declares the RemoteCache capability (C6): the
// abstract interface the transfer engine drives. Concrete
// implementations (S3, GCS, SSH, HTTP backends) live outside this
// core per spec §1 — this package only states the contract.
package remote

import (
	"context"
	"io"

	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/progress"
)

// Cache is the capability the transfer engine depends on. Bulk
// presence queries may be backed by object listing or per-object HEAD
// requests — callers accept either: the engine itself never calls
// Exists, and cmd/dvc calls it once per reconciliation.
type Cache interface {
	// Exists returns the subset of checksums present at the remote.
	Exists(ctx context.Context, checksums []checksum.Checksum) (map[checksum.Checksum]bool, error)

	// Upload transfers the content at srcPath to the remote under c.
	// Implementations must make this atomic from an observer's
	// perspective: a reader either sees the whole old object or the
	// whole new one, never a partial write.
	Upload(ctx context.Context, srcPath string, c checksum.Checksum, reporter progress.Reporter) error

	// Download transfers c from the remote to dstPath, atomically.
	Download(ctx context.Context, c checksum.Checksum, dstPath string, reporter progress.Reporter) error

	// Jobs is the remote's recommended concurrency hint, used as the
	// transfer engine's default worker count.
	Jobs() int
}

// ReaderCache is an optional extension some remotes support: reading
// an object's bytes directly, e.g. a directory manifest, without
// staging it to a temp file first. The transfer engine does not use it.
type ReaderCache interface {
	Cache
	Open(ctx context.Context, c checksum.Checksum) (io.ReadCloser, error)
}
