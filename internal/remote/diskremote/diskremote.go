// Package diskremote is a plain-filesystem RemoteCache (C6), the one
// concrete driver this repository ships: a reference implementation
// for local development and tests, grounded on rclone's backend/local
// (the one backend the retrieval pack carries full source for) rather
// than on the many cloud-backend drivers spec §1 places out of scope.
// It stores objects under the same sharded layout internal/cachepath
// defines, so its on-disk shape is just a second cache root.
package diskremote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mribeirodantas/dvc/internal/cachepath"
	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/progress"
)

// Remote stores objects at Root using the sharded cache layout.
// It implements internal/remote.Cache and internal/remote.ReaderCache.
type Remote struct {
	Layout cachepath.Layout
	jobs   int
}

// New returns a Remote rooted at root, recommending jobs as its
// transfer engine concurrency hint (spec §4.8's "default jobs =
// remote.JOBS").
func New(root string, jobs int) *Remote {
	if jobs <= 0 {
		jobs = 4
	}
	return &Remote{Layout: cachepath.New(root), jobs: jobs}
}

// Jobs implements remote.Cache.
func (r *Remote) Jobs() int { return r.jobs }

// Exists implements remote.Cache by statting each candidate path.
func (r *Remote) Exists(ctx context.Context, checksums []checksum.Checksum) (map[checksum.Checksum]bool, error) {
	out := make(map[checksum.Checksum]bool, len(checksums))
	for _, c := range checksums {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		p, err := r.Layout.ToPath(c)
		if err != nil {
			return nil, err
		}
		_, statErr := os.Stat(p)
		out[c] = statErr == nil
	}
	return out, nil
}

// Upload implements remote.Cache: copies srcPath to the sharded
// remote path, landing it via a temp-file-then-rename so a concurrent
// Download of the same checksum never observes a partial object.
func (r *Remote) Upload(ctx context.Context, srcPath string, c checksum.Checksum, reporter progress.Reporter) error {
	dst, err := r.Layout.ToPath(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("diskremote: mkdir shard dir: %w", err)
	}
	reporter.Write(fmt.Sprintf("uploading %s", c))
	return copyAtomic(ctx, srcPath, dst, reporter)
}

// Download implements remote.Cache, the mirror of Upload.
func (r *Remote) Download(ctx context.Context, c checksum.Checksum, dstPath string, reporter progress.Reporter) error {
	src, err := r.Layout.ToPath(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("diskremote: mkdir destination dir: %w", err)
	}
	reporter.Write(fmt.Sprintf("downloading %s", c))
	return copyAtomic(ctx, src, dstPath, reporter)
}

// Open implements remote.ReaderCache, letting a caller stream a
// directory manifest without staging it to a temp file first.
func (r *Remote) Open(ctx context.Context, c checksum.Checksum) (io.ReadCloser, error) {
	p, err := r.Layout.ToPath(c)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func copyAtomic(ctx context.Context, src, dst string, reporter progress.Reporter) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("diskremote: open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+uuid.NewString())
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("diskremote: create temp file: %w", err)
	}

	var written int64
	buf := make([]byte, 256*1024)
	for {
		if ctx.Err() != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
			return ctx.Err()
		}
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				_ = out.Close()
				_ = os.Remove(tmp)
				return werr
			}
			written += int64(n)
			reporter.Advance(int64(n), info.Size())
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
			return readErr
		}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("diskremote: rename into place: %w", err)
	}
	_ = written
	return nil
}
